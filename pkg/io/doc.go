// Package io reads and writes svz model documents.
//
// # Overview
//
// A model document is the serialized result of parsing: every structure with
// its fields, the dependency edges between them and the fragments the parser
// skipped. Documents let a parse be saved once and rendered many times, and
// are the cached form of parse results.
//
// # Formats
//
// The same [Document] is available in three encodings:
//
//   - JSON via [WriteJSON] / [ReadJSON], for tools and the HTTP API
//   - YAML via [WriteYAML] / [ReadYAML], for hand editing
//   - msgpack via [MarshalBinary] / [UnmarshalBinary], for caches
//
// [ExportFile] and [ImportFile] pick JSON or YAML from the file extension.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "structures": [
//	    {"name": "list", "padding": 11, "fields": [
//	      {"type": "ll_node", "name": "head"}
//	    ]},
//	    {"name": "ll_node", "padding": 11, "fields": [
//	      {"type": "int", "name": "value"},
//	      {"type": "ll_node", "name": "next"}
//	    ]}
//	  ],
//	  "edges": [
//	    {"from": "list", "to": "ll_node"},
//	    {"from": "ll_node", "to": "ll_node"}
//	  ]
//	}
//
// Edges are informational. They are always recomputed from the structures
// when a document is turned back into a graph, so hand-edited documents only
// need the structures.
//
// Padding is informational as well: it is derived from the field types and
// recomputed on import.
package io
