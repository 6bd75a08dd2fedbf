package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	svzerrors "github.com/matzehuels/svz/pkg/errors"
)

// WriteJSON encodes a document as indented JSON and writes it to w.
func WriteJSON(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates a JSON document from r.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, svzerrors.Wrap(svzerrors.ErrCodeInvalidInput, err, "decode JSON document")
	}
	return doc, doc.Validate()
}

// WriteYAML encodes a document as YAML and writes it to w.
func WriteYAML(doc Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes and validates a YAML document from r.
func ReadYAML(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, svzerrors.Wrap(svzerrors.ErrCodeInvalidInput, err, "decode YAML document")
	}
	return doc, doc.Validate()
}

// MarshalBinary encodes a document as msgpack.
func MarshalBinary(doc Document) ([]byte, error) {
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// UnmarshalBinary decodes a msgpack document produced by [MarshalBinary].
func UnmarshalBinary(data []byte) (Document, error) {
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return doc, doc.Validate()
}

// ExportFile writes a document to path, as YAML when the extension is
// .yaml or .yml and as JSON otherwise.
func ExportFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if isYAML(path) {
		return WriteYAML(doc, f)
	}
	return WriteJSON(doc, f)
}

// ImportFile reads a document from path, choosing the decoder from the
// extension like [ExportFile].
func ImportFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, svzerrors.Wrap(svzerrors.ErrCodeFileNotFound, err, "model %s not found", path)
		}
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if isYAML(path) {
		return ReadYAML(f)
	}
	return ReadJSON(f)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
