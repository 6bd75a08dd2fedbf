// Package pipeline provides the core svz pipeline.
//
// This package implements the complete parse → build → render pipeline that
// is used by both the CLI and the HTTP server, so every entry point
// produces byte-identical output for the same input and options.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Extract struct declarations from each C source
//  2. Build: Derive the dependency graph from the parsed structures
//  3. Render: Emit DOT and, on request, SVG, PNG, PDF, JSON or YAML
//
// Each stage can be run independently or as part of the complete pipeline.
// Parse results and rasterised artifacts are cached; building and DOT
// emission are cheap and always recomputed.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"dot", "svg"}}
//	result, err := runner.Execute(ctx, []pipeline.Source{{Name: "list.h", Text: src}}, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Or skip the runner when only DOT text is needed:
//
//	dotText, err := pipeline.Generate(src, dot.Options{})
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svz/pkg/cache"
	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/parser"
	"github.com/matzehuels/svz/pkg/render/dot"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultParser is the extractor used when Options.Parser is empty.
	DefaultParser = parser.NameTolerant

	// DefaultScale is the PNG scale factor. At 1 Graphviz rasterises
	// directly; other values go through rsvg-convert.
	DefaultScale = 1.0

	// MaxScale bounds the PNG scale factor.
	MaxScale = 8.0

	// DefaultTTL is how long cached parse results and artifacts live.
	DefaultTTL = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// FormatNames lists the supported formats in display order.
var FormatNames = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatYAML}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Source is one named C source text. Name is used in logs and in skip
// reports; it does not have to be a path.
type Source struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Options contains all configuration for the pipeline.
type Options struct {
	// Parse options
	Parser  string `json:"parser,omitempty"`
	Refresh bool   `json:"refresh,omitempty"` // bypass cached parse results and artifacts

	// Render options
	Formats     []string `json:"formats,omitempty"`
	AccentColor string   `json:"accent_color,omitempty"`
	NoColor     bool     `json:"no_color,omitempty"`
	Scale       float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Parsed holds every extracted structure, in source order, and every
	// skipped declaration tagged with its source name.
	Parsed parser.Result

	// Graph is the dependency graph built from Parsed.
	Graph *depgraph.Graph

	// Report lists structures that could not become graph nodes.
	Report depgraph.Report

	// DOT is the Graphviz source of Graph.
	DOT string

	// DOTHash is the content hash of DOT.
	DOTHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sources    int
	Structs    int
	Skipped    int
	NodeCount  int
	EdgeCount  int
	ParseTime  time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether every source's parse result came from cache
	RenderHit bool // Whether every rasterised artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return svzerrors.New(svzerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateParser checks that an extractor with the given name exists.
func ValidateParser(name string) error {
	_, err := Extractor(name)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Parser == "" {
		o.Parser = DefaultParser
	}
	if err := ValidateParser(o.Parser); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	o.Formats = dedupe(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return svzerrors.New(svzerrors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}

	if err := o.DOTOptions().Validate(); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// DOTOptions returns the DOT emitter options.
func (o *Options) DOTOptions() dot.Options {
	return dot.Options{AccentColor: o.AccentColor, NoColor: o.NoColor}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Scale only affects PNG output and is left out of other keys.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Core Entry Point
// =============================================================================

// Generate converts C source text to DOT in one call: tolerant parse,
// graph build, DOT emission. It uses no cache and emits no events.
//
// Anonymous structures and duplicate names are dropped by the build step;
// use a Runner to see them reported.
func Generate(src string, opts dot.Options) (string, error) {
	g, _ := depgraph.Build(parser.Parse(src).Structures)
	out, err := dot.ToDOT(g, opts)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return out, nil
}
