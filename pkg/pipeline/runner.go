package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/svz/pkg/cache"
	"github.com/matzehuels/svz/pkg/depgraph"
	svzio "github.com/matzehuels/svz/pkg/io"
	"github.com/matzehuels/svz/pkg/observability"
	"github.com/matzehuels/svz/pkg/parser"
	"github.com/matzehuels/svz/pkg/render/dot"
)

// Cache key types reported to observability hooks.
const (
	keyTypeParse    = "parse"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Execute runs the complete parse → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, sources []Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Stats: Stats{Sources: len(sources)}}

	// Stage 1: Parse
	parseStart := time.Now()
	parsed, parseHit, err := r.ParseWithCacheInfo(ctx, sources, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Parsed = parsed
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Structs = len(parsed.Structures)
	result.Stats.Skipped = len(parsed.Skipped)
	result.CacheInfo.ParseHit = parseHit

	opts.Logger.Info("parsed structures",
		"structs", result.Stats.Structs,
		"skipped", result.Stats.Skipped,
		"duration", result.Stats.ParseTime)
	for _, sk := range parsed.Skipped {
		opts.Logger.Debug("skipped", "detail", sk.String())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Build
	buildStart := time.Now()
	g, rep := r.Build(ctx, parsed, opts)
	result.Graph = g
	result.Report = rep
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	opts.Logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	dotText, artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, parsed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.DOT = dotText
	result.DOTHash = cache.HashString(dotText)
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo extracts structures from every source, using cached
// results where possible. The boolean is true when every source hit the cache.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, sources []Source, opts Options) (parser.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return parser.Result{}, false, err
	}

	ex, err := Extractor(opts.Parser)
	if err != nil {
		return parser.Result{}, false, err
	}

	var res parser.Result
	allHit := len(sources) > 0
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return parser.Result{}, false, err
		}
		one, hit := r.parseSource(ctx, ex, src, opts)
		res.Append(one, src.Name)
		allHit = allHit && hit
	}
	return res, allHit, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, sources []Source, opts Options) (parser.Result, error) {
	res, _, err := r.ParseWithCacheInfo(ctx, sources, opts)
	return res, err
}

func (r *Runner) parseSource(ctx context.Context, ex parser.Extractor, src Source, opts Options) (parser.Result, bool) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, ex.Name(), src.Name)
	ctx, span := observability.StartStageSpan(ctx, "parse",
		attribute.String(observability.AttrParser, ex.Name()),
		attribute.String(observability.AttrSource, src.Name))
	start := time.Now()

	res, hit := r.cachedParse(ctx, ex, src, opts)

	span.SetAttributes(
		attribute.Int(observability.AttrStructs, len(res.Structures)),
		attribute.Int(observability.AttrSkipped, len(res.Skipped)),
		attribute.Bool(observability.AttrCached, hit))
	observability.EndSpan(span, nil)
	hooks.OnParseComplete(ctx, ex.Name(), src.Name, len(res.Structures), len(res.Skipped), time.Since(start), nil)
	return res, hit
}

func (r *Runner) cachedParse(ctx context.Context, ex parser.Extractor, src Source, opts Options) (parser.Result, bool) {
	cacheKey := r.Keyer.ParseKey(cache.HashString(src.Text), ex.Name())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := svzio.UnmarshalBinary(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeParse)
				return doc.Result(), true
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeParse)
	}

	res := ex.Extract(src.Text)

	if data, err := svzio.MarshalBinary(svzio.FromResult(res, nil)); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
			opts.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeParse, len(data))
		}
	}
	return res, false
}

// Build derives the dependency graph. It is never cached.
func (r *Runner) Build(ctx context.Context, parsed parser.Result, opts Options) (*depgraph.Graph, depgraph.Report) {
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(parsed.Structures))
	_, span := observability.StartStageSpan(ctx, "build",
		attribute.Int(observability.AttrStructs, len(parsed.Structures)))
	start := time.Now()

	g, rep := Build(parsed, opts.Logger)

	span.SetAttributes(
		attribute.Int(observability.AttrNodes, g.NodeCount()),
		attribute.Int(observability.AttrEdges, g.EdgeCount()))
	observability.EndSpan(span, nil)
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)
	return g, rep
}

// RenderWithCacheInfo emits DOT for g and renders every requested format.
// Graphviz outputs are cached by DOT hash; the boolean is true when there
// was at least one and all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *depgraph.Graph, parsed parser.Result, opts Options) (string, map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	ctx, span := observability.StartStageSpan(ctx, "render",
		attribute.StringSlice(observability.AttrFormat, opts.Formats))
	start := time.Now()

	dotText, artifacts, hit, err := r.render(ctx, g, parsed, opts)

	span.SetAttributes(attribute.Bool(observability.AttrCached, hit))
	observability.EndSpan(span, err)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return dotText, artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, g *depgraph.Graph, parsed parser.Result, opts Options) (string, map[string][]byte, bool, error) {
	dotText, err := dot.ToDOT(g, opts.DOTOptions())
	if err != nil {
		return "", nil, false, err
	}
	dotHash := cache.HashString(dotText)

	artifacts := make(map[string][]byte, len(opts.Formats))
	rasters, hits := 0, 0
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return "", nil, false, err
		}
		if !isRaster(format) {
			data, err := RenderFormat(ctx, format, dotText, g, parsed, opts)
			if err != nil {
				return "", nil, false, err
			}
			artifacts[format] = data
			continue
		}

		rasters++
		cacheKey := r.Keyer.ArtifactKey(dotHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
				artifacts[format] = data
				hits++
				continue
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		}

		data, err := RenderFormat(ctx, format, dotText, g, parsed, opts)
		if err != nil {
			return "", nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return dotText, artifacts, rasters > 0 && hits == rasters, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
