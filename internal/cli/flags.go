package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/pkg/pipeline"
)

// sourceFlags select how C sources are parsed and cached.
type sourceFlags struct {
	parser  string
	noCache bool
	refresh bool
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.parser, "parser", "", fmt.Sprintf("struct extractor: %s (default from config)", strings.Join(pipeline.Parsers(), ", ")))
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and recompute")
}

func (f *sourceFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("parser") {
		opts.Parser = f.parser
	}
	opts.Refresh = f.refresh
}

// renderFlags control DOT styling and the produced artifacts.
type renderFlags struct {
	output  string
	formats string
	accent  string
	noColor bool
	scale   float64
}

func (f *renderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", fmt.Sprintf("output format(s): %s (comma-separated)", strings.Join(pipeline.FormatNames, ", ")))
	cmd.Flags().StringVar(&f.accent, "accent", "", "field type color (default purple)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "do not color field types")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if formats := parseFormats(f.formats); len(formats) > 0 {
		opts.Formats = formats
	}
	if cmd.Flags().Changed("accent") {
		opts.AccentColor = f.accent
	}
	if cmd.Flags().Changed("no-color") {
		opts.NoColor = f.noColor
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
}
