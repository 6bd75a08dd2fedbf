package cli

import (
	"io"
	"slices"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty keeps config", "", nil},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "dot,svg,png", []string{"dot", "svg", "png"}},
		{"spaces and empty items", " dot, ,pdf ", []string{"dot", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func newFlagCommand(args ...string) (*cobra.Command, *sourceFlags, *renderFlags, error) {
	var (
		src sourceFlags
		out renderFlags
	)
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	src.bind(cmd)
	out.bind(cmd)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	return cmd, &src, &out, cmd.Execute()
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	base := pipeline.Options{
		Parser:      "treesitter",
		Formats:     []string{"svg"},
		AccentColor: "blue",
		NoColor:     true,
		Scale:       2,
	}

	cmd, src, out, err := newFlagCommand()
	if err != nil {
		t.Fatal(err)
	}
	opts := base
	src.apply(cmd, &opts)
	out.apply(cmd, &opts)
	if opts.Parser != "treesitter" || !slices.Equal(opts.Formats, []string{"svg"}) ||
		opts.AccentColor != "blue" || !opts.NoColor || opts.Scale != 2 {
		t.Errorf("unset flags changed options: %+v", opts)
	}

	cmd, src, out, err = newFlagCommand("--parser", "tolerant", "-f", "dot,png", "--accent", "red", "--no-color=false", "--scale", "3", "--refresh")
	if err != nil {
		t.Fatal(err)
	}
	opts = base
	src.apply(cmd, &opts)
	out.apply(cmd, &opts)
	if opts.Parser != "tolerant" || !slices.Equal(opts.Formats, []string{"dot", "png"}) ||
		opts.AccentColor != "red" || opts.NoColor || opts.Scale != 3 || !opts.Refresh {
		t.Errorf("set flags not applied: %+v", opts)
	}
}
