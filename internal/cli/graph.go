package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/pkg/parser"
	"github.com/matzehuels/svz/pkg/pipeline"
)

// graphCommand creates the graph command, the main entry point: C source in,
// dependency graph out.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		src sourceFlags
		out renderFlags
	)

	cmd := &cobra.Command{
		Use:   "graph [file...]",
		Short: "Draw the struct dependency graph of C sources",
		Long: `Draw the struct dependency graph of C sources.

Every struct declaration becomes a node listing its fields. An edge A -> B
means A has a field of type B. Sources are read from the given files in
order, or from stdin when no file (or "-") is given.

Examples:
  svz graph list.h                      # DOT to stdout
  svz graph list.h | dot -Tsvg > g.svg  # pipe into Graphviz
  svz graph -f svg,png -o list *.h      # list.svg and list.png
  svz graph --parser treesitter list.h  # full C grammar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			src.apply(cmd, &opts)
			out.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runGraph(cmd, args, src.noCache, out.output, opts)
		},
	}

	src.bind(cmd)
	out.bind(cmd)
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, args []string, noCache bool, output string, opts pipeline.Options) error {
	ctx := cmd.Context()

	sources, err := readSources(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, sources, opts)
	if err != nil {
		return err
	}
	reportSkipped(res.Parsed.Skipped)

	paths, err := writeArtifacts(cmd.OutOrStdout(), res.Artifacts, opts.Formats, output, sources[0].Name)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		printSuccess("Generated %s", plural(len(paths), "file"))
		for _, p := range paths {
			printFile(p)
		}
		printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Skipped, res.CacheInfo.ParseHit)
	}
	return nil
}

// reportSkipped prints a one-line summary of declarations the parser could
// not read. The individual skips are logged at debug level by the pipeline.
func reportSkipped(skipped []parser.Skip) {
	if len(skipped) == 0 {
		return
	}
	printWarning("%d declaration(s) skipped (run with -v for details)", len(skipped))
}
