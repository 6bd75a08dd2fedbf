package cli

import (
	"github.com/spf13/cobra"

	svzio "github.com/matzehuels/svz/pkg/io"
	"github.com/matzehuels/svz/pkg/pipeline"
)

// renderCommand creates the render command, which draws a model document
// written by `svz parse` (possibly edited by hand) without re-parsing C.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		out     renderFlags
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render <model>",
		Short: "Render a saved struct model",
		Long: `Render a struct model saved by "svz parse".

The model is read as YAML when the file ends in .yaml or .yml and as JSON
otherwise. Edges stored in the model are ignored; they are derived again
from the field types.

Examples:
  svz render model.json                 # DOT to stdout
  svz render -f svg -o model.svg model.json
  svz render -f svg,pdf model.yaml      # model.svg and model.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			out.apply(cmd, &opts)
			opts.Refresh = refresh
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], noCache, out.output, opts)
		},
	}

	out.bind(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results and recompute")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, noCache bool, output string, opts pipeline.Options) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	doc, err := svzio.ImportFile(input)
	if err != nil {
		return err
	}
	parsed := doc.Result()
	logger.Debug("loaded model", "path", input, "structures", len(doc.Structures), "parser", doc.Parser)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	g, _ := runner.Build(ctx, parsed, opts)
	_, artifacts, hit, err := runner.RenderWithCacheInfo(ctx, g, parsed, opts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(cmd.OutOrStdout(), artifacts, opts.Formats, output, input)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		printSuccess("Rendered %s", plural(len(paths), "file"))
		for _, p := range paths {
			printFile(p)
		}
		printStats(g.NodeCount(), g.EdgeCount(), len(parsed.Skipped), hit)
	}
	return nil
}
