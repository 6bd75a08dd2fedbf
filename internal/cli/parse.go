package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	svzio "github.com/matzehuels/svz/pkg/io"
	"github.com/matzehuels/svz/pkg/pipeline"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	src     sourceFlags
	output  string // model file; JSON unless it ends in .yaml/.yml
	format  string // stdout encoding: json or yaml
	summary bool   // print a table instead of the model
}

// parseCommand creates the parse command, which writes the extracted model
// instead of a drawing. The model can be edited and fed to `svz render`.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{format: pipeline.FormatJSON}

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Extract the struct model of C sources",
		Long: `Extract the struct model of C sources as JSON or YAML.

The model lists every structure with its fields, the dependency edges and
the declarations the parser skipped. Save it with -o and render it later
with "svz render".

Examples:
  svz parse list.h                 # JSON to stdout
  svz parse -f yaml list.h         # YAML to stdout
  svz parse -o model.json *.h      # save for svz render
  svz parse --summary *.h          # table of structures and references`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case pipeline.FormatJSON, pipeline.FormatYAML:
			default:
				return svzerrors.New(svzerrors.ErrCodeInvalidFormat, "invalid model format: %s (must be json or yaml)", opts.format)
			}
			return c.runParse(cmd, args, &opts)
		},
	}

	opts.src.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "model file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "model format for stdout: json, yaml")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a table of structures instead of the model")
	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, args []string, opts *parseOpts) error {
	ctx := cmd.Context()

	popts := c.pipelineOptions()
	opts.src.apply(cmd, &popts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	sources, err := readSources(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.src.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	parsed, err := runner.Parse(ctx, sources, popts)
	if err != nil {
		return err
	}
	g, _ := runner.Build(ctx, parsed, popts)
	reportSkipped(parsed.Skipped)

	if opts.summary {
		return writeSummary(cmd.OutOrStdout(), g)
	}

	doc := svzio.FromResult(parsed, g)
	doc.Parser = popts.Parser

	if opts.output != "" {
		if err := svzio.ExportFile(doc, opts.output); err != nil {
			return err
		}
		printSuccess("Extracted %s", plural(len(doc.Structures), "structure"))
		printFile(opts.output)
		printNextStep("Render it", "svz render "+opts.output)
		return nil
	}

	if opts.format == pipeline.FormatYAML {
		return svzio.WriteYAML(doc, cmd.OutOrStdout())
	}
	return svzio.WriteJSON(doc, cmd.OutOrStdout())
}

// writeSummary prints one table row per graph node with its field count and
// the structures it references and is referenced by.
func writeSummary(w io.Writer, g *depgraph.Graph) error {
	rows := make([][]string, 0, g.NodeCount())
	for _, s := range g.Nodes() {
		rows = append(rows, []string{
			s.Name(),
			strconv.Itoa(s.FieldCount()),
			joinOrDash(g.Children(s.Name())),
			joinOrDash(g.Parents(s.Name())),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Struct", "Fields", "References", "Referenced by").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorCyan)
			case col == 1:
				return base.Foreground(colorWhite).Align(lipgloss.Right)
			default:
				return base.Foreground(colorGray)
			}
		})

	_, err := fmt.Fprintf(w, "%s\n%s\n", t.Render(),
		StyleDim.Render(fmt.Sprintf("%s · %s", plural(g.NodeCount(), "struct"), plural(g.EdgeCount(), "edge"))))
	return err
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	return strings.Join(names, ", ")
}
