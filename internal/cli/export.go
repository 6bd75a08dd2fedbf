package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/internal/config"
	"github.com/matzehuels/svz/pkg/store/neo4j"
)

// exportCommand groups the graph exporters.
func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export struct graphs to external stores",
	}
	cmd.AddCommand(c.exportNeo4jCommand())
	return cmd
}

// exportNeo4jOpts holds the flags for `svz export neo4j`. Connection flags
// override the [neo4j] config section.
type exportNeo4jOpts struct {
	src       sourceFlags
	uri       string
	user      string
	password  string
	batchSize int
	clean     bool
}

func (c *CLI) exportNeo4jCommand() *cobra.Command {
	var opts exportNeo4jOpts

	cmd := &cobra.Command{
		Use:   "neo4j [file...]",
		Short: "Write the struct graph into Neo4j",
		Long: fmt.Sprintf(`Write the struct graph into Neo4j.

Every structure becomes a (:%s) node with its fields; every dependency a
[:%s] relationship. Nodes and relationships are merged, so exporting the
same sources twice is idempotent. Use --clean to remove earlier exports
first.

The password is read from --password, the %s environment variable or
the [neo4j] config section, in that order.`, neo4j.NodeLabel, neo4j.RelType, config.EnvNeo4jPassword),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExportNeo4j(cmd, args, &opts)
		},
	}

	opts.src.bind(cmd)
	cmd.Flags().StringVar(&opts.uri, "uri", "", "Neo4j URI (default from config)")
	cmd.Flags().StringVar(&opts.user, "user", "", "Neo4j user (default from config)")
	cmd.Flags().StringVar(&opts.password, "password", "", "Neo4j password")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, fmt.Sprintf("rows per UNWIND batch (default %d)", neo4j.DefaultBatchSize))
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "delete existing struct nodes before exporting")
	return cmd
}

func (c *CLI) runExportNeo4j(cmd *cobra.Command, args []string, opts *exportNeo4jOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := c.config().Neo4j

	if cmd.Flags().Changed("uri") {
		cfg.URI = opts.uri
	}
	if cmd.Flags().Changed("user") {
		cfg.User = opts.user
	}
	if cmd.Flags().Changed("password") {
		cfg.Password = opts.password
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = opts.batchSize
	}

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

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Connecting to "+cfg.URI+"...")
	spinner.Start()
	defer spinner.Stop()

	exp, err := neo4j.Connect(ctx, cfg.URI, cfg.User, cfg.Password, logger)
	if err != nil {
		spinner.StopWithError("Connection failed")
		return err
	}
	defer exp.Close(ctx)
	if cfg.BatchSize > 0 {
		exp.SetBatchSize(cfg.BatchSize)
	}

	if opts.clean {
		spinner.Update("Removing previous export...")
		if err := exp.Clean(ctx); err != nil {
			spinner.StopWithError("Clean failed")
			return err
		}
	}

	spinner.Update("Creating indexes...")
	if err := exp.CreateIndexes(ctx); err != nil {
		spinner.StopWithError("Index creation failed")
		return err
	}

	spinner.Update(fmt.Sprintf("Exporting %s...", plural(g.NodeCount(), "structure")))
	stats, err := exp.Export(ctx, g)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Exported %s and %s", plural(stats.Nodes, "structure"), plural(stats.Edges, "reference")))
	printDetail("%s in %s", plural(stats.Batches, "batch"), cfg.URI)
	prog.done("neo4j export finished")
	return nil
}
