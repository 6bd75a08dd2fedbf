package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The pre-run hook loads the configuration file and attaches the CLI logger
// to the command context, where commands retrieve it with loggerFromContext.
// Callers that add their own pre-run logic (main sets the log level) must
// chain to the existing hook.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "svz draws C struct dependency graphs",
		Long:         `svz reads C source, extracts struct declarations and draws which structures contain fields of which other structure types, as a Graphviz DOT graph or a rendered image.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/svz/config.toml)")

	// Register all subcommands
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
