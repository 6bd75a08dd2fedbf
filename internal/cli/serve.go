package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/internal/server"
)

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP. Configured parser and render settings become the request defaults.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the struct graph API over HTTP",
		Long: `Serve the struct graph API over HTTP.

Endpoints:
  GET  /healthz       liveness probe
  GET  /version       build information
  GET  /v1/parsers    available parsers and formats
  POST /v1/graph      C source in the body; query: format, parser, accent,
                      no_color, refresh, scale

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()

			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			defaults := c.pipelineOptions()
			defaults.Formats = nil
			if err := defaults.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, loggerFromContext(ctx), server.Config{
				Addr:         cfg.Server.Addr,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				Defaults:     defaults,
			})

			printKeyValue("Address", StyleLink.Render(serverURL(cfg.Server.Addr)))
			printKeyValue("Parser", defaults.Parser)
			printKeyValue("Cache", cacheLabel(cfg.Cache.Backend, noCache))
			printKeyValue("Max body", StyleNumber.Render(fmt.Sprintf("%d bytes", cfg.Server.MaxBodyBytes)))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

// serverURL turns a listen address into a clickable URL.
func serverURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func cacheLabel(backend string, noCache bool) string {
	if noCache {
		return "disabled"
	}
	return backend
}
