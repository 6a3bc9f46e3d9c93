package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jscadpack/internal/server"
	"github.com/matzehuels/jscadpack/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ordering and bundling API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts, err := c.pipelineOptions()
	if err != nil {
		return err
	}

	stats := observability.NewCounters()
	observability.SetPipelineHooks(stats)
	observability.SetCacheHooks(stats)
	defer observability.Reset()

	srv := server.New(server.Config{
		Runner:  runner,
		Options: popts,
		Header:  c.cfg.Bundle.Header,
		Stats:   stats,
		Logger:  loggerFromContext(ctx),
	})

	printInfo("Serving %s", c.cfg.Server.Addr)
	printKeyValue("project", popts.WithDefaults().Dir)
	printKeyValue("cache", c.cfg.Cache.Backend)
	printKeyValue("max passes", fmt.Sprint(popts.WithDefaults().MaxPasses))

	return srv.ListenAndServe(ctx, c.cfg.Server.Addr)
}
