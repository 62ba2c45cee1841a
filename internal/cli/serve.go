package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ioschema/pkg/observability/prom"
	"github.com/matzehuels/ioschema/pkg/server"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes generation, the catalog and the template over HTTP.
The listen address defaults to server.addr from the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withConfig(ctx, appOptions{journal: true}, func(a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}

				cfg := server.Config{
					Runner:      a.runner,
					Catalog:     a.catalog,
					Templates:   a.templates,
					Journal:     a.journal,
					CatalogFile: a,
					OnCatalogReplaced: func(ctx context.Context) error {
						ids, err := a.moduleIDs(ctx)
						if err != nil {
							return err
						}
						c.Logger.Info("catalog reloaded", "modules", len(ids))
						return nil
					},
					Logger: c.Logger,
				}

				if metrics {
					reg := prometheus.NewRegistry()
					reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
					hooks, err := prom.New(reg)
					if err != nil {
						return err
					}
					hooks.Install()
					cfg.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
				}

				printInfo("Serving %s on %s", a.cfg.Catalog.Path, addr)
				return server.New(cfg).ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	return cmd
}
