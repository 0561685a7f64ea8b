package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutview/internal/server"
	"github.com/matzehuels/layoutview/pkg/observability"
)

// serveOpts holds the flags of the serve command. Empty values keep the
// config file settings.
type serveOpts struct {
	addr      string
	cache     string
	uploadDir string
	origins   []string
}

// serveCommand creates the command running the upload service.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the design upload service",
		Long: `Serve the HTTP API the browser viewer uploads designs to.

The listen address defaults to :$PORT, or :8080 when PORT is unset.
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :$PORT or :8080)")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "cache backend: file, redis, none (default from config)")
	cmd.Flags().StringVar(&opts.uploadDir, "upload-dir", "", "directory for uploads in flight (default system temp)")
	cmd.Flags().StringSliceVar(&opts.origins, "allow-origin", nil, "CORS origin allowed to call the API (repeatable)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	metrics := observability.NewPrometheus(nil)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetServerHooks(metrics)
	defer observability.Reset()

	cfg := c.Config.serverConfig(c.Logger)
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.uploadDir != "" {
		cfg.UploadDir = opts.uploadDir
	}
	if len(opts.origins) > 0 {
		cfg.AllowedOrigins = opts.origins
	}

	srv := server.New(cfg, runner)
	printInfo("Serving on %s", srv.Addr())
	printDetail("POST /api/design · GET /api/design/{key} · /healthz · /metrics")
	return srv.Run(ctx)
}
