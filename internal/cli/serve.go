package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mfocus/internal/logger"
	"github.com/emiliopalmerini/mfocus/internal/retention"
	"github.com/emiliopalmerini/mfocus/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON API and the scheduled retention purge.

The listen address defaults to MFOCUS_ADDR (127.0.0.1:8080). Observations older
than MFOCUS_RETENTION_DAYS are purged on MFOCUS_RETENTION_SCHEDULE; set the
days to 0 to keep everything.

Examples:
  mfocus serve                       # Start on the configured address
  mfocus serve --addr :3000          # Listen on port 3000
  mfocus serve -i export.jsonl       # Serve a JSONL snapshot read-only`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides MFOCUS_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := app.Config
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	opts := []web.Option{web.WithClock(now)}
	if app.InputFile != "" {
		opts = append(opts, web.WithReadOnly())
	}
	server := web.NewServer(app.Service, addr, logger.Named(app.Log, "http"), opts...)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Start(ctx, cfg.Server.ShutdownTimeout)
	})

	if keep := cfg.RetentionWindow(); keep > 0 && app.InputFile == "" {
		job, err := retention.New(app.Service, cfg.Retention.Schedule, keep,
			logger.Named(app.Log, "retention"), retention.WithLocation(app.Location))
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := job.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
