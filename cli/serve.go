package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyanBlaney/sonido-armonia/logging"
	"github.com/RyanBlaney/sonido-armonia/server"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis engine over HTTP for the browser editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if port != "" {
				cfg.Port = port
			}

			if cfg.SentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:         cfg.SentryDSN,
					Environment: cfg.Environment,
					Debug:       !cfg.IsProduction(),
				}); err != nil {
					logging.Error(err, "Failed to initialize Sentry")
				} else {
					defer sentry.Flush(2 * time.Second)
				}
			}

			base := logging.NewDefaultLogger()
			base.SetLevel(opts.level)
			logging.SetGlobalLogger(logging.NewSentryLogger(base, nil))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, nil).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on, overrides PORT")
	return cmd
}
