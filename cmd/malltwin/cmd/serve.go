package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/internal/logging"
	"github.com/supermal/mallpass/internal/twin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the twin HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range []string{"addr", "secret", "token-ttl", "log-level"} {
			if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}

		logger := logging.New(v.GetString("log-level"))
		addr := v.GetString("addr")

		opts := twin.Options{
			TokenTTL: v.GetDuration("token-ttl"),
			Logger:   logger,
		}
		if secret := v.GetString("secret"); secret != "" {
			opts.Secret = []byte(secret)
		} else {
			logger.Warn("using the built-in development signing secret; set MALLTWIN_SECRET to override")
		}

		tw, err := twin.New(opts)
		if err != nil {
			return fmt.Errorf("failed to build twin: %w", err)
		}

		srv := &http.Server{
			Addr:         addr,
			Handler:      tw,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting twin", "addr", addr, "demo_cif", twin.DemoCIF)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// SIGHUP clears injected faults and hit counters between test runs.
		reset := make(chan os.Signal, 1)
		signal.Notify(reset, syscall.SIGHUP)

		for {
			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case sig := <-reset:
				tw.Controls().Reset()
				logger.Info("controls reset", "signal", sig.String())

			case sig := <-shutdown:
				logger.Info("shutting down twin", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					srv.Close()
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}
				return nil
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (also MALLTWIN_ADDR)")
	serveCmd.Flags().String("secret", "", "HMAC secret for member tokens (also MALLTWIN_SECRET)")
	serveCmd.Flags().Duration("token-ttl", 24*time.Hour, "Member token lifetime (also MALLTWIN_TOKEN_TTL)")
	serveCmd.Flags().String("log-level", "info", "Log level (also MALLTWIN_LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd)
}
