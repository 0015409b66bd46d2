package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DawidMiftadinow/datatables-bundle/config"
	"github.com/DawidMiftadinow/datatables-bundle/dataset"
	"github.com/DawidMiftadinow/datatables-bundle/middleware/auth"
	"github.com/DawidMiftadinow/datatables-bundle/ui"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured tables over HTTP",
	Long: `Serve every table of the definition file below the base path.
GET <base-path>/ lists the tables, GET or POST <base-path>/<table> answers
DataTables server-side requests and /metrics exposes Prometheus metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String(config.KeyAddr, ":8080", "The address on which the server will listen")
	serveCmd.Flags().String(config.KeyBasePath, "/tables", "URL prefix of the table endpoints")
	serveCmd.Flags().Int(config.KeyPageSize, 10, "Page length used when a request sets none")
	serveCmd.Flags().Int(config.KeyMaxPageSize, 100, "Largest page length a request may ask for")
	serveCmd.Flags().String(config.KeyAuthUser, "", "Require HTTP Basic auth with this user name")
	serveCmd.Flags().String(config.KeyAuthPass, "", "Password for --auth-user")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := bindFlags(cmd, v)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := dataset.NewLoader(logger, cfg.Debug)
	defer loader.Close()

	registry, err := loader.Load(ctx, cfg.Tables)
	if err != nil {
		return err
	}

	var authenticator *auth.Authenticator
	if cfg.Auth.Enabled() {
		authenticator = auth.NewAuthenticator(auth.NewBasicAuthUser(cfg.Auth.BasicAuthUser, cfg.Auth.BasicAuthPass))
	}
	requireAuth := auth.Basic(authenticator, "datatables", logger)

	set := metrics.NewSet()
	mux := http.NewServeMux()
	mux.Handle(cfg.BasePath+"/", requireAuth(ui.Handler(registry, cfg.BasePath,
		ui.WithPageSize(cfg.PageSize, cfg.MaxPageSize),
		ui.WithLogger(logger),
		ui.WithMetrics(set))))
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		set.WritePrometheus(w)
		metrics.WritePrometheus(w, true)
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr), slog.String("base_path", cfg.BasePath))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
