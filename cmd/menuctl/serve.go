// Serve command runs the menus HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/menus/internal/httpapi"
	"github.com/mesh-intelligence/menus/internal/keylock"
	"github.com/mesh-intelligence/menus/internal/menusync"
	"github.com/mesh-intelligence/menus/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the menus HTTP API",
	Long: `Serve exposes menus and their item trees over HTTP, together with
Prometheus metrics on /metrics and a health check on /healthz.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := settings.GetString(cfgKeyListenAddr)
		if flagServeAddr != "" {
			addr = flagServeAddr
		}

		backend, cfg, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec := metrics.NewPrometheusRecorder(reg)
		locks := keylock.New()
		metrics.RegisterLocksGauge(reg, locks.Len)

		sync := newSynchronizer(backend, cfg, menusync.WithRecorder(rec), menusync.WithLocks(locks))
		api := httpapi.New(backend, backend, sync,
			httpapi.WithLogger(logger),
			httpapi.WithMetricsHandler(metrics.HTTPHandler(reg)),
			httpapi.WithCORS(settings.GetStringSlice(cfgKeyCORSOrigins)...))

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("serving", slog.String("addr", addr), slog.String("data_dir", cfg.DataDir))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (default: listen_addr from config.yaml)")
}
