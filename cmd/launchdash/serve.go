package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/internal/api"
	"github.com/launchdash/launchdash/internal/auth"
	"github.com/launchdash/launchdash/internal/config"
	"github.com/launchdash/launchdash/internal/dash"
	"github.com/launchdash/launchdash/internal/dataset"
	"github.com/launchdash/launchdash/internal/health"
	"github.com/launchdash/launchdash/internal/metrics"
	"github.com/launchdash/launchdash/internal/ui"
	"github.com/launchdash/launchdash/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, its API and the gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, root)
		},
	}
}

// server holds everything serve wires together.
type server struct {
	cfg      *config.Config
	ds       *dataset.Dataset
	uiConfig atomic.Pointer[config.UIConfig]
	metrics  *metrics.Dashboard
	hub      *ws.Hub
}

func newServer(cfg *config.Config, ds *dataset.Dataset) *server {
	s := &server{cfg: cfg, ds: ds, metrics: metrics.NewDashboard()}
	uiCfg := cfg.UI
	s.uiConfig.Store(&uiCfg)

	s.metrics.Records.Set(float64(ds.Len()))
	s.metrics.Sites.Set(float64(len(ds.Sites())))

	s.hub = ws.New(dash.NewLaunchApp(ds), dash.DefaultState(ds), s.settings, s.metrics)
	return s
}

// settings returns the current presentation config. Safe for concurrent use.
func (s *server) settings() config.UIConfig {
	return *s.uiConfig.Load()
}

// reload applies a reloaded config. Only UI settings change at runtime.
func (s *server) reload(cfg *config.Config) {
	uiCfg := cfg.UI
	s.uiConfig.Store(&uiCfg)
	s.metrics.Reloads.Inc()
	if cfg.Server != s.cfg.Server || cfg.Dataset != s.cfg.Dataset {
		slog.Warn("config: server and dataset changes apply after restart")
	}
}

// handler builds the HTTP routing tree.
func (s *server) handler() http.Handler {
	a := s.cfg.Server.Auth
	guard := auth.Middleware(a.Mode, a.EffectiveHeader(), a.Key())
	compress := func(h http.Handler) http.Handler { return h }
	if s.cfg.Server.Compress {
		compress = api.Compress
	}

	app := dash.NewLaunchApp(s.ds)
	apiHandler := api.New(s.ds, s.settings)

	mux := http.NewServeMux()
	mux.Handle("/", s.metrics.Instrument("/", compress(ui.New(s.ds, app, s.settings))))
	mux.Handle("/static/", s.metrics.Instrument("/static", compress(ui.Static())))
	mux.Handle("/api/", s.metrics.Instrument("/api", guard(compress(apiHandler))))
	mux.Handle("/charts/", s.metrics.Instrument("/charts", guard(compress(apiHandler))))
	mux.Handle("/ws/callbacks", s.metrics.Instrument("/ws/callbacks", guard(s.hub)))
	mux.Handle("/metrics", s.metrics)
	return mux
}

func serve(ctx context.Context, root *rootOptions) error {
	slog.Info("launchdash starting", "config", root.configPath)

	cfg, ds, err := root.load()
	if err != nil {
		return err
	}

	slog.Info("dataset loaded",
		"path", cfg.Dataset.Path,
		"records", ds.Len(),
		"sites", len(ds.Sites()),
	)
	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"compress", cfg.Server.Compress,
	)

	s := newServer(cfg, ds)
	go s.hub.Run(ctx)

	// Hot reload applies only when the config file exists.
	if _, err := os.Stat(root.configPath); err == nil {
		go func() {
			if err := config.Watch(ctx, root.configPath, s.reload); err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	errc := make(chan error, 2)

	// gRPC health service, guarded by the same API key as HTTP.
	var hs *health.Server
	if cfg.Server.GRPCPort != 0 {
		a := cfg.Server.Auth
		hs = health.New(auth.APIKeyInterceptor(a.Mode, a.EffectiveHeader(), a.Key()))
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("listen on gRPC port %d: %w", cfg.Server.GRPCPort, err)
		}
		go func() {
			slog.Info("gRPC health listening", "port", cfg.Server.GRPCPort)
			if err := hs.Serve(lis); err != nil {
				errc <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
		hs.SetServing(true)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errc:
		slog.Error("server stopped", "err", err)
	}

	slog.Info("launchdash shutting down")
	if hs != nil {
		hs.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		slog.Error("HTTP shutdown", "err", serr)
	}
	return err
}
