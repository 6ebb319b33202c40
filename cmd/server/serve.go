package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/todo-keeper/internal/observability"
	httpserver "github.com/and161185/todo-keeper/internal/server/http"
	"github.com/and161185/todo-keeper/internal/service"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cfg := &config{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyOSEnv(cmd.Flags()); err != nil {
				return err
			}
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	cfg.storeFlags(cmd.Flags())
	cfg.serveFlags(cmd.Flags())
	return cmd
}

func runServe(parent context.Context, cfg *config) error {
	log, err := newLogger(cfg.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)
	if cfg.CookieKey == "" {
		log.Warn("session cookies are not signed; set --cookie-key to sign them")
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", zap.Error(err))
		return err
	}
	defer b.close()

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := httpserver.New(
		service.NewAuthService(b.users, b.lim, log.Named("auth")),
		service.NewTodoService(b.todos, log.Named("todo")),
		b.pinger,
		httpserver.Config{
			CookieKey:    []byte(cfg.CookieKey),
			CookieSecure: cfg.CookieSecure,
			CORSOrigin:   cfg.CORSOrigin,
		},
		observability.NewRegistry(),
		log.Named("http"),
	)

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error("listen", zap.Error(err))
		return err
	}
	return serve(ctx, lis, srv.Handler(), log)
}

// serve runs h on lis until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, lis net.Listener, h http.Handler, log *zap.Logger) error {
	hs := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", lis.Addr().String()))
		errCh <- hs.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn("forced shutdown", zap.Error(err))
			_ = hs.Close()
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		return err
	}

	log.Info("shutdown complete")
	return nil
}
