package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/config"
	"github.com/HaritsAcheiz/kontakte-extractor/internal/pipeline"
	"github.com/HaritsAcheiz/kontakte-extractor/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return eris.Wrap(err, "init logger")
	}
	defer func() { _ = zap.L().Sync() }()

	p, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		return eris.Wrap(err, "init pipeline")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(p, cfg.Directory.Location),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return eris.Wrap(err, "server listen")
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutdown")
	}
	zap.L().Info("bye")
	return nil
}
