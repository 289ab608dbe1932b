package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/insights/internal/server"
	"github.com/desertthunder/insights/internal/ui"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve starts the relay and blocks until SIGINT, SIGTERM or a listener failure.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	srv, err := r.buildServer(config)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Addr()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return r.serve(ctx, srv, ln, config.Frontend.Origin)
}

// serve runs srv on ln until ctx is done, then shuts down gracefully.
func (r *Runner) serve(ctx context.Context, srv *server.Server, ln net.Listener, frontend string) error {
	hs := srv.HTTPServer(ln.Addr().String())

	lines := make([]ui.RouteLine, 0, len(srv.Routes()))
	for _, route := range srv.Routes() {
		lines = append(lines, ui.RouteLine{Method: route.Method, Path: route.Path})
	}
	if err := r.writePlain("%s", ui.Startup(ln.Addr().String(), frontend, lines)); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Serve(ln)
	}()

	r.logger.Info("relay started", "addr", ln.Addr().String(), "frontend", frontend)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
