// Package main provides the entry point for the query-gateway server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "sqlflow.org/gohive" // HiveServer2 driver

	"github.com/txn2/query-gateway/internal/server"
	"github.com/txn2/query-gateway/pkg/platform"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	showVersion bool
}

func parseFlags(args []string) (serverOptions, error) {
	opts := serverOptions{}
	fs := flag.NewFlagSet("query-gateway", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if !opts.showVersion && opts.configPath == "" {
		return opts, errors.New("-config is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.showVersion {
		_, _ = fmt.Fprintf(stdout, "query-gateway version %s (commit %s, built %s)\n",
			server.Version, server.Commit, server.Date)
		return nil
	}

	p, err := server.NewWithConfig(opts.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	slog.SetDefault(platform.NewLogger(p.Config().Logging, os.Stderr))

	return serve(ctx, p, server.New(p))
}

// serve starts the platform and the HTTP server, then drains both once ctx
// is cancelled.
func serve(ctx context.Context, p *platform.Platform, srv *http.Server) error {
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("starting platform: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("query gateway listening", "address", srv.Addr, "version", server.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = p.Stop(context.Background())
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), p.Config().Server.ShutdownTimeout)
	defer cancel()

	p.Health().SetDraining()
	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down http server: %w", err))
	}
	if err := p.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stopping platform: %w", err))
	}
	return errors.Join(errs...)
}
