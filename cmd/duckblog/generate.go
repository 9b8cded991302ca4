package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/duckblog/internal/logging"
	"github.com/eringen/duckblog/snapshot"
)

type generateOptions struct {
	out           string
	readyInterval time.Duration
	maxAttempts   int
	concurrency   int
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	gen := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start the server and export every page as static files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return gen.run(ctx, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&gen.out, "out", "o", "dist", "output directory")
	flags.DurationVar(&gen.readyInterval, "ready-interval", 10*time.Second, "delay between readiness probes")
	flags.IntVar(&gen.maxAttempts, "max-attempts", 0, "readiness probes before giving up (0 waits forever)")
	flags.IntVar(&gen.concurrency, "concurrency", 1, "parallel page fetches")
	return cmd
}

func (g *generateOptions) run(ctx context.Context, opts *rootOptions) error {
	app := opts.newApp()
	defer app.Close()
	if err := app.Init(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
	}()

	base, err := localURL(opts.cfg.Addr)
	if err != nil {
		return err
	}
	snap := snapshot.New(snapshot.Config{
		BaseURL:       base,
		OutDir:        g.out,
		ReadyInterval: g.readyInterval,
		MaxAttempts:   g.maxAttempts,
		Concurrency:   g.concurrency,
	}, app, snapshot.WithLogger(logging.Named(opts.logger, "snapshot")))

	type outcome struct {
		res snapshot.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := snap.Run(ctx)
		done <- outcome{res, err}
	}()

	select {
	case err := <-errc:
		if err == nil {
			err = fmt.Errorf("server stopped before the export finished")
		}
		return err
	case o := <-done:
		if o.err != nil {
			return o.err
		}
		opts.logger.Info("static site written",
			zap.String("out", g.out),
			zap.Int("pages", len(o.res.Pages)),
			zap.Int("assets", o.res.Assets),
		)
		return nil
	}
}

// localURL turns a listen address into a URL the crawler can reach.
func localURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("parse addr %q: %w", addr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
