// Command vertex scans web pages for accessibility problems, either once from
// the command line or as an HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/raysh454/vertex/internal/app"
	"github.com/raysh454/vertex/internal/cli"
	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/report"
	"github.com/raysh454/vertex/internal/reportstore"
	"github.com/raysh454/vertex/internal/scanner"
	"github.com/raysh454/vertex/internal/server"
	"github.com/raysh454/vertex/internal/webclient"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewWriterLogger("vertex", os.Stderr, logging.ParseLevel(args.LogLevel))

	switch args.Command {
	case cli.CommandScan:
		os.Exit(runScan(ctx, args, logger, os.Stdout))
	case cli.CommandServe:
		if err := runServe(ctx, args, logger); err != nil {
			logger.Error("server stopped", logging.Field{Key: "error", Value: err.Error()})
			os.Exit(1)
		}
	}
}

func newOrchestrator(ctx context.Context, cfg *app.Config, logger logging.Logger) (*app.Orchestrator, error) {
	store, err := reportstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}
	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app.NewOrchestrator(cfg, store, wc, logger), nil
}

// runScan prints one report and returns the process exit status.
func runScan(ctx context.Context, args *cli.CLIArgs, logger logging.Logger, out io.Writer) int {
	cfg := app.DefaultConfig()
	cfg.Browser.Headless = args.Headless
	cfg.WebClient.Headless = args.Headless
	cfg.WebClient.Client = webclient.Client(args.Client)
	cfg.MaxLiveSessions = 1

	fail := func(err error) int {
		b, _ := json.Marshal(scanner.Failed(err))
		fmt.Fprintln(out, string(b))
		return 1
	}

	orch, err := newOrchestrator(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	defer orch.Close()

	var rec *reportstore.Record
	if args.File != "" {
		markup, err := os.ReadFile(args.File)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", app.ErrInputUnavailable, err))
		}
		rec, err = orch.ScanHTML(ctx, string(markup), filepath.Base(args.File))
		if err != nil {
			return fail(err)
		}
	} else {
		rec, err = orch.ScanURL(ctx, args.Target, app.Mode(args.Mode))
		if err != nil {
			return fail(err)
		}
	}

	switch args.Format {
	case cli.FormatMarkdown:
		fmt.Fprint(out, report.Markdown(rec, report.View{}))
	case cli.FormatHTML:
		page, err := report.Export(rec, report.View{})
		if err != nil {
			return fail(err)
		}
		_, _ = out.Write(page)
	default:
		b, err := json.MarshalIndent(rec.Report, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Fprintln(out, string(b))
	}
	return 0
}

func runServe(ctx context.Context, args *cli.CLIArgs, logger logging.Logger) error {
	cfg := app.DefaultConfig()
	cfg.Addr = args.Addr
	cfg.Store.DSN = args.Storage
	cfg.Store.RedisURL = args.RedisURL
	cfg.Browser.Headless = args.Headless
	cfg.WebClient.Headless = args.Headless
	cfg.WebClient.Client = webclient.Client(args.Client)

	orch, err := newOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(server.Config{ListenAddr: cfg.Addr, Logger: logger}, orch)
	if err != nil {
		_ = orch.Close()
		return err
	}
	defer srv.Close()

	httpSrv := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: cfg.Addr})
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
