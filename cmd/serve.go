package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thread-digest/internal/httpserver"
	"thread-digest/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, if enabled, the post worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var recent httpserver.RecentStore
		if a.store != nil {
			recent = a.store
		}
		server := httpserver.NewServer(cfg.Server.Addr, a.service, recent, digestOptions(cfg), slog.Default())

		var ws []worker.Worker
		if cfg.Worker.Enabled {
			interval, err := time.ParseDuration(cfg.Worker.Interval)
			if err != nil {
				return fmt.Errorf("invalid worker.interval: %w", err)
			}
			slog.Info("starting post builder", "interval", interval, "output_dir", cfg.Worker.OutputDir)
			ws = append(ws, &worker.PostBuilder{
				Service:   a.service,
				OutputDir: cfg.Worker.OutputDir,
				Interval:  interval,
			})
		}
		mgr := worker.NewManager(ws...)

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			select {
			case s := <-sigc:
				slog.Info("received signal, shutting down", "signal", s)
			case <-ctx.Done():
			}
			cancel()
		}()

		serveErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
				cancel()
			}
		}()

		mgrErr := mgr.Start(ctx)

		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("error shutting down http server", "error", err)
		}
		select {
		case err := <-serveErr:
			return errors.Join(err, mgrErr)
		default:
			return mgrErr
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
