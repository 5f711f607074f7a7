// Package main provides the dealdesk binary entry point. Dealdesk turns
// structured sales-opportunity data into multi-section sales proposals,
// orchestrating an external generative service with a deterministic
// fallback.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	// Register generative providers via init()
	_ "github.com/c360studio/dealdesk/llm/providers"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/c360studio/dealdesk/config"
	"github.com/c360studio/dealdesk/events"
	"github.com/c360studio/dealdesk/httpapi"
	"github.com/c360studio/dealdesk/llm"
	"github.com/c360studio/dealdesk/proposal"
	"github.com/c360studio/dealdesk/stats"
)

const (
	Version = "1.0.0"
	appName = "dealdesk"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Deal desk proposal generation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(configCmd())

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, Version)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration valid, listening on %s\n", cfg.Addr())
			return nil
		},
	})
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := llm.NewClient(cfg.Model.Provider, cfg.Model.Endpoint, cfg.Model.Name,
		llm.WithLogger(logger))

	generator := proposal.NewGenerator(client, cfg.Model.Timeout, logger)
	if generator.FallbackOnly() {
		logger.Warn("No generative credential configured, serving deterministic fallback content",
			"provider", cfg.Model.Provider)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	aggregator := stats.New(registry)

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			// Event hand-off is an optional integration, never a
			// startup failure.
			logger.Warn("NATS unavailable, event publishing disabled",
				"url", cfg.NATS.URL, "error", err)
			nc = nil
		} else {
			defer nc.Close()
		}
	}
	publisher := events.NewPublisher(nc, logger)

	app := httpapi.NewApp(cfg, generator, aggregator, publisher, logger, Version)
	handler := httpapi.NewRouter(app, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Server.HotReload {
		watcher, werr := config.NewWatcher(config.WatcherConfig{
			Path:   config.ResolvePath(),
			Logger: logger,
		})
		if werr != nil {
			logger.Warn("Config watcher unavailable", "error", werr)
		} else {
			if werr := watcher.Start(ctx); werr != nil {
				logger.Warn("Config watcher failed to start", "error", werr)
			} else {
				defer watcher.Stop()
				go func() {
					for reloaded := range watcher.Reloads() {
						app.UpdateConfig(reloaded)
					}
				}()
			}
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Writes stay open across the bounded generation call.
		WriteTimeout: cfg.Model.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listen", "addr", cfg.Addr(), "version", Version)
		if serr := srv.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
			errCh <- serr
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigc:
		logger.Info("shutdown_signal", "signal", s.String())
	case serr := <-errCh:
		return fmt.Errorf("http server: %w", serr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_error", "error", err)
	}
	logger.Info("service_stopped")
	return nil
}
