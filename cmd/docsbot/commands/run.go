package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/54b3r/docsbot-go/internal/answer"
	"github.com/54b3r/docsbot-go/internal/bot"
	"github.com/54b3r/docsbot-go/internal/config"
	"github.com/54b3r/docsbot-go/internal/context7"
	"github.com/54b3r/docsbot-go/internal/history"
	"github.com/54b3r/docsbot-go/internal/metrics"
	"github.com/54b3r/docsbot-go/internal/render"
)

// NewRunCmd constructs the `docsbot run` subcommand, which connects to
// Discord and serves slash commands until interrupted.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and answer /ask questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(loadedConfig, rootLogger)
		},
	}
}

// runBot wires the components together and blocks until SIGINT/SIGTERM.
func runBot(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	client := context7.New(context7.Config{
		BaseURL:   cfg.Context7.BaseURL,
		APIKey:    cfg.Context7.APIKey,
		RateLimit: cfg.Context7.RateLimit,
		RateBurst: cfg.Context7.RateBurst,
	}, log, m)
	defer client.Close()

	hist, err := openHistory(cfg, log)
	if err != nil {
		return err
	}
	if hist != nil {
		defer hist.Close()
	}

	limits := render.Limits{
		MaxFields:   cfg.Render.MaxFields,
		MaxFieldLen: cfg.Render.MaxFieldLen,
		MaxTotalLen: cfg.Render.MaxTotalLen,
	}

	b, err := bot.New(cfg, answer.New(client), limits, hist, m, log)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, registry, log)
	}

	if err := b.Start(); err != nil {
		return err
	}
	log.Info("docsbot: running, press Ctrl+C to exit")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("docsbot: shutting down")
	return b.Stop()
}

// openHistory opens the question history store unless disabled. A missing
// DBPath falls back to the default location.
func openHistory(cfg config.Config, log *slog.Logger) (history.Store, error) {
	path := cfg.History.DBPath
	if path == "disabled" {
		log.Info("history: disabled by configuration")
		return nil, nil
	}
	if path == "" {
		var err error
		path, err = history.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	log.Info("history: question store open", slog.String("path", path))
	return store, nil
}

// serveMetrics exposes /metrics on addr. Listener failures are logged, not
// fatal — the bot keeps running without metrics.
func serveMetrics(addr string, registry *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("metrics: listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics: listener failed", slog.String("error", err.Error()))
	}
}
