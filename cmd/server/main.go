package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/spf13/pflag"

	"energy_report/internal/api"
	"energy_report/internal/collector"
	"energy_report/internal/config"
	"energy_report/internal/metrics"
	"energy_report/internal/notify"
	"energy_report/internal/runner"
)

const version = "1.0.0"

func main() {
	addr := pflag.String("addr", "", "listen address (overrides BIND_ADDR)")
	noCollector := pflag.Bool("no-collector", false, "do not poll Home Assistant even when HA_URL is set")
	pflag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Loading .env: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}
	if *addr != "" {
		cfg.BindAddr = *addr
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, layout, err := runner.FromConfig(cfg, logger, nil)
	if err != nil {
		log.Fatalf("Setting up pipeline: %v", err)
	}
	m := metrics.New()

	opts := api.Options{Metrics: m, Logger: logger, Context: ctx}
	if n := connectNotifier(ctx, cfg, logger); n != nil {
		opts.Notifier = n
	}
	srv := api.New(api.Config{
		DataDir:    cfg.DataPath,
		ReportPath: layout.GeneralPDF(),
		Version:    version,
		Location:   loc,
	}, r, opts)

	if c := newCollector(cfg, m, logger); c != nil && !*noCollector {
		go func() {
			if err := c.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("collector stopped", "err", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           wrap(srv.Router(), os.Stdout),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		srv.Hub().Close()
	}()

	logger.Info("starting server", "addr", cfg.BindAddr, "data", cfg.DataPath, "output", cfg.OutputPath, "version", version)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	srv.Wait()
	logger.Info("server stopped")
}

// wrap adds access logging and panic recovery.
func wrap(h http.Handler, accessLog io.Writer) http.Handler {
	return handlers.RecoveryHandler()(handlers.LoggingHandler(accessLog, h))
}

// connectNotifier returns nil when MQTT is not configured or the broker
// cannot be reached; the server runs without notifications then.
func connectNotifier(ctx context.Context, cfg config.Config, logger *slog.Logger) *notify.Notifier {
	if cfg.MQTTBroker == "" {
		return nil
	}
	pub, err := notify.Connect(notify.Options{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTTopicPrefix,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	}, 10*time.Second, logger)
	if err != nil {
		logger.Warn("mqtt disabled", "err", err)
		return nil
	}
	go func() {
		<-ctx.Done()
		pub.Close()
	}()

	n := notify.New(pub, cfg.MQTTTopicPrefix, logger)
	if err := n.Announce(ctx); err != nil {
		logger.Warn("publishing discovery configs", "err", err)
	}
	return n
}

// newCollector returns nil unless Home Assistant and at least one device
// are configured.
func newCollector(cfg config.Config, rec collector.Recorder, logger *slog.Logger) *collector.Collector {
	if cfg.HAURL == "" || cfg.HAToken == "" || len(cfg.Devices) == 0 {
		return nil
	}
	entities := make([]collector.Entity, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		entities = append(entities, collector.Entity{ID: d.EntityID, Name: d.Name})
	}
	return &collector.Collector{
		Client:   collector.NewClient(cfg.HAURL, cfg.HAToken, &http.Client{Timeout: 30 * time.Second}),
		Entities: entities,
		Dir:      cfg.DataPath,
		Interval: cfg.PollInterval,
		Logger:   logger,
		Recorder: rec,
	}
}
