package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"energy_report/internal/collector"
	"energy_report/internal/config"
)

func main() {
	urlFlag := pflag.StringP("url", "u", "", "Home Assistant base URL (overrides HA_URL)")
	tokenFlag := pflag.StringP("token", "t", "", "Long-lived access token (overrides HA_TOKEN)")
	dataFlag := pflag.StringP("data", "d", "", "directory the CSV files are appended to (overrides DATA_PATH)")
	entities := pflag.StringArrayP("entity", "e", nil, "entity to poll as id or id=Name; repeatable (overrides the config file)")
	interval := pflag.Duration("interval", 0, "poll interval (overrides POLL_INTERVAL)")
	once := pflag.Bool("once", false, "poll once and exit")
	pflag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Loading .env: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}

	haURL := resolveFlag(*urlFlag, cfg.HAURL)
	haToken := resolveFlag(*tokenFlag, cfg.HAToken)
	if haURL == "" {
		log.Fatal("HA_URL not set, use --url or set HA_URL in .env")
	}
	if haToken == "" {
		log.Fatal("HA_TOKEN not set, use --token or set HA_TOKEN in .env")
	}
	if *interval > 0 {
		cfg.PollInterval = *interval
	}

	targets := parseEntities(*entities, cfg.Devices)
	if len(targets) == 0 {
		log.Fatal("no entities to poll, use --entity or list collector.devices in the config file")
	}

	dir := resolveFlag(*dataFlag, cfg.DataPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("Creating data directory: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	c := &collector.Collector{
		Client:   collector.NewClient(haURL, haToken, &http.Client{Timeout: 30 * time.Second}),
		Entities: targets,
		Dir:      dir,
		Interval: cfg.PollInterval,
		Logger:   logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		n, err := c.Poll(ctx)
		if err != nil {
			log.Fatalf("Poll: %v", err)
		}
		log.Printf("wrote %d rows to %s", n, c.FileFor(time.Now()))
		return
	}
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Collector: %v", err)
	}
}

func resolveFlag(flagVal, fallback string) string {
	if flagVal != "" {
		return flagVal
	}
	return fallback
}

// parseEntities prefers --entity values over the configured devices.
func parseEntities(flags []string, devices []config.Device) []collector.Entity {
	var out []collector.Entity
	if len(flags) > 0 {
		for _, f := range flags {
			id, name, _ := strings.Cut(f, "=")
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			out = append(out, collector.Entity{ID: id, Name: strings.TrimSpace(name)})
		}
		return out
	}
	for _, d := range devices {
		if d.EntityID == "" {
			continue
		}
		out = append(out, collector.Entity{ID: d.EntityID, Name: d.Name})
	}
	return out
}
