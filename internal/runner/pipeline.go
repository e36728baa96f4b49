package runner

import (
	"log/slog"
	"time"

	"energy_report/internal/config"
	"energy_report/internal/ingest"
	"energy_report/internal/render"
)

// FromConfig wires a loader, a renderer and a runner for cfg. The layout is
// returned so callers can find the canonical report.
func FromConfig(cfg config.Config, logger *slog.Logger, now func() time.Time) (*Runner, render.Layout, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, render.Layout{}, err
	}
	if now == nil {
		now = time.Now
	}

	opts := cfg.IngestOptions()
	opts.Now = now
	loader := ingest.NewLoader(&ingest.EMDataParser{}, opts, logger)

	renderer := render.New(render.Layout{Root: cfg.OutputPath}, nil, loc, now)

	r := New(Config{
		DataDir:       cfg.DataPath,
		SelectionFile: cfg.SelectionFile,
		DailyReports:  cfg.DailyReports,
		Constants:     cfg.Constants,
		Location:      loc,
	}, loader, renderer, logger, now)
	return r, renderer.Layout(), nil
}
