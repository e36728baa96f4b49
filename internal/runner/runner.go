// Package runner sequences one report run: discover, load, combine,
// aggregate, assemble and persist. Failures before the data is loaded abort
// the run; failures of single daily or device reports are recorded and the
// run continues.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"energy_report/internal/analysis"
	"energy_report/internal/ingest"
	"energy_report/internal/model"
	"energy_report/internal/render"
	"energy_report/internal/report"
	"energy_report/internal/store"
)

var (
	// ErrArtifactWrite means the aggregate report could not be written.
	ErrArtifactWrite = errors.New("artifact write failed")
	// ErrNoMatchingDevices means a selection was given and no device in the
	// data matched it.
	ErrNoMatchingDevices = errors.New("no matching devices")
)

// Config is the per-run configuration.
type Config struct {
	DataDir       string
	SelectionFile string
	DailyReports  bool
	Constants     analysis.Constants
	// Location is the report time zone; nil means UTC.
	Location *time.Location
}

// ItemResult is the outcome of one daily, device or aggregate report.
type ItemResult struct {
	Kind     report.Kind      `json:"kind"`
	Key      string           `json:"key"`
	Success  bool             `json:"success"`
	Artifact *render.Artifact `json:"artifact,omitempty"`
	Error    string           `json:"error,omitempty"`
	Err      error            `json:"-"`
}

// RunSummary is returned to the caller of Run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Success    bool      `json:"success"`
	State      State     `json:"state"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	FilesFound     int      `json:"files_found"`
	FilesProcessed int      `json:"files_processed"`
	FilesFailed    []string `json:"files_failed,omitempty"`
	RowsAnalyzed   int      `json:"rows_analyzed"`
	DaysAnalyzed   int      `json:"days_analyzed"`
	TotalEnergyKWh float64  `json:"total_energy_kwh"`

	ReportsGenerated int          `json:"reports_generated"`
	ReportsFailed    int          `json:"reports_failed"`
	DevicesFound     int          `json:"devices_found"`
	Items            []ItemResult `json:"items"`

	PDFPath   string  `json:"pdf_path,omitempty"`
	PDFSizeKB float64 `json:"pdf_size_kb"`

	Err error `json:"-"`
}

// Runner runs the report pipeline. It is not safe for concurrent use;
// callers serialize runs.
type Runner struct {
	cfg      Config
	loader   *ingest.Loader
	renderer *render.Renderer
	logger   *slog.Logger
	now      func() time.Time
}

func New(cfg Config, loader *ingest.Loader, renderer *render.Renderer, logger *slog.Logger, now func() time.Time) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Runner{cfg: cfg, loader: loader, renderer: renderer, logger: logger, now: now}
}

// Run executes one run. The returned summary is never nil; err is set
// exactly when the summary reports failure.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	s := &RunSummary{RunID: uuid.NewString(), StartedAt: r.now()}
	log := r.logger.With("run_id", s.RunID)
	log.Info("run started", "data_dir", r.cfg.DataDir)

	err := r.run(ctx, s, log)
	s.FinishedAt = r.now()
	if err != nil {
		s.Err = err
		s.Message = err.Error()
		log.Error("run failed", "state", s.State, "err", err)
		return s, err
	}
	s.Success = true
	s.Message = fmt.Sprintf("generated %d reports from %d files (%d rows)", s.ReportsGenerated, s.FilesProcessed, s.RowsAnalyzed)
	log.Info("run finished", "reports", s.ReportsGenerated, "failed", s.ReportsFailed, "rows", s.RowsAnalyzed)
	return s, nil
}

func (r *Runner) run(ctx context.Context, s *RunSummary, log *slog.Logger) error {
	selection, err := LoadSelection(r.cfg.SelectionFile)
	if err != nil {
		return err
	}

	res, err := r.loader.LoadAll(r.cfg.DataDir)
	if res != nil {
		s.FilesFound = len(res.Files)
		s.State = FilesDiscovered
		s.FilesFailed = lo.Map(res.Failed, func(f ingest.FileResult, _ int) string { return f.Name() })
	}
	if err != nil {
		return err
	}

	parts := lo.Map(res.Loaded, func(f ingest.FileResult, _ int) store.Part {
		return store.Part{Header: f.Header, Records: f.Records}
	})
	ds := store.Combine(parts...)
	files := lo.Map(res.Loaded, func(f ingest.FileResult, _ int) string { return f.Name() })
	s.FilesProcessed = len(files)
	s.RowsAnalyzed = ds.Len()
	s.State = DataLoaded

	general := report.BuildGeneral(ds.Records(), files, r.cfg.Constants)
	s.DaysAnalyzed = general.Analysis.DaysAnalyzed
	s.TotalEnergyKWh = general.Analysis.TotalEnergyKWh
	s.State = Aggregated

	var dailies []report.Daily
	if r.cfg.DailyReports {
		for _, day := range ds.Days() {
			dailies = append(dailies, report.BuildDaily(day, ds.ForDate(day).Records()))
		}
	}

	var devices []report.Device
	var deviceErr error
	found := ds.Devices()
	s.DevicesFound = len(found)
	selected := selectDevices(found, selection)
	if len(selection) > 0 && len(selected) == 0 {
		deviceErr = fmt.Errorf("%w: %d ids selected, %d devices in data", ErrNoMatchingDevices, len(selection), len(found))
		log.Warn("no device matches the selection", "selected", selection)
	}
	// Names are assigned over every device so a selection does not move them.
	ids := lo.Map(found, func(d model.Device, _ int) string { return d.ID })
	safe := make(map[string]string, len(ids))
	for i, name := range report.SafeNames(ids) {
		safe[ids[i]] = name
	}
	for _, dev := range selected {
		sub := ds.ForDevice(dev.ID)
		d := report.BuildDevice(dev, safe[dev.ID], sub.Records(), sub.SourceFiles(), r.cfg.Constants)
		if span, ok := sub.TimeRange(); ok {
			d.Period = report.NewPeriod(span, r.cfg.Location)
		}
		devices = append(devices, d)
	}
	s.State = ReportsAssembled

	columns := ds.Columns()
	art, err := r.renderer.General(general, columns)
	if err != nil {
		s.add(ItemResult{Kind: report.KindGeneral, Key: "general", Err: err})
		return fmt.Errorf("%w: %w", ErrArtifactWrite, err)
	}
	s.add(ItemResult{Kind: report.KindGeneral, Key: "general", Artifact: &art})
	s.PDFPath = art.PDF
	s.PDFSizeKB = math.Round(float64(art.PDFSize)/1024*100) / 100
	log.Info("general report saved", "pdf", art.PDF, "size", art.PDFSize)

	for _, d := range dailies {
		if err := ctx.Err(); err != nil {
			return err
		}
		art, err := r.renderer.Daily(d, columns)
		r.record(s, log, ItemResult{Kind: report.KindDaily, Key: d.Date}, art, err)
	}
	for _, d := range devices {
		if err := ctx.Err(); err != nil {
			return err
		}
		art, err := r.renderer.Device(d, columns)
		r.record(s, log, ItemResult{Kind: report.KindDevice, Key: d.DeviceID}, art, err)
	}
	s.State = Persisted
	return deviceErr
}

func (r *Runner) record(s *RunSummary, log *slog.Logger, item ItemResult, art render.Artifact, err error) {
	if err != nil {
		item.Err = err
		log.Warn("report failed", "kind", item.Kind, "key", item.Key, "err", err)
	} else {
		item.Artifact = &art
		log.Info("report saved", "kind", item.Kind, "key", item.Key, "pdf", art.PDF)
	}
	s.add(item)
}

func (s *RunSummary) add(item ItemResult) {
	if item.Err != nil {
		item.Error = item.Err.Error()
		s.ReportsFailed++
	} else {
		item.Success = true
		s.ReportsGenerated++
	}
	s.Items = append(s.Items, item)
}

// selectDevices keeps the devices listed in selection, in data order. An
// empty selection keeps every device.
func selectDevices(devices []model.Device, selection []string) []model.Device {
	if len(selection) == 0 {
		return devices
	}
	return lo.Filter(devices, func(d model.Device, _ int) bool {
		return lo.Contains(selection, d.ID)
	})
}
