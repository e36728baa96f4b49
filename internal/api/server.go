// Package api serves report generation over HTTP: generate, download and
// status endpoints, a websocket feed of run events and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"energy_report/internal/ingest"
	"energy_report/internal/metrics"
	"energy_report/internal/runner"
	"energy_report/internal/ws"
)

// ErrBusy means a run is already in progress.
var ErrBusy = errors.New("a report run is already in progress")

// Runner executes one report run.
type Runner interface {
	Run(ctx context.Context) (*runner.RunSummary, error)
}

// Notifier is told about every finished run.
type Notifier interface {
	RunFinished(ctx context.Context, s *runner.RunSummary) error
}

type Config struct {
	DataDir string
	// ReportPath is the canonical aggregate PDF.
	ReportPath string
	Version    string
	Location   *time.Location
}

type Options struct {
	Metrics  *metrics.Metrics
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
	// Context bounds runs started by the server; cancel it on shutdown.
	Context context.Context
}

// Server runs at most one report at a time.
type Server struct {
	cfg      Config
	runner   Runner
	metrics  *metrics.Metrics
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	ctx      context.Context

	hub    *ws.Hub
	bridge *ws.Bridge

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

func New(cfg Config, r Runner, opts Options) *Server {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	hub := ws.NewHub(opts.Logger)
	opts.Metrics.WatchHub(hub)
	return &Server{
		cfg:      cfg,
		runner:   r,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
		ctx:      opts.Context,
		hub:      hub,
		bridge:   ws.NewBridge(hub),
	}
}

// Hub returns the websocket hub the server broadcasts to.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Running reports whether a run is in progress.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Generate runs the pipeline synchronously. It returns ErrBusy without
// running when another run holds the slot.
func (s *Server) Generate(trigger string) (*runner.RunSummary, error) {
	if !s.acquire() {
		return nil, ErrBusy
	}
	defer s.release()
	return s.execute(trigger)
}

// StartRun implements ws.Controller.
func (s *Server) StartRun(trigger string) error {
	if !s.acquire() {
		return ErrBusy
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release()
		s.execute(trigger)
	}()
	return nil
}

// Wait blocks until background runs have finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) execute(trigger string) (*runner.RunSummary, error) {
	start := s.now()
	s.logger.Info("report run requested", "trigger", trigger)
	s.bridge.OnRunStarted(start, trigger)
	s.metrics.RunStarted()

	summary, err := s.runner.Run(s.ctx)
	if summary == nil {
		summary = &runner.RunSummary{StartedAt: start, FinishedAt: s.now(), Err: err}
		if err != nil {
			summary.Message = err.Error()
		}
	}

	s.metrics.RunFinished(summary)
	s.bridge.OnRunFinished(summary)
	if s.notifier != nil {
		if nerr := s.notifier.RunFinished(s.ctx, summary); nerr != nil {
			s.logger.Warn("run notification failed", "err", nerr)
		}
	}
	s.bridge.OnStatus(s.Status())
	return summary, err
}

// Status implements ws.Controller.
func (s *Server) Status() ws.StatusPayload {
	st := s.status()
	return ws.StatusPayload{
		Status:        st.Status,
		Running:       st.Running,
		LastGenerated: st.LastGenerated,
		PDFSizeKB:     st.PDFSizeKB,
		CSVFilesCount: st.CSVFilesCount,
		DataPath:      st.DataPath,
	}
}

type statusResponse struct {
	Status             string  `json:"status"`
	Message            string  `json:"message,omitempty"`
	HasReport          bool    `json:"has_report"`
	Running            bool    `json:"running"`
	LastGenerated      string  `json:"last_generated,omitempty"`
	LastGeneratedHuman string  `json:"last_generated_human,omitempty"`
	PDFSizeKB          float64 `json:"pdf_size_kb,omitempty"`
	CSVFilesCount      int     `json:"csv_files_count"`
	DataPath           string  `json:"data_path"`
	DownloadURL        string  `json:"download_url,omitempty"`
}

func (s *Server) status() statusResponse {
	st := statusResponse{
		Running:       s.Running(),
		CSVFilesCount: s.csvFileCount(),
		DataPath:      s.cfg.DataDir,
	}
	info, err := os.Stat(s.cfg.ReportPath)
	if err != nil {
		st.Status = "no_report"
		st.Message = "No report generated yet"
		return st
	}
	mod := info.ModTime().In(s.cfg.Location)
	st.Status = "ready"
	st.HasReport = true
	st.LastGenerated = mod.Format("2006-01-02T15:04:05")
	st.LastGeneratedHuman = mod.Format("02/01/2006 15:04:05")
	st.PDFSizeKB = sizeKB(info.Size())
	st.DownloadURL = downloadPath
	return st
}

func (s *Server) csvFileCount() int {
	files, err := ingest.Discover(s.cfg.DataDir)
	if err != nil {
		return 0
	}
	return len(files)
}

// checkData mirrors the preconditions of a run so that missing input is a
// 404 rather than a failed run.
func (s *Server) checkData() error {
	info, err := os.Stat(s.cfg.DataDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("data folder not found: %s", s.cfg.DataDir)
	}
	if s.csvFileCount() == 0 {
		return fmt.Errorf("no CSV files found in %s", s.cfg.DataDir)
	}
	return nil
}

func sizeKB(n int64) float64 {
	return math.Round(float64(n)/1024*100) / 100
}
