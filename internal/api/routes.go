package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"energy_report/internal/ingest"
	"energy_report/internal/runner"
	"energy_report/internal/ws"
)

const downloadPath = "/download/latest"

type errorResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Summary *runner.RunSummary `json:"summary,omitempty"`
}

type generateResponse struct {
	Status      string             `json:"status"`
	Message     string             `json:"message"`
	PDFSizeKB   float64            `json:"pdf_size_kb"`
	Timestamp   string             `json:"timestamp"`
	DownloadURL string             `json:"download_url"`
	Summary     *runner.RunSummary `json:"summary"`
}

// Router wires every endpoint. Only the websocket route skips the metrics
// wrapper, which cannot hijack connections.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	handle := func(path string, h http.HandlerFunc, methods ...string) {
		r.Handle(path, s.metrics.WrapHandler(path, h)).Methods(methods...)
	}
	handle("/", s.handleIndex, http.MethodGet)
	handle("/health", s.handleHealth, http.MethodGet)
	handle("/generate", s.handleGenerate, http.MethodPost)
	handle(downloadPath, s.handleDownload, http.MethodGet)
	handle("/status", s.handleStatus, http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.Handle("/ws", ws.NewHandler(s.hub, s))

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "online",
		"service": "Energy Report",
		"version": s.cfg.Version,
		"endpoints": map[string]string{
			"generate": "POST /generate",
			"download": "GET " + downloadPath,
			"status":   "GET /status",
			"health":   "GET /health",
			"metrics":  "GET /metrics",
			"events":   "GET /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := s.checkData(); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	summary, err := s.Generate("api")
	if errors.Is(err, ErrBusy) {
		writeJSON(w, http.StatusConflict, errorResponse{Status: "error", Message: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Status: "error", Message: err.Error(), Summary: summary})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Status:      "success",
		Message:     "Report generated successfully",
		PDFSizeKB:   summary.PDFSizeKB,
		Timestamp:   s.now().Format(time.RFC3339),
		DownloadURL: downloadPath,
		Summary:     summary,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrNoDataFound), errors.Is(err, runner.ErrNoMatchingDevices):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrInvalidSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(s.cfg.ReportPath)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Status: "error", Message: "No report available. Generate one first."})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
		return
	}
	name := "energy_report_" + info.ModTime().In(s.cfg.Location).Format("20060102") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
