package ws

import (
	"encoding/json"
	"time"

	"energy_report/internal/runner"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeRunRequest    = "run:request"
	TypeStatusRequest = "status:request"

	// Server -> Client
	TypeRunStarted  = "run:started"
	TypeRunFinished = "run:finished"
	TypeRunFailed   = "run:failed"
	TypeRunRejected = "run:rejected"
	TypeStatus      = "status:update"
)

// Server -> Client messages

type RunStartedPayload struct {
	StartedAt string `json:"started_at"`
	Trigger   string `json:"trigger"`
}

type RunFinishedPayload struct {
	RunID            string  `json:"run_id"`
	Success          bool    `json:"success"`
	State            string  `json:"state"`
	Message          string  `json:"message"`
	FilesProcessed   int     `json:"files_processed"`
	RowsAnalyzed     int     `json:"rows_analyzed"`
	DaysAnalyzed     int     `json:"days_analyzed"`
	TotalEnergyKWh   float64 `json:"total_energy_kwh"`
	ReportsGenerated int     `json:"reports_generated"`
	ReportsFailed    int     `json:"reports_failed"`
	PDFSizeKB        float64 `json:"pdf_size_kb"`
	DurationMs       int64   `json:"duration_ms"`
}

type RunRejectedPayload struct {
	Reason string `json:"reason"`
}

// StatusPayload mirrors the /status endpoint.
type StatusPayload struct {
	Status        string  `json:"status"`
	Running       bool    `json:"running"`
	LastGenerated string  `json:"last_generated,omitempty"`
	PDFSizeKB     float64 `json:"pdf_size_kb,omitempty"`
	CSVFilesCount int     `json:"csv_files_count"`
	DataPath      string  `json:"data_path"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func RunFinishedFromSummary(s *runner.RunSummary) RunFinishedPayload {
	return RunFinishedPayload{
		RunID:            s.RunID,
		Success:          s.Success,
		State:            s.State.String(),
		Message:          s.Message,
		FilesProcessed:   s.FilesProcessed,
		RowsAnalyzed:     s.RowsAnalyzed,
		DaysAnalyzed:     s.DaysAnalyzed,
		TotalEnergyKWh:   s.TotalEnergyKWh,
		ReportsGenerated: s.ReportsGenerated,
		ReportsFailed:    s.ReportsFailed,
		PDFSizeKB:        s.PDFSizeKB,
		DurationMs:       s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
