// Package notify publishes run summaries over MQTT together with Home
// Assistant discovery configs, so the last report shows up as sensors.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"energy_report/internal/runner"
)

const discoveryPrefix = "homeassistant"

// LastReport is the retained state payload.
type LastReport struct {
	RunID            string  `json:"run_id"`
	GeneratedAt      string  `json:"generated_at"`
	TotalEnergyKWh   float64 `json:"total_energy_kwh"`
	RowsAnalyzed     int     `json:"rows_analyzed"`
	DaysAnalyzed     int     `json:"days_analyzed"`
	FilesProcessed   int     `json:"files_processed"`
	ReportsGenerated int     `json:"reports_generated"`
	ReportsFailed    int     `json:"reports_failed"`
	PDFSizeKB        float64 `json:"pdf_size_kb"`
}

type haDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
}

type haEntityConfig struct {
	Name             string   `json:"name,omitempty"`
	DeviceClass      string   `json:"device_class,omitempty"`
	StateTopic       string   `json:"state_topic"`
	UnitOfMeasure    string   `json:"unit_of_measurement,omitempty"`
	ValueTemplate    string   `json:"value_template"`
	UniqueID         string   `json:"unique_id"`
	StateClass       string   `json:"state_class,omitempty"`
	DisplayPrecision int      `json:"suggested_display_precision,omitempty"`
	Device           haDevice `json:"device"`
}

type sensor struct {
	key, name, deviceClass, unit, stateClass string
	precision                                int
}

var sensors = []sensor{
	{key: "total_energy_kwh", name: "Last report energy", deviceClass: "energy", unit: "kWh", stateClass: "measurement", precision: 2},
	{key: "rows_analyzed", name: "Last report rows", stateClass: "measurement"},
}

// Notifier turns run summaries into MQTT messages.
type Notifier struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
}

func New(pub Publisher, prefix string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix == "" {
		prefix = "energy_report"
	}
	return &Notifier{pub: pub, prefix: prefix, logger: logger}
}

// StateTopic is where the retained LastReport payload lives.
func (n *Notifier) StateTopic() string {
	return n.prefix + "/last_report"
}

// Announce publishes the discovery configs. Home Assistant keeps them
// retained, so calling it on every connect is enough.
func (n *Notifier) Announce(ctx context.Context) error {
	for _, s := range sensors {
		cfg := haEntityConfig{
			Name:             s.name,
			DeviceClass:      s.deviceClass,
			StateTopic:       n.StateTopic(),
			UnitOfMeasure:    s.unit,
			ValueTemplate:    "{{ value_json." + s.key + " }}",
			UniqueID:         n.prefix + "_last_report_" + s.key,
			StateClass:       s.stateClass,
			DisplayPrecision: s.precision,
			Device: haDevice{
				Identifiers: []string{n.prefix},
				Name:        "Energy report",
				Model:       "report generator",
			},
		}
		payload, err := json.Marshal(cfg)
		if err != nil {
			return err
		}
		topic := fmt.Sprintf("%s/sensor/%s/config", discoveryPrefix, cfg.UniqueID)
		if err := n.pub.Publish(ctx, Message{Topic: topic, Payload: payload, QoS: 2, Retain: true}); err != nil {
			return err
		}
	}
	return nil
}

// RunFinished publishes the summary of a successful run. Failed runs
// leave the last good state in place.
func (n *Notifier) RunFinished(ctx context.Context, s *runner.RunSummary) error {
	if s == nil || !s.Success {
		return nil
	}
	payload, err := json.Marshal(LastReport{
		RunID:            s.RunID,
		GeneratedAt:      s.FinishedAt.UTC().Format(time.RFC3339),
		TotalEnergyKWh:   s.TotalEnergyKWh,
		RowsAnalyzed:     s.RowsAnalyzed,
		DaysAnalyzed:     s.DaysAnalyzed,
		FilesProcessed:   s.FilesProcessed,
		ReportsGenerated: s.ReportsGenerated,
		ReportsFailed:    s.ReportsFailed,
		PDFSizeKB:        s.PDFSizeKB,
	})
	if err != nil {
		return err
	}
	if err := n.pub.Publish(ctx, Message{Topic: n.StateTopic(), Payload: payload, QoS: 1, Retain: true}); err != nil {
		return err
	}
	n.logger.Info("published run summary", "topic", n.StateTopic(), "run_id", s.RunID)
	return nil
}
