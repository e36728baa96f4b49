// Package collector polls Home Assistant for power readings and appends them
// to daily CSV files in the input format of the report pipeline.
package collector

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Header is the column layout of the files written by the collector.
var Header = []string{
	"timestamp", "entity_id", "friendly_name",
	"max_act_power", "avg_voltage", "avg_current", "total_act_energy",
}

// Entity is one polled sensor. Name overrides the friendly name reported
// by Home Assistant.
type Entity struct {
	ID   string
	Name string
}

// Recorder observes poll rounds.
type Recorder interface {
	PollCompleted(rows, failures int, elapsed time.Duration)
}

// Reading is one row of the output file.
type Reading struct {
	Time         time.Time
	EntityID     string
	FriendlyName string
	PowerW       float64
	VoltageV     *float64
	CurrentA     *float64
	EnergyWh     float64
}

func (r Reading) row() []string {
	return []string{
		strconv.FormatInt(r.Time.Unix(), 10),
		r.EntityID,
		r.FriendlyName,
		formatFloat(r.PowerW),
		formatOptional(r.VoltageV),
		formatOptional(r.CurrentA),
		formatFloat(r.EnergyWh),
	}
}

// Collector appends one row per entity every Interval.
type Collector struct {
	Client   *Client
	Entities []Entity
	Dir      string
	Interval time.Duration
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

// Run polls until ctx is done. A failed round is logged and the next tick
// tries again.
func (c *Collector) Run(ctx context.Context) error {
	if c.Interval <= 0 {
		return fmt.Errorf("collector interval must be positive, got %s", c.Interval)
	}
	c.logger().Info("collector started", "entities", len(c.Entities), "interval", c.Interval, "dir", c.Dir)

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		if _, err := c.Poll(ctx); err != nil && ctx.Err() == nil {
			c.logger().Warn("poll failed", "err", err)
		}
		select {
		case <-ctx.Done():
			c.logger().Info("collector stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Poll fetches every entity once and appends the readings. Entities that
// fail are logged and skipped; the error is set only when nothing could be
// written.
func (c *Collector) Poll(ctx context.Context) (int, error) {
	start := time.Now()
	now := c.now()

	var readings []Reading
	var failures int
	for _, e := range c.Entities {
		s, err := c.Client.State(ctx, e.ID)
		if err != nil {
			failures++
			c.logger().Warn("fetching state", "entity", e.ID, "err", err)
			continue
		}
		r, ok := toReading(s, e, now, c.Interval)
		if !ok {
			c.logger().Debug("skipping non-numeric state", "entity", e.ID, "state", s.State)
			continue
		}
		readings = append(readings, r)
	}

	var err error
	if len(readings) > 0 {
		err = c.append(now, readings)
	} else if failures > 0 {
		err = fmt.Errorf("all %d entities failed", failures)
	}
	if c.Recorder != nil {
		c.Recorder.PollCompleted(len(readings), failures, time.Since(start))
	}
	if err != nil {
		return 0, err
	}
	return len(readings), nil
}

// FileFor is the file receiving readings taken at t.
func (c *Collector) FileFor(t time.Time) string {
	return filepath.Join(c.Dir, "emdata_"+t.UTC().Format("20060102")+".csv")
}

// append writes the rows with a single write call so a concurrent reader
// sees at most one partial trailing line.
func (c *Collector) append(now time.Time, readings []Reading) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Dir, err)
	}
	path := c.FileFor(now)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	for _, r := range readings {
		if err := w.Write(r.row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// toReading converts a power sensor state. Energy is the power held over
// one interval, in Wh.
func toReading(s State, e Entity, now time.Time, interval time.Duration) (Reading, bool) {
	power, err := strconv.ParseFloat(s.State, 64)
	if err != nil {
		return Reading{}, false
	}
	name := e.Name
	if name == "" {
		name = s.FriendlyName()
	}
	if name == "" {
		name = e.ID
	}
	return Reading{
		Time:         now,
		EntityID:     e.ID,
		FriendlyName: name,
		PowerW:       power,
		VoltageV:     numericAttr(s.Attributes, "voltage"),
		CurrentA:     numericAttr(s.Attributes, "current"),
		EnergyWh:     power * interval.Hours(),
	}, true
}

func numericAttr(attrs map[string]any, key string) *float64 {
	switch v := attrs[key].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
