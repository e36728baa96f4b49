// Package render writes report artifacts: PNG charts, the PDF, CSV and JSON
// snapshots and a text summary. It consumes report models and computes
// nothing itself.
package render

import (
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"energy_report/internal/model"
	"energy_report/internal/report"
)

// ChartRenderer draws one chart to a file.
type ChartRenderer interface {
	Write(c report.Chart, path string) error
}

// Artifact lists the files written for one report.
type Artifact struct {
	Dir     string   `json:"dir"`
	PDF     string   `json:"pdf"`
	PDFSize int64    `json:"pdf_size"`
	Charts  []string `json:"charts"`
	CSV     string   `json:"csv"`
	JSON    string   `json:"json"`
	Summary string   `json:"summary"`
}

type placedChart struct {
	Title string
	Path  string
}

// Renderer writes artifacts under a Layout.
type Renderer struct {
	layout Layout
	charts ChartRenderer
	loc    *time.Location
	now    func() time.Time
}

// New returns a Renderer. A nil charts uses a ChartWriter in loc.
func New(layout Layout, charts ChartRenderer, loc *time.Location, now func() time.Time) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	if charts == nil {
		charts = ChartWriter{Location: loc}
	}
	if now == nil {
		now = time.Now
	}
	return &Renderer{layout: layout, charts: charts, loc: loc, now: now}
}

func (r *Renderer) Layout() Layout {
	return r.layout
}

// Daily writes the report of one date.
func (r *Renderer) Daily(d report.Daily, columns []string) (Artifact, error) {
	dir := r.layout.DailyDir(d.Date)
	art := Artifact{
		Dir:     dir,
		PDF:     r.layout.DailyPDF(d.Date),
		CSV:     filepath.Join(dir, dataDir, "daily_data.csv"),
		JSON:    filepath.Join(dir, dataDir, "statistics.json"),
		Summary: filepath.Join(dir, summaryName),
	}
	generated := r.now()

	charts, err := r.writeCharts(dir, d.Charts)
	if err != nil {
		return art, err
	}
	art.Charts = chartPaths(charts)
	if err := writeDailyPDF(art.PDF, d, charts, generated); err != nil {
		return art, err
	}
	if err := writeCSV(art.CSV, columns, d.Records, r.loc); err != nil {
		return art, err
	}
	if err := writeJSON(art.JSON, d); err != nil {
		return art, err
	}
	err = writeSummary(art.Summary, Summary{
		Title:     "Daily energy report " + d.Date,
		Generated: generated,
		Start:     d.Date,
		End:       d.Date,
		EnergyKWh: d.TotalEnergyKWh,
		Days:      1,
		Rows:      d.DataPoints,
		Files:     sourceFiles(d.Records),
		PDF:       art.PDF,
	})
	if err != nil {
		return art, err
	}
	return r.finish(art)
}

// General writes the aggregate report, replacing the previous one.
func (r *Renderer) General(g report.General, columns []string) (Artifact, error) {
	dir := r.layout.GeneralDir()
	art := Artifact{
		Dir:     dir,
		PDF:     r.layout.GeneralPDF(),
		CSV:     filepath.Join(dir, dataDir, "full_data.csv"),
		JSON:    filepath.Join(dir, dataDir, "general_statistics.json"),
		Summary: filepath.Join(dir, summaryName),
	}
	return r.period(art, g, g, columns, func(charts []placedChart, generated time.Time) error {
		return writeGeneralPDF(art.PDF, g, columns, charts, generated)
	})
}

// Device writes the report of one device.
func (r *Renderer) Device(d report.Device, columns []string) (Artifact, error) {
	dir := r.layout.DeviceDir(d.SafeName)
	art := Artifact{
		Dir:     dir,
		PDF:     r.layout.DevicePDF(d.SafeName),
		CSV:     filepath.Join(dir, dataDir, d.SafeName+"_data.csv"),
		JSON:    filepath.Join(dir, dataDir, d.SafeName+"_stats.json"),
		Summary: filepath.Join(dir, summaryName),
	}
	return r.period(art, d.General, d, columns, func(charts []placedChart, generated time.Time) error {
		return writeDevicePDF(art.PDF, d, charts, generated)
	})
}

// period writes the artifacts shared by the general and device reports.
// stats is the value serialized to the JSON snapshot.
func (r *Renderer) period(art Artifact, g report.General, stats any, columns []string,
	pdf func([]placedChart, time.Time) error) (Artifact, error) {
	generated := r.now()

	charts, err := r.writeCharts(art.Dir, g.Charts)
	if err != nil {
		return art, err
	}
	art.Charts = chartPaths(charts)
	if err := pdf(charts, generated); err != nil {
		return art, err
	}
	if err := writeCSV(art.CSV, columns, g.Records, r.loc); err != nil {
		return art, err
	}
	if err := writeJSON(art.JSON, stats); err != nil {
		return art, err
	}
	err = writeSummary(art.Summary, Summary{
		Title:     g.Title,
		Generated: generated,
		Start:     g.Analysis.DateRange.Start,
		End:       g.Analysis.DateRange.End,
		EnergyKWh: g.Analysis.TotalEnergyKWh,
		Days:      g.Analysis.DaysAnalyzed,
		Rows:      g.Analysis.TotalDataPoints,
		Files:     g.Files,
		PDF:       art.PDF,
	})
	if err != nil {
		return art, err
	}
	return r.finish(art)
}

func (r *Renderer) writeCharts(dir string, charts []report.Chart) ([]placedChart, error) {
	placed := make([]placedChart, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, chartsDir, c.Name+".png")
		if err := r.charts.Write(c, path); err != nil {
			return nil, err
		}
		placed = append(placed, placedChart{Title: c.Title, Path: path})
	}
	return placed, nil
}

func (r *Renderer) finish(art Artifact) (Artifact, error) {
	info, err := os.Stat(art.PDF)
	if err != nil {
		return art, err
	}
	art.PDFSize = info.Size()
	return art, nil
}

func chartPaths(charts []placedChart) []string {
	paths := make([]string, len(charts))
	for i, c := range charts {
		paths[i] = c.Path
	}
	return paths
}

func sourceFiles(records []model.Record) []string {
	return lo.Uniq(lo.FilterMap(records, func(r model.Record, _ int) (string, bool) {
		return r.SourceFile, r.SourceFile != ""
	}))
}
