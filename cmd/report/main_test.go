package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/config"
	"energy_report/internal/report"
	"energy_report/internal/runner"
)

type scriptedReader struct {
	line string
	err  error
}

func (s scriptedReader) Readline() (string, error) {
	return s.line, s.err
}

func TestIsYes(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y", true},
		{"Y", true},
		{" yes ", true},
		{"n", false},
		{"", false},
		{"yep", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, isYes(tt.answer))
		})
	}
}

func TestAsk(t *testing.T) {
	ok, err := ask(scriptedReader{line: "y"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ask(scriptedReader{err: io.EOF})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ask(scriptedReader{err: readline.ErrInterrupt})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnsureDataDir_Yes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	created, err := ensureDataDir(dir, true)

	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, dir)
}

func TestOptionsApply(t *testing.T) {
	cfg := config.Default()
	options{dataDir: "in", outputDir: "out", selection: "sel.json", timezone: "Europe/Rome", noDaily: true, noCorrect: true}.apply(&cfg)

	assert.Equal(t, "in", cfg.DataPath)
	assert.Equal(t, "out", cfg.OutputPath)
	assert.Equal(t, "sel.json", cfg.SelectionFile)
	assert.Equal(t, "Europe/Rome", cfg.Timezone)
	assert.False(t, cfg.DailyReports)
	assert.False(t, cfg.CorrectTimestamps)

	cfg = config.Default()
	options{}.apply(&cfg)
	assert.Equal(t, config.Default().DataPath, cfg.DataPath)
	assert.True(t, cfg.DailyReports)
}

func TestLookupWith(t *testing.T) {
	t.Setenv("REPORT_CONFIG", "env.yaml")

	v, ok := lookupWith("flag.yaml")("REPORT_CONFIG")
	assert.True(t, ok)
	assert.Equal(t, "flag.yaml", v)

	v, _ = lookupWith("")("REPORT_CONFIG")
	assert.Equal(t, "env.yaml", v)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &runner.RunSummary{
		Success:          true,
		State:            runner.Persisted,
		FilesFound:       3,
		FilesProcessed:   2,
		FilesFailed:      []string{"broken.csv"},
		RowsAnalyzed:     48,
		TotalEnergyKWh:   7.5,
		ReportsGenerated: 3,
		ReportsFailed:    1,
		Items: []runner.ItemResult{
			{Kind: report.KindDaily, Key: "2024-11-19", Error: "disk full"},
		},
		PDFPath:   "reports/general/report_general.pdf",
		PDFSizeKB: 12.5,
	}, "reports/general/report_general.pdf")

	out := buf.String()
	assert.Contains(t, out, "Analysis complete")
	assert.Contains(t, out, "Files processed:   2 of 3")
	assert.Contains(t, out, "skipped broken.csv")
	assert.Contains(t, out, "Total energy:      7.50 kWh")
	assert.Contains(t, out, "daily 2024-11-19: disk full")
	assert.Contains(t, out, "(12.50 KB)")
}

func TestPrintSummary_Failure(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &runner.RunSummary{Message: "no data files found in data"}, "")

	assert.Contains(t, buf.String(), "Analysis failed: no data files found in data")
	assert.NotContains(t, buf.String(), "General report")
}
