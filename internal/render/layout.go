package render

import (
	"path/filepath"
	"strings"
)

// Layout maps reports to paths under the output root.
//
//	<root>/daily/2024-11-21/report_daily_20241121.pdf
//	<root>/general/report_general.pdf
//	<root>/general/<safe_id>/report_<safe_id>.pdf
//
// Every report directory has charts/ and data/ subdirectories.
type Layout struct {
	Root string
}

const (
	chartsDir   = "charts"
	dataDir     = "data"
	summaryName = "summary.txt"

	GeneralPDFName = "report_general.pdf"
)

func (l Layout) DailyDir(date string) string {
	return filepath.Join(l.Root, "daily", date)
}

func (l Layout) DailyPDF(date string) string {
	return filepath.Join(l.DailyDir(date), "report_daily_"+strings.ReplaceAll(date, "-", "")+".pdf")
}

func (l Layout) GeneralDir() string {
	return filepath.Join(l.Root, "general")
}

// GeneralPDF is the canonical aggregate report, overwritten on every run.
func (l Layout) GeneralPDF() string {
	return filepath.Join(l.GeneralDir(), GeneralPDFName)
}

func (l Layout) DeviceDir(safeName string) string {
	return filepath.Join(l.GeneralDir(), safeName)
}

func (l Layout) DevicePDF(safeName string) string {
	return filepath.Join(l.DeviceDir(safeName), "report_"+safeName+".pdf")
}
