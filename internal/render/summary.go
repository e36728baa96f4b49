package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Summary is the content of summary.txt.
type Summary struct {
	Title     string
	Generated time.Time
	Start     string
	End       string
	EnergyKWh float64
	Days      int
	Rows      int
	Files     []string
	PDF       string
}

func writeSummary(path string, s Summary) error {
	var b strings.Builder
	fmt.Fprintln(&b, s.Title)
	fmt.Fprintln(&b, strings.Repeat("=", len(s.Title)))
	fmt.Fprintf(&b, "Generated: %s\n", s.Generated.Format(datetimeLayout))
	fmt.Fprintf(&b, "Period: %s - %s\n", orNA(s.Start), orNA(s.End))
	fmt.Fprintf(&b, "Total energy: %.2f kWh\n", s.EnergyKWh)
	fmt.Fprintf(&b, "Days analyzed: %d\n", s.Days)
	fmt.Fprintf(&b, "Rows: %d\n", s.Rows)
	fmt.Fprintf(&b, "Files processed: %d\n", len(s.Files))
	fmt.Fprintf(&b, "PDF: %s\n", filepath.Base(s.PDF))
	if len(s.Files) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Files:")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, b.String())
		return err
	})
}
