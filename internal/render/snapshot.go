package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"energy_report/internal/model"
)

const datetimeLayout = "2006-01-02 15:04:05"

// snapshotHeader is the source columns followed by the derived ones. The
// timestamp column is always present since synthesized timestamps are
// written back out.
func snapshotHeader(columns []string) []string {
	header := make([]string, 0, len(columns)+len(model.DerivedColumns)+1)
	hasTimestamp := false
	for _, c := range columns {
		if c == string(model.ColTimestamp) {
			hasTimestamp = true
		}
	}
	if !hasTimestamp {
		header = append(header, string(model.ColTimestamp))
	}
	header = append(header, columns...)
	return append(header, model.DerivedColumns...)
}

func snapshotRow(header []string, r model.Record, loc *time.Location) []string {
	row := make([]string, len(header))
	for i, h := range header {
		switch h {
		case string(model.ColTimestamp):
			row[i] = strconv.FormatInt(r.Time.Unix(), 10)
		case "source_file":
			row[i] = r.SourceFile
		case "datetime":
			row[i] = r.Time.In(loc).Format(datetimeLayout)
		case "date":
			row[i] = r.Date
		case "hour":
			row[i] = strconv.Itoa(r.Hour)
		case "day":
			row[i] = strconv.Itoa(r.Day)
		case "month":
			row[i] = strconv.Itoa(r.Month)
		case "year":
			row[i] = strconv.Itoa(r.Year)
		case "weekday":
			row[i] = strconv.Itoa(r.Weekday)
		case "energy_kwh":
			row[i] = r.EnergyKWh.String()
		case "power_factor_est":
			row[i] = r.PowerFactorEst.String()
		default:
			row[i] = r.Fields[h]
		}
	}
	return row
}

// writeCSV writes the normalized records with their derived columns.
func writeCSV(path string, columns []string, records []model.Record, loc *time.Location) error {
	header := snapshotHeader(columns)
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, r := range records {
			if err := cw.Write(snapshotRow(header, r, loc)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// writeJSON writes v indented. The output carries no generation time so
// unchanged input gives identical bytes.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
