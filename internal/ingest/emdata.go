package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"energy_report/internal/model"
)

// EMDataParser parses smart-plug energy exports with a free-form header.
//
// Typical format:
//
//	timestamp,total_act_energy,max_act_power,min_act_power,avg_voltage,avg_current
//	1732186800,12.5,759.59,120.0,229.8,3.1
//
// Every column is optional. Numeric cells that do not parse (e.g. "unavailable")
// leave the field absent for that row.
type EMDataParser struct{}

func (p *EMDataParser) Parse(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Table{}, fmt.Errorf("%w: reading CSV header: %v", ErrMalformedFile, err)
	}
	header = normalizeHeader(header)
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	table := Table{Header: header}
	_, hasTimestamp := index[string(model.ColTimestamp)]

	// A parse error is tolerated only when nothing parseable follows it: the
	// writer may be mid-append on the last line.
	var pending error
	lineNum := 1

	for {
		lineNum++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, csv.ErrFieldCount) {
			if pending != nil {
				return Table{}, fmt.Errorf("%w: %v", ErrMalformedFile, pending)
			}
			pending = fmt.Errorf("line %d: %w", lineNum, err)
			table.Skipped++
			continue
		}
		if pending != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformedFile, pending)
		}

		if len(row) != len(header) {
			table.Skipped++
			continue
		}

		rec, err := parseEMRecord(row, header, index, hasTimestamp)
		if err != nil {
			table.Skipped++
			continue
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func parseEMRecord(row, header []string, index map[string]int, hasTimestamp bool) (model.Record, error) {
	rec := model.Record{Fields: make(map[string]string, len(header))}
	for i, h := range header {
		rec.Fields[h] = strings.TrimSpace(row[i])
	}

	if hasTimestamp {
		ts, err := parseEpochSeconds(rec.Fields[string(model.ColTimestamp)])
		if err != nil {
			return model.Record{}, err
		}
		rec.Timestamp = ts
	}

	rec.TotalActEnergy = floatField(rec.Fields, index, model.ColTotalActEnergy)
	rec.MaxActPower = floatField(rec.Fields, index, model.ColMaxActPower)
	rec.MinActPower = floatField(rec.Fields, index, model.ColMinActPower)
	rec.AvgVoltage = floatField(rec.Fields, index, model.ColAvgVoltage)
	rec.AvgCurrent = floatField(rec.Fields, index, model.ColAvgCurrent)
	rec.LagReactEnergy = floatField(rec.Fields, index, model.ColLagReactEnergy)
	rec.EntityID = rec.Fields[string(model.ColEntityID)]
	rec.FriendlyName = rec.Fields[string(model.ColFriendlyName)]

	return rec, nil
}

func floatField(fields map[string]string, index map[string]int, col model.Column) model.Value {
	if _, ok := index[string(col)]; !ok {
		return model.Value{}
	}
	v, err := strconv.ParseFloat(fields[string(col)], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Value{}
	}
	return model.Some(v)
}

// parseEpochSeconds parses a Unix epoch (seconds, possibly fractional).
func parseEpochSeconds(s string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q as unix timestamp: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parsing %q as unix timestamp: not finite", s)
	}
	sec, _ := math.Modf(f)
	return int64(sec), nil
}
