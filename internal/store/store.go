package store

import (
	"sort"

	"github.com/samber/lo"

	"energy_report/internal/model"
)

// Part is the normalized output of one source file.
type Part struct {
	Header  []string
	Records []model.Record
}

// Dataset holds normalized records in memory, sorted by Time. It is never
// modified after construction; every query returns a new slice or Dataset.
type Dataset struct {
	records []model.Record // sorted by Time, stable w.r.t. discovery order
	columns []string
}

// Combine concatenates parts in the given order and stable-sorts the result
// by Time. Duplicate or overlapping readings are preserved.
func Combine(parts ...Part) *Dataset {
	total := 0
	for _, p := range parts {
		total += len(p.Records)
	}

	records := make([]model.Record, 0, total)
	var columns []string
	seen := make(map[string]bool)
	for _, p := range parts {
		records = append(records, p.Records...)
		for _, h := range p.Header {
			if !seen[h] {
				seen[h] = true
				columns = append(columns, h)
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})

	return &Dataset{records: records, columns: columns}
}

func (d *Dataset) derive(records []model.Record) *Dataset {
	return &Dataset{records: records, columns: d.columns}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the sorted records. Callers must not modify them.
func (d *Dataset) Records() []model.Record {
	return d.records
}

// Columns returns the union of the source headers in first-seen order.
func (d *Dataset) Columns() []string {
	return d.columns
}

// TimeRange returns the time range covered by the records.
func (d *Dataset) TimeRange() (model.TimeRange, bool) {
	if len(d.records) == 0 {
		return model.TimeRange{}, false
	}
	return model.TimeRange{
		Start: d.records[0].Time,
		End:   d.records[len(d.records)-1].Time,
	}, true
}

// Filter returns the records for which keep returns true, in order.
func (d *Dataset) Filter(keep func(model.Record) bool) *Dataset {
	return d.derive(lo.Filter(d.records, func(r model.Record, _ int) bool {
		return keep(r)
	}))
}

// Days returns the distinct calendar dates, ascending.
func (d *Dataset) Days() []string {
	days := lo.Uniq(lo.Map(d.records, func(r model.Record, _ int) string {
		return r.Date
	}))
	sort.Strings(days)
	return days
}

// ForDate returns the records of one calendar date.
func (d *Dataset) ForDate(date string) *Dataset {
	return d.Filter(func(r model.Record) bool { return r.Date == date })
}

// HasDevices reports whether any record carries a device identity.
func (d *Dataset) HasDevices() bool {
	return lo.ContainsBy(d.records, func(r model.Record) bool { return r.HasDevice() })
}

// Devices returns the distinct devices in order of first appearance. The
// name is the friendly name of the device's first record, or its ID.
func (d *Dataset) Devices() []model.Device {
	var devices []model.Device
	seen := make(map[string]bool)
	for _, r := range d.records {
		if !r.HasDevice() || seen[r.EntityID] {
			continue
		}
		seen[r.EntityID] = true
		name := r.FriendlyName
		if name == "" {
			name = r.EntityID
		}
		devices = append(devices, model.Device{ID: r.EntityID, Name: name})
	}
	return devices
}

// ForDevice returns the records of one device.
func (d *Dataset) ForDevice(id string) *Dataset {
	return d.Filter(func(r model.Record) bool { return r.EntityID == id })
}

// SourceFiles returns the distinct source file names in record order.
func (d *Dataset) SourceFiles() []string {
	return lo.Uniq(lo.Map(d.records, func(r model.Record, _ int) string {
		return r.SourceFile
	}))
}
