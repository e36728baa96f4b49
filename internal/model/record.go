package model

import (
	"strconv"
	"time"
)

// Column is a CSV header name known to the pipeline.
type Column string

const (
	ColTimestamp      Column = "timestamp"
	ColTotalActEnergy Column = "total_act_energy"
	ColMaxActPower    Column = "max_act_power"
	ColMinActPower    Column = "min_act_power"
	ColAvgVoltage     Column = "avg_voltage"
	ColAvgCurrent     Column = "avg_current"
	ColLagReactEnergy Column = "lag_react_energy"
	ColEntityID       Column = "entity_id"
	ColFriendlyName   Column = "friendly_name"
)

// ColumnInfo holds display name and unit for a known column.
type ColumnInfo struct {
	Name string
	Unit string
}

// ColumnCatalog maps every known Column to its display name and unit.
var ColumnCatalog = map[Column]ColumnInfo{
	ColTimestamp:      {Name: "Timestamp", Unit: "s"},
	ColTotalActEnergy: {Name: "Active Energy", Unit: "Wh"},
	ColMaxActPower:    {Name: "Max Active Power", Unit: "W"},
	ColMinActPower:    {Name: "Min Active Power", Unit: "W"},
	ColAvgVoltage:     {Name: "Average Voltage", Unit: "V"},
	ColAvgCurrent:     {Name: "Average Current", Unit: "A"},
	ColLagReactEnergy: {Name: "Lagging Reactive Energy", Unit: "varh"},
	ColEntityID:       {Name: "Entity ID"},
	ColFriendlyName:   {Name: "Friendly Name"},
}

// DerivedColumns are appended to every snapshot after the source columns.
var DerivedColumns = []string{
	"source_file", "datetime", "date", "hour", "day", "month", "year", "weekday",
	"energy_kwh", "power_factor_est",
}

// DateLayout is the layout of Record.Date.
const DateLayout = "2006-01-02"

// Value is a float that may be absent from the source row.
type Value struct {
	V  float64
	OK bool
}

// Some returns a present Value.
func Some(v float64) Value {
	return Value{V: v, OK: true}
}

// Get returns the value and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.V, v.OK
}

func (v Value) String() string {
	if !v.OK {
		return ""
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

// Record is one CSV row. Every measurement is optional; Time and the
// calendar fields are set once the row has been normalized.
type Record struct {
	SourceFile string
	// Fields holds every source column verbatim, keyed by header name.
	Fields map[string]string

	Timestamp   int64 // epoch seconds as read (or synthesized)
	Synthesized bool
	RawTime     time.Time
	Time        time.Time
	Corrected   bool

	TotalActEnergy Value
	MaxActPower    Value
	MinActPower    Value
	AvgVoltage     Value
	AvgCurrent     Value
	LagReactEnergy Value
	EntityID       string
	FriendlyName   string

	Date    string
	Hour    int
	Day     int
	Month   int
	Year    int
	Weekday int // 0 = Monday

	EnergyKWh      Value
	PowerFactorEst Value
}

// HasDevice reports whether the row carries a device identity.
func (r Record) HasDevice() bool {
	return r.EntityID != ""
}

// Device identifies one metering device.
type Device struct {
	ID   string
	Name string
}

// TimeRange is the first and last reading time of a dataset.
type TimeRange struct {
	Start time.Time
	End   time.Time
}
