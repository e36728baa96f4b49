package report

import (
	"time"

	"energy_report/internal/analysis"
	"energy_report/internal/model"
)

const periodLayout = "2006-01-02 15:04"

// Period is the first and last reading time of a device.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewPeriod formats span as wall-clock times in loc.
func NewPeriod(span model.TimeRange, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	return Period{
		Start: span.Start.In(loc).Format(periodLayout),
		End:   span.End.In(loc).Format(periodLayout),
	}
}

// Device is the report for one metering device. The identity only labels
// the report; the numbers are those of a General report over its records.
type Device struct {
	DeviceID     string `json:"device_id"`
	FriendlyName string `json:"friendly_name"`
	SafeName     string `json:"safe_name"`
	Period       Period `json:"period"`
	General
}

// BuildDevice analyzes the records of one device. safe names its directory
// and charts and defaults to SafeName(dev.ID). Period is set by the caller.
func BuildDevice(dev model.Device, safe string, records []model.Record, files []string, c analysis.Constants) Device {
	name := dev.Name
	if name == "" {
		name = dev.ID
	}
	if safe == "" {
		safe = SafeName(dev.ID)
	}
	d := Device{
		DeviceID:     dev.ID,
		FriendlyName: name,
		SafeName:     safe,
		General:      buildPeriod("Device report: "+name, records, files, c),
	}

	d.Charts = appendChart(d.Charts, powerLine(d.SafeName+"_power_trend", "Power over time", "Date/time", records))
	d.Charts = appendChart(d.Charts, dailyEnergyBar(d.SafeName+"_daily_energy", "Energy per day", d.Analysis.DailyEnergy))
	d.Charts = appendChart(d.Charts, hourlyProfile(d.SafeName+"_hourly_profile", "Hourly profile", records))
	return d
}
