package report

import (
	"strings"

	"energy_report/internal/analysis"
	"energy_report/internal/model"
)

// HourRow is one line of the hourly table.
type HourRow struct {
	Hour    int     `json:"hour"`
	MeanW   float64 `json:"mean"`
	MaxW    float64 `json:"max"`
	MinW    float64 `json:"min"`
	Samples int     `json:"samples"`
}

// Daily is the report for one calendar date.
type Daily struct {
	Date            string           `json:"date"`
	TotalEnergyKWh  float64          `json:"total_energy_kwh"`
	AvgPowerW       float64          `json:"avg_power_w"`
	MaxPowerW       float64          `json:"max_power_w"`
	MinPowerW       float64          `json:"min_power_w"`
	AvgVoltage      float64          `json:"avg_voltage"`
	AvgCurrent      float64          `json:"avg_current"`
	DataPoints      int              `json:"data_points"`
	PeakCount       int              `json:"peak_count"`
	PeakThresholdW  float64          `json:"peak_threshold_w"`
	Hourly          []HourRow        `json:"hourly_stats"`
	Recommendations []Recommendation `json:"recommendations"`

	Records []model.Record `json:"-"`
	Charts  []Chart        `json:"-"`
}

// BuildDaily summarizes the records of one date. The hourly table always
// has 24 rows; hours without data are zero.
func BuildDaily(date string, records []model.Record) Daily {
	s := analysis.SummarizePeriod(date, records)
	peaks := analysis.DetectPeaks(records)

	d := Daily{
		Date:           date,
		TotalEnergyKWh: s.EnergyKWh,
		AvgPowerW:      s.Power.Mean,
		MaxPowerW:      s.Power.Max,
		MinPowerW:      s.LowPower.Min,
		AvgVoltage:     s.Voltage.Mean,
		AvgCurrent:     s.Current.Mean,
		DataPoints:     len(records),
		PeakCount:      peaks.Count,
		PeakThresholdW: peaks.ThresholdW,
		Hourly:         make([]HourRow, 24),
		Records:        records,
	}

	byHour := make([][]model.Record, 24)
	for _, r := range records {
		if r.Hour >= 0 && r.Hour < 24 {
			byHour[r.Hour] = append(byHour[r.Hour], r)
		}
	}
	for h, rs := range byHour {
		d.Hourly[h].Hour = h
		p := analysis.Summarize(analysis.Values(rs, analysis.Power))
		if p.Count == 0 {
			continue
		}
		d.Hourly[h] = HourRow{
			Hour:    h,
			MeanW:   analysis.Round1(p.Mean),
			MaxW:    analysis.Round1(p.Max),
			MinW:    analysis.Round1(p.Min),
			Samples: p.Count,
		}
	}

	d.Recommendations = DailyRecommendations(d.PeakCount, d.MaxPowerW, d.TotalEnergyKWh)

	stamp := strings.ReplaceAll(date, "-", "")
	d.Charts = appendChart(d.Charts, powerLine("power_"+stamp, "Power trend "+date, "Time of day", records))
	d.Charts = appendChart(d.Charts, hourlyProfile("hourly_profile_"+stamp, "Hourly profile "+date, records))
	d.Charts = appendChart(d.Charts, distribution("distribution_"+stamp, "Power distribution "+date, 30, records))
	return d
}
