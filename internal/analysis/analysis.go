// Package analysis computes consumption statistics over normalized records.
// Every function is pure: the same records always give the same result.
package analysis

import (
	"energy_report/internal/model"
)

// Constants are the tunable figures used by the analysis.
type Constants struct {
	// EmissionFactorKgPerKWh is the grid emission factor (kg CO2 per kWh).
	EmissionFactorKgPerKWh float64 `yaml:"emission_factor_kg_per_kwh"`
	// TreeAbsorptionKgPerYear is the CO2 one tree absorbs in a year.
	TreeAbsorptionKgPerYear float64 `yaml:"tree_absorption_kg_per_year"`
	// CarKgPerKm is the CO2 emitted per km driven.
	CarKgPerKm float64 `yaml:"car_kg_per_km"`
	// NightShareThreshold flags night use above this fraction of day use.
	NightShareThreshold float64 `yaml:"night_share_threshold"`
	AnomalySigma        float64 `yaml:"anomaly_sigma"`
	NominalVoltageMin   float64 `yaml:"nominal_voltage_min"`
	NominalVoltageMax   float64 `yaml:"nominal_voltage_max"`
}

func DefaultConstants() Constants {
	return Constants{
		EmissionFactorKgPerKWh:  0.233,
		TreeAbsorptionKgPerYear: 22,
		CarKgPerKm:              0.12,
		NightShareThreshold:     0.30,
		AnomalySigma:            2.0,
		NominalVoltageMin:       220,
		NominalVoltageMax:       240,
	}
}

// DateRange is the first and last date of a record set.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RangeOf returns the earliest and latest Date of records.
func RangeOf(records []model.Record) (DateRange, bool) {
	if len(records) == 0 {
		return DateRange{}, false
	}
	dr := DateRange{Start: records[0].Date, End: records[0].Date}
	for _, r := range records[1:] {
		if r.Date < dr.Start {
			dr.Start = r.Date
		}
		if r.Date > dr.End {
			dr.End = r.Date
		}
	}
	return dr, true
}

// DailyEnergyStats describes the daily energy series.
type DailyEnergyStats struct {
	Max       float64 `json:"max"`
	Min       float64 `json:"min"`
	Avg       float64 `json:"avg"`
	TotalDays int     `json:"total_days"`
}

// Analysis is the whole-period result. It is built once and not modified.
type Analysis struct {
	TotalEnergyKWh  float64   `json:"total_energy_kwh"`
	AvgPowerW       float64   `json:"avg_power_w"`
	MaxPowerW       float64   `json:"max_power_w"`
	MinPowerW       float64   `json:"min_power_w"`
	AvgVoltage      float64   `json:"avg_voltage"`
	AvgCurrent      float64   `json:"avg_current"`
	DaysAnalyzed    int       `json:"days_analyzed"`
	TotalDataPoints int       `json:"total_data_points"`
	DateRange       DateRange `json:"date_range"`

	DailyEnergy       []DayEnergy       `json:"daily_energy,omitempty"`
	DailyEnergyStats  *DailyEnergyStats `json:"daily_energy_stats,omitempty"`
	MaxConsumptionDay *DayEnergy        `json:"max_consumption_day,omitempty"`
	MinConsumptionDay *DayEnergy        `json:"min_consumption_day,omitempty"`

	Daily       []PeriodStats        `json:"daily"`
	Hourly      []PeriodStats        `json:"hourly"`
	TimeBands   []BandShare          `json:"time_bands,omitempty"`
	DayClasses  *WeekdayWeekend      `json:"weekday_weekend,omitempty"`
	Peaks       Peaks                `json:"peaks"`
	Anomalies   Anomalies            `json:"anomalies"`
	Environment *EnvironmentalImpact `json:"environmental_impact,omitempty"`
	Predictions *Predictions         `json:"predictions,omitempty"`
	Quality     PowerQuality         `json:"power_quality"`
}

// Analyze runs every aggregation over records, which must be sorted by time.
func Analyze(records []model.Record, c Constants) Analysis {
	whole := SummarizePeriod("all", records)
	a := Analysis{
		TotalEnergyKWh:  whole.EnergyKWh,
		AvgPowerW:       whole.Power.Mean,
		MaxPowerW:       whole.Power.Max,
		MinPowerW:       whole.LowPower.Min,
		AvgVoltage:      whole.Voltage.Mean,
		AvgCurrent:      whole.Current.Mean,
		TotalDataPoints: len(records),
		Daily:           AggregateByPeriod(records, ByDate),
		Hourly:          AggregateByPeriod(records, ByHour),
		TimeBands:       TimeBandBreakdown(records),
		DayClasses:      CompareDayClasses(records),
		Peaks:           DetectPeaks(records),
		Anomalies:       DetectAnomalies(records, c),
		Environment:     ComputeEnvironmentalImpact(records, c),
		Quality:         AnalyzePowerQuality(records, c),
	}
	a.DaysAnalyzed = len(a.Daily)
	a.DateRange, _ = RangeOf(records)

	a.DailyEnergy = DailyEnergy(records)
	if len(a.DailyEnergy) > 0 {
		maxDay, minDay := a.DailyEnergy[0], a.DailyEnergy[0]
		var sum float64
		for _, d := range a.DailyEnergy {
			if d.EnergyKWh > maxDay.EnergyKWh {
				maxDay = d
			}
			if d.EnergyKWh < minDay.EnergyKWh {
				minDay = d
			}
			sum += d.EnergyKWh
		}
		a.DailyEnergyStats = &DailyEnergyStats{
			Max:       maxDay.EnergyKWh,
			Min:       minDay.EnergyKWh,
			Avg:       sum / float64(len(a.DailyEnergy)),
			TotalDays: len(a.DailyEnergy),
		}
		a.MaxConsumptionDay = &maxDay
		a.MinConsumptionDay = &minDay
		a.Predictions = GeneratePredictions(a.DailyEnergy)
	}
	return a
}
