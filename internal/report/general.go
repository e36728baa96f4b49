package report

import (
	"energy_report/internal/analysis"
	"energy_report/internal/model"
)

// DayRow is one line of the per-day table.
type DayRow struct {
	Date        string  `json:"date"`
	EnergyKWh   float64 `json:"energy_kwh"`
	MaxPowerW   float64 `json:"max_power_w"`
	MeanPowerW  float64 `json:"mean_power_w"`
	VoltageMean float64 `json:"voltage_mean"`
	CurrentMean float64 `json:"current_mean"`
}

// General is the whole-period report.
type General struct {
	Title           string            `json:"title"`
	Analysis        analysis.Analysis `json:"analysis"`
	Days            []DayRow          `json:"days"`
	Files           []string          `json:"files"`
	Recommendations []Recommendation  `json:"recommendations"`
	Narrative       Narrative         `json:"narrative"`

	Records []model.Record `json:"-"`
	Charts  []Chart        `json:"-"`
}

// BuildGeneral analyzes the full dataset. files are the source files that
// contributed to it.
func BuildGeneral(records []model.Record, files []string, c analysis.Constants) General {
	g := buildPeriod("Energy consumption report", records, files, c)
	g.Charts = appendChart(g.Charts, dailyEnergyBar("daily_energy", "Energy per day", g.Analysis.DailyEnergy))
	g.Charts = appendChart(g.Charts, consumptionHeatmap("consumption_heatmap", "Hourly consumption heatmap", records))
	g.Charts = appendChart(g.Charts, distribution("power_distribution", "Power distribution", 50, records))
	return g
}

func buildPeriod(title string, records []model.Record, files []string, c analysis.Constants) General {
	a := analysis.Analyze(records, c)
	g := General{
		Title:           title,
		Analysis:        a,
		Files:           files,
		Recommendations: PeriodRecommendations(a),
		Narrative:       StandardNarrative(a.DaysAnalyzed),
		Records:         records,
	}
	for _, p := range a.Daily {
		g.Days = append(g.Days, DayRow{
			Date:        p.Key,
			EnergyKWh:   p.EnergyKWh,
			MaxPowerW:   p.Power.Max,
			MeanPowerW:  p.Power.Mean,
			VoltageMean: p.Voltage.Mean,
			CurrentMean: p.Current.Mean,
		})
	}
	return g
}
