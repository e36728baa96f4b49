package report

import (
	"fmt"

	"energy_report/internal/analysis"
)

// Daily recommendation thresholds.
const (
	ManyPeaks       = 10
	FewPeaks        = 3
	HighLoadW       = 3000.0
	ModerateLoadW   = 2000.0
	HighDailyKWh    = 50.0
	lowStabilityPct = 95.0
	lowPowerFactor  = 0.9
	risingTrendPct  = 10.0
	weekendGapPct   = 20.0
)

var (
	recReducePeaks = Recommendation{
		Title: "Reduce consumption peaks",
		Text:  "Identify the loads behind frequent peaks and spread them over the day.",
	}
	recHighLoads = Recommendation{
		Title: "Manage high loads",
		Text:  "Consider moving loads above 3 kW to off-peak hours.",
	}
	recOptimize = Recommendation{
		Title: "Optimize consumption",
		Text:  "Look for reductions through energy efficiency measures.",
	}
	recOptimal = Recommendation{
		Title: "Optimal consumption",
		Text:  "No issues detected, keep it up.",
	}
)

// DailyRecommendations applies the fixed daily rules. The rules are
// independent, so more than one can match.
func DailyRecommendations(peakCount int, maxPowerW, energyKWh float64) []Recommendation {
	var recs []Recommendation
	if peakCount > ManyPeaks {
		recs = append(recs, recReducePeaks)
	}
	if maxPowerW > HighLoadW {
		recs = append(recs, recHighLoads)
	}
	if energyKWh > HighDailyKWh {
		recs = append(recs, recOptimize)
	}
	if peakCount <= FewPeaks && maxPowerW < ModerateLoadW {
		recs = append(recs, recOptimal)
	}
	return recs
}

// PeriodRecommendations derives advice from a whole-period analysis.
func PeriodRecommendations(a analysis.Analysis) []Recommendation {
	var recs []Recommendation

	if n := a.Anomalies.Night; n != nil && n.High {
		recs = append(recs, Recommendation{
			Title: "Reduce night consumption",
			Text: fmt.Sprintf("Night power averages %.0f%% of daytime power (%.0f W vs %.0f W). Check standby loads and appliances left on.",
				n.RatioPercent, n.NightMeanW, n.DayMeanW),
		})
	}
	if len(a.Anomalies.Days) > 0 {
		recs = append(recs, Recommendation{
			Title: "Review anomalous days",
			Text:  fmt.Sprintf("%d days deviate from the usual daily consumption by more than the anomaly threshold.", len(a.Anomalies.Days)),
		})
	}
	if a.Predictions != nil && a.Predictions.Trend != nil {
		t := a.Predictions.Trend
		if t.Direction == "increase" && t.Percent > risingTrendPct {
			recs = append(recs, Recommendation{
				Title: "Consumption is rising",
				Text:  fmt.Sprintf("The last week used %.1f%% more energy than the week before.", t.Percent),
			})
		}
	}
	if c := a.DayClasses; c != nil && c.Weekend.Days > 0 && c.Weekday.Days > 0 && c.DifferencePercent > weekendGapPct {
		recs = append(recs, Recommendation{
			Title: "Weekend consumption",
			Text:  fmt.Sprintf("Weekend days use %.0f%% more energy than weekdays.", c.DifferencePercent),
		})
	}
	if a.MaxPowerW > HighLoadW {
		recs = append(recs, recHighLoads)
	}
	if v := a.Quality.Voltage; v != nil && v.StabilityPercent < lowStabilityPct {
		recs = append(recs, Recommendation{
			Title: "Check supply voltage",
			Text:  fmt.Sprintf("Only %.1f%% of readings were within the nominal voltage band.", v.StabilityPercent),
		})
	}
	if pf := a.Quality.PowerFactor; pf != nil && pf.Mean < lowPowerFactor {
		recs = append(recs, Recommendation{
			Title: "Improve power factor",
			Text:  fmt.Sprintf("The estimated power factor averages %.2f; inductive loads may need correction.", pf.Mean),
		})
	}
	if len(recs) == 0 {
		recs = append(recs, recOptimal)
	}
	return recs
}
