package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	minPredictionDays = 3
	minTrendDays      = 14
	window            = 7
	monthDays         = 30
	bestDaysCount     = 3
)

// Trend compares the last week with the week before.
type Trend struct {
	Direction      string  `json:"direction"`
	Percent        float64 `json:"percent"`
	RecentAvgKWh   float64 `json:"recent_avg_kwh"`
	PreviousAvgKWh float64 `json:"previous_avg_kwh"`
}

// Predictions are simple projections over the daily energy series.
type Predictions struct {
	AvgLast7DaysKWh     float64     `json:"avg_last_7_days"`
	ProjectedMonthlyKWh float64     `json:"projected_monthly"`
	Trend               *Trend      `json:"trend,omitempty"`
	BestDays            []DayEnergy `json:"best_days"`
}

// GeneratePredictions needs at least three days and returns nil otherwise.
// daily must be in ascending date order. The trend needs fourteen days and is
// omitted when the previous week averaged zero.
func GeneratePredictions(daily []DayEnergy) *Predictions {
	if len(daily) < minPredictionDays {
		return nil
	}

	energy := make([]float64, len(daily))
	for i, d := range daily {
		energy[i] = d.EnergyKWh
	}

	last := energy[max(0, len(energy)-window):]
	p := &Predictions{AvgLast7DaysKWh: stat.Mean(last, nil)}
	p.ProjectedMonthlyKWh = p.AvgLast7DaysKWh * monthDays

	if len(energy) >= minTrendDays {
		n := len(energy)
		recent := stat.Mean(energy[n-window:], nil)
		previous := stat.Mean(energy[n-2*window:n-window], nil)
		if previous != 0 {
			t := &Trend{
				Direction:      "decrease",
				Percent:        math.Abs(recent-previous) / previous * 100,
				RecentAvgKWh:   recent,
				PreviousAvgKWh: previous,
			}
			if recent > previous {
				t.Direction = "increase"
			}
			p.Trend = t
		}
	}

	best := make([]DayEnergy, len(daily))
	copy(best, daily)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].EnergyKWh < best[j].EnergyKWh
	})
	n := min(bestDaysCount, len(best))
	p.BestDays = best[:n:n]
	return p
}
