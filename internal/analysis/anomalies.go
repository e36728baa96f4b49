package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"energy_report/internal/model"
)

// Night hours are [0, 6) and [22, 24); day hours are [6, 22).
const (
	dayStartHour = 6
	dayEndHour   = 22
)

func isNight(hour int) bool {
	return hour < dayStartHour || hour >= dayEndHour
}

// NightUsage compares mean night power with mean day power.
type NightUsage struct {
	NightMeanW   float64 `json:"night_mean_w"`
	DayMeanW     float64 `json:"day_mean_w"`
	RatioPercent float64 `json:"ratio_percent"`
	High         bool    `json:"high"`
}

// DayAnomaly is a day whose energy is far from the mean daily energy.
type DayAnomaly struct {
	Date      string  `json:"date"`
	EnergyKWh float64 `json:"energy_kwh"`
	Sigmas    float64 `json:"sigmas"`
	Category  string  `json:"category"`
	Cause     string  `json:"cause"`
}

// Anomalies groups the anomaly checks.
type Anomalies struct {
	Night          *NightUsage  `json:"night,omitempty"`
	MeanDailyKWh   float64      `json:"mean_daily_kwh"`
	StdDevDailyKWh float64      `json:"stddev_daily_kwh"`
	Days           []DayAnomaly `json:"days"`
}

// DetectAnomalies flags high night consumption and anomalous days.
func DetectAnomalies(records []model.Record, c Constants) Anomalies {
	a := Anomalies{Night: nightUsage(records, c.NightShareThreshold)}
	a.MeanDailyKWh, a.StdDevDailyKWh, a.Days = anomalousDays(DailyEnergy(records), c.AnomalySigma)
	return a
}

func nightUsage(records []model.Record, threshold float64) *NightUsage {
	var night, day []float64
	for _, r := range records {
		v, ok := r.MaxActPower.Get()
		if !ok {
			continue
		}
		if isNight(r.Hour) {
			night = append(night, v)
		} else {
			day = append(day, v)
		}
	}
	if len(night) == 0 || len(day) == 0 {
		return nil
	}

	u := &NightUsage{NightMeanW: stat.Mean(night, nil), DayMeanW: stat.Mean(day, nil)}
	if u.DayMeanW != 0 {
		u.RatioPercent = u.NightMeanW / u.DayMeanW * 100
	}
	u.High = u.NightMeanW > threshold*u.DayMeanW
	return u
}

// anomalousDays flags days more than sigma population standard deviations
// from the mean daily energy.
func anomalousDays(daily []DayEnergy, sigma float64) (mean, std float64, flagged []DayAnomaly) {
	if len(daily) == 0 {
		return 0, 0, nil
	}
	values := make([]float64, len(daily))
	for i, d := range daily {
		values[i] = d.EnergyKWh
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	if len(daily) < 3 || std == 0 {
		return mean, std, nil
	}

	for _, d := range daily {
		z := (d.EnergyKWh - mean) / std
		if math.Abs(z) <= sigma {
			continue
		}
		a := DayAnomaly{Date: d.Date, EnergyKWh: d.EnergyKWh, Sigmas: z, Category: "HIGH"}
		if z < 0 {
			a.Category = "LOW"
		}
		a.Cause = inferCause(a, mean)
		flagged = append(flagged, a)
	}
	return mean, std, flagged
}

func inferCause(a DayAnomaly, mean float64) string {
	if a.Category == "HIGH" {
		if a.EnergyKWh > 2*mean {
			return "Very high usage, guests or appliance fault?"
		}
		return "Above-normal consumption"
	}
	if a.EnergyKWh < mean/2 {
		return "Very low usage, away from home?"
	}
	return "Below-normal consumption"
}
