package analysis

import (
	"time"

	"energy_report/internal/model"
)

var monday = time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC)

func rec(t time.Time, energyWh, powerW float64) model.Record {
	return model.Record{
		Time:           t,
		Date:           t.Format(model.DateLayout),
		Hour:           t.Hour(),
		Weekday:        (int(t.Weekday()) + 6) % 7,
		TotalActEnergy: model.Some(energyWh),
		MaxActPower:    model.Some(powerW),
		EnergyKWh:      model.Some(energyWh / 1000),
	}
}

// hourlyDays builds days×24 hourly records starting at start.
func hourlyDays(start time.Time, days int, energyWh, powerW float64) []model.Record {
	var out []model.Record
	for i := 0; i < days*24; i++ {
		out = append(out, rec(start.Add(time.Duration(i)*time.Hour), energyWh, powerW))
	}
	return out
}

// dailySeries builds one record per day with the given energies in kWh.
func dailySeries(start time.Time, kwh ...float64) []model.Record {
	out := make([]model.Record, len(kwh))
	for i, e := range kwh {
		out[i] = rec(start.AddDate(0, 0, i).Add(12*time.Hour), e*1000, 100)
	}
	return out
}
