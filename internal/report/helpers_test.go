package report

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
	}
}

func hourly(start time.Time, hours int, energyWh, powerW float64) []model.Record {
	out := make([]model.Record, hours)
	for i := range out {
		out[i] = rec(start.Add(time.Duration(i)*time.Hour), energyWh, powerW)
	}
	return out
}
