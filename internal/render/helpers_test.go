package render

import (
	"time"

	"energy_report/internal/model"
)

var monday = time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC)

var testNow = func() time.Time { return time.Date(2024, 11, 21, 12, 0, 0, 0, time.UTC) }

func hourly(start time.Time, hours int) []model.Record {
	out := make([]model.Record, hours)
	for i := range out {
		t := start.Add(time.Duration(i) * time.Hour)
		energy := 100 + float64(i%24)*10
		power := 300 + float64(i%24)*40
		out[i] = model.Record{
			SourceFile: "emdata_" + t.Format("20060102") + ".csv",
			Fields: map[string]string{
				"total_act_energy": model.Some(energy).String(),
				"max_act_power":    model.Some(power).String(),
				"avg_voltage":      "230.5",
			},
			Time:           t,
			Date:           t.Format(model.DateLayout),
			Hour:           t.Hour(),
			Day:            t.Day(),
			Month:          int(t.Month()),
			Year:           t.Year(),
			Weekday:        (int(t.Weekday()) + 6) % 7,
			TotalActEnergy: model.Some(energy),
			MaxActPower:    model.Some(power),
			AvgVoltage:     model.Some(230.5),
			EnergyKWh:      model.Some(energy / 1000),
		}
	}
	return out
}

var testColumns = []string{"timestamp", "total_act_energy", "max_act_power", "avg_voltage"}
