package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/model"
)

func TestAnalyze_ThreeDays(t *testing.T) {
	records := hourlyDays(monday, 3, 100, 500)
	for i := range records {
		records[i].AvgVoltage = model.Some(230)
		records[i].AvgCurrent = model.Some(2)
	}
	records[30].MaxActPower = model.Some(3500)

	a := Analyze(records, DefaultConstants())

	assert.Equal(t, 3, a.DaysAnalyzed)
	assert.Len(t, a.Daily, 3)
	assert.Len(t, a.Hourly, 24)
	assert.Equal(t, 72, a.TotalDataPoints)
	assert.InDelta(t, 7.2, a.TotalEnergyKWh, 1e-9)
	assert.Equal(t, 3500.0, a.MaxPowerW)
	assert.InDelta(t, 230.0, a.AvgVoltage, 1e-9)
	assert.InDelta(t, 2.0, a.AvgCurrent, 1e-9)
	assert.Equal(t, DateRange{Start: "2024-11-18", End: "2024-11-20"}, a.DateRange)

	require.NotNil(t, a.DailyEnergyStats)
	assert.Equal(t, 3, a.DailyEnergyStats.TotalDays)
	assert.InDelta(t, 2.4, a.DailyEnergyStats.Avg, 1e-9)
	require.NotNil(t, a.MaxConsumptionDay)
	assert.Equal(t, "2024-11-18", a.MaxConsumptionDay.Date, "ties pick the first day")

	require.NotNil(t, a.Predictions)
	assert.InDelta(t, 2.4*30, a.Predictions.ProjectedMonthlyKWh, 1e-9)
	require.NotNil(t, a.Environment)
	assert.Len(t, a.TimeBands, 4)
	require.NotNil(t, a.Peaks.Absolute)
	assert.Equal(t, "2024-11-19", a.Peaks.Absolute.Date)
	require.NotNil(t, a.Quality.Voltage)
	assert.InDelta(t, 100.0, a.Quality.Voltage.StabilityPercent, 1e-9)
}

func TestAnalyze_PowerOnly(t *testing.T) {
	var records []model.Record
	for i := 0; i < 10; i++ {
		ts := monday.Add(time.Duration(i) * time.Hour)
		records = append(records, model.Record{
			Time: ts, Date: ts.Format(model.DateLayout), Hour: ts.Hour(),
			MaxActPower: model.Some(float64(100 * i)),
		})
	}

	a := Analyze(records, DefaultConstants())

	assert.Equal(t, 0.0, a.TotalEnergyKWh)
	assert.Nil(t, a.DailyEnergyStats)
	assert.Nil(t, a.Environment)
	assert.Nil(t, a.Predictions)
	assert.Nil(t, a.TimeBands)
	assert.Equal(t, 10, a.Peaks.Samples)
	assert.Equal(t, 900.0, a.MaxPowerW)
}

func TestAnalyze_Deterministic(t *testing.T) {
	records := hourlyDays(monday, 15, 120, 400)
	for i := range records {
		records[i].TotalActEnergy = model.Some(float64(50 + i%17*11))
		records[i].MaxActPower = model.Some(float64(200 + i%23*37))
	}

	first, err := json.Marshal(Analyze(records, DefaultConstants()))
	require.NoError(t, err)
	second, err := json.Marshal(Analyze(records, DefaultConstants()))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAnalyze_Empty(t *testing.T) {
	a := Analyze(nil, DefaultConstants())
	assert.Equal(t, 0, a.DaysAnalyzed)
	assert.Equal(t, 0, a.TotalDataPoints)
	assert.Nil(t, a.Peaks.Absolute)
}
