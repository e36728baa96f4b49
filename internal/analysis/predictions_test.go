package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(kwh ...float64) []DayEnergy {
	return DailyEnergy(dailySeries(monday, kwh...))
}

func TestGeneratePredictions_TooFewDays(t *testing.T) {
	assert.Nil(t, GeneratePredictions(series(1, 2)))
	assert.Nil(t, GeneratePredictions(nil))
}

func TestGeneratePredictions_ShortSeries(t *testing.T) {
	p := GeneratePredictions(series(5, 4, 3, 2, 1))

	require.NotNil(t, p)
	assert.InDelta(t, 3.0, p.AvgLast7DaysKWh, 1e-9)
	assert.InDelta(t, 90.0, p.ProjectedMonthlyKWh, 1e-9)
	assert.Nil(t, p.Trend)
	require.Len(t, p.BestDays, 3)
	assert.Equal(t, "2024-11-22", p.BestDays[0].Date)
	assert.Equal(t, "2024-11-21", p.BestDays[1].Date)
	assert.Equal(t, "2024-11-20", p.BestDays[2].Date)
}

func TestGeneratePredictions_LastSevenDays(t *testing.T) {
	p := GeneratePredictions(series(100, 100, 1, 1, 1, 1, 1, 1, 1))

	require.NotNil(t, p)
	assert.InDelta(t, 1.0, p.AvgLast7DaysKWh, 1e-9)
	assert.InDelta(t, 30.0, p.ProjectedMonthlyKWh, 1e-9)
}

func TestGeneratePredictions_Trend(t *testing.T) {
	tests := []struct {
		name      string
		previous  float64
		recent    float64
		direction string
		percent   float64
	}{
		{"increase", 10, 12, "increase", 20},
		{"decrease", 10, 8, "decrease", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kwh []float64
			for i := 0; i < 7; i++ {
				kwh = append(kwh, tt.previous)
			}
			for i := 0; i < 7; i++ {
				kwh = append(kwh, tt.recent)
			}

			p := GeneratePredictions(series(kwh...))

			require.NotNil(t, p)
			require.NotNil(t, p.Trend)
			assert.Equal(t, tt.direction, p.Trend.Direction)
			assert.InDelta(t, tt.percent, p.Trend.Percent, 1e-9)
		})
	}
}

func TestGeneratePredictions_ZeroPreviousWeek(t *testing.T) {
	kwh := []float64{0, 0, 0, 0, 0, 0, 0, 5, 5, 5, 5, 5, 5, 5}

	p := GeneratePredictions(series(kwh...))

	require.NotNil(t, p)
	assert.Nil(t, p.Trend)
	assert.InDelta(t, 5.0, p.AvgLast7DaysKWh, 1e-9)
}

func TestGeneratePredictions_BestDaysTies(t *testing.T) {
	p := GeneratePredictions(series(2, 1, 1, 3))

	require.Len(t, p.BestDays, 3)
	assert.Equal(t, "2024-11-19", p.BestDays[0].Date)
	assert.Equal(t, "2024-11-20", p.BestDays[1].Date)
	assert.Equal(t, "2024-11-18", p.BestDays[2].Date)
}
