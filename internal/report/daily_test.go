package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/model"
)

func TestBuildDaily(t *testing.T) {
	records := []model.Record{
		rec(monday.Add(8*time.Hour), 500, 1200.04),
		rec(monday.Add(8*time.Hour+30*time.Minute), 700, 1000),
		rec(monday.Add(20*time.Hour), 300, 400),
	}
	records[0].MinActPower = model.Some(80)
	records[2].AvgVoltage = model.Some(231)

	d := BuildDaily("2024-11-18", records)

	assert.Equal(t, "2024-11-18", d.Date)
	assert.InDelta(t, 1.5, d.TotalEnergyKWh, 1e-9)
	assert.InDelta(t, 1200.04, d.MaxPowerW, 1e-9)
	assert.InDelta(t, 80.0, d.MinPowerW, 1e-9)
	assert.InDelta(t, 231.0, d.AvgVoltage, 1e-9)
	assert.Equal(t, 3, d.DataPoints)

	require.Len(t, d.Hourly, 24)
	assert.Equal(t, HourRow{Hour: 8, MeanW: 1100, MaxW: 1200, MinW: 1000, Samples: 2}, d.Hourly[8])
	assert.Equal(t, HourRow{Hour: 0}, d.Hourly[0])
	assert.Equal(t, 20, d.Hourly[20].Hour)
	assert.Equal(t, 400.0, d.Hourly[20].MeanW)

	names := []string{}
	for _, c := range d.Charts {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"power_20241118", "hourly_profile_20241118", "distribution_20241118"}, names)
	assert.Equal(t, []Recommendation{recOptimal}, d.Recommendations)
}

func TestBuildDaily_NoPower(t *testing.T) {
	records := []model.Record{{Date: "2024-11-18", Hour: 3, TotalActEnergy: model.Some(100)}}

	d := BuildDaily("2024-11-18", records)

	assert.Equal(t, 0, d.PeakCount)
	assert.Equal(t, 0.0, d.MaxPowerW)
	assert.Len(t, d.Hourly, 24)
	assert.Empty(t, d.Charts)
}

func TestDailyRecommendations(t *testing.T) {
	tests := []struct {
		name   string
		peaks  int
		maxW   float64
		energy float64
		want   []Recommendation
	}{
		{"optimal", 3, 1999, 10, []Recommendation{recOptimal}},
		{"many peaks", 11, 2500, 10, []Recommendation{recReducePeaks}},
		{"ten peaks is not many", 10, 2500, 10, nil},
		{"high load", 5, 3001, 10, []Recommendation{recHighLoads}},
		{"high energy but optimal profile", 0, 1500, 51, []Recommendation{recOptimize, recOptimal}},
		{"everything", 20, 4000, 80, []Recommendation{recReducePeaks, recHighLoads, recOptimize}},
		{"exact thresholds", 3, 2000, 50, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DailyRecommendations(tt.peaks, tt.maxW, tt.energy))
		})
	}
}
