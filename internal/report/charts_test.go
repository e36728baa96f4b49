package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/model"
)

func TestCharts_EmptyInputsAreSkipped(t *testing.T) {
	noPower := []model.Record{{Time: monday, Date: "2024-11-18", TotalActEnergy: model.Some(100)}}

	assert.Nil(t, powerLine("power", "Power", "Time", noPower))
	assert.Nil(t, hourlyProfile("profile", "Profile", noPower))
	assert.Nil(t, distribution("dist", "Distribution", 10, noPower))
	assert.Nil(t, dailyEnergyBar("daily", "Daily", nil))
	assert.Nil(t, consumptionHeatmap("heatmap", "Heatmap", nil))

	assert.Empty(t, appendChart(nil, nil))
}

func TestCharts_AppendKeepsOrder(t *testing.T) {
	records := hourly(monday, 3, 50, 120)

	var charts []Chart
	charts = appendChart(charts, powerLine("power", "Power", "Time", records))
	charts = appendChart(charts, distribution("dist", "Distribution", 10, nil))
	charts = appendChart(charts, hourlyProfile("profile", "Profile", records))

	require.Len(t, charts, 2)
	assert.Equal(t, "power", charts[0].Name)
	assert.Equal(t, []time.Time{monday, monday.Add(time.Hour), monday.Add(2 * time.Hour)}, charts[0].Times)
	assert.Equal(t, []float64{120, 120, 120}, charts[0].Values)
	assert.Equal(t, "profile", charts[1].Name)
}

func TestBuildDaily_NoPowerNoPowerCharts(t *testing.T) {
	d := BuildDaily("2024-11-18", []model.Record{
		{Time: monday, Date: "2024-11-18", TotalActEnergy: model.Some(100)},
	})

	assert.Empty(t, d.Charts)
	assert.InDelta(t, 0.1, d.TotalEnergyKWh, 1e-9)
}
