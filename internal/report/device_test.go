package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/analysis"
	"energy_report/internal/model"
)

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"sensor.plug_kitchen_power": "sensor_plug_kitchen_power",
		"mqtt:plug/1":               "mqtt_plug_1",
		"sensor.plug kitchen":       "sensor_plug_kitchen",
		"already-safe_1":            "already-safe_1",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in))
	}
}

func TestBuildDevice(t *testing.T) {
	records := hourly(monday, 30, 50, 120)
	dev := model.Device{ID: "sensor.plug_kitchen_power", Name: "Kitchen Plug"}

	d := BuildDevice(dev, "", records, []string{"plugs.csv"}, analysis.DefaultConstants())

	assert.Equal(t, "sensor.plug_kitchen_power", d.DeviceID)
	assert.Equal(t, "Kitchen Plug", d.FriendlyName)
	assert.Equal(t, "sensor_plug_kitchen_power", d.SafeName)
	assert.InDelta(t, 1.5, d.Analysis.TotalEnergyKWh, 1e-9)
	assert.Equal(t, 2, d.Analysis.DaysAnalyzed)

	require.Len(t, d.Charts, 3)
	assert.Equal(t, "sensor_plug_kitchen_power_power_trend", d.Charts[0].Name)
	assert.Equal(t, "sensor_plug_kitchen_power_daily_energy", d.Charts[1].Name)
	assert.Equal(t, "sensor_plug_kitchen_power_hourly_profile", d.Charts[2].Name)
}

func TestBuildDevice_NameFallsBackToID(t *testing.T) {
	d := BuildDevice(model.Device{ID: "sensor.x"}, "", nil, nil, analysis.DefaultConstants())
	assert.Equal(t, "sensor.x", d.FriendlyName)
	assert.Equal(t, "sensor_x", d.SafeName)
	assert.Empty(t, d.Charts)
	assert.Equal(t, Period{}, d.Period)
}

func TestBuildDevice_GivenSafeName(t *testing.T) {
	d := BuildDevice(model.Device{ID: "sensor_a"}, "sensor_a_2", hourly(monday, 2, 50, 120), nil, analysis.DefaultConstants())

	assert.Equal(t, "sensor_a_2", d.SafeName)
	require.NotEmpty(t, d.Charts)
	assert.Equal(t, "sensor_a_2_power_trend", d.Charts[0].Name)
}

func TestSafeNames(t *testing.T) {
	names := SafeNames([]string{"sensor.a", "sensor_a", "sensor:a", "charts", "data", "Sensor_A", "plug"})

	assert.Equal(t, []string{"sensor_a", "sensor_a_2", "sensor_a_3", "charts_2", "data_2", "Sensor_A_4", "plug"}, names)
}

func TestSafeNames_SuffixDoesNotCollide(t *testing.T) {
	names := SafeNames([]string{"a_2", "a", "a.x", "a"})

	assert.Equal(t, []string{"a_2", "a", "a_x", "a_3"}, names)
}

func TestNewPeriod(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	span := model.TimeRange{Start: monday.Add(23 * time.Hour), End: monday.Add(29*time.Hour + 30*time.Minute)}

	assert.Equal(t, Period{Start: "2024-11-19 00:00", End: "2024-11-19 06:30"}, NewPeriod(span, cet))
	assert.Equal(t, Period{Start: "2024-11-18 23:00", End: "2024-11-19 05:30"}, NewPeriod(span, nil))
}
