package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/model"
)

func makeRecords(source string, values []float64, startTime time.Time, interval time.Duration) []model.Record {
	records := make([]model.Record, len(values))
	for i, v := range values {
		ts := startTime.Add(time.Duration(i) * interval)
		records[i] = model.Record{
			SourceFile:  source,
			Time:        ts,
			Date:        ts.Format(model.DateLayout),
			Hour:        ts.Hour(),
			MaxActPower: model.Some(v),
		}
	}
	return records
}

var (
	startTime = time.Date(2024, 11, 21, 12, 0, 0, 0, time.UTC)
	hour      = time.Hour
)

func TestCombine_SortsAcrossParts(t *testing.T) {
	a := Part{Header: []string{"timestamp", "max_act_power"}, Records: makeRecords("a.csv", []float64{100, 200}, startTime.Add(2*hour), hour)}
	b := Part{Header: []string{"timestamp", "avg_voltage", "max_act_power"}, Records: makeRecords("b.csv", []float64{10, 20}, startTime, hour)}

	d := Combine(a, b)

	require.Equal(t, 4, d.Len())
	values := []float64{}
	for _, r := range d.Records() {
		values = append(values, r.MaxActPower.V)
	}
	assert.Equal(t, []float64{10, 20, 100, 200}, values)
	assert.Equal(t, []string{"timestamp", "max_act_power", "avg_voltage"}, d.Columns())
	assert.Equal(t, []string{"b.csv", "a.csv"}, d.SourceFiles())
}

func TestCombine_StableForEqualTimes(t *testing.T) {
	a := Part{Records: makeRecords("a.csv", []float64{1}, startTime, hour)}
	b := Part{Records: makeRecords("b.csv", []float64{2}, startTime, hour)}

	d := Combine(a, b)

	require.Equal(t, 2, d.Len())
	assert.Equal(t, "a.csv", d.Records()[0].SourceFile)
	assert.Equal(t, "b.csv", d.Records()[1].SourceFile)
}

func TestCombine_Empty(t *testing.T) {
	d := Combine()
	assert.Equal(t, 0, d.Len())
	_, ok := d.TimeRange()
	assert.False(t, ok)
	assert.Empty(t, d.Days())
}

func TestDataset_TimeRange(t *testing.T) {
	d := Combine(Part{Records: makeRecords("a.csv", []float64{100, 200, 300}, startTime, hour)})

	tr, ok := d.TimeRange()
	require.True(t, ok)
	assert.Equal(t, startTime, tr.Start)
	assert.Equal(t, startTime.Add(2*hour), tr.End)
}

func TestDataset_Days(t *testing.T) {
	d := Combine(Part{Records: makeRecords("a.csv", make([]float64, 60), startTime, hour)})

	assert.Equal(t, []string{"2024-11-21", "2024-11-22", "2024-11-23"}, d.Days())
	assert.Equal(t, 12, d.ForDate("2024-11-21").Len())
	assert.Equal(t, 24, d.ForDate("2024-11-22").Len())
	assert.Equal(t, 24, d.ForDate("2024-11-23").Len())
	assert.Equal(t, 0, d.ForDate("2024-01-01").Len())
}

func TestDataset_Devices(t *testing.T) {
	records := makeRecords("a.csv", []float64{1, 2, 3, 4}, startTime, hour)
	records[0].EntityID = "sensor.plug_b"
	records[1].EntityID, records[1].FriendlyName = "sensor.plug_a", "Washer"
	records[2].EntityID, records[2].FriendlyName = "sensor.plug_b", "Fridge"

	d := Combine(Part{Records: records})

	assert.True(t, d.HasDevices())
	devices := d.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, model.Device{ID: "sensor.plug_b", Name: "sensor.plug_b"}, devices[0])
	assert.Equal(t, model.Device{ID: "sensor.plug_a", Name: "Washer"}, devices[1])

	plugB := d.ForDevice("sensor.plug_b")
	assert.Equal(t, 2, plugB.Len())
	span, ok := plugB.TimeRange()
	require.True(t, ok)
	assert.Equal(t, model.TimeRange{Start: startTime, End: startTime.Add(2 * hour)}, span)
	assert.Equal(t, d.Columns(), plugB.Columns())
}

func TestDataset_NoDevices(t *testing.T) {
	d := Combine(Part{Records: makeRecords("a.csv", []float64{1}, startTime, hour)})
	assert.False(t, d.HasDevices())
	assert.Empty(t, d.Devices())
}
