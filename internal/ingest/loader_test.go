package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 11, 21, 12, 0, 0, 0, time.UTC)

func testLoader(opts Options) *Loader {
	opts.Now = func() time.Time { return testNow }
	return NewLoader(&EMDataParser{}, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func hourlyCSV(start time.Time, hours int) string {
	var b strings.Builder
	b.WriteString("timestamp,total_act_energy,max_act_power,min_act_power,avg_voltage,avg_current\n")
	for i := 0; i < hours; i++ {
		ts := start.Add(time.Duration(i) * time.Hour).Unix()
		fmt.Fprintf(&b, "%d,%d,%d,%d,230.0,1.5\n", ts, 100+i, 500+10*i, 50)
	}
	return b.String()
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "emdata_1.csv", hourlyCSV(time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC), 24))
	writeFile(t, dir, "emdata_2.csv", hourlyCSV(time.Date(2024, 11, 19, 0, 0, 0, 0, time.UTC), 24))

	res, err := testLoader(DefaultOptions()).LoadAll(dir)

	require.NoError(t, err)
	require.Len(t, res.Loaded, 2)
	assert.Empty(t, res.Failed)
	assert.Equal(t, UTF8, res.Encoding)

	first := res.Loaded[0]
	assert.Equal(t, "emdata_1.csv", first.Name())
	require.Len(t, first.Records, 24)
	assert.False(t, first.Corrected)
	r := first.Records[5]
	assert.Equal(t, "emdata_1.csv", r.SourceFile)
	assert.Equal(t, "2024-11-18", r.Date)
	assert.Equal(t, 5, r.Hour)
	assert.Equal(t, 0, r.Weekday)
	assert.InDelta(t, 0.105, r.EnergyKWh.V, 1e-9)
}

func TestLoader_MissingTimestampColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plug.csv", "total_act_energy,max_act_power\n1,10\n2,20\n3,30\n")

	res, err := testLoader(DefaultOptions()).LoadAll(dir)

	require.NoError(t, err)
	fr := res.Loaded[0]
	assert.True(t, fr.Synthesized)
	assert.False(t, fr.Corrected)
	require.Len(t, fr.Records, 3)
	for i, r := range fr.Records {
		assert.Equal(t, testNow.Unix()+int64(i)*60, r.Timestamp)
		assert.True(t, r.Synthesized)
		assert.Equal(t, "2024-11-21", r.Date)
	}
}

func TestLoader_DriftCorrection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old.csv", "timestamp,max_act_power\n0,10\n3600,20\n")

	t.Run("enabled", func(t *testing.T) {
		res, err := testLoader(DefaultOptions()).LoadAll(dir)
		require.NoError(t, err)
		fr := res.Loaded[0]
		assert.True(t, fr.Corrected)
		assert.True(t, fr.Records[1].Time.Equal(testNow))
		assert.Equal(t, "2024-11-21", fr.Records[0].Date)
		assert.Equal(t, 11, fr.Records[0].Hour)
	})

	t.Run("disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.CorrectTimestamps = false
		res, err := testLoader(opts).LoadAll(dir)
		require.NoError(t, err)
		fr := res.Loaded[0]
		assert.False(t, fr.Corrected)
		assert.Equal(t, "1970-01-01", fr.Records[0].Date)
	})
}

func TestLoader_StickyEncoding(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "timestamp,friendly_name\n1732186800,Cucina \xe9\n")
	writeFile(t, dir, "b.csv", "timestamp,friendly_name\n1732186800,Caffè\n")

	res, err := testLoader(DefaultOptions()).LoadAll(dir)

	require.NoError(t, err)
	require.Len(t, res.Loaded, 2)
	assert.Equal(t, Latin1, res.Loaded[0].Encoding)
	assert.Equal(t, "Cucina é", res.Loaded[0].Records[0].FriendlyName)
	// The second file is valid UTF-8 but latin-1 is tried first now.
	assert.Equal(t, Latin1, res.Loaded[1].Encoding)
	assert.Equal(t, "CaffÃ¨", res.Loaded[1].Records[0].FriendlyName)
	assert.Equal(t, Latin1, res.Encoding)
}

func TestLoader_CorruptedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", hourlyCSV(time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC), 3))
	writeFile(t, dir, "b.csv", "timestamp,max_act_power\n1732186800,100\nab\"c\xff,2\n1732186920,300\n")
	writeFile(t, dir, "c.csv", hourlyCSV(time.Date(2024, 11, 19, 0, 0, 0, 0, time.UTC), 3))

	res, err := testLoader(DefaultOptions()).LoadAll(dir)

	require.NoError(t, err)
	assert.Len(t, res.Loaded, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "b.csv", res.Failed[0].Name())
	assert.ErrorIs(t, res.Failed[0].Err, ErrMalformedFile)
	// A file that failed to parse does not change the encoding for the next one.
	assert.Equal(t, UTF8, res.Loaded[1].Encoding)
}

func TestLoader_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "timestamp,friendly_name\n1732186800,Cucina \xe9\n")

	opts := DefaultOptions()
	opts.Fallbacks = nil
	res, err := testLoader(opts).LoadAll(dir)

	assert.ErrorIs(t, err, ErrNoValidData)
	require.NotNil(t, res)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err, ErrUnreadableFile)
}

func TestLoader_HeaderOnlyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "timestamp,max_act_power\n")

	_, err := testLoader(DefaultOptions()).LoadAll(dir)

	assert.ErrorIs(t, err, ErrNoValidData)
}

func TestLoader_NoFiles(t *testing.T) {
	_, err := testLoader(DefaultOptions()).LoadAll(t.TempDir())
	assert.ErrorIs(t, err, ErrNoDataFound)
}
