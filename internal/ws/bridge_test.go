package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/runner"
)

var startTime = time.Date(2024, 11, 21, 12, 0, 0, 0, time.UTC)

func newTestBridge() (*Bridge, *Client) {
	hub := quietHub()
	client := &Client{hub: hub, send: make(chan []byte, 256)}
	hub.Register(client)
	bridge := NewBridge(hub)
	return bridge, client
}

func receiveEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	msg := <-c.send
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestBridge_OnRunStarted(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnRunStarted(startTime, "api")

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeRunStarted, env.Type)

	var p RunStartedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "2024-11-21T12:00:00Z", p.StartedAt)
	assert.Equal(t, "api", p.Trigger)
}

func TestBridge_OnRunFinished(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnRunFinished(&runner.RunSummary{
		RunID:            "run-1",
		Success:          true,
		State:            runner.Persisted,
		StartedAt:        startTime,
		FinishedAt:       startTime.Add(1500 * time.Millisecond),
		FilesProcessed:   3,
		RowsAnalyzed:     72,
		DaysAnalyzed:     3,
		TotalEnergyKWh:   12.5,
		ReportsGenerated: 4,
		PDFSizeKB:        88.25,
	})

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeRunFinished, env.Type)

	var p RunFinishedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "run-1", p.RunID)
	assert.Equal(t, "persisted", p.State)
	assert.Equal(t, 72, p.RowsAnalyzed)
	assert.Equal(t, 4, p.ReportsGenerated)
	assert.Equal(t, int64(1500), p.DurationMs)
}

func TestBridge_OnRunFailed(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnRunFinished(&runner.RunSummary{
		RunID:   "run-2",
		State:   runner.NotStarted,
		Message: "no data files found in /data",
	})

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeRunFailed, env.Type)

	var p RunFinishedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.False(t, p.Success)
	assert.Equal(t, "not_started", p.State)
	assert.Equal(t, "no data files found in /data", p.Message)
}

func TestBridge_OnStatus(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnStatus(StatusPayload{Status: "ready", CSVFilesCount: 2})

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeStatus, env.Type)
	var p StatusPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "ready", p.Status)
	assert.Equal(t, 2, p.CSVFilesCount)
}
