package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/config"
	"energy_report/internal/metrics"
)

func TestWrap_LogsRequests(t *testing.T) {
	var accessLog bytes.Buffer
	h := wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), &accessLog)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, accessLog.String(), "GET /health")
	assert.Contains(t, accessLog.String(), " 204 ")
}

func TestWrap_RecoversPanics(t *testing.T) {
	h := wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), io.Discard)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewCollector(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("not configured", func(t *testing.T) {
		assert.Nil(t, newCollector(config.Default(), nil, logger))
	})

	t.Run("configured", func(t *testing.T) {
		cfg := config.Default()
		cfg.HAURL = "http://ha.local:8123"
		cfg.HAToken = "secret"
		cfg.PollInterval = 30 * time.Second
		cfg.Devices = []config.Device{{EntityID: "sensor.fridge", Name: "Fridge"}}
		m := metrics.New()

		c := newCollector(cfg, m, logger)
		require.NotNil(t, c)
		assert.Equal(t, cfg.DataPath, c.Dir)
		assert.Equal(t, 30*time.Second, c.Interval)
		assert.Equal(t, "sensor.fridge", c.Entities[0].ID)
		assert.Equal(t, m, c.Recorder)
	})
}

func TestConnectNotifier_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Nil(t, connectNotifier(context.Background(), config.Default(), logger))
}
