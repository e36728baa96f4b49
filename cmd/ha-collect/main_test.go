package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"energy_report/internal/collector"
	"energy_report/internal/config"
)

func TestParseEntities(t *testing.T) {
	devices := []config.Device{
		{EntityID: "sensor.fridge", Name: "Fridge"},
		{EntityID: ""},
		{EntityID: "sensor.oven"},
	}

	tests := []struct {
		name  string
		flags []string
		want  []collector.Entity
	}{
		{
			name: "from config",
			want: []collector.Entity{{ID: "sensor.fridge", Name: "Fridge"}, {ID: "sensor.oven"}},
		},
		{
			name:  "flags override config",
			flags: []string{"sensor.tv=Living room TV", " sensor.pc ", "=nameless"},
			want:  []collector.Entity{{ID: "sensor.tv", Name: "Living room TV"}, {ID: "sensor.pc"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseEntities(tt.flags, devices))
		})
	}
}

func TestResolveFlag(t *testing.T) {
	assert.Equal(t, "flag", resolveFlag("flag", "env"))
	assert.Equal(t, "env", resolveFlag("", "env"))
}
