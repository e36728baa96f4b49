package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"bare array", `["sensor.a", "sensor.b"]`, []string{"sensor.a", "sensor.b"}, false},
		{"object", `{"entity_ids": ["sensor.a"]}`, []string{"sensor.a"}, false},
		{"blank ids dropped", `[" sensor.a ", ""]`, []string{"sensor.a"}, false},
		{"empty array", `[]`, []string{}, false},
		{"object without ids", `{"devices": ["a"]}`, nil, true},
		{"not json", `sensor.a`, nil, true},
		{"number", `42`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSelection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSelection_Missing(t *testing.T) {
	ids, err := LoadSelection(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = LoadSelection("")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestLoadSelection_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entity_ids":["sensor.a"]}`), 0o644))

	ids, err := LoadSelection(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor.a"}, ids)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "persisted", Persisted.String())
	assert.Equal(t, "unknown", State(42).String())
}
