package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "emdata_2.csv", "x\n")
	writeFile(t, dir, "a.csv", "x\n")
	writeFile(t, dir, "emdata_1.csv", "x\n")
	writeFile(t, dir, "notes.txt", "x\n")

	files, err := Discover(dir)

	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.csv", filepath.Base(files[0]))
	assert.Equal(t, "emdata_1.csv", filepath.Base(files[1]))
	assert.Equal(t, "emdata_2.csv", filepath.Base(files[2]))
}

func TestDiscover_NoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "x\n")

	_, err := Discover(dir)

	assert.ErrorIs(t, err, ErrNoDataFound)
}
