package ingest

import (
	"errors"
	"io"

	"energy_report/internal/model"
)

var (
	// ErrNoDataFound means no input file matched the discovery patterns.
	ErrNoDataFound = errors.New("no data files found")
	// ErrUnreadableFile means a file could not be decoded with any candidate encoding.
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrMalformedFile means a file decoded but its CSV structure is broken.
	ErrMalformedFile = errors.New("malformed file")
	// ErrEmptyFile means a file has a header but no usable rows.
	ErrEmptyFile = errors.New("empty file")
	// ErrNoValidData means every discovered file failed to load.
	ErrNoValidData = errors.New("no valid data found")
)

// Table is the parsed content of one source file.
type Table struct {
	Header  []string
	Records []model.Record
	// Skipped counts rows dropped as malformed (e.g. a partially written last line).
	Skipped int
}

// HasColumn reports whether the header contains the given column.
func (t *Table) HasColumn(c model.Column) bool {
	for _, h := range t.Header {
		if h == string(c) {
			return true
		}
	}
	return false
}

// Parser reads device rows from a decoded source.
type Parser interface {
	Parse(r io.Reader) (Table, error)
}
