package ingest

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"energy_report/internal/model"
)

// Options controls how files are normalized.
type Options struct {
	CorrectTimestamps bool
	// Fallbacks are the encodings tried after the current one fails.
	Fallbacks []Encoding
	Location  *time.Location
	Now       func() time.Time
}

// DefaultOptions returns drift correction on, the default fallback
// encodings, UTC calendar fields and the wall clock.
func DefaultOptions() Options {
	return Options{
		CorrectTimestamps: true,
		Fallbacks:         DefaultFallbacks,
		Location:          time.UTC,
		Now:               time.Now,
	}
}

// FileResult is the outcome of loading one file.
type FileResult struct {
	Path        string
	Encoding    Encoding
	Records     []model.Record
	Header      []string
	Skipped     int
	Synthesized bool
	Corrected   bool
	Err         error
}

// Name is the base name recorded as source_file.
func (f FileResult) Name() string {
	return filepath.Base(f.Path)
}

// Result is the outcome of loading a whole directory.
type Result struct {
	Files  []string
	Loaded []FileResult
	Failed []FileResult
	// Encoding is the encoding in effect after the last file.
	Encoding Encoding
}

// Loader reads and normalizes input files.
type Loader struct {
	parser Parser
	opts   Options
	logger *slog.Logger
}

func NewLoader(parser Parser, opts Options, logger *slog.Logger) *Loader {
	if parser == nil {
		parser = &EMDataParser{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{parser: parser, opts: opts, logger: logger}
}

// LoadAll discovers and loads every file in dir. Files that fail are logged
// and skipped; the error is ErrNoValidData only when none could be loaded.
func (l *Loader) LoadAll(dir string) (*Result, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	l.logger.Info("found data files", "dir", dir, "count", len(files))

	res := &Result{Files: files, Encoding: UTF8}
	for _, path := range files {
		fr, next := l.LoadFile(path, res.Encoding)
		res.Encoding = next
		if fr.Err != nil {
			l.logger.Warn("skipping file", "file", fr.Name(), "err", fr.Err)
			res.Failed = append(res.Failed, fr)
			continue
		}
		l.logger.Info("loaded file",
			"file", fr.Name(),
			"rows", len(fr.Records),
			"skipped_rows", fr.Skipped,
			"encoding", fr.Encoding,
			"corrected", fr.Corrected,
			"synthesized", fr.Synthesized,
		)
		res.Loaded = append(res.Loaded, fr)
	}

	if len(res.Loaded) == 0 {
		return res, fmt.Errorf("%w: %d files failed", ErrNoValidData, len(res.Failed))
	}
	return res, nil
}

// LoadFile loads and normalizes one file. enc is the encoding that worked
// for the previous file; the returned encoding should be passed to the next
// call.
func (l *Loader) LoadFile(path string, enc Encoding) (FileResult, Encoding) {
	fr := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Err = fmt.Errorf("reading %s: %w", path, err)
		return fr, enc
	}

	text, used, err := DecodeSticky(data, enc, l.opts.Fallbacks)
	if err != nil {
		fr.Err = fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
		return fr, enc
	}
	fr.Encoding = used

	table, err := l.parser.Parse(bytes.NewReader(text))
	if err != nil {
		fr.Err = fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		return fr, enc
	}
	if len(table.Records) == 0 {
		fr.Err = fmt.Errorf("parsing %s: %w", filepath.Base(path), ErrEmptyFile)
		return fr, used
	}
	fr.Header = table.Header
	fr.Skipped = table.Skipped

	records := table.Records
	name := fr.Name()
	for i := range records {
		records[i].SourceFile = name
	}

	now := l.opts.Now()
	if !table.HasColumn(model.ColTimestamp) {
		SynthesizeTimestamps(records, now)
		fr.Synthesized = true
	}

	if l.opts.CorrectTimestamps {
		records, fr.Corrected = CorrectDrift(records, now)
		if fr.Corrected {
			l.logger.Info("timestamp correction applied", "file", name,
				"days", int(absDuration(records[0].Time.Sub(records[0].RawTime)).Hours()/24))
		}
	} else {
		records = UseRawTime(records)
	}

	for i := range records {
		DeriveCalendar(&records[i], l.opts.Location)
		DeriveMetrics(&records[i])
	}
	fr.Records = records
	return fr, used
}

// SynthesizeTimestamps assigns now + i minutes to the i-th record.
func SynthesizeTimestamps(records []model.Record, now time.Time) {
	base := now.Unix()
	for i := range records {
		records[i].Timestamp = base + int64(i)*60
		records[i].Synthesized = true
	}
}
