package ingest

import (
	"time"

	"energy_report/internal/model"
)

// MaxClockDrift is how far the latest reading of a batch may be from "now"
// before the whole batch is treated as recorded by a drifted device clock.
const MaxClockDrift = 30 * 24 * time.Hour

// CorrectDrift sets Time on every record. When the latest raw timestamp is
// more than MaxClockDrift away from now, every record is shifted by the same
// offset so that the latest one lands on now. The second result reports
// whether the shift was applied.
//
// The offset is derived from the latest record only; a stale re-sent last
// row will shift the whole batch too far.
func CorrectDrift(records []model.Record, now time.Time) ([]model.Record, bool) {
	out := make([]model.Record, len(records))
	copy(out, records)
	if len(out) == 0 {
		return out, false
	}

	var latest time.Time
	for i := range out {
		out[i].RawTime = time.Unix(out[i].Timestamp, 0).UTC()
		if i == 0 || out[i].RawTime.After(latest) {
			latest = out[i].RawTime
		}
	}

	diff := now.Sub(latest)
	if absDuration(diff) <= MaxClockDrift {
		for i := range out {
			out[i].Time = out[i].RawTime
		}
		return out, false
	}

	for i := range out {
		out[i].Time = out[i].RawTime.Add(diff)
		out[i].Corrected = true
	}
	return out, true
}

// UseRawTime sets Time from the raw timestamp without any correction.
func UseRawTime(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	for i := range out {
		out[i].RawTime = time.Unix(out[i].Timestamp, 0).UTC()
		out[i].Time = out[i].RawTime
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
