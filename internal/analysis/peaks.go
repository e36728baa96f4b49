package analysis

import (
	"sort"
	"time"

	"energy_report/internal/model"
)

const (
	// PeakQuantile is the quantile of max_act_power above which a reading is a peak.
	PeakQuantile = 0.95
	// TopPeaks is how many of the largest readings are listed.
	TopPeaks = 5
)

// Reading is one power sample.
type Reading struct {
	Time   time.Time `json:"time"`
	Date   string    `json:"date"`
	PowerW float64   `json:"power_w"`
}

// Peaks describes the high end of the power distribution.
type Peaks struct {
	Samples    int       `json:"samples"`
	ThresholdW float64   `json:"threshold_w"`
	Count      int       `json:"count"`
	Top        []Reading `json:"top"`
	Absolute   *Reading  `json:"absolute,omitempty"`
}

// DetectPeaks computes the 95th percentile threshold of max_act_power, the
// number of readings strictly above it, the five largest readings (ties in
// record order) and the absolute maximum.
func DetectPeaks(records []model.Record) Peaks {
	var readings []Reading
	for _, r := range records {
		if v, ok := r.MaxActPower.Get(); ok {
			readings = append(readings, Reading{Time: r.Time, Date: r.Date, PowerW: v})
		}
	}
	if len(readings) == 0 {
		return Peaks{}
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.PowerW
	}
	p := Peaks{Samples: len(readings), ThresholdW: Quantile(values, PeakQuantile)}
	for _, v := range values {
		if v > p.ThresholdW {
			p.Count++
		}
	}

	ranked := make([]Reading, len(readings))
	copy(ranked, readings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PowerW > ranked[j].PowerW
	})
	n := min(TopPeaks, len(ranked))
	p.Top = ranked[:n:n]
	abs := ranked[0]
	p.Absolute = &abs
	return p
}
