package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"energy_report/internal/model"
)

// Field selects one optional measurement from a record.
type Field func(model.Record) model.Value

var (
	Energy      Field = func(r model.Record) model.Value { return r.TotalActEnergy }
	Power       Field = func(r model.Record) model.Value { return r.MaxActPower }
	MinPower    Field = func(r model.Record) model.Value { return r.MinActPower }
	Voltage     Field = func(r model.Record) model.Value { return r.AvgVoltage }
	Current     Field = func(r model.Record) model.Value { return r.AvgCurrent }
	PowerFactor Field = func(r model.Record) model.Value { return r.PowerFactorEst }
)

// Values returns the present values of f, in record order.
func Values(records []model.Record, f Field) []float64 {
	var out []float64
	for _, r := range records {
		if v, ok := f(r).Get(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Summary describes one measurement over a set of records. Count is zero
// when no record carried the measurement.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
}

// Summarize returns count, mean, max and min of values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	return Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Max:   floats.Max(values),
		Min:   floats.Min(values),
	}
}

// SumKWh sums the energy of records in Wh and returns kWh.
func SumKWh(records []model.Record) (float64, bool) {
	values := Values(records, Energy)
	if len(values) == 0 {
		return 0, false
	}
	return floats.Sum(values) / 1000, true
}

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks (h = (n-1)q).
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// StdDev is the sample standard deviation, zero for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
