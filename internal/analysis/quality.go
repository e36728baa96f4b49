package analysis

import (
	"gonum.org/v1/gonum/stat"

	"energy_report/internal/model"
)

// VoltageQuality summarizes avg_voltage.
type VoltageQuality struct {
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std"`
	// StabilityPercent is the share of samples inside the nominal band.
	StabilityPercent float64 `json:"stability_percent"`
}

// PowerFactorQuality summarizes power_factor_est.
type PowerFactorQuality struct {
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
}

type PowerQuality struct {
	Voltage     *VoltageQuality     `json:"voltage,omitempty"`
	PowerFactor *PowerFactorQuality `json:"power_factor,omitempty"`
}

// AnalyzePowerQuality leaves a section nil when no record carries its input.
func AnalyzePowerQuality(records []model.Record, c Constants) PowerQuality {
	var q PowerQuality

	if volts := Values(records, Voltage); len(volts) > 0 {
		s := Summarize(volts)
		stable := 0
		for _, v := range volts {
			if v >= c.NominalVoltageMin && v <= c.NominalVoltageMax {
				stable++
			}
		}
		q.Voltage = &VoltageQuality{
			Samples:          s.Count,
			Min:              s.Min,
			Max:              s.Max,
			Mean:             stat.Mean(volts, nil),
			StdDev:           StdDev(volts),
			StabilityPercent: float64(stable) / float64(len(volts)) * 100,
		}
	}

	if pf := Values(records, PowerFactor); len(pf) > 0 {
		s := Summarize(pf)
		q.PowerFactor = &PowerFactorQuality{Samples: s.Count, Min: s.Min, Max: s.Max, Mean: s.Mean}
	}
	return q
}
