package analysis

import "energy_report/internal/model"

// EnvironmentalImpact is an illustrative estimate, not an audited figure.
type EnvironmentalImpact struct {
	CO2Kg           float64 `json:"co2_kg"`
	TreesNeeded     float64 `json:"trees_needed"`
	KmCarEquivalent float64 `json:"km_car_equivalent"`
}

// ComputeEnvironmentalImpact converts the total energy of records into CO2
// and its equivalents. It returns nil when no record carries energy.
func ComputeEnvironmentalImpact(records []model.Record, c Constants) *EnvironmentalImpact {
	total, ok := SumKWh(records)
	if !ok {
		return nil
	}
	impact := ImpactOf(total, c)
	return &impact
}

// ImpactOf converts kWh into CO2 and its equivalents.
func ImpactOf(kwh float64, c Constants) EnvironmentalImpact {
	co2 := kwh * c.EmissionFactorKgPerKWh
	impact := EnvironmentalImpact{CO2Kg: co2}
	if c.TreeAbsorptionKgPerYear != 0 {
		impact.TreesNeeded = co2 / c.TreeAbsorptionKgPerYear
	}
	if c.CarKgPerKm != 0 {
		impact.KmCarEquivalent = co2 / c.CarKgPerKm
	}
	return impact
}
