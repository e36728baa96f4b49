package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_report/internal/model"
)

func TestComputeEnvironmentalImpact(t *testing.T) {
	records := dailySeries(monday, 60, 40)

	impact := ComputeEnvironmentalImpact(records, DefaultConstants())

	require.NotNil(t, impact)
	assert.InDelta(t, 23.3, impact.CO2Kg, 1e-9)
	assert.InDelta(t, 23.3/22, impact.TreesNeeded, 1e-9)
	assert.InDelta(t, 23.3/0.12, impact.KmCarEquivalent, 1e-9)
}

func TestComputeEnvironmentalImpact_CustomFactor(t *testing.T) {
	c := DefaultConstants()
	c.EmissionFactorKgPerKWh = 0.5

	impact := ImpactOf(10, c)

	assert.InDelta(t, 5.0, impact.CO2Kg, 1e-9)
}

func TestComputeEnvironmentalImpact_NoEnergy(t *testing.T) {
	records := []model.Record{{MaxActPower: model.Some(100)}}
	assert.Nil(t, ComputeEnvironmentalImpact(records, DefaultConstants()))
}
