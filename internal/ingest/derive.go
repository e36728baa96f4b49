package ingest

import (
	"math"
	"time"

	"energy_report/internal/model"
)

// powerFactorEpsilon keeps the power factor estimate finite when both
// energies are zero.
const powerFactorEpsilon = 1e-6

// DeriveCalendar fills the calendar fields from r.Time as seen in loc.
func DeriveCalendar(r *model.Record, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	t := r.Time.In(loc)
	r.Date = t.Format(model.DateLayout)
	r.Hour = t.Hour()
	r.Day = t.Day()
	r.Month = int(t.Month())
	r.Year = t.Year()
	r.Weekday = (int(t.Weekday()) + 6) % 7
}

// DeriveMetrics fills energy_kwh and power_factor_est when their source
// columns are present on the row.
func DeriveMetrics(r *model.Record) {
	energy, ok := r.TotalActEnergy.Get()
	if !ok {
		return
	}
	r.EnergyKWh = model.Some(energy / 1000)

	reactive, ok := r.LagReactEnergy.Get()
	if !ok {
		return
	}
	r.PowerFactorEst = model.Some(energy / math.Sqrt(energy*energy+reactive*reactive+powerFactorEpsilon))
}
