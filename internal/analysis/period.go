package analysis

import (
	"fmt"
	"sort"

	"energy_report/internal/model"
)

// PeriodKey selects how AggregateByPeriod groups records.
type PeriodKey int

const (
	ByDate PeriodKey = iota
	ByHour
	ByTimeBand
	ByDayClass
)

// Band is a fixed window of hours, [Start, End).
type Band struct {
	Name  string
	Start int
	End   int
}

// Bands partition the day. They are not configurable.
var Bands = []Band{
	{Name: "night", Start: 0, End: 6},
	{Name: "morning", Start: 6, End: 12},
	{Name: "afternoon", Start: 12, End: 18},
	{Name: "evening", Start: 18, End: 24},
}

// BandOf returns the name of the band containing hour.
func BandOf(hour int) string {
	for _, b := range Bands {
		if hour >= b.Start && hour < b.End {
			return b.Name
		}
	}
	return ""
}

const (
	Weekday = "weekday"
	Weekend = "weekend"
)

// DayClass classifies an ISO weekday (0 = Monday).
func DayClass(weekday int) string {
	if weekday >= 5 {
		return Weekend
	}
	return Weekday
}

// HourKey formats an hour the way ByHour keys it.
func HourKey(hour int) string {
	return fmt.Sprintf("%02d", hour)
}

func periodOf(r model.Record, key PeriodKey) string {
	switch key {
	case ByHour:
		return HourKey(r.Hour)
	case ByTimeBand:
		return BandOf(r.Hour)
	case ByDayClass:
		return DayClass(r.Weekday)
	default:
		return r.Date
	}
}

// PeriodStats summarizes the records of one period.
type PeriodStats struct {
	Key       string  `json:"key"`
	Records   int     `json:"records"`
	EnergyKWh float64 `json:"energy_kwh"`
	Power     Summary `json:"max_act_power"`
	LowPower  Summary `json:"min_act_power"`
	Voltage   Summary `json:"avg_voltage"`
	Current   Summary `json:"avg_current"`
}

// SummarizePeriod builds the statistics of one group of records.
func SummarizePeriod(key string, records []model.Record) PeriodStats {
	energy, _ := SumKWh(records)
	return PeriodStats{
		Key:       key,
		Records:   len(records),
		EnergyKWh: energy,
		Power:     Summarize(Values(records, Power)),
		LowPower:  Summarize(Values(records, MinPower)),
		Voltage:   Summarize(Values(records, Voltage)),
		Current:   Summarize(Values(records, Current)),
	}
}

// AggregateByPeriod groups records by key. Dates and hours are returned in
// ascending order, bands and day classes in their canonical order. Periods
// without records are omitted.
func AggregateByPeriod(records []model.Record, key PeriodKey) []PeriodStats {
	groups := make(map[string][]model.Record)
	for _, r := range records {
		k := periodOf(r, key)
		groups[k] = append(groups[k], r)
	}

	var order []string
	switch key {
	case ByTimeBand:
		for _, b := range Bands {
			order = append(order, b.Name)
		}
	case ByDayClass:
		order = []string{Weekday, Weekend}
	default:
		for k := range groups {
			order = append(order, k)
		}
		sort.Strings(order)
	}

	var out []PeriodStats
	for _, k := range order {
		if g, ok := groups[k]; ok {
			out = append(out, SummarizePeriod(k, g))
		}
	}
	return out
}

// DayEnergy is the energy of one calendar date.
type DayEnergy struct {
	Date      string  `json:"date"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// DailyEnergy returns the energy per date in ascending date order, or nil
// when no record carries energy. Dates whose records lack energy count as 0.
func DailyEnergy(records []model.Record) []DayEnergy {
	if _, ok := SumKWh(records); !ok {
		return nil
	}
	var out []DayEnergy
	for _, p := range AggregateByPeriod(records, ByDate) {
		out = append(out, DayEnergy{Date: p.Key, EnergyKWh: p.EnergyKWh})
	}
	return out
}

// BandShare is one time band's part of the total energy.
type BandShare struct {
	Band      string  `json:"band"`
	EnergyKWh float64 `json:"energy_kwh"`
	Percent   float64 `json:"percent"`
	AvgPowerW float64 `json:"avg_power_w"`
}

// TimeBandBreakdown returns every band's energy and share of the total, or
// nil when no record carries energy. With a zero total every share is 0.
func TimeBandBreakdown(records []model.Record) []BandShare {
	total, ok := SumKWh(records)
	if !ok {
		return nil
	}
	byBand := make(map[string]PeriodStats)
	for _, p := range AggregateByPeriod(records, ByTimeBand) {
		byBand[p.Key] = p
	}

	out := make([]BandShare, 0, len(Bands))
	for _, b := range Bands {
		p := byBand[b.Name]
		share := BandShare{Band: b.Name, EnergyKWh: p.EnergyKWh, AvgPowerW: p.Power.Mean}
		if total != 0 {
			share.Percent = p.EnergyKWh / total * 100
		}
		out = append(out, share)
	}
	return out
}

// DayClassStats summarizes weekdays or weekends.
type DayClassStats struct {
	Days        int     `json:"days"`
	Records     int     `json:"records"`
	EnergyKWh   float64 `json:"energy_kwh"`
	AvgDailyKWh float64 `json:"avg_daily_kwh"`
	AvgPowerW   float64 `json:"avg_power_w"`
}

// WeekdayWeekend compares weekdays with weekends.
type WeekdayWeekend struct {
	Weekday DayClassStats `json:"weekday"`
	Weekend DayClassStats `json:"weekend"`
	// DifferencePercent is how much higher the weekend daily average is
	// than the weekday one; negative when lower.
	DifferencePercent float64 `json:"difference_percent"`
}

// CompareDayClasses returns nil when the records are empty.
func CompareDayClasses(records []model.Record) *WeekdayWeekend {
	if len(records) == 0 {
		return nil
	}
	classStats := func(class string) DayClassStats {
		var rs []model.Record
		days := make(map[string]bool)
		for _, r := range records {
			if DayClass(r.Weekday) == class {
				rs = append(rs, r)
				days[r.Date] = true
			}
		}
		s := SummarizePeriod(class, rs)
		cs := DayClassStats{Days: len(days), Records: len(rs), EnergyKWh: s.EnergyKWh, AvgPowerW: s.Power.Mean}
		if cs.Days > 0 {
			cs.AvgDailyKWh = cs.EnergyKWh / float64(cs.Days)
		}
		return cs
	}

	cmp := &WeekdayWeekend{Weekday: classStats(Weekday), Weekend: classStats(Weekend)}
	if cmp.Weekday.AvgDailyKWh != 0 && cmp.Weekend.Days > 0 {
		cmp.DifferencePercent = (cmp.Weekend.AvgDailyKWh - cmp.Weekday.AvgDailyKWh) / cmp.Weekday.AvgDailyKWh * 100
	}
	return cmp
}
