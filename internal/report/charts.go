package report

import (
	"energy_report/internal/analysis"
	"energy_report/internal/model"
)

func powerLine(name, title, xLabel string, records []model.Record) *Chart {
	c := Chart{Name: name, Kind: ChartLine, Title: title, XLabel: xLabel, YLabel: "Power (W)"}
	for _, r := range records {
		if v, ok := r.MaxActPower.Get(); ok {
			c.Times = append(c.Times, r.Time)
			c.Values = append(c.Values, v)
		}
	}
	return keep(c, len(c.Values) > 0)
}

func hourlyProfile(name, title string, records []model.Record) *Chart {
	c := Chart{Name: name, Kind: ChartBar, Title: title, XLabel: "Hour of day", YLabel: "Mean power (W)"}
	for _, p := range analysis.AggregateByPeriod(records, analysis.ByHour) {
		if p.Power.Count == 0 {
			continue
		}
		c.Labels = append(c.Labels, p.Key)
		c.Values = append(c.Values, p.Power.Mean)
	}
	return keep(c, len(c.Values) > 0)
}

func distribution(name, title string, bins int, records []model.Record) *Chart {
	c := Chart{
		Name: name, Kind: ChartHistogram, Title: title,
		XLabel: "Power (W)", YLabel: "Frequency",
		Bins: bins, ShowMean: true,
		Values: analysis.Values(records, analysis.Power),
	}
	return keep(c, len(c.Values) > 0)
}

func dailyEnergyBar(name, title string, daily []analysis.DayEnergy) *Chart {
	c := Chart{Name: name, Kind: ChartBar, Title: title, XLabel: "Date", YLabel: "Energy (kWh)"}
	for _, d := range daily {
		c.Labels = append(c.Labels, d.Date)
		c.Values = append(c.Values, d.EnergyKWh)
	}
	return keep(c, len(c.Values) > 0)
}

// consumptionHeatmap is mean power per hour (rows) and date (columns);
// cells without data are 0.
func consumptionHeatmap(name, title string, records []model.Record) *Chart {
	days := analysis.AggregateByPeriod(records, analysis.ByDate)
	grid := &Grid{Cells: make([][]float64, 24)}
	col := make(map[string]int, len(days))
	for i, d := range days {
		grid.Columns = append(grid.Columns, d.Key)
		col[d.Key] = i
	}
	for h := 0; h < 24; h++ {
		grid.Rows = append(grid.Rows, analysis.HourKey(h))
		grid.Cells[h] = make([]float64, len(days))
	}

	sums := make([][]float64, 24)
	counts := make([][]int, 24)
	for h := range sums {
		sums[h] = make([]float64, len(days))
		counts[h] = make([]int, len(days))
	}
	found := false
	for _, r := range records {
		v, ok := r.MaxActPower.Get()
		if !ok || r.Hour < 0 || r.Hour > 23 {
			continue
		}
		found = true
		sums[r.Hour][col[r.Date]] += v
		counts[r.Hour][col[r.Date]]++
	}
	for h := range sums {
		for c := range sums[h] {
			if counts[h][c] > 0 {
				grid.Cells[h][c] = sums[h][c] / float64(counts[h][c])
			}
		}
	}

	return keep(Chart{
		Name: name, Kind: ChartHeatmap, Title: title,
		XLabel: "Date", YLabel: "Hour of day", Grid: grid,
	}, found)
}

// keep returns nil for charts without data.
func keep(c Chart, ok bool) *Chart {
	if !ok {
		return nil
	}
	return &c
}

func appendChart(charts []Chart, c *Chart) []Chart {
	if c == nil {
		return charts
	}
	return append(charts, *c)
}
