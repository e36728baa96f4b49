package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"energy_report/internal/analysis"
	"energy_report/internal/model"
	"energy_report/internal/report"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 6.0
	imageWidth = 170.0
)

// document wraps fpdf with the helpers shared by every report.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string, generated time.Time) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(title, true)
	pdf.SetCreator("energy_report", true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.AliasNbPages("")

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, d.tr(fmt.Sprintf("%s - page %d/{nb}", title, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) title(text, subtitle string) {
	d.pdf.SetFont(fontFamily, "B", 18)
	d.pdf.SetTextColor(44, 62, 80)
	d.pdf.CellFormat(0, 12, d.tr(text), "", 1, "C", false, 0, "")
	if subtitle != "" {
		d.pdf.SetFont(fontFamily, "", 12)
		d.pdf.CellFormat(0, 8, d.tr(subtitle), "", 1, "C", false, 0, "")
	}
	d.pdf.Ln(4)
}

func (d *document) section(text string) {
	d.pdf.Ln(4)
	d.pdf.SetFont(fontFamily, "B", 14)
	d.pdf.SetTextColor(41, 128, 185)
	d.pdf.CellFormat(0, 9, d.tr(text), "B", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) subsection(text string) {
	d.pdf.SetFont(fontFamily, "B", 11)
	d.pdf.SetTextColor(44, 62, 80)
	d.pdf.CellFormat(0, 7, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) paragraph(text string) {
	d.pdf.SetFont(fontFamily, "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(0, 5, d.tr(text), "", "L", false)
	d.pdf.Ln(1)
}

func (d *document) bullets(items []string) {
	for _, item := range items {
		d.paragraph("- " + item)
	}
}

func (d *document) recommendations(recs []report.Recommendation) {
	for _, r := range recs {
		d.pdf.SetFont(fontFamily, "B", 10)
		d.pdf.SetTextColor(0, 0, 0)
		d.pdf.MultiCell(0, 5, d.tr(r.Title), "", "L", false)
		d.paragraph(r.Text)
	}
}

// table draws a header row and body rows. widths are in mm.
func (d *document) table(header []string, widths []float64, rows [][]string) {
	d.pdf.SetFont(fontFamily, "B", 9)
	d.pdf.SetFillColor(44, 62, 80)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetDrawColor(160, 160, 160)
	for i, h := range header {
		d.pdf.CellFormat(widths[i], lineHeight+1, d.tr(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(fontFamily, "", 9)
	d.pdf.SetTextColor(0, 0, 0)
	for n, row := range rows {
		if n%2 == 0 {
			d.pdf.SetFillColor(255, 255, 255)
		} else {
			d.pdf.SetFillColor(242, 242, 242)
		}
		for i, cell := range row {
			d.pdf.CellFormat(widths[i], lineHeight, d.tr(cell), "1", 0, "C", true, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(3)
}

func (d *document) image(c placedChart) {
	d.subsection(c.Title)
	d.pdf.ImageOptions(c.Path, -1, 0, imageWidth, 0, true, fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")
	d.pdf.Ln(4)
}

func (d *document) save(path string) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("building %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		return d.pdf.Output(w)
	})
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func writeDailyPDF(path string, d report.Daily, charts []placedChart, generated time.Time) error {
	doc := newDocument("Daily energy report", generated)
	doc.title("DAILY ENERGY CONSUMPTION REPORT", "Date: "+d.Date)
	doc.paragraph("Generated on " + generated.Format("2006-01-02 15:04"))

	doc.section("Summary")
	doc.table([]string{"Metric", "Value", "Unit"}, []float64{60, 50, 30}, [][]string{
		{"Total energy", f2(d.TotalEnergyKWh), "kWh"},
		{"Max power", f1(d.MaxPowerW), "W"},
		{"Mean power", f1(d.AvgPowerW), "W"},
		{"Min power", f1(d.MinPowerW), "W"},
		{"Mean voltage", f1(d.AvgVoltage), "V"},
		{"Mean current", f2(d.AvgCurrent), "A"},
		{"Peaks (>95%)", strconv.Itoa(d.PeakCount), "n"},
		{"Data points", strconv.Itoa(d.DataPoints), "n"},
	})

	if len(charts) > 0 {
		doc.section("Charts")
		for _, c := range charts {
			doc.image(c)
		}
	}

	doc.section("Hourly analysis")
	rows := make([][]string, 0, len(d.Hourly))
	for _, h := range d.Hourly {
		rows = append(rows, []string{fmt.Sprintf("%02d:00", h.Hour), f1(h.MeanW), f1(h.MaxW), f1(h.MinW)})
	}
	doc.table([]string{"Hour", "Mean power (W)", "Max (W)", "Min (W)"}, []float64{25, 45, 35, 35}, rows)

	doc.section("Recommendations")
	doc.recommendations(d.Recommendations)
	return doc.save(path)
}

func writeGeneralPDF(path string, g report.General, columns []string, charts []placedChart, generated time.Time) error {
	a := g.Analysis
	doc := newDocument(g.Title, generated)
	doc.title(strings.ToUpper(g.Title), "Full consumption history")
	doc.paragraph(fmt.Sprintf("Period: %s - %s", orNA(a.DateRange.Start), orNA(a.DateRange.End)))
	doc.paragraph("Generated on " + generated.Format("2006-01-02 15:04:05"))

	doc.section("1. Summary and key metrics")
	doc.table([]string{"Metric", "Value", "Notes"}, []float64{50, 45, 75}, [][]string{
		{"Total energy", f2(a.TotalEnergyKWh) + " kWh", "Overall consumption"},
		{"Max power", f1(a.MaxPowerW) + " W", "Absolute peak"},
		{"Mean power", f1(a.AvgPowerW) + " W", "Mean of all readings"},
		{"Days analyzed", strconv.Itoa(a.DaysAnalyzed), "Monitoring period"},
		{"Data points", strconv.Itoa(a.TotalDataPoints), "Measurements"},
		{"Files processed", strconv.Itoa(len(g.Files)), "CSV files"},
	})
	if s := a.DailyEnergyStats; s != nil {
		doc.subsection("Daily statistics")
		rows := [][]string{
			{"Max consumption", f2(s.Max), dayNote(a.MaxConsumptionDay)},
			{"Min consumption", f2(s.Min), dayNote(a.MinConsumptionDay)},
			{"Mean consumption", f2(s.Avg), "Daily average"},
			{"Range", f2(s.Max - s.Min), "Max minus min"},
		}
		doc.table([]string{"Statistic", "Value (kWh)", "Description"}, []float64{50, 45, 75}, rows)
	}

	doc.section("2. Daily breakdown")
	dayRows := make([][]string, 0, len(g.Days))
	for _, r := range g.Days {
		dayRows = append(dayRows, []string{r.Date, f2(r.EnergyKWh), f1(r.MaxPowerW), f1(r.MeanPowerW), f1(r.VoltageMean)})
	}
	doc.table([]string{"Date", "Energy (kWh)", "Max P (W)", "Mean P (W)", "Voltage (V)"}, []float64{34, 34, 34, 34, 34}, dayRows)

	writePatterns(doc, a)

	if len(charts) > 0 {
		doc.section("4. Charts")
		for _, c := range charts {
			doc.image(c)
		}
	}

	doc.section("5. Recommendations and action plan")
	doc.recommendations(g.Recommendations)
	doc.subsection("Trend analysis")
	doc.bullets(g.Narrative.TrendAdvice)
	doc.subsection("Recommended action plan")
	var plan [][]string
	for _, s := range g.Narrative.ActionPlan {
		plan = append(plan, []string{s.Phase, s.Activity, s.Timeline, s.Owner})
	}
	doc.table([]string{"Phase", "Activity", "Timeline", "Owner"}, []float64{15, 75, 40, 40}, plan)
	doc.subsection("Potential savings")
	doc.bullets(g.Narrative.Savings)

	doc.section("6. Technical appendix")
	var tech [][]string
	for _, r := range g.Narrative.TechInfo {
		tech = append(tech, []string{r.Parameter, r.Value, r.Description})
	}
	doc.table([]string{"Parameter", "Value", "Description"}, []float64{45, 45, 80}, tech)
	if labels := columnLabels(columns); len(labels) > 0 {
		doc.subsection("Recorded columns")
		doc.bullets(labels)
	}
	doc.subsection("Notes and disclaimer")
	for _, p := range g.Narrative.Disclaimer {
		doc.paragraph(p)
	}
	return doc.save(path)
}

// writePatterns renders the consumption pattern, anomaly, environment,
// forecast and quality sections.
func writePatterns(doc *document, a analysis.Analysis) {
	doc.section("3. Consumption patterns")
	if len(a.TimeBands) > 0 {
		doc.subsection("Time bands")
		var rows [][]string
		for _, b := range a.TimeBands {
			rows = append(rows, []string{b.Band, f2(b.EnergyKWh), f1(b.Percent) + "%", f1(b.AvgPowerW)})
		}
		doc.table([]string{"Band", "Energy (kWh)", "Share", "Mean P (W)"}, []float64{40, 40, 40, 40}, rows)
	}
	if c := a.DayClasses; c != nil {
		doc.subsection("Weekdays vs weekends")
		doc.table([]string{"", "Days", "Energy (kWh)", "Daily mean (kWh)"}, []float64{40, 30, 45, 45}, [][]string{
			{"Weekdays", strconv.Itoa(c.Weekday.Days), f2(c.Weekday.EnergyKWh), f2(c.Weekday.AvgDailyKWh)},
			{"Weekends", strconv.Itoa(c.Weekend.Days), f2(c.Weekend.EnergyKWh), f2(c.Weekend.AvgDailyKWh)},
		})
	}
	if p := a.Peaks; p.Absolute != nil {
		doc.subsection("Peaks")
		doc.paragraph(fmt.Sprintf("Absolute peak %.1f W on %s. %d readings above the 95th percentile (%.1f W).",
			p.Absolute.PowerW, p.Absolute.Time.Format("2006-01-02 15:04"), p.Count, p.ThresholdW))
		var rows [][]string
		for _, r := range p.Top {
			rows = append(rows, []string{r.Time.Format("2006-01-02 15:04"), f1(r.PowerW)})
		}
		doc.table([]string{"Time", "Power (W)"}, []float64{60, 40}, rows)
	}
	if n := a.Anomalies.Night; n != nil {
		doc.subsection("Night consumption")
		status := "normal"
		if n.High {
			status = "HIGH"
		}
		doc.paragraph(fmt.Sprintf("Night mean %.1f W, day mean %.1f W, ratio %.1f%% (%s).", n.NightMeanW, n.DayMeanW, n.RatioPercent, status))
	}
	if len(a.Anomalies.Days) > 0 {
		doc.subsection("Anomalous days")
		var rows [][]string
		for _, d := range a.Anomalies.Days {
			rows = append(rows, []string{d.Date, f2(d.EnergyKWh), fmt.Sprintf("%+.1f", d.Sigmas), d.Category, d.Cause})
		}
		doc.table([]string{"Date", "kWh", "Sigma", "Type", "Possible cause"}, []float64{25, 20, 20, 20, 85}, rows)
	}
	if e := a.Environment; e != nil {
		doc.subsection("Environmental impact")
		doc.paragraph(fmt.Sprintf("%.1f kg CO2, equal to %.1f trees for a year or %.0f km by car.", e.CO2Kg, e.TreesNeeded, e.KmCarEquivalent))
	}
	if p := a.Predictions; p != nil {
		doc.subsection("Forecast")
		doc.paragraph(fmt.Sprintf("Average of the last 7 days: %.2f kWh. Projected monthly consumption: %.1f kWh.", p.AvgLast7DaysKWh, p.ProjectedMonthlyKWh))
		if t := p.Trend; t != nil {
			doc.paragraph(fmt.Sprintf("Weekly trend: %s of %.1f%%.", t.Direction, t.Percent))
		}
		var best []string
		for _, d := range p.BestDays {
			best = append(best, fmt.Sprintf("%s (%.2f kWh)", d.Date, d.EnergyKWh))
		}
		doc.paragraph("Lowest consumption days: " + strings.Join(best, ", "))
	}
	if v := a.Quality.Voltage; v != nil {
		doc.subsection("Power quality")
		doc.paragraph(fmt.Sprintf("Voltage min %.1f V, max %.1f V, mean %.1f V, std %.2f V, %.1f%% within the nominal band.",
			v.Min, v.Max, v.Mean, v.StdDev, v.StabilityPercent))
	}
	if pf := a.Quality.PowerFactor; pf != nil {
		doc.paragraph(fmt.Sprintf("Estimated power factor min %.2f, max %.2f, mean %.2f.", pf.Min, pf.Max, pf.Mean))
	}
}

func writeDevicePDF(path string, d report.Device, charts []placedChart, generated time.Time) error {
	a := d.Analysis
	doc := newDocument("Device report", generated)
	doc.title("DEVICE REPORT", d.FriendlyName)
	doc.paragraph("Entity ID: " + d.DeviceID)
	doc.paragraph("Generated on " + generated.Format("2006-01-02 15:04"))

	doc.section("Summary")
	doc.table([]string{"Metric", "Value", "Unit"}, []float64{50, 80, 30}, [][]string{
		{"Period", d.Period.Start + " - " + d.Period.End, ""},
		{"Total energy", f2(a.TotalEnergyKWh), "kWh"},
		{"Mean power", f1(a.AvgPowerW), "W"},
		{"Max power", f1(a.MaxPowerW), "W"},
		{"Data points", strconv.Itoa(a.TotalDataPoints), "n"},
	})

	writePatterns(doc, a)

	if len(charts) > 0 {
		doc.section("Charts")
		for _, c := range charts {
			doc.image(c)
		}
	}

	doc.section("Recommendations")
	doc.recommendations(d.Recommendations)
	return doc.save(path)
}

// columnLabels names each source column with its unit. Unknown columns
// keep their header name.
func columnLabels(columns []string) []string {
	labels := make([]string, 0, len(columns))
	for _, c := range columns {
		info, ok := model.ColumnCatalog[model.Column(c)]
		switch {
		case !ok:
			labels = append(labels, c)
		case info.Unit == "":
			labels = append(labels, info.Name)
		default:
			labels = append(labels, fmt.Sprintf("%s (%s)", info.Name, info.Unit))
		}
	}
	return labels
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func dayNote(d *analysis.DayEnergy) string {
	if d == nil {
		return ""
	}
	return "On " + d.Date
}
