// Package report turns analysis results into report models. Models are plain
// data; charts are described, not drawn, and rendering happens elsewhere.
package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind identifies a report family.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindGeneral Kind = "general"
	KindDevice  Kind = "device"
)

// Recommendation is one piece of advice shown in a report.
type Recommendation struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ChartKind selects how a Chart is drawn.
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBar       ChartKind = "bar"
	ChartHistogram ChartKind = "histogram"
	ChartHeatmap   ChartKind = "heatmap"
)

// Chart describes one image to render.
type Chart struct {
	// Name is the image file name without extension.
	Name   string
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string

	// Times are the X values of a line chart; Labels the categories of a bar chart.
	Times  []time.Time
	Labels []string
	Values []float64

	// Bins and ShowMean apply to histograms.
	Bins     int
	ShowMean bool

	Grid *Grid
}

// Grid holds heatmap cells: Cells[row][col], rows are hours.
type Grid struct {
	Columns []string
	Rows    []string
	Cells   [][]float64
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SafeName turns a device identity into a file-system safe name.
func SafeName(id string) string {
	return unsafeChars.ReplaceAllString(id, "_")
}

// reservedNames are the subdirectories of the general report directory,
// which also holds one directory per device.
var reservedNames = []string{"charts", "data"}

// SafeNames returns a distinct safe name for each id, in order. A name that
// is already taken, ignoring case, or reserved gets a numeric suffix.
func SafeNames(ids []string) []string {
	used := make(map[string]bool, len(ids)+len(reservedNames))
	for _, r := range reservedNames {
		used[r] = true
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		base := SafeName(id)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
