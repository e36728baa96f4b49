package report

import "strconv"

// ActionStep is one row of the action plan.
type ActionStep struct {
	Phase    string `json:"phase"`
	Activity string `json:"activity"`
	Timeline string `json:"timeline"`
	Owner    string `json:"owner"`
}

// TechRow is one row of the technical appendix.
type TechRow struct {
	Parameter   string `json:"parameter"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Narrative is the fixed text of the general report.
type Narrative struct {
	TrendAdvice []string     `json:"trend_advice"`
	ActionPlan  []ActionStep `json:"action_plan"`
	Savings     []string     `json:"savings"`
	TechInfo    []TechRow    `json:"tech_info"`
	Disclaimer  []string     `json:"disclaimer"`
}

// StandardNarrative returns the boilerplate sections. days fills the
// analysis period row of the appendix.
func StandardNarrative(days int) Narrative {
	return Narrative{
		TrendAdvice: []string{
			"Continuous monitoring: keep collecting readings in real time",
			"Pattern detection: look for weekly and monthly recurrences",
			"Time-of-use optimization: move non-critical loads to cheaper hours",
			"Peak management: adopt load shedding strategies",
			"Preventive maintenance: watch appliance efficiency",
		},
		ActionPlan: []ActionStep{
			{"1", "In-depth load analysis", "2 weeks", "Energy team"},
			{"2", "Identify optimizations", "1 week", "Energy team"},
			{"3", "Plan interventions", "1 month", "Management"},
			{"4", "Implementation", "2-3 months", "Technical team"},
			{"5", "Monitor results", "Ongoing", "Energy team"},
		},
		Savings: []string{
			"20% peak reduction: lower contracted power costs",
			"Time-of-use optimization: 10-15% lower energy cost on dual-rate tariffs",
			"Efficiency improvements: 5-10% lower base consumption",
			"Estimated ROI: 12-18 months for medium-size interventions",
			"Estimated yearly savings: 15-25% of the energy bill",
		},
		TechInfo: []TechRow{
			{"Device", "Shelly EM", "Energy monitor"},
			{"Sampling", "60 seconds", "Interval between readings"},
			{"Metrics", "15+ parameters", "Voltage, current, power, energy"},
			{"Resolution", "0.1 W / 0.001 kWh", "Measurement precision"},
			{"Data format", "CSV with timestamp", "Readable by any spreadsheet"},
			{"Analysis period", strconv.Itoa(days) + " days", "Time coverage"},
		},
		Disclaimer: []string{
			"This report was generated automatically from the supplied data. Values are indicative and should be verified by qualified personnel.",
			"Timestamps may have been shifted automatically to compensate for device clock drift.",
			"Recommendations are based on statistical analysis and common practice.",
		},
	}
}
