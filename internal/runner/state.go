package runner

// State is how far a run got.
type State int

const (
	NotStarted State = iota
	FilesDiscovered
	DataLoaded
	Aggregated
	ReportsAssembled
	Persisted
)

var stateNames = [...]string{
	NotStarted:       "not_started",
	FilesDiscovered:  "files_discovered",
	DataLoaded:       "data_loaded",
	Aggregated:       "aggregated",
	ReportsAssembled: "reports_assembled",
	Persisted:        "persisted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
