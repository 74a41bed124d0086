package pipeline

// State is the stage a run is in.
type State int

const (
	Idle State = iota
	Navigating
	Extracting
	Cleaning
	BuildingDigest
	AwaitingSummary
	Done
	Failed
)

var stateNames = [...]string{
	Idle:            "idle",
	Navigating:      "navigating",
	Extracting:      "extracting",
	Cleaning:        "cleaning",
	BuildingDigest:  "building_digest",
	AwaitingSummary: "awaiting_summary",
	Done:            "done",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
