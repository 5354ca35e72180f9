package triage

// Severity ranks an advisory. Critical results short-circuit evaluation:
// once present, they are never diluted with lower-severity advice.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ValidSeverities defines the allowed severity values.
var ValidSeverities = map[Severity]bool{
	SeverityCritical: true,
	SeverityWarning:  true,
	SeverityInfo:     true,
}

// Result is one advisory produced by evaluation. Result lists are ordered
// by evaluation order (catalog declaration order), not by severity.
type Result struct {
	RuleID            string   `json:"ruleId"`
	Name              string   `json:"name"`
	Severity          Severity `json:"severity"`
	Message           string   `json:"message"`
	Instructions      []string `json:"instructions"`
	SuggestedMedicine string   `json:"suggestedMedicine,omitempty"`
}

// National ambulance numbers surfaced with emergency advisories.
const (
	AmbulanceNumber = "108"
	AlternateNumber = "102"
)

// EmergencyAction is the first red-flag result paired with the numbers to
// call. Returned by Engine.EmergencyAction when any critical rule matches.
type EmergencyAction struct {
	Result
	AmbulanceNumber string `json:"ambulanceNumber"`
	AlternateNumber string `json:"alternateNumber"`
}

// LogPayload is the dataJson shape persisted when an evaluation is saved
// as a triage health log.
type LogPayload struct {
	Symptoms     []string    `json:"symptoms"`
	Modifiers    []string    `json:"modifiers"`
	DurationDays int         `json:"duration_days"`
	Results      []LogResult `json:"results"`
}

// LogResult is the trimmed per-result record inside a LogPayload.
type LogResult struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// NewLogPayload builds the persistable payload for an evaluation.
func NewLogPayload(in Input, results []Result) LogPayload {
	p := LogPayload{
		Symptoms:     in.Symptoms,
		Modifiers:    in.Modifiers,
		DurationDays: in.DurationDays,
		Results:      make([]LogResult, len(results)),
	}
	if p.Symptoms == nil {
		p.Symptoms = []string{}
	}
	if p.Modifiers == nil {
		p.Modifiers = []string{}
	}
	for i, r := range results {
		p.Results[i] = LogResult{RuleID: r.RuleID, Severity: r.Severity, Message: r.Message}
	}
	return p
}
