package triage

import "log/slog"

// Engine evaluates a catalog against triage inputs.
//
// The catalog is fixed at construction and never mutated, so Evaluate is
// safe for concurrent use and deterministic: identical inputs yield
// identical result lists in identical order.
type Engine struct {
	catalog *Catalog
}

// New creates an Engine over the given catalog.
func New(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// NewDefault creates an Engine over the embedded default catalog.
func NewDefault() *Engine {
	return New(DefaultCatalog())
}

// Catalog returns the engine's catalog. Used for introspection and the CLI.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Evaluate runs the catalog against the input and returns the ordered
// advisory list.
//
// Emergency rules run first in declaration order. If any match carries
// critical severity, the accumulated emergency results are returned as-is:
// emergency advice is never diluted with lower-priority results. Otherwise
// common rules run in declaration order. If nothing matched and the input
// names at least one symptom, exactly one generic info fallback is
// returned - callers may rely on some advice always being given.
//
// A rule whose predicate fails to evaluate is treated as non-matching and
// logged; a single bad rule never prevents evaluation of the rest.
func (e *Engine) Evaluate(in Input) []Result {
	n := normalizeInput(in)
	var results []Result

	for i := range e.catalog.Emergency {
		rule := &e.catalog.Emergency[i]
		if !ruleMatches(rule, n) {
			continue
		}
		severity := rule.Severity
		if !ValidSeverities[severity] {
			// Defensive default for emergency rules, not a silent failure.
			slog.Warn("emergency rule declares invalid severity, defaulting to critical",
				"rule_id", rule.ID,
				"severity", string(rule.Severity),
			)
			severity = SeverityCritical
		}
		results = append(results, resultFor(rule, severity))
	}

	// Hard short-circuit: a critical match is returned undiluted.
	for _, r := range results {
		if r.Severity == SeverityCritical {
			return results
		}
	}

	for i := range e.catalog.Common {
		rule := &e.catalog.Common[i]
		if !ruleMatches(rule, n) {
			continue
		}
		severity := rule.Severity
		if severity != SeverityWarning && severity != SeverityInfo {
			slog.Warn("common rule declares invalid severity, defaulting to info",
				"rule_id", rule.ID,
				"severity", string(rule.Severity),
			)
			severity = SeverityInfo
		}
		results = append(results, resultFor(rule, severity))
	}

	if len(results) == 0 && len(in.Symptoms) > 0 {
		results = append(results, fallbackResult())
	}

	return results
}

// IsEmergency reports whether any critical rule matches the input.
func (e *Engine) IsEmergency(in Input) bool {
	return len(e.RedFlags(in)) > 0
}

// RedFlags returns only the critical-severity results for the input.
func (e *Engine) RedFlags(in Input) []Result {
	var flags []Result
	for _, r := range e.Evaluate(in) {
		if r.Severity == SeverityCritical {
			flags = append(flags, r)
		}
	}
	return flags
}

// EmergencyAction returns the first red flag paired with ambulance numbers,
// or nil when no critical rule matches.
func (e *Engine) EmergencyAction(in Input) *EmergencyAction {
	flags := e.RedFlags(in)
	if len(flags) == 0 {
		return nil
	}
	return &EmergencyAction{
		Result:          flags[0],
		AmbulanceNumber: AmbulanceNumber,
		AlternateNumber: AlternateNumber,
	}
}

// ruleMatches evaluates a rule's predicate, mapping evaluation failure to
// non-matching. Triage must never hard-fail on one bad rule.
func ruleMatches(rule *Rule, in normalized) bool {
	ok, err := rule.When.eval(in)
	if err != nil {
		slog.Warn("rule evaluation failed, treating as non-matching",
			"rule_id", rule.ID,
			"error", &RuleError{RuleID: rule.ID, Err: err},
		)
		return false
	}
	return ok
}

func resultFor(rule *Rule, severity Severity) Result {
	return Result{
		RuleID:            rule.ID,
		Name:              rule.Name,
		Severity:          severity,
		Message:           rule.Message,
		Instructions:      rule.Instructions,
		SuggestedMedicine: rule.SuggestedMedicine,
	}
}

// fallbackResult is the guaranteed generic advisory for a non-empty
// symptom set that matched no rule.
func fallbackResult() Result {
	return Result{
		RuleID:   "generic",
		Name:     "General Advice",
		Severity: SeverityInfo,
		Message:  "Based on your symptoms, we recommend monitoring your condition.",
		Instructions: []string{
			"Rest and stay hydrated",
			"Monitor symptoms for any changes",
			"Visit the nearest PHC if symptoms worsen or persist beyond 2 days",
		},
	}
}
