package triage

import "golang.org/x/text/unicode/norm"

// Input is the ephemeral symptom vector for one evaluation call.
// It has no identity and no lifecycle beyond the call.
//
// Age and Gender are optional. A nil Age means unknown - a predicate that
// compares against age will then fail for that rule only (treated as
// non-matching), never abort the evaluation.
type Input struct {
	Symptoms     []string `json:"symptoms"`
	Modifiers    []string `json:"modifiers"`
	DurationDays int      `json:"duration_days"`
	Age          *int     `json:"age,omitempty"`
	Gender       string   `json:"gender,omitempty"`
}

// normalized is the evaluation-ready form of an Input: NFC-normalized ids
// with set-membership lookups. Symptom ids arriving from voice or OCR
// pipelines are frequently denormalized Unicode; NFC keeps catalog ids and
// input ids comparable.
type normalized struct {
	symptoms  map[string]bool
	modifiers map[string]bool
	duration  int
	age       *int
	gender    string
}

func normalizeInput(in Input) normalized {
	n := normalized{
		symptoms:  make(map[string]bool, len(in.Symptoms)),
		modifiers: make(map[string]bool, len(in.Modifiers)),
		duration:  in.DurationDays,
		age:       in.Age,
		gender:    norm.NFC.String(in.Gender),
	}
	for _, s := range in.Symptoms {
		n.symptoms[norm.NFC.String(s)] = true
	}
	for _, m := range in.Modifiers {
		n.modifiers[norm.NFC.String(m)] = true
	}
	return n
}
