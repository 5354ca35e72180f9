package triage

import (
	"errors"
	"fmt"
)

// Predicate is a tagged-variant boolean expression over an input vector.
// Exactly one variant must be set per node:
//
//   - All: true when every child is true (true for an empty list)
//   - Any: true when at least one child is true
//   - Not: negation of the child
//   - Symptom: true when the symptom id is present
//   - Modifier: true when the modifier id is present
//   - Gender: true when the input gender equals the value
//   - Field/Op/Value: numeric comparison against a named input field
//
// Supported fields are "duration_days" and "age". Supported ops are
// eq, ne, gt, gte, lt and lte.
type Predicate struct {
	All      []Predicate `yaml:"all,omitempty" json:"all,omitempty"`
	Any      []Predicate `yaml:"any,omitempty" json:"any,omitempty"`
	Not      *Predicate  `yaml:"not,omitempty" json:"not,omitempty"`
	Symptom  string      `yaml:"symptom,omitempty" json:"symptom,omitempty"`
	Modifier string      `yaml:"modifier,omitempty" json:"modifier,omitempty"`
	Gender   string      `yaml:"gender,omitempty" json:"gender,omitempty"`
	Field    string      `yaml:"field,omitempty" json:"field,omitempty"`
	Op       string      `yaml:"op,omitempty" json:"op,omitempty"`
	Value    float64     `yaml:"value,omitempty" json:"value,omitempty"`
}

// Known comparison fields.
const (
	FieldDurationDays = "duration_days"
	FieldAge          = "age"
)

var validOps = map[string]bool{
	"eq": true, "ne": true, "gt": true, "gte": true, "lt": true, "lte": true,
}

// RuleError reports a rule whose predicate failed to evaluate or validate.
// The affected rule is treated as non-matching; evaluation continues.
type RuleError struct {
	RuleID string
	Err    error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.RuleID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RuleError) Unwrap() error { return e.Err }

// IsRuleError returns true if the error is a RuleError.
// Uses errors.As to handle wrapped errors.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// variantCount returns how many variants are set on the node.
func (p *Predicate) variantCount() int {
	n := 0
	if len(p.All) > 0 {
		n++
	}
	if len(p.Any) > 0 {
		n++
	}
	if p.Not != nil {
		n++
	}
	if p.Symptom != "" {
		n++
	}
	if p.Modifier != "" {
		n++
	}
	if p.Gender != "" {
		n++
	}
	if p.Field != "" || p.Op != "" {
		n++
	}
	return n
}

// validate checks the structural well-formedness of the predicate tree.
// Called at catalog load so malformed rules are excluded up front.
func (p *Predicate) validate() error {
	if p.variantCount() != 1 {
		return fmt.Errorf("predicate node must set exactly one variant, got %d", p.variantCount())
	}
	switch {
	case len(p.All) > 0:
		for i := range p.All {
			if err := p.All[i].validate(); err != nil {
				return fmt.Errorf("all[%d]: %w", i, err)
			}
		}
	case len(p.Any) > 0:
		for i := range p.Any {
			if err := p.Any[i].validate(); err != nil {
				return fmt.Errorf("any[%d]: %w", i, err)
			}
		}
	case p.Not != nil:
		if err := p.Not.validate(); err != nil {
			return fmt.Errorf("not: %w", err)
		}
	case p.Field != "" || p.Op != "":
		if p.Field != FieldDurationDays && p.Field != FieldAge {
			return fmt.Errorf("unknown field %q", p.Field)
		}
		if !validOps[p.Op] {
			return fmt.Errorf("unknown op %q", p.Op)
		}
	}
	return nil
}

// eval interprets the predicate against a normalized input.
//
// A node that references data the input cannot supply (e.g. an age
// comparison when age is unknown) returns an error; callers treat that
// as non-matching for the enclosing rule.
func (p *Predicate) eval(in normalized) (bool, error) {
	switch {
	case len(p.All) > 0:
		for i := range p.All {
			ok, err := p.All[i].eval(in)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case len(p.Any) > 0:
		for i := range p.Any {
			ok, err := p.Any[i].eval(in)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case p.Not != nil:
		ok, err := p.Not.eval(in)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case p.Symptom != "":
		return in.symptoms[p.Symptom], nil

	case p.Modifier != "":
		return in.modifiers[p.Modifier], nil

	case p.Gender != "":
		return in.gender == p.Gender, nil

	case p.Field != "" || p.Op != "":
		var actual float64
		switch p.Field {
		case FieldDurationDays:
			actual = float64(in.duration)
		case FieldAge:
			if in.age == nil {
				return false, fmt.Errorf("input has no value for field %q", p.Field)
			}
			actual = float64(*in.age)
		default:
			return false, fmt.Errorf("unknown field %q", p.Field)
		}
		return compare(p.Op, actual, p.Value)

	default:
		return false, fmt.Errorf("empty predicate node")
	}
}

func compare(op string, actual, expected float64) (bool, error) {
	switch op {
	case "eq":
		return actual == expected, nil
	case "ne":
		return actual != expected, nil
	case "gt":
		return actual > expected, nil
	case "gte":
		return actual >= expected, nil
	case "lt":
		return actual < expected, nil
	case "lte":
		return actual <= expected, nil
	default:
		return false, fmt.Errorf("unknown op %q", op)
	}
}
