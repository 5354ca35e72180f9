// Package triage evaluates versioned rule catalogs against a symptom input
// vector and produces severity-ranked advisories.
//
// Evaluation is a pure function: no I/O, no hidden state, no randomness.
// The same input always yields the same result list in the same order,
// which is what makes instant offline triage possible.
//
// Rules are declarative: each carries a tagged predicate tree (all/any/not
// over symptom, modifier and numeric-field tests) interpreted at evaluation
// time. A single malformed rule never prevents evaluation of the rest of
// the catalog - it is excluded at load, or treated as non-matching at
// evaluation, and logged.
package triage
