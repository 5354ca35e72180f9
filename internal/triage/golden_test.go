package triage

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Golden coverage of full evaluation output. These pin the exact advisory
// JSON the CLI and log payloads are built from.
func TestEvaluate_Golden(t *testing.T) {
	infantAge := 0

	tests := []struct {
		name string
		in   Input
	}{
		{
			name: "chest_pain_critical",
			in:   Input{Symptoms: []string{"chest_pain"}},
		},
		{
			name: "fever_diarrhea_warnings",
			in:   Input{Symptoms: []string{"fever", "diarrhea"}, DurationDays: 2},
		},
		{
			name: "infant_fever_critical",
			in:   Input{Symptoms: []string{"fever"}, Age: &infantAge},
		},
		{
			name: "generic_fallback",
			in:   Input{Symptoms: []string{"mystery_symptom"}, DurationDays: 1},
		},
	}

	engine := NewDefault()
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := engine.Evaluate(tt.in)
			data, err := json.MarshalIndent(results, "", "  ")
			require.NoError(t, err)
			g.Assert(t, tt.name, append(data, '\n'))
		})
	}
}
