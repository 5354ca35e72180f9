package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Jitheswar/ruralAi/internal/store"
	"github.com/Jitheswar/ruralAi/internal/triage"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResults renders triage results for the text format.
func printResults(w io.Writer, results []triage.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No advice: no symptoms were given.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, r.Severity, r.Name)
		fmt.Fprintf(w, "   %s\n", r.Message)
		for _, ins := range r.Instructions {
			fmt.Fprintf(w, "   - %s\n", ins)
		}
		if r.SuggestedMedicine != "" {
			fmt.Fprintf(w, "   Suggested medicine: %s\n", r.SuggestedMedicine)
		}
	}
}

// loadEngine builds the triage engine from the --catalog flag or the
// embedded default catalog.
func loadEngine(opts *RootOptions) (*triage.Engine, error) {
	if opts.Catalog == "" {
		return triage.NewDefault(), nil
	}
	c, err := triage.LoadCatalog(opts.Catalog)
	if err != nil {
		return nil, err
	}
	return triage.New(c), nil
}

// openStore opens the local database from the --db flag.
func openStore(opts *RootOptions) (*store.Store, error) {
	return store.Open(opts.DBPath)
}
