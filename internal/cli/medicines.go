package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMedicinesCommand creates the medicines command: browse the locally
// cached reference list, seeding it on first run.
func NewMedicinesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "medicines",
		Short: "List the cached medicine reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SeedMedicines(cmd.Context()); err != nil {
				return err
			}

			medicines, err := s.ListMedicines(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), medicines)
			}
			for _, m := range medicines {
				nlem := " "
				if m.IsNlem {
					nlem = "N"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-24s %-28s %-8s ₹%-7.2f (Jan Aushadhi ₹%.2f)\n",
					nlem, m.Name, m.GenericName, m.DosageForm, m.Price, m.JanAushadhiPrice)
			}
			return nil
		},
	}
}
