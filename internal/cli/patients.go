package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jitheswar/ruralAi/internal/store"
)

// NewPatientsCommand creates the patients command group.
func NewPatientsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage local patient records",
	}
	cmd.AddCommand(newPatientsAddCommand(opts))
	cmd.AddCommand(newPatientsListCommand(opts))
	return cmd
}

func newPatientsAddCommand(opts *RootOptions) *cobra.Command {
	var np store.NewPatient

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new patient (offline, synced later)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.CreatePatient(cmd.Context(), np)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created patient %s (%s, %d, %s)\n", p.ID, p.Name, p.Age, p.Gender)
			return nil
		},
	}

	cmd.Flags().StringVar(&np.Name, "name", "", "patient name (required)")
	cmd.Flags().IntVar(&np.Age, "age", 0, "patient age in years")
	cmd.Flags().StringVar(&np.Gender, "gender", "", "male|female|other (required)")
	cmd.Flags().StringVar(&np.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&np.Village, "village", "", "village")
	cmd.Flags().StringVar(&np.District, "district", "", "district")
	cmd.Flags().StringVar(&np.AbhaID, "abha-id", "", "ABHA id")
	cmd.Flags().StringVar(&np.CreatedBy, "created-by", "", "user id registering the patient (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("gender")
	cmd.MarkFlagRequired("created-by")

	return cmd
}

func newPatientsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local patients with their sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			patients, err := s.ListPatients(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), patients)
			}
			for _, p := range patients {
				state := "pending"
				if p.IsSynced {
					state = "synced"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s age %-3d %-6s [%s]\n",
					p.ID, p.Name, p.Age, p.Gender, state)
			}
			return nil
		},
	}
}
