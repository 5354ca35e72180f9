package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jitheswar/ruralAi/internal/triage"
)

// NewTriageCommand creates the triage command: evaluate symptoms and
// optionally persist the result as a health log.
func NewTriageCommand(opts *RootOptions) *cobra.Command {
	var (
		symptoms   []string
		modifiers  []string
		duration   int
		age        int
		gender     string
		savePatient string
		recordedBy  string
	)

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Evaluate symptoms against the triage catalog",
		Example: `  ruralai triage --symptom fever --symptom cough --duration 2
  ruralai triage --symptom chest_pain --format json
  ruralai triage --symptom diarrhea --save-patient <id> --recorded-by <user>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts)
			if err != nil {
				return err
			}

			in := triage.Input{
				Symptoms:     symptoms,
				Modifiers:    modifiers,
				DurationDays: duration,
				Gender:       gender,
			}
			if cmd.Flags().Changed("age") {
				in.Age = &age
			}

			results := engine.Evaluate(in)

			if savePatient != "" {
				if recordedBy == "" {
					return fmt.Errorf("--recorded-by is required with --save-patient")
				}
				s, err := openStore(opts)
				if err != nil {
					return err
				}
				defer s.Close()

				log, err := s.CreateTriageLog(cmd.Context(), savePatient, recordedBy,
					triage.NewLogPayload(in, results))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved triage log %s\n", log.ID)
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), results)
			}
			printResults(cmd.OutOrStdout(), results)
			if action := engine.EmergencyAction(in); action != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\nEMERGENCY: call %s (or %s)\n",
					action.AmbulanceNumber, action.AlternateNumber)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&symptoms, "symptom", nil, "symptom id (repeatable)")
	cmd.Flags().StringArrayVar(&modifiers, "modifier", nil, "modifier id (repeatable)")
	cmd.Flags().IntVar(&duration, "duration", 0, "symptom duration in days")
	cmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	cmd.Flags().StringVar(&gender, "gender", "", "patient gender")
	cmd.Flags().StringVar(&savePatient, "save-patient", "", "persist the result as a triage log for this patient id")
	cmd.Flags().StringVar(&recordedBy, "recorded-by", "", "user id recording the log")

	return cmd
}
