package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jitheswar/ruralAi/internal/model"
	"github.com/Jitheswar/ruralAi/internal/store"
)

// NewLogsCommand creates the logs command group.
func NewLogsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Record and inspect health logs (append-only)",
	}
	cmd.AddCommand(newLogsAddCommand(opts))
	cmd.AddCommand(newLogsListCommand(opts))
	return cmd
}

func newLogsAddCommand(opts *RootOptions) *cobra.Command {
	var (
		patientID  string
		logType    string
		dataJSON   string
		recordedBy string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a health log entry for a patient",
		Long: `Append a health log entry. Entries are never edited after creation -
corrections are recorded as new entries, keeping history reconstructible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			l, err := s.CreateHealthLog(cmd.Context(), store.NewHealthLog{
				PatientID:  patientID,
				LogType:    model.LogType(logType),
				DataJson:   dataJSON,
				RecordedBy: recordedBy,
			})
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), l)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s log %s for patient %s\n", l.LogType, l.ID, l.PatientID)
			return nil
		},
	}

	cmd.Flags().StringVar(&patientID, "patient", "", "patient id (required)")
	cmd.Flags().StringVar(&logType, "type", "", "triage|vitals|prescription|symptom (required)")
	cmd.Flags().StringVar(&dataJSON, "data", "", "log payload as JSON (required)")
	cmd.Flags().StringVar(&recordedBy, "recorded-by", "", "user id recording the log (required)")
	cmd.MarkFlagRequired("patient")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("recorded-by")

	return cmd
}

func newLogsListCommand(opts *RootOptions) *cobra.Command {
	var patientID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a patient's health logs in recording order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			logs, err := s.ListHealthLogs(cmd.Context(), patientID)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), logs)
			}
			for _, l := range logs {
				state := "pending"
				if l.IsSynced {
					state = "synced"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %s [%s]\n",
					l.CreatedAt.Format("2006-01-02 15:04"), l.LogType, l.ID, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&patientID, "patient", "", "patient id (required)")
	cmd.MarkFlagRequired("patient")

	return cmd
}
