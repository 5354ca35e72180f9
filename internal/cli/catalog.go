package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jitheswar/ruralAi/internal/triage"
)

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate triage rule catalogs",
	}
	cmd.AddCommand(newCatalogValidateCommand(opts))
	cmd.AddCommand(newCatalogSymptomsCommand(opts))
	return cmd
}

func newCatalogValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse a catalog file and report its rule counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := triage.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"catalog version %d: %d emergency rules, %d common rules, %d symptoms\n",
				c.Version, len(c.Emergency), len(c.Common), len(c.SymptomList))
			return nil
		},
	}
}

func newCatalogSymptomsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms",
		Short: "List the selectable symptoms by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts)
			if err != nil {
				return err
			}
			c := engine.Catalog()
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), c.Symptoms())
			}
			for _, cat := range c.Categories() {
				var ids []string
				for _, s := range c.Symptoms() {
					if s.Category == cat {
						ids = append(ids, fmt.Sprintf("%s (%s)", s.ID, s.Label))
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cat, strings.Join(ids, ", "))
			}
			return nil
		},
	}
}
