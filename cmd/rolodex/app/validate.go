package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
)

// NewValidateCommand creates the validate command.
func (a *App) NewValidateCommand() *cobra.Command {
	var live string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the canonical dataset",
		Long: `Validate checks the canonical dataset against the schema and the
collection invariants: unique internal ids, unique object ids, and
structural field constraints. Each violation is reported as
"<dot.path> - <message>".`,
		Example: `  rolodex validate --live data/contacts.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if live == "" {
				return fmt.Errorf("%w: no live dataset path given", errors.ErrInvalidInput)
			}

			exp, err := directory.Load(live)
			if err != nil {
				return err
			}

			result := directory.ValidateExport(exp)
			if !result.Success {
				for _, issue := range result.Errors {
					fmt.Fprintln(cmd.OutOrStdout(), issue)
				}
				return result.Err(live)
			}

			a.logger.Info().
				Int("entities", len(exp.ContactEntities)).
				Int("locations", len(exp.Locations)).
				Msg("dataset is valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&live, "live", a.config.LivePath, "path to the live canonical JSON dataset")

	return cmd
}
