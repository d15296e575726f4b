package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plyworks/rolodex/pkg/csvio"
	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
)

// exportFlags holds the export command's flag values.
type exportFlags struct {
	live string
	out  string
}

// NewExportCommand creates the export command.
func (a *App) NewExportCommand() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Project the canonical dataset out to the CSV contract",
		Long: `Export writes the CSV-synced entities of the canonical dataset to the
fixed six-column CSV format consumed downstream. Manually curated
entities are never exported.`,
		Example: `  rolodex export --live data/contacts.json --out contacts-export.csv`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runExport(flags)
		},
	}

	cmd.Flags().StringVar(&flags.live, "live", a.config.LivePath, "path to the live canonical JSON dataset")
	cmd.Flags().StringVar(&flags.out, "out", "", "output path for the CSV file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// runExport executes the export flow.
func (a *App) runExport(flags *exportFlags) error {
	if flags.live == "" {
		return fmt.Errorf("%w: no live dataset path given", errors.ErrInvalidInput)
	}

	live, err := directory.Load(flags.live)
	if err != nil {
		return err
	}
	if err := directory.ValidateExport(live).Err(flags.live); err != nil {
		return err
	}

	if err := csvio.WriteFile(flags.out, live.ContactEntities); err != nil {
		return err
	}

	exported := 0
	for i := range live.ContactEntities {
		source := live.ContactEntities[i].Source
		if source == directory.SourceOffice365 || source == directory.SourceMerged {
			exported++
		}
	}
	a.logger.Info().
		Int("entities", len(live.ContactEntities)).
		Int("exported", exported).
		Str("path", flags.out).
		Msg("CSV export written")
	return nil
}
