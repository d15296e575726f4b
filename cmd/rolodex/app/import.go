package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plyworks/rolodex/pkg/csvio"
	"github.com/plyworks/rolodex/pkg/digest"
	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
	"github.com/plyworks/rolodex/pkg/transform"
)

// importFlags holds the import command's flag values.
type importFlags struct {
	csv       string
	out       string
	locations string
	force     bool
}

// NewImportCommand creates the import command.
func (a *App) NewImportCommand() *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bootstrap a canonical dataset from a CSV export",
		Long: `Import converts a CSV export into a brand-new canonical dataset.

Every row becomes an external entity with a stable internal id derived
from its display name; rows without an object id, duplicate object ids,
and entities failing schema validation are skipped with a warning
rather than aborting the batch. Curated locations can be seeded from a
YAML file.

Import refuses to overwrite an existing dataset unless --force is
given; refreshing an existing dataset is the update command's job.`,
		Example: `  rolodex import --csv hr-export.csv --out data/contacts.json
  rolodex import --csv hr-export.csv --out data/contacts.json --locations locations.yaml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runImport(flags)
		},
	}

	cmd.Flags().StringVar(&flags.csv, "csv", "", "path to the CSV export to import")
	cmd.Flags().StringVar(&flags.out, "out", "", "output path for the canonical JSON dataset")
	cmd.Flags().StringVar(&flags.locations, "locations", "", "optional YAML seed file of curated locations")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite an existing dataset at --out")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// runImport executes the first-import flow.
func (a *App) runImport(flags *importFlags) error {
	if !flags.force {
		if _, err := os.Stat(flags.out); err == nil {
			return fmt.Errorf("dataset %s %w; use 'rolodex update' to refresh it or --force to overwrite",
				flags.out, errors.ErrAlreadyExists)
		}
	}

	reporter := a.reporter()

	rows, err := csvio.ReadFile(flags.csv, reporter)
	if err != nil {
		return err
	}

	exp := transform.New(transform.WithReporter(reporter)).ToCanonical(rows, filepath.Base(flags.csv))

	if flags.locations != "" {
		locations, err := directory.LoadLocationsYAML(flags.locations)
		if err != nil {
			return err
		}
		exp.Locations = locations
	}

	if err := directory.ValidateExport(exp).Err("imported dataset"); err != nil {
		return err
	}
	exp.Meta.Hash = digest.Compute(exp.ContactEntities, exp.Locations, digest.WithReporter(reporter))

	if err := exp.Save(flags.out); err != nil {
		return err
	}

	a.logger.Info().
		Int("rows", len(rows)).
		Int("entities", len(exp.ContactEntities)).
		Int("locations", len(exp.Locations)).
		Str("path", flags.out).
		Str("hash", exp.Meta.Hash).
		Msg("dataset imported")
	return nil
}
