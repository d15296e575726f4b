package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/pkg/csvio"
	"github.com/plyworks/rolodex/pkg/differ"
	"github.com/plyworks/rolodex/pkg/digest"
	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
	"github.com/plyworks/rolodex/pkg/reconcile"
)

// updateFlags holds the update command's flag values.
type updateFlags struct {
	live       string
	csv        string
	out        string
	diffLogDir string
	dryRun     bool
	failOnDiff bool
}

// NewUpdateCommand creates the update command.
func (a *App) NewUpdateCommand() *cobra.Command {
	flags := &updateFlags{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge a fresh CSV into the live canonical dataset",
		Long: `Update merges a CSV export from the HR/identity system into the live
canonical dataset.

Each CSV row is matched to a live entity by object id, falling back to
a case-insensitive UPN match. Matched rows overwrite only the CSV-owned
fields; an empty CSV column resets its field rather than preserving the
old value. Rows with no match are reported but never appended, and live
entities absent from the CSV are left untouched.

The updated dataset is revalidated, its content hash recomputed, and
both the dataset and a diff log are written only when the merge
actually changed something.`,
		Example: `  rolodex update --live data/contacts.json --csv hr-export.csv
  rolodex update --live data/contacts.json --csv hr-export.csv --dry-run
  rolodex update --live data/contacts.json --csv hr-export.csv --fail-on-diff`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runUpdate(flags)
		},
	}

	cmd.Flags().StringVar(&flags.live, "live", a.config.LivePath, "path to the live canonical JSON dataset")
	cmd.Flags().StringVar(&flags.csv, "csv", "", "path to the CSV export to merge")
	cmd.Flags().StringVar(&flags.out, "out", "", "output path (default: overwrite --live)")
	cmd.Flags().StringVar(&flags.diffLogDir, "diff-log", a.config.DiffLogDir, "directory for diff logs (default: directory of the output file)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "compute and report changes without writing any file")
	cmd.Flags().BoolVar(&flags.failOnDiff, "fail-on-diff", false, "exit non-zero when the merge produced changes")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

// runUpdate executes the merge flow: load, validate, merge, revalidate,
// hash, diff, write. Any fatal failure aborts before the write, so a
// broken run never replaces a valid dataset.
func (a *App) runUpdate(flags *updateFlags) error {
	if flags.live == "" {
		return fmt.Errorf("%w: no live dataset path given", errors.ErrInvalidInput)
	}

	collector := diag.NewCollector()
	reporter := diag.Tee(a.reporter(), collector)

	live, err := directory.Load(flags.live)
	if err != nil {
		if errors.IsNotFound(err) {
			return fmt.Errorf("no dataset to update; run 'rolodex import' to bootstrap one: %w", err)
		}
		return err
	}
	if err := directory.ValidateExport(live).Err(flags.live); err != nil {
		return err
	}

	rows, err := csvio.ReadFile(flags.csv, reporter)
	if err != nil {
		return err
	}
	sourceLabel := filepath.Base(flags.csv)

	result := reconcile.New(reconcile.WithReporter(reporter)).Update(rows, live.ContactEntities)

	merged := directory.NewExport(result.Updated, live.Locations, sourceLabel)
	merged.Meta.GeneratedFrom = appendSource(live.Meta.GeneratedFrom, sourceLabel)
	if err := directory.ValidateExport(merged).Err("merged dataset"); err != nil {
		return mergeFailure(sourceLabel, result, err)
	}
	merged.Meta.Hash = digest.Compute(merged.ContactEntities, merged.Locations, digest.WithReporter(reporter))

	changeset := differ.New().Canonical(live, merged)

	updates, noChanges, notFound := result.Counts()
	a.logger.Info().
		Int("rows", len(rows)).
		Int("updates", updates).
		Int("noChanges", noChanges).
		Int("notFound", notFound).
		Int("changed", changeset.ChangedCount).
		Int("skipped", len(result.Skipped)).
		Int("warnings", len(collector.Warnings())).
		Bool("hashChanged", merged.Meta.Hash != live.Meta.Hash).
		Msg("merge computed")

	if !changeset.HasChanges() {
		a.logger.Info().Msg("no changes; nothing written")
		return nil
	}

	if flags.dryRun {
		a.logger.Info().Msg("dry run: changes detected but nothing written")
	} else {
		out := flags.out
		if out == "" {
			out = flags.live
		}
		if err := merged.Save(out); err != nil {
			return err
		}
		a.logger.Info().Str("path", out).Str("hash", merged.Meta.Hash).Msg("dataset written")

		logDir := flags.diffLogDir
		if logDir == "" {
			logDir = filepath.Dir(out)
		}
		logPath, err := differ.NewLog(changeset, sourceLabel).Write(logDir)
		if err != nil {
			return err
		}
		a.logger.Info().Str("path", logPath).Msg("diff log written")
	}

	if flags.failOnDiff {
		return fmt.Errorf("%w: %d added, %d removed, %d changed",
			errors.ErrChangesDetected, len(changeset.Added), len(changeset.Removed), changeset.ChangedCount)
	}
	return nil
}

// appendSource extends the dataset's provenance trail with the label of
// the CSV driving this run, preserving the labels of earlier runs.
func appendSource(history []string, label string) []string {
	sources := make([]string, 0, len(history)+1)
	sources = append(sources, history...)
	return append(sources, label)
}

// mergeFailure wraps a post-merge validation failure, naming the source
// CSV and the keys of the rows that changed the dataset.
func mergeFailure(source string, result *reconcile.Result, err error) error {
	var keys []string
	for _, change := range result.Changes {
		if change.Type == reconcile.ChangeUpdate {
			keys = append(keys, change.Key)
		}
	}
	return &errors.MergeError{
		Source:  source,
		Keys:    keys,
		Message: "merged dataset failed validation",
		Err:     err,
	}
}
