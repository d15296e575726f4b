package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/plyworks/rolodex/pkg/digest"
	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
)

// NewHashCommand creates the hash command.
func (a *App) NewHashCommand() *cobra.Command {
	var (
		live  string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the content hash of the canonical dataset",
		Long: `Hash computes the order-independent SHA-256 content digest of the
canonical dataset and prints it. With --check, the computed digest is
compared against the one stored in the dataset's metadata and a
mismatch exits non-zero. The dataset is validated first, so a hash
never blesses a structurally invalid file.`,
		Example: `  rolodex hash --live data/contacts.json
  rolodex hash --live data/contacts.json --check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHash(live, check, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&live, "live", a.config.LivePath, "path to the live canonical JSON dataset")
	cmd.Flags().BoolVar(&check, "check", false, "verify the stored hash instead of printing the computed one")

	return cmd
}

// runHash executes the hash flow.
func (a *App) runHash(live string, check bool, out io.Writer) error {
	if live == "" {
		return fmt.Errorf("%w: no live dataset path given", errors.ErrInvalidInput)
	}

	exp, err := directory.Load(live)
	if err != nil {
		return err
	}
	if err := directory.ValidateExport(exp).Err(live); err != nil {
		return err
	}

	computed := digest.Compute(exp.ContactEntities, exp.Locations, digest.WithReporter(a.reporter()))

	if check {
		if exp.Meta.Hash != computed {
			return fmt.Errorf("%w: stored %q, computed %q",
				errors.ErrHashMismatch, exp.Meta.Hash, computed)
		}
		a.logger.Info().Str("hash", computed).Msg("stored hash matches")
		return nil
	}

	fmt.Fprintln(out, computed)
	return nil
}
