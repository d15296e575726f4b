package differ

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"

	"github.com/plyworks/rolodex/pkg/errors"
)

// Log is the per-run audit artifact written alongside the canonical
// file when a merge produced changes. Beyond the changeset it carries a
// run identifier and an RFC 6902 patch per changed entity for
// machine-readable detail.
type Log struct {
	RunID       string                    `json:"runId"`
	GeneratedAt utc.Time                  `json:"generatedAt"`
	Source      string                    `json:"source"` // CSV label that drove the run
	Diff        *Changeset                `json:"diff"`
	Patches     map[string]jsondiff.Patch `json:"patches,omitempty"`
}

// NewLog builds a diff log for the given changeset. Patch generation is
// best-effort: an entity whose patch cannot be computed is simply
// absent from Patches.
func NewLog(changeset *Changeset, source string) *Log {
	log := &Log{
		RunID:       uuid.NewString(),
		GeneratedAt: utc.Now(),
		Source:      source,
		Diff:        changeset,
	}

	if changeset.ChangedCount > 0 {
		log.Patches = make(map[string]jsondiff.Patch, changeset.ChangedCount)
		ids := make([]string, 0, changeset.ChangedCount)
		for id := range changeset.Changed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			change := changeset.Changed[id]
			patch, err := jsondiff.Compare(change.Before, change.After)
			if err != nil || len(patch) == 0 {
				continue
			}
			log.Patches[id] = patch
		}
	}

	return log
}

// Write stores the log as a timestamped JSON file in dir and returns
// the path written.
func (l *Log) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}

	name := "diff-" + l.GeneratedAt.Format("20060102T150405Z") + ".json"
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", errors.WrapParse("json", path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WrapIO("write", path, err)
	}

	return path, nil
}
