package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
	"github.com/plyworks/rolodex/pkg/logging"
	"github.com/plyworks/rolodex/pkg/reconcile"
)

func strPtr(s string) *string { return &s }

func testApp() *App {
	logger := logging.New(os.Stderr)
	return &App{
		version: "test",
		commit:  "none",
		date:    "now",
		builtBy: "test",
		config:  &Config{LogFormat: "json", LogOutput: "stderr"},
		logger:  &logger,
	}
}

func writeLiveDataset(t *testing.T, dir string) string {
	t.Helper()

	exp := directory.NewExport([]directory.ContactEntity{
		{
			Kind:        directory.KindExternal,
			ID:          "jane-doe",
			DisplayName: "Jane Doe",
			Source:      directory.SourceOffice365,
			UPN:         strPtr("jane@example.com"),
			ObjectID:    "obj-1",
		},
	}, nil, "seed")

	path := filepath.Join(dir, "contacts.json")
	require.NoError(t, exp.Save(path))
	return path
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewVersionCommand(t *testing.T) {
	cmd := testApp().NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	assert.Contains(t, buf.String(), "rolodex test")
}

func TestRunUpdateWritesDatasetAndDiffLog(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDataset(t, dir)
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane D. Doe\n")
	out := filepath.Join(dir, "out", "contacts.json")

	err := testApp().runUpdate(&updateFlags{live: live, csv: csvPath, out: out})
	require.NoError(t, err)

	updated, err := directory.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "Jane D. Doe", updated.ContactEntities[0].DisplayName)
	assert.NotEmpty(t, updated.Meta.Hash)

	logs, err := filepath.Glob(filepath.Join(dir, "out", "diff-*.json"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRunUpdateDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDataset(t, dir)
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane D. Doe\n")
	out := filepath.Join(dir, "out", "contacts.json")

	err := testApp().runUpdate(&updateFlags{live: live, csv: csvPath, out: out, dryRun: true})
	require.NoError(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunUpdateFailOnDiff(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDataset(t, dir)
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane D. Doe\n")

	err := testApp().runUpdate(&updateFlags{live: live, csv: csvPath, dryRun: true, failOnDiff: true})
	assert.ErrorIs(t, err, errors.ErrChangesDetected)
}

func TestRunUpdateNoChangesLeavesLiveIntact(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDataset(t, dir)
	before, err := os.ReadFile(live)
	require.NoError(t, err)

	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane Doe\n")
	require.NoError(t, testApp().runUpdate(&updateFlags{live: live, csv: csvPath}))

	after, err := os.ReadFile(live)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	logs, err := filepath.Glob(filepath.Join(dir, "diff-*.json"))
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRunUpdateMissingLiveFileFatal(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane Doe\n")

	err := testApp().runUpdate(&updateFlags{live: filepath.Join(dir, "missing.json"), csv: csvPath})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Contains(t, err.Error(), "rolodex import")
}

func TestRunUpdateAppendsProvenance(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDataset(t, dir)
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane D. Doe\n")

	require.NoError(t, testApp().runUpdate(&updateFlags{live: live, csv: csvPath}))

	updated, err := directory.Load(live)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "contacts.csv"}, updated.Meta.GeneratedFrom)
}

func TestMergeFailureCollectsUpdatedKeys(t *testing.T) {
	result := &reconcile.Result{Changes: []reconcile.ChangeRecord{
		{Key: "obj-1", Type: reconcile.ChangeUpdate},
		{Key: "obj-2", Type: reconcile.ChangeNone},
	}}

	err := mergeFailure("contacts.csv", result, errors.New("ContactEntities.0.id - is required"))
	require.Error(t, err)

	var mergeErr *errors.MergeError
	require.ErrorAs(t, err, &mergeErr)
	assert.Equal(t, "contacts.csv", mergeErr.Source)
	assert.Equal(t, []string{"obj-1"}, mergeErr.Keys)
}

func TestRunImportAndExport(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir,
		"Object ID,Display Name,Mobile Phone,User Principal Name,Title,Department\n"+
			"obj-1,Jane Doe,555-0100,jane@example.com,Engineer,Engineering\n")
	out := filepath.Join(dir, "contacts.json")

	app := testApp()
	require.NoError(t, app.runImport(&importFlags{csv: csvPath, out: out}))

	imported, err := directory.Load(out)
	require.NoError(t, err)
	require.Len(t, imported.ContactEntities, 1)
	assert.Equal(t, "jane-doe", imported.ContactEntities[0].ID)
	assert.NotEmpty(t, imported.Meta.Hash)

	exportPath := filepath.Join(dir, "export.csv")
	require.NoError(t, app.runExport(&exportFlags{live: out, out: exportPath}))

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jane Doe")
	assert.Contains(t, string(data), "Display Name,Mobile Phone,Object ID")
}

func TestRunImportRefusesExistingDataset(t *testing.T) {
	dir := t.TempDir()
	existing := writeLiveDataset(t, dir)
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-2,John Roe\n")

	app := testApp()
	err := app.runImport(&importFlags{csv: csvPath, out: existing})
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)

	require.NoError(t, app.runImport(&importFlags{csv: csvPath, out: existing, force: true}))
	replaced, err := directory.Load(existing)
	require.NoError(t, err)
	require.Len(t, replaced.ContactEntities, 1)
	assert.Equal(t, "obj-2", replaced.ContactEntities[0].ObjectID)
}

func TestRunHashPrintsAndChecks(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "Object ID,Display Name\nobj-1,Jane Doe\n")
	out := filepath.Join(dir, "contacts.json")

	app := testApp()
	require.NoError(t, app.runImport(&importFlags{csv: csvPath, out: out}))

	var buf bytes.Buffer
	require.NoError(t, app.runHash(out, false, &buf))
	assert.Regexp(t, `^[0-9a-f]{64}\n$`, buf.String())

	require.NoError(t, app.runHash(out, true, &buf))
}

func TestRunHashRejectsInvalidDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	data := `{
  "ContactEntities": [
    {"kind": "external", "id": "a", "source": "Office365", "objectId": "obj-1"},
    {"kind": "external", "id": "a", "source": "Office365", "objectId": "obj-2"}
  ],
  "Locations": [],
  "_meta": {"generatedFrom": [], "generatedAt": "2026-01-01T00:00:00Z", "version": 1}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	err := testApp().runHash(path, true, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"both prefers quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"invalid falls back", Config{LogLevel: "noisy"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(&tt.config))
		})
	}
}
