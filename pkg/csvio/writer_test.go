package csvio

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plyworks/rolodex/pkg/directory"
)

func strPtr(s string) *string { return &s }

func TestWriteFiltersAndProjects(t *testing.T) {
	entities := []directory.ContactEntity{
		{
			Kind:        directory.KindExternal,
			ID:          "jane-doe",
			DisplayName: "Jane Doe",
			ContactPoints: []directory.ContactPoint{
				{Type: directory.ContactPointEmail, Value: "jane@example.com"},
				{Type: directory.ContactPointMobile, Value: "555-0100"},
			},
			Roles: []directory.Role{
				{Brand: "cts", Office: "FTL", Priority: 2, Title: strPtr("Advisor")},
				{Brand: "tsa", Office: "PLY", Priority: 1, Title: strPtr("Engineer")},
			},
			Source:     directory.SourceMerged,
			Department: strPtr("Engineering"),
			UPN:        strPtr("jane@example.com"),
			ObjectID:   "obj-1",
		},
		{
			Kind:        directory.KindInternal,
			ID:          "conference-room-a",
			DisplayName: "Conference Room A",
			Source:      directory.SourceManual,
			ObjectID:    "manual-conference-room-a-12345678",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entities))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2) // header + one exported row

	assert.Equal(t, ExportHeader, records[0])
	// Primary role (priority 1) supplies the title.
	assert.Equal(t, []string{"Jane Doe", "555-0100", "obj-1", "jane@example.com", "Engineer", "Engineering"}, records[1])
}

func TestWriteEmptyOptionalColumns(t *testing.T) {
	entities := []directory.ContactEntity{
		{
			Kind:        directory.KindExternal,
			ID:          "john-roe",
			DisplayName: "John Roe",
			Source:      directory.SourceOffice365,
			ObjectID:    "obj-2",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entities))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"John Roe", "", "obj-2", "", "", ""}, records[1])
}
