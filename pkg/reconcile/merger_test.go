package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/pkg/csvio"
	"github.com/plyworks/rolodex/pkg/directory"
)

func strPtr(s string) *string { return &s }

func liveEntity() directory.ContactEntity {
	return directory.ContactEntity{
		Kind:        directory.KindExternal,
		ID:          "jane-doe",
		DisplayName: "Jane Doe",
		Title:       strPtr("Engineer"),
		ContactPoints: []directory.ContactPoint{
			{Type: directory.ContactPointEmail, Value: "jane@example.com"},
			{Type: directory.ContactPointMobile, Value: "555-0100", Source: "Office365"},
		},
		Roles: []directory.Role{
			{Brand: "tsa", Office: "PLY", Priority: 1, Title: strPtr("Engineer")},
			{Brand: "cts", Office: "FTL", Priority: 2, Title: strPtr("Advisor")},
		},
		Source:     directory.SourceOffice365,
		Department: strPtr("Engineering"),
		UPN:        strPtr("jane@example.com"),
		ObjectID:   "obj-1",
	}
}

func matchingRow() csvio.RawRow {
	return csvio.RawRow{
		Line:        1,
		ObjectID:    "obj-1",
		DisplayName: "Jane Doe",
		MobilePhone: "555-0100",
		UPN:         "jane@example.com",
		Title:       "Engineer",
		Department:  "Engineering",
		Office:      "tsa:ply",
	}
}

func TestUpdateScalarOverwrite(t *testing.T) {
	row := matchingRow()
	row.DisplayName = "Jane D. Doe"
	row.Department = "Platform"
	row.MobilePhone = "555-0199"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeUpdate, result.Changes[0].Type)
	assert.Equal(t, "obj-1", result.Changes[0].Key)

	entity := result.Updated[0]
	assert.Equal(t, "Jane D. Doe", entity.DisplayName)
	require.NotNil(t, entity.Department)
	assert.Equal(t, "Platform", *entity.Department)
	assert.Equal(t, "555-0199", entity.ContactPointValue(directory.ContactPointMobile))
	assert.Equal(t, directory.SourceMerged, entity.Source)
}

func TestUpdateEmptyColumnsReset(t *testing.T) {
	row := matchingRow()
	row.Title = ""
	row.Department = ""
	row.MobilePhone = ""
	row.Office = "" // role set untouched

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeUpdate, result.Changes[0].Type)

	entity := result.Updated[0]
	assert.Nil(t, entity.Title)
	assert.Nil(t, entity.Department)
	assert.Empty(t, entity.ContactPointValue(directory.ContactPointMobile))
	// Non-mobile contact points survive the reset.
	assert.Equal(t, "jane@example.com", entity.ContactPointValue(directory.ContactPointEmail))
	assert.Len(t, entity.Roles, 2)
}

func TestUpdateRoleReplacementScope(t *testing.T) {
	row := matchingRow()
	row.Office = "cts:ftl"
	row.Title = "Senior Advisor"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	entity := result.Updated[0]
	require.Len(t, entity.Roles, 2)

	// tsa/PLY untouched, cts/FTL rebuilt from the row.
	assert.Equal(t, "tsa", entity.Roles[0].Brand)
	assert.Equal(t, "Engineer", *entity.Roles[0].Title)
	assert.Equal(t, "cts", entity.Roles[1].Brand)
	assert.Equal(t, "FTL", entity.Roles[1].Office)
	assert.Equal(t, 1, entity.Roles[1].Priority)
	assert.Equal(t, "Senior Advisor", *entity.Roles[1].Title)
}

func TestUpdateOfficeTagAddsMissingRole(t *testing.T) {
	row := matchingRow()
	row.Office = "tsa:ftl"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	entity := result.Updated[0]
	require.Len(t, entity.Roles, 3)
	assert.Equal(t, "FTL", entity.Roles[2].Office)
	assert.Equal(t, "tsa", entity.Roles[2].Brand)
}

func TestUpdateBareOfficeTokenPreservesRoles(t *testing.T) {
	row := matchingRow()
	row.Office = "ftl"
	row.Title = "Changed Title"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	entity := result.Updated[0]
	assert.Equal(t, liveEntity().Roles, entity.Roles)
}

func TestUpdateNoChange(t *testing.T) {
	result := New().Update([]csvio.RawRow{matchingRow()}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeNone, result.Changes[0].Type)
	assert.Nil(t, result.Changes[0].Before)

	// An untouched entity keeps its original source.
	assert.Equal(t, directory.SourceOffice365, result.Updated[0].Source)
}

func TestUpdateIdempotent(t *testing.T) {
	row := matchingRow()
	row.DisplayName = "Jane D. Doe"
	row.Office = "cts:ftl"
	row.Title = "Advisor Lead"
	rows := []csvio.RawRow{row}

	first := New().Update(rows, []directory.ContactEntity{liveEntity()})
	require.Len(t, first.Changes, 1)
	assert.Equal(t, ChangeUpdate, first.Changes[0].Type)

	second := New().Update(rows, first.Updated)
	require.Len(t, second.Changes, 1)
	assert.Equal(t, ChangeNone, second.Changes[0].Type)
	assert.Equal(t, first.Updated, second.Updated)
}

func TestUpdateUPNFallbackCaseInsensitive(t *testing.T) {
	row := matchingRow()
	row.ObjectID = ""
	row.UPN = "JANE@EXAMPLE.COM"
	row.DisplayName = "Jane Renamed"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeUpdate, result.Changes[0].Type)
	assert.Equal(t, "JANE@EXAMPLE.COM", result.Changes[0].Key)
	assert.Equal(t, "Jane Renamed", result.Updated[0].DisplayName)
}

func TestUpdateObjectIDMissFallsBackToUPN(t *testing.T) {
	row := matchingRow()
	row.ObjectID = "rotated-obj"
	row.DisplayName = "Jane Renamed"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeUpdate, result.Changes[0].Type)
	assert.Equal(t, "jane@example.com", result.Changes[0].Key)
}

func TestUpdateNotFoundNotAppended(t *testing.T) {
	collector := diag.NewCollector()
	row := csvio.RawRow{Line: 1, ObjectID: "obj-99", DisplayName: "New Hire"}

	result := New(WithReporter(collector)).Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeNotFound, result.Changes[0].Type)
	assert.Equal(t, "obj-99", result.Changes[0].Key)
	assert.Len(t, result.Updated, 1)
	assert.Len(t, collector.Warnings(), 1)
}

func TestUpdateRowWithoutIdentitySkipped(t *testing.T) {
	collector := diag.NewCollector()
	row := csvio.RawRow{Line: 1, DisplayName: "Anonymous"}

	result := New(WithReporter(collector)).Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	assert.Empty(t, result.Changes)
	assert.Len(t, collector.Warnings(), 1)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 1, result.Skipped[0].Row)
	assert.Contains(t, result.Skipped[0].Error(), "no object id or upn")
}

func TestUpdateLiveSliceNotMutated(t *testing.T) {
	live := []directory.ContactEntity{liveEntity()}
	row := matchingRow()
	row.DisplayName = "Mutated"

	_ = New().Update([]csvio.RawRow{row}, live)
	assert.Equal(t, "Jane Doe", live[0].DisplayName)
}

func TestUpdateBeforeAfterRecorded(t *testing.T) {
	row := matchingRow()
	row.Department = "Platform"

	result := New().Update([]csvio.RawRow{row}, []directory.ContactEntity{liveEntity()})
	require.Len(t, result.Changes, 1)
	change := result.Changes[0]
	require.NotNil(t, change.Before)
	require.NotNil(t, change.After)
	assert.Equal(t, "Engineering", *change.Before.Department)
	assert.Equal(t, "Platform", *change.After.Department)
}

func TestResultCounts(t *testing.T) {
	result := &Result{Changes: []ChangeRecord{
		{Type: ChangeUpdate},
		{Type: ChangeNone},
		{Type: ChangeNone},
		{Type: ChangeNotFound},
	}}

	updates, noChanges, notFound := result.Counts()
	assert.Equal(t, 1, updates)
	assert.Equal(t, 2, noChanges)
	assert.Equal(t, 1, notFound)
	assert.True(t, result.HasUpdates())
}

func TestParseOfficeTag(t *testing.T) {
	tests := []struct {
		tag    string
		brand  string
		office string
		ok     bool
	}{
		{"tsa:ply", "tsa", "PLY", true},
		{"CTS:ftl", "cts", "FTL", true},
		{" tsa : ply ", "tsa", "PLY", true},
		{"ftl", "", "", false},
		{"", "", "", false},
		{":ply", "", "", false},
		{"tsa:", "", "", false},
	}

	for _, tt := range tests {
		brand, office, ok := parseOfficeTag(tt.tag)
		assert.Equal(t, tt.ok, ok, "tag %q", tt.tag)
		assert.Equal(t, tt.brand, brand, "tag %q", tt.tag)
		assert.Equal(t, tt.office, office, "tag %q", tt.tag)
	}
}
