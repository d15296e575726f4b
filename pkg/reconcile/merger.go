// Package reconcile merges fresh CSV rows into an existing canonical
// collection. Only CSV-owned fields are touched: scalar columns
// overwrite (empty resets to absence), the Office tag replaces exactly
// the role it names, and everything else on the entity is preserved.
package reconcile

import (
	"strings"

	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/pkg/csvio"
	"github.com/plyworks/rolodex/pkg/differ"
	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
)

// Merger applies CSV batches to the live canonical collection.
type Merger interface {
	// Update merges rows into live and returns the updated collection
	// plus one change record per row carrying an identity key. The live
	// slice is never mutated.
	Update(rows []csvio.RawRow, live []directory.ContactEntity) *Result
}

// merger is the default implementation of Merger.
type merger struct {
	reporter diag.Reporter
	differ   differ.Differ
}

// New creates a Merger.
func New(opts ...Option) Merger {
	m := &merger{
		differ: differ.New(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Update merges rows into live. Rows are applied in order against the
// evolving collection, so a later row matching the same entity sees the
// earlier row's result.
func (m *merger) Update(rows []csvio.RawRow, live []directory.ContactEntity) *Result {
	updated := make([]directory.ContactEntity, len(live))
	for i := range live {
		updated[i] = live[i].Clone()
	}

	byObjectID := make(map[string]int, len(updated))
	byUPN := make(map[string]int, len(updated))
	for i := range updated {
		if updated[i].ObjectID != "" {
			byObjectID[updated[i].ObjectID] = i
		}
		if updated[i].UPN != nil && *updated[i].UPN != "" {
			byUPN[strings.ToLower(*updated[i].UPN)] = i
		}
	}

	result := &Result{
		Updated: updated,
		Changes: []ChangeRecord{},
	}

	for _, row := range rows {
		key, idx, ok := m.match(row, byObjectID, byUPN)
		if key == "" {
			rowErr := &errors.RowError{Row: row.Line, Message: "no object id or upn"}
			diag.Warnf(m.reporter, "skipping row without object id or upn", "row", row.Line)
			result.Skipped = append(result.Skipped, rowErr)
			continue
		}
		if !ok {
			diag.Warnf(m.reporter, "no canonical entity matches row", "row", row.Line, "key", key)
			result.Changes = append(result.Changes, ChangeRecord{Key: key, Type: ChangeNotFound})
			continue
		}

		original := updated[idx]
		candidate := m.candidate(&original, row)

		if len(m.differ.Fields(original, candidate)) == 0 {
			result.Changes = append(result.Changes, ChangeRecord{Key: key, Type: ChangeNone})
			continue
		}

		candidate.Source = directory.SourceMerged
		updated[idx] = candidate

		before := original.Clone()
		after := candidate.Clone()
		result.Changes = append(result.Changes, ChangeRecord{
			Key:    key,
			Type:   ChangeUpdate,
			Before: &before,
			After:  &after,
		})
	}

	return result
}

// match resolves a row to its live entity: objectId first, then upn
// case-insensitive. The returned key is the row's identity key, empty
// when the row carries neither.
func (m *merger) match(row csvio.RawRow, byObjectID, byUPN map[string]int) (key string, idx int, ok bool) {
	if row.ObjectID != "" {
		idx, ok = byObjectID[row.ObjectID]
		if ok {
			return row.ObjectID, idx, true
		}
	}
	if row.UPN != "" {
		idx, ok = byUPN[strings.ToLower(row.UPN)]
		if ok {
			return row.UPN, idx, true
		}
	}
	if row.ObjectID != "" {
		return row.ObjectID, 0, false
	}
	return row.UPN, 0, false
}

// candidate builds the updated entity for a matched row. CSV-owned
// columns overwrite their canonical fields, with an empty column
// resetting the field to absence rather than leaving it untouched.
func (m *merger) candidate(original *directory.ContactEntity, row csvio.RawRow) directory.ContactEntity {
	entity := original.Clone()

	entity.DisplayName = row.DisplayName
	entity.Department = optional(row.Department)
	entity.Title = optional(row.Title)
	setMobile(&entity, row.FirstMobile())
	applyOfficeTag(&entity, row.Office, row.Title)

	return entity
}

// setMobile makes value the sole mobile contact point. An existing
// first mobile point is updated in place, extra mobile points are
// dropped, and an empty value removes the channel entirely. Points of
// other types are preserved.
func setMobile(entity *directory.ContactEntity, value string) {
	kept := entity.ContactPoints[:0]
	found := false
	for _, cp := range entity.ContactPoints {
		if cp.Type != directory.ContactPointMobile {
			kept = append(kept, cp)
			continue
		}
		if value != "" && !found {
			cp.Value = value
			kept = append(kept, cp)
			found = true
		}
	}
	entity.ContactPoints = kept

	if value != "" && !found {
		entity.ContactPoints = append(entity.ContactPoints, directory.ContactPoint{
			Type:   directory.ContactPointMobile,
			Value:  value,
			Source: directory.SourceMerged.String(),
		})
	}
}

// applyOfficeTag interprets the Office column. A full "brand:office"
// tag replaces the role matching that (brand, office) pair with a fresh
// priority-1 role carrying the row's title; roles for other pairs are
// untouched. A bare single token is ambiguous and preserves the
// existing role set, as does an empty column.
func applyOfficeTag(entity *directory.ContactEntity, tag, title string) {
	brand, office, ok := parseOfficeTag(tag)
	if !ok {
		return
	}

	role := directory.Role{
		Brand:    brand,
		Office:   office,
		Priority: 1,
		Title:    optional(title),
	}

	for i := range entity.Roles {
		if entity.Roles[i].Key() == role.Key() {
			entity.Roles[i] = role
			return
		}
	}
	entity.Roles = append(entity.Roles, role)
}

// parseOfficeTag splits a full "brand:office" tag, normalizing the
// brand to lower case and the office code to upper case. Bare tokens
// and malformed tags report ok false.
func parseOfficeTag(tag string) (brand, office string, ok bool) {
	tag = strings.TrimSpace(tag)
	parts := strings.SplitN(tag, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	brand = strings.ToLower(strings.TrimSpace(parts[0]))
	office = strings.ToUpper(strings.TrimSpace(parts[1]))
	if brand == "" || office == "" {
		return "", "", false
	}
	return brand, office, true
}

// optional maps an empty string to the absent pointer.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
