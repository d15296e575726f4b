// Package transform converts raw CSV rows into a fresh canonical
// export, assigning stable internal ids via slugified display names
// with a content-derived fallback when slugs collide.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/internal/slug"
	"github.com/plyworks/rolodex/pkg/csvio"
	"github.com/plyworks/rolodex/pkg/directory"
)

// Phase-1 defaults: every imported role is pinned to the primary brand
// and office until the merge path refines it from the Office column.
const (
	DefaultBrand  = "tsa"
	DefaultOffice = "PLY"
)

// fallbackIDLength is the prefix length of the sha256(objectId) hex
// digest used when slugs collide.
const fallbackIDLength = 16

// Option configures a Transformer.
type Option func(*Transformer)

// WithReporter sets the diagnostics sink for row-level warnings.
func WithReporter(r diag.Reporter) Option {
	return func(t *Transformer) {
		t.reporter = r
	}
}

// Transformer builds canonical exports from CSV batches.
type Transformer struct {
	reporter diag.Reporter
}

// New creates a Transformer.
func New(opts ...Option) *Transformer {
	t := &Transformer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ToCanonical converts rows into a canonical export. Rows without an
// object id and duplicate object ids within the batch are skipped with
// a warning; entities failing schema validation are dropped likewise.
// Locations are left empty and the content hash is left for the caller
// to compute.
func (t *Transformer) ToCanonical(rows []csvio.RawRow, sourceLabel string) *directory.Export {
	// Pass 1: validate rows and prepare entities without ids.
	entities := make([]directory.ContactEntity, 0, len(rows))
	seenObjectIDs := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.ObjectID == "" {
			diag.Warnf(t.reporter, "skipping row without object id", "row", row.Line)
			continue
		}
		if seenObjectIDs[row.ObjectID] {
			diag.Warnf(t.reporter, "skipping duplicate object id; first occurrence wins",
				"row", row.Line, "objectId", row.ObjectID)
			continue
		}
		seenObjectIDs[row.ObjectID] = true

		entities = append(entities, t.entity(row))
	}

	// Pass 2: assign stable ids, then validate finished entities.
	assignIDs(entities)

	kept := make([]directory.ContactEntity, 0, len(entities))
	for i := range entities {
		if result := directory.ValidateEntity(&entities[i]); !result.Success {
			diag.Warnf(t.reporter, "dropping entity failing schema validation",
				"objectId", entities[i].ObjectID, "errors", strings.Join(result.Errors, "; "))
			continue
		}
		kept = append(kept, entities[i])
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].DisplayName < kept[j].DisplayName
	})

	return directory.NewExport(kept, nil, sourceLabel)
}

// entity builds an external entity from one row, id unassigned.
func (t *Transformer) entity(row csvio.RawRow) directory.ContactEntity {
	entity := directory.ContactEntity{
		Kind:          directory.KindExternal,
		DisplayName:   row.DisplayName,
		ContactPoints: []directory.ContactPoint{},
		Roles:         []directory.Role{},
		Source:        directory.SourceOffice365,
		ObjectID:      row.ObjectID,
	}

	if mobile := row.FirstMobile(); mobile != "" {
		entity.ContactPoints = append(entity.ContactPoints, directory.ContactPoint{
			Type:   directory.ContactPointMobile,
			Value:  mobile,
			Source: directory.SourceOffice365.String(),
		})
	}
	if row.UPN != "" {
		upn := row.UPN
		entity.UPN = &upn
	}
	if row.Department != "" {
		department := row.Department
		entity.Department = &department
	}
	if row.Title != "" {
		title := row.Title
		entity.Title = &title
		entity.Roles = append(entity.Roles, directory.Role{
			Brand:    DefaultBrand,
			Office:   DefaultOffice,
			Priority: 1,
			Title:    &title,
		})
	}

	return entity
}

// assignIDs gives every entity a stable id: the slugified display name
// when that slug is unique within the batch, otherwise the
// sha256(objectId) prefix. A residual collision on the fallback id is
// resolved by appending -2, -3, ... until unique.
func assignIDs(entities []directory.ContactEntity) {
	slugCounts := make(map[string]int, len(entities))
	for i := range entities {
		slugCounts[slug.Make(entities[i].DisplayName)]++
	}

	taken := make(map[string]bool, len(entities))
	for i := range entities {
		candidate := slug.Make(entities[i].DisplayName)
		if candidate == "" || slugCounts[candidate] > 1 {
			candidate = fallbackID(entities[i].ObjectID)
		}
		for n := 2; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", fallbackID(entities[i].ObjectID), n)
		}
		taken[candidate] = true
		entities[i].ID = candidate
	}
}

// fallbackID derives a content-based id from the object id.
func fallbackID(objectID string) string {
	sum := sha256.Sum256([]byte(objectID))
	return hex.EncodeToString(sum[:])[:fallbackIDLength]
}
