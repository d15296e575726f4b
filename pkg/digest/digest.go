// Package digest computes a stable SHA-256 content hash over the
// canonical contact collection. The digest is invariant under array
// reordering and property insertion order, but sensitive to any value
// change in the hashed fields, so equal digests across runs mean "no
// real change".
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/pkg/directory"
)

// objectIDSentinel sorts entities lacking an objectId after all
// printable ids, so the hash never fails on partial data.
const objectIDSentinel = "￿"

// Option configures hashing.
type Option func(*hasher)

// WithReporter sets the diagnostics sink for per-item failures.
func WithReporter(r diag.Reporter) Option {
	return func(h *hasher) {
		h.reporter = r
	}
}

type hasher struct {
	reporter diag.Reporter
}

// contactProjection is the pruned, fixed-field-order view of an entity
// that participates in the digest. Struct field order fixes the key
// order of the serialized form, making the bytes canonical.
type contactProjection struct {
	Kind          directory.Kind           `json:"kind"`
	ID            string                   `json:"id"`
	DisplayName   string                   `json:"displayName"`
	ObjectID      string                   `json:"objectId"`
	UPN           *string                  `json:"upn"`
	Department    *string                  `json:"department"`
	Source        directory.SourceType     `json:"source"`
	ContactPoints []directory.ContactPoint `json:"contactPoints"`
	Roles         []directory.Role         `json:"roles"`
}

// Compute returns the lowercase hex SHA-256 digest of the canonical
// projection of contacts and locations. A single item that cannot be
// serialized is reported and skipped rather than failing the run.
func Compute(contacts []directory.ContactEntity, locations []directory.Location, opts ...Option) string {
	h := &hasher{}
	for _, opt := range opts {
		opt(h)
	}

	sortedContacts := make([]directory.ContactEntity, len(contacts))
	copy(sortedContacts, contacts)
	sort.SliceStable(sortedContacts, func(i, j int) bool {
		a, b := sortKey(&sortedContacts[i]), sortKey(&sortedContacts[j])
		if a != b {
			return a < b
		}
		return sortedContacts[i].ID < sortedContacts[j].ID
	})

	sortedLocations := make([]directory.Location, 0, len(locations))
	for _, loc := range locations {
		if loc.ID == "" {
			continue // unidentifiable locations never participate
		}
		sortedLocations = append(sortedLocations, loc)
	}
	sort.SliceStable(sortedLocations, func(i, j int) bool {
		return sortedLocations[i].ID < sortedLocations[j].ID
	})

	sum := sha256.New()
	for i := range sortedContacts {
		data, err := json.Marshal(project(&sortedContacts[i]))
		if err != nil {
			diag.Errorf(h.reporter, "cannot serialize contact for hashing; skipping",
				"id", sortedContacts[i].ID, "error", err.Error())
			continue
		}
		sum.Write(data)
		sum.Write([]byte{'\n'})
	}
	for i := range sortedLocations {
		data, err := json.Marshal(sortedLocations[i])
		if err != nil {
			diag.Errorf(h.reporter, "cannot serialize location for hashing; skipping",
				"id", sortedLocations[i].ID.String(), "error", err.Error())
			continue
		}
		sum.Write(data)
		sum.Write([]byte{'\n'})
	}

	return hex.EncodeToString(sum.Sum(nil))
}

// sortKey orders entities by objectId, demoting missing ids to the
// sentinel.
func sortKey(e *directory.ContactEntity) string {
	if e.ObjectID == "" {
		return objectIDSentinel
	}
	return e.ObjectID
}

// project builds the pruned projection with canonically sorted arrays.
func project(e *directory.ContactEntity) contactProjection {
	points := make([]directory.ContactPoint, len(e.ContactPoints))
	copy(points, e.ContactPoints)
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Type != points[j].Type {
			return points[i].Type < points[j].Type
		}
		return points[i].Value < points[j].Value
	})

	roles := make([]directory.Role, len(e.Roles))
	copy(roles, e.Roles)
	// Legacy sort key: (office, title, priority). Brand is deliberately
	// not part of the key; see DESIGN.md before changing this.
	sort.SliceStable(roles, func(i, j int) bool {
		if c := strings.Compare(roles[i].Office, roles[j].Office); c != 0 {
			return c < 0
		}
		if c := strings.Compare(titleOrEmpty(roles[i].Title), titleOrEmpty(roles[j].Title)); c != 0 {
			return c < 0
		}
		return roles[i].Priority < roles[j].Priority
	})

	return contactProjection{
		Kind:          e.Kind,
		ID:            e.ID,
		DisplayName:   e.DisplayName,
		ObjectID:      e.ObjectID,
		UPN:           e.UPN,
		Department:    e.Department,
		Source:        e.Source,
		ContactPoints: points,
		Roles:         roles,
	}
}

func titleOrEmpty(title *string) string {
	if title == nil {
		return ""
	}
	return *title
}
