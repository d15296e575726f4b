package reconcile

import (
	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
)

// ChangeType classifies the outcome of applying one CSV row.
type ChangeType string

// String returns the string representation of a ChangeType.
func (t ChangeType) String() string {
	return string(t)
}

// Row outcomes.
const (
	ChangeUpdate   ChangeType = "update"    // Row changed at least one field
	ChangeNone     ChangeType = "no_change" // Row matched but changed nothing
	ChangeNotFound ChangeType = "not_found" // Row matched no live entity
)

// ChangeRecord describes what one CSV row did to the live collection.
// Before and After are populated for update records only.
type ChangeRecord struct {
	Key    string                   `json:"key"`              // Identity key the row carried
	Type   ChangeType               `json:"type"`             // Row outcome
	Before *directory.ContactEntity `json:"before,omitempty"` // Entity before the row applied
	After  *directory.ContactEntity `json:"after,omitempty"`  // Entity after the row applied
}

// Result is the outcome of merging one CSV batch into the live
// collection.
type Result struct {
	Updated []directory.ContactEntity `json:"updated"`           // Live collection with candidates applied
	Changes []ChangeRecord            `json:"changes"`           // One record per row carrying an identity key
	Skipped []*errors.RowError        `json:"skipped,omitempty"` // Rows excluded from Changes (no identity key)
}

// Counts tallies the change records by type.
func (r *Result) Counts() (updates, noChanges, notFound int) {
	for _, change := range r.Changes {
		switch change.Type {
		case ChangeUpdate:
			updates++
		case ChangeNone:
			noChanges++
		case ChangeNotFound:
			notFound++
		}
	}
	return updates, noChanges, notFound
}

// HasUpdates reports whether any row produced an update.
func (r *Result) HasUpdates() bool {
	for _, change := range r.Changes {
		if change.Type == ChangeUpdate {
			return true
		}
	}
	return false
}
