package differ

import (
	"github.com/plyworks/rolodex/pkg/directory"
)

// FieldChange represents a change to a single field.
type FieldChange struct {
	Before any `json:"before"` // Previous value (decoded JSON form)
	After  any `json:"after"`  // New value (decoded JSON form)
}

// EntityChange pairs the two generations of a changed entity.
type EntityChange struct {
	Before directory.ContactEntity `json:"before"`
	After  directory.ContactEntity `json:"after"`
}

// Changeset represents all changes between two canonical generations.
// Added and Removed preserve the array order of their source
// generation; Changed is keyed by stable internal id.
type Changeset struct {
	Added        []directory.ContactEntity `json:"added"`
	Removed      []directory.ContactEntity `json:"removed"`
	Changed      map[string]EntityChange   `json:"changed"`
	ChangedCount int                       `json:"changedCount"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || c.ChangedCount > 0
}
