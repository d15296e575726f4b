// Package differ detects changes between generations of the canonical
// contact collection. It offers a collection-level diff keyed by stable
// internal id and a generic field-level diff with set-semantics for the
// roles collection.
package differ

import (
	"encoding/json"
	"reflect"

	"github.com/plyworks/rolodex/pkg/directory"
)

// Differ handles change detection between canonical generations.
type Differ interface {
	// Canonical compares two generations of the export. A nil prev
	// means everything in next is added.
	Canonical(prev, next *directory.Export) *Changeset

	// Fields computes a field-level diff between two entities over the
	// union of their serialized fields.
	Fields(before, after directory.ContactEntity) map[string]FieldChange
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Canonical compares two generations of the export.
func (d *differ) Canonical(prev, next *directory.Export) *Changeset {
	changeset := &Changeset{
		Added:   []directory.ContactEntity{},
		Removed: []directory.ContactEntity{},
		Changed: map[string]EntityChange{},
	}

	if prev == nil {
		changeset.Added = append(changeset.Added, next.ContactEntities...)
		return changeset
	}

	prevByID := make(map[string]directory.ContactEntity, len(prev.ContactEntities))
	for _, entity := range prev.ContactEntities {
		prevByID[entity.ID] = entity
	}
	nextByID := make(map[string]directory.ContactEntity, len(next.ContactEntities))
	for _, entity := range next.ContactEntities {
		nextByID[entity.ID] = entity
	}

	// Added and changed follow next's array order.
	for _, entity := range next.ContactEntities {
		existing, ok := prevByID[entity.ID]
		if !ok {
			changeset.Added = append(changeset.Added, entity)
			continue
		}
		if !serializedEqual(existing, entity) {
			changeset.Changed[entity.ID] = EntityChange{Before: existing, After: entity}
		}
	}

	// Removed follows prev's array order.
	for _, entity := range prev.ContactEntities {
		if _, ok := nextByID[entity.ID]; !ok {
			changeset.Removed = append(changeset.Removed, entity)
		}
	}

	changeset.ChangedCount = len(changeset.Changed)
	return changeset
}

// Fields computes a field-level diff over the union of keys of the two
// serialized entities. The roles field is compared as a set keyed by
// (brand, office); every other field uses deep equality of the decoded
// JSON values (order-sensitive for arrays, order-insensitive for
// object key sets).
func (d *differ) Fields(before, after directory.ContactEntity) map[string]FieldChange {
	beforeFields := toFields(before)
	afterFields := toFields(after)

	keys := make(map[string]bool, len(beforeFields)+len(afterFields))
	for key := range beforeFields {
		keys[key] = true
	}
	for key := range afterFields {
		keys[key] = true
	}

	changes := make(map[string]FieldChange)
	for key := range keys {
		if d.ignoreFields[key] {
			continue
		}
		oldValue, newValue := beforeFields[key], afterFields[key]

		if key == "roles" {
			if !roleSetsEqual(before.Roles, after.Roles) {
				changes[key] = FieldChange{Before: oldValue, After: newValue}
			}
			continue
		}

		if !reflect.DeepEqual(oldValue, newValue) {
			changes[key] = FieldChange{Before: oldValue, After: newValue}
		}
	}

	return changes
}

// serializedEqual reports structural equality via canonical JSON bytes.
func serializedEqual(a, b directory.ContactEntity) bool {
	aData, aErr := json.Marshal(a)
	bData, bErr := json.Marshal(b)
	if aErr != nil || bErr != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(aData) == string(bData)
}

// toFields projects an entity onto a generic field map.
func toFields(entity directory.ContactEntity) map[string]any {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields
}

// roleSetsEqual treats roles as a set keyed by (brand, office) rather
// than by array position.
func roleSetsEqual(before, after []directory.Role) bool {
	if len(before) != len(after) {
		return false
	}
	byKey := make(map[string]directory.Role, len(before))
	for _, role := range before {
		byKey[role.Key()] = role
	}
	for _, role := range after {
		existing, ok := byKey[role.Key()]
		if !ok || !reflect.DeepEqual(normalizeRole(existing), normalizeRole(role)) {
			return false
		}
	}
	return true
}

// normalizeRole maps a nil title to the empty string so that absent and
// empty titles compare equal.
func normalizeRole(role directory.Role) directory.Role {
	if role.Title == nil {
		empty := ""
		role.Title = &empty
	}
	return role
}
