// Package directory defines the canonical contact directory data model:
// contact entities, roles, contact points, locations, and the top-level
// export artifact, together with schema and invariant validation and
// JSON persistence.
package directory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/plyworks/rolodex/internal/slug"
)

// Kind discriminates the two entity variants.
type Kind string

// String returns the string representation of a Kind.
func (k Kind) String() string {
	return string(k)
}

// Entity kinds.
const (
	KindExternal Kind = "external" // Synced from the HR/identity CSV; requires an object id
	KindInternal Kind = "internal" // Manually curated resource (room, shared line)
)

// SourceType records which process owns an entity or contact point.
type SourceType string

// String returns the string representation of a SourceType.
func (s SourceType) String() string {
	return string(s)
}

// Entity sources.
const (
	SourceOffice365 SourceType = "Office365" // Created by the first CSV import
	SourceMerged    SourceType = "Merged"    // CSV-synced entity updated by the merge engine
	SourceManual    SourceType = "Manual"    // Hand-curated, never exported to CSV
)

// ContactPointType enumerates reachability channels.
type ContactPointType string

// String returns the string representation of a ContactPointType.
func (t ContactPointType) String() string {
	return string(t)
}

// Contact point types.
const (
	ContactPointMobile        ContactPointType = "mobile"         // CSV-owned
	ContactPointOffice        ContactPointType = "office"         //
	ContactPointEmail         ContactPointType = "email"          //
	ContactPointLinkedIn      ContactPointType = "linkedin"       //
	ContactPointDeskExtension ContactPointType = "desk-extension" // Manually curated
)

// ContactPoint represents one reachability channel. No uniqueness
// constraint across the array; merge logic treats Type as the
// effective key when replacing CSV-sourced points.
type ContactPoint struct {
	Type   ContactPointType `json:"type" validate:"required,oneof=mobile office email linkedin desk-extension"` // Channel type
	Value  string           `json:"value" validate:"required"`                                                  // Channel value (number, address, URL)
	Source string           `json:"source,omitempty"`                                                           // Process that last wrote it
}

// Role represents one (brand, office) assignment with an optional job
// title and an ordering priority used for primary-role selection.
type Role struct {
	Brand    string  `json:"brand" validate:"required"`          // Brand code (e.g. "tsa")
	Office   string  `json:"office" validate:"required"`         // Office code (e.g. "PLY")
	Priority int     `json:"priority" validate:"required,min=1"` // 1 is primary
	Title    *string `json:"title,omitempty"`                    // Job title, when known
}

// Key returns the (brand, office) identity of the role, the unit the
// merge engine and role-set comparison operate on.
func (r Role) Key() string {
	return strings.ToLower(r.Brand) + "/" + strings.ToLower(r.Office)
}

// ContactEntity is one record of the canonical directory. The Kind
// field discriminates CSV-synced staff from manually curated resources.
type ContactEntity struct {
	Kind          Kind           `json:"kind" validate:"required,oneof=external internal"` // Entity variant
	ID            string         `json:"id" validate:"required"`                           // Stable internal identifier (slug or hash fallback)
	DisplayName   string         `json:"displayName,omitempty"`                            // Human-readable name
	Title         *string        `json:"title,omitempty"`                                  // Job title (nullable)
	ContactPoints []ContactPoint `json:"contactPoints" validate:"dive"`                    // Reachability channels (logically unordered)
	Roles         []Role         `json:"roles" validate:"dive"`                            // Brand/office assignments (logically unordered)
	Source        SourceType     `json:"source" validate:"required"`                       // Owning process
	Department    *string        `json:"department,omitempty"`                             // Department (nullable)
	UPN           *string        `json:"upn,omitempty"`                                    // User principal name (fallback identity key)
	ObjectID      string         `json:"objectId,omitempty"`                               // HR-system identity key; required for both kinds
}

// ContactPointValue returns the value of the first contact point of the
// given type, or the empty string.
func (e *ContactEntity) ContactPointValue(t ContactPointType) string {
	for _, cp := range e.ContactPoints {
		if cp.Type == t {
			return cp.Value
		}
	}
	return ""
}

// PrimaryRole returns the role with the lowest priority number
// (priority 1 is primary), or nil when the entity holds no roles.
// Earlier array position wins ties.
func (e *ContactEntity) PrimaryRole() *Role {
	var primary *Role
	for i := range e.Roles {
		if primary == nil || e.Roles[i].Priority < primary.Priority {
			primary = &e.Roles[i]
		}
	}
	return primary
}

// Clone returns a deep copy of the entity. The merge engine mutates
// candidate copies, never live records.
func (e *ContactEntity) Clone() ContactEntity {
	clone := *e
	clone.Title = clonePtr(e.Title)
	clone.Department = clonePtr(e.Department)
	clone.UPN = clonePtr(e.UPN)
	if e.ContactPoints != nil {
		clone.ContactPoints = make([]ContactPoint, len(e.ContactPoints))
		copy(clone.ContactPoints, e.ContactPoints)
	}
	if e.Roles != nil {
		clone.Roles = make([]Role, len(e.Roles))
		for i, role := range e.Roles {
			role.Title = clonePtr(role.Title)
			clone.Roles[i] = role
		}
	}
	return clone
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ManualObjectID derives the deterministic object id for an internal
// entity lacking one: manual-<slug>-<hash8>.
func ManualObjectID(displayName string) string {
	sum := sha256.Sum256([]byte(displayName))
	return fmt.Sprintf("manual-%s-%s", slug.Make(displayName), hex.EncodeToString(sum[:])[:8])
}
