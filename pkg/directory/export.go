package directory

import (
	"github.com/agentstation/utc"
)

// ExportVersion is the only supported canonical export version.
const ExportVersion = 1

// Meta describes how and when an export was generated.
type Meta struct {
	GeneratedFrom []string `json:"generatedFrom"`           // Source labels (CSV file names)
	GeneratedAt   utc.Time `json:"generatedAt"`             // Generation timestamp
	Version       int      `json:"version" validate:"eq=1"` // Schema version, literal 1
	Hash          string   `json:"hash,omitempty"`          // Content digest of entities + locations
}

// Export is the single persisted artifact: the whole collection is
// loaded, mutated in memory, and rewritten wholesale per run.
type Export struct {
	ContactEntities []ContactEntity `json:"ContactEntities" validate:"dive"`
	Locations       []Location      `json:"Locations" validate:"dive"`
	Meta            Meta            `json:"_meta"`
}

// NewExport builds an export over the given collections with fresh
// metadata. The content hash is left for the caller to compute.
func NewExport(entities []ContactEntity, locations []Location, sourceLabel string) *Export {
	if entities == nil {
		entities = []ContactEntity{}
	}
	if locations == nil {
		locations = []Location{}
	}
	return &Export{
		ContactEntities: entities,
		Locations:       locations,
		Meta: Meta{
			GeneratedFrom: []string{sourceLabel},
			GeneratedAt:   utc.Now(),
			Version:       ExportVersion,
		},
	}
}

// Entity returns the entity with the given internal id, or nil.
func (e *Export) Entity(id string) *ContactEntity {
	for i := range e.ContactEntities {
		if e.ContactEntities[i].ID == id {
			return &e.ContactEntities[i]
		}
	}
	return nil
}
