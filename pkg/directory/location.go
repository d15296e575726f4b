package directory

// LocationID identifies an office location.
type LocationID string

// String returns the string representation of a LocationID.
func (id LocationID) String() string {
	return string(id)
}

// Office locations.
const (
	LocationPLY LocationID = "PLY" // Plymouth
	LocationFTL LocationID = "FTL" // Fort Lauderdale
)

// Desk is a desk extension inside a room.
type Desk struct {
	Type  ContactPointType `json:"type" yaml:"type" validate:"required,eq=desk-extension"` // Always desk-extension
	Value string           `json:"value" yaml:"value" validate:"required"`                 // Extension number
}

// Room groups desks within a location.
type Room struct {
	ID    string `json:"id" yaml:"id" validate:"required"` // Room identifier
	Desks []Desk `json:"desks" yaml:"desks" validate:"dive"`
}

// Location is an office with optional room/desk modeling. Phase-1
// datasets carry locations without rooms.
type Location struct {
	ID    LocationID `json:"id" yaml:"id" validate:"required,oneof=PLY FTL"` // Office code
	Name  string     `json:"name" yaml:"name"`                               // Display name
	Rooms []Room     `json:"rooms,omitempty" yaml:"rooms,omitempty" validate:"dive"`
}
