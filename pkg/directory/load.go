package directory

import (
	"encoding/json"
	"os"

	"github.com/plyworks/rolodex/pkg/errors"
)

// Load reads a canonical export from a JSON file. Missing files and
// malformed JSON are batch-fatal; the caller decides whether to
// validate the loaded data.
func Load(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if exp.ContactEntities == nil {
		exp.ContactEntities = []ContactEntity{}
	}
	if exp.Locations == nil {
		exp.Locations = []Location{}
	}

	// Hand-curated internal entities may omit their objectId in the
	// file; it is derived deterministically from the display name.
	for i := range exp.ContactEntities {
		entity := &exp.ContactEntities[i]
		if entity.Kind == KindInternal && entity.ObjectID == "" {
			entity.ObjectID = ManualObjectID(entity.DisplayName)
		}
	}

	return &exp, nil
}
