package directory

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/plyworks/rolodex/pkg/errors"
)

// LoadLocationsYAML reads curated Location records from a YAML seed
// file. Offices and their rooms/desks are hand-maintained; the seed is
// consumed by the first-import path, while the canonical dataset
// itself stays JSON.
func LoadLocationsYAML(path string) ([]Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var locations []Location
	if err := yaml.Unmarshal(data, &locations); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	return locations, nil
}
