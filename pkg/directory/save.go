package directory

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/plyworks/rolodex/pkg/errors"
)

// File and directory permissions for written artifacts.
const (
	filePermissions = 0o644
	dirPermissions  = 0o755
)

// Save writes the export to the given path wholesale, creating parent
// directories as needed. The temp-file-then-rename dance keeps a
// half-written file from replacing a valid one.
func (e *Export) Save(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", path, err)
	}

	return nil
}
