package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError("live.json", []string{"ContactEntities.0.id - required"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "live.json")
	assert.Contains(t, err.Error(), "1 issue(s)")
}

func TestIOErrorWrapping(t *testing.T) {
	underlying := errors.New("permission denied")
	err := WrapIO("write", "/tmp/canonical.json", underlying)
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Operation)
	assert.Equal(t, underlying, errors.Unwrap(err))
}

func TestIOErrorNotFound(t *testing.T) {
	missing := WrapIO("read", "/tmp/absent.json", fs.ErrNotExist)
	assert.True(t, errors.Is(missing, ErrNotFound))
	assert.True(t, IsNotFound(missing))

	denied := WrapIO("read", "/tmp/locked.json", errors.New("permission denied"))
	assert.False(t, errors.Is(denied, ErrNotFound))
}

func TestWrapIONil(t *testing.T) {
	assert.NoError(t, WrapIO("read", "x", nil))
	assert.NoError(t, WrapParse("csv", "x", nil))
}

func TestParseError(t *testing.T) {
	err := NewParseError("json", "live.json", "unexpected end of input", nil)
	assert.Contains(t, err.Error(), "json file live.json")
}

func TestRowError(t *testing.T) {
	withKey := &RowError{Row: 3, Key: "obj-123", Message: "duplicate object id"}
	assert.Equal(t, "row 3 (obj-123): duplicate object id", withKey.Error())

	noKey := &RowError{Row: 7, Message: "missing object id"}
	assert.Equal(t, "row 7: missing object id", noKey.Error())
}
