// Package errors provides custom error types for the rolodex system.
// The types separate fatal batch/file failures from recoverable
// row-level issues, enabling programmatic error checking throughout
// the reconciliation engine.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the rolodex system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrChangesDetected indicates a merge produced changes while the
	// caller requested failure on any diff
	ErrChangesDetected = errors.New("changes detected")

	// ErrHashMismatch indicates the stored digest does not match the
	// recomputed digest of the canonical dataset
	ErrHashMismatch = errors.New("hash mismatch")
)

// ValidationError represents a schema or invariant validation failure.
// Issues holds one "<dot.path> - <message>" string per violated
// constraint, in deterministic reporting order.
type ValidationError struct {
	Subject string
	Issues  []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("validation failed for %s: %d issue(s)", e.Subject, len(e.Issues))
	}
	return fmt.Sprintf("validation failed: %d issue(s)", len(e.Issues))
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(subject string, issues []string) *ValidationError {
	return &ValidationError{Subject: subject, Issues: issues}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support: an operation on a path that does
// not exist matches ErrNotFound, so callers can distinguish a missing
// dataset from other I/O failures without inspecting os error types.
func (e *IOError) Is(target error) bool {
	return target == ErrNotFound && errors.Is(e.Err, fs.ErrNotExist)
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// MergeError represents an error during a canonical merge operation
type MergeError struct {
	Source  string
	Keys    []string
	Message string
	Err     error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("merge error from %s for keys %v: %s", e.Source, e.Keys, e.Message)
	}
	return fmt.Sprintf("merge error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error {
	return e.Err
}

// RowError represents a recoverable failure of a single CSV row.
// Row errors are reported and skipped; they never abort a batch.
type RowError struct {
	Row     int    // 1-indexed data row number
	Key     string // identity key of the row, when known
	Message string
}

// Error implements the error interface
func (e *RowError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("row %d (%s): %s", e.Row, e.Key, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
