// Package csvio reads the HR/identity-system CSV export into RawRow
// records and projects canonical entities back out to the fixed
// six-column CSV contract. Parsing is deliberately forgiving: ragged
// rows are padded or truncated with a warning, unknown columns are
// ignored, and only a missing header row is fatal.
package csvio

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/plyworks/rolodex/internal/diag"
	rerrors "github.com/plyworks/rolodex/pkg/errors"
)

// RawRow is one data row of the source CSV, reduced to the columns the
// engine consumes. Line is the 1-indexed data row number for
// diagnostics.
type RawRow struct {
	Line        int
	ObjectID    string
	DisplayName string
	MobilePhone string
	UPN         string
	Title       string
	Department  string
	Office      string
}

// FirstMobile returns the first mobile-phone token: the raw column
// split on ',', '/' and ';', first token trimmed.
func (r RawRow) FirstMobile() string {
	value := r.MobilePhone
	if idx := strings.IndexAny(value, ",/;"); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

// Canonical column names after header normalization. Aliases map the
// two accepted spellings of the identity column.
const (
	colObjectID    = "object id"
	colDisplayName = "display name"
	colMobilePhone = "mobile phone"
	colUPN         = "user principal name"
	colTitle       = "title"
	colDepartment  = "department"
	colOffice      = "office"
)

// Read parses CSV data into RawRows. Ragged rows are repaired with a
// warning through the reporter; a missing or empty header row is
// fatal.
func Read(r io.Reader, reporter diag.Reporter) ([]RawRow, error) {
	reader := csv.NewReader(r)
	// Ragged rows are repaired below rather than rejected.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, rerrors.NewParseError("csv", "", "empty file: no header row found", nil)
		}
		return nil, rerrors.WrapParse("csv", "", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}
	if alias, ok := columns["objectid"]; ok {
		if _, exists := columns[colObjectID]; !exists {
			columns[colObjectID] = alias
		}
	}

	var rows []RawRow
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			diag.Warnf(reporter, "skipping unparseable CSV row", "row", line, "error", err.Error())
			continue
		}

		if len(record) != len(header) {
			if len(record) < len(header) {
				diag.Warnf(reporter, "padding short CSV row", "row", line,
					"columns", len(record), "expected", len(header))
				padded := make([]string, len(header))
				copy(padded, record)
				record = padded
			} else {
				diag.Warnf(reporter, "truncating long CSV row", "row", line,
					"columns", len(record), "expected", len(header))
				record = record[:len(header)]
			}
		}

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		rows = append(rows, RawRow{
			Line:        line,
			ObjectID:    cell(colObjectID),
			DisplayName: cell(colDisplayName),
			MobilePhone: cell(colMobilePhone),
			UPN:         cell(colUPN),
			Title:       cell(colTitle),
			Department:  cell(colDepartment),
			Office:      cell(colOffice),
		})
	}

	return rows, nil
}

// ReadFile parses the CSV file at path. A missing file is batch-fatal.
func ReadFile(path string, reporter diag.Reporter) ([]RawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, rerrors.WrapIO("read", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only descriptor

	rows, err := Read(file, reporter)
	if err != nil {
		if parseErr, ok := err.(*rerrors.ParseError); ok {
			parseErr.File = path
		}
		return nil, err
	}
	return rows, nil
}

// normalizeHeader lowercases, trims, and strips a UTF-8 BOM.
func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}
