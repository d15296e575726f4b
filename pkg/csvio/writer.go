package csvio

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/plyworks/rolodex/pkg/directory"
	"github.com/plyworks/rolodex/pkg/errors"
)

// ExportHeader is the fixed six-column contract of the outbound CSV.
// Column order and names are consumed verbatim downstream.
var ExportHeader = []string{
	"Display Name",
	"Mobile Phone",
	"Object ID",
	"User Principal Name",
	"Title",
	"Department",
}

// Write projects canonical entities to the flat CSV shape. Only
// CSV-synced entities (source Office365 or Merged) are exported;
// manually curated resources never flow back to the HR-facing format.
func Write(w io.Writer, entities []directory.ContactEntity) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportHeader); err != nil {
		return errors.WrapIO("write", "csv header", err)
	}

	for i := range entities {
		entity := &entities[i]
		if entity.Source != directory.SourceOffice365 && entity.Source != directory.SourceMerged {
			continue
		}
		if err := writer.Write(record(entity)); err != nil {
			return errors.WrapIO("write", "csv row "+entity.ID, err)
		}
	}

	writer.Flush()
	return errors.WrapIO("write", "csv", writer.Error())
}

// WriteFile writes the CSV export to the given path.
func WriteFile(path string, entities []directory.ContactEntity) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	if err := Write(file, entities); err != nil {
		_ = file.Close()
		return err
	}
	return errors.WrapIO("close", path, file.Close())
}

// record builds one six-column row for an entity.
func record(entity *directory.ContactEntity) []string {
	title := ""
	if role := entity.PrimaryRole(); role != nil && role.Title != nil {
		title = *role.Title
	}

	upn := ""
	if entity.UPN != nil {
		upn = *entity.UPN
	}
	department := ""
	if entity.Department != nil {
		department = *entity.Department
	}

	return []string{
		entity.DisplayName,
		entity.ContactPointValue(directory.ContactPointMobile),
		entity.ObjectID,
		upn,
		title,
		department,
	}
}
