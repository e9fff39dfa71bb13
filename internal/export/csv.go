// Package export writes discovered contacts to CSV, XLSX, Notion, and Salesforce.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
)

var contactHeader = []string{
	"name", "title", "company", "company_id", "email", "email_verified",
	"email_certainty", "linkedin", "source", "seniority",
}

func contactRow(p model.Person) []string {
	return []string{
		p.Name,
		p.Title,
		p.Company,
		p.CompanyID,
		p.Email,
		strconv.FormatBool(p.EmailVerified),
		strconv.Itoa(p.EmailCertainty),
		p.LinkedIn,
		string(p.Source),
		string(p.Seniority),
	}
}

// WriteCSV writes persons as CSV with a header row.
func WriteCSV(w io.Writer, persons []model.Person) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(contactHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, p := range persons {
		if err := writer.Write(contactRow(p)); err != nil {
			return eris.Wrapf(err, "export: write csv row for %s", p.Name)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// WriteXLSX writes persons to a single-sheet XLSX file at path.
func WriteXLSX(path string, persons []model.Person) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Contacts")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range contactHeader {
		header.AddCell().SetString(h)
	}
	for _, p := range persons {
		row := sheet.AddRow()
		for _, v := range contactRow(p) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save xlsx %s", path)
	}
	return nil
}
