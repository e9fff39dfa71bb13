// Package importer loads target company lists from CSV and XLSX files.
package importer

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
)

// ReadCompanies loads a company list from path, dispatching on file extension.
// Supported formats: .csv, .xlsx.
func ReadCompanies(path string) ([]model.Company, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "importer: open csv")
		}
		defer f.Close()
		return ReadCompaniesCSV(f)
	case ".xlsx":
		return ReadCompaniesXLSX(path)
	default:
		return nil, eris.Errorf("importer: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCompaniesCSV parses a company list from CSV. The first row must be a
// header; column names are matched case-insensitively against known synonyms.
func ReadCompaniesCSV(r io.Reader) ([]model.Company, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("importer: empty csv")
	}
	if err != nil {
		return nil, eris.Wrap(err, "importer: read header")
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var companies []model.Company
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "importer: read row")
		}

		c, ok := cols.company(record)
		if !ok {
			continue
		}
		companies = append(companies, c)
	}

	return companies, nil
}

// ReadCompaniesXLSX parses a company list from the first sheet of an XLSX
// file. The first row must be a header.
func ReadCompaniesXLSX(path string) ([]model.Company, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("importer: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("importer: empty sheet")
	}

	cols, err := mapColumns(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var companies []model.Company
	for _, row := range sheet.Rows[1:] {
		c, ok := cols.company(rowToStrings(row))
		if !ok {
			continue
		}
		companies = append(companies, c)
	}

	return companies, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// columnMap holds the resolved index of each recognized column, -1 if absent.
type columnMap struct {
	id       int
	name     int
	domain   int
	website  int
	industry int
	location int
}

var columnSynonyms = map[string][]string{
	"id":       {"id", "companyid"},
	"name":     {"name", "company", "companyname", "account", "accountname"},
	"domain":   {"domain", "companydomain"},
	"website":  {"website", "url", "site"},
	"industry": {"industry", "vertical", "sector"},
	"location": {"location", "city", "hq", "headquarters"},
}

func mapColumns(header []string) (*columnMap, error) {
	index := map[string]int{}
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	find := func(field string) int {
		for _, syn := range columnSynonyms[field] {
			if i, ok := index[syn]; ok {
				return i
			}
		}
		return -1
	}

	cols := &columnMap{
		id:       find("id"),
		name:     find("name"),
		domain:   find("domain"),
		website:  find("website"),
		industry: find("industry"),
		location: find("location"),
	}
	if cols.name < 0 {
		return nil, eris.Errorf("importer: no company name column in header %v", header)
	}
	return cols, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeHeader(h string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(h), "")
}

// company builds a Company from one record. Rows without a name are skipped.
// Missing IDs are derived from the domain, falling back to a slug of the name.
func (m *columnMap) company(record []string) (model.Company, bool) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := get(m.name)
	if name == "" {
		return model.Company{}, false
	}

	c := model.Company{
		ID:       get(m.id),
		Name:     name,
		Domain:   get(m.domain),
		Website:  get(m.website),
		Industry: get(m.industry),
		Location: get(m.location),
	}
	if c.Domain == "" && c.Website != "" {
		c.Domain = domainFromURL(c.Website)
	}
	if c.ID == "" {
		if c.Domain != "" {
			c.ID = c.Domain
		} else {
			c.ID = strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(name), "-"), "-")
		}
	}
	return c, true
}

func domainFromURL(u string) string {
	s := strings.TrimSpace(u)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}
