package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Companies")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "companies.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadCompaniesCSV(t *testing.T) {
	csvData := `Company Name,Domain,Industry,City
Acme Corp,acme.com,Manufacturing,Chicago
Globex,globex.io,Software,Austin
`
	companies, err := ReadCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "acme.com", companies[0].ID)
	assert.Equal(t, "Acme Corp", companies[0].Name)
	assert.Equal(t, "Manufacturing", companies[0].Industry)
	assert.Equal(t, "Chicago", companies[0].Location)
	assert.Equal(t, "globex.io", companies[1].Domain)
}

func TestReadCompaniesCSV_ExplicitID(t *testing.T) {
	csvData := `id,name
c-42,Initech
`
	companies, err := ReadCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "c-42", companies[0].ID)
}

func TestReadCompaniesCSV_DomainFromWebsite(t *testing.T) {
	csvData := `name,website
Hooli,https://www.hooli.com/about
`
	companies, err := ReadCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "hooli.com", companies[0].Domain)
	assert.Equal(t, "hooli.com", companies[0].ID)
}

func TestReadCompaniesCSV_SlugID(t *testing.T) {
	csvData := `name
"Pied Piper, Inc."
`
	companies, err := ReadCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "pied-piper-inc", companies[0].ID)
}

func TestReadCompaniesCSV_SkipsBlankNames(t *testing.T) {
	csvData := `name,domain
Acme,acme.com
,orphan.com
Globex,globex.io
`
	companies, err := ReadCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 2)
}

func TestReadCompaniesCSV_NoNameColumn(t *testing.T) {
	csvData := `domain,industry
acme.com,Manufacturing
`
	_, err := ReadCompaniesCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no company name column")
}

func TestReadCompaniesCSV_Empty(t *testing.T) {
	_, err := ReadCompaniesCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadCompaniesXLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Account Name", "Domain", "Sector"},
		{"Acme Corp", "acme.com", "Manufacturing"},
		{"Globex", "globex.io", "Software"},
	})

	companies, err := ReadCompaniesXLSX(path)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme Corp", companies[0].Name)
	assert.Equal(t, "Software", companies[1].Industry)
}

func TestReadCompanies_Dispatch(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Name"},
		{"Acme"},
	})

	companies, err := ReadCompanies(path)
	require.NoError(t, err)
	require.Len(t, companies, 1)

	_, err = ReadCompanies("companies.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
