package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/salesforce"
)

var testPersons = []model.Person{
	{
		Name: "Jane Doe", Title: "VP Sales", Company: "Acme", CompanyID: "acme",
		Email: "jane@acme.com", EmailVerified: true, EmailCertainty: 95,
		LinkedIn: "https://linkedin.com/in/janedoe",
		Source:   model.SourceApollo, Seniority: model.SeniorityExecutive,
	},
	{
		Name: "John Roe", Company: "Acme", CompanyID: "acme",
		Source: model.SourceWebResearch, Seniority: model.SeniorityUnknown,
	},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testPersons))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, contactHeader, records[0])
	assert.Equal(t, "Jane Doe", records[1][0])
	assert.Equal(t, "true", records[1][5])
	assert.Equal(t, "95", records[1][6])
	assert.Equal(t, "web_research", records[2][8])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, WriteXLSX(path, testPersons))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Jane Doe", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "apollo", sheet.Rows[1].Cells[8].String())
}

// rejectingSFClient fails every odd record.
type rejectingSFClient struct{}

func (rejectingSFClient) Query(context.Context, string, any) error { return nil }

func (rejectingSFClient) InsertCollection(_ context.Context, _ string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	results := make([]salesforce.CollectionResult, len(records))
	for i := range records {
		results[i] = salesforce.CollectionResult{Success: i%2 == 0}
		if i%2 != 0 {
			results[i].Errors = []string{"REQUIRED_FIELD_MISSING"}
		}
	}
	return results, nil
}

func TestPushLeads_CountsAccepted(t *testing.T) {
	accepted, err := PushLeads(context.Background(), rejectingSFClient{}, testPersons)
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)
}
