package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

// mockClient implements Client with canned query pages and recorded creates.
type mockClient struct {
	queryPages []*notionapi.DatabaseQueryResponse
	queryCalls int
	queryErr   error
	created    []*notionapi.PageCreateRequest
	createErr  error
}

func (m *mockClient) QueryDatabase(_ context.Context, _ string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if m.queryCalls >= len(m.queryPages) {
		return &notionapi.DatabaseQueryResponse{}, nil
	}
	resp := m.queryPages[m.queryCalls]
	m.queryCalls++
	return resp, nil
}

func (m *mockClient) CreatePage(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, req)
	return &notionapi.Page{}, nil
}

func pageWithEmail(email string) notionapi.Page {
	return notionapi.Page{
		Properties: notionapi.Properties{
			"Email": &notionapi.EmailProperty{Type: notionapi.PropertyTypeEmail, Email: email},
		},
	}
}

func TestQueryAll_Pagination(t *testing.T) {
	mock := &mockClient{
		queryPages: []*notionapi.DatabaseQueryResponse{
			{Results: []notionapi.Page{pageWithEmail("a@x.com")}, HasMore: true, NextCursor: "c1"},
			{Results: []notionapi.Page{pageWithEmail("b@x.com")}},
		},
	}

	pages, err := QueryAll(context.Background(), mock, "db", nil)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, 2, mock.queryCalls)
}

func TestExportContacts_SkipsExistingEmails(t *testing.T) {
	mock := &mockClient{
		queryPages: []*notionapi.DatabaseQueryResponse{
			{Results: []notionapi.Page{pageWithEmail("Jane@Acme.com")}},
		},
	}

	persons := []model.Person{
		{Name: "Jane Doe", Email: "jane@acme.com"},
		{Name: "John Roe", Email: "john@acme.com"},
	}

	created, err := ExportContacts(context.Background(), mock, "db", persons)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, mock.created, 1)

	title := mock.created[0].Properties["Name"].(notionapi.TitleProperty)
	assert.Equal(t, "John Roe", title.Title[0].Text.Content)
}

func TestExportContacts_DedupesWithinBatch(t *testing.T) {
	mock := &mockClient{}

	persons := []model.Person{
		{Name: "Jane Doe", Email: "jane@acme.com"},
		{Name: "Jane D", Email: "JANE@ACME.COM"},
	}

	created, err := ExportContacts(context.Background(), mock, "db", persons)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestExportContacts_NoEmailAlwaysExported(t *testing.T) {
	mock := &mockClient{}

	persons := []model.Person{
		{Name: "Jane Doe"},
		{Name: "John Roe"},
	}

	created, err := ExportContacts(context.Background(), mock, "db", persons)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestExportContacts_CreateError(t *testing.T) {
	mock := &mockClient{createErr: eris.New("boom")}

	_, err := ExportContacts(context.Background(), mock, "db", []model.Person{{Name: "Jane"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create contact page")
}

func TestContactProperties(t *testing.T) {
	p := model.Person{
		Name:          "Jane Doe",
		Company:       "Acme",
		Title:         "VP Sales",
		Email:         "jane@acme.com",
		LinkedIn:      "https://linkedin.com/in/janedoe",
		Source:        model.SourceApollo,
		Seniority:     model.SeniorityExecutive,
		EmailVerified: true,
	}

	props := contactProperties(p)

	email := props["Email"].(notionapi.EmailProperty)
	assert.Equal(t, "jane@acme.com", email.Email)

	verified := props["Verified"].(notionapi.CheckboxProperty)
	assert.True(t, verified.Checkbox)

	source := props["Source"].(notionapi.SelectProperty)
	assert.Equal(t, "apollo", source.Select.Name)

	linkedin := props["LinkedIn"].(notionapi.URLProperty)
	assert.Equal(t, "https://linkedin.com/in/janedoe", linkedin.URL)
}

func TestContactProperties_OmitsEmptyFields(t *testing.T) {
	props := contactProperties(model.Person{Name: "Jane Doe"})

	assert.Contains(t, props, "Name")
	assert.Contains(t, props, "Verified")
	assert.NotContains(t, props, "Email")
	assert.NotContains(t, props, "Title")
	assert.NotContains(t, props, "LinkedIn")
	assert.NotContains(t, props, "Source")
}
