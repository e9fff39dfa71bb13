package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// LeadRecord maps a discovered person onto the Lead SObject fields.
// The last whitespace-separated token of the name becomes LastName; Salesforce
// rejects Leads without one, so single-token names land there whole.
func LeadRecord(p model.Person) map[string]any {
	first, last := splitName(p.Name)

	record := map[string]any{
		"LastName":   last,
		"Company":    p.Company,
		"LeadSource": string(p.Source),
	}
	if first != "" {
		record["FirstName"] = first
	}
	if p.Title != "" {
		record["Title"] = p.Title
	}
	if p.Email != "" {
		record["Email"] = p.Email
	}
	return record
}

func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

// leadEmail is the projection used when loading existing Lead addresses.
type leadEmail struct {
	Email string `json:"Email"`
}

// existingLeadEmails returns the lowercased addresses of Leads already in
// the org.
func existingLeadEmails(ctx context.Context, c Client) (map[string]bool, error) {
	var rows []leadEmail
	if err := c.Query(ctx, "SELECT Email FROM Lead WHERE Email != null", &rows); err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(rows))
	for _, r := range rows {
		existing[strings.ToLower(r.Email)] = true
	}
	return existing, nil
}

// BulkInsertLeads inserts one Lead per person, split into batches of 200
// (SF Collections API limit). Persons without a name, or whose email already
// belongs to a Lead in the org, are skipped. Returns the per-record results
// in input order.
func BulkInsertLeads(ctx context.Context, c Client, persons []model.Person) ([]CollectionResult, error) {
	if len(persons) == 0 {
		return nil, nil
	}

	existing, err := existingLeadEmails(ctx, c)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(persons))
	for _, p := range persons {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if p.Email != "" && existing[strings.ToLower(p.Email)] {
			continue
		}
		records = append(records, LeadRecord(p))
	}
	if len(records) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult
	for start := 0; start < len(records); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		results, err := c.InsertCollection(ctx, "Lead", records[start:end])
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: bulk insert leads batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}
