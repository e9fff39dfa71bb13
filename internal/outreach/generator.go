// Package outreach drafts personalized first-touch emails for discovered contacts.
package outreach

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/anthropic"
)

const systemPrompt = `You are a B2B sales development representative writing a short,
personalized first-touch email. Write in a direct, respectful tone. No buzzwords,
no false familiarity, no exclamation marks. Keep the body under 120 words.

Respond with exactly this format:
Subject: <subject line>

<email body>`

// Draft is one generated outreach email.
type Draft struct {
	PersonID string `json:"personId"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// Generator drafts outreach emails via the Anthropic API.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator creates a Generator using the given model.
func NewGenerator(client anthropic.Client, model string, maxTokens int64) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{client: client, model: model, maxTokens: maxTokens}
}

// Draft generates one email for a contact.
func (g *Generator) Draft(ctx context.Context, p model.Person, sc model.SearchContext) (*Draft, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: contactPrompt(p, sc)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: draft for %s", p.Name)
	}
	resp.Usage.LogCost(g.model, "outreach")

	subject, body, err := parseDraft(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: parse draft for %s", p.Name)
	}

	return &Draft{PersonID: p.ID, Subject: subject, Body: body}, nil
}

// DraftAll generates one email per contact, sequentially. Individual failures
// are logged and skipped; the error is non-nil only if every draft failed.
func (g *Generator) DraftAll(ctx context.Context, persons []model.Person, sc model.SearchContext) ([]Draft, error) {
	var drafts []Draft
	var lastErr error

	for _, p := range persons {
		if ctx.Err() != nil {
			return drafts, eris.Wrap(ctx.Err(), "outreach: cancelled")
		}

		d, err := g.Draft(ctx, p, sc)
		if err != nil {
			lastErr = err
			zap.L().Warn("outreach draft failed",
				zap.String("person", p.Name),
				zap.Error(err))
			continue
		}
		drafts = append(drafts, *d)
	}

	if len(drafts) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return drafts, nil
}

func contactPrompt(p model.Person, sc model.SearchContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Contact: %s", p.Name)
	if p.Title != "" {
		fmt.Fprintf(&b, ", %s", p.Title)
	}
	if p.Company != "" {
		fmt.Fprintf(&b, " at %s", p.Company)
	}
	b.WriteString("\n")

	if sc.ProductContext != "" {
		fmt.Fprintf(&b, "What we sell: %s\n", sc.ProductContext)
	}
	if sc.Market != "" {
		fmt.Fprintf(&b, "Market: %s\n", sc.Market)
	}
	if sc.Segment != "" {
		fmt.Fprintf(&b, "Segment: %s\n", sc.Segment)
	}

	b.WriteString("Write the outreach email.")
	return b.String()
}

// parseDraft splits a "Subject: ...\n\n<body>" response.
func parseDraft(text string) (subject, body string, err error) {
	text = strings.TrimSpace(text)

	line, rest, found := strings.Cut(text, "\n")
	if !found {
		return "", "", eris.New("outreach: response has no body")
	}

	const prefix = "Subject:"
	if !strings.HasPrefix(line, prefix) {
		return "", "", eris.Errorf("outreach: response missing subject line: %q", line)
	}
	subject = strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if subject == "" {
		return "", "", eris.New("outreach: empty subject")
	}

	body = strings.TrimSpace(rest)
	if body == "" {
		return "", "", eris.New("outreach: empty body")
	}
	return subject, body, nil
}
