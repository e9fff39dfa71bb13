package contacts

import (
	"regexp"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

var nonAlpha = regexp.MustCompile(`[^a-z]`)

// normalizeName lowercases a name and strips every character outside a-z.
// Lossy on purpose: "O'Brien, Jane" and "jane obrien" both become
// "janeobrien", so the same person reported with different punctuation
// collapses. Two genuinely different people whose names only differ in
// stripped characters will also collapse; that approximation is accepted.
func normalizeName(name string) string {
	return nonAlpha.ReplaceAllString(strings.ToLower(name), "")
}

// nameKey is the dedup key for contacts without an email address.
func nameKey(p model.Person) string {
	return normalizeName(p.Name) + "|" + p.CompanyID
}

// completeness scores how much usable data a contact carries. Email counts
// double since it is the one field outreach cannot do without.
func completeness(p model.Person) int {
	score := 0
	if p.Email != "" {
		score += 2
	}
	if p.LinkedIn != "" {
		score++
	}
	if p.Title != "" {
		score++
	}
	return score
}

// replaces decides whether candidate wins over existing on a key collision.
// Strict priority: a verified email beats an unverified one, then higher
// email certainty, then higher completeness. Ties keep the earlier record.
func replaces(candidate, existing model.Person) bool {
	if candidate.EmailVerified != existing.EmailVerified {
		return candidate.EmailVerified
	}
	if candidate.Certainty() != existing.Certainty() {
		return candidate.Certainty() > existing.Certainty()
	}
	return completeness(candidate) > completeness(existing)
}

// Dedupe collapses contacts that represent the same real person, keeping the
// most trustworthy version of each.
//
// Contacts partition into two keyspaces: emailed contacts keyed on the
// lowercased address, email-less contacts keyed on normalized name +
// company. Collisions within a keyspace are resolved by replaces. A winning
// candidate overwrites the loser in place, so the merged list keeps
// first-seen insertion order in both keyspaces, with all emailed contacts
// first. An email-less contact is dropped entirely when an emailed contact
// for the same normalized name + company survived.
func Dedupe(persons []model.Person) []model.Person {
	var (
		withEmail []model.Person
		emailIdx  = make(map[string]int)
		noEmail   []model.Person
		nameIdx   = make(map[string]int)
	)

	for _, p := range persons {
		if p.Email != "" {
			key := strings.ToLower(p.Email)
			if i, ok := emailIdx[key]; ok {
				if replaces(p, withEmail[i]) {
					withEmail[i] = p
				}
				continue
			}
			emailIdx[key] = len(withEmail)
			withEmail = append(withEmail, p)
			continue
		}

		key := nameKey(p)
		if i, ok := nameIdx[key]; ok {
			if replaces(p, noEmail[i]) {
				noEmail[i] = p
			}
			continue
		}
		nameIdx[key] = len(noEmail)
		noEmail = append(noEmail, p)
	}

	emailedNames := make(map[string]struct{}, len(withEmail))
	for _, p := range withEmail {
		emailedNames[nameKey(p)] = struct{}{}
	}

	merged := make([]model.Person, 0, len(withEmail)+len(noEmail))
	merged = append(merged, withEmail...)
	for _, p := range noEmail {
		if _, ok := emailedNames[nameKey(p)]; ok {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
