package contacts

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

// seniorityTiers is a first-match cascade over the lowercased job title.
// Tier order matters: "Senior Director of Sales" must classify as director,
// not manager, so higher tiers are checked first and there is no fallthrough.
var seniorityTiers = []struct {
	tier model.Seniority
	re   *regexp.Regexp
}{
	{model.SeniorityExecutive, regexp.MustCompile(`\b(ceo|cfo|coo|cmo|cto|cio|chief|president|founder|owner|partner|principal)\b`)},
	{model.SeniorityDirector, regexp.MustCompile(`\b(director|vp|vice president|svp|evp|general manager|gm|head of)\b`)},
	{model.SeniorityManager, regexp.MustCompile(`\b(manager|lead|supervisor|team lead|senior|sr)\b`)},
	{model.SeniorityStaff, regexp.MustCompile(`\b(associate|assistant|coordinator|specialist|analyst|executive|officer|representative|intern|junior|jr)\b`)},
}

// ClassifySeniority derives a seniority tier from a free-text job title.
func ClassifySeniority(title string) model.Seniority {
	lower := strings.ToLower(title)
	for _, st := range seniorityTiers {
		if st.re.MatchString(lower) {
			return st.tier
		}
	}
	return model.SeniorityUnknown
}

var seniorityRank = map[model.Seniority]int{
	model.SeniorityExecutive: 4,
	model.SeniorityDirector:  3,
	model.SeniorityManager:   2,
	model.SeniorityStaff:     1,
	model.SeniorityUnknown:   0,
}

// Rank returns the numeric rank for a seniority tier (unknown = 0).
func Rank(s model.Seniority) int {
	return seniorityRank[s]
}

// MinRankFor maps a caller's seniority preference to a minimum numeric rank.
// The threshold is advisory: it is reported in the response summary so the
// caller can filter, but the aggregator never drops contacts below it.
func MinRankFor(target string) int {
	switch target {
	case "c-suite":
		return 4
	case "director":
		return 3
	case "senior", "mid-senior":
		return 2
	default: // any, mid, junior, or unset
		return 0
	}
}

// seniorityBreakdown counts persons per tier.
func seniorityBreakdown(persons []model.Person) map[model.Seniority]int {
	breakdown := make(map[model.Seniority]int)
	for _, p := range persons {
		breakdown[p.Seniority]++
	}
	return breakdown
}

// sortPersons orders the final list: company first so one company's contacts
// stay adjacent, then most senior first within a company. The sort is stable
// so equal entries keep their merge order.
func sortPersons(persons []model.Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		if persons[i].CompanyID != persons[j].CompanyID {
			return persons[i].CompanyID < persons[j].CompanyID
		}
		return Rank(persons[i].Seniority) > Rank(persons[j].Seniority)
	})
}
