package model

// Source identifies where a contact record came from. Provenance only;
// it never changes after the record is constructed.
type Source string

const (
	SourceApollo      Source = "apollo"
	SourceHunter      Source = "hunter"
	SourceApify       Source = "apify"
	SourceWebResearch Source = "web_research"
	SourceImport      Source = "import"
	SourceManual      Source = "manual"
)

// VerificationStatus is the provider's own claim about an email address.
type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "verified"
	VerificationUnverified VerificationStatus = "unverified"
)

// Seniority is the coarse tier derived from a free-text job title.
type Seniority string

const (
	SeniorityExecutive Seniority = "executive"
	SeniorityDirector  Seniority = "director"
	SeniorityManager   Seniority = "manager"
	SeniorityStaff     Seniority = "staff"
	SeniorityUnknown   Seniority = "unknown"
)

// Person is one discovered individual at a target company.
//
// ID is only unique within one provider's response batch; some providers
// regenerate it on every call. Identity across providers is decided by
// email or normalized name+company, never by ID.
type Person struct {
	ID                 string             `json:"id"`
	Company            string             `json:"company"`
	CompanyID          string             `json:"companyId"`
	Name               string             `json:"name"`
	Title              string             `json:"title"`
	Email              string             `json:"email,omitempty"`
	LinkedIn           string             `json:"linkedin,omitempty"`
	Source             Source             `json:"source"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	EmailCertainty     int                `json:"emailCertainty"`
	EmailVerified      bool               `json:"emailVerified"`
	Seniority          Seniority          `json:"seniority,omitempty"`
}

// Certainty returns the deliverability confidence to use in comparisons.
// A certainty figure without an email address is meaningless and counts as 0.
func (p Person) Certainty() int {
	if p.Email == "" {
		return 0
	}
	return p.EmailCertainty
}
