package model

// Company is a target company whose contacts we want to discover.
// Providers require at least a name plus a domain or website.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Website  string `json:"website,omitempty"`
	Industry string `json:"industry,omitempty"`
	Location string `json:"location,omitempty"`
}

// SearchContext carries the targeting preferences for a discovery request.
// It is passed to every provider verbatim.
type SearchContext struct {
	TargetRoles     []string `json:"targetRoles,omitempty"`
	TargetSeniority string   `json:"targetSeniority,omitempty"` // any|c-suite|director|senior|mid-senior|mid|junior
	Market          string   `json:"market,omitempty"`
	Segment         string   `json:"segment,omitempty"`
	ProductContext  string   `json:"productContext,omitempty"`
}
