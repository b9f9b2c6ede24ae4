package model

// maxTestedServices caps how many services a single scan probes.
const maxTestedServices = 3

// BusinessProfile describes the business under test. It is read-only
// input to the scan pipeline, typically sourced from an upstream site
// analysis step.
type BusinessProfile struct {
	Name       string   `json:"name"`
	Domain     string   `json:"domain"`
	Type       string   `json:"type,omitempty"`
	Location   string   `json:"location,omitempty"`
	Services   []string `json:"services,omitempty"`
	Competitor string   `json:"competitor,omitempty"`
	KeyPhrases []string `json:"key_phrases,omitempty"`
}

// TestedServices returns the services a scan will probe, capped at
// three. Empty entries are dropped.
func (p BusinessProfile) TestedServices() []string {
	var out []string
	for _, s := range p.Services {
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxTestedServices {
			break
		}
	}
	return out
}
