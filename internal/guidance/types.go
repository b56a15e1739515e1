// Package guidance defines the legal-guidance document model shared by the
// adaptation pipeline. Values arrive fully formed from the upstream
// generator; this package does not validate their provenance.
package guidance

import "time"

// Resource points the requester at an external service or organization.
type Resource struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Step is a single recommended action within a guidance document.
type Step struct {
	Order                int        `json:"order"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Timeframe            string     `json:"timeframe,omitempty"`
	Resources            []Resource `json:"resources,omitempty"`
	JurisdictionSpecific bool       `json:"jurisdiction_specific"`
}

// LegalGuidance is a draft guidance document produced by the upstream
// generator, before cultural adaptation.
type LegalGuidance struct {
	QueryID                string    `json:"query_id"`
	Steps                  []Step    `json:"steps"`
	ApplicableLaws         []string  `json:"applicable_laws,omitempty"`
	CulturalConsiderations []string  `json:"cultural_considerations,omitempty"`
	NextActions            []string  `json:"next_actions,omitempty"`
	Confidence             float64   `json:"confidence"`
	CreatedAt              time.Time `json:"created_at"`
}

// Clone returns a deep copy. The adaptation engine keeps an untouched copy
// of the original document for audit, so shared slices must not alias.
func (g LegalGuidance) Clone() LegalGuidance {
	out := g
	if g.Steps != nil {
		out.Steps = make([]Step, len(g.Steps))
		copy(out.Steps, g.Steps)
		for i, st := range g.Steps {
			if st.Resources != nil {
				out.Steps[i].Resources = make([]Resource, len(st.Resources))
				copy(out.Steps[i].Resources, st.Resources)
			}
		}
	}
	out.ApplicableLaws = cloneStrings(g.ApplicableLaws)
	out.CulturalConsiderations = cloneStrings(g.CulturalConsiderations)
	out.NextActions = cloneStrings(g.NextActions)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
