// Package adaptation implements the cultural sensitivity analyzer and the
// guidance adaptation engine: deterministic, side-effect-free rewriting of a
// draft legal guidance document according to the requester's cultural
// context. Both components are total over their input domain — no input
// shape is rejected and nothing here ever returns an error.
package adaptation

import (
	"github.com/kalambet/accord/internal/guidance"
)

// Urgency levels accepted in a Context.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Context carries the request-time parameters driving rule selection.
type Context struct {
	UserBackground string   `json:"user_background"`
	LegalCategory  string   `json:"legal_category"`
	Jurisdiction   []string `json:"jurisdiction,omitempty"`
	Language       string   `json:"language"`
	Urgency        string   `json:"urgency"`
}

// CulturalAdaptation is the analyzer's output: the adjustment lists the
// engine applies to a guidance document. Derived on demand, never persisted.
type CulturalAdaptation struct {
	CommunicationAdjustments []string `json:"communication_adjustments"`
	ProcessModifications     []string `json:"process_modifications"`
	SensitivityWarnings      []string `json:"sensitivity_warnings"`
	RecommendedApproach      string   `json:"recommended_approach"`
	CulturalConsiderations   []string `json:"cultural_considerations"`
}

// Metadata records what the engine did and how well-supported it was.
type Metadata struct {
	AdaptationsApplied   []string `json:"adaptations_applied"`
	CulturalProfile      string   `json:"cultural_profile"`
	AdaptationConfidence float64  `json:"adaptation_confidence"`
}

// AdaptedGuidance is the engine's output: the rewritten document plus the
// adaptation that produced it and an untouched copy of the original for
// audit. OriginalGuidance is never mutated after construction.
type AdaptedGuidance struct {
	guidance.LegalGuidance
	CulturalAdaptation CulturalAdaptation     `json:"cultural_adaptation"`
	OriginalGuidance   guidance.LegalGuidance `json:"original_guidance"`
	Metadata           Metadata               `json:"adaptation_metadata"`
}
