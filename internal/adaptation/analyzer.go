package adaptation

import (
	"github.com/kalambet/accord/internal/culture"
)

// Marker statements shared between the analyzer and the engine. The engine
// decides which rewrite rules to apply by checking for the presence of
// these exact strings in the adaptation lists.
const (
	adjFormalTone     = "Use formal address and professional vocabulary"
	adjPlainLanguage  = "Use plain, conversational language"
	adjDiplomaticTone = "Soften direct statements to preserve harmony"

	modConsultationTime   = "Allow time for consultation with family or community before decisions"
	modFlexibleScheduling = "Frame deadlines with scheduling flexibility where the law allows"
)

// Canned communication-adjustment blocks, one per communication style.
// Entry order within a block is part of the analyzer's contract.
var communicationAdjustments = map[culture.CommunicationStyle][]string{
	culture.CommunicationDirect: {
		"Present options and obligations plainly",
		"Avoid hedging language that obscures the recommended action",
	},
	culture.CommunicationIndirect: {
		adjDiplomaticTone,
		"Frame obligations as suggestions where the law allows",
		"Avoid blunt refusals or demands",
	},
	culture.CommunicationFormal: {
		adjFormalTone,
		"Maintain respectful distance in tone",
		"Refer to courts and agencies by their full names",
	},
	culture.CommunicationCasual: {
		adjPlainLanguage,
		"Explain legal terms in everyday words",
	},
}

// Extra adjustments when the requester's language is not English.
var languageAccommodations = []string{
	"Offer professional translation of key legal documents",
	"Provide plain-language explanations alongside legal terminology",
	"Note where this legal system differs from the requester's country of origin",
}

var processModifications = map[culture.DecisionMaking][]string{
	culture.DecisionCollective: {
		modConsultationTime,
		"Provide written summaries that can be shared with trusted advisers",
	},
	culture.DecisionHierarchical: {
		"Acknowledge family or community elders in the process",
		"Route key communications through recognized decision makers",
	},
	culture.DecisionIndividual: {
		"Emphasize the requester's personal authority over decisions",
		"Keep decision points self-contained",
	},
}

var relationshipTimeModifications = []string{
	modFlexibleScheduling,
	"Prioritize relationship repair over procedural speed",
}

var familyInvolvementModifications = []string{
	"Include family members in consultations where the requester wishes",
	"Prepare guidance in a form suitable for family discussion",
}

var avoidanceWarnings = []string{
	"Direct confrontation may cause loss of face; prefer mediated settlement",
	"Frame disputes as problems to solve together rather than contests",
}

var authorityWarnings = []string{
	"Requester may defer to officials without questioning; encourage informed questions",
	"Explain that challenging a legal decision is a normal part of the process",
}

// Analyzer turns an adaptation context into a CulturalAdaptation. It is
// stateless; the zero value is usable.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze resolves the cultural profile (falling back to the default for
// unknown backgrounds — this never errors) and builds the adjustment lists.
// Output is a pure function of the context: entry order follows the
// attribute-check order below.
func (a *Analyzer) Analyze(ctx Context) CulturalAdaptation {
	profile := culture.Lookup(ctx.UserBackground)

	var out CulturalAdaptation
	out.CommunicationAdjustments = append(out.CommunicationAdjustments, communicationAdjustments[profile.Communication]...)
	if ctx.Language != "" && ctx.Language != "en" {
		out.CommunicationAdjustments = append(out.CommunicationAdjustments, languageAccommodations...)
	}

	out.ProcessModifications = append(out.ProcessModifications, processModifications[profile.DecisionMaking]...)
	if profile.TimeOrientation == culture.TimeRelationshipBased {
		out.ProcessModifications = append(out.ProcessModifications, relationshipTimeModifications...)
	}
	if profile.FamilyInvolvement == culture.LevelHigh {
		out.ProcessModifications = append(out.ProcessModifications, familyInvolvementModifications...)
	}

	out.SensitivityWarnings = append(out.SensitivityWarnings, sensitivityWarnings(profile, ctx.LegalCategory)...)
	out.RecommendedApproach = recommendedApproach(profile, ctx.Urgency)
	out.CulturalConsiderations = culturalConsiderations(profile, ctx.Language)
	return out
}

// sensitivityWarnings collects profile-driven warnings plus category-specific
// blocks that only fire under matching profile attributes.
func sensitivityWarnings(p culture.Profile, legalCategory string) []string {
	var out []string
	if p.ConflictResolution == culture.ConflictAvoidance {
		out = append(out, avoidanceWarnings...)
	}
	if p.AuthorityRespect == culture.LevelHigh {
		out = append(out, authorityWarnings...)
	}
	switch legalCategory {
	case "family_law":
		if p.FamilyInvolvement == culture.LevelHigh {
			out = append(out, "Family law matters may involve extended family expectations beyond the immediate parties")
		}
	case "immigration_law":
		if p.AuthorityRespect == culture.LevelHigh {
			out = append(out, "Immigration proceedings may carry heightened fear of authorities; reassure the requester about their rights")
		}
	case "criminal_law":
		if p.ConflictResolution == culture.ConflictAvoidance {
			out = append(out, "Criminal matters cannot be resolved through avoidance; explain mandatory participation carefully")
		}
	}
	return out
}

// recommendedApproach picks a single prose sentence from a three-way switch
// over communication style, decision making, and authority respect, with a
// generic fallback. Critical urgency against a relationship-based time
// orientation appends a qualifying clause.
func recommendedApproach(p culture.Profile, urgency string) string {
	var approach string
	switch {
	case p.Communication == culture.CommunicationIndirect && p.DecisionMaking == culture.DecisionCollective:
		approach = "Use a gentle, consultative approach that gives the requester room to involve family and community in each decision."
	case p.Communication == culture.CommunicationFormal && p.AuthorityRespect == culture.LevelHigh:
		approach = "Maintain formal, respectful communication and position guidance as information for the requester's consideration rather than instruction."
	case p.Communication == culture.CommunicationDirect && p.DecisionMaking == culture.DecisionIndividual:
		approach = "Give clear, actionable recommendations and let the requester set the pace."
	default:
		approach = "Balance clarity with cultural sensitivity, adjusting formality to the requester's cues."
	}
	if urgency == UrgencyCritical && p.TimeOrientation == culture.TimeRelationshipBased {
		approach += " Time pressure is severe; explain why immediate action is needed despite the preference for relationship-paced decisions."
	}
	return approach
}

func culturalConsiderations(p culture.Profile, language string) []string {
	var out []string
	if p.DecisionMaking == culture.DecisionCollective {
		out = append(out, "Decisions may require family or community consensus")
	}
	if p.DecisionMaking == culture.DecisionHierarchical {
		out = append(out, "Senior family or community members may expect to be consulted first")
	}
	if p.AuthorityRespect == culture.LevelHigh {
		out = append(out, "Authority figures carry significant weight for this requester")
	}
	if p.FamilyInvolvement == culture.LevelHigh {
		out = append(out, "Family involvement is expected throughout the process")
	}
	if p.TimeOrientation == culture.TimeRelationshipBased {
		out = append(out, "Trust-building may matter more to the requester than procedural speed")
	}
	if language != "" && language != "en" {
		out = append(out, "Language support may be needed for legal terminology")
	}
	return out
}
