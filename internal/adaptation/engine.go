package adaptation

import (
	"math"
	"slices"
	"strings"

	"github.com/kalambet/accord/internal/culture"
	"github.com/kalambet/accord/internal/guidance"
)

const (
	consultationSuffix = " You may wish to discuss this step with family or trusted advisers before proceeding."
	flexibleTimeframe  = " (timing can be adjusted to your circumstances)"
	consultationAction = "Schedule a consultation time that allows family or community input"
	interpretAction    = "Arrange professional interpretation for upcoming appointments"

	warningPrefix = "Cultural sensitivity: "
)

var interpretationResource = guidance.Resource{
	Type:        "service",
	Title:       "Professional interpretation services",
	Description: "Court-qualified interpreters for hearings, mediation sessions, and document review",
}

var culturalLegalAidResource = guidance.Resource{
	Type:        "organization",
	Title:       "Cultural legal aid organizations",
	Description: "Community legal services familiar with the requester's cultural background",
}

// Engine applies a CulturalAdaptation to a guidance document. It re-derives
// the adaptation from the context via the analyzer, so identical
// (context, guidance) pairs always yield identical output.
type Engine struct {
	analyzer *Analyzer
}

// NewEngine creates an Engine backed by the given analyzer.
func NewEngine(analyzer *Analyzer) *Engine {
	if analyzer == nil {
		analyzer = NewAnalyzer()
	}
	return &Engine{analyzer: analyzer}
}

// Adapt rewrites the document's steps, timeframes, resources, cultural
// considerations, and next actions according to the requester's context.
// No input shape is rejected: absent or empty fields degrade to empty
// outputs, and the original document is retained unmodified for audit.
func (e *Engine) Adapt(doc guidance.LegalGuidance, ctx Context) AdaptedGuidance {
	ca := e.analyzer.Analyze(ctx)
	profile := culture.Lookup(ctx.UserBackground)

	formal := slices.Contains(ca.CommunicationAdjustments, adjFormalTone)
	plain := slices.Contains(ca.CommunicationAdjustments, adjPlainLanguage)
	diplomatic := slices.Contains(ca.CommunicationAdjustments, adjDiplomaticTone)
	consult := slices.Contains(ca.ProcessModifications, modConsultationTime)
	flexible := slices.Contains(ca.ProcessModifications, modFlexibleScheduling)
	interpret := mentionsAny(ca.CommunicationAdjustments, "translation", "interpretation")

	adapted := doc.Clone()

	for i := range adapted.Steps {
		step := &adapted.Steps[i]
		step.Description = rewriteDescription(step.Description, formal, plain, diplomatic, consult, flexible)
		step.Timeframe = rewriteTimeframe(step.Timeframe, formal, plain, flexible)
		if interpret {
			step.Resources = append(step.Resources, interpretationResource)
		}
		if len(ca.CulturalConsiderations) > 0 {
			step.Resources = append(step.Resources, culturalLegalAidResource)
		}
	}

	adapted.CulturalConsiderations = mergeConsiderations(doc.CulturalConsiderations, ca)
	adapted.NextActions = rewriteNextActions(doc.NextActions, profile, consult, interpret)

	return AdaptedGuidance{
		LegalGuidance:      adapted,
		CulturalAdaptation: ca,
		OriginalGuidance:   doc.Clone(),
		Metadata: Metadata{
			AdaptationsApplied:   adaptationsApplied(ca),
			CulturalProfile:      culture.Normalize(ctx.UserBackground),
			AdaptationConfidence: confidence(ctx.UserBackground, ca),
		},
	}
}

// rewriteDescription applies the rewrite stages in their fixed order:
// formalization, diplomatic softening, consultation suffix, flexible
// scheduling. The order is a contract — softening must see the formalized
// text, and the time substitution runs last.
func rewriteDescription(text string, formal, plain, diplomatic, consult, flexible bool) string {
	if text == "" {
		return text
	}
	if formal {
		text = applyRules(text, formalRules)
	}
	if plain {
		text = applyRules(text, accessibleRules)
	}
	if diplomatic {
		text = applyRules(text, diplomaticRules)
	}
	if consult {
		text += consultationSuffix
	}
	if flexible {
		text = applyRules(text, flexibleTimeRules)
	}
	return text
}

func rewriteTimeframe(text string, formal, plain, flexible bool) string {
	if text == "" {
		return text
	}
	if formal {
		text = applyRules(text, formalRules)
	}
	if plain {
		text = applyRules(text, accessibleRules)
	}
	if flexible {
		text += flexibleTimeframe
	}
	return text
}

// mergeConsiderations combines the document's own considerations with the
// analyzer's list and its warnings (prefixed), deduplicated preserving
// first occurrence.
func mergeConsiderations(original []string, ca CulturalAdaptation) []string {
	merged := make([]string, 0, len(original)+len(ca.CulturalConsiderations)+len(ca.SensitivityWarnings))
	merged = append(merged, original...)
	merged = append(merged, ca.CulturalConsiderations...)
	for _, w := range ca.SensitivityWarnings {
		merged = append(merged, warningPrefix+w)
	}
	return dedupe(merged)
}

func rewriteNextActions(actions []string, profile culture.Profile, consult, interpret bool) []string {
	out := make([]string, 0, len(actions)+2)
	for _, action := range actions {
		a := action
		if profile.DecisionMaking == culture.DecisionCollective && mentionsAny([]string{a}, "decide", "choose") {
			a += " (after consulting with family or community, as appropriate)"
		}
		if profile.DecisionMaking == culture.DecisionHierarchical {
			a = applyRules(a, hierarchyRules)
		}
		out = append(out, a)
	}
	if consult {
		out = append(out, consultationAction)
	}
	if interpret {
		out = append(out, interpretAction)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// adaptationsApplied is populated by presence checks on the adaptation
// lists, not by counting entries.
func adaptationsApplied(ca CulturalAdaptation) []string {
	var applied []string
	if len(ca.CommunicationAdjustments) > 0 {
		applied = append(applied, "communication_adjustments")
	}
	if len(ca.ProcessModifications) > 0 {
		applied = append(applied, "process_modifications")
	}
	if len(ca.SensitivityWarnings) > 0 {
		applied = append(applied, "sensitivity_warnings")
	}
	if len(ca.CulturalConsiderations) > 0 {
		applied = append(applied, "cultural_considerations")
	}
	return applied
}

// confidence starts at 0.5, adds 0.3 for a known background, and up to 0.2
// scaled at 0.02 per applied adaptation item, clamped to [0,1].
func confidence(background string, ca CulturalAdaptation) float64 {
	score := 0.5
	if culture.Known(background) {
		score += 0.3
	}
	items := len(ca.CommunicationAdjustments) + len(ca.ProcessModifications) + len(ca.CulturalConsiderations)
	score += math.Min(0.2, 0.02*float64(items))
	return math.Max(0, math.Min(1, score))
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func mentionsAny(list []string, terms ...string) bool {
	for _, s := range list {
		lower := strings.ToLower(s)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
