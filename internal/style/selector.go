package style

import (
	"github.com/kalambet/accord/internal/culture"
)

// Base style keys.
const (
	keyFormalRespectful     = "formal_respectful"
	keyDiplomaticIndirect   = "diplomatic_indirect"
	keyDirectPractical      = "direct_practical"
	keyAccessibleSupportive = "accessible_supportive"
	keyCulturallySensitive  = "culturally_sensitive"
)

// backgroundStyles maps a normalized background to its base style key.
// Unknown backgrounds fall back to accessible_supportive.
var backgroundStyles = map[string]string{
	"western":          keyDirectPractical,
	"eastern_european": keyDirectPractical,
	"asian":            keyDiplomaticIndirect,
	"middle_eastern":   keyFormalRespectful,
	"south_asian":      keyFormalRespectful,
	"hispanic":         keyCulturallySensitive,
	"african":          keyCulturallySensitive,
}

var baseStyles = map[string]Style{
	keyFormalRespectful: {
		Name:       keyFormalRespectful,
		Tone:       ToneFormal,
		Vocabulary: VocabularyTechnical,
		Structure:  StructureHierarchical,
	},
	keyDiplomaticIndirect: {
		Name:       keyDiplomaticIndirect,
		Tone:       ToneDiplomatic,
		Vocabulary: VocabularyMixed,
		Structure:  StructureCircular,
	},
	keyDirectPractical: {
		Name:       keyDirectPractical,
		Tone:       ToneDirect,
		Vocabulary: VocabularySimple,
		Structure:  StructureLinear,
	},
	keyAccessibleSupportive: {
		Name:       keyAccessibleSupportive,
		Tone:       ToneCasual,
		Vocabulary: VocabularySimple,
		Structure:  StructureLinear,
	},
	keyCulturallySensitive: {
		Name:       keyCulturallySensitive,
		Tone:       ToneDiplomatic,
		Vocabulary: VocabularyMixed,
		Structure:  StructureCircular,
	},
}

// sensitiveCategories force a diplomatic tone unless urgency overrides it.
var sensitiveCategories = map[string]bool{
	"family_law":      true,
	"criminal_law":    true,
	"immigration_law": true,
	"personal_injury": true,
}

// technicalCategories force technical vocabulary and linear structure.
var technicalCategories = map[string]bool{
	"intellectual_property": true,
	"business_law":          true,
	"tax_law":               true,
}

// Selector produces a StyleAdaptation from a communication context. It is
// stateless; the zero value is usable.
type Selector struct{}

// NewSelector creates a Selector.
func NewSelector() *Selector { return &Selector{} }

// Select runs the precedence chain and generates the rewrite material for
// the final style. The four mutation steps run in a fixed order — base
// style, user preference, legal category, urgency — and later steps
// override earlier ones.
func (s *Selector) Select(ctx Context) Adaptation {
	// 1. Culture baseline.
	key, ok := backgroundStyles[culture.Normalize(ctx.Background)]
	if !ok {
		key = keyAccessibleSupportive
	}
	st := baseStyles[key]

	// 2. User preference adjusts vocabulary only.
	switch ctx.UserPreference {
	case "formal":
		st.Vocabulary = VocabularyTechnical
		st.CulturalMarkers = append(st.CulturalMarkers, "formal address preferred")
	case "casual":
		st.Vocabulary = VocabularySimple
		st.CulturalMarkers = append(st.CulturalMarkers, "casual phrasing preferred")
	}

	// 3. Legal-category override.
	if sensitiveCategories[ctx.LegalCategory] {
		st.Tone = ToneDiplomatic
	}
	if technicalCategories[ctx.LegalCategory] {
		st.Vocabulary = VocabularyTechnical
		st.Structure = StructureLinear
	}

	// 4. Urgency override wins over everything above for tone and structure.
	switch ctx.Urgency {
	case "critical":
		st.Tone = ToneDirect
		st.Structure = StructureLinear
	case "low":
		st.Tone = ToneDiplomatic
		st.Structure = StructureCircular
	}

	return Adaptation{
		SelectedStyle:    st,
		AdaptationRules:  adaptationRules(st),
		LanguagePatterns: languagePatterns(st),
		CulturalNuances:  culturalNuances(ctx),
		Examples:         examples(st),
	}
}

// adaptationRules returns canned guidance statements for the final tone,
// vocabulary, and structure, in that order.
func adaptationRules(st Style) []string {
	var rules []string
	switch st.Tone {
	case ToneFormal:
		rules = append(rules, "Address the reader formally and avoid contractions")
	case ToneDiplomatic:
		rules = append(rules, "Present obligations as considerations rather than commands")
	case ToneDirect:
		rules = append(rules, "Lead each point with the required action")
	case ToneCasual:
		rules = append(rules, "Keep sentences short and conversational")
	}
	switch st.Vocabulary {
	case VocabularySimple:
		rules = append(rules, "Replace legal terms with everyday equivalents")
	case VocabularyTechnical:
		rules = append(rules, "Use precise statutory terminology with citations")
	case VocabularyMixed:
		rules = append(rules, "Pair each legal term with a plain-language gloss")
	}
	switch st.Structure {
	case StructureLinear:
		rules = append(rules, "Order content as numbered sequential steps")
	case StructureCircular:
		rules = append(rules, "Revisit key points from several angles before concluding")
	case StructureHierarchical:
		rules = append(rules, "Present authorities and institutions before individual actions")
	}
	return rules
}

// Pattern blocks. Each block is appended only when its triggering tone or
// vocabulary matches; block order (formal, diplomatic, direct, simple) and
// order within a block are fixed.
var formalPatterns = []Rule{
	{Pattern: `\bcan't\b`, Replacement: "cannot"},
	{Pattern: `\bwon't\b`, Replacement: "will not"},
	{Pattern: `\bdon't\b`, Replacement: "do not"},
	{Pattern: `\bgoing to\b`, Replacement: "will"},
}

var diplomaticPatterns = []Rule{
	{Pattern: `\byou must\b`, Replacement: "you may wish to"},
	{Pattern: `\bmust\b`, Replacement: "should consider"},
	{Pattern: `\bdemand\b`, Replacement: "request"},
	{Pattern: `\bimmediately\b`, Replacement: "at your earliest convenience"},
}

var directPatterns = []Rule{
	{Pattern: `\bit may be advisable to\b`, Replacement: "you should"},
	{Pattern: `\byou might consider\b`, Replacement: "you should"},
	{Pattern: `\bperhaps\s+`, Replacement: ""},
}

var simplePatterns = []Rule{
	{Pattern: `\bsubsequently\b`, Replacement: "later"},
	{Pattern: `\bprior to\b`, Replacement: "before"},
	{Pattern: `\bin the event that\b`, Replacement: "if"},
	{Pattern: `\butilize\b`, Replacement: "use"},
	{Pattern: `\bcommence\b`, Replacement: "begin"},
}

func languagePatterns(st Style) []Rule {
	var out []Rule
	if st.Tone == ToneFormal {
		out = append(out, formalPatterns...)
	}
	if st.Tone == ToneDiplomatic {
		out = append(out, diplomaticPatterns...)
	}
	if st.Tone == ToneDirect {
		out = append(out, directPatterns...)
	}
	if st.Vocabulary == VocabularySimple {
		out = append(out, simplePatterns...)
	}
	return out
}

// nuances keyed by normalized background.
var backgroundNuances = map[string][]string{
	"western": {
		"Efficiency and autonomy are valued; keep recommendations self-contained",
	},
	"asian": {
		"Preserving harmony and face matters; avoid framing anyone as at fault",
		"Silence may signal reflection rather than agreement",
	},
	"hispanic": {
		"Personal warmth builds trust; open with acknowledgment before business",
		"Extended family may be part of the decision circle",
	},
	"middle_eastern": {
		"Formal respect toward elders and officials is expected",
		"Hospitality rituals may precede substantive discussion",
	},
	"african": {
		"Community elders may be consulted on significant decisions",
		"Oral explanation may carry more weight than written documents",
	},
	"south_asian": {
		"Family hierarchy often shapes who speaks for the household",
		"Indirect refusals are common; do not press for an immediate yes or no",
	},
	"eastern_european": {
		"Directness is valued but institutional distrust may run high",
	},
}

var nonEnglishNuances = []string{
	"Some legal concepts may not translate directly; include short definitions",
	"Offer interpreter arrangements for meetings and hearings",
}

func culturalNuances(ctx Context) []string {
	var out []string
	out = append(out, backgroundNuances[culture.Normalize(ctx.Background)]...)
	if ctx.Language != "" && ctx.Language != "en" {
		out = append(out, nonEnglishNuances...)
	}
	return out
}

// examples builds 1–4 illustrative before/after pairs for the final style.
func examples(st Style) []Example {
	var out []Example
	switch st.Tone {
	case ToneFormal:
		out = append(out, Example{
			Before:      "We can't process this yet.",
			After:       "We cannot process this yet.",
			Explanation: "Formal tone avoids contractions.",
		})
	case ToneDiplomatic:
		out = append(out, Example{
			Before:      "You must respond to the complaint.",
			After:       "You may wish to respond to the complaint.",
			Explanation: "Diplomatic tone presents obligations as considerations.",
		})
	case ToneDirect:
		out = append(out, Example{
			Before:      "It may be advisable to file promptly.",
			After:       "You should file promptly.",
			Explanation: "Direct tone leads with the required action.",
		})
	case ToneCasual:
		out = append(out, Example{
			Before:      "The respondent is obligated to appear.",
			After:       "You'll need to show up for the hearing.",
			Explanation: "Casual tone speaks to the reader directly.",
		})
	}
	if st.Vocabulary == VocabularySimple {
		out = append(out, Example{
			Before:      "Utilize the provided form prior to the deadline.",
			After:       "Use the provided form before the deadline.",
			Explanation: "Simple vocabulary replaces formal words with everyday ones.",
		})
	}
	if st.Vocabulary == VocabularyMixed {
		out = append(out, Example{
			Before:      "File a motion to dismiss.",
			After:       "File a motion to dismiss (a formal request to end the case).",
			Explanation: "Mixed vocabulary pairs legal terms with a plain gloss.",
		})
	}
	if st.Structure == StructureCircular {
		out = append(out, Example{
			Before:      "Step 1: respond. Step 2: gather evidence.",
			After:       "Responding protects your position; gathering evidence supports that response, which in turn strengthens your reply.",
			Explanation: "Circular structure revisits key points rather than listing them once.",
		})
	}
	if len(out) > 4 {
		out = out[:4]
	}
	return out
}
