// Package style implements the communication style selector: an independent
// second-stage classifier that picks a tone/vocabulary/structure triple and
// an ordered list of text substitution rules from culture, legal-category
// sensitivity, urgency, and user preference. Selection is a chain of
// copy-and-mutate steps with a fixed override precedence: urgency wins over
// category, which wins over the culture baseline and user preference; user
// preference only ever affects vocabulary.
package style

// Tone values.
const (
	ToneFormal     = "formal"
	ToneCasual     = "casual"
	ToneDiplomatic = "diplomatic"
	ToneDirect     = "direct"
)

// Vocabulary values.
const (
	VocabularySimple    = "simple"
	VocabularyTechnical = "technical"
	VocabularyMixed     = "mixed"
)

// Structure values.
const (
	StructureLinear       = "linear"
	StructureCircular     = "circular"
	StructureHierarchical = "hierarchical"
)

// Context carries the parameters driving style selection.
type Context struct {
	Background     string   `json:"background"`
	LegalCategory  string   `json:"legal_category"`
	Urgency        string   `json:"urgency"`
	Language       string   `json:"language"`
	UserPreference string   `json:"user_preference,omitempty"` // "formal" or "casual"
	Jurisdiction   []string `json:"jurisdiction,omitempty"`
}

// Style is the tone/vocabulary/structure triple controlling text rewriting.
type Style struct {
	Name            string   `json:"name"`
	Tone            string   `json:"tone"`
	Vocabulary      string   `json:"vocabulary"`
	Structure       string   `json:"structure"`
	CulturalMarkers []string `json:"cultural_markers,omitempty"`
}

// Rule is one ordered (pattern, replacement) text substitution. Patterns
// are regular expressions applied case-insensitively; word boundaries are
// part of the pattern where whole-word matching is intended.
type Rule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// Example illustrates a before/after rewrite for the selected style.
type Example struct {
	Before      string `json:"before"`
	After       string `json:"after"`
	Explanation string `json:"explanation"`
}

// Adaptation is the selector's output: the final style plus everything
// needed to rewrite text in it.
type Adaptation struct {
	SelectedStyle    Style     `json:"selected_style"`
	AdaptationRules  []string  `json:"adaptation_rules"`
	LanguagePatterns []Rule    `json:"language_patterns"`
	CulturalNuances  []string  `json:"cultural_nuances"`
	Examples         []Example `json:"examples"`
}

// Validation reports advisory findings about a piece of adapted text.
// Findings are returned alongside the text, never thrown; callers treat
// IsAppropriate == false as a signal for human review.
type Validation struct {
	IsAppropriate bool     `json:"is_appropriate"`
	Issues        []string `json:"issues"`
	Suggestions   []string `json:"suggestions"`
}
