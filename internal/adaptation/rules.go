package adaptation

import "regexp"

// textRule is one case-insensitive, word-bounded substitution. Rules are
// kept in explicit ordered slices so substitution order is a guaranteed
// contract, not an accident of map iteration.
type textRule struct {
	re          *regexp.Regexp
	replacement string
}

func mustRules(pairs [][2]string) []textRule {
	rules := make([]textRule, 0, len(pairs))
	for _, p := range pairs {
		rules = append(rules, textRule{
			re:          regexp.MustCompile(`(?i)` + p[0]),
			replacement: p[1],
		})
	}
	return rules
}

// formalRules replace contractions and informal phrasing with formal
// equivalents. Applied to step descriptions and timeframes when the formal
// communication adjustment is present.
var formalRules = mustRules([][2]string{
	{`\bcan't\b`, "cannot"},
	{`\bwon't\b`, "will not"},
	{`\bdon't\b`, "do not"},
	{`\bshouldn't\b`, "should not"},
	{`\bit's\b`, "it is"},
	{`\bget in touch with\b`, "contact"},
})

// accessibleRules replace formal legal vocabulary with everyday words.
// Applied when the plain-language communication adjustment is present.
var accessibleRules = mustRules([][2]string{
	{`\bprior to\b`, "before"},
	{`\bsubsequent to\b`, "after"},
	{`\bin the event that\b`, "if"},
	{`\bcommence\b`, "start"},
	{`\butilize\b`, "use"},
})

// diplomaticRules soften commands into considerations. "must not" is
// ordered before "must" so the negation survives intact.
var diplomaticRules = mustRules([][2]string{
	{`\bmust not\b`, "should not"},
	{`\bmust\b`, "should consider"},
	{`\bhave to\b`, "may wish to"},
	{`\bare required to\b`, "are encouraged to"},
})

// flexibleTimeRules replace hard-immediacy phrasing for requesters whose
// time orientation is relationship-based.
var flexibleTimeRules = mustRules([][2]string{
	{`\bimmediately\b`, "when circumstances allow"},
	{`\bright away\b`, "when circumstances allow"},
	{`\bas soon as possible\b`, "when circumstances allow"},
})

// hierarchyRules reword outreach actions to respect hierarchical
// decision-making.
var hierarchyRules = mustRules([][2]string{
	{`\bcontact\b`, "respectfully contact"},
	{`\bspeak\b`, "respectfully speak"},
})

func applyRules(text string, rules []textRule) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.replacement)
	}
	return text
}
