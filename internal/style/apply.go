package style

import (
	"log/slog"
	"regexp"
	"strings"
)

// Apply rewrites text with every (pattern, replacement) pair in the
// adaptation's ordered list, case-insensitively, then prepends a
// "Cultural Considerations:" bullet block when the adaptation carries
// cultural nuances. Invalid patterns are skipped, never fatal —
// Adaptation values may arrive over the API.
func Apply(text string, a Adaptation) string {
	for _, rule := range a.LanguagePatterns {
		re, err := regexp.Compile(`(?i)` + rule.Pattern)
		if err != nil {
			slog.Debug("style: skipping invalid pattern", "pattern", rule.Pattern, "error", err)
			continue
		}
		text = re.ReplaceAllString(text, rule.Replacement)
	}

	if len(a.CulturalNuances) == 0 {
		return text
	}

	var sb strings.Builder
	sb.WriteString("Cultural Considerations:\n")
	for _, n := range a.CulturalNuances {
		sb.WriteString("- ")
		sb.WriteString(n)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(text)
	return sb.String()
}
