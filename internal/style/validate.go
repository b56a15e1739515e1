package style

import (
	"fmt"
	"strings"

	"github.com/kalambet/accord/internal/culture"
)

// Phrases that read as culturally insensitive in mediation guidance,
// paired with the suggested rewording.
var insensitivePhrases = []struct {
	phrase     string
	suggestion string
}{
	{"you must", "Replace \"you must\" with \"you may wish to\" or \"you should consider\""},
	{"no choice", "Avoid \"no choice\"; describe the options that do exist, however narrow"},
	{"ignore family", "Never advise ignoring family; acknowledge their role and suggest boundaries instead"},
	{"individual decision only", "Avoid framing decisions as individual-only; leave room for consultation"},
}

var contractions = []string{"don't", "can't", "won't", "isn't", "aren't", "didn't", "it's"}

var confrontationalPhrases = []string{"confront", "demand that", "insist that", "refuse to"}

// Validate flags insensitive canned phrases and formality or cultural
// mismatches in adapted text. Findings are advisory: the result is always
// returned, never an error.
func Validate(text string, ctx Context) Validation {
	v := Validation{IsAppropriate: true}
	lower := strings.ToLower(text)

	for _, p := range insensitivePhrases {
		if strings.Contains(lower, p.phrase) {
			v.IsAppropriate = false
			v.Issues = append(v.Issues, fmt.Sprintf("contains insensitive phrase %q", p.phrase))
			v.Suggestions = append(v.Suggestions, p.suggestion)
		}
	}

	if ctx.UserPreference == "formal" {
		for _, c := range contractions {
			if strings.Contains(lower, c) {
				v.IsAppropriate = false
				v.Issues = append(v.Issues, fmt.Sprintf("contraction %q conflicts with the formal preference", c))
				v.Suggestions = append(v.Suggestions, "Expand contractions when the requester prefers formal address")
				break
			}
		}
	}

	if culture.Lookup(ctx.Background).Communication == culture.CommunicationIndirect {
		for _, p := range confrontationalPhrases {
			if strings.Contains(lower, p) {
				v.IsAppropriate = false
				v.Issues = append(v.Issues, fmt.Sprintf("direct-confrontation phrasing %q may not suit an indirect-communication culture", p))
				v.Suggestions = append(v.Suggestions, "Reword confrontational passages as shared problems to resolve")
				break
			}
		}
	}

	return v
}
