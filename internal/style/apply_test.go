package style

import (
	"strings"
	"testing"
)

func TestApplyPatternsInOrder(t *testing.T) {
	a := Adaptation{
		LanguagePatterns: []Rule{
			{Pattern: `\byou must\b`, Replacement: "you may wish to"},
			{Pattern: `\bmust\b`, Replacement: "should consider"},
			{Pattern: `\bimmediately\b`, Replacement: "at your earliest convenience"},
		},
	}

	got := Apply("You must file the response immediately. Witnesses must attend.", a)
	want := "you may wish to file the response at your earliest convenience. Witnesses should consider attend."
	if got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}
}

func TestApplyCaseInsensitive(t *testing.T) {
	a := Adaptation{
		LanguagePatterns: []Rule{{Pattern: `\bDEMAND\b`, Replacement: "request"}},
	}
	if got := Apply("They demand payment.", a); got != "They request payment." {
		t.Errorf("Apply = %q", got)
	}
}

func TestApplySkipsInvalidPatterns(t *testing.T) {
	a := Adaptation{
		LanguagePatterns: []Rule{
			{Pattern: `[unclosed`, Replacement: "x"},
			{Pattern: `\bmust\b`, Replacement: "should consider"},
		},
	}
	got := Apply("You must appear.", a)
	if !strings.Contains(got, "should consider") {
		t.Errorf("valid pattern after invalid one was not applied: %q", got)
	}
}

func TestApplyPrependsNuances(t *testing.T) {
	a := Adaptation{
		CulturalNuances: []string{"Silence may signal reflection rather than agreement"},
	}
	got := Apply("Respond to the notice.", a)
	if !strings.HasPrefix(got, "Cultural Considerations:\n- Silence may signal reflection") {
		t.Errorf("nuance block missing or malformed:\n%s", got)
	}
	if !strings.HasSuffix(got, "Respond to the notice.") {
		t.Errorf("original text missing from output:\n%s", got)
	}
}

func TestApplyNoNuancesNoBlock(t *testing.T) {
	got := Apply("Respond to the notice.", Adaptation{})
	if got != "Respond to the notice." {
		t.Errorf("Apply with empty adaptation = %q, want text unchanged", got)
	}
}

func TestValidateInsensitivePhrases(t *testing.T) {
	v := Validate("You must sign. You have no choice here.", Context{Background: "western"})
	if v.IsAppropriate {
		t.Error("expected IsAppropriate = false")
	}
	if len(v.Issues) != 2 {
		t.Errorf("got %d issues, want 2: %v", len(v.Issues), v.Issues)
	}
	if len(v.Suggestions) != len(v.Issues) {
		t.Errorf("suggestions (%d) should pair with issues (%d)", len(v.Suggestions), len(v.Issues))
	}
}

func TestValidateCleanText(t *testing.T) {
	v := Validate("You may wish to respond within the stated period.", Context{Background: "asian"})
	if !v.IsAppropriate {
		t.Errorf("clean text flagged: %v", v.Issues)
	}
	if len(v.Issues) != 0 {
		t.Errorf("expected no issues, got %v", v.Issues)
	}
}

func TestValidateContractionsUnderFormalPreference(t *testing.T) {
	text := "Don't forget the hearing date."

	formal := Validate(text, Context{Background: "western", UserPreference: "formal"})
	if formal.IsAppropriate {
		t.Error("contraction should fail the formal preference")
	}

	casual := Validate(text, Context{Background: "western"})
	if !casual.IsAppropriate {
		t.Errorf("contraction without formal preference should pass, got %v", casual.Issues)
	}
}

func TestValidateConfrontationalForIndirectCultures(t *testing.T) {
	text := "Confront the other party about the missed payments."

	indirect := Validate(text, Context{Background: "asian"})
	if indirect.IsAppropriate {
		t.Error("confrontational phrasing should be flagged for an indirect-communication culture")
	}

	direct := Validate(text, Context{Background: "western"})
	if !direct.IsAppropriate {
		t.Errorf("confrontational phrasing should pass for a direct culture, got %v", direct.Issues)
	}
}
