package adaptation

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestAnalyzeAsianBackground(t *testing.T) {
	a := NewAnalyzer()
	ca := a.Analyze(Context{UserBackground: "asian", LegalCategory: "contract_dispute", Language: "en", Urgency: UrgencyHigh})

	if !slices.Contains(ca.CommunicationAdjustments, adjDiplomaticTone) {
		t.Errorf("expected diplomatic adjustment, got %v", ca.CommunicationAdjustments)
	}
	if !slices.Contains(ca.ProcessModifications, modConsultationTime) {
		t.Errorf("expected consultation modification, got %v", ca.ProcessModifications)
	}
	if !slices.Contains(ca.ProcessModifications, modFlexibleScheduling) {
		t.Errorf("expected flexible scheduling modification, got %v", ca.ProcessModifications)
	}
	if len(ca.SensitivityWarnings) == 0 {
		t.Error("expected sensitivity warnings for avoidance + high authority respect")
	}
	if !strings.Contains(ca.RecommendedApproach, "consultative") {
		t.Errorf("RecommendedApproach = %q, want the consultative variant", ca.RecommendedApproach)
	}
	if !slices.Contains(ca.CulturalConsiderations, "Decisions may require family or community consensus") {
		t.Errorf("expected collective-decision consideration, got %v", ca.CulturalConsiderations)
	}
}

func TestAnalyzeUnknownBackgroundUsesDefault(t *testing.T) {
	a := NewAnalyzer()
	ca := a.Analyze(Context{UserBackground: "martian", Language: "en"})

	// Default profile is formal/individual/mediation/linear/medium/medium.
	if !slices.Contains(ca.CommunicationAdjustments, adjFormalTone) {
		t.Errorf("expected formal adjustment for default profile, got %v", ca.CommunicationAdjustments)
	}
	if len(ca.SensitivityWarnings) != 0 {
		t.Errorf("expected no warnings for default profile, got %v", ca.SensitivityWarnings)
	}
	if len(ca.CulturalConsiderations) != 0 {
		t.Errorf("expected no considerations for default profile, got %v", ca.CulturalConsiderations)
	}
	if ca.RecommendedApproach == "" {
		t.Error("RecommendedApproach must never be empty")
	}
}

func TestAnalyzeLanguageAccommodations(t *testing.T) {
	a := NewAnalyzer()

	en := a.Analyze(Context{UserBackground: "hispanic", Language: "en"})
	es := a.Analyze(Context{UserBackground: "hispanic", Language: "es"})

	if len(es.CommunicationAdjustments) <= len(en.CommunicationAdjustments) {
		t.Error("non-English language should add communication adjustments")
	}
	found := false
	for _, adj := range es.CommunicationAdjustments {
		if strings.Contains(strings.ToLower(adj), "translation") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a translation accommodation, got %v", es.CommunicationAdjustments)
	}
	if !slices.Contains(es.CulturalConsiderations, "Language support may be needed for legal terminology") {
		t.Errorf("expected language consideration, got %v", es.CulturalConsiderations)
	}
	if slices.Contains(en.CulturalConsiderations, "Language support may be needed for legal terminology") {
		t.Error("English context should not get the language consideration")
	}
}

func TestAnalyzeCategoryWarnings(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name       string
		background string
		category   string
		wantPhrase string
		want       bool
	}{
		{"family law with high family involvement", "asian", "family_law", "extended family expectations", true},
		{"family law with low family involvement", "western", "family_law", "extended family expectations", false},
		{"immigration with high authority respect", "hispanic", "immigration_law", "fear of authorities", true},
		{"immigration with low authority respect", "western", "immigration_law", "fear of authorities", false},
		{"criminal law with avoidance", "asian", "criminal_law", "cannot be resolved through avoidance", true},
		{"criminal law without avoidance", "hispanic", "criminal_law", "cannot be resolved through avoidance", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ca := a.Analyze(Context{UserBackground: tt.background, LegalCategory: tt.category, Language: "en"})
			got := false
			for _, w := range ca.SensitivityWarnings {
				if strings.Contains(w, tt.wantPhrase) {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("warning containing %q present = %v, want %v (warnings: %v)", tt.wantPhrase, got, tt.want, ca.SensitivityWarnings)
			}
		})
	}
}

func TestAnalyzeCriticalUrgencyClause(t *testing.T) {
	a := NewAnalyzer()

	critical := a.Analyze(Context{UserBackground: "middle_eastern", Urgency: UrgencyCritical, Language: "en"})
	if !strings.Contains(critical.RecommendedApproach, "Time pressure is severe") {
		t.Errorf("critical urgency against relationship-based time should append the urgency clause, got %q", critical.RecommendedApproach)
	}

	medium := a.Analyze(Context{UserBackground: "middle_eastern", Urgency: UrgencyMedium, Language: "en"})
	if strings.Contains(medium.RecommendedApproach, "Time pressure is severe") {
		t.Errorf("medium urgency should not append the urgency clause, got %q", medium.RecommendedApproach)
	}

	// Linear time orientation never gets the clause, even when critical.
	linear := a.Analyze(Context{UserBackground: "western", Urgency: UrgencyCritical, Language: "en"})
	if strings.Contains(linear.RecommendedApproach, "Time pressure is severe") {
		t.Errorf("linear time orientation should not append the urgency clause, got %q", linear.RecommendedApproach)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer()
	ctx := Context{UserBackground: "south_asian", LegalCategory: "immigration_law", Language: "hi", Urgency: UrgencyCritical}

	first := a.Analyze(ctx)
	second := a.Analyze(ctx)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
