// Package escalation scores a mediation conversation's hostility and tempo
// from its recent timeline events. Assess is a pure function: recording the
// assessment back onto the timeline is the caller's job (the API layer and
// the monitor worker own that side effect).
package escalation

import (
	"strings"
	"time"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// recentWindow is how many trailing events the detector inspects.
const recentWindow = 10

// rapidThreshold is the maximum gap between consecutive events for the
// pair to count as a rapid exchange.
const rapidThreshold = 5 * time.Minute

// hostileKeywords is fixed at process start and matched case-insensitively
// as substrings of event content.
var hostileKeywords = []string{"angry", "frustrated", "unfair", "refuse", "demand", "threat"}

// Event is a single entry on a mediation case timeline.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Party     string            `json:"party"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Assessment is the detector's classification of a timeline.
type Assessment struct {
	RiskLevel       string   `json:"risk_level"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// Fixed factor and recommendation lists per tier.
var (
	highFactors = []string{
		"High frequency of hostile language in recent messages",
		"Rapid message exchanges indicate rising tension",
	}
	highRecommendations = []string{
		"Suggest a cooling-off period before the next session",
		"Recommend professional mediator intervention",
	}

	mediumFactors = []string{
		"Elevated emotional language in recent messages",
		"Increased exchange tempo between parties",
	}
	mediumRecommendations = []string{
		"Encourage respectful communication between parties",
		"Refocus the discussion on common interests",
	}

	lowFactors = []string{
		"Communication remains measured",
	}
	lowRecommendations = []string{
		"Continue current mediation approach.",
	}
)

// Assess classifies the last 10 timeline events by hostile-keyword count
// and exchange tempo. It is deterministic and never fails: an empty
// timeline is simply low risk.
func Assess(timeline []Event) Assessment {
	recent := timeline
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	hostile := hostileCount(recent)
	rapid := rapidExchangeCount(recent)

	switch {
	case hostile > 3 || rapid > 5:
		return Assessment{RiskLevel: RiskHigh, Factors: highFactors, Recommendations: highRecommendations}
	case hostile > 1 || rapid > 2:
		return Assessment{RiskLevel: RiskMedium, Factors: mediumFactors, Recommendations: mediumRecommendations}
	default:
		return Assessment{RiskLevel: RiskLow, Factors: lowFactors, Recommendations: lowRecommendations}
	}
}

func hostileCount(events []Event) int {
	count := 0
	for _, ev := range events {
		content := strings.ToLower(ev.Content)
		for _, kw := range hostileKeywords {
			if strings.Contains(content, kw) {
				count++
				break
			}
		}
	}
	return count
}

// rapidExchangeCount counts consecutive event pairs, by index and
// regardless of party, closer together than the rapid threshold.
func rapidExchangeCount(events []Event) int {
	count := 0
	for i := 1; i < len(events); i++ {
		delta := events[i].Timestamp.Sub(events[i-1].Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta < rapidThreshold {
			count++
		}
	}
	return count
}
