// Package culture holds the static registry of cultural profiles.
// The registry is a process-wide immutable table: lookups are total
// (unknown backgrounds resolve to a default profile) and return copies,
// so callers can never observe or cause mutation.
package culture

import (
	"sort"
	"strings"
)

// CommunicationStyle describes how directly a culture tends to communicate.
type CommunicationStyle string

const (
	CommunicationDirect   CommunicationStyle = "direct"
	CommunicationIndirect CommunicationStyle = "indirect"
	CommunicationFormal   CommunicationStyle = "formal"
	CommunicationCasual   CommunicationStyle = "casual"
)

// DecisionMaking describes who participates in a decision.
type DecisionMaking string

const (
	DecisionIndividual   DecisionMaking = "individual"
	DecisionCollective   DecisionMaking = "collective"
	DecisionHierarchical DecisionMaking = "hierarchical"
)

// ConflictResolution describes the preferred way of settling disputes.
type ConflictResolution string

const (
	ConflictConfrontational ConflictResolution = "confrontational"
	ConflictMediation       ConflictResolution = "mediation"
	ConflictAvoidance       ConflictResolution = "avoidance"
)

// TimeOrientation describes how deadlines and pacing are perceived.
type TimeOrientation string

const (
	TimeLinear            TimeOrientation = "linear"
	TimeFlexible          TimeOrientation = "flexible"
	TimeRelationshipBased TimeOrientation = "relationship_based"
)

// Level is a coarse high/medium/low scale.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Profile is the fixed attribute tuple for a cultural background.
type Profile struct {
	Communication      CommunicationStyle `json:"communication_style"`
	DecisionMaking     DecisionMaking     `json:"decision_making"`
	ConflictResolution ConflictResolution `json:"conflict_resolution"`
	TimeOrientation    TimeOrientation    `json:"time_orientation"`
	AuthorityRespect   Level              `json:"authority_respect"`
	FamilyInvolvement  Level              `json:"family_involvement"`
}

// defaultProfile is returned for any background not in the registry.
var defaultProfile = Profile{
	Communication:      CommunicationFormal,
	DecisionMaking:     DecisionIndividual,
	ConflictResolution: ConflictMediation,
	TimeOrientation:    TimeLinear,
	AuthorityRespect:   LevelMedium,
	FamilyInvolvement:  LevelMedium,
}

// profiles is fixed at process start and never mutated.
var profiles = map[string]Profile{
	"western": {
		Communication:      CommunicationDirect,
		DecisionMaking:     DecisionIndividual,
		ConflictResolution: ConflictConfrontational,
		TimeOrientation:    TimeLinear,
		AuthorityRespect:   LevelLow,
		FamilyInvolvement:  LevelLow,
	},
	"asian": {
		Communication:      CommunicationIndirect,
		DecisionMaking:     DecisionCollective,
		ConflictResolution: ConflictAvoidance,
		TimeOrientation:    TimeRelationshipBased,
		AuthorityRespect:   LevelHigh,
		FamilyInvolvement:  LevelHigh,
	},
	"hispanic": {
		Communication:      CommunicationFormal,
		DecisionMaking:     DecisionCollective,
		ConflictResolution: ConflictMediation,
		TimeOrientation:    TimeFlexible,
		AuthorityRespect:   LevelHigh,
		FamilyInvolvement:  LevelHigh,
	},
	"middle_eastern": {
		Communication:      CommunicationFormal,
		DecisionMaking:     DecisionHierarchical,
		ConflictResolution: ConflictMediation,
		TimeOrientation:    TimeRelationshipBased,
		AuthorityRespect:   LevelHigh,
		FamilyInvolvement:  LevelHigh,
	},
	"african": {
		Communication:      CommunicationIndirect,
		DecisionMaking:     DecisionCollective,
		ConflictResolution: ConflictMediation,
		TimeOrientation:    TimeRelationshipBased,
		AuthorityRespect:   LevelHigh,
		FamilyInvolvement:  LevelHigh,
	},
	"south_asian": {
		Communication:      CommunicationFormal,
		DecisionMaking:     DecisionHierarchical,
		ConflictResolution: ConflictAvoidance,
		TimeOrientation:    TimeFlexible,
		AuthorityRespect:   LevelHigh,
		FamilyInvolvement:  LevelHigh,
	},
	"eastern_european": {
		Communication:      CommunicationDirect,
		DecisionMaking:     DecisionIndividual,
		ConflictResolution: ConflictConfrontational,
		TimeOrientation:    TimeLinear,
		AuthorityRespect:   LevelMedium,
		FamilyInvolvement:  LevelMedium,
	},
}

// Normalize canonicalizes a background label: lowercase, with spaces and
// hyphens collapsed to underscores ("Middle Eastern" -> "middle_eastern").
func Normalize(background string) string {
	s := strings.ToLower(strings.TrimSpace(background))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.Join(strings.Fields(s), "_")
	return s
}

// Lookup resolves a background label to its profile. Lookup is total:
// unknown labels return the default profile, never an error.
func Lookup(background string) Profile {
	if p, ok := profiles[Normalize(background)]; ok {
		return p
	}
	return defaultProfile
}

// Known reports whether the background resolves to one of the registered
// profiles (as opposed to the default fallback).
func Known(background string) bool {
	_, ok := profiles[Normalize(background)]
	return ok
}

// Backgrounds returns the registered background labels in sorted order.
func Backgrounds() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the fallback profile used for unknown backgrounds.
func Default() Profile {
	return defaultProfile
}
