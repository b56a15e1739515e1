package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Case is a mediation case whose timeline the escalation detector scores.
type Case struct {
	ID        string
	Title     string
	Status    string // "open", "resolved", "closed"
	Parties   string // JSON array stored as text
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimelineEvent is one entry on a case timeline. Metadata is a JSON object
// stored as text; assessment events carry {"type":"escalation_assessment",...}.
type TimelineEvent struct {
	ID        string
	CaseID    string
	Timestamp time.Time
	Type      string
	Content   string
	Party     string
	Metadata  string
}

// AdaptationRecord is the audit log entry for one adaptation request:
// the full request and result as JSON, plus the fields queried on.
type AdaptationRecord struct {
	ID            string
	QueryID       string
	Background    string
	LegalCategory string
	RequestJSON   string
	ResultJSON    string
	Confidence    float64
	CreatedAt     time.Time
}
