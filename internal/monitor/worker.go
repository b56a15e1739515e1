// Package monitor runs the escalation detector over stored case timelines
// on a polling schedule. The detector itself is pure; this worker owns the
// side effect of recording each assessment back onto the timeline as an
// ai_mediator event.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/accord/internal/escalation"
	"github.com/kalambet/accord/internal/storage"
)

const assessmentWindow = 10

// CaseStore abstracts the storage operations the worker needs.
// Implemented by storage.Store.
type CaseStore interface {
	ListCases(status string, limit int) ([]storage.Case, error)
	RecentEvents(caseID string, n int) ([]storage.TimelineEvent, error)
	LastAssessment(caseID string) (storage.TimelineEvent, error)
	AppendEvent(ev storage.TimelineEvent) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Worker periodically assesses open cases and appends an assessment event
// whenever the risk level changes.
type Worker struct {
	store  CaseStore
	poll   time.Duration
	clock  Clock
	logger *slog.Logger
}

// NewWorker creates a Worker. If pollInterval is <= 0, it defaults to 1m.
func NewWorker(store CaseStore, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Worker{
		store:  store,
		poll:   pollInterval,
		clock:  realClock{},
		logger: slog.Default(),
	}
}

// NewWorkerWithClock creates a Worker with a custom clock (for testing).
func NewWorkerWithClock(store CaseStore, pollInterval time.Duration, clock Clock) *Worker {
	w := NewWorker(store, pollInterval)
	w.clock = clock
	return w
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := w.RunOnce(); err != nil {
			w.logger.Error("monitor iteration failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce assesses every open case once. Cases with empty timelines are
// skipped; an assessment event is appended only when the risk level
// differs from the last recorded assessment.
func (w *Worker) RunOnce() error {
	cases, err := w.store.ListCases("open", 100)
	if err != nil {
		return fmt.Errorf("listing open cases: %w", err)
	}

	for _, c := range cases {
		if err := w.assessCase(c.ID); err != nil {
			w.logger.Warn("case assessment failed", "case_id", c.ID, "error", err)
		}
	}
	return nil
}

func (w *Worker) assessCase(caseID string) error {
	stored, err := w.store.RecentEvents(caseID, assessmentWindow)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(stored) == 0 {
		return nil
	}

	assessment := escalation.Assess(ToEscalationEvents(stored))

	if last, err := w.store.LastAssessment(caseID); err == nil {
		if riskOf(last) == assessment.RiskLevel {
			return nil
		}
	} else if err != storage.ErrNotFound {
		return fmt.Errorf("loading last assessment: %w", err)
	}

	ev, err := NewAssessmentEvent(caseID, assessment, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.store.AppendEvent(ev); err != nil {
		return fmt.Errorf("appending assessment event: %w", err)
	}
	w.logger.Info("escalation assessment recorded", "case_id", caseID, "risk_level", assessment.RiskLevel)
	return nil
}

// assessmentMetadata is the metadata payload of an assessment event.
type assessmentMetadata struct {
	Type            string   `json:"type"`
	RiskLevel       string   `json:"risk_level"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
}

// NewAssessmentEvent builds the timeline event that records an escalation
// assessment, in the shape the downstream event log expects.
func NewAssessmentEvent(caseID string, a escalation.Assessment, at time.Time) (storage.TimelineEvent, error) {
	meta, err := json.Marshal(assessmentMetadata{
		Type:            "escalation_assessment",
		RiskLevel:       a.RiskLevel,
		Factors:         a.Factors,
		Recommendations: a.Recommendations,
	})
	if err != nil {
		return storage.TimelineEvent{}, fmt.Errorf("marshalling assessment metadata: %w", err)
	}
	return storage.TimelineEvent{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Timestamp: at,
		Type:      "message",
		Content:   fmt.Sprintf("Escalation risk assessed as %s", a.RiskLevel),
		Party:     "ai_mediator",
		Metadata:  string(meta),
	}, nil
}

// ToEscalationEvents converts stored timeline events for the detector.
func ToEscalationEvents(stored []storage.TimelineEvent) []escalation.Event {
	events := make([]escalation.Event, len(stored))
	for i, ev := range stored {
		var meta map[string]string
		// Assessment metadata has nested fields; the detector only needs
		// flat string values, so nested ones are dropped.
		if ev.Metadata != "" && ev.Metadata != "{}" {
			var raw map[string]any
			if err := json.Unmarshal([]byte(ev.Metadata), &raw); err == nil {
				meta = make(map[string]string, len(raw))
				for k, v := range raw {
					if s, ok := v.(string); ok {
						meta[k] = s
					}
				}
			}
		}
		events[i] = escalation.Event{
			ID:        ev.ID,
			Timestamp: ev.Timestamp,
			Type:      ev.Type,
			Content:   ev.Content,
			Party:     ev.Party,
			Metadata:  meta,
		}
	}
	return events
}

func riskOf(ev storage.TimelineEvent) string {
	var meta assessmentMetadata
	if err := json.Unmarshal([]byte(ev.Metadata), &meta); err != nil {
		return ""
	}
	return meta.RiskLevel
}
