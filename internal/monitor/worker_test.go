package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kalambet/accord/internal/escalation"
	"github.com/kalambet/accord/internal/storage"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type mockStore struct {
	cases       []storage.Case
	events      map[string][]storage.TimelineEvent
	assessments map[string]storage.TimelineEvent
	appended    []storage.TimelineEvent
	listErr     error
	appendErr   error
}

func (m *mockStore) ListCases(status string, limit int) ([]storage.Case, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []storage.Case
	for _, c := range m.cases {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) RecentEvents(caseID string, n int) ([]storage.TimelineEvent, error) {
	evs := m.events[caseID]
	if len(evs) > n {
		evs = evs[len(evs)-n:]
	}
	return evs, nil
}

func (m *mockStore) LastAssessment(caseID string) (storage.TimelineEvent, error) {
	ev, ok := m.assessments[caseID]
	if !ok {
		return storage.TimelineEvent{}, storage.ErrNotFound
	}
	return ev, nil
}

func (m *mockStore) AppendEvent(ev storage.TimelineEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, ev)
	return nil
}

var monitorBase = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openCase(id string) storage.Case {
	return storage.Case{ID: id, Title: "Case " + id, Status: "open", Parties: `["alice","bob"]`}
}

// hostileTimeline builds n hostile messages an hour apart, enough spacing
// to keep the rapid-exchange count at zero.
func hostileTimeline(caseID string, n int) []storage.TimelineEvent {
	evs := make([]storage.TimelineEvent, n)
	for i := range evs {
		evs[i] = storage.TimelineEvent{
			ID:        fmt.Sprintf("ev-%02d", i),
			CaseID:    caseID,
			Timestamp: monitorBase.Add(time.Duration(i) * time.Hour),
			Type:      "message",
			Content:   "This is completely unfair and I refuse to continue",
			Party:     "party_a",
			Metadata:  "{}",
		}
	}
	return evs
}

func assessmentEvent(t *testing.T, caseID, risk string) storage.TimelineEvent {
	t.Helper()
	ev, err := NewAssessmentEvent(caseID, escalation.Assessment{
		RiskLevel:       risk,
		Factors:         []string{"previous factor"},
		Recommendations: []string{"previous recommendation"},
	}, monitorBase)
	if err != nil {
		t.Fatalf("NewAssessmentEvent: %v", err)
	}
	return ev
}

func TestRunOnceSkipsEmptyTimeline(t *testing.T) {
	store := &mockStore{
		cases:  []storage.Case{openCase("case-1")},
		events: map[string][]storage.TimelineEvent{},
	}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{monitorBase})

	if err := w.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(store.appended) != 0 {
		t.Errorf("appended %d events to an empty timeline, want 0", len(store.appended))
	}
}

func TestRunOnceRecordsFirstAssessment(t *testing.T) {
	now := monitorBase.Add(24 * time.Hour)
	store := &mockStore{
		cases:       []storage.Case{openCase("case-1")},
		events:      map[string][]storage.TimelineEvent{"case-1": hostileTimeline("case-1", 4)},
		assessments: map[string]storage.TimelineEvent{},
	}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{now})

	if err := w.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(store.appended) != 1 {
		t.Fatalf("appended %d events, want 1", len(store.appended))
	}

	ev := store.appended[0]
	if ev.CaseID != "case-1" {
		t.Errorf("CaseID = %q, want case-1", ev.CaseID)
	}
	if ev.Party != "ai_mediator" {
		t.Errorf("Party = %q, want ai_mediator", ev.Party)
	}
	if !ev.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", ev.Timestamp, now)
	}
	if ev.Content != "Escalation risk assessed as high" {
		t.Errorf("Content = %q", ev.Content)
	}

	var meta struct {
		Type      string `json:"type"`
		RiskLevel string `json:"risk_level"`
	}
	if err := json.Unmarshal([]byte(ev.Metadata), &meta); err != nil {
		t.Fatalf("unmarshalling metadata: %v", err)
	}
	if meta.Type != "escalation_assessment" {
		t.Errorf("metadata type = %q, want escalation_assessment", meta.Type)
	}
	if meta.RiskLevel != "high" {
		t.Errorf("metadata risk_level = %q, want high", meta.RiskLevel)
	}
}

func TestRunOnceSkipsUnchangedRisk(t *testing.T) {
	store := &mockStore{
		cases:  []storage.Case{openCase("case-1")},
		events: map[string][]storage.TimelineEvent{"case-1": hostileTimeline("case-1", 4)},
	}
	store.assessments = map[string]storage.TimelineEvent{
		"case-1": assessmentEvent(t, "case-1", "high"),
	}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{monitorBase})

	if err := w.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(store.appended) != 0 {
		t.Errorf("appended %d events for an unchanged risk level, want 0", len(store.appended))
	}
}

func TestRunOnceRecordsRiskChange(t *testing.T) {
	store := &mockStore{
		cases:  []storage.Case{openCase("case-1")},
		events: map[string][]storage.TimelineEvent{"case-1": hostileTimeline("case-1", 4)},
	}
	store.assessments = map[string]storage.TimelineEvent{
		"case-1": assessmentEvent(t, "case-1", "low"),
	}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{monitorBase})

	if err := w.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(store.appended) != 1 {
		t.Fatalf("appended %d events, want 1 for the low-to-high transition", len(store.appended))
	}
	if got := riskOf(store.appended[0]); got != "high" {
		t.Errorf("recorded risk = %q, want high", got)
	}
}

func TestRunOnceAssessesEveryOpenCase(t *testing.T) {
	store := &mockStore{
		cases: []storage.Case{
			openCase("case-1"),
			{ID: "case-2", Title: "closed one", Status: "closed"},
			openCase("case-3"),
		},
		events: map[string][]storage.TimelineEvent{
			"case-1": hostileTimeline("case-1", 4),
			"case-3": hostileTimeline("case-3", 4),
		},
	}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{monitorBase})

	if err := w.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(store.appended) != 2 {
		t.Fatalf("appended %d events, want 2 (one per open case)", len(store.appended))
	}
	if store.appended[0].CaseID != "case-1" || store.appended[1].CaseID != "case-3" {
		t.Errorf("assessed cases %q and %q, want case-1 and case-3",
			store.appended[0].CaseID, store.appended[1].CaseID)
	}
}

func TestRunOnceListError(t *testing.T) {
	store := &mockStore{listErr: errors.New("database locked")}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{monitorBase})

	if err := w.RunOnce(); err == nil {
		t.Fatal("RunOnce returned nil error when listing fails")
	}
}

func TestRunOnceAppendFailureDoesNotAbort(t *testing.T) {
	store := &mockStore{
		cases:     []storage.Case{openCase("case-1"), openCase("case-2")},
		events:    map[string][]storage.TimelineEvent{"case-1": hostileTimeline("case-1", 4)},
		appendErr: errors.New("disk full"),
	}
	w := NewWorkerWithClock(store, time.Minute, fixedClock{monitorBase})

	// Per-case failures are logged, not propagated.
	if err := w.RunOnce(); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
}

func TestNewWorkerDefaultPoll(t *testing.T) {
	w := NewWorker(&mockStore{}, 0)
	if w.poll != time.Minute {
		t.Errorf("poll = %v, want 1m", w.poll)
	}
}

func TestToEscalationEvents(t *testing.T) {
	stored := []storage.TimelineEvent{
		{
			ID:        "ev-1",
			CaseID:    "case-1",
			Timestamp: monitorBase,
			Type:      "message",
			Content:   "hello",
			Party:     "party_a",
			Metadata:  "{}",
		},
		{
			ID:        "ev-2",
			CaseID:    "case-1",
			Timestamp: monitorBase.Add(time.Minute),
			Type:      "message",
			Content:   "update",
			Party:     "party_b",
			Metadata:  `{"channel":"email","risk_level":"low","factors":["x"],"count":3}`,
		},
	}

	events := ToEscalationEvents(stored)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Metadata != nil {
		t.Errorf("empty-object metadata produced %v, want nil", events[0].Metadata)
	}
	if events[1].Metadata["channel"] != "email" || events[1].Metadata["risk_level"] != "low" {
		t.Errorf("flat string metadata not carried over: %v", events[1].Metadata)
	}
	if _, ok := events[1].Metadata["factors"]; ok {
		t.Error("nested metadata value should have been dropped")
	}
	if _, ok := events[1].Metadata["count"]; ok {
		t.Error("non-string metadata value should have been dropped")
	}
	if events[1].Content != "update" || !events[1].Timestamp.Equal(stored[1].Timestamp) {
		t.Errorf("event fields not carried over: %+v", events[1])
	}
}

func TestNewAssessmentEventShape(t *testing.T) {
	a := escalation.Assessment{
		RiskLevel:       "medium",
		Factors:         []string{"Detected 2 hostile or frustrated messages"},
		Recommendations: []string{"Monitor communication tone closely."},
	}
	ev, err := NewAssessmentEvent("case-9", a, monitorBase)
	if err != nil {
		t.Fatalf("NewAssessmentEvent: %v", err)
	}
	if ev.ID == "" {
		t.Error("ID is empty, want a generated UUID")
	}
	if ev.Type != "message" {
		t.Errorf("Type = %q, want message", ev.Type)
	}

	var meta assessmentMetadata
	if err := json.Unmarshal([]byte(ev.Metadata), &meta); err != nil {
		t.Fatalf("unmarshalling metadata: %v", err)
	}
	if meta.Type != "escalation_assessment" || meta.RiskLevel != "medium" {
		t.Errorf("metadata = %+v", meta)
	}
	if len(meta.Factors) != 1 || len(meta.Recommendations) != 1 {
		t.Errorf("factors/recommendations not preserved: %+v", meta)
	}
	if got := riskOf(ev); got != "medium" {
		t.Errorf("riskOf = %q, want medium", got)
	}
}
