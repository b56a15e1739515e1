// Package api exposes the adaptation pipeline and escalation detector over
// HTTP (chi) and MCP. The core stays a pure computation library; this layer
// owns persistence, IDs, timestamps, and the assessment-event side effect.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/accord/internal/culture"
	"github.com/kalambet/accord/internal/escalation"
	"github.com/kalambet/accord/internal/monitor"
	"github.com/kalambet/accord/internal/pipeline"
	"github.com/kalambet/accord/internal/storage"
	"github.com/kalambet/accord/internal/style"
)

const maxBodySize = 1 << 20 // 1MB

// Deps holds dependencies for the HTTP handler.
type Deps struct {
	Store   *storage.Store
	Adapter *pipeline.Adapter
	Token   string
}

// NewHandler builds the top-level router: /health is open, everything else
// sits behind bearer auth.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/adaptations", handleAdapt(deps))
		r.Post("/adaptations/batch", handleAdaptBatch(deps))
		r.Get("/adaptations", handleListAdaptations(deps))
		r.Get("/adaptations/{id}", handleGetAdaptation(deps))

		r.Post("/style/preview", handleStylePreview(deps))

		r.Get("/profiles", handleListProfiles())
		r.Get("/profiles/{background}", handleGetProfile())

		r.Post("/cases", handleCreateCase(deps))
		r.Get("/cases", handleListCases(deps))
		r.Get("/cases/{id}", handleGetCase(deps))
		r.Patch("/cases/{id}", handlePatchCase(deps))
		r.Post("/cases/{id}/events", handleAppendEvent(deps))
		r.Get("/cases/{id}/events", handleListEvents(deps))
		r.Post("/cases/{id}/assessment", handleAssessCase(deps))
	})

	return r
}

// --- Adaptations ---

func handleAdapt(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.Request
		if !decodeBody(w, r, &req) {
			return
		}

		result := deps.Adapter.Adapt(req)

		rec, err := adaptationRecord(req, result)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "recording adaptation: %v", err)
			return
		}
		if err := deps.Store.SaveAdaptation(rec); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "recording adaptation: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":     rec.ID,
			"result": result,
		})
	}
}

func handleAdaptBatch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqs []pipeline.Request
		if !decodeBody(w, r, &reqs) {
			return
		}

		results, err := deps.Adapter.AdaptBatch(r.Context(), reqs)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "batch adaptation: %v", err)
			return
		}

		ids := make([]string, len(results))
		for i := range results {
			rec, err := adaptationRecord(reqs[i], results[i])
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "recording adaptation: %v", err)
				return
			}
			if err := deps.Store.SaveAdaptation(rec); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "recording adaptation: %v", err)
				return
			}
			ids[i] = rec.ID
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ids":     ids,
			"results": results,
		})
	}
}

func adaptationRecord(req pipeline.Request, result pipeline.Result) (storage.AdaptationRecord, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return storage.AdaptationRecord{}, err
	}
	resJSON, err := json.Marshal(result)
	if err != nil {
		return storage.AdaptationRecord{}, err
	}
	return storage.AdaptationRecord{
		ID:            uuid.NewString(),
		QueryID:       req.Guidance.QueryID,
		Background:    culture.Normalize(req.Context.UserBackground),
		LegalCategory: req.Context.LegalCategory,
		RequestJSON:   string(reqJSON),
		ResultJSON:    string(resJSON),
		Confidence:    result.Adapted.Metadata.AdaptationConfidence,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func handleListAdaptations(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.ListAdaptations(queryLimit(r, 50))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing adaptations: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, adaptationSummaries(records))
	}
}

type adaptationSummary struct {
	ID            string    `json:"id"`
	QueryID       string    `json:"query_id"`
	Background    string    `json:"background"`
	LegalCategory string    `json:"legal_category"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

func adaptationSummaries(records []storage.AdaptationRecord) []adaptationSummary {
	out := make([]adaptationSummary, len(records))
	for i, rec := range records {
		out[i] = adaptationSummary{
			ID:            rec.ID,
			QueryID:       rec.QueryID,
			Background:    rec.Background,
			LegalCategory: rec.LegalCategory,
			Confidence:    rec.Confidence,
			CreatedAt:     rec.CreatedAt,
		}
	}
	return out
}

func handleGetAdaptation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := deps.Store.GetAdaptation(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "adaptation not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading adaptation: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      rec.ID,
			"request": json.RawMessage(rec.RequestJSON),
			"result":  json.RawMessage(rec.ResultJSON),
		})
	}
}

// --- Style preview ---

type stylePreviewRequest struct {
	Context style.Context `json:"context"`
	Text    string        `json:"text"`
}

func handleStylePreview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stylePreviewRequest
		if !decodeBody(w, r, &req) {
			return
		}

		selector := style.NewSelector()
		sa := selector.Select(req.Context)
		styled := style.Apply(req.Text, sa)
		validation := style.Validate(styled, req.Context)

		writeJSON(w, http.StatusOK, map[string]any{
			"styled_text": styled,
			"adaptation":  sa,
			"validation":  validation,
		})
	}
}

// --- Profiles ---

func handleListProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		backgrounds := culture.Backgrounds()
		out := make(map[string]culture.Profile, len(backgrounds))
		for _, bg := range backgrounds {
			out[bg] = culture.Lookup(bg)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		background := chi.URLParam(r, "background")
		writeJSON(w, http.StatusOK, map[string]any{
			"background": culture.Normalize(background),
			"known":      culture.Known(background),
			"profile":    culture.Lookup(background),
		})
	}
}

// --- Cases and timelines ---

type createCaseRequest struct {
	Title   string   `json:"title"`
	Parties []string `json:"parties"`
}

type caseResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Parties   []string  `json:"parties"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCaseResponse(c storage.Case) caseResponse {
	var parties []string
	if err := json.Unmarshal([]byte(c.Parties), &parties); err != nil {
		parties = nil
	}
	return caseResponse{
		ID:        c.ID,
		Title:     c.Title,
		Status:    c.Status,
		Parties:   parties,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func handleCreateCase(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCaseRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required")
			return
		}

		parties := "[]"
		if len(req.Parties) > 0 {
			b, err := json.Marshal(req.Parties)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid parties: %v", err)
				return
			}
			parties = string(b)
		}

		now := time.Now().UTC()
		c := storage.Case{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Status:    "open",
			Parties:   parties,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := deps.Store.CreateCase(c); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "creating case: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, toCaseResponse(c))
	}
}

func handleListCases(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cases, err := deps.Store.ListCases(r.URL.Query().Get("status"), queryLimit(r, 50))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing cases: %v", err)
			return
		}
		out := make([]caseResponse, len(cases))
		for i, c := range cases {
			out[i] = toCaseResponse(c)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetCase(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := deps.Store.GetCase(chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "case not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading case: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, toCaseResponse(c))
	}
}

type patchCaseRequest struct {
	Status string `json:"status"`
}

func handlePatchCase(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patchCaseRequest
		if !decodeBody(w, r, &req) {
			return
		}
		switch req.Status {
		case "open", "resolved", "closed":
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "status must be one of open, resolved, closed")
			return
		}

		err := deps.Store.UpdateCaseStatus(chi.URLParam(r, "id"), req.Status, time.Now().UTC())
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "case not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "updating case: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
	}
}

type appendEventRequest struct {
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Party     string            `json:"party"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type eventResponse struct {
	ID        string          `json:"id"`
	CaseID    string          `json:"case_id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	Party     string          `json:"party"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

func toEventResponse(ev storage.TimelineEvent) eventResponse {
	out := eventResponse{
		ID:        ev.ID,
		CaseID:    ev.CaseID,
		Timestamp: ev.Timestamp,
		Type:      ev.Type,
		Content:   ev.Content,
		Party:     ev.Party,
	}
	if ev.Metadata != "" && ev.Metadata != "{}" {
		out.Metadata = json.RawMessage(ev.Metadata)
	}
	return out
}

func handleAppendEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appendEventRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}
		if req.Party == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "party is required")
			return
		}
		if req.Type == "" {
			req.Type = "message"
		}

		ts := time.Now().UTC()
		if req.Timestamp != nil {
			ts = req.Timestamp.UTC()
		}

		metadata := "{}"
		if len(req.Metadata) > 0 {
			b, err := json.Marshal(req.Metadata)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid metadata: %v", err)
				return
			}
			metadata = string(b)
		}

		ev := storage.TimelineEvent{
			ID:        uuid.NewString(),
			CaseID:    chi.URLParam(r, "id"),
			Timestamp: ts,
			Type:      req.Type,
			Content:   req.Content,
			Party:     req.Party,
			Metadata:  metadata,
		}
		err := deps.Store.AppendEvent(ev)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "case not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "appending event: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(ev))
	}
}

func handleListEvents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caseID := chi.URLParam(r, "id")
		if _, err := deps.Store.GetCase(caseID); errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "case not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading case: %v", err)
			return
		}

		events, err := deps.Store.ListEvents(caseID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing events: %v", err)
			return
		}
		out := make([]eventResponse, len(events))
		for i, ev := range events {
			out[i] = toEventResponse(ev)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleAssessCase runs the escalation detector over the stored timeline
// and records the assessment as a new timeline event. The recording side
// effect lives here, not in the detector.
func handleAssessCase(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caseID := chi.URLParam(r, "id")
		if _, err := deps.Store.GetCase(caseID); errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "case not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading case: %v", err)
			return
		}

		stored, err := deps.Store.RecentEvents(caseID, 10)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading events: %v", err)
			return
		}

		assessment := escalation.Assess(monitor.ToEscalationEvents(stored))

		ev, err := monitor.NewAssessmentEvent(caseID, assessment, time.Now().UTC())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "building assessment event: %v", err)
			return
		}
		if err := deps.Store.AppendEvent(ev); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "recording assessment: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"assessment": assessment,
			"event_id":   ev.ID,
		})
	}
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > 200 {
		return 200
	}
	return n
}
