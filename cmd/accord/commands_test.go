package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/accord/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found_error"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestAdaptCommand_Post(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /adaptations": `{"id":"ad-123","result":{}}`,
	})

	client := ts.client()

	req := map[string]any{
		"context": map[string]any{
			"user_background": "asian",
			"legal_category":  "contract_dispute",
			"urgency":         "high",
		},
		"guidance": map[string]any{"query_id": "q1"},
	}

	resp, err := client.post(ctx, "/adaptations", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.ID != "ad-123" {
		t.Errorf("id = %q, want ad-123", result.ID)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	r := ts.requests[0]
	if r.Method != "POST" {
		t.Errorf("method = %q, want POST", r.Method)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	sent, ok := body["context"].(map[string]any)
	if !ok {
		t.Fatal("expected context to be a map")
	}
	if sent["user_background"] != "asian" {
		t.Errorf("body.context.user_background = %v, want asian", sent["user_background"])
	}
}

func TestAdaptCommand_MissingBackground(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"adapt"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing --background")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestAssessCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /cases/case-1/assessment": `{"assessment":{"risk_level":"high","factors":["High frequency of hostile language detected"],"recommendations":["Schedule a facilitated session with a neutral mediator immediately."]},"event_id":"ev-1"}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/cases/case-1/assessment", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Assessment struct {
			RiskLevel string `json:"risk_level"`
		} `json:"assessment"`
		EventID string `json:"event_id"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if result.Assessment.RiskLevel != "high" {
		t.Errorf("risk_level = %q, want high", result.Assessment.RiskLevel)
	}
	if result.EventID != "ev-1" {
		t.Errorf("event_id = %q, want ev-1", result.EventID)
	}
}

func TestCasesList(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /cases": `[{"id":"case-001","title":"Lease deposit dispute","status":"open","created_at":"2026-02-01T00:00:00Z"}]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/cases?limit=20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cases []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := decodeJSON(resp, &cases); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(cases))
	}
	if cases[0].Status != "open" {
		t.Errorf("status = %q, want open", cases[0].Status)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/cases")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4600
	cfg.Monitor.PollInterval = "30s"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4600" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4600 in ShowAll output")
	}
}

func TestCountLabel(t *testing.T) {
	tests := []struct {
		count, limit int
		want         string
	}{
		{5, 100, "5"},
		{0, 100, "0"},
		{100, 100, "100+"},
		{150, 100, "150+"},
	}
	for _, tt := range tests {
		got := countLabel(tt.count, tt.limit)
		if got != tt.want {
			t.Errorf("countLabel(%d, %d) = %q, want %q", tt.count, tt.limit, got, tt.want)
		}
	}
}
