package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"keywordlens/pkg/history"
	"keywordlens/pkg/normalize"
	"keywordlens/pkg/provider"
)

// stubClient serves canned provider responses per analysis type.
type stubClient struct {
	responses map[provider.AnalysisType]string
	errs      map[provider.AnalysisType]error
	auditID   string
	auditErr  error
}

func (s *stubClient) Query(ctx context.Context, req provider.QueryRequest) (*provider.Result, error) {
	if err := s.errs[req.Type]; err != nil {
		return nil, err
	}
	body, ok := s.responses[req.Type]
	if !ok {
		body = `{}`
	}
	return &provider.Result{
		Body:  json.RawMessage(body),
		First: normalize.ParseRaw([]byte(body)),
	}, nil
}

func (s *stubClient) StartAudit(ctx context.Context, target string) (string, error) {
	if s.auditErr != nil {
		return "", s.auditErr
	}
	return s.auditID, nil
}

func (s *stubClient) TaskProgress(ctx context.Context, taskID string) (*provider.TaskStatus, error) {
	return &provider.TaskStatus{TaskID: taskID, Status: "finished", Progress: 100}, nil
}

func newTestServer(t *testing.T, client *stubClient) *Server {
	t.Helper()
	store, err := history.NewMemoryStore(0)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(store.Close)
	return NewWithClient(client, store, 100)
}

func postJSON(t *testing.T, srv *Server, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestRelatedKeywords_EmptyItemsYieldsNoResults(t *testing.T) {
	client := &stubClient{responses: map[provider.AnalysisType]string{
		provider.AnalysisRelated: `{"items": []}`,
	}}
	srv := newTestServer(t, client)

	resp := postJSON(t, srv, "/api/keywords/related",
		`{"keywords": ["seo tools"], "location": "Germany"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	results, ok := data["results"].([]interface{})
	if !ok {
		t.Fatalf("expected results array, got %v", data["results"])
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
	if body["error"] != nil {
		t.Errorf("empty result set is not an error, got %v", body["error"])
	}
	if id, _ := body["analysisId"].(string); id == "" {
		t.Error("expected an analysisId for a successful query")
	}
}

func TestRelatedKeywords_RowsNormalized(t *testing.T) {
	client := &stubClient{responses: map[provider.AnalysisType]string{
		provider.AnalysisRelated: `{"items": [
			{"keyword_data": {"keyword": "seo audit", "keyword_info": {
				"search_volume": 590, "competition_level": "MEDIUM", "cpc": 1.1
			}}}
		]}`,
	}}
	srv := newTestServer(t, client)

	body := decodeBody(t, postJSON(t, srv, "/api/keywords/related", `{"keywords": ["seo tools"]}`))
	rows := body["data"].(map[string]interface{})["results"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["keyword"] != "seo audit" || row["competition"] != 0.5 || row["searchVolume"] != float64(590) {
		t.Errorf("unexpected normalized row: %v", row)
	}
}

func TestValidationErrorIsBadRequest(t *testing.T) {
	srv := newTestServer(t, &stubClient{})

	resp := postJSON(t, srv, "/api/keywords/related", `{"keywords": ["ab"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "3 characters") {
		t.Errorf("expected keyword length message, got %v", body["error"])
	}
}

func TestConnectionErrorIsFlaggedAndLocalized(t *testing.T) {
	client := &stubClient{errs: map[provider.AnalysisType]error{
		provider.AnalysisRelated: &provider.ConnectionError{Err: errors.New("dial tcp: timeout")},
	}}
	srv := newTestServer(t, client)

	req := httptest.NewRequest(http.MethodPost, "/api/keywords/related",
		strings.NewReader(`{"keywords": ["seo tools"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "locale", Value: "de"})
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["isConnectionError"] != true {
		t.Error("expected isConnectionError flag")
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "Datenanbieter") {
		t.Errorf("expected german retry hint, got %v", body["error"])
	}
}

func TestBusinessErrorPassedVerbatim(t *testing.T) {
	client := &stubClient{errs: map[provider.AnalysisType]error{
		provider.AnalysisDifficulty: errors.New("provider returned status 400: unsupported location"),
	}}
	srv := newTestServer(t, client)

	resp := postJSON(t, srv, "/api/keywords/difficulty", `{"keywords": ["seo tools"]}`)
	body := decodeBody(t, resp)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "unsupported location") {
		t.Errorf("expected verbatim business error, got %v", body["error"])
	}
	if body["isConnectionError"] == true {
		t.Error("business error must not carry the connection flag")
	}
}

func TestOverviewPartialFailureBlanksOnlyItsSection(t *testing.T) {
	client := &stubClient{
		responses: map[provider.AnalysisType]string{
			provider.AnalysisResearch: `{"keyword_info": {"search_volume": 1000, "cpc": 0.5}}`,
			provider.AnalysisTrends:   `{"items": [{"date_from": "2024-01-01", "values": [10]}]}`,
		},
		errs: map[provider.AnalysisType]error{
			provider.AnalysisDifficulty: errors.New("provider returned status 500: internal"),
		},
	}
	srv := newTestServer(t, client)

	resp := postJSON(t, srv, "/api/keywords/overview", `{"keywords": ["seo tools"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for partial success, got %d", resp.StatusCode)
	}

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	if data["difficulty"] != nil {
		t.Errorf("failed section must be blank, got %v", data["difficulty"])
	}
	metric, ok := data["metric"].(map[string]interface{})
	if !ok || metric["searchVolume"] != float64(1000) {
		t.Errorf("expected volume section to survive, got %v", data["metric"])
	}
	trend, ok := data["trend"].([]interface{})
	if !ok || len(trend) != 1 {
		t.Errorf("expected trend section to survive, got %v", data["trend"])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubClient{})

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := srv.store.Append(context.Background(), history.Entry{
		Type:      "related",
		Input:     map[string]interface{}{"keyword": "x"},
		CreatedAt: created,
		Result:    json.RawMessage(`{"items": []}`),
	})
	if err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/history?type=related&limit=10", nil)
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	analyses, ok := body["analyses"].([]interface{})
	if !ok || len(analyses) != 1 {
		t.Fatalf("expected one analysis, got %v", body["analyses"])
	}

	entry := analyses[0].(map[string]interface{})
	input := entry["input"].(map[string]interface{})
	if input["keyword"] != "x" {
		t.Errorf("expected keyword x, got %v", input["keyword"])
	}
	if entry["created_at"] != "2024-01-01T00:00:00Z" {
		t.Errorf("expected formatted timestamp, got %v", entry["created_at"])
	}
	if entry["id"] == "" {
		t.Error("expected entry id")
	}
}

func TestHistoryRequiresType(t *testing.T) {
	srv := newTestServer(t, &stubClient{})
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/history", nil)
	resp, _ := srv.App().Test(req, 5000)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without type, got %d", resp.StatusCode)
	}
}

func TestAuditLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubClient{auditID: "task-123"})

	resp := postJSON(t, srv, "/api/serp/onpage-audit", `{"target": "https://example.com"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["taskId"] != "task-123" {
		t.Errorf("expected taskId task-123, got %v", body["taskId"])
	}

	req := httptest.NewRequest(http.MethodGet, "/api/serp/task/task-123", nil)
	progress, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if body := decodeBody(t, progress); body["status"] != "finished" {
		t.Errorf("expected finished status, got %v", body["status"])
	}
}

func TestUserSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, &stubClient{})

	req := httptest.NewRequest(http.MethodPut, "/api/user-settings", strings.NewReader(`{"locale": "fr"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cookieSet := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "locale" && cookie.Value == "fr" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Error("expected locale cookie to be mirrored")
	}

	get := httptest.NewRequest(http.MethodGet, "/api/user-settings", nil)
	getResp, _ := srv.App().Test(get, 5000)
	if body := decodeBody(t, getResp); body["locale"] != "fr" {
		t.Errorf("expected stored locale fr, got %v", body["locale"])
	}

	bad := httptest.NewRequest(http.MethodPut, "/api/user-settings", strings.NewReader(`{"locale": "ja"}`))
	bad.Header.Set("Content-Type", "application/json")
	badResp, _ := srv.App().Test(bad, 5000)
	if badResp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported locale, got %d", badResp.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubClient{})

	body := `{"keyword": "seo tools", "format": "csv", "rows": [
		{"keyword": "seo tools", "searchVolume": 8100},
		{"keyword": "a, b"}
	]}`
	resp := postJSON(t, srv, "/api/export", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected csv content type, got %s", ct)
	}
	disposition := resp.Header.Get("Content-Disposition")
	if !strings.Contains(disposition, "seo-tools-metrics-") || !strings.Contains(disposition, ".csv") {
		t.Errorf("unexpected disposition: %s", disposition)
	}

	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !bytes.Contains(data, []byte(`"a, b"`)) {
		t.Error("expected comma-bearing keyword to be quoted")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	srv := newTestServer(t, &stubClient{})
	resp := postJSON(t, srv, "/api/export", `{"format": "pdf", "rows": []}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUnknownAnalysisTypeIs404(t *testing.T) {
	srv := newTestServer(t, &stubClient{})
	resp := postJSON(t, srv, "/api/keywords/serp-audit", `{"keywords": ["seo tools"]}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestQueryAppendsHistory(t *testing.T) {
	client := &stubClient{responses: map[provider.AnalysisType]string{
		provider.AnalysisTrends: `{"items": []}`,
	}}
	srv := newTestServer(t, client)

	body := decodeBody(t, postJSON(t, srv, "/api/keywords/trends", `{"keywords": ["seo tools"]}`))
	analysisID, _ := body["analysisId"].(string)
	if analysisID == "" {
		t.Fatal("expected analysisId")
	}

	// History writes are fire-and-forget; poll briefly for the append.
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := srv.store.List(context.Background(), "trends", 10)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(entries) == 1 {
			if entries[0].ID != analysisID {
				t.Errorf("history id %s does not match response %s", entries[0].ID, analysisID)
			}
			if fmt.Sprint(entries[0].Input["keywords"]) != fmt.Sprint([]interface{}{"seo tools"}) {
				t.Errorf("unexpected stored input: %v", entries[0].Input)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("history entry was never appended")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
