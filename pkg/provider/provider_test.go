package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestQueryRequestValidate(t *testing.T) {
	valid := QueryRequest{Type: AnalysisRelated, Keywords: []string{"seo tools"}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got: %v", err)
	}

	tests := []struct {
		name string
		req  QueryRequest
	}{
		{"unknown type", QueryRequest{Type: "bogus", Keywords: []string{"seo"}}},
		{"no keywords no domain", QueryRequest{Type: AnalysisRelated}},
		{"too many keywords", QueryRequest{Type: AnalysisOverview, Keywords: []string{"aaa", "bbb", "ccc", "ddd", "eee", "fff"}}},
		{"short keyword", QueryRequest{Type: AnalysisRelated, Keywords: []string{"ab"}}},
		{"whitespace keyword", QueryRequest{Type: AnalysisRelated, Keywords: []string{"  a  "}}},
		{"limit out of range", QueryRequest{Type: AnalysisRelated, Keywords: []string{"seo tools"}, Limit: 1001}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.req.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !IsValidation(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestQueryRequestValidate_ClickstreamBulkCap(t *testing.T) {
	keywords := make([]string, 1000)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("keyword %d", i)
	}

	bulk := QueryRequest{Type: AnalysisClickstreamVolume, Keywords: keywords}
	if err := bulk.Validate(); err != nil {
		t.Errorf("1000 keywords must pass for clickstream flows, got: %v", err)
	}

	bulk.Keywords = append(keywords, "one too many")
	if err := bulk.Validate(); err == nil {
		t.Error("expected error above 1000 keywords")
	}

	interactive := QueryRequest{Type: AnalysisRelated, Keywords: keywords[:6]}
	if err := interactive.Validate(); err == nil {
		t.Error("expected error above 5 keywords for interactive flows")
	}
}

func TestURLPoolRoundRobin(t *testing.T) {
	pool := NewURLPool("http://a.example/, http://b.example, ,http://c.example/")
	if pool.Size() != 3 {
		t.Fatalf("expected 3 endpoints, got %d", pool.Size())
	}

	seen := map[string]int{}
	for i := 0; i < 6; i++ {
		seen[pool.Next()]++
	}
	for _, url := range []string{"http://a.example", "http://b.example", "http://c.example"} {
		if seen[url] != 2 {
			t.Errorf("endpoint %s: expected 2 picks, got %d", url, seen[url])
		}
	}

	empty := NewURLPool("")
	if empty.Next() != "" {
		t.Error("empty pool must return empty string")
	}
}

func TestSimpleRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := NewSimpleRetry(3, time.Millisecond).Execute(context.Background(), func() error {
		calls++
		return errors.New("provider returned status 401: unauthorized")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("auth errors must not be retried, got %d calls", calls)
	}
}

func TestSimpleRetry_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := NewSimpleRetry(3, time.Millisecond).Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("request failed: timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestSimpleRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSimpleRetry(2, time.Millisecond).Execute(ctx, func() error {
		return errors.New("request failed: timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsConnection(t *testing.T) {
	if !IsConnection(&ConnectionError{Err: errors.New("dial tcp: refused")}) {
		t.Error("ConnectionError must classify as connection failure")
	}
	if !IsConnection(errors.New("request failed: timeout")) {
		t.Error("timeout errors must classify as connection failure")
	}
	if IsConnection(errors.New("provider returned status 400: bad keywords")) {
		t.Error("business errors must not classify as connection failure")
	}
	if IsConnection(nil) {
		t.Error("nil is not a connection failure")
	}
}

func TestFirstResult_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"dataforseo task envelope", `{"tasks": [{"result": [{"keyword_difficulty": 42}]}]}`},
		{"data object", `{"data": {"keyword_difficulty": 42}}`},
		{"bare result element", `{"keyword_difficulty": 42}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			raw := firstResult([]byte(test.body))
			if raw == nil {
				t.Fatal("expected unwrapped result")
			}
			if d, ok := raw.Number("keyword_difficulty"); !ok || d != 42 {
				t.Errorf("expected keyword_difficulty 42, got %v (present=%v)", d, ok)
			}
		})
	}

	if raw := firstResult([]byte("not json")); raw != nil {
		t.Errorf("expected nil for malformed body, got %v", raw)
	}
}

func TestParseAnalysisType(t *testing.T) {
	for typ := range analysisTypes {
		if _, ok := ParseAnalysisType(string(typ)); !ok {
			t.Errorf("type %s must parse", typ)
		}
	}
	if _, ok := ParseAnalysisType("serp-audit"); ok {
		t.Error("unknown type must not parse")
	}
}
