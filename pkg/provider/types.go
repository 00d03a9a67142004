package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"keywordlens/pkg/normalize"
)

// AnalysisType identifies one keyword analysis flow. The values double as
// API route segments and as the history type key.
type AnalysisType string

const (
	AnalysisRelated                 AnalysisType = "related"
	AnalysisSuggestions             AnalysisType = "suggestions"
	AnalysisIdeas                   AnalysisType = "ideas"
	AnalysisDifficulty              AnalysisType = "difficulty"
	AnalysisOverview                AnalysisType = "overview"
	AnalysisResearch                AnalysisType = "research"
	AnalysisPerformance             AnalysisType = "performance"
	AnalysisCompetition             AnalysisType = "competition"
	AnalysisTrends                  AnalysisType = "trends"
	AnalysisClickstreamVolume       AnalysisType = "clickstream-volume"
	AnalysisClickstreamGlobalVolume AnalysisType = "clickstream-global-volume"
	AnalysisTrendsExplore           AnalysisType = "dataforseo-trends-explore"
	AnalysisTrendsDemography        AnalysisType = "dataforseo-trends-demography"
	AnalysisBingAudience            AnalysisType = "bing-audience-estimation"
)

var analysisTypes = map[AnalysisType]bool{
	AnalysisRelated:                 true,
	AnalysisSuggestions:             true,
	AnalysisIdeas:                   true,
	AnalysisDifficulty:              true,
	AnalysisOverview:                true,
	AnalysisResearch:                true,
	AnalysisPerformance:             true,
	AnalysisCompetition:             true,
	AnalysisTrends:                  true,
	AnalysisClickstreamVolume:       true,
	AnalysisClickstreamGlobalVolume: true,
	AnalysisTrendsExplore:           true,
	AnalysisTrendsDemography:        true,
	AnalysisBingAudience:            true,
}

// ParseAnalysisType validates a route segment against the known flows.
func ParseAnalysisType(s string) (AnalysisType, bool) {
	typ := AnalysisType(s)
	return typ, analysisTypes[typ]
}

// clickstream flows accept bulk keyword lists; everything else is capped at
// the interactive limit.
const (
	maxKeywords            = 5
	maxClickstreamKeywords = 1000
	minKeywordLength       = 3
	maxLimit               = 1000
)

// QueryRequest is the typed query payload built from user-supplied form
// fields. Optional fields stay zero and are omitted from the provider task.
type QueryRequest struct {
	Type      AnalysisType `json:"type"`
	Keywords  []string     `json:"keywords,omitempty"`
	Domain    string       `json:"domain,omitempty"`
	Location  string       `json:"location,omitempty"`
	Language  string       `json:"language,omitempty"`
	Limit     int          `json:"limit,omitempty"`
	DateFrom  string       `json:"dateFrom,omitempty"`
	DateTo    string       `json:"dateTo,omitempty"`
	Device    string       `json:"device,omitempty"`
	Bid       float64      `json:"bid,omitempty"`
	Budget    float64      `json:"budget,omitempty"`
}

// Validate enforces the client-side rules before any network call: keyword
// count per flow, minimum keyword length, and the result limit range.
func (r QueryRequest) Validate() error {
	if _, ok := ParseAnalysisType(string(r.Type)); !ok {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown analysis type %q", r.Type)}
	}

	if len(r.Keywords) == 0 && r.Domain == "" {
		return &ValidationError{Field: "keywords", Reason: "at least one keyword or a domain is required"}
	}

	keywordCap := maxKeywords
	if r.Type == AnalysisClickstreamVolume || r.Type == AnalysisClickstreamGlobalVolume {
		keywordCap = maxClickstreamKeywords
	}
	if len(r.Keywords) > keywordCap {
		return &ValidationError{Field: "keywords", Reason: fmt.Sprintf("at most %d keywords allowed", keywordCap)}
	}

	for _, keyword := range r.Keywords {
		if len(strings.TrimSpace(keyword)) < minKeywordLength {
			return &ValidationError{Field: "keywords", Reason: fmt.Sprintf("keyword %q is shorter than %d characters", keyword, minKeywordLength)}
		}
	}

	if r.Limit < 0 || r.Limit > maxLimit {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("limit must be between 0 and %d", maxLimit)}
	}

	return nil
}

// Result carries one provider response: the full body for history storage
// and the first result element, already unwrapped, for normalization.
type Result struct {
	Body  json.RawMessage
	First normalize.Raw
}

// TaskStatus reports progress of an asynchronous on-page audit task.
type TaskStatus struct {
	TaskID   string          `json:"taskId"`
	Status   string          `json:"status"`
	Progress int             `json:"progress"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// Client issues queries against the SEO data provider.
type Client interface {
	Query(ctx context.Context, req QueryRequest) (*Result, error)
	StartAudit(ctx context.Context, target string) (string, error)
	TaskProgress(ctx context.Context, taskID string) (*TaskStatus, error)
}
