package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"

	"keywordlens/pkg/logger"
	"keywordlens/pkg/normalize"
)

// Config holds provider client configuration.
type Config struct {
	Endpoints  string        `json:"endpoints"`
	APIKey     string        `json:"api_key"`
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`
}

// endpointPaths maps each analysis flow to its provider path.
var endpointPaths = map[AnalysisType]string{
	AnalysisRelated:                 "/v1/keywords/related",
	AnalysisSuggestions:             "/v1/keywords/suggestions",
	AnalysisIdeas:                   "/v1/keywords/ideas",
	AnalysisDifficulty:              "/v1/keywords/difficulty",
	AnalysisOverview:                "/v1/keywords/overview",
	AnalysisResearch:                "/v1/keywords/research",
	AnalysisPerformance:             "/v1/keywords/performance",
	AnalysisCompetition:             "/v1/keywords/competition",
	AnalysisTrends:                  "/v1/keywords/trends",
	AnalysisClickstreamVolume:       "/v1/clickstream/search_volume",
	AnalysisClickstreamGlobalVolume: "/v1/clickstream/global_search_volume",
	AnalysisTrendsExplore:           "/v1/trends/explore",
	AnalysisTrendsDemography:        "/v1/trends/demography",
	AnalysisBingAudience:            "/v1/bing/audience_estimation",
}

type httpClient struct {
	pool    *URLPool
	apiKey  string
	timeout time.Duration
	retry   *SimpleRetry
	client  *fasthttp.Client
	log     *logger.Logger

	totalRequests  uint64
	failedRequests uint64
}

// NewClient creates the fasthttp-backed provider client.
func NewClient(cfg Config) (Client, error) {
	if cfg.Endpoints == "" {
		return nil, fmt.Errorf("provider endpoints are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &httpClient{
		pool:    NewURLPool(cfg.Endpoints),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		retry:   NewSimpleRetry(cfg.MaxRetries, cfg.RetryDelay),
		client: &fasthttp.Client{
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
		},
		log: logger.GetLogger().Component("provider_client"),
	}, nil
}

// Query posts one task payload for the request's analysis flow and unwraps
// the first result element for normalization.
func (c *httpClient) Query(ctx context.Context, req QueryRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	atomic.AddUint64(&c.totalRequests, 1)
	start := time.Now()

	path, ok := endpointPaths[req.Type]
	if !ok {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("no provider endpoint for %q", req.Type)}
	}

	var result *Result
	err := c.retry.Execute(ctx, func() error {
		body, err := c.post(path, taskPayload(req))
		if err != nil {
			return err
		}
		result = &Result{Body: body, First: firstResult(body)}
		return nil
	})
	if err != nil {
		atomic.AddUint64(&c.failedRequests, 1)
		c.log.WithError(err).WithField("analysis_type", req.Type).Error("Provider query failed")
		if IsConnection(err) {
			return nil, &ConnectionError{Err: err}
		}
		return nil, err
	}

	c.log.WithFields(map[string]interface{}{
		"analysis_type": req.Type,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Debug("Provider query completed")
	return result, nil
}

// StartAudit submits an asynchronous on-page audit and returns the provider
// task id to poll.
func (c *httpClient) StartAudit(ctx context.Context, target string) (string, error) {
	if target == "" {
		return "", &ValidationError{Field: "target", Reason: "audit target is required"}
	}

	var taskID string
	err := c.retry.Execute(ctx, func() error {
		body, err := c.post("/v1/onpage/task", map[string]interface{}{"target": target})
		if err != nil {
			return err
		}

		raw := normalize.ParseRaw(body)
		if id, ok := firstTask(raw).Str("id"); ok {
			taskID = id
			return nil
		}
		return fmt.Errorf("audit response carried no task id")
	})
	if err != nil {
		if IsConnection(err) {
			return "", &ConnectionError{Err: err}
		}
		return "", err
	}
	return taskID, nil
}

// TaskProgress polls an audit task.
func (c *httpClient) TaskProgress(ctx context.Context, taskID string) (*TaskStatus, error) {
	if taskID == "" {
		return nil, &ValidationError{Field: "taskId", Reason: "task id is required"}
	}

	var status *TaskStatus
	err := c.retry.Execute(ctx, func() error {
		body, err := c.get("/v1/onpage/summary/" + taskID)
		if err != nil {
			return err
		}

		task := firstTask(normalize.ParseRaw(body))
		s := &TaskStatus{TaskID: taskID, Status: "in_progress", Result: body}
		if st, ok := task.Str("status"); ok {
			s.Status = st
		}
		if progress, ok := task.Number("progress"); ok {
			s.Progress = int(progress)
		}
		status = s
		return nil
	})
	if err != nil {
		if IsConnection(err) {
			return nil, &ConnectionError{Err: err}
		}
		return nil, err
	}
	return status, nil
}

// taskPayload builds the provider task body, dropping zero-valued fields.
func taskPayload(req QueryRequest) map[string]interface{} {
	payload := map[string]interface{}{}
	if len(req.Keywords) > 0 {
		payload["keywords"] = req.Keywords
	}
	if req.Domain != "" {
		payload["target"] = req.Domain
	}
	if req.Location != "" {
		payload["location_name"] = req.Location
	}
	if req.Language != "" {
		payload["language_name"] = req.Language
	}
	if req.Limit > 0 {
		payload["limit"] = req.Limit
	}
	if req.DateFrom != "" {
		payload["date_from"] = req.DateFrom
	}
	if req.DateTo != "" {
		payload["date_to"] = req.DateTo
	}
	if req.Device != "" {
		payload["device"] = req.Device
	}
	if req.Bid > 0 {
		payload["bid"] = req.Bid
	}
	if req.Budget > 0 {
		payload["budget"] = req.Budget
	}
	return payload
}

func (c *httpClient) post(path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal([]interface{}{payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return c.do(fasthttp.MethodPost, path, body)
}

func (c *httpClient) get(path string) ([]byte, error) {
	return c.do(fasthttp.MethodGet, path, nil)
}

func (c *httpClient) do(method, path string, body []byte) ([]byte, error) {
	base := c.pool.Next()
	if base == "" {
		return nil, fmt.Errorf("no provider endpoints configured")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(base + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "keywordlens/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.SetBody(body)
	}

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

// firstTask unwraps tasks[0] from a provider envelope; payloads without the
// envelope return the object itself.
func firstTask(raw normalize.Raw) normalize.Raw {
	if task, ok := raw.First("tasks"); ok {
		return task
	}
	return raw
}

// firstResult unwraps the first result element from a provider response,
// tolerating three envelope shapes: tasks[0].result[0], a bare data object,
// and a response that is already the result element.
func firstResult(body []byte) normalize.Raw {
	raw := normalize.ParseRaw(body)
	if raw == nil {
		return nil
	}
	if result, ok := firstTask(raw).First("result"); ok {
		return result
	}
	if data, ok := raw.Object("data"); ok {
		return data
	}
	return raw
}
