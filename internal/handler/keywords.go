package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"keywordlens/pkg/history"
	"keywordlens/pkg/i18n"
	"keywordlens/pkg/normalize"
	"keywordlens/pkg/provider"
)

// Keywords handles POST /api/keywords/:analysis. The body is the typed
// query payload; the :analysis segment selects the flow. On success the
// provider's first result element is normalized into the flow's view model
// and the analysis is recorded to history fire-and-forget.
func (h *Handler) Keywords(c *fiber.Ctx) error {
	analysisType, ok := provider.ParseAnalysisType(c.Params("analysis"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(queryResponse{
			Error: fmt.Sprintf("unknown analysis type %q", c.Params("analysis")),
		})
	}

	var req provider.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(queryResponse{
			Error: i18n.T(requestLocale(c), i18n.KeyValidationFailed) + ": " + err.Error(),
		})
	}
	req.Type = analysisType

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(queryResponse{
			Error: i18n.T(requestLocale(c), i18n.KeyValidationFailed) + ": " + err.Error(),
		})
	}

	if analysisType == provider.AnalysisOverview {
		return h.overview(c, req)
	}

	result, err := h.provider.Query(c.Context(), req)
	if err != nil {
		return h.queryError(c, err)
	}

	entry := h.recordAnalysis(req, result.Body)
	return c.JSON(queryResponse{
		Data:       h.viewModel(analysisType, result.First, primaryKeyword(req)),
		AnalysisID: entry.ID,
	})
}

// overview bundles volume, difficulty and trend sub-queries. Each section is
// normalized independently; a failed sub-query blanks only its own section
// and the response still succeeds when any section resolved.
func (h *Handler) overview(c *fiber.Ctx, req provider.QueryRequest) error {
	keyword := primaryKeyword(req)
	sections := map[string]interface{}{}
	resolved := 0
	var firstErr error

	sub := func(typ provider.AnalysisType, name string, build func(normalize.Raw) interface{}) {
		subReq := req
		subReq.Type = typ
		result, err := h.provider.Query(c.Context(), subReq)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			h.log.WithError(err).WithField("section", name).Warn("Overview sub-query failed")
			sections[name] = nil
			return
		}
		sections[name] = build(result.First)
		resolved++
	}

	sub(provider.AnalysisResearch, "metric", func(raw normalize.Raw) interface{} {
		return h.norm.Metric(keyword, raw)
	})
	sub(provider.AnalysisDifficulty, "difficulty", func(raw normalize.Raw) interface{} {
		return h.norm.Difficulty(raw)
	})
	sub(provider.AnalysisTrends, "trend", func(raw normalize.Raw) interface{} {
		return h.norm.TrendSeries(raw)
	})

	if resolved == 0 {
		return h.queryError(c, firstErr)
	}

	body, _ := json.Marshal(sections)
	entry := h.recordAnalysis(req, body)
	return c.JSON(queryResponse{Data: sections, AnalysisID: entry.ID})
}

// viewModel maps one analysis flow to its normalized shape.
func (h *Handler) viewModel(typ provider.AnalysisType, raw normalize.Raw, keyword string) interface{} {
	switch typ {
	case provider.AnalysisDifficulty:
		return map[string]interface{}{"difficulty": h.norm.Difficulty(raw)}
	case provider.AnalysisTrends, provider.AnalysisTrendsExplore:
		return map[string]interface{}{"trend": h.norm.TrendSeries(raw)}
	case provider.AnalysisTrendsDemography, provider.AnalysisBingAudience:
		return map[string]interface{}{"demographics": h.norm.Demographics(raw)}
	case provider.AnalysisClickstreamVolume, provider.AnalysisClickstreamGlobalVolume:
		return map[string]interface{}{"metric": h.norm.Metric(keyword, raw)}
	default:
		// related, suggestions, ideas, research, performance, competition
		return map[string]interface{}{"results": h.norm.RelatedKeywords(raw)}
	}
}

// recordAnalysis appends to history without blocking the response. The id
// is assigned here so the response can reference the entry even though the
// write completes later; append failures are logged and never surfaced.
func (h *Handler) recordAnalysis(req provider.QueryRequest, body json.RawMessage) history.Entry {
	entry := history.Entry{
		ID:        uuid.NewString(),
		Type:      string(req.Type),
		Input:     analysisInput(req),
		CreatedAt: time.Now().UTC(),
		Result:    body,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := h.store.Append(ctx, entry); err != nil {
			h.log.WithError(err).WithField("analysis_type", entry.Type).Warn("Failed to record analysis history")
		}
	}()

	return entry
}

func analysisInput(req provider.QueryRequest) map[string]interface{} {
	input := map[string]interface{}{}
	data, err := json.Marshal(req)
	if err == nil {
		_ = json.Unmarshal(data, &input)
	}
	delete(input, "type")
	return input
}

func primaryKeyword(req provider.QueryRequest) string {
	if len(req.Keywords) > 0 {
		return req.Keywords[0]
	}
	return req.Domain
}

// queryError maps provider failures onto the error taxonomy: validation to
// 400, connection failures to 502 with the localized retry hint and the
// isConnectionError flag, business errors verbatim.
func (h *Handler) queryError(c *fiber.Ctx, err error) error {
	locale := requestLocale(c)

	switch {
	case provider.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(queryResponse{
			Error: i18n.T(locale, i18n.KeyValidationFailed) + ": " + err.Error(),
		})
	case provider.IsConnection(err):
		return c.Status(fiber.StatusBadGateway).JSON(queryResponse{
			Error:             i18n.T(locale, i18n.KeyConnectionError),
			IsConnectionError: true,
		})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(queryResponse{Error: err.Error()})
	}
}
