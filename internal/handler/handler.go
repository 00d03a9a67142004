package handler

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"keywordlens/pkg/history"
	"keywordlens/pkg/logger"
	"keywordlens/pkg/normalize"
	"keywordlens/pkg/provider"
)

// Handler carries the collaborators behind the REST surface.
type Handler struct {
	provider      provider.Client
	store         history.Store
	norm          *normalize.Normalizer
	log           *logger.Logger
	maxExportRows int

	settingsMu sync.RWMutex
	locale     string
}

// Config for the handler layer.
type Config struct {
	MaxExportRows int
}

func New(client provider.Client, store history.Store, cfg Config) *Handler {
	if cfg.MaxExportRows <= 0 {
		cfg.MaxExportRows = 5000
	}
	return &Handler{
		provider:      client,
		store:         store,
		norm:          normalize.NewNormalizer(),
		log:           logger.GetLogger().Component("handler"),
		maxExportRows: cfg.MaxExportRows,
	}
}

// queryResponse is the envelope every analysis endpoint returns. Error and
// the connection flag are only present on failure.
type queryResponse struct {
	Data              interface{} `json:"data,omitempty"`
	AnalysisID        string      `json:"analysisId,omitempty"`
	Error             string      `json:"error,omitempty"`
	IsConnectionError bool        `json:"isConnectionError,omitempty"`
}

func requestLocale(c *fiber.Ctx) string {
	if locale, ok := c.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	return "en"
}
