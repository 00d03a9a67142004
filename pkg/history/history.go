package history

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one persisted analysis: the query input that produced it and the
// provider's raw result, stored opaque so it can be re-normalized on read.
type Entry struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Input     map[string]interface{} `json:"input"`
	CreatedAt time.Time              `json:"created_at"`
	Result    json.RawMessage        `json:"result"`
}

// DefaultLimit is what history views request; HardLimit caps any caller.
const (
	DefaultLimit = 10
	HardLimit    = 100
)

// Store keeps a bounded per-type history of analyses. List returns entries
// newest first, never more than the (capped) limit.
type Store interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, analysisType string, limit int) ([]Entry, error)
	Get(ctx context.Context, id string) (Entry, bool, error)
}
