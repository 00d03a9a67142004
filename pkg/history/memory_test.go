package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func newStore(t *testing.T, maxEntries int) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(maxEntries)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	store := newStore(t, 0)

	entry, err := store.Append(context.Background(), Entry{
		Type:   "related",
		Input:  map[string]interface{}{"keyword": "seo tools"},
		Result: json.RawMessage(`{"items": []}`),
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected generated id")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected assigned timestamp")
	}

	got, ok, err := store.Get(context.Background(), entry.ID)
	if err != nil || !ok {
		t.Fatalf("expected entry by id, ok=%v err=%v", ok, err)
	}
	if got.Input["keyword"] != "seo tools" {
		t.Errorf("unexpected input: %v", got.Input)
	}
}

func TestAppendRequiresType(t *testing.T) {
	store := newStore(t, 0)
	if _, err := store.Append(context.Background(), Entry{}); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestListNewestFirstAndCapped(t *testing.T) {
	store := newStore(t, 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		_, err := store.Append(context.Background(), Entry{
			Type:      "difficulty",
			Input:     map[string]interface{}{"n": i},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	entries, err := store.List(context.Background(), "difficulty", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Errorf("entries not newest-first at index %d", i)
		}
	}
	if entries[0].Input["n"] != 14 {
		t.Errorf("expected newest entry n=14, got %v", entries[0].Input["n"])
	}
}

func TestListDefaultsAndHardCap(t *testing.T) {
	store := newStore(t, 0)
	for i := 0; i < HardLimit+20; i++ {
		if _, err := store.Append(context.Background(), Entry{Type: "trends"}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	entries, err := store.List(context.Background(), "trends", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != DefaultLimit {
		t.Errorf("limit 0: expected DefaultLimit entries, got %d", len(entries))
	}

	entries, err = store.List(context.Background(), "trends", HardLimit*5)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != HardLimit {
		t.Errorf("oversized limit: expected HardLimit entries, got %d", len(entries))
	}
}

func TestPerTypeRetentionEvictsOldest(t *testing.T) {
	store := newStore(t, 3)

	var first Entry
	for i := 0; i < 4; i++ {
		entry, err := store.Append(context.Background(), Entry{
			Type:  "overview",
			Input: map[string]interface{}{"n": i},
		})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if i == 0 {
			first = entry
		}
	}

	if _, ok, _ := store.Get(context.Background(), first.ID); ok {
		t.Error("oldest entry should have been evicted")
	}

	entries, _ := store.List(context.Background(), "overview", 10)
	if len(entries) != 3 {
		t.Errorf("expected 3 retained entries, got %d", len(entries))
	}
}

func TestListIsolatesTypes(t *testing.T) {
	store := newStore(t, 0)
	for i, typ := range []string{"related", "related", "trends"} {
		if _, err := store.Append(context.Background(), Entry{Type: typ, Input: map[string]interface{}{"n": i}}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	related, _ := store.List(context.Background(), "related", 10)
	trends, _ := store.List(context.Background(), "trends", 10)
	none, _ := store.List(context.Background(), "demography", 10)

	if len(related) != 2 || len(trends) != 1 || len(none) != 0 {
		t.Errorf("unexpected per-type counts: related=%d trends=%d none=%d",
			len(related), len(trends), len(none))
	}
}

func TestListAfterAppendSeesNewEntry(t *testing.T) {
	// The cache keys carry a per-type generation, so a list issued right
	// after an append must reflect the append even when the previous list
	// result was cached.
	store := newStore(t, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Append(ctx, Entry{Type: "research", Input: map[string]interface{}{"n": i}}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		entries, err := store.List(ctx, "research", 10)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(entries) != i+1 {
			t.Errorf("after append %d: expected %d entries, got %d", i, i+1, len(entries))
		}
		if fmt.Sprint(entries[0].Input["n"]) != fmt.Sprint(i) {
			t.Errorf("after append %d: newest entry is %v", i, entries[0].Input["n"])
		}
	}
}
