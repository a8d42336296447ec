package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store
// implementation. makeStore should provide a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Empty state
	if got := s.Load(ctx); len(got) != 0 {
		t.Fatalf("Load on empty store: got %d users", len(got))
	}

	// Round trip
	ts := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	users := []model.User{{
		UserID:       "emp-1001",
		ID:           model.HashID("emp-1001"),
		Name:         "Ada Lovelace",
		ActiveTime:   model.TimePartsFromTotal(3700),
		Apps:         []model.AppUsage{{Name: "Chrome", Usage: 3600}},
		Websites:     []model.WebsiteUsage{{Name: "GitHub", URL: "GitHub", Usage: 1800}},
		LastActivity: &ts,
		Batches: []model.Batch{{
			BatchID: "b-1", Date: "2026-03-04",
			ActiveSeconds: 3700, TotalSeconds: 3700,
		}},
	}}
	s.Save(ctx, users)

	got := s.Load(ctx)
	if len(got) != 1 {
		t.Fatalf("Load after Save: got %d users", len(got))
	}
	u := got[0]
	if u.UserID != "emp-1001" || u.Name != "Ada Lovelace" {
		t.Fatalf("round trip identity mismatch: %+v", u)
	}
	if u.ActiveTime.Total != 3700 || u.ActiveTime.Hours != 1 {
		t.Fatalf("round trip time parts mismatch: %+v", u.ActiveTime)
	}
	if u.LastActivity == nil || !u.LastActivity.Equal(ts) {
		t.Fatalf("lastActivity not rehydrated: %v", u.LastActivity)
	}
	if len(u.Batches) != 1 || u.Batches[0].Key() != "b-1" {
		t.Fatalf("batch ledger lost in round trip: %+v", u.Batches)
	}

	// Overwrite, not append
	s.Save(ctx, users[:0])
	if got := s.Load(ctx); len(got) != 0 {
		t.Fatalf("Save must replace state, got %d users", len(got))
	}

	// Wipe is idempotent
	s.Save(ctx, users)
	if err := s.Wipe(ctx); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if err := s.Wipe(ctx); err != nil {
		t.Fatalf("Wipe twice: %v", err)
	}
	if got := s.Load(ctx); len(got) != 0 {
		t.Fatalf("Load after Wipe: got %d users", len(got))
	}

	if !s.Healthy(ctx) {
		t.Fatal("store should be healthy")
	}
}
