// Package syncer runs the fetch → resolve-names → merge → persist → drain
// pipeline against the remote inbox backend. Cycles are strictly
// sequential; a reentrancy guard rejects overlapping runs instead of
// queueing them.
package syncer

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/ingest"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/merge"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/metrics"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// Fetcher is the slice of the backend client the pipeline needs.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]model.RawActivityRow, error)
	DeleteRows(ctx context.Context, batchIDs []string) error
}

// NameResolver maps user identifiers to display names, best-effort.
type NameResolver interface {
	Resolve(ctx context.Context, ids []string) map[string]string
}

// Result summarizes one completed cycle.
type Result struct {
	CycleID       string `json:"cycleId"`
	RowsFetched   int    `json:"rowsFetched"`
	UsersSeen     int    `json:"usersSeen"`
	BatchesMerged int    `json:"batchesMerged"`
	UsersTotal    int    `json:"usersTotal"`
	Drained       bool   `json:"drained"`
}

// Syncer owns the pipeline dependencies and the reentrancy guard.
type Syncer struct {
	fetcher  Fetcher
	resolver NameResolver
	store    store.Store
	drain    bool
	log      zerolog.Logger

	running atomic.Bool
}

// New constructs a Syncer. When drain is false the backend inbox is left
// untouched after a merge (useful for dry runs against shared backends).
func New(f Fetcher, r NameResolver, st store.Store, drain bool, log zerolog.Logger) *Syncer {
	return &Syncer{fetcher: f, resolver: r, store: st, drain: drain, log: log}
}

// Running reports whether a cycle is currently in flight.
func (s *Syncer) Running() bool { return s.running.Load() }

// Run executes one full cycle. Any stage failure aborts the remaining
// stages and leaves the local cache untouched; the cache is written exactly
// once, after the merge succeeds. A concurrent call fails fast with
// BusyError.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.SyncCyclesTotal.WithLabelValues("busy").Inc()
		return nil, model.BusyError{Message: "sync cycle already running"}
	}
	defer s.running.Store(false)

	started := time.Now()
	res := &Result{CycleID: uuid.New().String()}
	log := s.log.With().Str("cycle_id", res.CycleID).Logger()

	rows, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		metrics.SyncCyclesTotal.WithLabelValues("failure").Inc()
		return nil, pkgerrors.Wrap(err, "fetch activity rows")
	}
	res.RowsFetched = len(rows)
	metrics.RowsFetchedTotal.Add(float64(len(rows)))
	log.Info().Int("rows", len(rows)).Msg("fetched activity rows")

	existing := s.store.Load(ctx)
	if len(rows) == 0 {
		res.UsersTotal = len(existing)
		metrics.SyncCyclesTotal.WithLabelValues("success").Inc()
		metrics.SyncDurationSeconds.Observe(time.Since(started).Seconds())
		return res, nil
	}

	incoming := s.buildIncoming(ctx, rows)
	res.UsersSeen = len(incoming)

	merged := merge.Users(existing, incoming, log)
	res.BatchesMerged = ledgerSize(merged) - ledgerSize(existing)
	res.UsersTotal = len(merged)

	s.store.Save(ctx, merged)
	metrics.BatchesMergedTotal.Add(float64(res.BatchesMerged))
	metrics.TrackedUsers.Set(float64(len(merged)))

	if s.drain {
		if err := s.drainRows(ctx, rows); err != nil {
			// The merge is already persisted; dedup makes the refetch of
			// undrained rows harmless on the next cycle.
			metrics.SyncCyclesTotal.WithLabelValues("failure").Inc()
			return res, pkgerrors.Wrap(err, "drain processed rows")
		}
		res.Drained = true
	}

	metrics.SyncCyclesTotal.WithLabelValues("success").Inc()
	metrics.SyncDurationSeconds.Observe(time.Since(started).Seconds())
	log.Info().
		Int("users", res.UsersTotal).
		Int("batches_merged", res.BatchesMerged).
		Bool("drained", res.Drained).
		Msg("sync cycle complete")
	return res, nil
}

// buildIncoming normalizes raw rows into per-user incoming records with
// resolved display names.
func (s *Syncer) buildIncoming(ctx context.Context, rows []model.RawActivityRow) []model.User {
	byUser := make(map[string][]model.Batch)
	for _, row := range rows {
		if row.UserID == "" {
			continue
		}
		byUser[row.UserID] = append(byUser[row.UserID], ingest.NormalizeRow(row))
	}

	ids := make([]string, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	nameByID := s.resolver.Resolve(ctx, ids)

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u := merge.BuildUser(id, byUser[id])
		if name := nameByID[id]; name != "" {
			u.Name = name
		}
		users = append(users, u)
	}
	return users
}

func (s *Syncer) drainRows(ctx context.Context, rows []model.RawActivityRow) error {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.BatchID != "" {
			ids = append(ids, row.BatchID)
		}
	}
	return s.fetcher.DeleteRows(ctx, ids)
}

func ledgerSize(users []model.User) int {
	var n int
	for i := range users {
		n += len(users[i].Batches)
	}
	return n
}

// RunLoop triggers a cycle every interval until ctx is canceled. Failures
// are logged and the loop keeps going; the next tick retries.
func (s *Syncer) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	s.log.Info().Dur("interval", interval).Msg("sync loop starting")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sync loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil && !model.IsBusyError(err) {
				s.log.Error().Stack().Err(err).Msg("sync cycle failed")
			}
		}
	}
}
