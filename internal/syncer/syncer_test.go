package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

// --- Fakes ---

type fakeFetcher struct {
	rows      []model.RawActivityRow
	fetchErr  error
	deleteErr error
	deleted   []string
	fetches   int
}

func (f *fakeFetcher) FetchAll(ctx context.Context) ([]model.RawActivityRow, error) {
	f.fetches++
	return f.rows, f.fetchErr
}

func (f *fakeFetcher) DeleteRows(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

type fakeResolver struct {
	names map[string]string
}

func (f *fakeResolver) Resolve(ctx context.Context, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out[id] = n
		} else {
			out[id] = id
		}
	}
	return out
}

type fakeStore struct {
	mu     sync.Mutex
	users  []model.User
	saves  int
	wipes  int
	loaded int
}

func (f *fakeStore) Load(ctx context.Context) []model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded++
	return f.users
}

func (f *fakeStore) Save(ctx context.Context, users []model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.users = users
}

func (f *fakeStore) Wipe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wipes++
	f.users = nil
	return nil
}

func (f *fakeStore) Healthy(ctx context.Context) bool { return true }

func sampleRows() []model.RawActivityRow {
	return []model.RawActivityRow{
		{
			UserID: "1001", BatchID: "b-1", DateTracked: "2026-03-04",
			BatchStartTime: "2026-03-04T09:00:00Z", BatchEndTime: "2026-03-04T09:10:00Z",
			ActiveTimeSeconds: 540, InactiveTimeSeconds: 60, TotalTimeSeconds: 600,
			ActivityData: `{"ap":{"chrome":540}}`,
		},
		{
			UserID: "1002", BatchID: "b-2", DateTracked: "2026-03-04",
			BatchStartTime: "2026-03-04T10:00:00Z", BatchEndTime: "2026-03-04T10:05:00Z",
			ActiveTimeSeconds: 300, TotalTimeSeconds: 300,
		},
	}
}

func newSyncer(f *fakeFetcher, st *fakeStore, drain bool) *Syncer {
	r := &fakeResolver{names: map[string]string{"1001": "Ada Lovelace"}}
	return New(f, r, st, drain, zerolog.Nop())
}

func TestRun_FullCycle(t *testing.T) {
	f := &fakeFetcher{rows: sampleRows()}
	st := &fakeStore{}
	s := newSyncer(f, st, true)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.RowsFetched)
	assert.Equal(t, 2, res.UsersSeen)
	assert.Equal(t, 2, res.BatchesMerged)
	assert.Equal(t, 2, res.UsersTotal)
	assert.True(t, res.Drained)
	assert.NotEmpty(t, res.CycleID)

	require.Equal(t, 1, st.saves)
	require.Len(t, st.users, 2)
	// Users arrive sorted by id; resolved name applied, raw id fallback kept.
	assert.Equal(t, "Ada Lovelace", st.users[0].Name)
	assert.Equal(t, "1002", st.users[1].Name)

	assert.Equal(t, []string{"b-1", "b-2"}, f.deleted)
}

func TestRun_FetchFailureLeavesStateUntouched(t *testing.T) {
	f := &fakeFetcher{fetchErr: errors.New("backend down")}
	st := &fakeStore{}
	s := newSyncer(f, st, true)

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, st.saves)
	assert.Empty(t, f.deleted)
}

func TestRun_EmptyInboxIsSuccessfulNoop(t *testing.T) {
	f := &fakeFetcher{}
	st := &fakeStore{users: []model.User{{UserID: "1001"}}}
	s := newSyncer(f, st, true)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.RowsFetched)
	assert.Equal(t, 1, res.UsersTotal)
	assert.Zero(t, st.saves)
	assert.Empty(t, f.deleted)
}

func TestRun_DrainFailureSurfacesAfterPersist(t *testing.T) {
	f := &fakeFetcher{rows: sampleRows(), deleteErr: errors.New("delete rejected")}
	st := &fakeStore{}
	s := newSyncer(f, st, true)

	res, err := s.Run(context.Background())
	require.Error(t, err)
	// Merge result is already persisted; the cycle reports what it did.
	require.NotNil(t, res)
	assert.False(t, res.Drained)
	assert.Equal(t, 1, st.saves)
}

func TestRun_DrainDisabledLeavesInbox(t *testing.T) {
	f := &fakeFetcher{rows: sampleRows()}
	st := &fakeStore{}
	s := newSyncer(f, st, false)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Drained)
	assert.Empty(t, f.deleted)
}

func TestRun_RefetchOfSameRowsIsIdempotent(t *testing.T) {
	f := &fakeFetcher{rows: sampleRows()}
	st := &fakeStore{}
	s := newSyncer(f, st, false)

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	first := st.users

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.BatchesMerged)
	assert.Equal(t, first, st.users)
}

func TestRun_ReentrancyGuard(t *testing.T) {
	st := &fakeStore{}
	s := newSyncer(&fakeFetcher{}, st, false)

	s.running.Store(true)
	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, model.IsBusyError(err))

	s.running.Store(false)
	_, err = s.Run(context.Background())
	assert.NoError(t, err)
}
