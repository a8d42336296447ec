// Package jsonfile persists the merged user state as one JSON-serialized
// array in a file named after the cache key, mirroring the dashboard's
// fixed-key local storage.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/ingest"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// Store is a file-backed store.Store.
type Store struct {
	path string
	log  zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// New creates a Store writing to <dataDir>/<cacheKey>.json.
func New(dataDir, cacheKey string, log zerolog.Logger) *Store {
	return &Store{
		path: filepath.Join(dataDir, cacheKey+".json"),
		log:  log,
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the persisted user array. Missing files, unreadable JSON, and
// non-array payloads all read as empty state; the caller never sees an
// error. Loaded websites get their identities re-cleaned so state persisted
// before a cleaning-rule change self-heals.
func (s *Store) Load(ctx context.Context) []model.User {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cache unreadable, starting empty")
		}
		return []model.User{}
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("cache corrupt, starting empty")
		return []model.User{}
	}
	if users == nil {
		return []model.User{}
	}

	for i := range users {
		healUser(&users[i])
	}
	return users
}

// Save writes the full state atomically (temp file + rename) so a failed
// write leaves the previous cache intact. Failures are logged and swallowed.
func (s *Store) Save(ctx context.Context, users []model.User) {
	if users == nil {
		users = []model.User{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache marshal failed, keeping previous state")
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.log.Warn().Err(err).Str("path", tmp).Msg("cache write failed, keeping previous state")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("cache rename failed, keeping previous state")
		_ = os.Remove(tmp)
	}
}

// Wipe removes the cache file. A missing file is not an error.
func (s *Store) Wipe(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Healthy reports whether the cache directory exists and is a directory.
func (s *Store) Healthy(ctx context.Context) bool {
	info, err := os.Stat(filepath.Dir(s.path))
	return err == nil && info.IsDir()
}

// healUser re-cleans website identities and drops display decompositions
// out of sync with their totals.
func healUser(u *model.User) {
	if u.ID == 0 && u.UserID != "" {
		u.ID = model.HashID(u.UserID)
	}
	u.ActiveTime = model.TimePartsFromTotal(u.ActiveTime.Total)
	u.InactiveTime = model.TimePartsFromTotal(u.InactiveTime.Total)

	for i := range u.Websites {
		w := &u.Websites[i]
		if clean := ingest.CleanName(w.Name); clean != "" {
			w.Name = clean
		}
		if clean := ingest.CleanName(w.URL); clean != "" {
			w.URL = clean
		}
	}
	if u.Apps == nil {
		u.Apps = []model.AppUsage{}
	}
	if u.Websites == nil {
		u.Websites = []model.WebsiteUsage{}
	}
	if u.Batches == nil {
		u.Batches = []model.Batch{}
	}
}
