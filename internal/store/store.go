// Package store defines the local cache of merged per-user state.
// Implementations live under internal/store/<driver>/ (e.g., jsonfile).
package store

import (
	"context"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

// Store is the durable local cache of the cumulative per-user state. The
// contract follows the dashboard's storage semantics: loading never fails
// into the caller (missing, corrupt, or non-array payloads read as empty
// state) and saving is best-effort.
type Store interface {
	// Load returns the persisted users, or an empty slice when the cache
	// is missing or unreadable. The returned slice is self-healed: website
	// identities are re-cleaned and lastActivity values rehydrated.
	Load(ctx context.Context) []model.User

	// Save replaces the persisted state with users. Failures are swallowed
	// after logging; the previously persisted state stays intact.
	Save(ctx context.Context, users []model.User)

	// Wipe removes all persisted state ("clear all local data").
	Wipe(ctx context.Context) error

	// Healthy reports whether the backing medium is usable.
	Healthy(ctx context.Context) bool
}
