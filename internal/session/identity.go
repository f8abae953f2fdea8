package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/logihub/logihub/internal/store"
)

// Identity lazily establishes the client-scoped opaque identifier. The
// identifier is generated once, persisted indefinitely, and reused as the
// correlation key on every backend call. There is no expiry; Rotate exists
// for the day multi-session support is needed.
type Identity struct {
	store  store.Store
	logger zerolog.Logger

	mu sync.Mutex
	id string
}

// NewIdentity creates an identity provider over the given store.
func NewIdentity(st store.Store, logger zerolog.Logger) *Identity {
	return &Identity{store: st, logger: logger}
}

// ID returns the session identifier, creating and persisting one on first
// use. Callers must treat an error as a precondition failure and report the
// session as still initializing rather than calling the backend.
func (i *Identity) ID(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id, nil
	}

	raw, err := i.store.Get(ctx, store.ScopePersistent, store.KeySessionID)
	if err == nil && len(raw) > 0 {
		i.id = string(raw)
		return i.id, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	id := "sid_" + uuid.New().String()
	if err := i.store.Put(ctx, store.ScopePersistent, store.KeySessionID, []byte(id)); err != nil {
		return "", err
	}

	i.logger.Info().Str("session_id", id).Msg("created new session identifier")
	i.id = id
	return id, nil
}

// Rotate discards the current identifier and persists a fresh one.
func (i *Identity) Rotate(ctx context.Context) (string, error) {
	i.mu.Lock()
	i.id = ""
	i.mu.Unlock()

	if err := i.store.Delete(ctx, store.ScopePersistent, store.KeySessionID); err != nil {
		return "", err
	}
	return i.ID(ctx)
}
