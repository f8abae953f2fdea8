// Package store provides the client-local key/value store backing session
// state. Two scopes exist: the persistent scope survives until the store
// file is removed, the session scope is cleared on explicit reset. Values
// are opaque JSON blobs, read and overwritten wholesale.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no value in the given scope.
var ErrNotFound = errors.New("store: key not found")

// Scope selects one of the two storage buckets.
type Scope string

const (
	// ScopePersistent holds values that survive across sessions, such as
	// the client identifier.
	ScopePersistent Scope = "persistent"
	// ScopeSession holds values owned by the current planning session.
	ScopeSession Scope = "session"
)

// Well-known keys.
const (
	// KeySessionID is the persistent client identifier slot.
	KeySessionID = "session_id"
	// KeySessionContext is the serialized planning-session snapshot slot.
	KeySessionContext = "session_context"
	// KeyChatTranscript is the serialized chat transcript slot.
	KeyChatTranscript = "chat_transcript"
)

// Store is the client-local storage contract.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, scope Scope, key string) ([]byte, error)
	// Put overwrites the value for key.
	Put(ctx context.Context, scope Scope, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, scope Scope, key string) error
	// ClearSession removes every value in the session scope.
	ClearSession(ctx context.Context) error
	// Close releases the underlying resources.
	Close() error
}
