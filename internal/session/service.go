package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/logihub/logihub/internal/planner"
	"github.com/logihub/logihub/internal/store"
)

// Service mediates all reads and writes of the session snapshot and chat
// transcript. The planner and copilot views never touch the store directly;
// the planner publishes snapshot updates and the copilot subscribes, which
// replaces point-to-point storage reads between the two view machines.
type Service struct {
	store  store.Store
	logger zerolog.Logger

	mu   sync.Mutex
	subs []chan planner.Snapshot
}

// NewService creates a session-context service over the given store.
func NewService(st store.Store, logger zerolog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Save overwrites the persisted snapshot wholesale and notifies subscribers.
func (s *Service) Save(ctx context.Context, snapshot planner.Snapshot) error {
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, store.ScopeSession, store.KeySessionContext, raw); err != nil {
		return err
	}

	s.publish(snapshot)
	return nil
}

// Load returns the persisted snapshot, or ErrNoSnapshot. A snapshot that no
// longer parses is logged, deleted, and reported as absent rather than
// propagated.
func (s *Service) Load(ctx context.Context) (*planner.Snapshot, error) {
	raw, err := s.store.Get(ctx, store.ScopeSession, store.KeySessionContext)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var snapshot planner.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("discarding corrupt session snapshot")
		_ = s.store.Delete(ctx, store.ScopeSession, store.KeySessionContext)
		return nil, ErrNoSnapshot
	}
	return &snapshot, nil
}

// Clear deletes the persisted snapshot and transcript and notifies
// subscribers with an empty snapshot.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return err
	}
	s.publish(planner.Snapshot{})
	return nil
}

// Subscribe returns a channel receiving every subsequent snapshot update.
// The channel is buffered; updates a slow subscriber has not drained are
// dropped rather than blocking the publisher.
func (s *Service) Subscribe() <-chan planner.Snapshot {
	ch := make(chan planner.Snapshot, 4)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Service) publish(snapshot planner.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// SaveTranscript persists the serialized chat transcript. Called on every
// transcript change so a restart continues the same conversation.
func (s *Service) SaveTranscript(ctx context.Context, raw []byte) error {
	return s.store.Put(ctx, store.ScopeSession, store.KeyChatTranscript, raw)
}

// LoadTranscript returns the persisted transcript, or nil when absent.
func (s *Service) LoadTranscript(ctx context.Context) ([]byte, error) {
	raw, err := s.store.Get(ctx, store.ScopeSession, store.KeyChatTranscript)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return raw, err
}

// DeleteTranscript removes the persisted transcript only, leaving the
// snapshot intact.
func (s *Service) DeleteTranscript(ctx context.Context) error {
	return s.store.Delete(ctx, store.ScopeSession, store.KeyChatTranscript)
}
