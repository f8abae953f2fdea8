package copilot

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/logihub/logihub/internal/planner"
)

// FallbackReply is appended in place of an assistant reply when the agent
// call fails, keeping the transcript coherent instead of surfacing a raw
// error.
const FallbackReply = "Sorry, I'm having trouble reaching the route copilot right now. Please try again in a moment."

// Greeting seeds an empty transcript.
const Greeting = "Hello! I am LogiBot. I can help you plan routes, check weather, and monitor traffic. Where would you like to deliver today?"

// refreshKeywords mark messages that probably changed server-side state;
// matching one schedules a status refresh shortly after the send.
var refreshKeywords = []string{"delay", "complete", "start", "create"}

// AgentBackend is the slice of the backend the copilot talks to.
type AgentBackend interface {
	Status(ctx context.Context, sessionID string) (*AgentStatus, error)
	Chat(ctx context.Context, sessionID, message string) (string, error)
	Explain(ctx context.Context, message string, snapshot *planner.Snapshot) (string, error)
}

// Identity provides the session identifier.
type Identity interface {
	ID(ctx context.Context) (string, error)
}

// SessionState is the copilot's view of the shared session service: the
// persisted transcript, the route snapshot, and its update feed.
type SessionState interface {
	Load(ctx context.Context) (*planner.Snapshot, error)
	Subscribe() <-chan planner.Snapshot
	SaveTranscript(ctx context.Context, raw []byte) error
	LoadTranscript(ctx context.Context) ([]byte, error)
}

// ServiceConfig holds configuration for the copilot service.
type ServiceConfig struct {
	Backend  AgentBackend
	Identity Identity
	Session  SessionState
	Logger   zerolog.Logger

	// PollInterval is the status poll cadence while the view is active.
	PollInterval time.Duration

	// RefreshDelay is how long after a state-changing message the status
	// refresh fires.
	RefreshDelay time.Duration
}

// Service is the conversational view's state machine. Sending a message
// appends it optimistically, marks typing, performs the call, and appends
// exactly one assistant reply (or the fallback) per user message.
type Service struct {
	backend      AgentBackend
	identity     Identity
	session      SessionState
	logger       zerolog.Logger
	pollInterval time.Duration
	refreshDelay time.Duration

	breaker *gobreaker.CircuitBreaker[*AgentStatus]

	mu       sync.Mutex
	messages []Message
	typing   bool
	status   *AgentStatus
	snapshot *planner.Snapshot

	pending sync.WaitGroup
}

// NewService creates the copilot service.
func NewService(cfg ServiceConfig) *Service {
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 60 * time.Second
	}
	refreshDelay := cfg.RefreshDelay
	if refreshDelay == 0 {
		refreshDelay = time.Second
	}

	// The breaker guards only the periodic background poll: a dead
	// backend degrades to silence instead of a log storm. User-initiated
	// sends bypass it and are never retried.
	breaker := gobreaker.NewCircuitBreaker[*AgentStatus](gobreaker.Settings{
		Name:     "agent-status-poll",
		Interval: 2 * pollInterval,
		Timeout:  pollInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Service{
		backend:      cfg.Backend,
		identity:     cfg.Identity,
		session:      cfg.Session,
		logger:       cfg.Logger,
		pollInterval: pollInterval,
		refreshDelay: refreshDelay,
		breaker:      breaker,
	}
}

// TranscriptView is an immutable copy of the chat state for rendering.
type TranscriptView struct {
	Messages []Message
	Typing   bool
	Status   *AgentStatus
	Snapshot *planner.Snapshot
}

// View returns the current chat view state.
func (s *Service) View() TranscriptView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := TranscriptView{
		Messages: append([]Message(nil), s.messages...),
		Typing:   s.typing,
		Snapshot: s.snapshot,
	}
	if s.status != nil {
		cpy := *s.status
		v.Status = &cpy
	}
	return v
}

// Hydrate restores the transcript and route snapshot from the session
// store, seeding the greeting when no conversation exists yet.
func (s *Service) Hydrate(ctx context.Context) {
	if raw, err := s.session.LoadTranscript(ctx); err == nil && len(raw) > 0 {
		var messages []Message
		if err := json.Unmarshal(raw, &messages); err != nil {
			s.logger.Warn().Err(err).Msg("discarding corrupt chat transcript")
		} else {
			s.mu.Lock()
			s.messages = messages
			s.mu.Unlock()
		}
	}

	s.mu.Lock()
	if len(s.messages) == 0 {
		s.messages = []Message{{
			ID:      newMessageID(),
			Role:    RoleAssistant,
			Content: Greeting,
		}}
	}
	s.mu.Unlock()

	if snapshot, err := s.session.Load(ctx); err == nil {
		s.mu.Lock()
		s.snapshot = snapshot
		s.mu.Unlock()
	}

	s.persistTranscript(ctx)
}

// Send submits a user message through the agent copilot. The user message
// is appended synchronously regardless of network outcome.
func (s *Service) Send(ctx context.Context, text string) (Message, error) {
	return s.send(ctx, text, func(ctx context.Context, sessionID string) (string, error) {
		return s.backend.Chat(ctx, sessionID, text)
	})
}

// Explain submits a user message through the stateless route explainer,
// passing the current snapshot as explicit context.
func (s *Service) Explain(ctx context.Context, text string) (Message, error) {
	s.mu.Lock()
	snapshot := s.snapshot
	s.mu.Unlock()

	return s.send(ctx, text, func(ctx context.Context, _ string) (string, error) {
		return s.backend.Explain(ctx, text, snapshot)
	})
}

func (s *Service) send(ctx context.Context, text string, call func(context.Context, string) (string, error)) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return Message{}, ErrSessionNotReady
	}

	userMsg := Message{ID: newMessageID(), Role: RoleUser, Content: text}
	s.mu.Lock()
	s.messages = append(s.messages, userMsg)
	s.typing = true
	s.mu.Unlock()
	s.persistTranscript(ctx)

	reply, callErr := call(ctx, sessionID)
	if callErr != nil || strings.TrimSpace(reply) == "" {
		if callErr != nil {
			s.logger.Warn().Err(callErr).Msg("agent reply failed, using fallback")
		}
		reply = FallbackReply
	}

	assistantMsg := Message{ID: newMessageID(), Role: RoleAssistant, Content: reply}
	s.mu.Lock()
	s.messages = append(s.messages, assistantMsg)
	s.typing = false
	s.mu.Unlock()
	s.persistTranscript(ctx)

	if matchesRefreshKeyword(text) {
		s.pending.Add(1)
		time.AfterFunc(s.refreshDelay, func() {
			defer s.pending.Done()
			refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.RefreshStatus(refreshCtx)
		})
	}

	return assistantMsg, nil
}

// RefreshStatus fetches the live agent status once, outside the breaker.
func (s *Service) RefreshStatus(ctx context.Context) {
	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return
	}

	status, err := s.backend.Status(ctx, sessionID)
	if err != nil {
		s.logger.Debug().Err(err).Msg("agent status refresh failed")
		return
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Watch polls the agent status on a fixed interval while the chat view is
// active and keeps the route snapshot current via the session feed. It
// returns when ctx is cancelled. Failed polls back off exponentially and
// trip the breaker after repeated failures.
func (s *Service) Watch(ctx context.Context) {
	updates := s.session.Subscribe()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.pollInterval
	bo.MaxInterval = 8 * s.pollInterval
	bo.MaxElapsedTime = 0

	s.poll(ctx)

	next := s.pollInterval
	timer := time.NewTimer(next)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-updates:
			s.mu.Lock()
			if snapshot.OptimizedRoute == nil && len(snapshot.Locations) == 0 {
				s.snapshot = nil
			} else {
				cpy := snapshot
				s.snapshot = &cpy
			}
			s.mu.Unlock()
		case <-timer.C:
			if s.poll(ctx) {
				bo.Reset()
				next = s.pollInterval
			} else {
				next = bo.NextBackOff()
			}
			timer.Reset(next)
		}
	}
}

// poll fetches the agent status through the breaker. Returns true on
// success.
func (s *Service) poll(ctx context.Context) bool {
	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return false
	}

	status, err := s.breaker.Execute(func() (*AgentStatus, error) {
		return s.backend.Status(ctx, sessionID)
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("agent status poll failed")
		return false
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return true
}

// Wait blocks until scheduled background refreshes have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) persistTranscript(ctx context.Context) {
	s.mu.Lock()
	raw, err := json.Marshal(s.messages)
	s.mu.Unlock()
	if err != nil {
		return
	}
	if err := s.session.SaveTranscript(ctx, raw); err != nil {
		s.logger.Warn().Err(err).Msg("persisting chat transcript failed")
	}
}

func matchesRefreshKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range refreshKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func newMessageID() string {
	return "msg_" + uuid.New().String()[:8]
}
