package assistant

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// ConversationStore keeps one Conversation per session id.
type ConversationStore interface {
	// Get returns an empty Conversation for unknown sessions.
	Get(ctx context.Context, sessionID string) (Conversation, error)
	Put(ctx context.Context, sessionID string, conv Conversation) error
}

// Service answers queries for many sessions, each with its own conversation.
type Service struct {
	engine *Engine
	store  ConversationStore
	log    zerolog.Logger
	locks  sessionLocks
}

func NewService(engine *Engine, store ConversationStore, log zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		store:  store,
		log:    log,
		locks:  sessionLocks{held: make(map[string]*sessionLock)},
	}
}

// Ask answers message in the context of sessionID. Store failures are logged
// and never surface to the caller.
func (s *Service) Ask(ctx context.Context, sessionID, message string) QueryResult {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	conv, err := s.store.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session", sessionID).Msg("loading conversation failed, starting fresh")
		conv = Conversation{}
	}

	result, next := s.engine.Answer(conv, message)

	if err := s.store.Put(ctx, sessionID, next); err != nil {
		s.log.Warn().Err(err).Str("session", sessionID).Msg("saving conversation failed")
	}
	return result
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// sessionLocks serializes requests of the same session; entries are dropped once unused.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	sl, ok := l.held[id]
	if !ok {
		sl = &sessionLock{}
		l.held[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
