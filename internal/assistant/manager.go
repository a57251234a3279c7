package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

// SessionManager maps sender identities (e.g. WhatsApp numbers) to live
// sessions and serializes the turns of each one. Distinct senders never
// share a session.
type SessionManager struct {
	engine          *Engine
	store           SessionStore
	defaultLanguage Language
	logger          *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(engine *Engine, store SessionStore, defaultLanguage Language, logger *logging.Logger) *SessionManager {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionManager{
		engine:          engine,
		store:           store,
		defaultLanguage: defaultLanguage,
		logger:          logger,
		sessions:        map[string]*Session{},
	}
}

// Converse runs one inbound message through the sender's session and
// returns the reply. Turns for the same sender run one at a time; turns for
// different senders proceed independently.
func (m *SessionManager) Converse(ctx context.Context, senderID, text string, override *Language) (string, error) {
	session, err := m.acquire(ctx, senderID)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	reply, err := m.engine.HandleTurn(ctx, session, text, override)
	if err != nil {
		return "", err
	}

	// A store outage must not eat a reply that was already produced.
	if err := m.store.Save(ctx, senderID, session.snapshot()); err != nil {
		m.logger.Error("failed to persist session", "sender_id", senderID, "error", err)
	}
	return reply, nil
}

func (m *SessionManager) acquire(ctx context.Context, senderID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[senderID]; ok {
		return session, nil
	}

	state, err := m.store.Load(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to restore session for %s: %w", senderID, err)
	}

	var session *Session
	if state != nil {
		session = restoreSession(state)
	} else {
		session = NewSession(uuid.NewString(), m.defaultLanguage)
		m.logger.Info("starting new session", "sender_id", senderID, "session_id", session.ID)
	}
	m.sessions[senderID] = session
	return session, nil
}
