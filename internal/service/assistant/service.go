package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/chat"
	"github.com/bargainmart/backend/internal/service/ai"
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps shopping-assistant conversation state in memory; transcripts
// are append-only within a session.
type Service struct {
	catalog catalog.Store

	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewService bootstraps the in-memory assistant chat service.
func NewService(catalogStore catalog.Store) *Service {
	return &Service{
		catalog:  catalogStore,
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// CreateSession provisions a conversation for the current identity.
func (s *Service) CreateSession(_ context.Context, ownerID string) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]chat.Message, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// Transcript returns stored messages for the provided session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Append records one turn in the session history.
func (s *Service) Append(_ context.Context, sessionID, role, content string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		OwnerID:   session.OwnerID,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], message)
	return message, nil
}

// SystemPrompt builds the storefront instruction over the live catalog.
func (s *Service) SystemPrompt(ctx context.Context) (string, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return "", err
	}
	return ai.BuildAssistantPrompt(products), nil
}
