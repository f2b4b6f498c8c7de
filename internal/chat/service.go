// Package chat manages standalone chat sessions: ordered message lists with
// auto-derived titles, answered by the text-completion gateway.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
	"github.com/lhyssy/AI-Agent-code-web/internal/llm"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
)

// SessionSummary is the list-view projection of a session.
type SessionSummary struct {
	ID           string    `json:"session_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	IsArchived   bool      `json:"is_archived"`
}

// MessageResult is the outcome of processing one user message.
type MessageResult struct {
	MessageID string              `json:"message_id"`
	Content   string              `json:"content"`
	Role      domain.MessageRole  `json:"role"`
	Session   *domain.ChatSession `json:"session"`
}

// Service owns the in-memory session store. All state is lost on restart.
type Service struct {
	client  llm.Client
	emitter broadcast.Emitter
	logger  logging.Logger

	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

// NewService creates an empty chat service.
func NewService(client llm.Client, emitter broadcast.Emitter) *Service {
	return &Service{
		client:   client,
		emitter:  emitter,
		logger:   logging.NewComponentLogger("ChatService"),
		sessions: make(map[string]*domain.ChatSession),
	}
}

// CreateSession creates a session with an optional explicit title.
func (s *Service) CreateSession(title string) *domain.ChatSession {
	session := domain.NewChatSession("", title)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session.Clone()
}

// GetSession looks a session up by id, returning a snapshot.
func (s *Service) GetSession(sessionID string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFound("session", sessionID)
	}
	return session.Clone(), nil
}

// ListSessions returns a summary of every session.
func (s *Service) ListSessions() []SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(s.sessions))
	for _, session := range s.sessions {
		summaries = append(summaries, SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			CreatedAt:    session.CreatedAt,
			MessageCount: len(session.Messages),
			IsArchived:   session.IsArchived,
		})
	}
	return summaries
}

// ArchiveSession marks a session archived. Returns false for unknown ids.
func (s *Service) ArchiveSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.IsArchived = true
	return true
}

// DeleteSession removes a session entirely. Returns false for unknown ids.
func (s *Service) DeleteSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// ProcessMessage appends a user message to the session (creating the session
// lazily on first reference to an unknown id), asks the gateway for a reply,
// appends it as the assistant message and returns the result.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, message string, metadata map[string]any) (*MessageResult, error) {
	if message == "" {
		return nil, apperrors.NewValidation("message", "must not be empty")
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		session = domain.NewChatSession(sessionID, "")
		s.sessions[session.ID] = session
	}
	session.AddMessage(domain.NewChatMessage(domain.MessageRoleUser, message, session.ID, metadata))
	history := make([]llm.Message, 0, len(session.Messages))
	for _, msg := range session.Messages {
		history = append(history, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	s.mu.Unlock()

	reply, err := s.client.Complete(ctx, history)
	if err != nil {
		s.logger.Error("completion failed for session %s: %v", session.ID, err)
		return nil, err
	}

	s.mu.Lock()
	assistant := domain.NewChatMessage(domain.MessageRoleAssistant, reply, session.ID, nil)
	session.AddMessage(assistant)
	snapshot := session.Clone()
	s.mu.Unlock()

	broadcast.EmitConversationUpdate(s.emitter, snapshot)

	return &MessageResult{
		MessageID: assistant.ID,
		Content:   reply,
		Role:      domain.MessageRoleAssistant,
		Session:   snapshot,
	}, nil
}

// SessionHistory returns the messages of a session, empty for unknown ids.
func (s *Service) SessionHistory(sessionID string) []*domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return []*domain.ChatMessage{}
	}
	return append([]*domain.ChatMessage{}, session.Messages...)
}

// ClearSessionHistory removes all messages from a session without deleting
// it. Returns false for unknown ids.
func (s *Service) ClearSessionHistory(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.Messages = []*domain.ChatMessage{}
	return true
}

// UpdateSessionTitle renames a session. Returns false for unknown ids.
func (s *Service) UpdateSessionTitle(sessionID, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.Title = title
	return true
}
