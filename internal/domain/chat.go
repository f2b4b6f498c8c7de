package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole is the author role of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// maxTitleRunes is the length a session title derived from the first user
// message is truncated to.
const maxTitleRunes = 20

// ChatMessage is a single message inside a chat session.
type ChatMessage struct {
	ID        string         `json:"message_id"`
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// NewChatMessage creates a message with a generated id and current timestamp.
func NewChatMessage(role MessageRole, content, sessionID string, metadata map[string]any) *ChatMessage {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// ChatSession is an ordered list of messages. The title is auto-derived from
// the first user message when not set explicitly.
type ChatSession struct {
	ID         string         `json:"session_id"`
	Title      string         `json:"title"`
	CreatedAt  time.Time      `json:"created_at"`
	Messages   []*ChatMessage `json:"messages"`
	IsArchived bool           `json:"is_archived"`
}

// NewChatSession creates a session. An empty id generates one; an empty title
// falls back to a default until the first user message arrives.
func NewChatSession(sessionID, title string) *ChatSession {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if title == "" {
		title = "New Conversation"
	}
	return &ChatSession{
		ID:        sessionID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Messages:  []*ChatMessage{},
	}
}

// Clone returns a copy with its own message slice, safe to hand outside the
// owning store's lock. Message records are shared; they are immutable once
// appended.
func (s *ChatSession) Clone() *ChatSession {
	clone := *s
	if s.Messages != nil {
		clone.Messages = make([]*ChatMessage, len(s.Messages))
		copy(clone.Messages, s.Messages)
	}
	return &clone
}

// AddMessage appends a message. The first user message sets the session title.
func (s *ChatSession) AddMessage(message *ChatMessage) {
	s.Messages = append(s.Messages, message)
	if len(s.Messages) == 1 && message.Role == MessageRoleUser {
		s.Title = DeriveTitle(message.Content)
	}
}

// DeriveTitle truncates content to the first 20 characters plus an ellipsis.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "..."
	}
	return content
}
