package domain

import "time"

// TurnRole is the author role of a conversation turn.
type TurnRole string

const (
	TurnRoleUser   TurnRole = "user"
	TurnRoleAgent  TurnRole = "agent"
	TurnRoleSystem TurnRole = "system"
)

// ConversationTurn is one entry of the orchestrator's append-only
// conversation history. Name is set only for agent turns.
type ConversationTurn struct {
	Role      TurnRole  `json:"role"`
	Name      string    `json:"name,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserTurn builds a user conversation turn.
func UserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: TurnRoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// AgentTurn builds an agent conversation turn attributed to a persona.
func AgentTurn(name, content string) ConversationTurn {
	return ConversationTurn{Role: TurnRoleAgent, Name: name, Content: content, Timestamp: time.Now().UTC()}
}

// SystemTurn builds a system turn, used for pipeline error records.
func SystemTurn(content string) ConversationTurn {
	return ConversationTurn{Role: TurnRoleSystem, Name: "System", Content: content, Timestamp: time.Now().UTC()}
}
