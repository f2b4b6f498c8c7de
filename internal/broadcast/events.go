package broadcast

import "time"

// Event types of the broadcast catalog.
const (
	EventUserMessage        = "user_message"
	EventAgentResponse      = "agent_response"
	EventConnectionUpdate   = "connection_update"
	EventAgentStatus        = "agent_status"
	EventConversationUpdate = "conversation_update"
	EventTaskUpdate         = "task_update"
	EventArtifactUpdate     = "artifact_update"
	EventError              = "error"
)

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// AgentState is one entry of an agent_status roster snapshot.
type AgentState struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Role   string `json:"role"`
}

// EmitUserMessage broadcasts an inbound user message.
func EmitUserMessage(e Emitter, message, sessionID string) {
	payload := map[string]any{
		"message":   message,
		"timestamp": now(),
	}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}
	e.Emit(EventUserMessage, payload)
}

// EmitAgentResponse broadcasts one persona's completed response.
func EmitAgentResponse(e Emitter, agentName, content, sessionID string) {
	payload := map[string]any{
		"message": map[string]any{
			"content": content,
			"agent":   agentName,
		},
		"agentName": agentName,
		"timestamp": now(),
	}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}
	e.Emit(EventAgentResponse, payload)
}

// EmitConnectionUpdate broadcasts a hand-off link between two personas.
func EmitConnectionUpdate(e Emitter, from, to, status string) {
	e.Emit(EventConnectionUpdate, map[string]any{
		"from":      from,
		"to":        to,
		"status":    status,
		"timestamp": now(),
	})
}

// EmitAgentStatus broadcasts the full agent roster snapshot. The optional
// detail map names the agent whose status changed and any contextual data
// riding along (the completed step's response, the assigned task).
func EmitAgentStatus(e Emitter, agents []AgentState, detail map[string]any) {
	payload := map[string]any{
		"agents":    agents,
		"timestamp": now(),
	}
	for k, v := range detail {
		payload[k] = v
	}
	e.Emit(EventAgentStatus, payload)
}

// EmitConversationUpdate broadcasts an updated session snapshot.
func EmitConversationUpdate(e Emitter, session any) {
	e.Emit(EventConversationUpdate, map[string]any{
		"session":   session,
		"timestamp": now(),
	})
}

// EmitTaskUpdate broadcasts a created or mutated task.
func EmitTaskUpdate(e Emitter, task any) {
	e.Emit(EventTaskUpdate, map[string]any{
		"task":      task,
		"timestamp": now(),
	})
}

// EmitArtifactUpdate broadcasts a newly saved artifact version.
func EmitArtifactUpdate(e Emitter, artifact any) {
	e.Emit(EventArtifactUpdate, map[string]any{
		"artifact":  artifact,
		"timestamp": now(),
	})
}

// EmitError broadcasts a structured error notification.
func EmitError(e Emitter, code, message string) {
	e.Emit(EventError, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
		"timestamp": now(),
	})
}
