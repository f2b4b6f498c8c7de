// Package domain holds the plain state records shared across the service:
// agents, tasks, code artifacts, chat sessions and conversation turns.
package domain

import (
	"github.com/google/uuid"
)

// AgentStatus enumerates the lifecycle states of an agent persona.
type AgentStatus string

const (
	AgentStatusIdle       AgentStatus = "idle"
	AgentStatusProcessing AgentStatus = "processing"
	AgentStatusBusy       AgentStatus = "busy"
	AgentStatusCompleted  AgentStatus = "completed"
	AgentStatusFailed     AgentStatus = "failed"
)

// AgentRole enumerates the five fixed personas of the pipeline.
type AgentRole string

const (
	RoleTeamLeader     AgentRole = "Team Leader"
	RoleProductManager AgentRole = "Product Manager"
	RoleArchitect      AgentRole = "Architect"
	RoleEngineer       AgentRole = "Engineer"
	RoleDataAnalyst    AgentRole = "Data Analyst"
)

// Agent is one of the five fixed simulated personas. The set is created once
// at orchestrator construction and never grows or shrinks afterwards.
type Agent struct {
	ID          string      `json:"agent_id"`
	Name        string      `json:"name"`
	Role        AgentRole   `json:"role"`
	Description string      `json:"description"`
	Status      AgentStatus `json:"status"`
	CurrentTask *Task       `json:"current_task,omitempty"`
}

// NewAgent creates an idle agent with a generated id.
func NewAgent(name string, role AgentRole, description string) *Agent {
	return &Agent{
		ID:          uuid.New().String(),
		Name:        name,
		Role:        role,
		Description: description,
		Status:      AgentStatusIdle,
	}
}

// Clone returns a copy safe to hand outside the owning store's lock.
func (a *Agent) Clone() *Agent {
	clone := *a
	if a.CurrentTask != nil {
		clone.CurrentTask = a.CurrentTask.Clone()
	}
	return &clone
}

// UpdateStatus mutates the agent's status. A non-nil task is attached as the
// agent's current work item; terminal statuses detach it.
func (a *Agent) UpdateStatus(status AgentStatus, task *Task) {
	a.Status = status
	if status == AgentStatusIdle || status == AgentStatusCompleted || status == AgentStatusFailed {
		a.CurrentTask = nil
		return
	}
	if task != nil {
		a.CurrentTask = task
	}
}
