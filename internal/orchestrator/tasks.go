package orchestrator

import (
	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
)

// CreateTask creates a pending task and flips the assigned agent to busy with
// the task attached. Dependencies may reference task ids that do not exist.
func (s *System) CreateTask(title, description, assignedTo string, priority int, dependencies []string) (*domain.Task, error) {
	switch {
	case title == "":
		return nil, apperrors.NewValidation("title", "is required")
	case description == "":
		return nil, apperrors.NewValidation("description", "is required")
	case assignedTo == "":
		return nil, apperrors.NewValidation("assigned_to", "is required")
	}
	if priority <= 0 {
		priority = 1
	}

	task := domain.NewTask(title, description, assignedTo, priority, dependencies)

	s.tasksMu.Lock()
	s.tasks[task.ID] = task
	snapshot := task.Clone()
	s.tasksMu.Unlock()

	if agent := s.agent(assignedTo); agent != nil {
		s.agentsMu.Lock()
		agent.UpdateStatus(domain.AgentStatusBusy, snapshot)
		states := s.agentStatesLocked()
		s.agentsMu.Unlock()
		broadcast.EmitAgentStatus(s.emitter, states, map[string]any{
			"agentName": agent.Name,
			"data":      map[string]any{"task": snapshot},
		})
	}

	broadcast.EmitTaskUpdate(s.emitter, snapshot)
	return snapshot, nil
}

// GetTask looks a task up by id, returning a snapshot.
func (s *System) GetTask(taskID string) (*domain.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, apperrors.NewNotFound("task", taskID)
	}
	return task.Clone(), nil
}

// UpdateTaskStatus updates a task's status and appends any supplied artifact
// records. It returns false when the id is unknown. The assigned agent's
// status cascades: terminal task statuses reset the agent to idle, any other
// status is mirrored onto the agent with the task attached.
func (s *System) UpdateTaskStatus(taskID string, status domain.TaskStatus, artifacts []domain.Attachment) bool {
	s.tasksMu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.tasksMu.Unlock()
		return false
	}
	task.Status = status
	task.Artifacts = append(task.Artifacts, artifacts...)
	snapshot := task.Clone()
	s.tasksMu.Unlock()

	if agent := s.agent(snapshot.AssignedTo); agent != nil {
		s.agentsMu.Lock()
		if status.Terminal() {
			agent.UpdateStatus(domain.AgentStatusIdle, nil)
		} else {
			agent.UpdateStatus(domain.AgentStatus(status), snapshot)
		}
		states := s.agentStatesLocked()
		s.agentsMu.Unlock()
		if status.Terminal() {
			broadcast.EmitAgentStatus(s.emitter, states, nil)
		} else {
			broadcast.EmitAgentStatus(s.emitter, states, map[string]any{
				"agentName": agent.Name,
				"data":      map[string]any{"task": snapshot},
			})
		}
	}

	broadcast.EmitTaskUpdate(s.emitter, snapshot)
	return true
}

// TaskDependencies returns the tasks the given task depends on. Dangling
// dependency ids are skipped; no referential integrity is enforced on write.
func (s *System) TaskDependencies(taskID string) ([]*domain.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, apperrors.NewNotFound("task", taskID)
	}

	deps := make([]*domain.Task, 0, len(task.Dependencies))
	for _, depID := range task.Dependencies {
		if dep, ok := s.tasks[depID]; ok {
			deps = append(deps, dep.Clone())
		}
	}
	return deps, nil
}

// DependentTasks returns the tasks that list the given task as a dependency.
func (s *System) DependentTasks(taskID string) ([]*domain.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	if _, ok := s.tasks[taskID]; !ok {
		return nil, apperrors.NewNotFound("task", taskID)
	}

	dependents := []*domain.Task{}
	for _, candidate := range s.tasks {
		for _, depID := range candidate.Dependencies {
			if depID == taskID {
				dependents = append(dependents, candidate.Clone())
				break
			}
		}
	}
	return dependents, nil
}
