package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether the status ends the task's lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Attachment is an open-shaped artifact record attached to a task.
type Attachment map[string]any

// Task is a unit of assigned work. Dependencies may reference task ids that
// do not exist; no referential integrity is enforced. Tasks are never deleted.
type Task struct {
	ID           string       `json:"task_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	AssignedTo   string       `json:"assigned_to"`
	Status       TaskStatus   `json:"status"`
	Priority     int          `json:"priority"`
	Dependencies []string     `json:"dependencies"`
	Artifacts    []Attachment `json:"artifacts"`
	CreatedAt    time.Time    `json:"created_at"`
	Deadline     *time.Time   `json:"deadline,omitempty"`
}

// Clone returns a copy safe to hand outside the owning store's lock. The
// attachment records themselves are shared; they are never mutated once
// appended.
func (t *Task) Clone() *Task {
	clone := *t
	if t.Dependencies != nil {
		clone.Dependencies = make([]string, len(t.Dependencies))
		copy(clone.Dependencies, t.Dependencies)
	}
	if t.Artifacts != nil {
		clone.Artifacts = make([]Attachment, len(t.Artifacts))
		copy(clone.Artifacts, t.Artifacts)
	}
	return &clone
}

// NewTask creates a pending task with a generated id.
func NewTask(title, description, assignedTo string, priority int, dependencies []string) *Task {
	if dependencies == nil {
		dependencies = []string{}
	}
	return &Task{
		ID:           uuid.New().String(),
		Title:        title,
		Description:  description,
		AssignedTo:   assignedTo,
		Status:       TaskStatusPending,
		Priority:     priority,
		Dependencies: dependencies,
		Artifacts:    []Attachment{},
		CreatedAt:    time.Now().UTC(),
	}
}
