// Package orchestrator drives the fixed five-persona pipeline and owns the
// agent, task and artifact state it mutates. Every state change is mirrored
// to real-time observers through the event emitter.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
	"github.com/lhyssy/AI-Agent-code-web/internal/llm"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
)

// rosterEntry defines one fixed persona. The set and order never change
// during the process lifetime.
type rosterEntry struct {
	Name        string
	Role        domain.AgentRole
	Description string
}

var roster = []rosterEntry{
	{"Mike", domain.RoleTeamLeader, "Responsible for task breakdown and team coordination"},
	{"Emma", domain.RoleProductManager, "Responsible for requirement analysis and feature planning"},
	{"Bob", domain.RoleArchitect, "Responsible for system architecture design"},
	{"Alex", domain.RoleEngineer, "Responsible for code implementation"},
	{"David", domain.RoleDataAnalyst, "Responsible for data analysis and performance optimization"},
}

// defaultStepTimeout bounds each gateway call; expiry follows the same
// failure path as any other completion error.
const defaultStepTimeout = 120 * time.Second

// Result is the outcome of one ProcessInput invocation. Either FinalResult
// holds one response per persona, or Error describes why the pipeline halted.
// Conversation always holds the history up to the last completed turn.
type Result struct {
	Conversation []domain.ConversationTurn `json:"conversation"`
	FinalResult  map[string]string         `json:"final_result,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// System coordinates the agent pipeline and the shared state stores. Multiple
// requests may run concurrently; the conversation log and each store are
// guarded by their own locks.
type System struct {
	client      llm.Client
	emitter     broadcast.Emitter
	logger      logging.Logger
	stepTimeout time.Duration

	convMu       sync.Mutex
	conversation []domain.ConversationTurn

	agentsMu sync.RWMutex
	agents   map[string]*domain.Agent // keyed by persona name
	order    []string

	tasksMu sync.RWMutex
	tasks   map[string]*domain.Task

	artifactsMu sync.RWMutex
	artifacts   map[string]*domain.CodeArtifact // keyed by artifact id, append-only
}

// Option customizes System construction.
type Option func(*System)

// WithStepTimeout overrides the per-step gateway timeout.
func WithStepTimeout(d time.Duration) Option {
	return func(s *System) {
		if d > 0 {
			s.stepTimeout = d
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *System) { s.logger = logging.OrNop(logger) }
}

// NewSystem creates the orchestrator with its fixed agent roster. The emitter
// is an explicit dependency so tests can observe broadcasts with a fake.
func NewSystem(client llm.Client, emitter broadcast.Emitter, opts ...Option) *System {
	s := &System{
		client:      client,
		emitter:     emitter,
		logger:      logging.NewComponentLogger("Orchestrator"),
		stepTimeout: defaultStepTimeout,
		agents:      make(map[string]*domain.Agent, len(roster)),
		order:       make([]string, 0, len(roster)),
		tasks:       make(map[string]*domain.Task),
		artifacts:   make(map[string]*domain.CodeArtifact),
	}
	for _, entry := range roster {
		s.agents[entry.Name] = domain.NewAgent(entry.Name, entry.Role, entry.Description)
		s.order = append(s.order, entry.Name)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessInput runs the full pipeline for one user request. Each persona's
// prompt is built from the user text plus all previously completed outputs,
// so the steps are strictly sequential. A gateway failure at any step halts
// the remaining steps and returns the conversation so far with an error.
func (s *System) ProcessInput(ctx context.Context, userInput string) (*Result, error) {
	if strings.TrimSpace(userInput) == "" {
		return nil, apperrors.NewValidation("message", "must not be empty")
	}

	s.appendTurn(domain.UserTurn(userInput))
	broadcast.EmitUserMessage(s.emitter, userInput, "")

	outputs := make([]stepOutput, 0, len(s.order))
	finalResult := make(map[string]string, len(s.order))

	for i, name := range s.order {
		agent := s.agent(name)

		s.setAgentStatus(agent, domain.AgentStatusProcessing, nil)
		response, err := s.runStep(ctx, agent, userInput, outputs)
		if err != nil {
			s.setAgentStatus(agent, domain.AgentStatusFailed, nil)
			s.logger.Error("pipeline halted at %s: %v", name, err)

			errMsg := fmt.Sprintf("error while processing the request: %v", err)
			s.appendTurn(domain.SystemTurn(errMsg))
			broadcast.EmitError(s.emitter, "PIPELINE_FAILED", errMsg)

			return &Result{Conversation: s.Conversation(), Error: errMsg}, nil
		}

		s.appendTurn(domain.AgentTurn(name, response))
		s.setAgentStatus(agent, domain.AgentStatusCompleted, response)
		broadcast.EmitAgentResponse(s.emitter, name, response, "")
		if i > 0 {
			broadcast.EmitConnectionUpdate(s.emitter, s.order[i-1], name, "active")
		}

		outputs = append(outputs, stepOutput{Name: name, Role: agent.Role, Content: response})
		finalResult[strings.ToLower(name)] = response
	}

	return &Result{Conversation: s.Conversation(), FinalResult: finalResult}, nil
}

// runStep performs one bounded gateway call.
func (s *System) runStep(ctx context.Context, agent *domain.Agent, userInput string, prior []stepOutput) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	messages := buildPrompt(agent, userInput, prior)
	s.logger.Debug("%s step: %d context entries", agent.Name, len(messages))

	response, err := s.client.Complete(stepCtx, messages)
	if err != nil {
		if stepCtx.Err() != nil {
			return "", apperrors.NewCompletion(stepCtx.Err(), fmt.Sprintf("%s step timed out", agent.Name))
		}
		return "", err
	}
	return response, nil
}

// Conversation returns a snapshot of the append-only conversation history.
func (s *System) Conversation() []domain.ConversationTurn {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	snapshot := make([]domain.ConversationTurn, len(s.conversation))
	copy(snapshot, s.conversation)
	return snapshot
}

func (s *System) appendTurn(turn domain.ConversationTurn) {
	s.convMu.Lock()
	s.conversation = append(s.conversation, turn)
	s.convMu.Unlock()
}

func (s *System) agent(name string) *domain.Agent {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()
	return s.agents[name]
}

// setAgentStatus mutates one agent and broadcasts the full roster snapshot.
// Contextual data rides along in the event, the way a completed step carries
// its response; nothing is stored on the agent record.
func (s *System) setAgentStatus(agent *domain.Agent, status domain.AgentStatus, data any) {
	s.agentsMu.Lock()
	agent.UpdateStatus(status, nil)
	states := s.agentStatesLocked()
	s.agentsMu.Unlock()

	var payload map[string]any
	if data != nil {
		payload = map[string]any{"agentName": agent.Name, "data": data}
	}
	broadcast.EmitAgentStatus(s.emitter, states, payload)
}

func (s *System) agentStatesLocked() []broadcast.AgentState {
	states := make([]broadcast.AgentState, 0, len(s.order))
	for _, name := range s.order {
		agent := s.agents[name]
		states = append(states, broadcast.AgentState{
			Name:   agent.Name,
			Status: string(agent.Status),
			Role:   string(agent.Role),
		})
	}
	return states
}
