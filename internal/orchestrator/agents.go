package orchestrator

import (
	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
)

// ListAgents returns the fixed agent set in pipeline order. The returned
// records are snapshots taken under the lock; callers may marshal or mutate
// them freely.
func (s *System) ListAgents() []*domain.Agent {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()

	agents := make([]*domain.Agent, 0, len(s.order))
	for _, name := range s.order {
		agents = append(agents, s.agents[name].Clone())
	}
	return agents
}

// GetAgent looks an agent up by generated id, returning a snapshot.
func (s *System) GetAgent(agentID string) (*domain.Agent, error) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()

	for _, agent := range s.agents {
		if agent.ID == agentID {
			return agent.Clone(), nil
		}
	}
	return nil, apperrors.NewNotFound("agent", agentID)
}

// GetAgentByName looks an agent up by persona name, returning a snapshot.
func (s *System) GetAgentByName(name string) (*domain.Agent, error) {
	s.agentsMu.RLock()
	defer s.agentsMu.RUnlock()

	agent, ok := s.agents[name]
	if !ok {
		return nil, apperrors.NewNotFound("agent", name)
	}
	return agent.Clone(), nil
}
