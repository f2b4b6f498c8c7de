package orchestrator

import (
	"fmt"

	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	"github.com/lhyssy/AI-Agent-code-web/internal/llm"
)

// stepOutput is one completed pipeline step, carried forward as context for
// subsequent personas.
type stepOutput struct {
	Name    string
	Role    domain.AgentRole
	Content string
}

var personaTemplates = map[domain.AgentRole]string{
	domain.RoleTeamLeader: "You are %s, the Team Leader of a software team. " +
		"Analyze the user request, identify its key points and goals, break it " +
		"down into concrete task items with priorities and dependencies, and " +
		"assign the tasks to team members according to their specialties. " +
		"Provide a structured response covering analysis, breakdown and assignment.",

	domain.RoleProductManager: "You are %s, the Product Manager. Analyze the " +
		"request from a product perspective. Provide detailed functional " +
		"requirements, interface and interaction design suggestions, acceptance " +
		"criteria, potential product risks and suggestions for later iterations.",

	domain.RoleArchitect: "You are %s, the Architect. Based on the requirements, " +
		"provide a complete technical design: system architecture, technology " +
		"selection, data structure design, interface design, security " +
		"considerations and extensibility.",

	domain.RoleEngineer: "You are %s, the Engineer. Provide a concrete " +
		"implementation plan: code structure, implementation details of the main " +
		"modules, unit test plan, integration test strategy and deployment approach.",

	domain.RoleDataAnalyst: "You are %s, the Data Analyst. Analyze the proposed " +
		"implementation: performance bottlenecks, resource usage estimates, " +
		"optimization suggestions, monitoring metrics, a performance test plan " +
		"and data security advice.",
}

// buildPrompt assembles the ordered prompt history for one pipeline step.
//
// The first step sees the raw user text only; the second adds the Team
// Leader's output; every later step sees the user text plus all prior
// outputs. Keeping this a pure function of (agent, input, prior outputs)
// makes prompt shaping testable independent of the gateway.
func buildPrompt(agent *domain.Agent, userInput string, prior []stepOutput) []llm.Message {
	messages := make([]llm.Message, 0, len(prior)+2)

	messages = append(messages, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(personaTemplates[agent.Role], agent.Name),
	})
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("User request:\n%s", userInput),
	})
	for _, step := range prior {
		messages = append(messages, llm.Message{
			Role:    "assistant",
			Content: fmt.Sprintf("%s (%s):\n%s", step.Name, step.Role, step.Content),
		})
	}
	return messages
}
