package llm

import (
	"context"
	"strings"
)

// MockClient returns canned deterministic responses keyed by the persona
// named in the prompt text. It exists for tests and for environments lacking
// live credentials, and is only reachable through the explicit "mock"
// provider setting.
type MockClient struct{}

// NewMockClient constructs a mock gateway client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var cannedResponses = []struct {
	keyword  string
	response string
}{
	{
		keyword: "Team Leader",
		response: "Task breakdown: (1) requirement analysis by the Product Manager, " +
			"(2) architecture design by the Architect, (3) implementation by the " +
			"Engineer, (4) performance analysis by the Data Analyst.",
	},
	{
		keyword: "Product Manager",
		response: "Requirement analysis: functional requirements documented, interface " +
			"and interaction design suggested, acceptance criteria and product risks listed.",
	},
	{
		keyword: "Architect",
		response: "Architecture proposal: layered service with an HTTP API, a realtime " +
			"event channel and in-memory state stores; interfaces defined per component.",
	},
	{
		keyword: "Engineer",
		response: "Implementation plan: module layout, core data structures, unit and " +
			"integration test strategy, and a deployment outline.",
	},
	{
		keyword: "Data Analyst",
		response: "Performance analysis: no obvious bottleneck; suggested monitoring " +
			"metrics, load test plan and resource usage estimates attached.",
	},
}

// Complete scans the prompt for a known persona name and returns its canned
// response, or a generic assistant reply when none matches. Matching prefers
// the system instruction so context entries quoting earlier personas do not
// mis-key the lookup.
func (m *MockClient) Complete(_ context.Context, messages []Message) (string, error) {
	var prompt strings.Builder
	for _, msg := range messages {
		if msg.Role == "system" {
			prompt.Reset()
			prompt.WriteString(msg.Content)
			break
		}
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}
	text := prompt.String()

	for _, canned := range cannedResponses {
		if strings.Contains(text, canned.keyword) {
			return canned.response, nil
		}
	}
	return "Mock response: no live completion backend is configured.", nil
}

// CompleteCode behaves like Complete; the mock has no sampling settings.
func (m *MockClient) CompleteCode(ctx context.Context, messages []Message) (string, error) {
	return m.Complete(ctx, messages)
}
