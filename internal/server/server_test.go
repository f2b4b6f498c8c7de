package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/chat"
	"github.com/lhyssy/AI-Agent-code-web/internal/config"
	"github.com/lhyssy/AI-Agent-code-web/internal/llm"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
	"github.com/lhyssy/AI-Agent-code-web/internal/orchestrator"
)

func newTestServer(t *testing.T) (*httptest.Server, *broadcast.Hub) {
	t.Helper()

	hub := broadcast.NewHub()
	client := llm.NewMockClient()
	system := orchestrator.NewSystem(client, hub, orchestrator.WithLogger(logging.Nop()))
	chatSvc := chat.NewService(client, hub)

	srv := New(config.ServerConfig{
		Host:       "127.0.0.1",
		Port:       0,
		EnableCORS: true,
		Debug:      false,
	}, system, chatSvc, hub)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, hub
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, "running", body["status"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/analyze", map[string]any{"message": "build a web app"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	finalResult, ok := body["final_result"].(map[string]any)
	require.True(t, ok, "expected final_result in %v", body)
	assert.Len(t, finalResult, 5)

	conversation, ok := body["conversation"].([]any)
	require.True(t, ok)
	assert.Len(t, conversation, 6)
}

func TestAnalyzeEmptyMessage(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/analyze", map[string]any{"message": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestTaskLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/tasks", map[string]any{
		"title":       "Implement API",
		"description": "build endpoints",
		"assigned_to": "Alex",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decodeBody(t, resp)
	taskID, _ := task["task_id"].(string)
	require.NotEmpty(t, taskID)
	assert.Equal(t, "pending", task["status"])

	resp, err := http.Get(ts.URL + "/api/agent/tasks/" + taskID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/agent/tasks/"+taskID+"/status",
		bytes.NewReader([]byte(`{"status":"completed"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// The assigned agent cascades back to idle.
	resp, err = http.Get(ts.URL + "/api/agent/agents/name/Alex")
	require.NoError(t, err)
	agent := decodeBody(t, resp)
	assert.Equal(t, "idle", agent["status"])
}

func TestTaskValidationAndNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/tasks", map[string]any{"title": "only title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/agent/tasks/unknown-id")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/agent/tasks/unknown-id/status",
		bytes.NewReader([]byte(`{"status":"completed"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestArtifactEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	save := func(content string) map[string]any {
		resp := postJSON(t, ts.URL+"/api/agent/artifacts", map[string]any{
			"file_path":  "a.py",
			"content":    content,
			"language":   "python",
			"created_by": "bob",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return decodeBody(t, resp)
	}

	first := save("print(1)")
	assert.Equal(t, "1.0.0", first["version"])

	second := save("print(2)")
	assert.Equal(t, "1.0.1", second["version"])
	assert.Equal(t, "1.0.0", second["parent_version"])

	resp, err := http.Get(ts.URL + "/api/agent/artifacts/history?file_path=a.py")
	require.NoError(t, err)
	history := decodeBody(t, resp)
	entries, ok := history["history"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 2)

	resp, err = http.Get(ts.URL + "/api/agent/artifacts/latest?file_path=a.py")
	require.NoError(t, err)
	latest := decodeBody(t, resp)
	assert.Equal(t, "1.0.1", latest["version"])

	resp, err = http.Get(ts.URL + "/api/agent/artifacts/version?file_path=a.py&version=1.0.0")
	require.NoError(t, err)
	exact := decodeBody(t, resp)
	assert.Equal(t, "print(1)", exact["content"])

	resp, err = http.Get(ts.URL + "/api/agent/artifacts/latest?file_path=missing.py")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAgentEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/agent/agents")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	agents, ok := body["agents"].([]any)
	require.True(t, ok)
	require.Len(t, agents, 5)

	firstAgent, ok := agents[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Mike", firstAgent["name"])
	agentID, _ := firstAgent["agent_id"].(string)

	resp, err = http.Get(ts.URL + "/api/agent/agents/" + agentID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/agent/agents/name/Nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestChatEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/chat/sessions", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decodeBody(t, resp)
	sessionID, _ := session["session_id"].(string)
	require.NotEmpty(t, sessionID)

	resp = postJSON(t, ts.URL+"/api/chat/sessions/"+sessionID+"/messages",
		map[string]any{"message": "Hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeBody(t, resp)
	assert.Equal(t, "assistant", result["role"])
	assert.NotEmpty(t, result["content"])

	resp, err := http.Get(ts.URL + "/api/chat/sessions/" + sessionID)
	require.NoError(t, err)
	got := decodeBody(t, resp)
	assert.Equal(t, "Hello", got["title"])

	resp, err = http.Get(ts.URL + "/api/chat/sessions/" + sessionID + "/messages")
	require.NoError(t, err)
	history := decodeBody(t, resp)
	messages, ok := history["history"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)

	resp = postJSON(t, ts.URL+"/api/chat/sessions/"+sessionID+"/clear", map[string]any{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/chat/sessions/"+sessionID+"/title",
		bytes.NewReader([]byte(`{"title":"Renamed"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/chat/sessions/"+sessionID+"/archive", map[string]any{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/chat/sessions/"+sessionID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/chat/sessions/" + sessionID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestChatSessionNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, target := range []string{
		fmt.Sprintf("%s/api/chat/sessions/%s/archive", ts.URL, "missing"),
		fmt.Sprintf("%s/api/chat/sessions/%s/clear", ts.URL, "missing"),
	} {
		resp := postJSON(t, target, map[string]any{})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestJSONMiddlewareRejectsWrongContentType(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/agent/analyze", "text/plain",
		bytes.NewReader([]byte("message=hi")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestWebSocketDeliversEvents(t *testing.T) {
	ts, hub := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}

	// Connect acknowledgement arrives first; reading it also guarantees the
	// hub subscription is registered before we emit.
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "connection_status", frame.Type)
	assert.Equal(t, "connected", frame.Payload["status"])

	hub.Emit(broadcast.EventTaskUpdate, map[string]any{"task": "t-1"})
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, broadcast.EventTaskUpdate, frame.Type)
	assert.Equal(t, "t-1", frame.Payload["task"])
	assert.NotEmpty(t, frame.Payload["timestamp"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "user_message"}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "message_received", frame.Type)
	assert.Equal(t, "received", frame.Payload["status"])
}

func TestAnalyzeBroadcastsToHub(t *testing.T) {
	ts, hub := newTestServer(t)

	events := hub.Subscribe("observer")
	defer hub.Unsubscribe("observer")

	resp := postJSON(t, ts.URL+"/api/agent/analyze", map[string]any{"message": "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var types []string
	deadline := time.After(2 * time.Second)
collect:
	for {
		select {
		case event := <-events:
			types = append(types, event.Type)
			if event.Type == broadcast.EventConnectionUpdate && countOf(types, broadcast.EventConnectionUpdate) == 4 {
				break collect
			}
		case <-deadline:
			break collect
		}
	}

	assert.Equal(t, 1, countOf(types, broadcast.EventUserMessage))
	assert.Equal(t, 5, countOf(types, broadcast.EventAgentResponse))
	assert.Equal(t, 4, countOf(types, broadcast.EventConnectionUpdate))
}

func countOf(types []string, want string) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}
