package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/domain"
	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
	"github.com/lhyssy/AI-Agent-code-web/internal/llm"
)

type fakeEmitter struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (f *fakeEmitter) Emit(eventType string, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcast.Event{Type: eventType, Payload: payload})
}

type failingClient struct{}

func (failingClient) Complete(context.Context, []llm.Message) (string, error) {
	return "", apperrors.NewCompletion(errors.New("boom"), "")
}

func (f failingClient) CompleteCode(ctx context.Context, messages []llm.Message) (string, error) {
	return f.Complete(ctx, messages)
}

func newTestService() (*Service, *fakeEmitter) {
	emitter := &fakeEmitter{}
	return NewService(llm.NewMockClient(), emitter), emitter
}

func TestCreateAndGetSession(t *testing.T) {
	service, _ := newTestService()

	session := service.CreateSession("My Topic")
	assert.Equal(t, "My Topic", session.Title)
	assert.False(t, session.IsArchived)

	got, err := service.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = service.GetSession("missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProcessMessageLazySessionAndTitle(t *testing.T) {
	service, emitter := newTestService()

	result, err := service.ProcessMessage(context.Background(), "lazy-id", "Hello", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.MessageRoleAssistant, result.Role)
	assert.NotEmpty(t, result.Content)
	assert.NotEmpty(t, result.MessageID)

	session, err := service.GetSession("lazy-id")
	require.NoError(t, err)
	assert.Equal(t, "Hello", session.Title)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, domain.MessageRoleUser, session.Messages[0].Role)
	assert.Equal(t, domain.MessageRoleAssistant, session.Messages[1].Role)

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	require.Len(t, emitter.events, 1)
	assert.Equal(t, broadcast.EventConversationUpdate, emitter.events[0].Type)
}

func TestSessionLookupsReturnSnapshots(t *testing.T) {
	service, _ := newTestService()

	session := service.CreateSession("Topic")
	session.Title = "scribbled"
	session.Messages = append(session.Messages, &domain.ChatMessage{Content: "junk"})

	got, err := service.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Topic", got.Title)
	assert.Empty(t, got.Messages)

	result, err := service.ProcessMessage(context.Background(), session.ID, "Hello", nil)
	require.NoError(t, err)
	require.Len(t, result.Session.Messages, 2)

	// The returned session is a snapshot: later messages do not reach it.
	_, err = service.ProcessMessage(context.Background(), session.ID, "Again", nil)
	require.NoError(t, err)
	assert.Len(t, result.Session.Messages, 2)

	got, err = service.GetSession(session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 4)
}

func TestProcessMessageLongTitleTruncated(t *testing.T) {
	service, _ := newTestService()

	long := strings.Repeat("x", 30)
	_, err := service.ProcessMessage(context.Background(), "s-long", long, nil)
	require.NoError(t, err)

	session, err := service.GetSession("s-long")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 20)+"...", session.Title)
}

func TestProcessMessageEmptyRejected(t *testing.T) {
	service, _ := newTestService()
	_, err := service.ProcessMessage(context.Background(), "s", "", nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProcessMessageGatewayFailureKeepsUserMessage(t *testing.T) {
	emitter := &fakeEmitter{}
	service := NewService(failingClient{}, emitter)

	_, err := service.ProcessMessage(context.Background(), "s-fail", "hi", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCompletion(err))

	// The user message was appended before the failing call.
	history := service.SessionHistory("s-fail")
	require.Len(t, history, 1)
	assert.Equal(t, domain.MessageRoleUser, history[0].Role)
}

func TestListSessions(t *testing.T) {
	service, _ := newTestService()

	service.CreateSession("one")
	second := service.CreateSession("two")
	require.True(t, service.ArchiveSession(second.ID))

	summaries := service.ListSessions()
	require.Len(t, summaries, 2)

	byTitle := map[string]SessionSummary{}
	for _, summary := range summaries {
		byTitle[summary.Title] = summary
	}
	assert.False(t, byTitle["one"].IsArchived)
	assert.True(t, byTitle["two"].IsArchived)
}

func TestDeleteSession(t *testing.T) {
	service, _ := newTestService()

	session := service.CreateSession("")
	require.True(t, service.DeleteSession(session.ID))
	assert.False(t, service.DeleteSession(session.ID))

	_, err := service.GetSession(session.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClearSessionHistory(t *testing.T) {
	service, _ := newTestService()

	_, err := service.ProcessMessage(context.Background(), "s-clear", "hi", nil)
	require.NoError(t, err)
	require.NotEmpty(t, service.SessionHistory("s-clear"))

	require.True(t, service.ClearSessionHistory("s-clear"))
	assert.Empty(t, service.SessionHistory("s-clear"))

	// Session itself survives.
	_, err = service.GetSession("s-clear")
	require.NoError(t, err)

	assert.False(t, service.ClearSessionHistory("missing"))
}

func TestUpdateSessionTitle(t *testing.T) {
	service, _ := newTestService()

	session := service.CreateSession("old")
	require.True(t, service.UpdateSessionTitle(session.ID, "new"))

	got, err := service.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)

	assert.False(t, service.UpdateSessionTitle("missing", "x"))
}

func TestSessionHistoryUnknownIDIsEmpty(t *testing.T) {
	service, _ := newTestService()
	assert.Empty(t, service.SessionHistory("nope"))
}
