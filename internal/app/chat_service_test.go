package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path2prevention/internal/ai"
	"path2prevention/internal/cache"
	"path2prevention/internal/chat"
	"path2prevention/internal/model"
)

func newChatService(t *testing.T, store *fakeProgramStore) *ChatService {
	t.Helper()
	programs := NewProgramService(store, 25, nil)
	semantic := NewSemanticService(&fakeVectorStore{stats: &model.VectorStats{}}, store, &fakeEmbedder{}, nil, semanticConfig(), nil)
	router := chat.NewRouter(NewChatFinder(programs, semantic), nil, chat.Config{})
	return NewChatService(cache.NewMemorySessionStore(time.Hour), router, nil)
}

func TestChatServiceSessionLifecycle(t *testing.T) {
	svc := newChatService(t, &fakeProgramStore{})
	ctx := context.Background()

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, chat.Greeting, session.Messages[0].Text)

	res, err := svc.SendMessage(ctx, SendMessageInput{SessionID: session.ID, Content: "I want to take the assessment"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, res.SessionID)
	assert.Equal(t, "route_to_assessment", res.Reply.Rule)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 4)

	require.NoError(t, svc.EndSession(ctx, session.ID))
	_, err = svc.GetSession(ctx, session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, svc.EndSession(ctx, session.ID), ErrSessionNotFound)
}

func TestChatServiceValidation(t *testing.T) {
	svc := newChatService(t, &fakeProgramStore{})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, SendMessageInput{Content: "   "})
	require.ErrorIs(t, err, ErrMessageEmpty)
	_, err = svc.SendMessage(ctx, SendMessageInput{SessionID: "missing", Content: "hi"})
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.GetSession(ctx, " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestChatServiceStartsSessionImplicitly(t *testing.T) {
	svc := newChatService(t, &fakeProgramStore{})

	res, err := svc.SendMessage(context.Background(), SendMessageInput{Content: "hello there"})
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)

	stored, err := svc.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "hello there", stored.Messages[1].Text)
}

func TestChatServiceQuickOption(t *testing.T) {
	svc := newChatService(t, &fakeProgramStore{})
	ctx := context.Background()
	session, err := svc.StartSession(ctx)
	require.NoError(t, err)

	res, err := svc.SendMessage(ctx, SendMessageInput{SessionID: session.ID, Content: "Take assessment now", QuickOption: true})
	require.NoError(t, err)
	assert.Equal(t, "route_to_assessment", res.Reply.Rule)
	require.NotNil(t, res.Reply.Navigate)
	assert.Equal(t, chat.PageRiskAssessment, res.Reply.Navigate.Page)
}

func TestChatFinderByDeliveryMode(t *testing.T) {
	store := &fakeProgramStore{rows: []model.ProgramRow{
		row(1, "Clinic", "In-Person", "GA"),
		row(2, "Stream", model.DeliveryVirtualLive, "GA"),
	}}
	finder := NewChatFinder(NewProgramService(store, 25, nil), nil)

	got, err := finder.ByDeliveryMode(context.Background(), model.DeliveryInPerson)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clinic"}, names(got))

	store.err = errDBDown
	got, err = finder.ByDeliveryMode(context.Background(), model.DeliveryHybrid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Community Wellness Network"}, names(got))
}

func TestChatLLMSendsSystemAndUserMessages(t *testing.T) {
	client := &fakeCompleter{reply: "Sure."}
	llm := NewChatLLM(client, ai.ChatConfig{Model: "m"}, ai.CompletionOptions{MaxTokens: 150, Temperature: 0.7})

	got, err := llm.Complete(context.Background(), "be brief", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Sure.", got)
	require.Len(t, client.messages, 2)
	assert.Equal(t, "system", client.messages[0].Role)
	assert.Equal(t, "hi", client.messages[1].Content)
	assert.Equal(t, 150, client.opts.MaxTokens)
}
