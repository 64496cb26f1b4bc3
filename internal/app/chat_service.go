package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"path2prevention/internal/ai"
	"path2prevention/internal/chat"
	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
)

// SessionStore keeps chat sessions between turns. Get returns nil, nil for
// an unknown or expired session.
type SessionStore interface {
	Get(ctx context.Context, id string) (*chat.Session, error)
	Save(ctx context.Context, session *chat.Session) error
	Delete(ctx context.Context, id string) (bool, error)
}

type SendMessageInput struct {
	SessionID   string
	Content     string
	QuickOption bool
}

type SendMessageResult struct {
	SessionID string     `json:"session_id"`
	Reply     chat.Reply `json:"reply"`
}

type ChatService struct {
	store  SessionStore
	router *chat.Router
	log    *logger.Logger
}

func NewChatService(store SessionStore, router *chat.Router, log *logger.Logger) *ChatService {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatService{store: store, router: router, log: log}
}

func (s *ChatService) StartSession(ctx context.Context) (*chat.Session, error) {
	session := chat.NewSession(uuid.NewString(), time.Now())
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) GetSession(ctx context.Context, id string) (*chat.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SendMessage runs one turn. An empty session id starts a new session.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	var session *chat.Session
	if strings.TrimSpace(input.SessionID) == "" {
		session = chat.NewSession(uuid.NewString(), time.Now())
	} else {
		found, err := s.GetSession(ctx, input.SessionID)
		if err != nil {
			return nil, err
		}
		session = found
	}

	var reply chat.Reply
	if input.QuickOption {
		reply = s.router.HandleQuickOption(ctx, session, content)
	} else {
		reply = s.router.Handle(ctx, session, content)
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.log.Debug("chat turn handled", "session_id", session.ID, "rule", reply.Rule)
	return &SendMessageResult{SessionID: session.ID, Reply: reply}, nil
}

func (s *ChatService) EndSession(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

// ChatFinder adapts the program and semantic services to the chat router.
type ChatFinder struct {
	programs *ProgramService
	semantic *SemanticService
}

func NewChatFinder(programs *ProgramService, semantic *SemanticService) *ChatFinder {
	return &ChatFinder{programs: programs, semantic: semantic}
}

// ByDeliveryMode filters the full catalogue on an exact (case-insensitive)
// stored delivery mode.
func (f *ChatFinder) ByDeliveryMode(ctx context.Context, mode string) ([]model.ProgramRow, error) {
	all, err := f.programs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProgramRow, 0)
	for _, row := range all.Programs {
		if strings.EqualFold(row.DeliveryMode, mode) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *ChatFinder) ByName(ctx context.Context, name string) ([]model.ProgramRow, error) {
	list, err := f.programs.ByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return list.Programs, nil
}

func (f *ChatFinder) Semantic(ctx context.Context, query string, history []string, limit int) (*chat.SemanticResult, error) {
	res, err := f.semantic.Search(ctx, SemanticInput{Query: query, History: history, Limit: limit})
	if err != nil {
		return nil, err
	}
	return &chat.SemanticResult{Results: res.Results, Intent: res.Intent}, nil
}

// ChatLLM adapts the OpenAI-compatible client to the router's Completer.
type ChatLLM struct {
	client ChatCompleter
	cfg    ai.ChatConfig
	opts   ai.CompletionOptions
}

func NewChatLLM(client ChatCompleter, cfg ai.ChatConfig, opts ai.CompletionOptions) *ChatLLM {
	return &ChatLLM{client: client, cfg: cfg, opts: opts}
}

func (l *ChatLLM) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return l.client.Complete(ctx, l.cfg, []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}, l.opts)
}
