package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/gemini"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

const (
	maxMessageLength = 2000
	historyWindow    = 20

	systemPrompt = "You are BrewHaven's virtual barista. You help shoppers pick " +
		"coffees from the BrewHaven catalog, explain brew methods, and answer " +
		"questions about roast profiles and drink types. Keep answers short and " +
		"friendly. If asked about anything unrelated to coffee or the shop, " +
		"politely steer the conversation back."
)

type replyGenerator interface {
	GenerateReply(ctx context.Context, systemPrompt string, history []gemini.Message) (string, error)
}

// MessageView is the public shape of a conversation turn.
type MessageView struct {
	ID        uuid.UUID      `json:"id"`
	Role      enums.ChatRole `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// Service runs the barista assistant conversation.
type Service interface {
	SendMessage(ctx context.Context, userID uuid.UUID, content string) (*MessageView, error)
	History(ctx context.Context, userID uuid.UUID) ([]MessageView, error)
	CountMessages(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	assistant replyGenerator
	logg      *logger.Logger
}

// NewService wires the chat service with its dependencies.
func NewService(repo Repository, assistant replyGenerator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chat repository is required")
	}
	if assistant == nil {
		return nil, fmt.Errorf("assistant client is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, assistant: assistant, logg: logg}, nil
}

// SendMessage stores the user's turn, asks the model for a reply using the
// recent history, and stores the assistant's turn. The user's message is kept
// even when the model call fails, so the conversation survives retries.
func (s *service) SendMessage(ctx context.Context, userID uuid.UUID, content string) (*MessageView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if len(content) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is too long").
			WithDetails(map[string]any{"max_length": maxMessageLength})
	}

	recent, err := s.repo.ListByUser(ctx, userID, historyWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading chat history")
	}

	userTurn := &models.ChatMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Role:    enums.ChatRoleUser,
		Content: content,
	}
	if err := s.repo.Create(ctx, userTurn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing user message")
	}

	history := make([]gemini.Message, 0, len(recent)+1)
	for _, msg := range recent {
		history = append(history, gemini.Message{Role: msg.Role.String(), Content: msg.Content})
	}
	history = append(history, gemini.Message{Role: enums.ChatRoleUser.String(), Content: content})

	reply, err := s.assistant.GenerateReply(ctx, systemPrompt, history)
	if err != nil {
		return nil, err
	}

	assistantTurn := &models.ChatMessage{
		ID:      uuid.New(),
		UserID:  userID,
		Role:    enums.ChatRoleAssistant,
		Content: reply,
	}
	if err := s.repo.Create(ctx, assistantTurn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing assistant message")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"user_id": userID,
		"turns":   len(history),
	})
	s.logg.Info(ctx, "barista reply sent")

	view := toMessageView(assistantTurn)
	return &view, nil
}

// History returns the shopper's recent conversation, oldest first.
func (s *service) History(ctx context.Context, userID uuid.UUID) ([]MessageView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity required")
	}
	messages, err := s.repo.ListByUser(ctx, userID, historyWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading chat history")
	}
	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, toMessageView(&messages[i]))
	}
	return views, nil
}

func (s *service) CountMessages(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func toMessageView(msg *models.ChatMessage) MessageView {
	return MessageView{
		ID:        msg.ID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
