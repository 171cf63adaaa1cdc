package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pkgerrors "github.com/brewhaven/brewhaven-backend/pkg/errors"
	"github.com/brewhaven/brewhaven-backend/pkg/gemini"
	"github.com/brewhaven/brewhaven-backend/pkg/logger"
)

const chatDDL = `
CREATE TABLE chat_messages (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);`

type scriptedAssistant struct {
	replies  []string
	err      error
	lastSeen []gemini.Message
	calls    int
}

func (s *scriptedAssistant) GenerateReply(_ context.Context, _ string, history []gemini.Message) (string, error) {
	s.lastSeen = history
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func newTestService(t *testing.T, assistant *scriptedAssistant) (Service, Repository) {
	t.Helper()

	dsn := "file:chat_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(chatDDL).Error)

	repo := NewRepository(conn)
	svc, err := NewService(repo, assistant, logger.NewNop())
	require.NoError(t, err)
	return svc, repo
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	assistant := &scriptedAssistant{replies: []string{"Try the Kenyan AA, it is bright and fruity."}}
	svc, _ := newTestService(t, assistant)
	ctx := context.Background()
	shopper := uuid.New()

	view, err := svc.SendMessage(ctx, shopper, "  Something fruity, please.  ")
	require.NoError(t, err)
	assert.Equal(t, "assistant", view.Role.String())
	assert.Equal(t, "Try the Kenyan AA, it is bright and fruity.", view.Content)

	history, err := svc.History(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role.String())
	assert.Equal(t, "Something fruity, please.", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role.String())

	// The model saw exactly one turn on the first message.
	require.Len(t, assistant.lastSeen, 1)
	assert.Equal(t, "user", assistant.lastSeen[0].Role)
}

func TestSendMessageIncludesRecentHistory(t *testing.T) {
	assistant := &scriptedAssistant{replies: []string{"First reply.", "Second reply."}}
	svc, _ := newTestService(t, assistant)
	ctx := context.Background()
	shopper := uuid.New()

	_, err := svc.SendMessage(ctx, shopper, "What do you recommend?")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, shopper, "Something iced.")
	require.NoError(t, err)

	// Second call carries the first exchange plus the new message.
	require.Len(t, assistant.lastSeen, 3)
	assert.Equal(t, "What do you recommend?", assistant.lastSeen[0].Content)
	assert.Equal(t, "First reply.", assistant.lastSeen[1].Content)
	assert.Equal(t, "assistant", assistant.lastSeen[1].Role)
	assert.Equal(t, "Something iced.", assistant.lastSeen[2].Content)
}

func TestSendMessageValidation(t *testing.T) {
	assistant := &scriptedAssistant{replies: []string{"unused"}}
	svc, _ := newTestService(t, assistant)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, uuid.Nil, "hello")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	_, err = svc.SendMessage(ctx, uuid.New(), "   ")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.SendMessage(ctx, uuid.New(), strings.Repeat("a", maxMessageLength+1))
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	assert.Zero(t, assistant.calls)
}

func TestSendMessageKeepsUserTurnWhenModelFails(t *testing.T) {
	assistant := &scriptedAssistant{err: pkgerrors.New(pkgerrors.CodeRateLimit, "assistant is busy, try again shortly")}
	svc, _ := newTestService(t, assistant)
	ctx := context.Background()
	shopper := uuid.New()

	_, err := svc.SendMessage(ctx, shopper, "hello?")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())

	history, err := svc.History(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "user", history[0].Role.String())
}

func TestHistoryScopedPerShopper(t *testing.T) {
	assistant := &scriptedAssistant{replies: []string{"reply"}}
	svc, _ := newTestService(t, assistant)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.SendMessage(ctx, alice, "hi from alice")
	require.NoError(t, err)

	history, err := svc.History(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCountMessages(t *testing.T) {
	assistant := &scriptedAssistant{replies: []string{"reply"}}
	svc, _ := newTestService(t, assistant)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SendMessage(ctx, uuid.New(), fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	count, err := svc.CountMessages(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}
