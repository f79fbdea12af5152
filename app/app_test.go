package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulerevents "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain/events"
	"github.com/Black-And-White-Club/ruler-bot/config"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability"
	"github.com/Black-And-White-Club/ruler-bot/internal/testutils"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.DSN = ":memory:"
	cfg.Database.AutoMigrate = true
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.ApplyDefaults()
	return cfg
}

func startApp(t *testing.T) (*App, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)

	a, err := NewApp(ctx, testConfig(), observability.NoOpLogger)
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(ctx) }()
	<-a.Running()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-runErr)
		assert.NoError(t, a.Close())
	})
	return a, ctx
}

func command(t *testing.T, a *App, ctx context.Context, replies <-chan *message.Message, topic string, req rulerevents.CommandRequestPayloadV1) rulerevents.CommandReplyPayloadV1 {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, a.EventBus.Publish(topic, message.NewMessage(topic, body)))

	select {
	case msg := <-replies:
		msg.Ack()
		var reply rulerevents.CommandReplyPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &reply))
		return reply
	case <-ctx.Done():
		t.Fatalf("no reply to %s", topic)
		return rulerevents.CommandReplyPayloadV1{}
	}
}

func TestApp_PlayThenReadLeaderboard(t *testing.T) {
	a, ctx := startApp(t)
	gen := testutils.NewTestDataGenerator(7)

	replies, err := a.EventBus.Subscribe(ctx, rulerevents.ReplyV1)
	require.NoError(t, err)

	caller := gen.GenerateCaller()
	chat := gen.GenerateGroupChat()
	req := rulerevents.CommandRequestPayloadV1{
		User: rulerevents.UserV1{ID: caller.ID, FirstName: caller.FirstName, Username: caller.Username, URL: caller.URL},
		Chat: rulerevents.ChatV1{ID: chat.ID, Type: string(chat.Type)},
	}

	first := command(t, a, ctx, replies, rulerevents.CommandPlayV1, req)
	assert.Equal(t, "dick", first.Command)
	assert.Equal(t, rulerevents.ParseModeMarkdown, first.ParseMode)
	assert.Contains(t, first.Text, "You are #1 in the chat top.")

	second := command(t, a, ctx, replies, rulerevents.CommandPlayV1, req)
	assert.Contains(t, second.Text, "you have already played")

	top := command(t, a, ctx, replies, rulerevents.CommandChatTopV1, req)
	assert.Contains(t, top.Text, "1) [")

	rec := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leaderboards/groups/"+strconv.FormatInt(chat.ID, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var board struct {
		Standings []struct {
			UserID int64 `json:"user_id"`
		} `json:"standings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Standings, 1)
	assert.Equal(t, caller.ID, board.Standings[0].UserID)
}

func TestApp_OperationalEndpoints(t *testing.T) {
	a, _ := startApp(t)

	rec := httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.HTTPServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewApp_BadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"

	_, err := NewApp(context.Background(), cfg, observability.NoOpLogger)
	assert.Error(t, err)
}
