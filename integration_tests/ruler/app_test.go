//go:build integration

package ruler_integration_tests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Black-And-White-Club/ruler-bot/app"
	rulerevents "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain/events"
	"github.com/Black-And-White-Club/ruler-bot/config"
	"github.com/Black-And-White-Club/ruler-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability"
	"github.com/Black-And-White-Club/ruler-bot/internal/testutils"
)

// TestApp_OverNATS drives the whole bot through a real NATS server and
// Postgres: a command goes out on its subject and the reply comes back on the
// inbox named in reply_to.
func TestApp_OverNATS(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = postgresDSN
	cfg.Database.AutoMigrate = true
	cfg.NATS.URL = natsURL
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a, err := app.NewApp(ctx, cfg, observability.NoOpLogger)
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(ctx) }()
	<-a.Running()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-runErr)
		assert.NoError(t, a.Close())
	})

	inbox := "ruler.test.inbox." + t.Name()
	replies, err := a.EventBus.Subscribe(ctx, inbox)
	require.NoError(t, err)

	gen := testutils.NewTestDataGenerator()
	caller := gen.GenerateCaller()
	chat := gen.GenerateGroupChat()

	body, err := json.Marshal(rulerevents.CommandRequestPayloadV1{
		User: rulerevents.UserV1{ID: caller.ID, FirstName: caller.FirstName, Username: caller.Username, URL: caller.URL},
		Chat: rulerevents.ChatV1{ID: chat.ID, Type: string(chat.Type)},
	})
	require.NoError(t, err)

	msg := message.NewMessage("play-1", body)
	msg.Metadata.Set(handlerwrapper.ReplyToMetadataKey, inbox)
	middleware.SetCorrelationID("corr-nats", msg)
	require.NoError(t, a.EventBus.Publish(rulerevents.CommandPlayV1, msg))

	select {
	case out := <-replies:
		out.Ack()
		var reply rulerevents.CommandReplyPayloadV1
		require.NoError(t, json.Unmarshal(out.Payload, &reply))
		assert.Equal(t, chat.ID, reply.ChatID)
		assert.Equal(t, caller.ID, reply.UserID)
		assert.Contains(t, reply.Text, "You are #1 in the chat top.")
		assert.Equal(t, "corr-nats", middleware.MessageCorrelationID(out))
	case <-ctx.Done():
		t.Fatal("no reply over NATS")
	}
}
