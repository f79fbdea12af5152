package rulerhandlers

import (
	"context"

	rulerevents "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain/events"
	"github.com/Black-And-White-Club/ruler-bot/internal/handlerwrapper"
)

// Handlers defines the interface for ruler command handlers.
type Handlers interface {
	// HandleStart greets the caller and explains the game.
	HandleStart(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error)

	// HandlePlay runs one round of the game for the caller.
	HandlePlay(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error)

	// HandleChatTop answers with the leaderboard of the calling group.
	HandleChatTop(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error)

	// HandleGlobalTop answers with the leaderboard over all users.
	HandleGlobalTop(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error)

	HandleHelp(ctx context.Context, payload *rulerevents.CommandRequestPayloadV1) ([]handlerwrapper.Result, error)
}
