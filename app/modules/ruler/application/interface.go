package rulerservice

import (
	"context"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

// Service is the game as seen by transports.
type Service interface {
	// RegisterCaller makes sure the caller has a global record and, in a
	// group chat, a record in that group's table.
	RegisterCaller(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[Registration, error], error)

	// Play applies one cooldown-gated random change to the caller's size.
	Play(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[PlayResult, error], error)

	// Rank finds a player's position in a group.
	Rank(ctx context.Context, groupID, userID int64) (results.OperationResult[RankResult, error], error)

	// GroupLeaderboard is the top of the chat the command came from.
	GroupLeaderboard(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[Leaderboard, error], error)

	// GlobalLeaderboard is the top over all users. Private chats only.
	GlobalLeaderboard(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[Leaderboard, error], error)

	// Leaderboard reads any scope without chat restrictions.
	Leaderboard(ctx context.Context, scope Scope) (results.OperationResult[Leaderboard, error], error)
}
