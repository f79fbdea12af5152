package rulerhandlers

import (
	"context"

	rulerservice "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/application"
	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulermetrics "github.com/Black-And-White-Club/ruler-bot/internal/observability/metrics/ruler"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

// ------------------------
// Fake Ruler Service
// ------------------------

type FakeRulerService struct {
	trace []string

	RegisterCallerFunc    func(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[rulerservice.Registration, error], error)
	PlayFunc              func(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[rulerservice.PlayResult, error], error)
	RankFunc              func(ctx context.Context, groupID, userID int64) (results.OperationResult[rulerservice.RankResult, error], error)
	GroupLeaderboardFunc  func(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[rulerservice.Leaderboard, error], error)
	GlobalLeaderboardFunc func(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[rulerservice.Leaderboard, error], error)
	LeaderboardFunc       func(ctx context.Context, scope rulerservice.Scope) (results.OperationResult[rulerservice.Leaderboard, error], error)
}

func NewFakeRulerService() *FakeRulerService {
	return &FakeRulerService{
		trace: []string{},
	}
}

func (f *FakeRulerService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeRulerService) RegisterCaller(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[rulerservice.Registration, error], error) {
	f.record("RegisterCaller")
	if f.RegisterCallerFunc != nil {
		return f.RegisterCallerFunc(ctx, inv)
	}
	return results.SuccessResult[rulerservice.Registration, error](rulerservice.Registration{InGroup: inv.Chat.Type.IsGroup()}), nil
}

func (f *FakeRulerService) Play(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[rulerservice.PlayResult, error], error) {
	f.record("Play")
	if f.PlayFunc != nil {
		return f.PlayFunc(ctx, inv)
	}
	return results.SuccessResult[rulerservice.PlayResult, error](rulerservice.PlayResult{}), nil
}

func (f *FakeRulerService) Rank(ctx context.Context, groupID, userID int64) (results.OperationResult[rulerservice.RankResult, error], error) {
	f.record("Rank")
	if f.RankFunc != nil {
		return f.RankFunc(ctx, groupID, userID)
	}
	return results.SuccessResult[rulerservice.RankResult, error](rulerservice.RankResult{GroupID: groupID, UserID: userID}), nil
}

func (f *FakeRulerService) GroupLeaderboard(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[rulerservice.Leaderboard, error], error) {
	f.record("GroupLeaderboard")
	if f.GroupLeaderboardFunc != nil {
		return f.GroupLeaderboardFunc(ctx, chat)
	}
	return results.SuccessResult[rulerservice.Leaderboard, error](rulerservice.Leaderboard{}), nil
}

func (f *FakeRulerService) GlobalLeaderboard(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[rulerservice.Leaderboard, error], error) {
	f.record("GlobalLeaderboard")
	if f.GlobalLeaderboardFunc != nil {
		return f.GlobalLeaderboardFunc(ctx, chat)
	}
	return results.SuccessResult[rulerservice.Leaderboard, error](rulerservice.Leaderboard{}), nil
}

func (f *FakeRulerService) Leaderboard(ctx context.Context, scope rulerservice.Scope) (results.OperationResult[rulerservice.Leaderboard, error], error) {
	f.record("Leaderboard")
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, scope)
	}
	return results.SuccessResult[rulerservice.Leaderboard, error](rulerservice.Leaderboard{Scope: scope}), nil
}

// --- Accessors for assertions ---

func (f *FakeRulerService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ rulerservice.Service = (*FakeRulerService)(nil)

// ------------------------
// Recording metrics
// ------------------------

type commandCounter struct {
	rulermetrics.NoOpMetrics
	commands []string
}

func (c *commandCounter) RecordCommand(_ context.Context, command string) {
	c.commands = append(c.commands, command)
}
