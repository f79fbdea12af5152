package rulerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	rulerdb "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

// Play applies one cooldown-gated random change to the caller's size in the
// current group. The caller must have been registered in that group.
func (s *RulerService) Play(ctx context.Context, inv rulerdomain.Invocation) (results.OperationResult[PlayResult, error], error) {
	playTx := func(ctx context.Context, db tablestore.Accessor) (results.OperationResult[PlayResult, error], error) {
		return s.playLogic(ctx, db, inv)
	}

	result, err := withTelemetry(s, ctx, "Play", userKey(inv.Chat.ID, inv.Caller.ID), func(ctx context.Context) (results.OperationResult[PlayResult, error], error) {
		return runInTx(s, ctx, playTx)
	})
	if err == nil && result.IsSuccess() && s.metrics != nil {
		s.metrics.RecordPlay(ctx, string(result.Success.Outcome), int(result.Success.signedDelta()))
	}
	return result, err
}

func (s *RulerService) playLogic(ctx context.Context, db tablestore.Accessor, inv rulerdomain.Invocation) (results.OperationResult[PlayResult, error], error) {
	if !inv.Chat.Type.IsGroup() {
		return results.FailureResult[PlayResult, error](ErrGroupOnly), nil
	}
	userID, groupID := inv.Caller.ID, inv.Chat.ID

	if _, err := s.repo.GetUser(ctx, db, userID); err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	player, err := s.repo.GetPlayer(ctx, db, groupID, userID)
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	if _, err := s.repo.AddMembership(ctx, db, userID, groupID); err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}

	lastPlayed, err := player.PlayedAt()
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	now := s.now().UTC()

	if !rulerdomain.Eligible(lastPlayed, now, s.policy.Cooldown) {
		return s.alreadyPlayed(ctx, db, groupID, player, now)
	}

	delta, err := rulerdomain.DrawDelta(s.rng, s.policy.MinDelta, s.policy.MaxDelta)
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	newSize := rulerdomain.ApplyDelta(player.Size, delta)

	err = s.repo.UpdatePlayer(ctx, db, groupID, userID, newSize, now, player.LastPlayed)
	if errors.Is(err, rulerdb.ErrNoRowsAffected) {
		// Someone else's play landed between our read and write.
		s.logger.WarnContext(ctx, "Concurrent play detected",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("user_id", userID),
			attr.Int64("group_id", groupID),
		)
		current, err := s.repo.GetPlayer(ctx, db, groupID, userID)
		if err != nil {
			return results.OperationResult[PlayResult, error]{}, err
		}
		return s.alreadyPlayed(ctx, db, groupID, current, now)
	}
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}

	rank, err := s.rankIn(ctx, db, groupID, userID)
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}

	best, err := s.bestSize(ctx, db, userID)
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	if err := s.repo.UpdateUserSize(ctx, db, userID, best); err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}

	s.logger.InfoContext(ctx, "Size changed",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("user_id", userID),
		attr.Int64("group_id", groupID),
		attr.Int64("delta", delta),
		attr.Int64("size", newSize),
		attr.Int64("best_size", best),
	)

	return results.SuccessResult[PlayResult, error](PlayResult{
		Outcome:  rulerdomain.OutcomeOf(delta),
		Delta:    abs(delta),
		Size:     newSize,
		Rank:     rank,
		NextPlay: s.policy.Cooldown,
	}), nil
}

func (s *RulerService) alreadyPlayed(ctx context.Context, db tablestore.Accessor, groupID int64, player *rulerdb.Player, now time.Time) (results.OperationResult[PlayResult, error], error) {
	lastPlayed, err := player.PlayedAt()
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	rank, err := s.rankIn(ctx, db, groupID, player.ID)
	if err != nil {
		return results.OperationResult[PlayResult, error]{}, err
	}
	return results.SuccessResult[PlayResult, error](PlayResult{
		Outcome:  rulerdomain.OutcomeAlreadyPlayed,
		Size:     player.Size,
		Rank:     rank,
		NextPlay: rulerdomain.Remaining(lastPlayed, now, s.policy.Cooldown),
	}), nil
}

// rankIn scans the whole group ordered by size. A registered player is always
// listed, so absence is an error here.
func (s *RulerService) rankIn(ctx context.Context, db tablestore.Accessor, groupID, userID int64) (int, error) {
	players, err := s.repo.PlayersBySize(ctx, db, groupID, 0)
	if err != nil {
		return 0, err
	}
	rank, ok := rulerdomain.RankOf(playerIDs(players), userID)
	if !ok {
		return 0, fmt.Errorf("%w: user %d in group %d", ErrNotRanked, userID, groupID)
	}
	return rank, nil
}

// bestSize looks the user up in every group they joined. Groups without a
// record for the user are skipped.
func (s *RulerService) bestSize(ctx context.Context, db tablestore.Accessor, userID int64) (int64, error) {
	groups, err := s.repo.ListMemberships(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	sizes := make([]int64, 0, len(groups))
	for _, g := range groups {
		p, err := s.repo.GetPlayer(ctx, db, g, userID)
		if errors.Is(err, rulerdb.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		sizes = append(sizes, p.Size)
	}
	return rulerdomain.BestSize(sizes), nil
}

func playerIDs(players []rulerdb.Player) []int64 {
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func (r PlayResult) signedDelta() int64 {
	if r.Outcome == rulerdomain.OutcomeShrank {
		return -r.Delta
	}
	return r.Delta
}
