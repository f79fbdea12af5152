package rulerservice

import (
	"context"
	"strconv"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

// Rank finds a player's position in a group.
func (s *RulerService) Rank(ctx context.Context, groupID, userID int64) (results.OperationResult[RankResult, error], error) {
	return withTelemetry(s, ctx, "Rank", userKey(groupID, userID), func(ctx context.Context) (results.OperationResult[RankResult, error], error) {
		return s.rankLogic(ctx, groupID, userID)
	})
}

func (s *RulerService) rankLogic(ctx context.Context, groupID, userID int64) (results.OperationResult[RankResult, error], error) {
	exists, err := s.repo.GroupExists(ctx, nil, groupID)
	if err != nil {
		return results.OperationResult[RankResult, error]{}, err
	}
	if !exists {
		return results.FailureResult[RankResult, error](ErrUnknownGroup), nil
	}

	players, err := s.repo.PlayersBySize(ctx, nil, groupID, 0)
	if err != nil {
		return results.OperationResult[RankResult, error]{}, err
	}
	rank, ok := rulerdomain.RankOf(playerIDs(players), userID)
	if !ok {
		return results.FailureResult[RankResult, error](ErrNotRanked), nil
	}

	return results.SuccessResult[RankResult, error](RankResult{
		GroupID: rulerdomain.GroupID(groupID),
		UserID:  userID,
		Rank:    rank,
		Size:    players[rank-1].Size,
	}), nil
}

// GroupLeaderboard is the top of the chat the command came from.
func (s *RulerService) GroupLeaderboard(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[Leaderboard, error], error) {
	return withTelemetry(s, ctx, "GroupLeaderboard", strconv.FormatInt(chat.ID, 10), func(ctx context.Context) (results.OperationResult[Leaderboard, error], error) {
		if !chat.Type.IsGroup() {
			return results.FailureResult[Leaderboard, error](ErrGroupOnly), nil
		}
		return s.leaderboardLogic(ctx, GroupScope(chat.ID))
	})
}

// GlobalLeaderboard is the top over all users. Private chats only.
func (s *RulerService) GlobalLeaderboard(ctx context.Context, chat rulerdomain.Chat) (results.OperationResult[Leaderboard, error], error) {
	return withTelemetry(s, ctx, "GlobalLeaderboard", strconv.FormatInt(chat.ID, 10), func(ctx context.Context) (results.OperationResult[Leaderboard, error], error) {
		if chat.Type != rulerdomain.ChatPrivate {
			return results.FailureResult[Leaderboard, error](ErrPrivateOnly), nil
		}
		return s.leaderboardLogic(ctx, GlobalScope())
	})
}

// Leaderboard reads any scope without chat restrictions.
func (s *RulerService) Leaderboard(ctx context.Context, scope Scope) (results.OperationResult[Leaderboard, error], error) {
	id := "global"
	if !scope.Global {
		id = strconv.FormatInt(scope.GroupID, 10)
	}
	return withTelemetry(s, ctx, "Leaderboard", id, func(ctx context.Context) (results.OperationResult[Leaderboard, error], error) {
		return s.leaderboardLogic(ctx, scope)
	})
}

func (s *RulerService) leaderboardLogic(ctx context.Context, scope Scope) (results.OperationResult[Leaderboard, error], error) {
	board := Leaderboard{Scope: scope, Limit: s.topLimit, Standings: []rulerdomain.Standing{}}

	if scope.Global {
		users, err := s.repo.TopUsers(ctx, nil, s.topLimit)
		if err != nil {
			return results.OperationResult[Leaderboard, error]{}, err
		}
		for i, u := range users {
			board.Standings = append(board.Standings, standing(i+1, u.ID, u.FirstName, u.Username, u.URL, u.Size))
		}
		return results.SuccessResult[Leaderboard, error](board), nil
	}

	board.Scope.GroupID = rulerdomain.GroupID(scope.GroupID)
	exists, err := s.repo.GroupExists(ctx, nil, scope.GroupID)
	if err != nil {
		return results.OperationResult[Leaderboard, error]{}, err
	}
	if !exists {
		return results.FailureResult[Leaderboard, error](ErrUnknownGroup), nil
	}

	players, err := s.repo.PlayersBySize(ctx, nil, scope.GroupID, s.topLimit)
	if err != nil {
		return results.OperationResult[Leaderboard, error]{}, err
	}
	for i, p := range players {
		board.Standings = append(board.Standings, standing(i+1, p.ID, p.FirstName, p.Username, p.URL, p.Size))
	}
	return results.SuccessResult[Leaderboard, error](board), nil
}

func standing(pos int, id int64, firstName, username, url string, size int64) rulerdomain.Standing {
	return rulerdomain.Standing{
		Position: pos,
		UserID:   id,
		Name:     rulerdomain.Caller{FirstName: firstName, Username: username}.DisplayName(),
		URL:      rulerdomain.ProfileURL(id, url),
		Size:     size,
	}
}
