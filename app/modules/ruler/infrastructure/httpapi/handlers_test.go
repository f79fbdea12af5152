package rulerhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulerservice "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/application"
	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability"
	"github.com/Black-And-White-Club/ruler-bot/internal/results"
)

type fakeService struct {
	rulerservice.Service

	LeaderboardFunc func(ctx context.Context, scope rulerservice.Scope) (results.OperationResult[rulerservice.Leaderboard, error], error)
	RankFunc        func(ctx context.Context, groupID, userID int64) (results.OperationResult[rulerservice.RankResult, error], error)
}

func (f *fakeService) Leaderboard(ctx context.Context, scope rulerservice.Scope) (results.OperationResult[rulerservice.Leaderboard, error], error) {
	return f.LeaderboardFunc(ctx, scope)
}

func (f *fakeService) Rank(ctx context.Context, groupID, userID int64) (results.OperationResult[rulerservice.RankResult, error], error) {
	return f.RankFunc(ctx, groupID, userID)
}

func newServer(svc rulerservice.Service, cfg Config) http.Handler {
	r := chi.NewRouter()
	NewHandlers(svc, observability.NoOpLogger).Routes(r, cfg)
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLeaderboardEndpoints(t *testing.T) {
	var gotScope rulerservice.Scope
	svc := &fakeService{
		LeaderboardFunc: func(ctx context.Context, scope rulerservice.Scope) (results.OperationResult[rulerservice.Leaderboard, error], error) {
			gotScope = scope
			if !scope.Global && scope.GroupID == 404 {
				return results.FailureResult[rulerservice.Leaderboard, error](rulerservice.ErrUnknownGroup), nil
			}
			if !scope.Global && scope.GroupID == 500 {
				return results.OperationResult[rulerservice.Leaderboard, error]{}, errors.New("db down")
			}
			board := rulerservice.Leaderboard{Scope: scope, Limit: 10, Standings: []rulerdomain.Standing{
				{Position: 1, UserID: 7, Name: "ann", URL: "https://t.me/ann", Size: 12},
			}}
			if !scope.Global {
				board.Scope.GroupID = rulerdomain.GroupID(scope.GroupID)
			}
			return results.SuccessResult[rulerservice.Leaderboard, error](board), nil
		},
	}
	srv := newServer(svc, Config{})

	t.Run("global", func(t *testing.T) {
		rec := get(t, srv, "/leaderboards/global")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotScope.Global)

		var resp leaderboardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "global", resp.Scope)
		assert.Equal(t, []standingResponse{{Position: 1, UserID: 7, Name: "ann", URL: "https://t.me/ann", Size: 12}}, resp.Standings)
	})

	t.Run("group by chat id", func(t *testing.T) {
		rec := get(t, srv, "/leaderboards/groups/-100123")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(-100123), gotScope.GroupID)

		var resp leaderboardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "group", resp.Scope)
		assert.Equal(t, int64(100123), resp.GroupID)
	})

	t.Run("unknown group", func(t *testing.T) {
		rec := get(t, srv, "/leaderboards/groups/404")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), rulerservice.ErrUnknownGroup.Error())
	})

	t.Run("bad id", func(t *testing.T) {
		rec := get(t, srv, "/leaderboards/groups/abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		rec := get(t, srv, "/leaderboards/groups/500")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestPlayerRank(t *testing.T) {
	svc := &fakeService{
		RankFunc: func(ctx context.Context, groupID, userID int64) (results.OperationResult[rulerservice.RankResult, error], error) {
			if userID == 9 {
				return results.FailureResult[rulerservice.RankResult, error](rulerservice.ErrNotRanked), nil
			}
			return results.SuccessResult[rulerservice.RankResult, error](rulerservice.RankResult{
				GroupID: rulerdomain.GroupID(groupID), UserID: userID, Rank: 2, Size: 5,
			}), nil
		},
	}
	srv := newServer(svc, Config{})

	rec := get(t, srv, "/groups/-55/players/7/rank")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp rankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rankResponse{GroupID: 55, UserID: 7, Rank: 2, Size: 5}, resp)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/groups/55/players/9/rank").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/groups/55/players/x/rank").Code)
}

func TestRateLimit(t *testing.T) {
	svc := &fakeService{
		LeaderboardFunc: func(ctx context.Context, scope rulerservice.Scope) (results.OperationResult[rulerservice.Leaderboard, error], error) {
			return results.SuccessResult[rulerservice.Leaderboard, error](rulerservice.Leaderboard{Scope: scope}), nil
		},
	}
	srv := newServer(svc, Config{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, get(t, srv, "/leaderboards/global").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, srv, "/leaderboards/global").Code)

	// a different client has its own budget
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/leaderboards/global", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
