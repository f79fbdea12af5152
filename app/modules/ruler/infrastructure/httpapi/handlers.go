// Package rulerhttp serves the read side of the game over HTTP.
package rulerhttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	rulerservice "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/application"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability/attr"
)

// Config tunes the API.
type Config struct {
	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Handlers serves leaderboards and ranks.
type Handlers struct {
	service rulerservice.Service
	logger  *slog.Logger
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(service rulerservice.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{service: service, logger: logger}
}

// Routes registers the endpoints on r.
func (h *Handlers) Routes(r chi.Router, cfg Config) {
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(RateLimitMiddleware(NewIPRateLimiter(rate.Limit(cfg.RateLimit), burst)))
	}

	r.Get("/leaderboards/global", h.GlobalLeaderboard)
	r.Get("/leaderboards/groups/{groupID}", h.GroupLeaderboard)
	r.Get("/groups/{groupID}/players/{userID}/rank", h.PlayerRank)
}

type standingResponse struct {
	Position int    `json:"position"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

type leaderboardResponse struct {
	Scope     string             `json:"scope"`
	GroupID   int64              `json:"group_id,omitempty"`
	Limit     int                `json:"limit"`
	Standings []standingResponse `json:"standings"`
}

type rankResponse struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
	Rank    int   `json:"rank"`
	Size    int64 `json:"size"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GlobalLeaderboard serves GET /leaderboards/global.
func (h *Handlers) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.leaderboard(w, r, rulerservice.GlobalScope())
}

// GroupLeaderboard serves GET /leaderboards/groups/{groupID}.
func (h *Handlers) GroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	groupID, ok := int64Param(w, r, "groupID")
	if !ok {
		return
	}
	h.leaderboard(w, r, rulerservice.GroupScope(groupID))
}

func (h *Handlers) leaderboard(w http.ResponseWriter, r *http.Request, scope rulerservice.Scope) {
	result, err := h.service.Leaderboard(r.Context(), scope)
	if err != nil {
		h.internalError(w, r, "Leaderboard", err)
		return
	}
	if result.IsFailure() {
		writeFailure(w, *result.Failure)
		return
	}

	board := *result.Success
	resp := leaderboardResponse{
		Scope:     "global",
		Limit:     board.Limit,
		Standings: make([]standingResponse, 0, len(board.Standings)),
	}
	if !board.Scope.Global {
		resp.Scope = "group"
		resp.GroupID = board.Scope.GroupID
	}
	for _, st := range board.Standings {
		resp.Standings = append(resp.Standings, standingResponse{
			Position: st.Position,
			UserID:   st.UserID,
			Name:     st.Name,
			URL:      st.URL,
			Size:     st.Size,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlayerRank serves GET /groups/{groupID}/players/{userID}/rank.
func (h *Handlers) PlayerRank(w http.ResponseWriter, r *http.Request) {
	groupID, ok := int64Param(w, r, "groupID")
	if !ok {
		return
	}
	userID, ok := int64Param(w, r, "userID")
	if !ok {
		return
	}

	result, err := h.service.Rank(r.Context(), groupID, userID)
	if err != nil {
		h.internalError(w, r, "PlayerRank", err)
		return
	}
	if result.IsFailure() {
		writeFailure(w, *result.Failure)
		return
	}

	rank := *result.Success
	writeJSON(w, http.StatusOK, rankResponse{
		GroupID: rank.GroupID,
		UserID:  rank.UserID,
		Rank:    rank.Rank,
		Size:    rank.Size,
	})
}

func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "HTTP request failed",
		attr.String("operation", op),
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func writeFailure(w http.ResponseWriter, failure error) {
	status := http.StatusBadRequest
	if errors.Is(failure, rulerservice.ErrUnknownGroup) || errors.Is(failure, rulerservice.ErrNotRanked) {
		status = http.StatusNotFound
	}
	writeError(w, status, failure.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
