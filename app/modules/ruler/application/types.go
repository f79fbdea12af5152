package rulerservice

import (
	"time"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
)

// Registration tells which records the ensure step created.
type Registration struct {
	UserCreated   bool
	PlayerCreated bool
	InGroup       bool
}

// PlayResult is what a play command reports back.
type PlayResult struct {
	Outcome rulerdomain.Outcome
	// Delta is the magnitude of the change; zero when nothing changed.
	Delta    int64
	Size     int64
	Rank     int
	NextPlay time.Duration
}

// RankResult is a player's standing in one group.
type RankResult struct {
	GroupID int64
	UserID  int64
	Rank    int
	Size    int64
}

// Scope selects a leaderboard.
type Scope struct {
	Global  bool
	GroupID int64
}

// GlobalScope is the leaderboard over every user.
func GlobalScope() Scope { return Scope{Global: true} }

// GroupScope is the leaderboard of one group chat.
func GroupScope(groupID int64) Scope { return Scope{GroupID: groupID} }

// Leaderboard is the top of a scope, best first.
type Leaderboard struct {
	Scope     Scope
	Limit     int
	Standings []rulerdomain.Standing
}
