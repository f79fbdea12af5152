package rulerdb

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
)

// Repository defines the contract for game persistence. Every method takes an
// optional accessor; nil means the repository's default connection.
type Repository interface {
	// EnsureUser inserts the global record unless it already exists.
	EnsureUser(ctx context.Context, db tablestore.Accessor, user User) (tablestore.InsertResult, error)

	// GetUser retrieves a global record.
	GetUser(ctx context.Context, db tablestore.Accessor, userID int64) (*User, error)

	// UpdateUserSize stores a new best size.
	UpdateUserSize(ctx context.Context, db tablestore.Accessor, userID int64, size int64) error

	// TopUsers lists global records by size, best first. limit 0 lists all.
	TopUsers(ctx context.Context, db tablestore.Accessor, limit int) ([]User, error)

	// EnsureGroupTable creates the group's table if needed.
	EnsureGroupTable(ctx context.Context, db tablestore.Accessor, groupID int64) error

	// GroupExists reports whether anyone has used the game in the group.
	GroupExists(ctx context.Context, db tablestore.Accessor, groupID int64) (bool, error)

	// EnsurePlayer inserts the group record unless it already exists.
	EnsurePlayer(ctx context.Context, db tablestore.Accessor, groupID int64, player Player) (tablestore.InsertResult, error)

	// GetPlayer retrieves a group record.
	GetPlayer(ctx context.Context, db tablestore.Accessor, groupID, userID int64) (*Player, error)

	// UpdatePlayer writes size and last_played only if last_played still equals
	// prevLastPlayed. ErrNoRowsAffected means another play won.
	UpdatePlayer(ctx context.Context, db tablestore.Accessor, groupID, userID int64, size int64, playedAt time.Time, prevLastPlayed string) error

	// PlayersBySize lists a group by size, best first. limit 0 lists all.
	PlayersBySize(ctx context.Context, db tablestore.Accessor, groupID int64, limit int) ([]Player, error)

	// AddMembership records that the user plays in the group.
	AddMembership(ctx context.Context, db tablestore.Accessor, userID, groupID int64) (tablestore.InsertResult, error)

	// ListMemberships returns the user's group ids in the order they were joined.
	ListMemberships(ctx context.Context, db tablestore.Accessor, userID int64) ([]int64, error)
}
