package rulerdb

import (
	"context"
	"fmt"
	"time"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
)

// rankOrder puts the biggest first; ties go to the older account.
const rankOrder = "size DESC, id ASC"

// Impl implements the Repository interface on the generic table accessor.
type Impl struct {
	db tablestore.Accessor
}

// NewRepository creates a new ruler repository.
func NewRepository(db tablestore.Accessor) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided accessor, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db tablestore.Accessor) tablestore.Accessor {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error, what string, id int64) error {
	if tablestore.IsNotFound(err) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to get %s %d: %w", what, id, err)
}

// EnsureUser inserts the global record unless it already exists.
func (r *Impl) EnsureUser(ctx context.Context, db tablestore.Accessor, user User) (tablestore.InsertResult, error) {
	db = r.resolveDB(db)
	res, err := db.Insert(ctx, UsersTable, identityValues(user.ID, user.FirstName, user.Username, user.URL))
	if err != nil {
		return 0, fmt.Errorf("failed to ensure user: %w", err)
	}
	return res, nil
}

// GetUser retrieves a global record.
func (r *Impl) GetUser(ctx context.Context, db tablestore.Accessor, userID int64) (*User, error) {
	db = r.resolveDB(db)
	row, err := db.Get(ctx, UsersTable, tablestore.Where{"id": userID})
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	u, err := userFromRow(row)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserSize stores a new best size.
func (r *Impl) UpdateUserSize(ctx context.Context, db tablestore.Accessor, userID int64, size int64) error {
	db = r.resolveDB(db)
	n, err := db.Update(ctx, UsersTable, tablestore.Values{"size": size}, tablestore.Where{"id": userID})
	if err != nil {
		return fmt.Errorf("failed to update user size: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}

// TopUsers lists global records by size, best first.
func (r *Impl) TopUsers(ctx context.Context, db tablestore.Accessor, limit int) ([]User, error) {
	db = r.resolveDB(db)
	rows, err := db.Find(ctx, UsersTable, nil, tablestore.Clause{OrderBy: rankOrder, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]User, 0, len(rows))
	for _, row := range rows {
		u, err := userFromRow(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// EnsureGroupTable creates the group's table if needed.
func (r *Impl) EnsureGroupTable(ctx context.Context, db tablestore.Accessor, groupID int64) error {
	db = r.resolveDB(db)
	if err := db.CreateTable(ctx, rulerdomain.GroupTableName(groupID), GroupSchema); err != nil {
		return fmt.Errorf("failed to ensure group table: %w", err)
	}
	return nil
}

// GroupExists reports whether the group's table has been created.
func (r *Impl) GroupExists(ctx context.Context, db tablestore.Accessor, groupID int64) (bool, error) {
	db = r.resolveDB(db)
	ok, err := db.HasTable(ctx, rulerdomain.GroupTableName(groupID))
	if err != nil {
		return false, fmt.Errorf("failed to check group table: %w", err)
	}
	return ok, nil
}

// EnsurePlayer inserts the group record unless it already exists.
func (r *Impl) EnsurePlayer(ctx context.Context, db tablestore.Accessor, groupID int64, player Player) (tablestore.InsertResult, error) {
	db = r.resolveDB(db)
	res, err := db.Insert(ctx, rulerdomain.GroupTableName(groupID),
		identityValues(player.ID, player.FirstName, player.Username, player.URL))
	if err != nil {
		return 0, fmt.Errorf("failed to ensure player: %w", err)
	}
	return res, nil
}

// GetPlayer retrieves a group record.
func (r *Impl) GetPlayer(ctx context.Context, db tablestore.Accessor, groupID, userID int64) (*Player, error) {
	db = r.resolveDB(db)
	row, err := db.Get(ctx, rulerdomain.GroupTableName(groupID), tablestore.Where{"id": userID})
	if err != nil {
		return nil, notFound(err, "player", userID)
	}
	p, err := playerFromRow(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlayer writes the result of a play if nobody played in between.
func (r *Impl) UpdatePlayer(ctx context.Context, db tablestore.Accessor, groupID, userID int64, size int64, playedAt time.Time, prevLastPlayed string) error {
	db = r.resolveDB(db)
	n, err := db.Update(ctx, rulerdomain.GroupTableName(groupID),
		tablestore.Values{
			"size":        size,
			"last_played": rulerdomain.FormatLastPlayed(playedAt),
		},
		tablestore.Where{"id": userID, "last_played": prevLastPlayed},
	)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// PlayersBySize lists a group by size, best first.
func (r *Impl) PlayersBySize(ctx context.Context, db tablestore.Accessor, groupID int64, limit int) ([]Player, error) {
	db = r.resolveDB(db)
	rows, err := db.Find(ctx, rulerdomain.GroupTableName(groupID), nil, tablestore.Clause{OrderBy: rankOrder, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	players := make([]Player, 0, len(rows))
	for _, row := range rows {
		p, err := playerFromRow(row)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// AddMembership records that the user plays in the group.
func (r *Impl) AddMembership(ctx context.Context, db tablestore.Accessor, userID, groupID int64) (tablestore.InsertResult, error) {
	db = r.resolveDB(db)
	res, err := db.Insert(ctx, MembershipsTable, tablestore.Values{
		"user_id":  userID,
		"group_id": rulerdomain.GroupID(groupID),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add membership: %w", err)
	}
	return res, nil
}

// ListMemberships returns the user's group ids in the order they were joined.
func (r *Impl) ListMemberships(ctx context.Context, db tablestore.Accessor, userID int64) ([]int64, error) {
	db = r.resolveDB(db)
	rows, err := db.Find(ctx, MembershipsTable, tablestore.Where{"user_id": userID},
		tablestore.Clause{OrderBy: "joined_at ASC, group_id ASC"})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	groups := make([]int64, 0, len(rows))
	for _, row := range rows {
		id, err := row.Int64("group_id")
		if err != nil {
			return nil, fmt.Errorf("membership row: %w", err)
		}
		groups = append(groups, id)
	}
	return groups, nil
}
