package rulerdb

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
)

const (
	UsersTable       = "users"
	MembershipsTable = "user_groups"
)

// User is a player's global record. Size is the best size over all of the
// user's groups.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64  `bun:"id,pk"`
	FirstName string `bun:"firstname,notnull,default:'None'"`
	Username  string `bun:"username,notnull,default:'None'"`
	URL       string `bun:"url,notnull,default:'None'"`
	Size      int64  `bun:"size,notnull,default:0"`
}

// GroupMembership records that a user has played in a group.
type GroupMembership struct {
	bun.BaseModel `bun:"table:user_groups,alias:ug"`

	UserID   int64     `bun:"user_id,pk"`
	GroupID  int64     `bun:"group_id,pk"`
	JoinedAt time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
}

// Player is a user's record inside one group table. LastPlayed keeps the
// stored text so updates can be made conditional on it.
type Player struct {
	ID         int64
	FirstName  string
	Username   string
	URL        string
	Size       int64
	LastPlayed string
}

// PlayedAt parses LastPlayed.
func (p Player) PlayedAt() (time.Time, error) {
	return rulerdomain.ParseLastPlayed(p.LastPlayed)
}

// GroupSchema is the layout of every group_<id> table.
var GroupSchema = tablestore.Schema{
	{Name: "id", Decl: "BIGINT PRIMARY KEY"},
	{Name: "firstname", Decl: "TEXT DEFAULT 'None'"},
	{Name: "username", Decl: "TEXT DEFAULT 'None'"},
	{Name: "url", Decl: "TEXT DEFAULT 'None'"},
	{Name: "size", Decl: "BIGINT DEFAULT 0"},
	{Name: "last_played", Decl: "TEXT DEFAULT '" + rulerdomain.NeverPlayed + "'"},
}

func identityValues(id int64, firstName, username, url string) tablestore.Values {
	return tablestore.Values{
		"id":        id,
		"firstname": orUnset(firstName),
		"username":  orUnset(username),
		"url":       orUnset(url),
	}
}

func orUnset(s string) string {
	if s == "" {
		return rulerdomain.Unset
	}
	return s
}

func userFromRow(row tablestore.Row) (User, error) {
	var (
		u   User
		err error
	)
	if u.ID, err = row.Int64("id"); err != nil {
		return User{}, fmt.Errorf("users row: %w", err)
	}
	if u.Size, err = row.Int64("size"); err != nil {
		return User{}, fmt.Errorf("users row %d: %w", u.ID, err)
	}
	u.FirstName, _ = row.String("firstname")
	u.Username, _ = row.String("username")
	u.URL, _ = row.String("url")
	return u, nil
}

func playerFromRow(row tablestore.Row) (Player, error) {
	var (
		p   Player
		err error
	)
	if p.ID, err = row.Int64("id"); err != nil {
		return Player{}, fmt.Errorf("group row: %w", err)
	}
	if p.Size, err = row.Int64("size"); err != nil {
		return Player{}, fmt.Errorf("group row %d: %w", p.ID, err)
	}
	if p.LastPlayed, err = row.String("last_played"); err != nil {
		return Player{}, fmt.Errorf("group row %d: %w", p.ID, err)
	}
	p.FirstName, _ = row.String("firstname")
	p.Username, _ = row.String("username")
	p.URL, _ = row.String("url")
	return p, nil
}
