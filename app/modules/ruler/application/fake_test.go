package rulerservice

import (
	"context"
	"time"

	rulerdb "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
)

// ------------------------
// Fake Ruler Repo
// ------------------------

type FakeRulerRepo struct {
	trace []string

	EnsureUserFunc       func(ctx context.Context, db tablestore.Accessor, user rulerdb.User) (tablestore.InsertResult, error)
	GetUserFunc          func(ctx context.Context, db tablestore.Accessor, userID int64) (*rulerdb.User, error)
	UpdateUserSizeFunc   func(ctx context.Context, db tablestore.Accessor, userID int64, size int64) error
	TopUsersFunc         func(ctx context.Context, db tablestore.Accessor, limit int) ([]rulerdb.User, error)
	EnsureGroupTableFunc func(ctx context.Context, db tablestore.Accessor, groupID int64) error
	GroupExistsFunc      func(ctx context.Context, db tablestore.Accessor, groupID int64) (bool, error)
	EnsurePlayerFunc     func(ctx context.Context, db tablestore.Accessor, groupID int64, player rulerdb.Player) (tablestore.InsertResult, error)
	GetPlayerFunc        func(ctx context.Context, db tablestore.Accessor, groupID, userID int64) (*rulerdb.Player, error)
	UpdatePlayerFunc     func(ctx context.Context, db tablestore.Accessor, groupID, userID int64, size int64, playedAt time.Time, prevLastPlayed string) error
	PlayersBySizeFunc    func(ctx context.Context, db tablestore.Accessor, groupID int64, limit int) ([]rulerdb.Player, error)
	AddMembershipFunc    func(ctx context.Context, db tablestore.Accessor, userID, groupID int64) (tablestore.InsertResult, error)
	ListMembershipsFunc  func(ctx context.Context, db tablestore.Accessor, userID int64) ([]int64, error)
}

func NewFakeRulerRepo() *FakeRulerRepo {
	return &FakeRulerRepo{
		trace: []string{},
	}
}

func (f *FakeRulerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRulerRepo) EnsureUser(ctx context.Context, db tablestore.Accessor, user rulerdb.User) (tablestore.InsertResult, error) {
	f.record("EnsureUser")
	if f.EnsureUserFunc != nil {
		return f.EnsureUserFunc(ctx, db, user)
	}
	return tablestore.Inserted, nil
}

func (f *FakeRulerRepo) GetUser(ctx context.Context, db tablestore.Accessor, userID int64) (*rulerdb.User, error) {
	f.record("GetUser")
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, db, userID)
	}
	return &rulerdb.User{ID: userID}, nil
}

func (f *FakeRulerRepo) UpdateUserSize(ctx context.Context, db tablestore.Accessor, userID int64, size int64) error {
	f.record("UpdateUserSize")
	if f.UpdateUserSizeFunc != nil {
		return f.UpdateUserSizeFunc(ctx, db, userID, size)
	}
	return nil
}

func (f *FakeRulerRepo) TopUsers(ctx context.Context, db tablestore.Accessor, limit int) ([]rulerdb.User, error) {
	f.record("TopUsers")
	if f.TopUsersFunc != nil {
		return f.TopUsersFunc(ctx, db, limit)
	}
	return nil, nil
}

func (f *FakeRulerRepo) EnsureGroupTable(ctx context.Context, db tablestore.Accessor, groupID int64) error {
	f.record("EnsureGroupTable")
	if f.EnsureGroupTableFunc != nil {
		return f.EnsureGroupTableFunc(ctx, db, groupID)
	}
	return nil
}

func (f *FakeRulerRepo) GroupExists(ctx context.Context, db tablestore.Accessor, groupID int64) (bool, error) {
	f.record("GroupExists")
	if f.GroupExistsFunc != nil {
		return f.GroupExistsFunc(ctx, db, groupID)
	}
	return true, nil
}

func (f *FakeRulerRepo) EnsurePlayer(ctx context.Context, db tablestore.Accessor, groupID int64, player rulerdb.Player) (tablestore.InsertResult, error) {
	f.record("EnsurePlayer")
	if f.EnsurePlayerFunc != nil {
		return f.EnsurePlayerFunc(ctx, db, groupID, player)
	}
	return tablestore.Inserted, nil
}

func (f *FakeRulerRepo) GetPlayer(ctx context.Context, db tablestore.Accessor, groupID, userID int64) (*rulerdb.Player, error) {
	f.record("GetPlayer")
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, db, groupID, userID)
	}
	return nil, rulerdb.ErrNotFound
}

func (f *FakeRulerRepo) UpdatePlayer(ctx context.Context, db tablestore.Accessor, groupID, userID int64, size int64, playedAt time.Time, prevLastPlayed string) error {
	f.record("UpdatePlayer")
	if f.UpdatePlayerFunc != nil {
		return f.UpdatePlayerFunc(ctx, db, groupID, userID, size, playedAt, prevLastPlayed)
	}
	return nil
}

func (f *FakeRulerRepo) PlayersBySize(ctx context.Context, db tablestore.Accessor, groupID int64, limit int) ([]rulerdb.Player, error) {
	f.record("PlayersBySize")
	if f.PlayersBySizeFunc != nil {
		return f.PlayersBySizeFunc(ctx, db, groupID, limit)
	}
	return nil, nil
}

func (f *FakeRulerRepo) AddMembership(ctx context.Context, db tablestore.Accessor, userID, groupID int64) (tablestore.InsertResult, error) {
	f.record("AddMembership")
	if f.AddMembershipFunc != nil {
		return f.AddMembershipFunc(ctx, db, userID, groupID)
	}
	return tablestore.Inserted, nil
}

func (f *FakeRulerRepo) ListMemberships(ctx context.Context, db tablestore.Accessor, userID int64) ([]int64, error) {
	f.record("ListMemberships")
	if f.ListMembershipsFunc != nil {
		return f.ListMembershipsFunc(ctx, db, userID)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeRulerRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ rulerdb.Repository = (*FakeRulerRepo)(nil)

// ------------------------
// Deterministic helpers
// ------------------------

// fixedRand yields queued offsets from the bottom of the range.
type fixedRand struct {
	offsets []int64
	i       int
}

func (r *fixedRand) Int64N(n int64) int64 {
	v := r.offsets[r.i%len(r.offsets)]
	r.i++
	return v % n
}

// drawOf makes the default [-5, 10] range yield delta.
func drawOf(delta int64) *fixedRand {
	return &fixedRand{offsets: []int64{delta + 5}}
}
