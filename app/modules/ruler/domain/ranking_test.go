package rulerdomain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankOf(t *testing.T) {
	ids := []int64{42, 7, 99}

	rank, ok := RankOf(ids, 7)
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	rank, ok = RankOf(ids, 42)
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	_, ok = RankOf(ids, 5)
	assert.False(t, ok)

	_, ok = RankOf(nil, 5)
	assert.False(t, ok)
}

func TestBestSize(t *testing.T) {
	assert.Zero(t, BestSize(nil))
	assert.Equal(t, int64(14), BestSize([]int64{3, 14, 9}))
	assert.Zero(t, BestSize([]int64{0, 0}))
}

func TestGroupTableName(t *testing.T) {
	assert.Equal(t, "group_1001234567890", GroupTableName(-1001234567890))
	assert.Equal(t, "group_55", GroupTableName(55))
	assert.Equal(t, "group_9223372036854775808", GroupTableName(math.MinInt64))
	assert.Equal(t, int64(1001234567890), GroupID(-1001234567890))
	assert.Equal(t, int64(55), GroupID(55))
	assert.Equal(t, int64(math.MinInt64), GroupID(math.MinInt64))
}

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://t.me/neo", ProfileURL(1, "https://t.me/neo"))
	assert.Equal(t, "tg://user?id=7", ProfileURL(7, ""))
	assert.Equal(t, "tg://user?id=7", ProfileURL(7, Unset))
	assert.Equal(t, "tg://user?id=7", Caller{ID: 7, URL: Unset}.ProfileURL())
}

func TestCaller(t *testing.T) {
	assert.Equal(t, "neo", Caller{Username: "neo", FirstName: "Thomas"}.DisplayName())
	assert.Equal(t, "Thomas", Caller{Username: Unset, FirstName: "Thomas"}.DisplayName())
	assert.Equal(t, Unset, Caller{}.DisplayName())

	assert.True(t, ChatSupergroup.IsGroup())
	assert.True(t, ChatGroup.IsGroup())
	assert.False(t, ChatPrivate.IsGroup())
	assert.False(t, ChatChannel.IsGroup())
}
