package rulerdomain

import "strconv"

// RankOf returns the 1-based position of userID in ids, which must already be
// ordered best first. ok is false when the user is not listed.
func RankOf(ids []int64, userID int64) (rank int, ok bool) {
	for i, id := range ids {
		if id == userID {
			return i + 1, true
		}
	}
	return 0, false
}

// BestSize is the largest of sizes, or 0 when there are none.
func BestSize(sizes []int64) int64 {
	var best int64
	for _, s := range sizes {
		best = max(best, s)
	}
	return best
}

// GroupTableName names the table holding a group's players. Group chat ids
// are negative on most platforms, so the sign is dropped.
func GroupTableName(chatID int64) string {
	u := uint64(chatID)
	if chatID < 0 {
		u = -u
	}
	return "group_" + strconv.FormatUint(u, 10)
}

// GroupID is the sign-less id under which a chat's data is kept.
// math.MinInt64 has no positive counterpart and maps to itself, which
// still identifies it uniquely.
func GroupID(chatID int64) int64 {
	if chatID < 0 {
		return -chatID
	}
	return chatID
}
