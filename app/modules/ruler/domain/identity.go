package rulerdomain

import "strconv"

// ChatType is the kind of chat a command arrived from.
type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// IsGroup reports whether the game can be played in this chat.
func (t ChatType) IsGroup() bool {
	return t == ChatGroup || t == ChatSupergroup
}

// Caller identifies who sent a command.
type Caller struct {
	ID        int64
	FirstName string
	Username  string
	URL       string
}

// Chat is where a command was sent.
type Chat struct {
	ID   int64
	Type ChatType
}

// Invocation is one command call.
type Invocation struct {
	Caller Caller
	Chat   Chat
}

// Unset is stored for identity fields the platform did not provide.
const Unset = "None"

// DisplayName is the handle, falling back to the first name.
func (c Caller) DisplayName() string {
	if c.Username != "" && c.Username != Unset {
		return c.Username
	}
	if c.FirstName != "" {
		return c.FirstName
	}
	return Unset
}

// ProfileURL is the link for a user, falling back to the platform's
// id link when no profile URL was stored.
func ProfileURL(userID int64, url string) string {
	if url == "" || url == Unset {
		return "tg://user?id=" + strconv.FormatInt(userID, 10)
	}
	return url
}

// ProfileURL is the caller's link.
func (c Caller) ProfileURL() string {
	return ProfileURL(c.ID, c.URL)
}

// Standing is one line of a leaderboard.
type Standing struct {
	Position int
	UserID   int64
	Name     string
	URL      string
	Size     int64
}
