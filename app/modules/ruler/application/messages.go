package rulerservice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"
)

// Fixed reply texts.
const (
	EmptyLeaderboardText = "The top list is empty."
	GroupOnlyText        = "I only work in group chats."
	PrivateOnlyText      = "This command is only available in a private chat with the bot."
	UnknownGroupText     = "Nobody has played in this chat yet."
	FailureText          = "Something went wrong. Please try again later!"
	HelpText             = "Bot commands:\n" +
		"/dick — grow or shrink your size\n" +
		"/chat_top — top players of this chat\n" +
		"/global_top — global top players"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "`", "\\`")

// link renders name as a Markdown link. The name is escaped, the URL is not.
func link(name, url string) string {
	return "[" + markdownEscaper.Replace(name) + "](" + url + ")"
}

// Mention links the caller's name to their profile.
func Mention(c rulerdomain.Caller) string {
	return link(c.DisplayName(), c.ProfileURL())
}

// RenderPlay formats the reply to a play command.
func RenderPlay(c rulerdomain.Caller, r PlayResult) string {
	var b strings.Builder
	if r.Outcome == rulerdomain.OutcomeAlreadyPlayed {
		fmt.Fprintf(&b, "%s, you have already played.\nYour size is %d cm.\n", Mention(c), r.Size)
	} else {
		fmt.Fprintf(&b, "%s, your size %s by %d cm.\nNow it is %d cm.\n", Mention(c), r.Outcome, r.Delta, r.Size)
	}
	fmt.Fprintf(&b, "You are #%d in the chat top.\nNext attempt in %s", r.Rank, rulerdomain.SplitDuration(r.NextPlay))
	return b.String()
}

// RenderLeaderboard formats a leaderboard as numbered link lines.
func RenderLeaderboard(board Leaderboard) string {
	if len(board.Standings) == 0 {
		return EmptyLeaderboardText
	}
	limit := board.Limit
	if limit <= 0 {
		limit = rulerdomain.DefaultTopLimit
	}

	lines := make([]string, len(board.Standings))
	for i, st := range board.Standings {
		lines[i] = fmt.Sprintf("%d) %s — %d cm.", st.Position, link(st.Name, rulerdomain.ProfileURL(st.UserID, st.URL)), st.Size)
	}
	return fmt.Sprintf("Top %d players\n\n", limit) + strings.Join(lines, "\n")
}

// StartText greets a new user and explains the game.
func StartText(p rulerdomain.GrowthPolicy) string {
	return fmt.Sprintf("Hi! I'm the ruler, a bot for group chats.\n\n"+
		"How it works: I only play in groups. Once every %s a player can send /dick and gets a random change back.\n"+
		"The change ranges from %+d cm to %+d cm.\n\n"+
		"Questions? Send /help",
		cooldownText(p.Cooldown.Hours()), p.MinDelta, p.MaxDelta)
}

func cooldownText(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64) + " hours"
}

// FailureMessage turns a domain failure into the reply text.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrGroupOnly):
		return GroupOnlyText
	case errors.Is(err, ErrPrivateOnly):
		return PrivateOnlyText
	case errors.Is(err, ErrUnknownGroup):
		return UnknownGroupText
	default:
		return FailureText
	}
}
