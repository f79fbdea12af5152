// Package rulerevents defines the topics and payloads the ruler module
// exchanges with the chat platform adapter.
package rulerevents

import rulerdomain "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/domain"

// Command topics. The adapter publishes one message per chat command.
const (
	CommandStartV1     = "ruler.command.start.v1"
	CommandPlayV1      = "ruler.command.play.v1"
	CommandChatTopV1   = "ruler.command.chat_top.v1"
	CommandGlobalTopV1 = "ruler.command.global_top.v1"
	CommandHelpV1      = "ruler.command.help.v1"
)

// ReplyV1 carries the text to send back. A request's reply_to metadata
// overrides it.
const ReplyV1 = "ruler.reply.v1"

// ReplyToMetadataKey names the metadata entry holding a reply topic override.
const ReplyToMetadataKey = "reply_to"

// ParseModeMarkdown marks replies whose text contains [name](url) links.
const ParseModeMarkdown = "Markdown"

// UserV1 is the caller as the platform reports it.
type UserV1 struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ChatV1 is the chat a command was sent in.
type ChatV1 struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// CommandRequestPayloadV1 is published on every Command* topic.
type CommandRequestPayloadV1 struct {
	User UserV1 `json:"user"`
	Chat ChatV1 `json:"chat"`
}

// Invocation converts the payload to domain terms.
func (p CommandRequestPayloadV1) Invocation() rulerdomain.Invocation {
	return rulerdomain.Invocation{
		Caller: rulerdomain.Caller{
			ID:        p.User.ID,
			FirstName: p.User.FirstName,
			Username:  p.User.Username,
			URL:       p.User.URL,
		},
		Chat: rulerdomain.Chat{
			ID:   p.Chat.ID,
			Type: rulerdomain.ChatType(p.Chat.Type),
		},
	}
}

// CommandReplyPayloadV1 is the answer to one command.
type CommandReplyPayloadV1 struct {
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	Command   string `json:"command"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}
