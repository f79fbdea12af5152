package rulerservice

import "errors"

// Domain failures. They are returned inside an OperationResult, never as the
// error value.
var (
	ErrGroupOnly    = errors.New("command is only available in group chats")
	ErrPrivateOnly  = errors.New("command is only available in a private chat")
	ErrNotRanked    = errors.New("player is not ranked in this group")
	ErrUnknownGroup = errors.New("nobody has played in this group")
)
