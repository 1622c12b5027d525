package session

import "errors"

// MaxChatMessageLength bounds a chat message in bytes.
const MaxChatMessageLength = 5000

// Boundary errors. None of them changes shared state.
var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrNotInRoom      = errors.New("join a room first")
	ErrAlreadyJoined  = errors.New("already in a room")
	ErrTerminated     = errors.New("connection terminated")
	ErrRateLimited    = errors.New("rate limit exceeded, please slow down")
	ErrMessageEmpty   = errors.New("message content cannot be empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrMessageInvalid = errors.New("message contains invalid characters")
	ErrMissingTarget  = errors.New("target connection is required")
	ErrMissingSignal  = errors.New("signaling payload is required")
	ErrRoomMismatch   = errors.New("message addressed to a different room")
)
