package registry

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/example/signaling-relay/domain/room"
)

// Validation constants
const (
	MaxRoomIDLength   = 100
	MaxUsernameLength = 50
	MaxPasswordLength = 256
)

// Registry errors
var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrAlreadyInRoom     = errors.New("connection is already in a room")
	ErrRoomNotFound      = errors.New("room not found")

	ErrRoomIDEmpty     = errors.New("room id cannot be empty")
	ErrRoomIDTooLong   = errors.New("room id exceeds maximum length")
	ErrRoomIDInvalid   = errors.New("room id contains invalid characters")
	ErrUsernameEmpty   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username exceeds maximum length")
	ErrUsernameInvalid = errors.New("username contains invalid characters")
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// Service names exposed through the service container.
const (
	ServiceListRooms = "list-rooms"
	ServiceGetRoom   = "get-room"
)

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response for the list-rooms service.
type ListRoomsResponse struct {
	Rooms []room.RoomInfo `json:"rooms"`
}

// GetRoomRequest is the request for the get-room service.
type GetRoomRequest struct {
	RoomID string `json:"room_id"`
}

// GetRoomResponse is the response for the get-room service.
type GetRoomResponse struct {
	Found bool          `json:"found"`
	Room  room.RoomInfo `json:"room"`
}

// Stats is a point-in-time count of registry contents.
type Stats struct {
	Rooms   int `json:"rooms"`
	Members int `json:"members"`
}

// roomState is the registry-private record for one room.
type roomState struct {
	id        string
	password  string
	createdAt time.Time
	members   map[string]memberEntry // connectionID -> entry
}

type memberEntry struct {
	member room.Member
	seq    uint64
}

func (r *roomState) info() room.RoomInfo {
	return room.RoomInfo{
		ID:        r.id,
		UserCount: len(r.members),
		CreatedAt: r.createdAt,
	}
}

// ValidateRoomID validates a caller-supplied room id.
func ValidateRoomID(id string) error {
	if id == "" {
		return ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLength {
		return ErrRoomIDTooLong
	}
	if !utf8.ValidString(id) {
		return ErrRoomIDInvalid
	}
	return nil
}

// ValidateUsername validates a display name. Usernames need not be unique.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !utf8.ValidString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidatePassword only bounds the length; the password is otherwise opaque.
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
