package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxRoomNameLen = 64
	MaxRoomIDLen   = 64
	roomIDPrefix   = "room-"
)

var (
	ErrRoomNameEmpty = errors.New("room name empty")
	ErrRoomIDInvalid = errors.New("room id invalid")
)

type (
	RoomName string
	RoomID   string
)

// NewRoomID returns "room-" followed by 12 hex digits taken from a random
// UUID, 48 bits of entropy.
func NewRoomID() RoomID {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return RoomID(roomIDPrefix + raw[:12])
}

// ParseRoomID accepts any non-empty id without whitespace, so links to
// rooms opened by other means keep working.
func ParseRoomID(s string) (RoomID, error) {
	if s == "" || len(s) > MaxRoomIDLen || strings.ContainsAny(s, " \t\r\n") {
		return "", ErrRoomIDInvalid
	}
	return RoomID(s), nil
}

// NewRoomName trims the name and cuts it to MaxRoomNameLen runes.
func NewRoomName(s string) (RoomName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrRoomNameEmpty
	}
	if utf8.RuneCountInString(s) > MaxRoomNameLen {
		s = string([]rune(s)[:MaxRoomNameLen])
	}
	return RoomName(s), nil
}
