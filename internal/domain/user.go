// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 64
	MaxAvatarLen   = 2048
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUserIDTooLong   = errors.New("user id too long")
	ErrAvatarTooLong   = errors.New("avatar reference too long")
)

// UserID is the stable id handed out by the authentication service.
type UserID string

// Identity is what the authentication collaborator tells us about the person
// behind a connection. Field names follow the user documents of that service.
type Identity struct {
	ID         UserID `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// NewIdentity trims and checks an identity received with a join event.
func NewIdentity(id, fullName, profilePic string) (Identity, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Identity{}, ErrUsernameEmpty
	}
	if utf8.RuneCountInString(fullName) > MaxUsernameLen {
		return Identity{}, ErrUsernameTooLong
	}
	if len(id) > MaxUserIDLen {
		return Identity{}, ErrUserIDTooLong
	}
	if len(profilePic) > MaxAvatarLen {
		return Identity{}, ErrAvatarTooLong
	}
	return Identity{ID: UserID(id), FullName: fullName, ProfilePic: profilePic}, nil
}

// DisplayName never returns an empty string.
func (i Identity) DisplayName() string {
	if i.FullName == "" {
		return "Unknown"
	}
	return i.FullName
}
