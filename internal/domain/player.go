// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"unicode/utf8"
)

const (
	MaxPlayerIDLen   = 64
	MaxPlayerNameLen = 36
)

var (
	ErrPlayerIDEmpty   = errors.New("player id empty")
	ErrPlayerIDTooLong = errors.New("player id too long")
	ErrNameEmpty       = errors.New("player name empty")
)

// PlayerID is the session-scoped opaque identifier the client generates
// for itself. It doubles as the peer id for the media mesh.
type PlayerID string

type Player struct {
	ID   PlayerID `json:"userId"`
	Name string   `json:"userName"`
}

// NewPlayer is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewPlayer(id, name string) (*Player, error) {
	if len(id) == 0 {
		return nil, ErrPlayerIDEmpty
	}
	if len(id) > MaxPlayerIDLen {
		return nil, ErrPlayerIDTooLong
	}
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	// Truncate on a rune boundary so a multi-byte name can never be cut
	// into invalid UTF-8.
	if utf8.RuneCountInString(name) > MaxPlayerNameLen {
		name = string([]rune(name)[:MaxPlayerNameLen])
	}
	return &Player{ID: PlayerID(id), Name: name}, nil
}
