package domain

import "errors"

type RoomID string

// MaxRoomMembers bounds the media mesh to at most 10 pairwise links.
const MaxRoomMembers = 5

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomClosed    = errors.New("room is closed")
	ErrAlreadyInRoom = errors.New("already in another room")
)

type Room struct {
	ID RoomID
}
