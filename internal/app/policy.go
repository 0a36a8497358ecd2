package app

import "trivia-party-service/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(room core.RoomService, member core.PlayerSession) BackpressureAction
}

// SimplePolicy drops the frame for slow consumers. Chat and presence
// promise no global order, and kicking a player over one full send
// queue would tear down their media links too.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, member core.PlayerSession) BackpressureAction {
	return DropFrame
}
