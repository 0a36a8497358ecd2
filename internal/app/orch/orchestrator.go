// Package orch wires the registry, the room directory and the delivery
// policy into the flows the signal adapter drives.
package orch

import (
	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/app"
	"trivia-party-service/internal/core"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
}

// Broadcast fans data out to every member of room and applies the
// backpressure policy to the sessions whose send queue was full.
func (o *Orchestrator) Broadcast(room core.RoomService, data core.Frame) {
	o.applyPolicy(room, room.Broadcast(data))
}

// BroadcastExcept fans data out to every member except from.
func (o *Orchestrator) BroadcastExcept(room core.RoomService, from core.PlayerSession, data core.Frame) {
	o.applyPolicy(room, room.BroadcastExcept(from.Meta().ID, data))
}

func (o *Orchestrator) applyPolicy(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			room.RemoveMemberIf(slow.Meta().ID, slow)
			slow.Signal().Close()
		case app.MarkSlow, app.DropFrame, app.NoAction:
			log.Warn().Str("module", "app.orch").Str("room", string(room.Room().ID)).
				Str("player", string(slow.Meta().ID)).Msg("frame dropped for slow consumer")
		}
	}
}
