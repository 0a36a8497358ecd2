package orch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

// JoinGame places a bound session into roomID. A rejoin under the same
// player id replaces the stale member record; the displaced transport
// is closed here so no half-registered member can linger. A session
// already sitting in a different room is rejected, never moved
// silently, so its old room always learns of departures through the
// transport close.
func (o *Orchestrator) JoinGame(sid core.SessionID, roomID domain.RoomID, sess core.PlayerSession) (core.RoomService, error) {
	if prevRoom, prevSess, ok := o.Registry.RoomOf(sid); ok {
		if prevRoom != roomID {
			return nil, domain.ErrAlreadyInRoom
		}
		// Rejoining the same room under a new player id leaves the old
		// entry behind; drop it while it still belongs to this session.
		if prevSess.Meta().ID != sess.Meta().ID {
			if room, ok := o.Rooms.Get(prevRoom); ok {
				room.RemoveMemberIf(prevSess.Meta().ID, prevSess)
			}
		}
	}

	for {
		room := o.Rooms.GetOrCreate(roomID)
		displaced, err := room.AddMember(sess)
		if errors.Is(err, domain.ErrRoomClosed) {
			// Lost the race against the reclaim of a dying room; the next
			// GetOrCreate starts a fresh one.
			continue
		}
		if err != nil {
			return nil, err
		}
		o.Registry.UpdateRoom(sid, roomID)
		if displaced != nil && displaced.Signal() != sess.Signal() {
			displaced.Signal().Close()
		}
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).
			Str("room", string(roomID)).Str("player", string(sess.Meta().ID)).Msg("joined room")
		return room, nil
	}
}

// Disconnect removes the member on transport close and reports the room
// it left plus its meta, so the adapter can emit the departure notice to
// whoever remains. The room is reclaimed once its last member is gone.
func (o *Orchestrator) Disconnect(sid core.SessionID) (core.RoomService, *domain.Player, bool) {
	roomID, sess, ok := o.Registry.RoomOf(sid)
	defer o.Registry.Unbind(sid)
	if !ok {
		return nil, nil, false
	}

	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil, nil, false
	}
	meta := sess.Meta()
	if !room.RemoveMemberIf(meta.ID, sess) {
		// A reconnect under a fresh session already replaced this member;
		// removing by id alone would evict the live successor.
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).
			Str("player", string(meta.ID)).Msg("stale disconnect ignored")
		return nil, nil, false
	}
	if o.Rooms.StopIfEmpty(roomID) {
		log.Info().Str("module", "app.orch").Str("room", string(roomID)).Msg("empty room reclaimed")
	}
	return room, meta, true
}

// RoomBySID resolves the room the session currently sits in.
func (o *Orchestrator) RoomBySID(sid core.SessionID) (core.RoomService, core.PlayerSession, bool) {
	roomID, sess, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil, nil, false
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil, nil, false
	}
	return room, sess, true
}
