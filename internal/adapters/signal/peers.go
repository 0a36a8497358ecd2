package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

// handleJoinPeers announces a member's peer id to everyone already in
// the room. Pre-existing members initiate the call toward the newcomer,
// never the other way around, so each pairwise link is negotiated once.
func (ctl *GameWSController) handleJoinPeers(
	sid core.SessionID,
	conn *wsGameConn,
	data []byte,
) {
	room, sess, ok := ctl.Orch.RoomBySID(sid)
	if !ok {
		ctl.sendError(conn, "you must join a room first")
		return
	}
	var p struct {
		Type     string `json:"type"`
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-peers payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	meta := sess.Meta()
	log.Info().Str("module", "signal").Str("room", string(room.Room().ID)).
		Str("peer", string(meta.ID)).Msg("join-peers")

	frame, ok := marshalEvent(struct {
		Type     string          `json:"type"`
		UserID   domain.PlayerID `json:"userId"`
		UserName string          `json:"userName"`
	}{
		Type:     "join-peers",
		UserID:   meta.ID,
		UserName: meta.Name,
	})
	if ok {
		ctl.Orch.BroadcastExcept(room, sess, frame)
	}
}

// handleCallRelay forwards a pairwise handshake (call-offer or
// call-answer) to its target. The payload is opaque to this layer and
// relayed verbatim; a handshake aimed at a member that already left is
// dropped without creating a link.
func (ctl *GameWSController) handleCallRelay(
	sid core.SessionID,
	conn *wsGameConn,
	kind string,
	data []byte,
) {
	room, sess, ok := ctl.Orch.RoomBySID(sid)
	if !ok {
		ctl.sendError(conn, "you must join a room first")
		return
	}
	var p struct {
		Type    string          `json:"type"`
		To      string          `json:"to"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.To == "" {
		ctl.sendError(conn, "missing call target")
		return
	}

	frame, ok := marshalEvent(struct {
		Type    string          `json:"type"`
		From    domain.PlayerID `json:"from"`
		To      domain.PlayerID `json:"to"`
		Payload json.RawMessage `json:"payload"`
	}{
		Type:    kind,
		From:    sess.Meta().ID,
		To:      domain.PlayerID(p.To),
		Payload: p.Payload,
	})
	if !ok {
		return
	}
	if err := room.SendTo(domain.PlayerID(p.To), frame); err != nil {
		if errors.Is(err, core.ErrNoSuchMember) {
			log.Warn().Str("module", "signal").Str("room", string(room.Room().ID)).
				Str("to", p.To).Str("kind", kind).Msg("stale call target dropped")
			return
		}
		log.Warn().Err(err).Str("module", "signal").Str("to", p.To).Msg("call relay send")
	}
}
