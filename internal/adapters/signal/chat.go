package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

// placeholderMsg stands in for an empty chat send; empty bodies are
// permitted, not rejected.
const placeholderMsg = "(◔_◔)"

type chatMessage struct {
	Type     string          `json:"type"`
	UserID   domain.PlayerID `json:"userId"`
	UserName string          `json:"userName"`
	UserMsg  string          `json:"userMsg"`
}

func (ctl *GameWSController) handleChatMessage(
	sid core.SessionID,
	conn *wsGameConn,
	data []byte,
) {
	room, sess, ok := ctl.Orch.RoomBySID(sid)
	if !ok {
		ctl.sendError(conn, "you must join a room first")
		return
	}
	meta := sess.Meta()
	if !ctl.chatLimit.Allow(meta.ID) {
		log.Warn().Str("module", "signal").Str("player", string(meta.ID)).Msg("chat rate limited")
		ctl.sendError(conn, "too many messages")
		return
	}

	var p struct {
		Type    string `json:"type"`
		UserMsg string `json:"userMsg"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.UserMsg == "" {
		p.UserMsg = placeholderMsg
	}

	// Stamped with the server-held identity, fanned out to everyone
	// including the sender, so all transcripts build from the same event.
	frame, ok := marshalEvent(chatMessage{
		Type:     "chat-message",
		UserID:   meta.ID,
		UserName: meta.Name,
		UserMsg:  p.UserMsg,
	})
	if !ok {
		return
	}
	ctl.Orch.Broadcast(room, frame)
}
