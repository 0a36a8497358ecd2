package signal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

func (ctl *GameWSController) handleJoinGame(
	sid core.SessionID,
	conn *wsGameConn,
	data []byte,
) {
	type joinPayload struct {
		Type     string `json:"type"`
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
		UserRoom string `json:"userRoom"`
		UserMsg  string `json:"userMsg"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.UserRoom == "" {
		ctl.sendError(conn, domain.ErrRoomIDEmpty.Error())
		return
	}
	player, err := domain.NewPlayer(p.UserID, p.UserName)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}

	if _, ok := ctl.Orch.Registry.Session(sid); !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join without bound session")
		return
	}

	sess := core.NewPlayerSession(player, conn)
	room, err := ctl.Orch.JoinGame(sid, domain.RoomID(p.UserRoom), sess)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).
			Str("room", p.UserRoom).Msg("join rejected")
		ctl.sendError(conn, err.Error())
		return
	}
	// Rebind only once the join stuck, so a rejected join leaves the
	// session's prior identity untouched.
	ctl.Orch.Registry.UpdateSession(sid, sess)

	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("room", p.UserRoom).Str("player", string(player.ID)).Msg("join-game")

	clientResp := struct {
		Type    string           `json:"type"`
		Room    domain.RoomID    `json:"room"`
		Members []core.MemberDTO `json:"members"`
		Count   int              `json:"count"`
		Round   int              `json:"round"`
	}{
		Type:    "room-state",
		Room:    room.Room().ID,
		Members: room.MembersSnapshot(),
		Count:   room.MemberCount(),
		Round:   room.Round(),
	}
	ctl.sendJSON(conn, clientResp)

	// The joining member never receives its own presence notice.
	notice := p.UserMsg
	if notice == "" {
		notice = fmt.Sprintf("I have joined the game ヾ(・ﻌ・)ゞ at %s", time.Now().Format("15:04"))
	}
	frame, ok := marshalEvent(presenceNotice{
		Type:     "new-player",
		UserID:   player.ID,
		UserName: player.Name,
		UserMsg:  notice,
	})
	if ok {
		ctl.Orch.BroadcastExcept(room, sess, frame)
	}
}

type presenceNotice struct {
	Type     string          `json:"type"`
	UserID   domain.PlayerID `json:"userId"`
	UserName string          `json:"userName"`
	UserMsg  string          `json:"userMsg"`
}

// handleDisconnect turns a transport close into an implicit leave:
// membership is cut first, then whoever remains gets the departure
// notice, so a later joiner can never observe the stale member.
func (ctl *GameWSController) handleDisconnect(sid core.SessionID, conn *wsGameConn) {
	// The close of a replaced transport must not tear down the session
	// that superseded it.
	if sess, ok := ctl.Orch.Registry.Session(sid); !ok || sess.Signal() != core.SignalConnection(conn) {
		return
	}
	ctl.evict(sid)
}

// evict cuts membership and notifies whoever remains.
func (ctl *GameWSController) evict(sid core.SessionID) {
	room, meta, ok := ctl.Orch.Disconnect(sid)
	if !ok || room == nil {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("player", string(meta.ID)).Msg("lost player")

	frame, ok := marshalEvent(presenceNotice{
		Type:     "lost-player",
		UserID:   meta.ID,
		UserName: meta.Name,
		UserMsg:  fmt.Sprintf("%s has left the game (╥﹏╥)", meta.Name),
	})
	if ok {
		ctl.Orch.Broadcast(room, frame)
	}
}
