package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

type questionsEvent struct {
	Type      string             `json:"type"`
	Room      domain.RoomID      `json:"room"`
	Round     int                `json:"round"`
	Questions domain.QuestionSet `json:"questions"`
}

// handleExistingQuestions takes a member's freshly fetched batch as a
// proposal for the room's current round. The first proposal wins and is
// rebroadcast to every member, proposer included; echoes for the same
// round never overwrite it.
func (ctl *GameWSController) handleExistingQuestions(
	sid core.SessionID,
	conn *wsGameConn,
	data []byte,
) {
	room, _, ok := ctl.Orch.RoomBySID(sid)
	if !ok {
		ctl.sendError(conn, "you must join a room first")
		return
	}

	var p struct {
		Type      string             `json:"type"`
		Room      string             `json:"room"`
		Questions domain.QuestionSet `json:"questions"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad questions payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Room != "" && domain.RoomID(p.Room) != room.Room().ID {
		ctl.sendError(conn, "room mismatch")
		return
	}

	canonical, round, accepted, err := room.ProposeQuestions(p.Questions)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", string(room.Room().ID)).Msg("proposal rejected")
		ctl.sendError(conn, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("room", string(room.Room().ID)).
		Int("round", round).Bool("accepted", accepted).Msg("existing-questions")

	frame, ok := marshalEvent(questionsEvent{
		Type:      "existing-questions",
		Room:      room.Room().ID,
		Round:     round,
		Questions: canonical,
	})
	if !ok {
		return
	}
	if accepted {
		ctl.Orch.Broadcast(room, frame)
		return
	}
	// Losing proposer still converges on the canonical set.
	_ = conn.TrySend(frame)
}

// handleNextRound advances the server-owned round counter after a
// result screen and reopens acceptance for exactly one new proposal.
func (ctl *GameWSController) handleNextRound(
	sid core.SessionID,
	conn *wsGameConn,
) {
	room, _, ok := ctl.Orch.RoomBySID(sid)
	if !ok {
		ctl.sendError(conn, "you must join a room first")
		return
	}
	round := room.AdvanceRound()
	log.Info().Str("module", "signal").Str("room", string(room.Room().ID)).
		Int("round", round).Msg("next-round")

	frame, ok := marshalEvent(struct {
		Type  string        `json:"type"`
		Room  domain.RoomID `json:"room"`
		Round int           `json:"round"`
	}{
		Type:  "next-round",
		Room:  room.Room().ID,
		Round: round,
	})
	if ok {
		ctl.Orch.Broadcast(room, frame)
	}
}
