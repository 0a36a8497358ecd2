package core

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"trivia-party-service/internal/domain"
)

var ErrNoSuchMember = errors.New("no such member in room")

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
//
// The members map is replaced wholesale on every mutation instead of
// edited in place, so a fan-out that grabbed the map under RLock keeps
// a stable view even while joins and leaves race against it.
type roomImpl struct {
	room *domain.Room

	mu      sync.RWMutex
	members map[domain.PlayerID]PlayerSession
	closed  bool

	round     int
	canonical domain.QuestionSet
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[domain.PlayerID]PlayerSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) AddMember(ps PlayerSession) (PlayerSession, error) {
	pid := ps.Meta().ID
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, domain.ErrRoomClosed
	}
	displaced, reconnect := r.members[pid]
	if !reconnect && len(r.members) >= domain.MaxRoomMembers {
		return nil, domain.ErrRoomFull
	}

	next := make(map[domain.PlayerID]PlayerSession, len(r.members)+1)
	for id, m := range r.members {
		next[id] = m
	}
	next[pid] = ps
	r.members = next

	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("player", string(pid)).Bool("reconnect", reconnect).Msg("member added")
	return displaced, nil
}

func (r *roomImpl) RemoveMember(pid domain.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[pid]; !ok {
		return
	}
	next := make(map[domain.PlayerID]PlayerSession, len(r.members)-1)
	for id, m := range r.members {
		if id != pid {
			next[id] = m
		}
	}
	r.members = next
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("player", string(pid)).Msg("member removed")
}

func (r *roomImpl) RemoveMemberIf(pid domain.PlayerID, ps PlayerSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.members[pid]; !ok || current != ps {
		return false
	}
	next := make(map[domain.PlayerID]PlayerSession, len(r.members)-1)
	for id, m := range r.members {
		if id != pid {
			next[id] = m
		}
	}
	r.members = next
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Str("player", string(pid)).Msg("member removed")
	return true
}

func (r *roomImpl) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *roomImpl) Member(pid domain.PlayerID) (PlayerSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, ok := r.members[pid]
	return ps, ok
}

func (r *roomImpl) snapshot() map[domain.PlayerID]PlayerSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members
}

func (r *roomImpl) Broadcast(data Frame) PublishResult {
	return r.fanOut("", data)
}

func (r *roomImpl) BroadcastExcept(from domain.PlayerID, data Frame) PublishResult {
	return r.fanOut(from, data)
}

func (r *roomImpl) fanOut(skip domain.PlayerID, data Frame) PublishResult {
	res := PublishResult{}
	for pid, m := range r.snapshot() {
		if pid == skip {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).
		Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) SendTo(to domain.PlayerID, data Frame) error {
	ps, ok := r.Member(to)
	if !ok {
		return ErrNoSuchMember
	}
	return ps.Signal().TrySend(data)
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	members := r.snapshot()
	out := make([]MemberDTO, 0, len(members))
	for _, ps := range members {
		p := ps.Meta()
		out = append(out, MemberDTO{ID: p.ID, Name: p.Name})
	}
	return out
}

func (r *roomImpl) Round() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.round
}

func (r *roomImpl) ProposeQuestions(qs domain.QuestionSet) (domain.QuestionSet, int, bool, error) {
	if len(qs) == 0 {
		return nil, 0, false, domain.ErrEmptyQuestionSet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canonical != nil {
		// First proposal already won this round; later echoes are ignored
		// so they can never overwrite what members already play against.
		log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).
			Int("round", r.round).Msg("duplicate proposal ignored")
		return r.canonical, r.round, false, nil
	}
	r.canonical = qs.Clone()
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Int("round", r.round).Int("questions", len(qs)).Msg("canonical question set fixed")
	return r.canonical, r.round, true, nil
}

func (r *roomImpl) AdvanceRound() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.round++
	r.canonical = nil
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).
		Int("round", r.round).Msg("round advanced")
	return r.round
}
