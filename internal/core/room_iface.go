package core

import (
	"trivia-party-service/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []PlayerSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID   domain.PlayerID `json:"userId"`
	Name string          `json:"userName"`
}

// RoomService is the core-facing API of a room. It owns the membership
// set and the round state but never touches transport resources.
// Every method serializes against the same room lock, so interleaved
// join/leave/chat/round events cannot observe a half-updated room.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO

	// AddMember places a session in the room. A session with the same
	// player id replaces the prior entry (reconnect); the displaced
	// session is returned so the adapter can close its transport. Joining
	// a room already closed by CloseIfEmpty returns domain.ErrRoomClosed.
	AddMember(ps PlayerSession) (displaced PlayerSession, err error)
	RemoveMember(pid domain.PlayerID)
	// RemoveMemberIf removes pid only while ps is still the session
	// registered for it. The teardown of a transport that a reconnect
	// already displaced must not evict the member that superseded it.
	RemoveMemberIf(pid domain.PlayerID, ps PlayerSession) bool
	Member(pid domain.PlayerID) (PlayerSession, bool)
	// CloseIfEmpty marks a memberless room closed so it stops accepting
	// joins. Reports false while any member remains.
	CloseIfEmpty() bool

	Broadcast(data Frame) PublishResult
	BroadcastExcept(from domain.PlayerID, data Frame) PublishResult
	SendTo(to domain.PlayerID, data Frame) error

	// Round returns the current round number, owned by the room.
	Round() int
	// ProposeQuestions installs qs as the canonical set for the current
	// round if none is fixed yet. It returns the canonical set and the
	// round it belongs to; accepted reports whether this proposal won.
	ProposeQuestions(qs domain.QuestionSet) (canonical domain.QuestionSet, round int, accepted bool, err error)
	// AdvanceRound bumps the counter, discards the canonical set and
	// reopens acceptance for exactly one new proposal.
	AdvanceRound() int
}

type RoomInfo struct {
	ID          domain.RoomID `json:"room"`
	MemberCount int           `json:"member_count"`
	Round       int           `json:"round"`
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	// StopIfEmpty drops the room from the directory once it has no
	// members, atomically with the room refusing further joins.
	StopIfEmpty(id domain.RoomID) bool
}
