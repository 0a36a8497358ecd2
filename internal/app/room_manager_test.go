package app

import (
	"errors"
	"testing"

	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

type stubConn struct{}

func (stubConn) TrySend(core.Frame) error { return nil }
func (stubConn) Close()                   {}

func TestStopIfEmptyKeepsOccupiedRoom(t *testing.T) {
	m := NewRoomManager()
	room := m.GetOrCreate("1234")
	sess := core.NewPlayerSession(&domain.Player{ID: "a", Name: "alice"}, stubConn{})
	if _, err := room.AddMember(sess); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if m.StopIfEmpty("1234") {
		t.Fatal("occupied room reclaimed")
	}
	if _, ok := m.Get("1234"); !ok {
		t.Fatal("occupied room dropped from directory")
	}
}

func TestStopIfEmptyClosesBeforeDropping(t *testing.T) {
	m := NewRoomManager()
	room := m.GetOrCreate("1234")
	sess := core.NewPlayerSession(&domain.Player{ID: "a", Name: "alice"}, stubConn{})
	if _, err := room.AddMember(sess); err != nil {
		t.Fatalf("add member: %v", err)
	}
	room.RemoveMember("a")

	if !m.StopIfEmpty("1234") {
		t.Fatal("empty room not reclaimed")
	}
	if _, ok := m.Get("1234"); ok {
		t.Fatal("reclaimed room still listed")
	}
	// A join that held on to the dying instance cannot land in it; the
	// retry path goes through a fresh room under the same id.
	if _, err := room.AddMember(sess); !errors.Is(err, domain.ErrRoomClosed) {
		t.Fatalf("err = %v, want ErrRoomClosed", err)
	}
	if fresh := m.GetOrCreate("1234"); fresh == room {
		t.Fatal("directory handed back the closed room")
	}
}

func TestStopIfEmptyUnknownRoom(t *testing.T) {
	m := NewRoomManager()
	if m.StopIfEmpty("nope") {
		t.Fatal("unknown room reported reclaimed")
	}
}
