package orch

import (
	"errors"
	"sync"
	"testing"

	"trivia-party-service/internal/app"
	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.SimplePolicy{},
	}
}

func join(t *testing.T, o *Orchestrator, sid, pid, name, room string) (core.RoomService, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	sess := core.NewPlayerSession(&domain.Player{ID: domain.PlayerID(pid), Name: name}, conn)
	o.Registry.Bind(core.SessionID(sid), sess, nil)
	r, err := o.JoinGame(core.SessionID(sid), domain.RoomID(room), sess)
	if err != nil {
		t.Fatalf("join %s: %v", pid, err)
	}
	return r, conn
}

func TestJoinCreatesRoomOnFirstJoin(t *testing.T) {
	o := newOrchestrator()
	if _, ok := o.Rooms.Get("1234"); ok {
		t.Fatal("room exists before first join")
	}
	room, _ := join(t, o, "s-a", "a", "alice", "1234")
	if room.Room().ID != "1234" {
		t.Fatalf("room id = %s", room.Room().ID)
	}
	if _, ok := o.Rooms.Get("1234"); !ok {
		t.Fatal("room not registered after join")
	}
}

func TestDisconnectRemovesMemberAndKeepsRoom(t *testing.T) {
	o := newOrchestrator()
	room, _ := join(t, o, "s-a", "a", "alice", "1234")
	join(t, o, "s-b", "b", "bob", "1234")

	left, meta, ok := o.Disconnect("s-b")
	if !ok {
		t.Fatal("disconnect of joined member reported not ok")
	}
	if meta.ID != "b" {
		t.Fatalf("departed meta = %s, want b", meta.ID)
	}
	if left != room {
		t.Fatal("disconnect resolved a different room")
	}
	if room.MemberCount() != 1 {
		t.Fatalf("member count = %d, want 1", room.MemberCount())
	}
	if _, ok := o.Rooms.Get("1234"); !ok {
		t.Fatal("room reclaimed while a member remains")
	}
	if _, ok := o.Registry.Session("s-b"); ok {
		t.Fatal("registry still holds the departed session")
	}
}

func TestLastLeaveReclaimsRoom(t *testing.T) {
	o := newOrchestrator()
	join(t, o, "s-a", "a", "alice", "1234")
	if _, _, ok := o.Disconnect("s-a"); !ok {
		t.Fatal("disconnect reported not ok")
	}
	if _, ok := o.Rooms.Get("1234"); ok {
		t.Fatal("empty room was not reclaimed")
	}
}

func TestDisconnectWithoutRoomIsHarmless(t *testing.T) {
	o := newOrchestrator()
	conn := &fakeConn{}
	sess := core.NewPlayerSession(&domain.Player{ID: "a", Name: "alice"}, conn)
	o.Registry.Bind("s-a", sess, nil)

	if room, _, ok := o.Disconnect("s-a"); ok || room != nil {
		t.Fatal("disconnect of roomless session reported a room")
	}
	if _, ok := o.Registry.Session("s-a"); ok {
		t.Fatal("session not unbound")
	}
}

func TestReconnectClosesDisplacedTransport(t *testing.T) {
	o := newOrchestrator()
	room, oldConn := join(t, o, "s-a", "a", "alice", "1234")

	newConn := &fakeConn{}
	sess := core.NewPlayerSession(&domain.Player{ID: "a", Name: "alice"}, newConn)
	o.Registry.Bind("s-a2", sess, nil)
	if _, err := o.JoinGame("s-a2", "1234", sess); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	if room.MemberCount() != 1 {
		t.Fatalf("member count after reconnect = %d, want 1", room.MemberCount())
	}
	if !oldConn.isClosed() {
		t.Fatal("displaced transport left open")
	}
	if newConn.isClosed() {
		t.Fatal("fresh transport was closed")
	}
}

func TestStaleTransportCloseAfterReconnect(t *testing.T) {
	o := newOrchestrator()
	room, _ := join(t, o, "s-1", "a", "alice", "1234")

	newConn := &fakeConn{}
	sess := core.NewPlayerSession(&domain.Player{ID: "a", Name: "alice"}, newConn)
	o.Registry.Bind("s-2", sess, nil)
	if _, err := o.JoinGame("s-2", "1234", sess); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	// The displaced transport's teardown fires only after the rejoin
	// already replaced the member.
	if left, _, ok := o.Disconnect("s-1"); ok || left != nil {
		t.Fatal("stale disconnect evicted the reconnected member")
	}
	if _, ok := o.Rooms.Get("1234"); !ok {
		t.Fatal("room reclaimed although the reconnected member is still connected")
	}
	if got, ok := room.Member("a"); !ok || got != sess {
		t.Fatal("reconnected session lost its membership")
	}
	if _, ok := o.Registry.Session("s-1"); ok {
		t.Fatal("stale session left bound")
	}

	if _, _, ok := o.Disconnect("s-2"); !ok {
		t.Fatal("live disconnect reported not ok")
	}
	if _, ok := o.Rooms.Get("1234"); ok {
		t.Fatal("empty room was not reclaimed")
	}
}

func TestRoomSwitchRejected(t *testing.T) {
	o := newOrchestrator()
	room, _ := join(t, o, "s-a", "a", "alice", "1111")

	_, sess, ok := o.Registry.RoomOf("s-a")
	if !ok {
		t.Fatal("joined session has no room")
	}
	if _, err := o.JoinGame("s-a", "2222", sess); !errors.Is(err, domain.ErrAlreadyInRoom) {
		t.Fatalf("err = %v, want ErrAlreadyInRoom", err)
	}
	if room.MemberCount() != 1 {
		t.Fatal("rejected switch removed the member from its room")
	}
	if _, ok := o.Rooms.Get("2222"); ok {
		t.Fatal("rejected switch created a room")
	}
}

func TestRejoinWithNewIdentityDropsOldEntry(t *testing.T) {
	o := newOrchestrator()
	room, conn := join(t, o, "s-a", "a", "alice", "1234")

	sess := core.NewPlayerSession(&domain.Player{ID: "a2", Name: "alice"}, conn)
	if _, err := o.JoinGame("s-a", "1234", sess); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	o.Registry.UpdateSession("s-a", sess)

	if _, ok := room.Member("a"); ok {
		t.Fatal("old identity still in room")
	}
	if _, ok := room.Member("a2"); !ok {
		t.Fatal("new identity not in room")
	}
	if room.MemberCount() != 1 {
		t.Fatalf("member count = %d, want 1", room.MemberCount())
	}
}

func TestJoinFullRoom(t *testing.T) {
	o := newOrchestrator()
	for _, pid := range []string{"a", "b", "c", "d", "e"} {
		join(t, o, "s-"+pid, pid, "player", "1234")
	}
	conn := &fakeConn{}
	sess := core.NewPlayerSession(&domain.Player{ID: "f", Name: "late"}, conn)
	o.Registry.Bind("s-f", sess, nil)
	if _, err := o.JoinGame("s-f", "1234", sess); !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
	if _, _, ok := o.Registry.RoomOf("s-f"); ok {
		t.Fatal("rejected join left a half-registered member")
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	o := newOrchestrator()
	room1, aConn := join(t, o, "s-a", "a", "alice", "1111")
	room2, bConn := join(t, o, "s-b", "b", "bob", "2222")

	o.Broadcast(room1, core.Frame(`{"type":"chat-message"}`))
	if len(bConn.frames) != 0 {
		t.Fatal("chat leaked across rooms")
	}
	if len(aConn.frames) != 1 {
		t.Fatal("chat not delivered within room")
	}
	if room2.Round() != 0 {
		t.Fatal("unexpected round state")
	}
}
