package relay

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/models"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
)

type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Compare(plaintext, hash string) bool   { return "hashed:"+plaintext == hash }

type fakeSender struct {
	mu     sync.Mutex
	events []registry.Event
	closed bool
}

func (f *fakeSender) Send(ev registry.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return true
}

func (f *fakeSender) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newFixture() (*Relay, *store.RoomStore, *registry.Registry) {
	reg := registry.New()
	st := store.New(store.Limits{Public: 5, Private: 5}, plainHasher{}, zerolog.Nop())
	return New(reg, st, zerolog.Nop()), st, reg
}

func TestToRoom(t *testing.T) {
	rl, st, reg := newFixture()
	member := &fakeSender{}
	outsider := &fakeSender{}
	reg.Add("in", member)
	reg.Add("out", outsider)
	st.Join("in", models.GlobalRoomID)

	delivered := rl.ToRoom(models.GlobalRoomID, registry.Event{Name: "message"})

	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
	if member.count() != 1 {
		t.Errorf("member events = %d, want 1", member.count())
	}
	if outsider.count() != 0 {
		t.Error("non-member received a room event")
	}
}

func TestToRoomMissing(t *testing.T) {
	rl, _, _ := newFixture()
	if got := rl.ToRoom("nope", registry.Event{Name: "message"}); got != 0 {
		t.Errorf("delivered = %d, want 0", got)
	}
}

func TestToConn(t *testing.T) {
	rl, _, reg := newFixture()
	s := &fakeSender{}
	reg.Add("a", s)

	if !rl.ToConn("a", registry.Event{Name: "room deleted"}) {
		t.Error("delivery to connected client failed")
	}
	if rl.ToConn("gone", registry.Event{Name: "room deleted"}) {
		t.Error("delivery to missing client reported success")
	}
}

func TestCloseConn(t *testing.T) {
	rl, _, reg := newFixture()
	s := &fakeSender{}
	reg.Add("a", s)

	rl.CloseConn("a")

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		t.Error("CloseConn did not close the transport")
	}
}

func TestRoomListEvent(t *testing.T) {
	rl, st, _ := newFixture()
	st.Create("Lobby", false, "", "u1")

	ev := rl.RoomListEvent()
	if ev.Name != "room list" {
		t.Errorf("event name = %q", ev.Name)
	}
	list, ok := ev.Data.(models.RoomList)
	if !ok {
		t.Fatalf("payload type %T", ev.Data)
	}
	if len(list.PublicRooms) != 2 {
		t.Errorf("public rooms = %d, want 2", len(list.PublicRooms))
	}
}

func TestBroadcastRoomList(t *testing.T) {
	rl, _, reg := newFixture()
	a := &fakeSender{}
	b := &fakeSender{}
	reg.Add("a", a)
	reg.Add("b", b)

	rl.BroadcastRoomList()

	if a.count() != 1 || b.count() != 1 {
		t.Errorf("broadcast delivery: a=%d b=%d", a.count(), b.count())
	}
}
