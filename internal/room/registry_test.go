package room_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trikamdevasi/quizroom/internal/room"
)

type fakeConn struct {
	id string
	mu sync.Mutex
	// captured outbound messages
	msgs []any
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) UserID() string { return f.id }

func (f *fakeConn) Send(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, v)
}

func TestCreateRoom(t *testing.T) {
	reg := room.NewRegistry()
	conn := newFakeConn("u1")

	r := reg.CreateRoom(conn, "alice")

	require.NotNil(t, r)
	assert.Regexp(t, "^[A-Z0-9]{6}$", r.ID)
	assert.False(t, r.Solo)
	require.Len(t, r.Players, 1)
	assert.Equal(t, "alice", r.Players[0].Name)
	assert.Same(t, r.Players[0], r.Host())

	assert.Same(t, r, reg.Room(r.ID))
	assert.Same(t, r, reg.RoomByConn(conn))
}

func TestCreateSoloRoom_DefaultSettings(t *testing.T) {
	reg := room.NewRegistry()

	r := reg.CreateSoloRoom(newFakeConn("u1"), "alice", room.Settings{})

	assert.True(t, r.Solo)
	assert.Equal(t, room.Settings{Category: "random", QuestionCount: 10, TimeLimit: 30}, r.Settings)
}

func TestCreateSoloRoom_PartialSettings(t *testing.T) {
	reg := room.NewRegistry()

	// Fields the client left out are defaulted one by one.
	r := reg.CreateSoloRoom(newFakeConn("u1"), "alice", room.Settings{Category: "technology"})

	assert.Equal(t, room.Settings{Category: "technology", QuestionCount: 10, TimeLimit: 30}, r.Settings)
}

func TestCreateSoloRoom_ExplicitSettings(t *testing.T) {
	reg := room.NewRegistry()
	settings := room.Settings{Category: "technology", QuestionCount: 5, TimeLimit: 20}

	r := reg.CreateSoloRoom(newFakeConn("u1"), "alice", settings)

	assert.Equal(t, settings, r.Settings)
}

func TestJoinRoom(t *testing.T) {
	reg := room.NewRegistry()
	host := newFakeConn("u1")
	created := reg.CreateRoom(host, "alice")

	joiner := newFakeConn("u2")
	r, err := reg.JoinRoom(joiner, created.ID, "bob")

	require.NoError(t, err)
	assert.Same(t, created, r)
	require.Len(t, r.Players, 2)
	assert.Equal(t, "bob", r.Players[1].Name)
	// Host stays the first joiner.
	assert.Equal(t, "alice", r.Host().Name)
}

func TestJoinRoom_NotFound(t *testing.T) {
	reg := room.NewRegistry()

	r, err := reg.JoinRoom(newFakeConn("u1"), "ZZZZZZ", "bob")

	assert.Nil(t, r)
	assert.True(t, errors.Is(err, room.ErrRoomNotFound))
}

func TestJoinRoom_Full(t *testing.T) {
	reg := room.NewRegistry()
	created := reg.CreateRoom(newFakeConn("u1"), "alice")
	_, err := reg.JoinRoom(newFakeConn("u2"), created.ID, "bob")
	require.NoError(t, err)

	r, err := reg.JoinRoom(newFakeConn("u3"), created.ID, "carol")

	assert.Nil(t, r)
	assert.True(t, errors.Is(err, room.ErrRoomFull))
	// Failure must not mutate the player list.
	assert.Len(t, created.Players, 2)
}

func TestRemovePlayer_DeletesEmptyRoom(t *testing.T) {
	reg := room.NewRegistry()
	conn := newFakeConn("u1")
	created := reg.CreateRoom(conn, "alice")

	residual := reg.RemovePlayer(conn)

	require.NotNil(t, residual)
	assert.Empty(t, residual.Players)
	assert.Nil(t, reg.Room(created.ID))
	assert.Equal(t, 0, reg.Count())
}

func TestRemovePlayer_KeepsPopulatedRoom(t *testing.T) {
	reg := room.NewRegistry()
	host := newFakeConn("u1")
	created := reg.CreateRoom(host, "alice")
	joiner := newFakeConn("u2")
	_, err := reg.JoinRoom(joiner, created.ID, "bob")
	require.NoError(t, err)

	residual := reg.RemovePlayer(joiner)

	require.NotNil(t, residual)
	require.Len(t, residual.Players, 1)
	assert.Equal(t, "alice", residual.Players[0].Name)
	assert.Same(t, created, reg.Room(created.ID))
	// Leaving twice is a no-op.
	assert.Nil(t, reg.RemovePlayer(joiner))
}

func TestRemovePlayer_UnknownConn(t *testing.T) {
	reg := room.NewRegistry()

	assert.Nil(t, reg.RemovePlayer(newFakeConn("ghost")))
}

func TestRoomIDsUnique(t *testing.T) {
	reg := room.NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := reg.CreateRoom(newFakeConn(fmt.Sprintf("u%d", i)), "p")
		assert.False(t, seen[r.ID], "duplicate room ID %s", r.ID)
		seen[r.ID] = true
	}
}
