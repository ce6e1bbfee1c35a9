package room

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MaxPlayers is the room capacity.
const MaxPlayers = 2

const roomIDLength = 6

var (
	// ErrRoomNotFound is returned when joining an unknown room ID.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when joining a room at capacity.
	ErrRoomFull = errors.New("room is full")
)

const roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry owns the live rooms keyed by their public identifier, plus the
// membership of each connection. It is injected where needed rather than
// accessed as a global, and its maps are only touched under its own lock.
type Registry struct {
	mu      sync.Mutex
	rng     *rand.Rand
	rooms   map[string]*Room
	members map[Conn]string
}

// NewRegistry creates an empty Registry with its own seeded ID source.
func NewRegistry() *Registry {
	return &Registry{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		rooms:   make(map[string]*Room),
		members: make(map[Conn]string),
	}
}

// SetRand replaces the room ID source for deterministic tests.
func (g *Registry) SetRand(rng *rand.Rand) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng = rng
}

// CreateRoom creates a multiplayer room with conn's player as host.
func (g *Registry) CreateRoom(conn Conn, playerName string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.create(conn, playerName, Settings{}, false)
}

// CreateSoloRoom creates a single-player room. Settings fields the client
// left unset are filled from the defaults individually, so a partial
// settings object still yields a playable quiz.
func (g *Registry) CreateSoloRoom(conn Conn, playerName string, settings Settings) *Room {
	defaults := DefaultSettings()
	if settings.Category == "" {
		settings.Category = defaults.Category
	}
	if settings.QuestionCount <= 0 {
		settings.QuestionCount = defaults.QuestionCount
	}
	if settings.TimeLimit <= 0 {
		settings.TimeLimit = defaults.TimeLimit
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.create(conn, playerName, settings, true)
}

func (g *Registry) create(conn Conn, playerName string, settings Settings, solo bool) *Room {
	id := g.generateRoomID()
	room := &Room{
		ID:       id,
		Players:  []*Player{{Conn: conn, Name: playerName}},
		Settings: settings,
		Solo:     solo,
	}

	g.rooms[id] = room
	g.members[conn] = id

	log.Info().Str("room_id", id).Str("player", playerName).Bool("solo", solo).Msg("room created")
	return room
}

// JoinRoom adds a player to an existing room. On failure nothing is mutated.
func (g *Registry) JoinRoom(conn Conn, roomID, playerName string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if len(room.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	room.Players = append(room.Players, &Player{Conn: conn, Name: playerName})
	g.members[conn] = roomID

	log.Info().Str("room_id", roomID).Str("player", playerName).Int("players", len(room.Players)).Msg("player joined room")
	return room, nil
}

// Room looks up a room by ID, returning nil when absent.
func (g *Registry) Room(roomID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[roomID]
}

// RoomByConn resolves the room a connection belongs to, or nil.
func (g *Registry) RoomByConn(conn Conn) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.members[conn]; ok {
		return g.rooms[id]
	}
	return nil
}

// RemovePlayer removes the connection's player from its room and deletes the
// room once empty. The residual room is returned (possibly still populated)
// so the caller can decide whether to notify remaining players; nil when the
// connection was not in any room.
func (g *Registry) RemovePlayer(conn Conn) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	roomID, ok := g.members[conn]
	if !ok {
		return nil
	}
	delete(g.members, conn)

	room, ok := g.rooms[roomID]
	if !ok {
		return nil
	}

	room.Mu.Lock()
	for i, p := range room.Players {
		if p.Conn == conn {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	empty := len(room.Players) == 0
	room.Mu.Unlock()

	if empty {
		delete(g.rooms, roomID)
		log.Info().Str("room_id", roomID).Msg("room deleted, last player left")
	}

	return room
}

// Count reports the number of live rooms.
func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// generateRoomID produces a short uppercase identifier, retrying on the
// unlikely collision. Caller must hold the registry lock.
func (g *Registry) generateRoomID() string {
	for {
		buf := make([]byte, roomIDLength)
		for i := range buf {
			buf[i] = roomIDAlphabet[g.rng.Intn(len(roomIDAlphabet))]
		}
		id := string(buf)
		if _, exists := g.rooms[id]; !exists {
			return id
		}
	}
}
