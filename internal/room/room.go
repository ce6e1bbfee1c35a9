package room

import (
	"sync"
	"time"

	"github.com/trikamdevasi/quizroom/internal/quiz"
)

// Conn is the engine's view of a client connection. The gateway's WebSocket
// connection implements it; tests use in-memory fakes.
type Conn interface {
	// UserID identifies the user behind the connection for question history
	// tracking.
	UserID() string
	// Send queues an outbound message for delivery. It must not block.
	Send(v any)
}

// Settings are the quiz parameters for a run. Set once at quiz start and
// immutable while the run is in progress.
type Settings struct {
	Category      string `json:"category"`
	QuestionCount int    `json:"questionCount"`
	TimeLimit     int    `json:"timeLimit"`
}

// DefaultSettings are used for solo rooms when the client sends none.
func DefaultSettings() Settings {
	return Settings{
		Category:      "random",
		QuestionCount: 10,
		TimeLimit:     30,
	}
}

// Lifelines tracks which one-time aids a player still holds. Each flag is
// true until that lifeline is consumed, once per quiz run.
type Lifelines struct {
	FiftyFifty   bool `json:"fiftyFifty"`
	AudiencePoll bool `json:"audiencePoll"`
	SkipQuestion bool `json:"skipQuestion"`
}

// Player is one participant in a room. Owned exclusively by its Room.
type Player struct {
	Conn      Conn
	Name      string
	Score     int
	Correct   int
	Wrong     int
	Answered  bool
	Lifelines Lifelines
}

// Room is a live quiz session grouping one or two players. Players are kept
// in join order; index 0 is the host. All mutation happens under Mu, which
// serializes message handlers and timer callbacks touching the same room.
type Room struct {
	ID              string
	Players         []*Player
	Settings        Settings
	Questions       []quiz.Question
	CurrentQuestion int
	StartTime       time.Time
	Solo            bool

	Mu sync.Mutex
}

// Host returns the room's host (the first player to join), or nil for an
// empty room.
func (r *Room) Host() *Player {
	if len(r.Players) == 0 {
		return nil
	}
	return r.Players[0]
}

// PlayerByConn finds the player attached to conn, or nil if the connection
// is not a member of this room.
func (r *Room) PlayerByConn(conn Conn) *Player {
	for _, p := range r.Players {
		if p.Conn == conn {
			return p
		}
	}
	return nil
}

// AllAnswered reports whether every player has answered the current
// question. Checked after each submission, never assumed.
func (r *Room) AllAnswered() bool {
	for _, p := range r.Players {
		if !p.Answered {
			return false
		}
	}
	return true
}
