package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/trikamdevasi/quizroom/internal/engine"
	"github.com/trikamdevasi/quizroom/internal/events"
	"github.com/trikamdevasi/quizroom/internal/room"
)

const (
	// soloStartDelay gives the solo client a beat to render the lobby
	// before the first question work begins.
	soloStartDelay = 500 * time.Millisecond
	// quizStartDelay separates the quiz_started event from the first
	// question.
	quizStartDelay = time.Second
)

const sourcingFailedMessage = "Failed to load questions. Please try again."

// Dispatcher is a stateless router from inbound message kinds to registry
// and engine operations. Messages addressed to rooms the sender is not a
// member of are dropped; that is the normal race of a late message arriving
// after teardown, not an error.
type Dispatcher struct {
	registry *room.Registry
	engine   *engine.Engine
	clock    clockwork.Clock
}

// NewDispatcher creates a Dispatcher over the registry and engine.
func NewDispatcher(registry *room.Registry, eng *engine.Engine, clock clockwork.Clock) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		engine:   eng,
		clock:    clock,
	}
}

// HandleMessage routes one raw client message. Malformed JSON is logged and
// dropped; the connection stays open.
func (d *Dispatcher) HandleMessage(conn room.Conn, raw []byte) {
	var msg events.Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Warn().Err(err).Str("user_id", conn.UserID()).Msg("failed to parse incoming message")
		return
	}

	switch msg.Type {
	case events.KindCreateRoom:
		d.handleCreateRoom(conn, msg)
	case events.KindPlaySolo:
		d.handlePlaySolo(conn, msg)
	case events.KindJoinRoom:
		d.handleJoinRoom(conn, msg)
	case events.KindStartQuiz:
		d.handleStartQuiz(conn, msg)
	case events.KindSubmitAnswer:
		d.handleSubmitAnswer(conn, msg)
	case events.KindUseLifeline:
		d.handleUseLifeline(conn, msg)
	default:
		log.Debug().Str("type", msg.Type).Str("user_id", conn.UserID()).Msg("unknown message type, dropping")
	}
}

// HandleDisconnect removes the player from their room and tells anyone left
// behind. The quiz continues for the remaining players.
func (d *Dispatcher) HandleDisconnect(conn room.Conn) {
	r := d.registry.RemovePlayer(conn)
	if r == nil {
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if len(r.Players) == 0 {
		return
	}

	left := events.PlayerLeft{Type: events.KindPlayerLeft, Players: roster(r)}
	for _, p := range r.Players {
		p.Conn.Send(left)
	}
}

func (d *Dispatcher) handleCreateRoom(conn room.Conn, msg events.Inbound) {
	r := d.registry.CreateRoom(conn, msg.PlayerName)
	conn.Send(events.RoomCreated{Type: events.KindRoomCreated, RoomID: r.ID})
}

func (d *Dispatcher) handlePlaySolo(conn room.Conn, msg events.Inbound) {
	r := d.registry.CreateSoloRoom(conn, msg.PlayerName, msg.Settings)

	conn.Send(events.PlayerJoined{
		Type:    events.KindPlayerJoined,
		Players: []events.PlayerInfo{{Name: msg.PlayerName}},
	})

	// Quiz starts automatically in solo mode.
	roomID := r.ID
	d.clock.AfterFunc(soloStartDelay, func() {
		if d.engine.StartQuiz(context.Background(), roomID) {
			d.engine.SendQuestion(roomID)
		} else {
			conn.Send(events.NewError(sourcingFailedMessage))
		}
	})
}

func (d *Dispatcher) handleJoinRoom(conn room.Conn, msg events.Inbound) {
	r, err := d.registry.JoinRoom(conn, msg.RoomID, msg.PlayerName)
	if err != nil {
		conn.Send(events.NewError(joinErrorMessage(err)))
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	joined := events.PlayerJoined{Type: events.KindPlayerJoined, Players: roster(r)}
	for _, p := range r.Players {
		p.Conn.Send(joined)
	}
}

func (d *Dispatcher) handleStartQuiz(conn room.Conn, msg events.Inbound) {
	r := d.registry.RoomByConn(conn)
	if r == nil {
		return
	}

	r.Mu.Lock()
	host := r.Host()
	if host == nil || host.Conn != conn {
		// Only the host starts a quiz.
		r.Mu.Unlock()
		return
	}
	r.Settings = msg.Settings
	roomID := r.ID
	r.Mu.Unlock()

	if !d.engine.StartQuiz(context.Background(), roomID) {
		conn.Send(events.NewError(sourcingFailedMessage))
		return
	}

	// The room may have emptied while questions were being sourced.
	r = d.registry.Room(roomID)
	if r == nil {
		return
	}

	r.Mu.Lock()
	started := events.QuizStarted{
		Type:           events.KindQuizStarted,
		Settings:       r.Settings,
		TotalQuestions: len(r.Questions),
	}
	for _, p := range r.Players {
		p.Conn.Send(started)
	}
	r.Mu.Unlock()

	d.clock.AfterFunc(quizStartDelay, func() {
		d.engine.SendQuestion(roomID)
	})
}

func (d *Dispatcher) handleSubmitAnswer(conn room.Conn, msg events.Inbound) {
	r := d.registry.RoomByConn(conn)
	if r == nil {
		return
	}
	d.engine.SubmitAnswer(r.ID, conn, msg.Answer)
}

func (d *Dispatcher) handleUseLifeline(conn room.Conn, msg events.Inbound) {
	r := d.registry.RoomByConn(conn)
	if r == nil {
		return
	}
	d.engine.UseLifeline(r.ID, conn, msg.Lifeline)
}

// roster snapshots names and scores for join and leave notifications.
// Caller holds the room lock.
func roster(r *room.Room) []events.PlayerInfo {
	players := make([]events.PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		score := p.Score
		players = append(players, events.PlayerInfo{Name: p.Name, Score: &score})
	}
	return players
}

// joinErrorMessage maps registry failures to the client-facing wording.
func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, room.ErrRoomFull):
		return "Room is full"
	default:
		return "Unable to join room"
	}
}
