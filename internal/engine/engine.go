// Package engine drives the question lifecycle for each room: starting a
// run, dispatching questions, resolving answers and lifelines, and ending
// with final standings.
package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/trikamdevasi/quizroom/internal/events"
	"github.com/trikamdevasi/quizroom/internal/quiz"
	"github.com/trikamdevasi/quizroom/internal/room"
)

const (
	// answerAdvanceDelay gives clients time to render the revealed answer
	// before the next question arrives.
	answerAdvanceDelay = 3 * time.Second
	// skipAdvanceDelay applies when a skip completes the round.
	skipAdvanceDelay = time.Second

	audiencePollDraws       = 100
	audiencePollCorrectBias = 0.7
	fiftyFiftyRemovals      = 2
)

// QuestionService sources non-repeating question sets per user. Implemented
// by quiz.History.
type QuestionService interface {
	GetUnique(ctx context.Context, userID, category string, count int) []quiz.Question
}

// Engine owns the per-room question flow. All room mutation happens under
// the room's lock; scheduled callbacks re-resolve the room through the
// registry before touching it, since a room can be deleted while a timer is
// pending.
type Engine struct {
	registry  *room.Registry
	questions QuestionService
	clock     clockwork.Clock

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an Engine over the given registry and question service.
func New(registry *room.Registry, questions QuestionService, clock clockwork.Clock) *Engine {
	return &Engine{
		registry:  registry,
		questions: questions,
		clock:     clock,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the lifeline sampling source for deterministic tests.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng = rng
}

// StartQuiz sources questions for the room keyed by the host's user ID and
// resets the run. The sourcing call blocks only the caller; the room is
// re-resolved afterwards in case it was deleted mid-fetch, in which case the
// questions are discarded. Returns false when no questions could be sourced
// even from the fallback set; the caller reports that to the client.
func (e *Engine) StartQuiz(ctx context.Context, roomID string) bool {
	r := e.registry.Room(roomID)
	if r == nil {
		return false
	}

	r.Mu.Lock()
	host := r.Host()
	settings := r.Settings
	r.Mu.Unlock()
	if host == nil {
		return false
	}

	questions := e.questions.GetUnique(ctx, host.Conn.UserID(), settings.Category, settings.QuestionCount)
	if len(questions) == 0 {
		log.Error().Str("room_id", roomID).Str("category", settings.Category).
			Msg("failed to source any questions for quiz start")
		return false
	}

	// The room may have been torn down while we were fetching.
	r = e.registry.Room(roomID)
	if r == nil {
		log.Debug().Str("room_id", roomID).Msg("room gone after question sourcing, discarding questions")
		return false
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	r.Questions = questions
	r.CurrentQuestion = 0
	for _, p := range r.Players {
		p.Lifelines = room.Lifelines{FiftyFifty: true, AudiencePoll: true, SkipQuestion: true}
	}

	log.Info().Str("room_id", roomID).Int("questions", len(questions)).Msg("quiz started")
	return true
}

// SendQuestion dispatches the current question to every player, or ends the
// quiz when the question list is exhausted. Each player's answered flag is
// reset and the dispatch time stamped before any answer can be accepted.
func (e *Engine) SendQuestion(roomID string) {
	r := e.registry.Room(roomID)
	if r == nil {
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.CurrentQuestion >= len(r.Questions) {
		e.endQuiz(r)
		return
	}

	q := r.Questions[r.CurrentQuestion]
	r.StartTime = e.clock.Now()

	for _, p := range r.Players {
		p.Answered = false
		p.Conn.Send(events.NewQuestion{
			Type:           events.KindNewQuestion,
			QuestionNumber: r.CurrentQuestion + 1,
			TotalQuestions: len(r.Questions),
			Question:       q.Text,
			Options:        q.Options,
			Difficulty:     string(q.Difficulty),
			Lifelines:      p.Lifelines,
		})
	}
}

// SubmitAnswer resolves one player's answer to the current question. A
// duplicate submission for an already-answered question is silently ignored;
// retransmits are expected, not errors. When the last player answers, the
// advance to the next question is scheduled after a grace delay.
func (e *Engine) SubmitAnswer(roomID string, conn room.Conn, answer int) {
	r := e.registry.Room(roomID)
	if r == nil {
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.PlayerByConn(conn)
	if p == nil || p.Answered {
		return
	}
	if r.CurrentQuestion >= len(r.Questions) {
		return
	}

	p.Answered = true
	q := r.Questions[r.CurrentQuestion]
	correct := answer == q.Correct

	if correct {
		p.Correct++
		elapsed := e.clock.Now().Sub(r.StartTime).Seconds()
		points := q.Difficulty.BasePoints() + timeBonus(r.Settings.TimeLimit, elapsed)
		p.Score += points
	} else {
		p.Wrong++
	}

	p.Conn.Send(events.AnswerResult{
		Type:          events.KindAnswerResult,
		Correct:       correct,
		CorrectAnswer: q.Correct,
		Score:         p.Score,
	})

	if r.AllAnswered() {
		e.scheduleAdvance(roomID, answerAdvanceDelay)
	}
}

// UseLifeline applies a one-time player aid. A lifeline already consumed for
// this player is a no-op: no event, no state change.
func (e *Engine) UseLifeline(roomID string, conn room.Conn, kind string) {
	r := e.registry.Room(roomID)
	if r == nil {
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.PlayerByConn(conn)
	if p == nil || r.CurrentQuestion >= len(r.Questions) {
		return
	}
	q := r.Questions[r.CurrentQuestion]

	switch kind {
	case events.LifelineFiftyFifty:
		if !p.Lifelines.FiftyFifty {
			return
		}
		p.Lifelines.FiftyFifty = false

		p.Conn.Send(events.LifelineResult{
			Type:          events.KindLifelineResult,
			Lifeline:      events.LifelineFiftyFifty,
			RemoveOptions: e.pickWrongOptions(q),
		})

	case events.LifelineAudiencePoll:
		if !p.Lifelines.AudiencePoll {
			return
		}
		p.Lifelines.AudiencePoll = false

		p.Conn.Send(events.LifelineResult{
			Type:     events.KindLifelineResult,
			Lifeline: events.LifelineAudiencePoll,
			Poll:     e.simulatePoll(q.Correct, len(q.Options)),
		})

	case events.LifelineSkipQuestion:
		// Nothing to skip after answering; consuming the lifeline here
		// would also double-schedule the advance.
		if !p.Lifelines.SkipQuestion || p.Answered {
			return
		}
		p.Lifelines.SkipQuestion = false
		p.Answered = true

		if r.AllAnswered() {
			r.CurrentQuestion++
			e.scheduleSend(roomID, skipAdvanceDelay)
		}

	default:
		log.Debug().Str("room_id", roomID).Str("lifeline", kind).Msg("unknown lifeline requested")
	}
}

// endQuiz ranks the players and delivers the final standings to everyone.
// Ties keep join order: the sort is stable. Caller holds the room lock.
func (e *Engine) endQuiz(r *room.Room) {
	results := make([]events.PlayerResult, 0, len(r.Players))
	for _, p := range r.Players {
		results = append(results, events.PlayerResult{
			Name:    p.Name,
			Score:   p.Score,
			Correct: p.Correct,
			Wrong:   p.Wrong,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	ended := events.QuizEnded{Type: events.KindQuizEnded, Results: results}
	for _, p := range r.Players {
		p.Conn.Send(ended)
	}

	log.Info().Str("room_id", r.ID).Int("players", len(results)).Msg("quiz ended")
}

// scheduleAdvance moves to the next question after delay, then dispatches.
// The room is re-resolved inside the callback.
func (e *Engine) scheduleAdvance(roomID string, delay time.Duration) {
	e.clock.AfterFunc(delay, func() {
		r := e.registry.Room(roomID)
		if r == nil {
			return
		}
		r.Mu.Lock()
		r.CurrentQuestion++
		r.Mu.Unlock()

		e.SendQuestion(roomID)
	})
}

// scheduleSend dispatches the current question after delay. Used by the skip
// path, where the index was already advanced.
func (e *Engine) scheduleSend(roomID string, delay time.Duration) {
	e.clock.AfterFunc(delay, func() {
		e.SendQuestion(roomID)
	})
}

// pickWrongOptions selects two incorrect option indexes at random for the
// fifty-fifty lifeline. The correct option always survives.
func (e *Engine) pickWrongOptions(q quiz.Question) []int {
	wrong := make([]int, 0, len(q.Options)-1)
	for i := range q.Options {
		if i != q.Correct {
			wrong = append(wrong, i)
		}
	}

	e.rngMu.Lock()
	e.rng.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	e.rngMu.Unlock()

	if len(wrong) > fiftyFiftyRemovals {
		wrong = wrong[:fiftyFiftyRemovals]
	}
	return wrong
}

// simulatePoll fabricates an audience vote distribution: 100 draws with 70%
// of the probability mass on the correct option and the rest spread
// uniformly over all options. A biased simulation, not a real signal.
func (e *Engine) simulatePoll(correct, optionCount int) []int {
	if optionCount > 4 {
		optionCount = 4
	}
	poll := make([]int, 4)

	e.rngMu.Lock()
	defer e.rngMu.Unlock()

	for i := 0; i < audiencePollDraws; i++ {
		if e.rng.Float64() < audiencePollCorrectBias {
			poll[correct]++
		} else {
			poll[e.rng.Intn(optionCount)]++
		}
	}
	return poll
}

// timeBonus rewards answering well before the limit: half a point per second
// of slack, floored, never negative.
func timeBonus(timeLimit int, elapsedSec float64) int {
	bonus := int(math.Floor((float64(timeLimit) - elapsedSec) / 2))
	if bonus < 0 {
		return 0
	}
	return bonus
}
