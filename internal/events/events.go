// Package events defines the JSON messages exchanged with clients. The
// types here are shared between the engine and gateway packages.
package events

import (
	"github.com/trikamdevasi/quizroom/internal/room"
)

// Inbound message kinds.
const (
	KindCreateRoom   = "create_room"
	KindPlaySolo     = "play_solo"
	KindJoinRoom     = "join_room"
	KindStartQuiz    = "start_quiz"
	KindSubmitAnswer = "submit_answer"
	KindUseLifeline  = "use_lifeline"
)

// Outbound message kinds.
const (
	KindRoomCreated    = "room_created"
	KindPlayerJoined   = "player_joined"
	KindPlayerLeft     = "player_left"
	KindQuizStarted    = "quiz_started"
	KindNewQuestion    = "new_question"
	KindAnswerResult   = "answer_result"
	KindLifelineResult = "lifeline_result"
	KindQuizEnded      = "quiz_ended"
	KindError          = "error"
)

// Lifeline names as they appear on the wire.
const (
	LifelineFiftyFifty   = "fiftyFifty"
	LifelineAudiencePoll = "audiencePoll"
	LifelineSkipQuestion = "skipQuestion"
)

// Inbound is a client message. Only the fields relevant to Type are set.
type Inbound struct {
	Type       string        `json:"type"`
	PlayerName string        `json:"playerName"`
	RoomID     string        `json:"roomId"`
	Settings   room.Settings `json:"settings"`
	Answer     int           `json:"answer"`
	Lifeline   string        `json:"lifeline"`
}

// PlayerInfo is a player entry in join and leave notifications. Score is
// omitted for solo-start notifications, which only carry names.
type PlayerInfo struct {
	Name  string `json:"name"`
	Score *int   `json:"score,omitempty"`
}

// PlayerResult is one row of the final standings.
type PlayerResult struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
}

// RoomCreated acknowledges create_room to the host.
type RoomCreated struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// PlayerJoined announces the current roster to room members.
type PlayerJoined struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
}

// PlayerLeft announces a departure to the remaining members.
type PlayerLeft struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
}

// QuizStarted confirms a quiz run is beginning.
type QuizStarted struct {
	Type           string        `json:"type"`
	Settings       room.Settings `json:"settings"`
	TotalQuestions int           `json:"totalQuestions"`
}

// NewQuestion delivers the current question to one player. Lifelines carry
// that player's own availability, which is why this event is per-player
// rather than broadcast.
type NewQuestion struct {
	Type           string         `json:"type"`
	QuestionNumber int            `json:"questionNumber"`
	TotalQuestions int            `json:"totalQuestions"`
	Question       string         `json:"question"`
	Options        []string       `json:"options"`
	Difficulty     string         `json:"difficulty"`
	Lifelines      room.Lifelines `json:"lifelines"`
}

// AnswerResult reports the outcome of a submission to the submitter.
type AnswerResult struct {
	Type          string `json:"type"`
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correctAnswer"`
	Score         int    `json:"score"`
}

// LifelineResult returns a lifeline's effect to the requester only.
type LifelineResult struct {
	Type          string `json:"type"`
	Lifeline      string `json:"lifeline"`
	RemoveOptions []int  `json:"removeOptions,omitempty"`
	Poll          []int  `json:"poll,omitempty"`
}

// QuizEnded carries the final standings, ranked by score.
type QuizEnded struct {
	Type    string         `json:"type"`
	Results []PlayerResult `json:"results"`
}

// Error is a protocol-level failure scoped to one connection.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an error event.
func NewError(message string) Error {
	return Error{Type: KindError, Message: message}
}
