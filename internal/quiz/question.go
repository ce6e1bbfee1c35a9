package quiz

// Difficulty classifies how hard a question is. It drives the base score
// awarded for a correct answer.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a raw difficulty string to a known Difficulty,
// defaulting to medium for anything unrecognized.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyMedium
	}
}

// BasePoints returns the score awarded for a correct answer at this
// difficulty, before any time bonus.
func (d Difficulty) BasePoints() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	default:
		return 10
	}
}

// Question is a single multiple-choice question as served to a room.
// Options are already shuffled; Correct is the index of the right option
// within Options. Questions are immutable once selected for a run.
type Question struct {
	Text       string     `json:"question"`
	Options    []string   `json:"options"`
	Correct    int        `json:"correct"`
	Difficulty Difficulty `json:"difficulty"`
}
