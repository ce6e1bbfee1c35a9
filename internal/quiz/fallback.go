package quiz

import (
	_ "embed"
	"encoding/json"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// The embedded fallback set keeps the game playable when the provider is
// unreachable. Keyed by internal category name.
//
//go:embed questions.json
var fallbackData []byte

var fallbackSet map[string][]Question

func init() {
	if err := json.Unmarshal(fallbackData, &fallbackSet); err != nil {
		// The file ships with the binary; a parse failure is a build defect.
		log.Error().Err(err).Msg("failed to parse embedded fallback questions")
		fallbackSet = map[string][]Question{}
	}
}

// FallbackQuestions selects up to count questions from the embedded set,
// filtered by category when one is given, pooled across all categories
// otherwise. Options are reshuffled per delivery so repeated games do not
// show the answers in the same positions. A shorter result than requested
// is acceptable.
func FallbackQuestions(rng *rand.Rand, category string, count int) []Question {
	var pool []Question
	if category != "" && category != "random" {
		pool = append(pool, fallbackSet[category]...)
	}
	if len(pool) == 0 {
		for _, questions := range fallbackSet {
			pool = append(pool, questions...)
		}
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > count {
		pool = pool[:count]
	}

	out := make([]Question, 0, len(pool))
	for _, q := range pool {
		out = append(out, reshuffleOptions(rng, q))
	}
	return out
}

// reshuffleOptions returns a copy of q with its options permuted and the
// correct index updated. The embedded set is never mutated.
func reshuffleOptions(rng *rand.Rand, q Question) Question {
	correct := q.Options[q.Correct]

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	for i := len(options) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	for i, opt := range options {
		if opt == correct {
			q.Correct = i
			break
		}
	}
	q.Options = options
	return q
}
