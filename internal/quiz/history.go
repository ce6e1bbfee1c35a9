package quiz

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Source fetches question sets from the external provider.
type Source interface {
	FetchQuestionsByCategory(ctx context.Context, category string, amount int, difficulty string) ([]Question, error)
	FetchRandomQuestions(ctx context.Context, amount int, difficulty string) ([]Question, error)
}

const (
	// DefaultMaxUsers is the tracked-user threshold that triggers eviction.
	DefaultMaxUsers = 1000
	// DefaultRetainUsers is the number of most recently touched users kept
	// after eviction.
	DefaultRetainUsers = 500
	// DefaultCleanupInterval is how often the eviction sweep runs.
	DefaultCleanupInterval = time.Hour
)

// History serves question sets while remembering which questions each user
// has already seen, so returning users do not get repeats within the process
// lifetime. Served questions are keyed by user and category.
type History struct {
	source Source
	clock  clockwork.Clock

	mu     sync.Mutex
	rng    *rand.Rand
	served map[string]map[string]struct{}
	order  []string // key touch order, oldest first

	maxUsers        int
	retainUsers     int
	cleanupInterval time.Duration
}

// NewHistory creates a History over the given source with default capacity
// bounds and a wall clock.
func NewHistory(source Source) *History {
	return NewHistoryWithClock(source, clockwork.NewRealClock())
}

// NewHistoryWithClock creates a History with an injected clock so the
// eviction sweep is testable.
func NewHistoryWithClock(source Source, clock clockwork.Clock) *History {
	return &History{
		source:          source,
		clock:           clock,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		served:          make(map[string]map[string]struct{}),
		maxUsers:        DefaultMaxUsers,
		retainUsers:     DefaultRetainUsers,
		cleanupInterval: DefaultCleanupInterval,
	}
}

// SetRand replaces the shuffle source for deterministic tests.
func (h *History) SetRand(rng *rand.Rand) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rng = rng
}

// GetUnique returns up to count questions for the user, avoiding questions
// previously served to that user in the same category. It never returns an
// error: a failed provider call falls back to the embedded question set, and
// an exhausted history is reset rather than reported.
func (h *History) GetUnique(ctx context.Context, userID, category string, count int) []Question {
	var (
		questions []Question
		err       error
	)
	if category == "random" || category == "" {
		questions, err = h.source.FetchRandomQuestions(ctx, count, "")
	} else {
		questions, err = h.source.FetchQuestionsByCategory(ctx, category, count, "")
	}
	if err != nil || len(questions) == 0 {
		log.Warn().Err(err).Str("user_id", userID).Str("category", category).
			Msg("provider fetch failed, falling back to local questions")

		h.mu.Lock()
		defer h.mu.Unlock()
		return FallbackQuestions(h.rng, category, count)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key := userID + "|" + category
	seen := h.served[key]
	if seen == nil {
		seen = make(map[string]struct{})
		h.served[key] = seen
		h.order = append(h.order, key)
	} else {
		h.touch(key)
	}

	usable := questions[:0:0]
	for _, q := range questions {
		if _, dup := seen[q.Text]; !dup {
			usable = append(usable, q)
		}
	}

	// Pool exhausted for this user: reset history and allow repeats again.
	if len(usable) < count {
		seen = make(map[string]struct{})
		h.served[key] = seen
		usable = questions
	}

	h.rng.Shuffle(len(usable), func(i, j int) {
		usable[i], usable[j] = usable[j], usable[i]
	})
	if len(usable) > count {
		usable = usable[:count]
	}

	for _, q := range usable {
		seen[q.Text] = struct{}{}
	}
	return usable
}

// Run performs periodic eviction until the context is cancelled. It is
// intended to run on its own goroutine; serving is never blocked by a sweep.
func (h *History) Run(ctx context.Context) {
	ticker := h.clock.NewTicker(h.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			h.evict()
		}
	}
}

// evict drops the oldest tracked users once the threshold is exceeded,
// keeping the most recently touched retainUsers entries.
func (h *History) evict() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.order) <= h.maxUsers {
		return
	}

	drop := len(h.order) - h.retainUsers
	for _, key := range h.order[:drop] {
		delete(h.served, key)
	}
	h.order = append([]string(nil), h.order[drop:]...)

	log.Info().Int("dropped", drop).Int("remaining", len(h.order)).
		Msg("evicted old question histories")
}

// touch moves key to the most-recent end of the order slice.
func (h *History) touch(key string) {
	for i, k := range h.order {
		if k == key {
			h.order = append(append(h.order[:i:i], h.order[i+1:]...), key)
			return
		}
	}
	h.order = append(h.order, key)
}

// TrackedUsers reports how many user/category histories are currently held.
func (h *History) TrackedUsers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}
