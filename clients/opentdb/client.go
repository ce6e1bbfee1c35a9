package opentdb

import (
	"math/rand"
	"sync"
	"time"

	"github.com/trikamdevasi/quizroom/clients"
	"github.com/trikamdevasi/quizroom/internal/quiz"
)

// Client talks to the Open Trivia Database API. One instance is shared by
// every fetching goroutine, so the shuffle source sits behind its own lock.
type Client struct {
	*clients.BaseClient

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewClient constructs a Client against the public Open Trivia DB endpoint
// with its own seeded shuffle source.
func NewClient() *Client {
	return NewClientWithURL(BaseURL)
}

// NewClientWithURL constructs a Client against a custom base URL. Tests use
// this to point at a local server.
func NewClientWithURL(baseURL string) *Client {
	src := rand.NewSource(time.Now().UnixNano())
	return &Client{
		BaseClient: clients.NewBaseClient(baseURL),
		rng:        rand.New(src),
	}
}

// SetRand replaces the shuffle source. Option order and random-path mixing
// become deterministic under a fixed seed.
func (c *Client) SetRand(rng *rand.Rand) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	c.rng = rng
}

// shuffleStrings performs an in-place Fisher-Yates shuffle.
func (c *Client) shuffleStrings(s []string) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	for i := len(s) - 1; i > 0; i-- {
		j := c.rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// shuffleQuestions permutes a fetched set in place.
func (c *Client) shuffleQuestions(qs []quiz.Question) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	c.rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
