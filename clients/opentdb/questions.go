package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/trikamdevasi/quizroom/internal/quiz"
)

// apiQuestion is a raw question as returned by the provider. Text fields are
// HTML-entity encoded.
type apiQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// Category is a provider category as listed by the categories endpoint.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type categoriesResponse struct {
	TriviaCategories []Category `json:"trivia_categories"`
}

// FetchOptions configures a single provider request.
type FetchOptions struct {
	Amount     int
	Category   int    // 0 means any category
	Difficulty string // empty means any difficulty
}

// FetchQuestions requests questions from the provider and converts them to
// the internal format. A non-zero provider response code is always returned
// as an error, never as an empty result.
func (c *Client) FetchQuestions(ctx context.Context, opts FetchOptions) ([]quiz.Question, error) {
	amount := opts.Amount
	if amount <= 0 {
		amount = 10
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("type", TypeMultiple)
	if opts.Category != 0 {
		params.Set("category", strconv.Itoa(opts.Category))
	}
	if opts.Difficulty != "" {
		params.Set("difficulty", opts.Difficulty)
	}

	log.Debug().Int("amount", amount).Int("category", opts.Category).Msg("fetching questions from provider")

	body, err := c.Get(ctx, QuestionsEndpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	var response questionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if response.ResponseCode != CodeSuccess {
		return nil, fmt.Errorf("API error: %s", errorMessage(response.ResponseCode))
	}

	questions := make([]quiz.Question, 0, len(response.Results))
	for _, raw := range response.Results {
		questions = append(questions, c.formatQuestion(raw))
	}

	log.Debug().Int("count", len(questions)).Msg("fetched questions from provider")
	return questions, nil
}

// FetchQuestionsByCategory resolves an internal category name to a provider
// category ID and fetches. Unmapped names and the literal "random" take the
// mixed-category path.
func (c *Client) FetchQuestionsByCategory(ctx context.Context, category string, amount int, difficulty string) ([]quiz.Question, error) {
	id, ok := categoryMap[category]
	if !ok || category == "random" {
		return c.FetchRandomQuestions(ctx, amount, difficulty)
	}

	return c.FetchQuestions(ctx, FetchOptions{
		Amount:     amount,
		Category:   id,
		Difficulty: difficulty,
	})
}

// FetchRandomQuestions pulls a mixed set from several provider categories for
// variety. Individual category failures are skipped; a final unconstrained
// request tops up any shortfall.
func (c *Client) FetchRandomQuestions(ctx context.Context, amount int, difficulty string) ([]quiz.Question, error) {
	if amount <= 0 {
		amount = 10
	}
	perCategory := (amount + len(randomCategories) - 1) / len(randomCategories)

	var all []quiz.Question
	for _, id := range randomCategories {
		want := perCategory
		if remaining := amount - len(all); remaining < want {
			want = remaining
		}

		questions, err := c.FetchQuestions(ctx, FetchOptions{
			Amount:     want,
			Category:   id,
			Difficulty: difficulty,
		})
		if err != nil {
			log.Warn().Err(err).Int("category", id).Msg("failed to fetch from category, skipping")
			continue
		}
		all = append(all, questions...)

		if len(all) >= amount {
			break
		}
	}

	if len(all) < amount {
		questions, err := c.FetchQuestions(ctx, FetchOptions{
			Amount:     amount - len(all),
			Difficulty: difficulty,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch additional questions")
		} else {
			all = append(all, questions...)
		}
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no questions available from any category")
	}

	c.shuffleQuestions(all)
	if len(all) > amount {
		all = all[:amount]
	}
	return all, nil
}

// Categories lists the categories known to the provider. An empty slice is
// returned on error since callers only use this for display.
func (c *Client) Categories(ctx context.Context) []Category {
	body, err := c.Get(ctx, CategoriesEndpoint)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch categories")
		return nil
	}

	var response categoriesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal categories")
		return nil
	}

	return response.TriviaCategories
}

// formatQuestion converts a raw provider question into the internal format:
// entities decoded, options shuffled, correct index recorded.
func (c *Client) formatQuestion(raw apiQuestion) quiz.Question {
	text := html.UnescapeString(raw.Question)
	correct := html.UnescapeString(raw.CorrectAnswer)

	options := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, ans := range raw.IncorrectAnswers {
		options = append(options, html.UnescapeString(ans))
	}
	options = append(options, correct)

	c.shuffleStrings(options)

	correctIndex := 0
	for i, opt := range options {
		if opt == correct {
			correctIndex = i
			break
		}
	}

	return quiz.Question{
		Text:       text,
		Options:    options,
		Correct:    correctIndex,
		Difficulty: quiz.ParseDifficulty(raw.Difficulty),
	}
}

// errorMessage maps a provider response code to a human-readable failure.
func errorMessage(code int) string {
	switch code {
	case CodeNoResults:
		return "not enough questions available for the specified parameters"
	case CodeInvalidParameter:
		return "invalid parameter"
	case CodeTokenNotFound:
		return "token not found"
	case CodeTokenEmpty:
		return "token empty"
	default:
		return "unknown error"
	}
}
