// Package trivia fetches question batches from the Open Trivia DB API.
// A failed fetch is surfaced to the caller and never turned into a
// room proposal.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trivia-party-service/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com/api.php"

// Response codes documented by opentdb; anything but 0 means the
// provider could not serve the requested batch.
const responseOK = 0

var (
	ErrProviderStatus = errors.New("trivia provider returned non-success status")
	ErrProviderCode   = errors.New("trivia provider returned error response code")
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []domain.Question `json:"results"`
}

// Fetch returns a fresh batch of multiple-choice questions.
func (c *Client) Fetch(ctx context.Context, amount int, difficulty string) (domain.QuestionSet, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(amount))
	q.Set("difficulty", difficulty)
	q.Set("type", "multiple")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build trivia request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trivia fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrProviderStatus, resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trivia response: %w", err)
	}
	if body.ResponseCode != responseOK {
		return nil, fmt.Errorf("%w: %d", ErrProviderCode, body.ResponseCode)
	}
	if len(body.Results) == 0 {
		return nil, domain.ErrEmptyQuestionSet
	}
	return domain.QuestionSet(body.Results), nil
}
