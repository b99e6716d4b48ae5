package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quizlive/quizlive/internal/game"
)

// Client fetches quiz questions from the content service. The service
// authenticates with the bearer credential the host client supplies on
// host-join-game; the server never holds credentials of its own.
type Client struct {
	BaseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 20 * time.Second}}
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Questions struct {
			Question []game.Question `json:"question"`
		} `json:"questions"`
	} `json:"data"`
}

// Questions retrieves the ordered question list for a content id. Any
// failure (transport, non-2xx, unsuccessful envelope, empty list) is
// returned as an error; the gateway collapses them all into noGameFound.
func (c *Client) Questions(ctx context.Context, contentID, bearer string) ([]game.Question, error) {
	url := fmt.Sprintf("%s/api/v1/game/play/%s", c.BaseURL, contentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("content service status %d", resp.StatusCode)
	}

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("content decode: %w", err)
	}
	if !out.Success {
		return nil, errors.New("content service reported failure")
	}
	qs := out.Data.Questions.Question
	if len(qs) == 0 {
		return nil, errors.New("content service returned no questions")
	}
	return qs, nil
}
