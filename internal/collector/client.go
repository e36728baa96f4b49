package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAttempts = 5

// State is the part of a Home Assistant entity state the collector reads.
type State struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastUpdated time.Time      `json:"last_updated"`
}

// FriendlyName returns the friendly_name attribute, or "" when absent.
func (s State) FriendlyName() string {
	name, _ := s.Attributes["friendly_name"].(string)
	return name
}

// Client talks to the Home Assistant REST API.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	attempts int
	// backoff is the delay before retry n (0-based).
	backoff func(n int) time.Duration
}

func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		http:     hc,
		attempts: defaultAttempts,
		backoff: func(n int) time.Duration {
			return time.Duration(math.Pow(2, float64(n))) * time.Second
		},
	}
}

// State fetches the current state of one entity, retrying rate limits,
// server errors and network failures with exponential backoff.
func (c *Client) State(ctx context.Context, entityID string) (State, error) {
	u := c.baseURL + "/api/states/" + url.PathEscape(entityID)

	var body []byte
	var err error
	for attempt := 0; attempt < c.attempts; attempt++ {
		body, err = c.doRequest(ctx, u)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt == c.attempts-1 {
			break
		}
		select {
		case <-time.After(c.backoff(attempt)):
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
	if err != nil {
		if isRetryable(err) {
			return State{}, fmt.Errorf("%s after %d attempts: %w", entityID, c.attempts, err)
		}
		return State{}, fmt.Errorf("%s: %w", entityID, err)
	}

	var s State
	if err := json.Unmarshal(body, &s); err != nil {
		return State{}, fmt.Errorf("%s: parsing JSON: %w", entityID, err)
	}
	return s, nil
}

type apiError struct {
	statusCode int
	message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.statusCode, e.message)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ae *apiError
	if !errors.As(err, &ae) {
		return true // network errors are retryable
	}
	return ae.statusCode == http.StatusTooManyRequests || ae.statusCode >= 500
}

func (c *Client) doRequest(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, &apiError{statusCode: resp.StatusCode, message: "authentication failed, check HA_TOKEN"}
	case http.StatusNotFound:
		return nil, &apiError{statusCode: resp.StatusCode, message: "entity not found"}
	default:
		return nil, &apiError{statusCode: resp.StatusCode, message: strings.TrimSpace(string(body))}
	}
}
