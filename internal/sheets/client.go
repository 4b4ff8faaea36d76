package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var defaultHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}

// StatusError reports a non-200 answer from the data source.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheets: status %d for %s", e.StatusCode, e.URL)
}

// HTTPSource reads any endpoint answering with a Sheets-style {"values": [...]} body.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := defaultHTTPClient
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPSource{URL: url, Client: client}
}

func (s *HTTPSource) Values(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = defaultHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: s.URL, StatusCode: resp.StatusCode}
	}

	var result ValueRange
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", s.URL, err)
	}
	return result.Strings(), nil
}
