package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize caps the exporter response; larger bodies are rejected rather
// than truncated mid-line.
const maxBodySize = 16 << 20

// Source fetches raw exposition text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// HTTPSource scrapes a node exporter endpoint over HTTP.
type HTTPSource struct {
	url     string
	client  *http.Client
	maxBody int64
}

// NewHTTPSource creates a source for url with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		maxBody: maxBodySize,
	}
}

// Fetch performs a single GET. Transport errors, timeouts and non-2xx
// responses are all returned as errors.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > s.maxBody {
		return "", fmt.Errorf("metrics response exceeds %d bytes", s.maxBody)
	}
	return string(body), nil
}

// StatusError indicates the exporter answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("metrics endpoint returned %d", e.StatusCode)
}
