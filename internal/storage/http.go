package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rewired-gh/bikepulse/internal/logger"
	"github.com/rewired-gh/bikepulse/internal/models"
)

// HTTPSource downloads a CSV export over HTTP and parses it like CSVSource.
// Transport errors and 5xx responses are retried with a linear backoff.
type HTTPSource struct {
	URL            string
	Client         *http.Client
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Load fetches and parses the remote file.
func (s HTTPSource) Load(ctx context.Context) ([]models.Observation, error) {
	resp, err := s.doRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch csv: %w", err)
	}
	defer resp.Body.Close()

	return parseCSV(ctx, resp.Body)
}

// doRequest performs the GET with retry logic
func (s HTTPSource) doRequest(ctx context.Context) (*http.Response, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := s.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			delay := s.RetryDelayBase * time.Duration(i)
			logger.Debug("Retrying %s in %v (attempt %d/%d): %v", s.URL, delay, i+1, maxRetries, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
