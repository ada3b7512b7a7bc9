package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/curbcast/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// getJSON fetches target and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, target string, v any) error {
	resp, err := c.Get(ctx, target)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%s returned status %d: %s", target, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", target, err)
	}
	return nil
}

// reportURL builds the URL of a report endpoint with the configured query.
func reportURL(config *Config, path string) string {
	q := url.Values{}
	if config.Airport != "" {
		q.Set("airport", config.Airport)
	}
	if config.Direction != "" {
		q.Set("direction", config.Direction)
	}
	u := config.BaseURL + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// burst fires config.Requests concurrent /flights requests through a
// worker pool and returns every successful response.
func burst(ctx context.Context, config *Config, stats *Stats) ([]FlightsReport, error) {
	config.log().Info(ctx, "sending request burst",
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	target := reportURL(config, "/flights")

	var (
		sent   int64
		failed int64
		mu     sync.Mutex
		out    = make([]FlightsReport, 0, config.Requests)
	)

	jobs := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if ctx.Err() != nil {
					return
				}
				atomic.AddInt64(&sent, 1)
				var r FlightsReport
				if err := client.getJSON(ctx, target, &r); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						config.log().Warn(ctx, "burst request failed", logger.Error(err))
					}
					continue
				}
				mu.Lock()
				out = append(out, r)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < config.Requests; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()

	stats.RequestsSent += int(atomic.LoadInt64(&sent))
	stats.RequestsFailed += int(atomic.LoadInt64(&failed))
	stats.RequestsSuccessful += len(out)

	if len(out) == 0 {
		return nil, fmt.Errorf("all %d burst requests failed", config.Requests)
	}
	return out, nil
}
