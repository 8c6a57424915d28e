package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"solofeed/internal/config"
	"solofeed/internal/metrics"
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client completes a conversation into a single string.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

var ErrEmptyCompletion = errors.New("oracle: empty completion")

// HTTPClient talks to the text-generation endpoint with a JSON body of
// {"messages": [...]} and expects {"completion": "..."} back.
type HTTPClient struct {
	endpoint    string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(cfg config.OracleConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPClient{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     newLimiter(cfg.RPS, cfg.Burst),
		breaker:     newBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
		maxAttempts: attempts,
		baseBackoff: cfg.BaseBackoff,
	}
}

type completionRequest struct {
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

// Complete sends messages and returns the trimmed completion. An open breaker
// short-circuits without touching the network.
func (c *HTTPClient) Complete(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	if c.endpoint == "" {
		metrics.ObserveOracle(start, "error")
		return "", errors.New("oracle: no endpoint configured")
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, messages)
	})
	if err != nil {
		metrics.ObserveOracle(start, "error")
		return "", err
	}
	metrics.ObserveOracle(start, "ok")
	return out.(string), nil
}

func (c *HTTPClient) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := c.doWithRetry(ctx, req, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("oracle status %d", resp.StatusCode)
	}
	var raw completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("oracle: decode: %w", err)
	}
	text := strings.TrimSpace(raw.Completion)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// doWithRetry retries 429 and 5xx answers, honouring Retry-After.
func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		r := req.Clone(ctx)
		r.Body = http.NoBody
		if body != nil {
			r.Body = readCloser(body)
			r.ContentLength = int64(len(body))
		}
		resp, err := c.httpClient.Do(r)
		if err == nil {
			retryable := resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)
			if !retryable || attempt == c.maxAttempts {
				return resp, nil
			}
			wait := retryAfter(resp.Header.Get("Retry-After"), backoff)
			_ = resp.Body.Close()
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			backoff *= 2
			continue
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("oracle request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func retryAfter(header string, def time.Duration) time.Duration {
	if header == "" {
		return def
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return def
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
