package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client talks to the external execution service over HTTP. Each call carries
// a timeout of the test's time limit plus a fixed compilation allowance; a
// call that outlives it is reported as a timed-out run, not retried.
// Transient connectivity failures are retried a bounded number of times with
// backoff before ErrExecutorUnavailable surfaces.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	maxRetries       int
	retryBackoff     time.Duration
	compileAllowance time.Duration
}

type ClientOptions struct {
	BaseURL          string
	MaxRetries       int
	RetryBackoff     time.Duration
	CompileAllowance time.Duration
}

func NewClient(opts ClientOptions) *Client {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		baseURL:          opts.BaseURL,
		httpClient:       &http.Client{},
		maxRetries:       opts.MaxRetries,
		retryBackoff:     opts.RetryBackoff,
		compileAllowance: opts.CompileAllowance,
	}
}

func (c *Client) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("judge client marshal: %w", err)
	}

	callTimeout := time.Duration(req.TimeLimitMs)*time.Millisecond + c.compileAllowance

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrExecutorUnavailable, ctx.Err())
			}
			log.Printf("INFO: retrying execution call (attempt %d/%d)", attempt+1, c.maxRetries+1)
		}

		result, retryable, err := c.doOnce(ctx, body, callTimeout)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrExecutorUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, body []byte, timeout time.Duration) (*ExecResult, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("judge client request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// The sandbox exceeding its window is a judging outcome, not an
		// outage: report the run as timed out instead of retrying it.
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return &ExecResult{TimedOut: true, RuntimeMs: int(timeout.Milliseconds())}, false, nil
		}
		return nil, true, fmt.Errorf("judge client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("executor returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// Malformed request or similar: retrying cannot help.
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("executor rejected request with status %d", resp.StatusCode)
	}

	var result ExecResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, true, fmt.Errorf("judge client decode: %w", err)
	}
	return &result, false, nil
}
