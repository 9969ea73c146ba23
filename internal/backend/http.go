// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package backend provides text-generation backends for benchmark runs: an
// HTTP client for servers that expose an SGLang-style /generate endpoint and
// a simulated backend with configurable latency.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/internal/timerp"
	"go.uber.org/zap"
)

const (
	defaultTimeout           = 10 * time.Minute
	defaultRetryBackoff      = 500 * time.Millisecond
	maxHTTPErrorBodyReadSize = 64 * 1024
)

type HTTPConfig struct {
	// URL is the server's base address; requests go to URL/generate.
	URL          string
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
	Logger       *zap.Logger
	Client       *http.Client
}

// HTTP sends each call to a text-generation server.
type HTTP struct {
	endpoint     string
	retries      int
	retryBackoff time.Duration
	logger       *zap.Logger
	client       *http.Client
}

func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("empty backend URL")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", base, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{
		endpoint:     base + "/generate",
		retries:      max(cfg.Retries, 0),
		retryBackoff: retryBackoff,
		logger:       logger,
		client:       client,
	}, nil
}

type generateRequest struct {
	Text           string         `json:"text"`
	SamplingParams samplingParams `json:"sampling_params"`
}

type samplingParams struct {
	MaxNewTokens int      `json:"max_new_tokens"`
	Stop         []string `json:"stop,omitempty"`
	IgnoreEOS    bool     `json:"ignore_eos,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Execute sends the call, retrying rate-limited and server-side failures up
// to the configured number of times.
func (h *HTTP) Execute(ctx context.Context, req dagbench.Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= h.retries+1; attempt++ {
		text, err := h.executeOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryable(err) || attempt == h.retries+1 {
			break
		}
		wait := time.Duration(attempt) * h.retryBackoff
		h.logger.Debug("retrying call",
			zap.String("trace_id", req.Labels.TraceID()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := timerp.Sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (h *HTTP) executeOnce(ctx context.Context, req dagbench.Request) (string, error) {
	body, err := json.Marshal(generateRequest{
		Text: req.Content,
		SamplingParams: samplingParams{
			MaxNewTokens: req.MaxOutputSize,
			Stop:         req.Stop,
			IgnoreEOS:    req.IgnoreEOS,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxHTTPErrorBodyReadSize))
		if readErr != nil {
			return "", fmt.Errorf("generate status=%d and read body failed: %w", resp.StatusCode, readErr)
		}
		return "", &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return out.Text, nil
}

// HTTPError reports a non-2xx response from the server.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("generate status=%d", e.StatusCode)
	}
	return fmt.Sprintf("generate status=%d body=%s", e.StatusCode, e.Body)
}

func isRetryable(err error) bool {
	var statusErr *HTTPError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
