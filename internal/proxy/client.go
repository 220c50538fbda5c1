// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package proxy is the HTTP client for the multi-provider chat endpoint.
//
// The endpoint accepts one message plus candidate providers and conversation
// history, dispatches to a provider on its side, and reports which provider
// actually answered. The client adds a request deadline, a local rate
// limiter, and retry with exponential backoff for transient failures.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/provider"
	"github.com/bogdan-ai/bogdan-tui/internal/settings"
)

// ============================================================================
// ERRORS
// ============================================================================

var (
	// ErrAuthFailed means the endpoint rejected our credentials (HTTP 401).
	ErrAuthFailed = errors.New("authentication failed")
	// ErrRateLimited means the endpoint throttled us (HTTP 429).
	ErrRateLimited = errors.New("rate limited")
	// ErrServerError means the endpoint failed internally (HTTP 5xx).
	ErrServerError = errors.New("server error")
	// ErrTimeout means the request deadline expired.
	ErrTimeout = errors.New("request timed out")
	// ErrEmptyResponse means the endpoint returned success with no content.
	ErrEmptyResponse = errors.New("empty response")
)

// ErrorDetail is one per-provider entry from the endpoint's failure report.
type ErrorDetail struct {
	Model string `json:"model"`
	Error string `json:"error"`
}

// Error carries the HTTP status and server-supplied details for a failed call.
type Error struct {
	Status  int
	Message string
	Details []ErrorDetail
	Err     error
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("proxy: %s (HTTP %d)", e.Message, e.Status)
	}
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Model + ": " + d.Error
	}
	return fmt.Sprintf("proxy: %s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return e.Err }

// ============================================================================
// WIRE TYPES
// ============================================================================

// Turn is one history entry on the wire.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelConfig mirrors one provider's runtime configuration on the wire. The
// endpoint needs the credentials to dispatch and the enabled flags to know
// which fallbacks are allowed.
type ModelConfig struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// ChatRequest is the dispatch payload.
type ChatRequest struct {
	Message        string                 `json:"message"`
	Models         map[string]ModelConfig `json:"models"`
	History        []Turn                 `json:"history"`
	Settings       settings.Settings      `json:"settings"`
	PreferredModel string                 `json:"preferredModel,omitempty"`
}

// ChatResponse is the success payload. Model names the provider that
// actually answered; FallbackUsed is set when it differs from the request's
// preference.
type ChatResponse struct {
	Response     string `json:"response"`
	Model        string `json:"model"`
	FallbackUsed bool   `json:"fallback_used,omitempty"`
}

// errorEnvelope is the failure payload.
type errorEnvelope struct {
	Error   string        `json:"error"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewChatRequest builds the dispatch payload from domain types. History is
// already windowed by the caller; attachments' extracted text is already
// folded into message.
func NewChatRequest(message string, cfg provider.ConfigMap, history []model.Message, st settings.Settings, preferred provider.Provider) ChatRequest {
	models := make(map[string]ModelConfig, len(cfg.Providers))
	for p, c := range cfg.Providers {
		models[p.String()] = ModelConfig{Key: c.Key, Enabled: c.Enabled}
	}
	turns := make([]Turn, len(history))
	for i, m := range history {
		turns[i] = Turn{Role: string(m.Role), Content: m.Content}
	}
	req := ChatRequest{
		Message:  message,
		Models:   models,
		History:  turns,
		Settings: st,
	}
	if preferred != "" {
		req.PreferredModel = preferred.String()
	}
	return req
}

// ============================================================================
// CLIENT
// ============================================================================

const (
	// DefaultTimeout is the per-dispatch deadline.
	DefaultTimeout = 25 * time.Second
	// maxRetries is the number of attempts for retryable failures.
	maxRetries = 3
)

// sharedTransport is reused across clients so connections pool.
var sharedTransport = &http.Transport{
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 5,
	IdleConnTimeout:     90 * time.Second,
}

// Client talks to one chat proxy endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the endpoint. A non-positive timeout uses
// DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: &http.Client{Transport: sharedTransport},
		// Burst of 3, sustained 1 req/s. The endpoint throttles harder;
		// this just keeps us from tripping it on rapid-fire regens.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Send dispatches one chat request. Transient failures (429, 5xx, network)
// are retried with exponential backoff inside the overall deadline.
func (c *Client) Send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, mapContextErr(err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt)
			log.Printf("PROXY: attempt %d failed (%v), retrying in %s", attempt, lastErr, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, mapContextErr(ctx.Err())
			}
		}

		resp, err := c.doRequest(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*ChatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := mapContextErr(err); ctxErr != err {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	var parsed ChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Response == "" {
		return nil, ErrEmptyResponse
	}
	return &parsed, nil
}

// handleErrorResponse maps an HTTP failure to a typed error, folding in the
// server's error envelope when it parses.
func (c *Client) handleErrorResponse(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	if env.Error == "" {
		env.Error = http.StatusText(status)
	}

	perr := &Error{Status: status, Message: env.Error, Details: env.Details}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		perr.Err = ErrAuthFailed
	case status == http.StatusTooManyRequests:
		perr.Err = ErrRateLimited
	case status >= 500:
		perr.Err = ErrServerError
	default:
		perr.Err = fmt.Errorf("HTTP %d", status)
	}
	return perr
}

// isRetryable reports whether another attempt could help.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}
	var perr *Error
	if errors.As(err, &perr) {
		return false
	}
	// Network-level failures without a status are worth one more try,
	// unless the deadline already expired.
	return !errors.Is(err, ErrTimeout) && !errors.Is(err, context.Canceled)
}

// calculateBackoff returns the delay before the given retry attempt:
// 500ms doubling per attempt, capped at 10s.
func calculateBackoff(attempt int) time.Duration {
	backoff := 500 * time.Millisecond << uint(attempt-1)
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}
	return backoff
}

func mapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
