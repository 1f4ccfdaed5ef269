package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()

	c, err := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		RetryDelay: 10 * time.Millisecond,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { closeClient(c) })
	return c
}

func successBody(text string) generateContentResponse {
	return generateContentResponse{
		Candidates: []providerCandidate{
			{
				Content:      providerContent{Parts: []providerPart{{Text: text}}},
				FinishReason: "STOP",
			},
		},
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}
}

func TestGenerateTextSuccess(t *testing.T) {
	t.Parallel()

	var gotReq generateContentRequest
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		gotAPIKey = r.Header.Get("x-goog-api-key")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(successBody("generated advice")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	text, err := c.GenerateText(context.Background(), "help me")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}

	if gotAPIKey != "test-key" {
		t.Fatalf("unexpected api key header: %s", gotAPIKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %#v", gotReq)
	}
	if gotReq.Contents[0].Parts[0].Text != "help me" {
		t.Fatalf("prompt not forwarded: %#v", gotReq.Contents[0].Parts)
	}
	if text != "generated advice" {
		t.Fatalf("unexpected reply: %q", text)
	}
}

func TestGenerateTextEmptyPrompt(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("server should not be called for empty prompt")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GenerateText(context.Background(), "   ")
	if err == nil || !strings.Contains(err.Error(), "prompt is empty") {
		t.Fatalf("expected empty-prompt error, got %v", err)
	}
}

func TestGenerateTextRetriesBusyThenSucceeds(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successBody("eventually"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	text, err := c.GenerateText(context.Background(), "challenge")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "eventually" {
		t.Fatalf("unexpected reply: %q", text)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestGenerateTextBusyExhaustsRetries(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GenerateText(context.Background(), "challenge")
	if !errors.Is(err, ErrUpstreamBusy) {
		t.Fatalf("expected ErrUpstreamBusy, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
}

func TestGenerateTextNoRetryOnTerminalStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"unauthorized", http.StatusUnauthorized, ErrAuthFailure},
		{"forbidden", http.StatusForbidden, ErrAuthFailure},
		{"internal error", http.StatusInternalServerError, ErrUpstream},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)

			_, err := c.GenerateText(context.Background(), "challenge")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if got := attempts.Load(); got != 1 {
				t.Fatalf("expected a single attempt, got %d", got)
			}
		})
	}
}

func TestGenerateTextRetryWaitRespectsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		RetryDelay: time.Minute,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer closeClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.GenerateText(ctx, "challenge")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("retry wait ignored context cancellation (%v)", elapsed)
	}
}

func TestGenerateTextNoCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.GenerateText(context.Background(), "challenge")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	if msg := UserMessage(ErrUpstreamBusy); !strings.Contains(msg, "temporarily busy") {
		t.Fatalf("unexpected busy message: %q", msg)
	}
	if msg := UserMessage(ErrRateLimited); !strings.Contains(msg, "API limit") {
		t.Fatalf("unexpected rate-limit message: %q", msg)
	}
	if msg := UserMessage(ErrAuthFailure); !strings.Contains(msg, "contact support") {
		t.Fatalf("unexpected auth message: %q", msg)
	}
	if msg := UserMessage(errors.New("boom")); !strings.Contains(msg, "Something went wrong") {
		t.Fatalf("unexpected generic message: %q", msg)
	}
}

func closeClient(c Client) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
