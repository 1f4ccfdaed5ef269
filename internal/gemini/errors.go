package gemini

import (
	"errors"
	"net/http"
)

// Dispatcher error taxonomy. Handlers classify with errors.Is and map
// each kind to a status code and a user-facing message.
var (
	// ErrUpstreamBusy: upstream answered 503 on every attempt.
	ErrUpstreamBusy = errors.New("upstream temporarily unavailable")

	// ErrRateLimited: upstream answered 429. Never retried.
	ErrRateLimited = errors.New("upstream rate limit reached")

	// ErrAuthFailure: upstream answered 401 or 403. Never retried;
	// indicates a misconfigured API key and should alert operators.
	ErrAuthFailure = errors.New("upstream authentication failed")

	// ErrUpstream: any other upstream or transport failure.
	ErrUpstream = errors.New("upstream request failed")
)

// classifyStatus maps an upstream HTTP status to the taxonomy.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusServiceUnavailable:
		return ErrUpstreamBusy
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuthFailure
	default:
		return ErrUpstream
	}
}

// UserMessage converts a dispatcher error into the message shown to users.
// Internal detail never leaks through here.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamBusy):
		return "The AI service is temporarily busy. Please try again in a moment."
	case errors.Is(err, ErrRateLimited):
		return "We've reached our API limit. Please try again later."
	case errors.Is(err, ErrAuthFailure):
		return "There's an issue with the API authentication. Please contact support."
	default:
		return "Something went wrong. Please try again later."
	}
}
