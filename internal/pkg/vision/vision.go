// Package vision talks to the generative vision model used for plant analysis.
package vision

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by clients that have no model credentials.
var ErrNotConfigured = errors.New("vision model is not configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("vision model returned no text")

// Request is one image plus the instructions for the model.
type Request struct {
	Prompt   string
	Image    []byte
	MimeType string
}

// Client sends an image and a prompt to a vision model and returns its raw text answer.
type Client interface {
	Analyze(ctx context.Context, req Request) (string, error)
}

// DisabledClient is used when no API key is configured. Every call fails.
type DisabledClient struct{}

// Analyze implements Client.
func (DisabledClient) Analyze(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
