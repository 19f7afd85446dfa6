package agents

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("AI provider is not configured")
	ErrEmptyResponse = errors.New("empty response from model")
	ErrNoJSON        = errors.New("no JSON payload in model response")
	ErrMalformed     = errors.New("malformed model response")
	ErrInvalidShape  = errors.New("model response failed validation")
	ErrNoIdeas       = errors.New("no ideas provided")
	ErrNoIdea        = errors.New("no idea provided")
)

// AIError is returned once the primary and fallback models both failed
type AIError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *AIError) Error() string {
	return fmt.Sprintf("ai %s failed on %s: %v", e.Kind, e.Model, e.Err)
}

func (e *AIError) Unwrap() error {
	return e.Err
}
