package session

import (
	"errors"
	"fmt"

	"github.com/shubh-37/idea-processor/internal/models"
)

var (
	ErrBusy           = errors.New("operation already in progress")
	ErrNoAnalysis     = errors.New("no analysis available")
	ErrNoChosenIdea   = errors.New("no idea chosen")
	ErrUnknownIdea    = errors.New("unknown idea")
	ErrNoStagedIdea   = errors.New("no idea staged for reveal")
	ErrNoIdeas        = errors.New("session has no ideas")
	ErrStaleResult    = errors.New("result is stale")
	ErrClosed         = errors.New("controller is closed")
	ErrUnknownCluster = errors.New("unknown cluster")
)

// PhaseError is returned when an operation is not allowed in the current phase
type PhaseError struct {
	Op    string
	Phase models.Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s is not allowed in phase %s", e.Op, e.Phase)
}

// ValidationError rejects admin input before anything is written
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
