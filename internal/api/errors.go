package api

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/export"
	"github.com/shubh-37/idea-processor/internal/gate"
	"github.com/shubh-37/idea-processor/internal/linear"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/shubh-37/idea-processor/internal/submission"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HTTPError carries a status and body to the error handler
type HTTPError struct {
	Status  int
	Err     string
	Message string
	// RetryAfter in seconds, sent as a header when positive
	RetryAfter int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Err, e.Message)
}

func newHTTPError(status int, errText, message string) *HTTPError {
	return &HTTPError{Status: status, Err: errText, Message: message}
}

func badRequest(message string) *HTTPError {
	return newHTTPError(fiber.StatusBadRequest, message, "")
}

// toHTTPError maps domain errors onto statuses. Unknown errors become 500
// and keep their text out of the response unless debug is set.
func toHTTPError(err error, debug bool) *HTTPError {
	var httpErr *HTTPError
	var fiberErr *fiber.Error
	var phaseErr *session.PhaseError
	var sessionInvalid *session.ValidationError
	var submissionInvalid *submission.ValidationError
	var cooldown *submission.CooldownError
	var aiErr *agents.AIError

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &fiberErr):
		return newHTTPError(fiberErr.Code, fiberErr.Message, "")

	case errors.Is(err, agents.ErrNotConfigured):
		return newHTTPError(fiber.StatusInternalServerError, "Server Error: API Key not configured", "")
	case errors.Is(err, agents.ErrNoIdeas), errors.Is(err, session.ErrNoIdeas):
		return badRequest("No ideas provided")
	case errors.Is(err, agents.ErrNoIdea):
		return badRequest("No idea provided")
	case errors.As(err, &aiErr):
		return newHTTPError(fiber.StatusBadGateway, "AI generation failed", aiErr.Error())

	case errors.As(err, &phaseErr):
		return newHTTPError(fiber.StatusConflict, "Operation not allowed", phaseErr.Error())
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrStaleResult):
		return newHTTPError(fiber.StatusConflict, "Operation not allowed", err.Error())
	case errors.Is(err, session.ErrNoAnalysis), errors.Is(err, session.ErrNoChosenIdea), errors.Is(err, session.ErrNoStagedIdea):
		return newHTTPError(fiber.StatusConflict, "Operation not allowed", err.Error())
	case errors.Is(err, session.ErrUnknownIdea), errors.Is(err, session.ErrUnknownCluster):
		return newHTTPError(fiber.StatusNotFound, "Not found", err.Error())
	case errors.As(err, &sessionInvalid):
		return newHTTPError(fiber.StatusBadRequest, "Validation failed", sessionInvalid.Error())
	case errors.Is(err, session.ErrClosed):
		return newHTTPError(fiber.StatusServiceUnavailable, "Service shutting down", "")

	case errors.As(err, &submissionInvalid):
		return newHTTPError(fiber.StatusBadRequest, "Validation failed", submissionInvalid.Error())
	case errors.As(err, &cooldown):
		e := newHTTPError(fiber.StatusTooManyRequests, "Too many submissions", cooldown.Error())
		e.RetryAfter = cooldown.Seconds()
		return e
	case errors.Is(err, submission.ErrSessionClosed):
		return newHTTPError(fiber.StatusForbidden, "Session closed", "De sessie is gesloten.")

	case errors.Is(err, gate.ErrCodeTooShort):
		return newHTTPError(fiber.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, gate.ErrInvalidToken):
		return newHTTPError(fiber.StatusUnauthorized, "Unauthorized", "")

	case errors.Is(err, linear.ErrNotConfigured):
		return newHTTPError(fiber.StatusNotImplemented, "Linear export not configured", "")
	case errors.Is(err, export.ErrNoDetails):
		return newHTTPError(fiber.StatusConflict, "Nothing to export", err.Error())
	case errors.Is(err, store.ErrNotFound):
		return newHTTPError(fiber.StatusNotFound, "Not found", "")
	case errors.Is(err, store.ErrCodeTaken):
		return newHTTPError(fiber.StatusConflict, "Access code already in use", "")
	}

	e := newHTTPError(fiber.StatusInternalServerError, "Internal Server Error", "Something went wrong on our end.")
	if debug {
		e.Message = err.Error()
	}
	return e
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	httpErr := toHTTPError(err, s.debug)
	if httpErr.Status >= fiber.StatusInternalServerError {
		log.Printf("[SERVER ERROR] %s %s: %v", c.Method(), c.Path(), err)
	}
	retryAfterHeader(c, httpErr.RetryAfter)
	return c.Status(httpErr.Status).JSON(ErrorBody{Error: httpErr.Err, Message: httpErr.Message})
}
