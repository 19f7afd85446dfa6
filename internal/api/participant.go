package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shubh-37/idea-processor/internal/gate"
	"github.com/shubh-37/idea-processor/internal/submission"
)

type accessRequest struct {
	Code      string `json:"code" validate:"required"`
	SessionID string `json:"sessionId"`
}

type accessResponse struct {
	Outcome           gate.Outcome `json:"outcome"`
	SessionID         string       `json:"sessionId,omitempty"`
	RetryAfterSeconds int          `json:"retryAfterSeconds,omitempty"`
}

var outcomeStatus = map[gate.Outcome]int{
	gate.Admitted:      fiber.StatusOK,
	gate.SessionClosed: fiber.StatusForbidden,
	gate.Rejected:      fiber.StatusUnauthorized,
	gate.LockedOut:     fiber.StatusTooManyRequests,
}

// access checks a participant's session code. Attempts are throttled per IP.
func (s *Server) access(c *fiber.Ctx) error {
	var req accessRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	result, err := s.deps.Gate.CheckCode(c.UserContext(), "participant:"+c.IP(), req.Code, req.SessionID)
	if err != nil {
		return err
	}

	retryAfterHeader(c, result.RemainingSeconds())
	return c.Status(outcomeStatus[result.Outcome]).JSON(accessResponse{
		Outcome:           result.Outcome,
		SessionID:         result.SessionID,
		RetryAfterSeconds: result.RemainingSeconds(),
	})
}

type ideaSubmission struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	DeviceID  string `json:"deviceId"`
}

// submitIdea enforces the per-device cooldown server side. Without a device
// id the caller's IP is used.
func (s *Server) submitIdea(c *fiber.Ctx) error {
	var req ideaSubmission
	if err := s.bind(c, &req); err != nil {
		return err
	}

	device := req.DeviceID
	if device == "" {
		device = c.Get("X-Device-ID")
	}
	if device == "" {
		device = "ip:" + c.IP()
	}

	id, err := s.deps.Submissions.Submit(c.UserContext(), submission.Request{
		SessionID: c.Params("id"),
		DeviceID:  device,
		Name:      req.Name,
		Content:   req.Content,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// sessionStatus is what the participant form polls: open or closed, and the question
func (s *Server) sessionStatus(c *fiber.Ctx) error {
	session, err := s.deps.Store.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId": session.ID,
		"isActive":  session.IsActive,
		"context":   session.Context,
	})
}
