package api

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/shubh-37/idea-processor/internal/gate"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	token, result, err := s.deps.Admin.Login(c.UserContext(), "admin:"+c.IP(), req.Email, req.Password)
	switch {
	case result.Outcome == gate.LockedOut:
		e := newHTTPError(fiber.StatusTooManyRequests, "Too many login attempts", "Probeer het later opnieuw.")
		e.RetryAfter = result.RemainingSeconds()
		return e
	case errors.Is(err, gate.ErrInvalidCredentials):
		e := newHTTPError(fiber.StatusUnauthorized, "Invalid credentials", "Onjuist e-mailadres of wachtwoord.")
		e.RetryAfter = result.RemainingSeconds()
		return e
	case err != nil:
		return err
	}

	return c.JSON(fiber.Map{
		"token":     token,
		"tokenType": "Bearer",
	})
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return newHTTPError(fiber.StatusUnauthorized, "Unauthorized", "Authorization header is required")
	}
	return s.verifyAdmin(c, token)
}

// requireAdminQuery also accepts ?token= since browsers cannot set headers on websockets
func (s *Server) requireAdminQuery(c *fiber.Ctx) error {
	if token := c.Query("token"); token != "" {
		return s.verifyAdmin(c, token)
	}
	return s.requireAdmin(c)
}

func (s *Server) verifyAdmin(c *fiber.Ctx, token string) error {
	subject, err := s.deps.Admin.Verify(strings.TrimSpace(token))
	if err != nil {
		return err
	}
	c.Locals("admin", subject)
	return c.Next()
}

func (s *Server) upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

type sessionSummary struct {
	SessionID string       `json:"sessionId"`
	Phase     models.Phase `json:"phase"`
	Ideas     int          `json:"ideas"`
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	ids := s.deps.Hub.SessionIDs()
	sort.Strings(ids)
	out := make([]sessionSummary, 0, len(ids))
	for _, id := range ids {
		ctl, ok := s.deps.Hub.Lookup(id)
		if !ok {
			continue
		}
		st := ctl.Snapshot()
		out = append(out, sessionSummary{SessionID: id, Phase: st.Phase, Ideas: len(st.Ideas)})
	}
	return c.JSON(out)
}

func (s *Server) state(c *fiber.Ctx) error {
	ctl, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(ctl.Snapshot())
}

// lookup returns the controller of a session the hub already runs. It never
// creates one, so reads of unknown ids are 404s.
func (s *Server) lookup(c *fiber.Ctx) (*session.Controller, error) {
	ctl, ok := s.deps.Hub.Lookup(c.Params("id"))
	if !ok {
		return nil, store.ErrNotFound
	}
	return ctl, nil
}

func (s *Server) knownSession(c *fiber.Ctx) error {
	if _, err := s.lookup(c); err != nil {
		return err
	}
	return c.Next()
}

type codeRequest struct {
	Code string `json:"code"`
}

// assignCode sets the given access code, or generates one when none is sent
func (s *Server) assignCode(c *fiber.Ctx) error {
	var req codeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	id := c.Params("id")

	var code string
	var err error
	if strings.TrimSpace(req.Code) == "" {
		code, err = s.deps.Codes.Generate(c.UserContext(), id)
	} else {
		code, err = s.deps.Codes.Assign(c.UserContext(), id, req.Code)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"code": code})
}

// controlFunc runs one controller operation. A non-nil result is returned
// next to the resulting state.
type controlFunc func(c *fiber.Ctx, ctl *session.Controller) (any, error)

func (s *Server) control(fn controlFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctl := s.deps.Hub.Get(c.Params("id"))
		result, err := fn(c, ctl)
		if err != nil {
			return err
		}
		body := fiber.Map{"state": ctl.Snapshot()}
		if result != nil {
			body["result"] = result
		}
		return c.JSON(body)
	}
}

type textRequest struct {
	Context  string `json:"context"`
	Question string `json:"question"`
	Text     string `json:"text"`
	Persona  string `json:"persona"`
	Style    string `json:"style"`
	Tab      string `json:"tab"`
	IdeaID   string `json:"ideaId"`
}

func (s *Server) bindText(c *fiber.Ctx) (textRequest, error) {
	var req textRequest
	err := s.bind(c, &req)
	return req, err
}

func (s *Server) setupSession(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.Setup(c.UserContext())
}

func (s *Server) setContext(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	return nil, ctl.SetContext(req.Context)
}

func (s *Server) saveDefaultContext(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	ctl.SaveDefaultContext(c.UserContext(), req.Context)
	return nil, nil
}

// startSession optionally takes the final context in the same call
func (s *Server) startSession(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	if req.Context != "" {
		if err := ctl.SetContext(req.Context); err != nil {
			return nil, err
		}
	}
	return nil, ctl.StartSession(c.UserContext())
}

func (s *Server) stopSession(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.StopSession(c.UserContext())
}

func (s *Server) cancelSession(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.CancelSession(c.UserContext())
}

func (s *Server) resetSession(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	ctl.Reset(c.UserContext())
	return nil, nil
}

func (s *Server) retryAnalysis(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.RetryAnalysis(c.UserContext())
}

func (s *Server) chooseIdea(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	if req.IdeaID == "" {
		return nil, badRequest("ideaId is required")
	}
	return nil, ctl.ChooseIdea(req.IdeaID)
}

func (s *Server) startReveal(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	staged, err := ctl.StartReveal(req.IdeaID)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"stagedId": staged}, nil
}

func (s *Server) confirmReveal(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	id, err := ctl.ConfirmReveal()
	if err != nil {
		return nil, err
	}
	return fiber.Map{"ideaId": id}, nil
}

func (s *Server) selectManual(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	if req.IdeaID == "" {
		return nil, badRequest("ideaId is required")
	}
	return nil, ctl.SelectIdeaByID(c.UserContext(), req.IdeaID)
}

func (s *Server) clusterSession(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	clusters, err := ctl.ClusterIdeas(c.UserContext())
	if err != nil {
		return nil, err
	}
	return fiber.Map{"clusters": clusters}, nil
}

func (s *Server) selectCluster(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.SelectCluster(c.UserContext(), c.Params("clusterId"))
}

func (s *Server) selectIdea(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	details, err := ctl.SelectIdea(c.UserContext())
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *Server) setTab(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	return nil, ctl.SetTab(models.DetailTab(strings.ToUpper(req.Tab)))
}

func (s *Server) sessionBlog(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	return nil, ctl.GenerateBlog(c.UserContext(), models.ParseStyle(req.Style))
}

func (s *Server) sessionPressRelease(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	return nil, ctl.GeneratePressRelease(c.UserContext(), models.ParseStyle(req.Style))
}

func (s *Server) sessionSlides(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.GenerateSlides(c.UserContext())
}

func (s *Server) sessionChat(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	persona, err := models.ParsePersona(req.Persona)
	if err != nil {
		return nil, newHTTPError(fiber.StatusBadRequest, "Validation failed", err.Error())
	}
	msg, err := ctl.Chat(c.UserContext(), persona, req.Text)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Server) sessionFollowUpQuestion(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	q, err := ctl.GenerateFollowUpQuestion(c.UserContext())
	if err != nil {
		return nil, err
	}
	return fiber.Map{"question": q}, nil
}

func (s *Server) startFollowUp(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	req, err := s.bindText(c)
	if err != nil {
		return nil, err
	}
	return nil, ctl.StartFollowUp(c.UserContext(), req.Question)
}

func (s *Server) backToAnalysis(c *fiber.Ctx, ctl *session.Controller) (any, error) {
	return nil, ctl.BackToAnalysis()
}

func retryAfterHeader(c *fiber.Ctx, seconds int) {
	if seconds > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
	}
}
