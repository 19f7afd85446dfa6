package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
)

// Request bodies of the AI proxy. Field names follow the browser client.

type ideasRequest struct {
	Context string        `json:"context"`
	Ideas   []models.Idea `json:"ideas"`
}

type ideaRequest struct {
	Context string              `json:"context"`
	Idea    *models.Idea        `json:"idea"`
	Style   string              `json:"style"`
	Details *models.IdeaDetails `json:"details"`
}

type chatRequest struct {
	History     []models.ChatMessage `json:"history" validate:"required,min=1"`
	CurrentRole string               `json:"currentRole" validate:"required"`
	Context     string               `json:"context"`
	Idea        *models.Idea         `json:"idea"`
	Analysis    *models.IdeaDetails  `json:"analysis"`
}

type followUpRequest struct {
	Context           string       `json:"context"`
	Idea              *models.Idea `json:"idea"`
	ExistingQuestions []string     `json:"existingQuestions"`
}

func (s *Server) bindIdeas(c *fiber.Ctx) (ideasRequest, error) {
	var req ideasRequest
	if err := s.bind(c, &req); err != nil {
		return req, err
	}
	if len(req.Ideas) == 0 {
		return req, badRequest("No ideas provided")
	}
	return req, nil
}

func (s *Server) bindIdea(c *fiber.Ctx) (ideaRequest, error) {
	var req ideaRequest
	if err := s.bind(c, &req); err != nil {
		return req, err
	}
	if req.Idea == nil {
		return req, badRequest("No idea provided")
	}
	return req, nil
}

func (s *Server) analyze(c *fiber.Ctx) error {
	req, err := s.bindIdeas(c)
	if err != nil {
		return err
	}
	result, err := s.deps.AI.Analyze(c.UserContext(), req.Context, req.Ideas)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) generateDetails(c *fiber.Ctx) error {
	req, err := s.bindIdea(c)
	if err != nil {
		return err
	}
	details, err := s.deps.AI.IdeaDetails(c.UserContext(), req.Context, *req.Idea)
	if err != nil {
		return err
	}
	return c.JSON(details)
}

func (s *Server) generateBlog(c *fiber.Ctx) error {
	req, err := s.bindIdea(c)
	if err != nil {
		return err
	}
	post, err := s.deps.AI.BlogPost(c.UserContext(), req.Context, *req.Idea, models.ParseStyle(req.Style))
	if err != nil {
		return err
	}
	return c.JSON(post)
}

func (s *Server) generatePressRelease(c *fiber.Ctx) error {
	req, err := s.bindIdea(c)
	if err != nil {
		return err
	}
	release, err := s.deps.AI.PressRelease(c.UserContext(), req.Context, *req.Idea, models.ParseStyle(req.Style))
	if err != nil {
		return err
	}
	return c.JSON(release)
}

func (s *Server) generateSlides(c *fiber.Ctx) error {
	req, err := s.bindIdea(c)
	if err != nil {
		return err
	}
	if req.Details == nil {
		return badRequest("No details provided")
	}
	outline, err := s.deps.AI.SlideOutline(c.UserContext(), req.Context, *req.Idea, req.Details)
	if err != nil {
		return err
	}
	return c.JSON(outline)
}

func (s *Server) clusterIdeas(c *fiber.Ctx) error {
	req, err := s.bindIdeas(c)
	if err != nil {
		return err
	}
	clusters, err := s.deps.AI.ClusterIdeas(c.UserContext(), req.Context, req.Ideas)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clusters": clusters})
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if req.Idea == nil {
		return badRequest("No idea provided")
	}
	persona, err := models.ParsePersona(req.CurrentRole)
	if err != nil {
		return newHTTPError(fiber.StatusBadRequest, "Validation failed", err.Error())
	}

	reply, err := s.deps.AI.ChatReply(c.UserContext(), agents.ChatRequest{
		Context: req.Context,
		Idea:    *req.Idea,
		Details: req.Analysis,
		Persona: persona,
		History: req.History,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"text":              reply.Content,
		"suggestedFollowUp": reply.SuggestedFollowUp,
	})
}

// generateFollowUpQuestion always answers 200; failures yield the template question
func (s *Server) generateFollowUpQuestion(c *fiber.Ctx) error {
	var req followUpRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	if req.Idea == nil || req.Idea.Content == "" {
		return badRequest("No idea or content provided")
	}
	question := s.deps.AI.FollowUpQuestion(c.UserContext(), req.Context, *req.Idea, req.ExistingQuestions)
	return c.JSON(fiber.Map{"question": question})
}
