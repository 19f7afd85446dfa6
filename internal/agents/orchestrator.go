package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
)

const jsonSystemPrompt = "You are a JSON generator. Always output valid JSON inside a code block or purely raw JSON."

// Settings selects the models and the per-call deadline
type Settings struct {
	PrimaryModel  string
	FallbackModel string
	Timeout       time.Duration
}

// Observer is told about every model attempt
type Observer interface {
	ObserveAICall(kind Kind, model string, elapsed time.Duration, err error)
}

type Orchestrator struct {
	provider Provider
	settings Settings
	observer Observer
}

type Option func(*Orchestrator)

func WithObserver(o Observer) Option {
	return func(orc *Orchestrator) {
		orc.observer = o
	}
}

// NewOrchestrator wraps a provider. A nil provider makes every call fail
// with ErrNotConfigured.
func NewOrchestrator(provider Provider, settings Settings, opts ...Option) *Orchestrator {
	if settings.Timeout <= 0 {
		settings.Timeout = 60 * time.Second
	}
	o := &Orchestrator{
		provider: provider,
		settings: settings,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Configured reports whether a provider and a primary model are set
func (o *Orchestrator) Configured() bool {
	return o != nil && o.provider != nil && o.settings.PrimaryModel != ""
}

func (o *Orchestrator) models() []string {
	out := []string{o.settings.PrimaryModel}
	if fb := o.settings.FallbackModel; fb != "" && fb != o.settings.PrimaryModel {
		out = append(out, fb)
	}
	return out
}

// call runs req on the primary model, then once on the fallback model.
// Provider, parse and validation failures all trigger the fallback.
func (o *Orchestrator) call(ctx context.Context, kind Kind, req Request, parse func(raw string) error) error {
	if !o.Configured() {
		return ErrNotConfigured
	}

	var lastErr error
	var lastModel string
	for i, model := range o.models() {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := o.attempt(ctx, model, req, parse)
		if o.observer != nil {
			o.observer.ObserveAICall(kind, model, time.Since(start), err)
		}
		if err == nil {
			if i > 0 {
				log.Printf("✅ %s succeeded on fallback model %s", kind, model)
			}
			return nil
		}

		log.Printf("⚠️ %s failed on %s (%s): %v", kind, model, classify(err), err)
		lastErr, lastModel = err, model
	}

	return &AIError{Kind: kind, Model: lastModel, Err: lastErr}
}

func (o *Orchestrator) attempt(ctx context.Context, model string, req Request, parse func(raw string) error) error {
	callCtx, cancel := context.WithTimeout(ctx, o.settings.Timeout)
	defer cancel()

	raw, err := o.provider.Complete(callCtx, model, req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyResponse
	}
	return parse(raw)
}

func jsonRequest(prompt string, temperature float64, maxTokens int) Request {
	return Request{
		System:      jsonSystemPrompt,
		Messages:    []Message{{Role: models.RoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// Analyze summarizes the session and picks up to three top ideas
func (o *Orchestrator) Analyze(ctx context.Context, sessionContext string, ideas []models.Idea) (*models.AIAnalysisResult, error) {
	if len(ideas) == 0 {
		return nil, ErrNoIdeas
	}

	var result *models.AIAnalysisResult
	req := jsonRequest(analyzePrompt(sessionContext, ideas), 0.2, 0)
	err := o.call(ctx, KindAnalyze, req, func(raw string) error {
		var resp analyzeResponse
		if err := decodeJSON(raw, &resp); err != nil {
			return err
		}
		r, err := buildAnalysis(resp, ideas)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IdeaDetails produces the deep dive for one idea
func (o *Orchestrator) IdeaDetails(ctx context.Context, sessionContext string, idea models.Idea) (*models.IdeaDetails, error) {
	if idea.ID == "" && strings.TrimSpace(idea.Content) == "" {
		return nil, ErrNoIdea
	}

	var details models.IdeaDetails
	req := jsonRequest(detailsPrompt(sessionContext, idea), 0.2, 8192)
	err := o.call(ctx, KindIdeaDetails, req, func(raw string) error {
		var d models.IdeaDetails
		if err := decodeJSON(raw, &d); err != nil {
			return err
		}
		if err := validateDetails(&d); err != nil {
			return err
		}
		// sub-generations are never taken from this call
		d.Blog, d.PressRelease, d.SlideOutline = nil, nil, nil
		details = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// ChatRequest is one persona turn on the chosen idea
type ChatRequest struct {
	Context string
	Idea    models.Idea
	Details *models.IdeaDetails
	Persona models.Persona
	History []models.ChatMessage
}

// ChatReply is the persona's answer with its suggested next question
type ChatReply struct {
	Content           string
	SuggestedFollowUp string
}

func (o *Orchestrator) ChatReply(ctx context.Context, cr ChatRequest) (*ChatReply, error) {
	if personaInstruction(cr.Persona) == "" {
		return nil, fmt.Errorf("unknown persona %q", cr.Persona)
	}
	if len(cr.History) == 0 {
		return nil, fmt.Errorf("chat history is empty")
	}

	messages := make([]Message, 0, len(cr.History))
	for _, m := range cr.History {
		role := models.RoleUser
		if m.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: m.Content})
	}

	req := Request{
		System:      chatSystemPrompt(cr),
		Messages:    messages,
		Temperature: 0.7,
	}

	var reply ChatReply
	err := o.call(ctx, KindChatReply, req, func(raw string) error {
		reply.Content, reply.SuggestedFollowUp = ParseFollowUp(raw)
		if reply.Content == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
