package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
)

const (
	DefaultPressDate     = "Zomer 2026"
	DefaultPressLocation = "Delft"
)

// FallbackQuestion is used whenever the follow-up question cannot be generated
func FallbackQuestion(ideaName string) string {
	return fmt.Sprintf("Hoe kunnen we het idee \"%s\" verder uitbouwen voor maximale impact?", ideaName)
}

func (o *Orchestrator) BlogPost(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.BlogPost, error) {
	var post models.BlogPost
	req := jsonRequest(blogPrompt(sessionContext, idea, style), 0.7, 0)
	err := o.call(ctx, KindBlogPost, req, func(raw string) error {
		var p models.BlogPost
		if err := decodeJSON(raw, &p); err != nil {
			return err
		}
		if err := validateText(KindBlogPost, p.Title, p.Content); err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PressRelease writes a press release; date and location default when the
// model leaves them out.
func (o *Orchestrator) PressRelease(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.PressRelease, error) {
	var release models.PressRelease
	req := jsonRequest(pressPrompt(sessionContext, idea, style), 0.7, 0)
	err := o.call(ctx, KindPressRelease, req, func(raw string) error {
		var p models.PressRelease
		if err := decodeJSON(raw, &p); err != nil {
			return err
		}
		if err := validateText(KindPressRelease, p.Title, p.Content); err != nil {
			return err
		}
		if strings.TrimSpace(p.Date) == "" {
			p.Date = DefaultPressDate
		}
		if strings.TrimSpace(p.Location) == "" {
			p.Location = DefaultPressLocation
		}
		release = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (o *Orchestrator) SlideOutline(ctx context.Context, sessionContext string, idea models.Idea, details *models.IdeaDetails) (*models.SlideOutline, error) {
	var outline models.SlideOutline
	req := jsonRequest(slidesPrompt(sessionContext, idea, details), 0.5, 0)
	err := o.call(ctx, KindSlideOutline, req, func(raw string) error {
		var so models.SlideOutline
		if err := decodeJSON(raw, &so); err != nil {
			return err
		}
		if err := validateSlides(&so); err != nil {
			return err
		}
		outline = so
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &outline, nil
}

// FollowUpQuestion never fails: any error yields FallbackQuestion
func (o *Orchestrator) FollowUpQuestion(ctx context.Context, sessionContext string, idea models.Idea, existing []string) string {
	req := Request{
		System:      "Je bent een creatieve tekstschrijver.",
		Messages:    []Message{{Role: models.RoleUser, Content: followUpPrompt(sessionContext, idea, existing)}},
		Temperature: 0.7,
	}

	var question string
	err := o.call(ctx, KindFollowUpQuestion, req, func(raw string) error {
		q := strings.TrimSpace(raw)
		q = strings.TrimSpace(strings.Trim(q, `"`))
		if q == "" {
			return ErrEmptyResponse
		}
		question = q
		return nil
	})
	if err != nil {
		log.Printf("⚠️ Follow-up question fell back to template: %v", err)
		return FallbackQuestion(idea.Name)
	}
	return question
}
