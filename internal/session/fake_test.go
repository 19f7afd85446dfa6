package session

import (
	"context"
	"errors"
	"sync"

	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
)

// fakeAI counts calls; hooks override the canned answers
type fakeAI struct {
	mu     sync.Mutex
	counts map[agents.Kind]int

	analyze  func(call int, ideas []models.Idea) (*models.AIAnalysisResult, error)
	details  func(ctx context.Context, idea models.Idea) (*models.IdeaDetails, error)
	clusters []models.Cluster
	blogErr  error
}

func newFakeAI() *fakeAI {
	return &fakeAI{counts: make(map[agents.Kind]int)}
}

func (f *fakeAI) count(kind agents.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[kind]
}

func (f *fakeAI) bump(kind agents.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[kind]++
	return f.counts[kind]
}

func (f *fakeAI) Analyze(ctx context.Context, sessionContext string, ideas []models.Idea) (*models.AIAnalysisResult, error) {
	call := f.bump(agents.KindAnalyze)
	if f.analyze != nil {
		return f.analyze(call, ideas)
	}
	return &models.AIAnalysisResult{
		Summary:         "Veel energie-ideeën",
		TopIdeas:        models.CloneIdeas(ideas[:min(3, len(ideas))]),
		Headline:        "Groen Delft",
		InnovationScore: 42,
		Keywords:        []string{"energie"},
	}, nil
}

func (f *fakeAI) ClusterIdeas(ctx context.Context, sessionContext string, ideas []models.Idea) ([]models.Cluster, error) {
	f.bump(agents.KindClusterIdeas)
	if f.clusters == nil {
		return nil, errors.New("no clusters configured")
	}
	return f.clusters, nil
}

func (f *fakeAI) IdeaDetails(ctx context.Context, sessionContext string, idea models.Idea) (*models.IdeaDetails, error) {
	f.bump(agents.KindIdeaDetails)
	if f.details != nil {
		return f.details(ctx, idea)
	}
	return sampleDetails(), nil
}

func (f *fakeAI) BlogPost(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.BlogPost, error) {
	f.bump(agents.KindBlogPost)
	if f.blogErr != nil {
		return nil, f.blogErr
	}
	return &models.BlogPost{Title: "Blog over " + idea.Name, Content: string(style)}, nil
}

func (f *fakeAI) PressRelease(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.PressRelease, error) {
	f.bump(agents.KindPressRelease)
	return &models.PressRelease{Title: "Persbericht", Content: "...", Date: "Zomer 2026", Location: "Delft"}, nil
}

func (f *fakeAI) SlideOutline(ctx context.Context, sessionContext string, idea models.Idea, details *models.IdeaDetails) (*models.SlideOutline, error) {
	f.bump(agents.KindSlideOutline)
	return &models.SlideOutline{Slides: []models.Slide{{Title: "Probleem", Content: []string{"a"}}}}, nil
}

func (f *fakeAI) FollowUpQuestion(ctx context.Context, sessionContext string, idea models.Idea, existing []string) string {
	f.bump(agents.KindFollowUpQuestion)
	return "Hoe maken we " + idea.Name + " groter?"
}

func (f *fakeAI) ChatReply(ctx context.Context, req agents.ChatRequest) (*agents.ChatReply, error) {
	f.bump(agents.KindChatReply)
	return &agents.ChatReply{Content: "Antwoord van " + req.Persona.Label(), SuggestedFollowUp: "En de kosten?"}, nil
}

func sampleDetails() *models.IdeaDetails {
	return &models.IdeaDetails{
		Rationale: "Goed idee",
		Questions: []string{"Wie betaalt?"},
		Steps:     []string{"Pilot"},
		PBIs:      []models.PBI{{ID: "PBI-001", Title: "Pilot", StoryPoints: 3}},
		BusinessCase: models.BusinessCase{
			ProblemStatement: "Hoge energiekosten",
		},
	}
}
