package api

import (
	"context"
	"sync"

	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
)

// fakeAI answers every generation with canned data
type fakeAI struct {
	mu         sync.Mutex
	analyzeErr error
	chatErr    error
	calls      map[agents.Kind]int
}

func newFakeAI() *fakeAI {
	return &fakeAI{calls: make(map[agents.Kind]int)}
}

func (f *fakeAI) count(kind agents.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeAI) record(kind agents.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
}

func (f *fakeAI) Analyze(ctx context.Context, sessionContext string, ideas []models.Idea) (*models.AIAnalysisResult, error) {
	f.record(agents.KindAnalyze)
	if len(ideas) == 0 {
		return nil, agents.ErrNoIdeas
	}
	f.mu.Lock()
	err := f.analyzeErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	top := ideas
	if len(top) > 3 {
		top = top[:3]
	}
	return &models.AIAnalysisResult{
		Summary:         "Veel energie",
		TopIdeas:        models.CloneIdeas(top),
		Headline:        "Delft bruist",
		InnovationScore: 64,
		Keywords:        []string{"energie"},
	}, nil
}

func (f *fakeAI) ClusterIdeas(ctx context.Context, sessionContext string, ideas []models.Idea) ([]models.Cluster, error) {
	f.record(agents.KindClusterIdeas)
	ids := make([]string, len(ideas))
	for i, idea := range ideas {
		ids[i] = idea.ID
	}
	return []models.Cluster{{ID: "cluster-1", Name: "Alles", Summary: "Alle ideeën samen", OriginalIdeaIDs: ids}}, nil
}

func (f *fakeAI) IdeaDetails(ctx context.Context, sessionContext string, idea models.Idea) (*models.IdeaDetails, error) {
	f.record(agents.KindIdeaDetails)
	return &models.IdeaDetails{
		Rationale: "Goed idee",
		Steps:     []string{"Start"},
		PBIs: []models.PBI{
			{ID: "PBI-001", Title: "Eerste stap", UserStory: "Als gebruiker...", Priority: "Must", StoryPoints: 3},
		},
		BusinessCase: models.BusinessCase{ProblemStatement: "Probleem", ProposedSolution: idea.Content},
	}, nil
}

func (f *fakeAI) BlogPost(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.BlogPost, error) {
	f.record(agents.KindBlogPost)
	return &models.BlogPost{Title: "Blog " + string(style), Content: "Tekst"}, nil
}

func (f *fakeAI) PressRelease(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.PressRelease, error) {
	f.record(agents.KindPressRelease)
	return &models.PressRelease{Title: "Pers", Content: "Tekst", Date: agents.DefaultPressDate, Location: agents.DefaultPressLocation}, nil
}

func (f *fakeAI) SlideOutline(ctx context.Context, sessionContext string, idea models.Idea, details *models.IdeaDetails) (*models.SlideOutline, error) {
	f.record(agents.KindSlideOutline)
	return &models.SlideOutline{Slides: []models.Slide{{Title: "Probleem", Content: []string{details.Rationale}}}}, nil
}

func (f *fakeAI) FollowUpQuestion(ctx context.Context, sessionContext string, idea models.Idea, existing []string) string {
	f.record(agents.KindFollowUpQuestion)
	return agents.FallbackQuestion(idea.Name)
}

func (f *fakeAI) ChatReply(ctx context.Context, req agents.ChatRequest) (*agents.ChatReply, error) {
	f.record(agents.KindChatReply)
	f.mu.Lock()
	err := f.chatErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &agents.ChatReply{Content: req.Persona.Label() + " zegt ja", SuggestedFollowUp: "En nu?"}, nil
}
