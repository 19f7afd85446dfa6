package session

import (
	"context"
	"errors"
	"testing"

	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inDetail drives a controller to DETAIL on the first idea
func inDetail(t *testing.T, st *store.Memory, ai *fakeAI) (*Controller, []string) {
	t.Helper()
	c := newTestController(t, st, ai)
	goLive(t, c)
	ids := addIdeas(t, st, "Ann", "Bo")
	waitIdeas(t, c, 2)
	stopAndAnalyze(t, c)
	require.NoError(t, c.ChooseIdea(ids[0]))
	_, err := c.SelectIdea(context.Background())
	require.NoError(t, err)
	return c, ids
}

func TestDetailSubGenerations(t *testing.T) {
	ctx := context.Background()
	ai := newFakeAI()
	c, _ := inDetail(t, store.NewMemory(), ai)

	state := c.Snapshot()
	assert.Equal(t, StatusNotGenerated, state.BlogTask.Status)
	assert.Equal(t, StatusNotGenerated, state.PressTask.Status)
	assert.Nil(t, state.Details.Blog)

	require.NoError(t, c.GenerateBlog(ctx, models.StyleHumor))
	require.NoError(t, c.GeneratePressRelease(ctx, models.StyleBusiness))
	require.NoError(t, c.GenerateSlides(ctx))

	state = c.Snapshot()
	assert.Equal(t, StatusGenerated, state.BlogTask.Status)
	assert.Equal(t, 100, state.BlogTask.Progress)
	assert.Equal(t, "Blog over Ann", state.Details.Blog.Title)
	assert.Equal(t, "Delft", state.Details.PressRelease.Location)
	require.NotNil(t, state.Details.SlideOutline)
	assert.Len(t, state.Details.SlideOutline.Slides, 1)
	assert.Equal(t, "Goed idee", state.Details.Rationale, "base elaboration is not rerun")
	assert.Equal(t, 1, ai.count(agents.KindIdeaDetails))
}

func TestDetailSubGenerationFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	ai := newFakeAI()
	c, _ := inDetail(t, store.NewMemory(), ai)

	ai.blogErr = errors.New("timeout")
	require.Error(t, c.GenerateBlog(ctx, models.StyleBusiness))
	state := c.Snapshot()
	assert.Equal(t, StatusFailed, state.BlogTask.Status)
	assert.Equal(t, models.PhaseDetail, state.Phase)

	ai.blogErr = nil
	require.NoError(t, c.GenerateBlog(ctx, models.StyleBusiness))
	assert.Equal(t, StatusGenerated, c.Snapshot().BlogTask.Status)
	assert.Equal(t, StatusNotGenerated, c.Snapshot().PressTask.Status)
}

func TestSetTab(t *testing.T) {
	c, _ := inDetail(t, store.NewMemory(), newFakeAI())

	require.NoError(t, c.SetTab(models.TabBacklog))
	assert.Equal(t, models.TabBacklog, c.Snapshot().Tab)

	var verr *ValidationError
	assert.ErrorAs(t, c.SetTab("SPREADSHEET"), &verr)
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	c, _ := inDetail(t, store.NewMemory(), newFakeAI())

	_, err := c.Chat(ctx, models.PersonaInvestor, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = c.Chat(ctx, "ROBOT", "Hallo")
	require.ErrorAs(t, err, &verr)

	reply, err := c.Chat(ctx, models.PersonaInvestor, "Wat is de ROI?")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Professor Investor", reply.RoleLabel)
	assert.Equal(t, "En de kosten?", reply.SuggestedFollowUp)

	history := c.Snapshot().Chat
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "Wat is de ROI?", history[0].Content)
}

func TestBackToAnalysisDiscardsDetails(t *testing.T) {
	ctx := context.Background()
	c, ids := inDetail(t, store.NewMemory(), newFakeAI())
	require.NoError(t, c.GenerateBlog(ctx, models.StyleBusiness))
	_, err := c.Chat(ctx, models.PersonaSales, "Verkoopt dit?")
	require.NoError(t, err)

	require.NoError(t, c.BackToAnalysis())
	state := c.Snapshot()
	assert.Equal(t, models.PhaseAnalysis, state.Phase)
	assert.Nil(t, state.Details)
	assert.Nil(t, state.SelectedIdea)
	assert.Empty(t, state.Chat)
	assert.Equal(t, StatusNotGenerated, state.BlogTask.Status)
	assert.NotNil(t, state.Analysis, "analysis survives")
	assert.Equal(t, ids[0], state.ChosenIdeaID)
}

func TestFollowUpSession(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	ai := newFakeAI()
	c, ids := inDetail(t, st, ai)
	require.NoError(t, st.UpdateSession(ctx, testSession, models.SessionPatch{SelectedManualIdeaID: models.String(ids[1])}))
	require.Eventually(t, func() bool {
		return c.Snapshot().ManualIdeaID == ids[1]
	}, waitFor, pollEvery)

	question, err := c.GenerateFollowUpQuestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hoe maken we Ann groter?", question)
	assert.Equal(t, question, c.Snapshot().FollowUpQuestion)

	require.NoError(t, c.StartFollowUp(ctx, question))
	waitPhase(t, c, models.PhaseLive)

	state := c.Snapshot()
	assert.Equal(t, question, state.Context)
	assert.Empty(t, state.Ideas)
	assert.Nil(t, state.Analysis)
	assert.Nil(t, state.Details)
	assert.Empty(t, state.ManualIdeaID)

	ideas, err := st.ListIdeas(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, ideas)

	s, err := st.GetSession(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, question, s.Context)
	assert.Empty(t, s.SelectedManualIdeaID)
}

func TestHub(t *testing.T) {
	hub := NewHub(store.NewMemory(), newFakeAI())
	defer hub.Close()

	a := hub.Get("a")
	assert.Same(t, a, hub.Get("a"))
	assert.NotSame(t, a, hub.Get("b"))

	_, ok := hub.Lookup("c")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"a", "b"}, hub.SessionIDs())
	assert.Equal(t, "a", a.SessionID())
}
