package console

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu    sync.Mutex
	state session.State
	subs  []func(session.State)
	calls []string
	err   error
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) emit(st session.State) {
	f.mu.Lock()
	f.state = st
	subs := append(([]func(session.State))(nil), f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (f *fakeController) Snapshot() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) Subscribe(fn func(session.State)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	st := f.state
	f.mu.Unlock()
	fn(st)
	return func() {}
}

func (f *fakeController) Setup(ctx context.Context) error { return f.record("Setup") }
func (f *fakeController) SetContext(text string) error    { return f.record("SetContext:" + text) }
func (f *fakeController) StartSession(ctx context.Context) error {
	return f.record("StartSession")
}
func (f *fakeController) StopSession(ctx context.Context) error   { return f.record("StopSession") }
func (f *fakeController) CancelSession(ctx context.Context) error { return f.record("CancelSession") }
func (f *fakeController) Reset(ctx context.Context)               { f.record("Reset") }
func (f *fakeController) RetryAnalysis(ctx context.Context) error { return f.record("RetryAnalysis") }
func (f *fakeController) ChooseIdea(id string) error              { return f.record("ChooseIdea:" + id) }
func (f *fakeController) SelectIdea(ctx context.Context) (*models.IdeaDetails, error) {
	return nil, f.record("SelectIdea")
}
func (f *fakeController) SetTab(tab models.DetailTab) error { return f.record("SetTab:" + string(tab)) }
func (f *fakeController) GenerateBlog(ctx context.Context, style models.Style) error {
	return f.record("GenerateBlog:" + string(style))
}
func (f *fakeController) GeneratePressRelease(ctx context.Context, style models.Style) error {
	return f.record("GeneratePressRelease:" + string(style))
}
func (f *fakeController) GenerateSlides(ctx context.Context) error { return f.record("GenerateSlides") }
func (f *fakeController) GenerateFollowUpQuestion(ctx context.Context) (string, error) {
	return "Wat nu?", f.record("GenerateFollowUpQuestion")
}
func (f *fakeController) StartFollowUp(ctx context.Context, question string) error {
	return f.record("StartFollowUp:" + question)
}
func (f *fakeController) BackToAnalysis() error { return f.record("BackToAnalysis") }

func newTestModel(t *testing.T, st session.State) (*Model, *fakeController) {
	t.Helper()
	ctl := &fakeController{state: st}
	m := New(context.Background(), ctl)
	t.Cleanup(m.Close)
	return m, ctl
}

func press(m *Model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// finish runs an action command and feeds its result back into the model
func finish(t *testing.T, m *Model, cmd tea.Cmd) actionMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(actionMsg)
	require.True(t, ok, "expected an action result")
	m.Update(msg)
	return msg
}

func TestPhaseKeys(t *testing.T) {
	detail := session.State{
		Phase:        models.PhaseDetail,
		SelectedIdea: &models.Idea{ID: "a", Name: "Ann"},
		Tab:          models.TabGeneral,
	}

	tests := []struct {
		name  string
		state session.State
		key   string
		calls []string
	}{
		{name: "setup from menu", state: session.State{Phase: models.PhaseMenu}, key: "n", calls: []string{"Setup"}},
		{name: "stop live", state: session.State{Phase: models.PhaseLive}, key: "s", calls: []string{"StopSession"}},
		{name: "cancel live", state: session.State{Phase: models.PhaseLive}, key: "x", calls: []string{"CancelSession"}},
		{name: "retry analysis", state: session.State{Phase: models.PhaseAnalysis}, key: "r", calls: []string{"RetryAnalysis"}},
		{name: "analysis back to menu", state: session.State{Phase: models.PhaseAnalysis}, key: "esc", calls: []string{"Reset"}},
		{name: "next tab", state: detail, key: "tab", calls: []string{"SetTab:BUSINESS"}},
		{name: "blog", state: detail, key: "b", calls: []string{"GenerateBlog:zakelijk"}},
		{name: "press release", state: detail, key: "p", calls: []string{"GeneratePressRelease:zakelijk"}},
		{name: "slides", state: detail, key: "d", calls: []string{"GenerateSlides"}},
		{name: "follow-up", state: detail, key: "f", calls: []string{"GenerateFollowUpQuestion", "StartFollowUp:Wat nu?"}},
		{name: "detail back", state: detail, key: "esc", calls: []string{"BackToAnalysis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctl := newTestModel(t, tt.state)
			res := finish(t, m, press(m, tt.key))
			assert.NoError(t, res.err)
			assert.Equal(t, tt.calls, ctl.Calls())
			assert.Empty(t, m.busy)
		})
	}
}

func TestKeysOutsideTheirPhaseDoNothing(t *testing.T) {
	m, ctl := newTestModel(t, session.State{Phase: models.PhaseClosing, Countdown: 3})
	for _, k := range []string{"n", "s", "x", "b", "enter"} {
		assert.Nil(t, press(m, k), k)
	}
	assert.Empty(t, ctl.Calls())
}

func TestSetupStartsWithTypedContext(t *testing.T) {
	m, ctl := newTestModel(t, session.State{Phase: models.PhaseSetup, DefaultContext: "Hoe vergroenen we Delft"})
	assert.Equal(t, "Hoe vergroenen we Delft", m.input.Value())
	assert.True(t, m.input.Focused())

	press(m, "?")
	// q is text while typing the context
	press(m, "q")
	assert.Equal(t, "Hoe vergroenen we Delft?q", m.input.Value())

	finish(t, m, press(m, "enter"))
	assert.Equal(t, []string{"SetContext:Hoe vergroenen we Delft?q", "StartSession"}, ctl.Calls())
}

func TestChooseHighlightedIdea(t *testing.T) {
	top := []models.Idea{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Bo"}, {ID: "c", Name: "Cas"}}
	m, ctl := newTestModel(t, session.State{
		Phase:        models.PhaseAnalysis,
		Analysis:     &models.AIAnalysisResult{Headline: "Kop", TopIdeas: top},
		AnalysisTask: session.Task{Status: session.StatusGenerated},
	})

	press(m, "down")
	assert.Equal(t, 1, m.ideas.Index())

	finish(t, m, press(m, "enter"))
	assert.Equal(t, []string{"ChooseIdea:b", "SelectIdea"}, ctl.Calls())
	assert.Contains(t, m.View(), "Kop")
}

func TestOneOperationAtATime(t *testing.T) {
	m, ctl := newTestModel(t, session.State{Phase: models.PhaseLive})

	first := press(m, "s")
	require.NotNil(t, first)
	assert.Nil(t, press(m, "x"))
	assert.Contains(t, m.status, "loopt nog")

	finish(t, m, first)
	assert.Equal(t, []string{"StopSession"}, ctl.Calls())
}

func TestFailedActionShowsError(t *testing.T) {
	m, ctl := newTestModel(t, session.State{Phase: models.PhaseLive})
	ctl.err = errors.New("store down")

	res := finish(t, m, press(m, "s"))
	assert.Error(t, res.err)
	assert.Contains(t, m.status, "store down")
	assert.Contains(t, m.View(), "store down")
}

func TestStateUpdatesKeepNewest(t *testing.T) {
	m, ctl := newTestModel(t, session.State{Phase: models.PhaseMenu})

	ctl.emit(session.State{Phase: models.PhaseSetup, Version: 1})
	ctl.emit(session.State{Phase: models.PhaseLive, Version: 2, Context: "Vraag", Ideas: []models.Idea{{Name: "Ann", Content: "Groene daken"}}})

	msg := m.waitForState()()
	_, next := m.Update(msg)
	assert.NotNil(t, next)
	assert.Equal(t, models.PhaseLive, m.state.Phase)
	assert.Equal(t, uint64(2), m.state.Version)

	view := m.View()
	assert.Contains(t, view, "Groene daken")
	assert.Contains(t, view, "Live")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, session.State{Phase: models.PhaseMenu})
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestClosingView(t *testing.T) {
	m, _ := newTestModel(t, session.State{Phase: models.PhaseClosing, Countdown: 3})
	assert.Contains(t, m.View(), "sluiten over 3")
}

func TestNextTabWraps(t *testing.T) {
	assert.Equal(t, models.TabBusiness, nextTab(models.TabGeneral))
	assert.Equal(t, models.TabGeneral, nextTab(models.TabContent))
	assert.Equal(t, models.TabGeneral, nextTab(""))
}
