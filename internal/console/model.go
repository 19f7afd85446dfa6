// Package console is the terminal dashboard for running a session from the
// operator's laptop. It drives one session controller through the same
// operations the admin API exposes.
package console

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
)

// Controller is the part of session.Controller the dashboard uses
type Controller interface {
	Snapshot() session.State
	Subscribe(fn func(session.State)) func()
	Setup(ctx context.Context) error
	SetContext(text string) error
	StartSession(ctx context.Context) error
	StopSession(ctx context.Context) error
	CancelSession(ctx context.Context) error
	Reset(ctx context.Context)
	RetryAnalysis(ctx context.Context) error
	ChooseIdea(id string) error
	SelectIdea(ctx context.Context) (*models.IdeaDetails, error)
	SetTab(tab models.DetailTab) error
	GenerateBlog(ctx context.Context, style models.Style) error
	GeneratePressRelease(ctx context.Context, style models.Style) error
	GenerateSlides(ctx context.Context) error
	GenerateFollowUpQuestion(ctx context.Context) (string, error)
	StartFollowUp(ctx context.Context, question string) error
	BackToAnalysis() error
}

var tabOrder = []models.DetailTab{
	models.TabGeneral,
	models.TabBusiness,
	models.TabBacklog,
	models.TabMarketing,
	models.TabContent,
}

// stateMsg carries a controller snapshot into the update loop
type stateMsg session.State

// actionMsg reports the end of an operation started from a key press
type actionMsg struct {
	op  string
	err error
}

// ideaItem implements list.Item for the top ideas
type ideaItem struct {
	idea models.Idea
	rank int
}

func (i ideaItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.idea.Name) }
func (i ideaItem) Description() string { return i.idea.Content }
func (i ideaItem) FilterValue() string { return i.idea.Name }

// Model is the bubbletea model of the dashboard
type Model struct {
	ctx    context.Context
	ctl    Controller
	states chan session.State
	unsub  func()

	state   session.State
	keys    keyMap
	input   textinput.Model
	ideas   list.Model
	spinner spinner.Model
	help    help.Model

	width  int
	height int
	busy   string
	status string
}

// New subscribes to ctl. Call Close when the program exits.
func New(ctx context.Context, ctl Controller) *Model {
	input := textinput.New()
	input.Placeholder = "Welke vraag leggen we aan de zaal voor?"
	input.CharLimit = 500
	input.Width = 72

	ideas := list.New(nil, list.NewDefaultDelegate(), 80, 14)
	ideas.Title = "Top ideeën"
	ideas.SetShowHelp(false)
	ideas.SetShowStatusBar(false)
	ideas.SetFilteringEnabled(false)
	ideas.KeyMap.Quit.SetEnabled(false)

	m := &Model{
		ctx:     ctx,
		ctl:     ctl,
		states:  make(chan session.State, 1),
		keys:    newKeyMap(),
		input:   input,
		ideas:   ideas,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
	m.applyState(ctl.Snapshot())
	m.unsub = ctl.Subscribe(m.offer)
	return m
}

// offer keeps only the newest state so the controller never blocks on the UI
func (m *Model) offer(st session.State) {
	for {
		select {
		case m.states <- st:
			return
		default:
		}
		select {
		case <-m.states:
		default:
		}
	}
}

func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m *Model) waitForState() tea.Cmd {
	states := m.states
	return func() tea.Msg {
		return stateMsg(<-states)
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.spinner.Tick, textinput.Blink)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ideas.SetSize(max(20, msg.Width-6), max(6, msg.Height-16))
		m.input.Width = max(20, msg.Width-10)
		return m, nil

	case stateMsg:
		m.applyState(session.State(msg))
		return m, m.waitForState()

	case actionMsg:
		m.busy = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("⚠️ %s: %v", msg.op, msg.err)
		} else {
			m.status = fmt.Sprintf("✅ %s", msg.op)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyState(st session.State) {
	prev := m.state.Phase
	m.state = st

	if st.Phase == models.PhaseSetup && prev != models.PhaseSetup {
		text := st.Context
		if text == "" {
			text = st.DefaultContext
		}
		m.input.SetValue(text)
		m.input.CursorEnd()
		m.input.Focus()
	}
	if st.Phase != models.PhaseSetup {
		m.input.Blur()
	}

	var top []models.Idea
	if st.Analysis != nil {
		top = st.Analysis.TopIdeas
	}
	if !sameIdeas(m.ideas.Items(), top) {
		items := make([]list.Item, len(top))
		for i, idea := range top {
			items[i] = ideaItem{idea: idea, rank: i + 1}
		}
		m.ideas.SetItems(items)
		m.ideas.Select(0)
	}
}

func sameIdeas(items []list.Item, ideas []models.Idea) bool {
	if len(items) != len(ideas) {
		return false
	}
	for i, item := range items {
		if it, ok := item.(ideaItem); !ok || it.idea.ID != ideas[i].ID {
			return false
		}
	}
	return true
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.state.Phase == models.PhaseSetup {
		switch {
		case key.Matches(msg, m.keys.Start):
			text := m.input.Value()
			return m, m.run("sessie gestart", func(ctx context.Context) error {
				if err := m.ctl.SetContext(text); err != nil {
					return err
				}
				return m.ctl.StartSession(ctx)
			})
		case key.Matches(msg, m.keys.Back):
			return m, m.run("terug naar menu", m.reset)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.state.Phase {
	case models.PhaseMenu:
		if key.Matches(msg, m.keys.Setup) {
			return m, m.run("setup", m.ctl.Setup)
		}

	case models.PhaseLive:
		switch {
		case key.Matches(msg, m.keys.Stop):
			return m, m.run("sessie gestopt", m.ctl.StopSession)
		case key.Matches(msg, m.keys.Cancel):
			return m, m.run("sessie geannuleerd", m.ctl.CancelSession)
		}

	case models.PhaseAnalysis:
		switch {
		case key.Matches(msg, m.keys.Choose):
			item, ok := m.ideas.SelectedItem().(ideaItem)
			if !ok {
				return m, nil
			}
			id := item.idea.ID
			return m, m.run("idee uitgewerkt", func(ctx context.Context) error {
				if err := m.ctl.ChooseIdea(id); err != nil {
					return err
				}
				_, err := m.ctl.SelectIdea(ctx)
				return err
			})
		case key.Matches(msg, m.keys.Retry):
			return m, m.run("analyse herstart", m.ctl.RetryAnalysis)
		case key.Matches(msg, m.keys.Back):
			return m, m.run("terug naar menu", m.reset)
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.ideas, cmd = m.ideas.Update(msg)
			return m, cmd
		}

	case models.PhaseDetail:
		switch {
		case key.Matches(msg, m.keys.NextTab):
			next := nextTab(m.state.Tab)
			return m, m.run("tabblad "+string(next), func(context.Context) error {
				return m.ctl.SetTab(next)
			})
		case key.Matches(msg, m.keys.Blog):
			return m, m.run("blog gegenereerd", func(ctx context.Context) error {
				return m.ctl.GenerateBlog(ctx, models.StyleBusiness)
			})
		case key.Matches(msg, m.keys.Press):
			return m, m.run("persbericht gegenereerd", func(ctx context.Context) error {
				return m.ctl.GeneratePressRelease(ctx, models.StyleBusiness)
			})
		case key.Matches(msg, m.keys.Slides):
			return m, m.run("slides gegenereerd", m.ctl.GenerateSlides)
		case key.Matches(msg, m.keys.FollowUp):
			return m, m.run("vervolgsessie gestart", func(ctx context.Context) error {
				q, err := m.ctl.GenerateFollowUpQuestion(ctx)
				if err != nil {
					return err
				}
				return m.ctl.StartFollowUp(ctx, q)
			})
		case key.Matches(msg, m.keys.Back):
			return m, m.run("terug naar analyse", func(context.Context) error {
				return m.ctl.BackToAnalysis()
			})
		}
	}
	return m, nil
}

func (m *Model) reset(ctx context.Context) error {
	m.ctl.Reset(ctx)
	return nil
}

// run executes fn off the update loop. Only one operation runs at a time.
func (m *Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	if m.busy != "" {
		m.status = fmt.Sprintf("⏳ %s loopt nog", m.busy)
		return nil
	}
	m.busy = op
	m.status = ""
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{op: op, err: fn(ctx)}
	}
}

func nextTab(current models.DetailTab) models.DetailTab {
	for i, t := range tabOrder {
		if t == current {
			return tabOrder[(i+1)%len(tabOrder)]
		}
	}
	return tabOrder[0]
}
