package console

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/shubh-37/idea-processor/internal/models"
)

type keyMap struct {
	Quit     key.Binding
	Setup    key.Binding
	Start    key.Binding
	Stop     key.Binding
	Cancel   key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	Choose   key.Binding
	Retry    key.Binding
	NextTab  key.Binding
	Blog     key.Binding
	Press    key.Binding
	Slides   key.Binding
	FollowUp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "afsluiten")),
		Setup:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nieuwe sessie")),
		Start:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop en analyseer")),
		Cancel:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "annuleer")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "terug")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "omhoog")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "omlaag")),
		Choose:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "kies idee")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "opnieuw")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "volgend tabblad")),
		Blog:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "blog")),
		Press:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "persbericht")),
		Slides:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "slides")),
		FollowUp: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "vervolgsessie")),
	}
}

// forPhase lists the bindings shown in the footer
func (k keyMap) forPhase(phase models.Phase) []key.Binding {
	switch phase {
	case models.PhaseMenu:
		return []key.Binding{k.Setup, k.Quit}
	case models.PhaseSetup:
		return []key.Binding{k.Start, k.Back}
	case models.PhaseLive:
		return []key.Binding{k.Stop, k.Cancel, k.Quit}
	case models.PhaseAnalysis:
		return []key.Binding{k.Up, k.Down, k.Choose, k.Retry, k.Back, k.Quit}
	case models.PhaseDetail:
		return []key.Binding{k.NextTab, k.Blog, k.Press, k.Slides, k.FollowUp, k.Back, k.Quit}
	}
	return []key.Binding{k.Quit}
}
