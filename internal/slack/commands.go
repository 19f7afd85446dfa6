package slack

import (
	"fmt"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
)

// StateSource is read by the mention commands
type StateSource interface {
	Snapshot() session.State
}

type CommandHandler struct {
	client Messenger
	state  StateSource
}

func NewCommandHandler(client Messenger, state StateSource) *CommandHandler {
	return &CommandHandler{client: client, state: state}
}

// Handle answers a mention. Unknown text gets the help message.
func (h *CommandHandler) Handle(channelID, text string) error {
	var reply string
	switch cmd := strings.ToLower(strings.TrimSpace(text)); {
	case strings.HasPrefix(cmd, "status"):
		reply = statusMessage(h.state.Snapshot())
	case strings.HasPrefix(cmd, "top"):
		reply = topMessage(h.state.Snapshot())
	default:
		reply = helpMessage
	}
	_, err := h.client.SendMessage(channelID, reply)
	return err
}

const helpMessage = `*Idea Processor*

Stuur je idee als los bericht in dit kanaal zolang de sessie live is.

*Commando's:*
- @Idea Processor status - Fase en aantal ideeën
- @Idea Processor top - De top ideeën uit de analyse
- @Idea Processor help - Deze uitleg`

func statusMessage(st session.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Status:* %s\n", phaseLabel(st.Phase))
	if st.Context != "" {
		fmt.Fprintf(&b, "*Vraag:* %s\n", st.Context)
	}
	fmt.Fprintf(&b, "*Ideeën:* %d\n", len(st.Ideas))
	switch st.Phase {
	case models.PhaseLive:
		fmt.Fprintf(&b, "*Looptijd:* %s\n", clock(st.DurationSeconds))
	case models.PhaseClosing:
		fmt.Fprintf(&b, "*Sluit over:* %d seconden\n", st.Countdown)
	}
	return b.String()
}

func topMessage(st session.State) string {
	a := st.Analysis
	if a == nil {
		return "Er is nog geen analyse beschikbaar."
	}
	if len(a.TopIdeas) == 0 {
		return a.Summary
	}
	var b strings.Builder
	if a.Headline != "" {
		fmt.Fprintf(&b, "*%s*\n", a.Headline)
	}
	fmt.Fprintf(&b, "Innovatiescore: *%d*/100\n\n", a.InnovationScore)
	for i, idea := range a.TopIdeas {
		fmt.Fprintf(&b, "%s *%s*: %s\n", numberEmoji(i), idea.Name, idea.Content)
	}
	return b.String()
}

func phaseLabel(p models.Phase) string {
	switch p {
	case models.PhaseLive:
		return "🟢 Live"
	case models.PhaseClosing:
		return "⏳ Sluiten"
	case models.PhaseAnalysis:
		return "📊 Analyse"
	case models.PhaseDetail:
		return "🏆 Uitwerking"
	case models.PhaseSetup:
		return "🛠️ Voorbereiding"
	}
	return "💤 Geen actieve sessie"
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

var reactionNames = []string{"one", "two", "three", "four"}

func numberEmoji(i int) string {
	if i < len(reactionNames) {
		return ":" + reactionNames[i] + ":"
	}
	return fmt.Sprintf("%d.", i+1)
}
