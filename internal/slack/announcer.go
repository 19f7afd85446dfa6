package slack

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/slack-go/slack/slackevents"
)

// Controller is the part of the session controller the announcer drives
type Controller interface {
	Subscribe(fn func(session.State)) func()
	ChooseIdea(id string) error
}

// Announcer posts phase changes to the event channel and lets admins pick
// the chosen idea by reacting with :one: to :four: on the analysis post.
type Announcer struct {
	client     Messenger
	controller Controller
	channelID  string
	admins     map[string]bool

	pending phaseQueue

	mu         sync.Mutex
	topIdeaIDs map[string][]string // messageTS -> top idea ids
}

func NewAnnouncer(client Messenger, controller Controller, channelID string, adminUserIDs []string) *Announcer {
	admins := make(map[string]bool, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = true
	}
	return &Announcer{
		client:     client,
		controller: controller,
		channelID:  channelID,
		admins:     admins,
		pending:    phaseQueue{ready: make(chan struct{}, 1)},
		topIdeaIDs: make(map[string][]string),
	}
}

// Run posts announcements until ctx is done
func (a *Announcer) Run(ctx context.Context) {
	unsubscribe := a.controller.Subscribe(a.pending.push)
	defer unsubscribe()

	var prev *session.State
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.pending.ready:
			for _, st := range a.pending.drain() {
				st := st // per-iteration copy (pre-Go 1.22 loop semantics)
				if msg, ok := announcement(prev, st); ok {
					a.post(st, msg)
				}
				prev = &st
			}
		}
	}
}

// phaseQueue buffers states for a slow poster without blocking the
// controller. Within one phase only the newest state is kept; every phase
// change stays queued.
type phaseQueue struct {
	mu     sync.Mutex
	states []session.State
	ready  chan struct{}
}

func (q *phaseQueue) push(st session.State) {
	q.mu.Lock()
	if n := len(q.states); n > 0 && q.states[n-1].Phase == st.Phase {
		q.states[n-1] = st
	} else {
		q.states = append(q.states, st)
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *phaseQueue) drain() []session.State {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.states
	q.states = nil
	return out
}

func (a *Announcer) post(st session.State, msg string) {
	ts, err := a.client.SendMessage(a.channelID, msg)
	if err != nil {
		log.Printf("❌ Failed to announce %s: %v", st.Phase, err)
		return
	}
	if st.Phase == models.PhaseAnalysis && st.Analysis != nil && len(st.Analysis.TopIdeas) > 0 {
		ids := make([]string, len(st.Analysis.TopIdeas))
		for i, idea := range st.Analysis.TopIdeas {
			ids[i] = idea.ID
		}
		a.mu.Lock()
		a.topIdeaIDs[ts] = ids
		a.mu.Unlock()
		log.Printf("📌 Stored analysis message mapping: %s -> %v", ts, ids)
	}
}

// HandleReaction chooses a top idea when an admin reacts to the analysis post
func (a *Announcer) HandleReaction(ctx context.Context, event *slackevents.ReactionAddedEvent) error {
	if !a.admins[event.User] {
		return nil
	}

	a.mu.Lock()
	ids, exists := a.topIdeaIDs[event.Item.Timestamp]
	a.mu.Unlock()
	if !exists {
		return nil
	}

	for i, name := range reactionNames {
		if event.Reaction != name {
			continue
		}
		if i >= len(ids) {
			return nil
		}
		if err := a.controller.ChooseIdea(ids[i]); err != nil {
			return fmt.Errorf("failed to choose idea %s: %w", ids[i], err)
		}
		log.Printf("👍 %s chose idea %s from Slack", event.User, ids[i])
		return nil
	}
	return nil
}

// announcement returns the message for the transition from prev to cur.
// The analysis is announced once, when its result first appears.
func announcement(prev *session.State, cur session.State) (string, bool) {
	phaseChanged := prev == nil || prev.Phase != cur.Phase

	switch cur.Phase {
	case models.PhaseLive:
		if !phaseChanged {
			return "", false
		}
		return fmt.Sprintf("🚀 *De sessie is gestart!*\n*Vraag:* %s\nStuur je idee als bericht in dit kanaal.", cur.Context), true
	case models.PhaseClosing:
		if !phaseChanged {
			return "", false
		}
		return fmt.Sprintf("⏳ De inzendingen sluiten over %d seconden!", cur.Countdown), true
	case models.PhaseAnalysis:
		if cur.Analysis == nil || cur.AnalysisTask.Status != session.StatusGenerated {
			return "", false
		}
		if prev != nil && prev.Phase == models.PhaseDetail {
			return "", false
		}
		if !phaseChanged && prev.Analysis != nil && prev.AnalysisTask.Status == session.StatusGenerated {
			return "", false
		}
		return "📊 *De analyse is klaar!*\n" + topMessage(cur), true
	case models.PhaseDetail:
		if !phaseChanged || cur.SelectedIdea == nil {
			return "", false
		}
		return fmt.Sprintf("🏆 *Gekozen idee:* %s\n%s", cur.SelectedIdea.Name, cur.SelectedIdea.Content), true
	}
	return "", false
}
