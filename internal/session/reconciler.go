package session

import (
	"context"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
)

type eventKind int

const (
	ideasChanged eventKind = iota
	sessionChanged
)

// event is one store snapshot tagged with the run it belongs to
type event struct {
	kind    eventKind
	epoch   uint64
	ideas   []models.Idea
	session models.Session
}

// subscribe opens both store streams for one run. Callbacks never block
// past the cancel func so unsubscribing cannot deadlock against the queue.
func (c *Controller) subscribe(epoch uint64) ([]store.Unsubscribe, context.CancelFunc, error) {
	subCtx, cancel := context.WithCancel(c.lifeCtx)
	send := func(ev event) {
		select {
		case c.events <- ev:
		case <-subCtx.Done():
		}
	}

	unIdeas, err := c.store.SubscribeIdeas(subCtx, c.sessionID, func(ideas []models.Idea) {
		send(event{kind: ideasChanged, epoch: epoch, ideas: models.CloneIdeas(ideas)})
	})
	if err != nil {
		cancel()
		return nil, nil, err
	}

	unSession, err := c.store.SubscribeSession(subCtx, c.sessionID, func(s models.Session) {
		send(event{kind: sessionChanged, epoch: epoch, session: s})
	})
	if err != nil {
		cancel()
		unIdeas()
		return nil, nil, err
	}

	return []store.Unsubscribe{unIdeas, unSession}, cancel, nil
}

func (c *Controller) run() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.lifeCtx.Done():
			return
		case ev := <-c.events:
			if c.apply(ev) {
				c.publish()
			}
		}
	}
}

// apply merges one snapshot into local state. The two streams are not
// atomic with each other; each event only touches its own fields.
func (c *Controller) apply(ev event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.epoch != c.epoch || c.closed {
		return false
	}

	switch ev.kind {
	case ideasChanged:
		ideas := ev.ideas
		if ideas == nil {
			ideas = []models.Idea{}
		}
		models.SortIdeas(ideas)
		c.ideas = ideas
		if c.phase == models.PhaseAnalysis {
			c.includeManualLocked()
		}

	case sessionChanged:
		s := ev.session
		c.remoteActive = s.IsActive
		if s.DefaultContext != "" {
			c.defaultContext = s.DefaultContext
		}
		if s.SelectedManualIdeaID != c.manualID {
			c.manualID = s.SelectedManualIdeaID
			if c.manualIdea != nil && c.manualIdea.ID != c.manualID {
				c.manualIdea = nil
			}
			c.includeManualLocked()
		}
	}
	return true
}

// resolveLocked finds an idea by id among submissions, clusters and the
// manually selected idea.
func (c *Controller) resolveLocked(id string) (models.Idea, bool) {
	if id == "" {
		return models.Idea{}, false
	}
	if idea, ok := models.FindIdea(c.ideas, id); ok {
		return idea, true
	}
	for _, cl := range c.clusters {
		if cl.ID == id {
			return cl.AsIdea(), true
		}
	}
	if c.manualIdea != nil && c.manualIdea.ID == id {
		return *c.manualIdea, true
	}
	if c.analysis != nil {
		if idea, ok := models.FindIdea(c.analysis.TopIdeas, id); ok {
			return idea, true
		}
	}
	return models.Idea{}, false
}

// includeManualLocked makes the manual selection part of the top ideas and
// pre-selects it. A previously appended manual idea is replaced.
func (c *Controller) includeManualLocked() {
	if c.analysis == nil || c.phase != models.PhaseAnalysis {
		return
	}
	if c.appendedID != "" && c.appendedID != c.manualID {
		top := c.analysis.TopIdeas[:0]
		for _, idea := range c.analysis.TopIdeas {
			if idea.ID != c.appendedID {
				top = append(top, idea)
			}
		}
		c.analysis.TopIdeas = top
		if c.chosenID == c.appendedID {
			c.chosenID = ""
		}
		c.appendedID = ""
	}

	idea, ok := c.resolveLocked(c.manualID)
	if !ok {
		return
	}
	if !c.analysis.ContainsIdea(idea.ID) {
		if len(c.analysis.TopIdeas) >= models.MaxTopIdeas {
			return
		}
		c.analysis.TopIdeas = append(c.analysis.TopIdeas, idea)
		c.appendedID = idea.ID
	}
	c.chosenID = idea.ID
}
