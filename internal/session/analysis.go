package session

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
)

// enterAnalysisLocked switches to ANALYSIS with a pending result
func (c *Controller) enterAnalysisLocked() {
	c.phase = models.PhaseAnalysis
	c.analysis = nil
	c.analysisTask.start(c.cfg.clock())
	c.chosenID = ""
	c.appendedID = ""
	c.reveal = Reveal{}
	c.stopScoreLocked()
	c.score = 0
}

// fingerprint identifies an idea set independent of slice identity
func fingerprint(ideas []models.Idea) string {
	ids := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		ids = append(ids, idea.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// runAnalysis computes the result for the current run. A result whose idea
// set changed while the call was in flight is recomputed once; a result
// from an earlier run is dropped.
func (c *Controller) runAnalysis(epoch uint64) {
	for attempt := 0; attempt < 2; attempt++ {
		c.mu.Lock()
		if c.epoch != epoch || c.phase != models.PhaseAnalysis {
			c.mu.Unlock()
			return
		}
		ideas := models.CloneIdeas(c.ideas)
		sessionContext := c.context
		c.analysisTask.start(c.cfg.clock())
		c.mu.Unlock()
		c.publish()

		var result *models.AIAnalysisResult
		var err error
		if len(ideas) == 0 {
			result = models.EmptyAnalysis()
		} else {
			result, err = c.ai.Analyze(c.lifeCtx, sessionContext, ideas)
		}

		c.mu.Lock()
		if c.epoch != epoch || c.phase != models.PhaseAnalysis {
			c.mu.Unlock()
			log.Printf("⏭️ Dropping analysis for session %s: session was reset", c.sessionID)
			return
		}
		if attempt == 0 && fingerprint(c.ideas) != fingerprint(ideas) {
			c.mu.Unlock()
			log.Printf("🔁 Ideas changed during analysis of session %s, recomputing", c.sessionID)
			continue
		}
		if err != nil {
			c.analysisTask.fail(err)
			c.mu.Unlock()
			log.Printf("❌ Analysis failed for session %s: %v", c.sessionID, err)
			c.publish()
			return
		}

		c.analysis = result
		c.analysisTask.succeed()
		c.includeManualLocked()
		c.startScoreLocked(epoch, result.InnovationScore)
		c.mu.Unlock()

		log.Printf("✅ Analysis ready for session %s: %d top ideas, score %d",
			c.sessionID, len(result.TopIdeas), result.InnovationScore)
		c.publish()
		return
	}
}

// RetryAnalysis reruns a failed analysis in the background
func (c *Controller) RetryAnalysis(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireLocked("retry analysis", models.PhaseAnalysis); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.analysisTask.running() {
		c.mu.Unlock()
		return ErrBusy
	}
	epoch := c.epoch
	c.analysis = nil
	c.chosenID = ""
	c.appendedID = ""
	c.reveal = Reveal{}
	c.analysisTask.start(c.cfg.clock())
	c.mu.Unlock()

	go c.runAnalysis(epoch)
	return nil
}

// ChooseIdea picks one of the candidate ideas directly
func (c *Controller) ChooseIdea(id string) error {
	c.mu.Lock()
	if err := c.requireLocked("choose idea", models.PhaseAnalysis); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.analysis == nil {
		c.mu.Unlock()
		return ErrNoAnalysis
	}
	if _, ok := c.resolveLocked(id); !ok {
		c.mu.Unlock()
		return ErrUnknownIdea
	}
	c.chosenID = id
	c.mu.Unlock()
	c.publish()
	return nil
}

// StartReveal stages an idea for the drumroll without exposing it. An empty
// id stages the chosen idea, or the first top idea.
func (c *Controller) StartReveal(id string) (string, error) {
	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		c.publish()
	}()

	if err := c.requireLocked("start reveal", models.PhaseAnalysis); err != nil {
		return "", err
	}
	if c.analysis == nil {
		return "", ErrNoAnalysis
	}
	if id == "" {
		id = c.chosenID
	}
	if id == "" && len(c.analysis.TopIdeas) > 0 {
		id = c.analysis.TopIdeas[0].ID
	}
	if _, ok := c.resolveLocked(id); !ok {
		return "", ErrUnknownIdea
	}
	c.reveal = Reveal{StagedID: id, Revealing: true}
	return id, nil
}

// ConfirmReveal commits the id captured by StartReveal
func (c *Controller) ConfirmReveal() (string, error) {
	c.mu.Lock()
	if err := c.requireLocked("confirm reveal", models.PhaseAnalysis); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if !c.reveal.Revealing || c.reveal.StagedID == "" {
		c.mu.Unlock()
		return "", ErrNoStagedIdea
	}
	id := c.reveal.StagedID
	c.chosenID = id
	c.reveal.Revealing = false
	c.reveal.Revealed = true
	c.mu.Unlock()
	c.publish()
	return id, nil
}

// SelectManualIdea force-selects any idea and shares the choice with other
// admin views through the session document.
func (c *Controller) SelectManualIdea(ctx context.Context, idea models.Idea) error {
	if idea.ID == "" {
		return ErrUnknownIdea
	}

	c.mu.Lock()
	if err := c.requireLocked("select manual idea", models.PhaseLive, models.PhaseClosing, models.PhaseAnalysis); err != nil {
		c.mu.Unlock()
		return err
	}
	manual := idea
	c.manualIdea = &manual
	c.manualID = idea.ID
	c.includeManualLocked()
	c.mu.Unlock()
	c.publish()

	err := c.store.UpdateSession(ctx, c.sessionID, models.SessionPatch{SelectedManualIdeaID: models.String(idea.ID)})
	if err != nil {
		c.noteStoreError(store.Wrap("select manual idea", c.sessionID, err))
		c.publish()
	}
	return nil
}

// SelectIdeaByID is SelectManualIdea for an idea or cluster known locally
func (c *Controller) SelectIdeaByID(ctx context.Context, id string) error {
	c.mu.Lock()
	idea, ok := c.resolveLocked(id)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownIdea
	}
	return c.SelectManualIdea(ctx, idea)
}

// SelectCluster turns a cluster into a synthetic idea and selects it
func (c *Controller) SelectCluster(ctx context.Context, clusterID string) error {
	c.mu.Lock()
	var found *models.Cluster
	for i := range c.clusters {
		if c.clusters[i].ID == clusterID {
			found = &c.clusters[i]
			break
		}
	}
	var idea models.Idea
	if found != nil {
		idea = found.AsIdea()
	}
	c.mu.Unlock()

	if found == nil {
		return ErrUnknownCluster
	}
	return c.SelectManualIdea(ctx, idea)
}

// ClusterIdeas asks the AI to group the current ideas
func (c *Controller) ClusterIdeas(ctx context.Context) ([]models.Cluster, error) {
	c.mu.Lock()
	if err := c.requireLocked("cluster ideas", models.PhaseLive, models.PhaseClosing, models.PhaseAnalysis); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.clusterTask.running() {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if len(c.ideas) == 0 {
		c.mu.Unlock()
		return nil, ErrNoIdeas
	}
	epoch := c.epoch
	ideas := models.CloneIdeas(c.ideas)
	sessionContext := c.context
	c.clusterTask.start(c.cfg.clock())
	c.mu.Unlock()
	c.publish()

	clusters, err := c.ai.ClusterIdeas(ctx, sessionContext, ideas)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil, ErrStaleResult
	}
	if err != nil {
		c.clusterTask.fail(err)
		c.mu.Unlock()
		c.publish()
		return nil, err
	}
	c.clusters = clusters
	c.clusterTask.succeed()
	c.mu.Unlock()
	c.publish()
	return append([]models.Cluster(nil), clusters...), nil
}
