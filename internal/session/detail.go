package session

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
)

type selectResult struct {
	details *models.IdeaDetails
}

// SelectIdea elaborates the chosen idea and moves ANALYSIS to DETAIL.
// Concurrent calls share one AI call.
func (c *Controller) SelectIdea(ctx context.Context) (*models.IdeaDetails, error) {
	ch := c.selecting.DoChan("select", func() (any, error) {
		return c.selectIdea()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneDetails(res.Val.(selectResult).details), nil
	}
}

func (c *Controller) selectIdea() (selectResult, error) {
	c.mu.Lock()
	if err := c.requireLocked("select idea", models.PhaseAnalysis); err != nil {
		c.mu.Unlock()
		return selectResult{}, err
	}
	if c.analysis == nil {
		c.mu.Unlock()
		return selectResult{}, ErrNoAnalysis
	}
	if c.chosenID == "" {
		c.mu.Unlock()
		return selectResult{}, ErrNoChosenIdea
	}
	idea, ok := c.resolveLocked(c.chosenID)
	if !ok {
		c.mu.Unlock()
		return selectResult{}, ErrUnknownIdea
	}
	epoch, gen := c.epoch, c.detailGen
	sessionContext := c.context
	c.detailTask.start(c.cfg.clock())
	c.mu.Unlock()
	c.publish()

	details, err := c.ai.IdeaDetails(c.lifeCtx, sessionContext, idea)

	c.mu.Lock()
	if c.epoch != epoch || c.detailGen != gen || c.phase != models.PhaseAnalysis {
		c.mu.Unlock()
		return selectResult{}, ErrStaleResult
	}
	if err != nil {
		c.detailTask.fail(err)
		c.mu.Unlock()
		log.Printf("❌ Idea details failed for session %s: %v", c.sessionID, err)
		c.publish()
		return selectResult{}, err
	}

	c.clearDetailLocked()
	c.selected = &idea
	c.details = details
	c.detailTask.succeed()
	c.tab = models.TabGeneral
	c.phase = models.PhaseDetail
	c.mu.Unlock()

	log.Printf("📋 Session %s in detail for idea %q", c.sessionID, idea.Name)
	c.publish()
	return selectResult{details: details}, nil
}

// SetTab switches the active DETAIL view
func (c *Controller) SetTab(tab models.DetailTab) error {
	if !tab.Valid() {
		return &ValidationError{Field: "tab", Reason: "unknown tab " + string(tab)}
	}
	c.mu.Lock()
	if err := c.requireLocked("set tab", models.PhaseDetail); err != nil {
		c.mu.Unlock()
		return err
	}
	c.tab = tab
	c.mu.Unlock()
	c.publish()
	return nil
}

// detailJob is the shared shape of the lazy DETAIL sub-generations
type detailJob struct {
	op   string
	task func(c *Controller) *Task
	run  func(ctx context.Context, sessionContext string, idea models.Idea, details *models.IdeaDetails) error
	save func(c *Controller)
}

func (c *Controller) runDetailJob(ctx context.Context, job detailJob) error {
	c.mu.Lock()
	if err := c.requireLocked(job.op, models.PhaseDetail); err != nil {
		c.mu.Unlock()
		return err
	}
	task := job.task(c)
	if task.running() {
		c.mu.Unlock()
		return ErrBusy
	}
	epoch, gen := c.epoch, c.detailGen
	idea := *c.selected
	details := cloneDetails(c.details)
	sessionContext := c.context
	task.start(c.cfg.clock())
	c.mu.Unlock()
	c.publish()

	err := job.run(ctx, sessionContext, idea, details)

	c.mu.Lock()
	if c.epoch != epoch || c.detailGen != gen {
		c.mu.Unlock()
		return ErrStaleResult
	}
	task = job.task(c)
	if err != nil {
		task.fail(err)
		c.mu.Unlock()
		log.Printf("❌ %s failed for session %s: %v", job.op, c.sessionID, err)
		c.publish()
		return err
	}
	job.save(c)
	task.succeed()
	c.mu.Unlock()
	c.publish()
	return nil
}

// GenerateBlog adds a blog post to the details. Each call regenerates it.
func (c *Controller) GenerateBlog(ctx context.Context, style models.Style) error {
	var post *models.BlogPost
	return c.runDetailJob(ctx, detailJob{
		op:   "generate blog",
		task: func(c *Controller) *Task { return &c.blogTask },
		run: func(ctx context.Context, sc string, idea models.Idea, _ *models.IdeaDetails) error {
			var err error
			post, err = c.ai.BlogPost(ctx, sc, idea, style)
			return err
		},
		save: func(c *Controller) { c.details.Blog = post },
	})
}

func (c *Controller) GeneratePressRelease(ctx context.Context, style models.Style) error {
	var release *models.PressRelease
	return c.runDetailJob(ctx, detailJob{
		op:   "generate press release",
		task: func(c *Controller) *Task { return &c.pressTask },
		run: func(ctx context.Context, sc string, idea models.Idea, _ *models.IdeaDetails) error {
			var err error
			release, err = c.ai.PressRelease(ctx, sc, idea, style)
			return err
		},
		save: func(c *Controller) { c.details.PressRelease = release },
	})
}

func (c *Controller) GenerateSlides(ctx context.Context) error {
	var outline *models.SlideOutline
	return c.runDetailJob(ctx, detailJob{
		op:   "generate slides",
		task: func(c *Controller) *Task { return &c.slidesTask },
		run: func(ctx context.Context, sc string, idea models.Idea, details *models.IdeaDetails) error {
			var err error
			outline, err = c.ai.SlideOutline(ctx, sc, idea, details)
			return err
		},
		save: func(c *Controller) { c.details.SlideOutline = outline },
	})
}

// Chat sends one question to a persona. The question stays in the history
// even when the reply fails.
func (c *Controller) Chat(ctx context.Context, persona models.Persona, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	if _, err := models.ParsePersona(string(persona)); err != nil {
		return nil, &ValidationError{Field: "persona", Reason: err.Error()}
	}

	c.mu.Lock()
	if err := c.requireLocked("chat", models.PhaseDetail); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.chatTask.running() {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.chat = append(c.chat, models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: c.cfg.clock().UnixMilli(),
	})
	epoch, gen := c.epoch, c.detailGen
	req := agents.ChatRequest{
		Context: c.context,
		Idea:    *c.selected,
		Details: cloneDetails(c.details),
		Persona: persona,
		History: append([]models.ChatMessage(nil), c.chat...),
	}
	c.chatTask.start(c.cfg.clock())
	c.mu.Unlock()
	c.publish()

	reply, err := c.ai.ChatReply(ctx, req)

	c.mu.Lock()
	if c.epoch != epoch || c.detailGen != gen {
		c.mu.Unlock()
		return nil, ErrStaleResult
	}
	if err != nil {
		c.chatTask.fail(err)
		c.mu.Unlock()
		c.publish()
		return nil, err
	}
	msg := models.ChatMessage{
		ID:                uuid.NewString(),
		Role:              models.RoleAssistant,
		Content:           reply.Content,
		Timestamp:         c.cfg.clock().UnixMilli(),
		RoleLabel:         persona.Label(),
		SuggestedFollowUp: reply.SuggestedFollowUp,
	}
	c.chat = append(c.chat, msg)
	c.chatTask.succeed()
	c.mu.Unlock()
	c.publish()
	return &msg, nil
}

// GenerateFollowUpQuestion proposes the context of a follow-up session. It
// falls back to a template instead of failing.
func (c *Controller) GenerateFollowUpQuestion(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.requireLocked("generate follow-up question", models.PhaseDetail); err != nil {
		c.mu.Unlock()
		return "", err
	}
	gen := c.detailGen
	idea := *c.selected
	sessionContext := c.context
	var existing []string
	if c.details != nil {
		existing = append(existing, c.details.Questions...)
	}
	c.mu.Unlock()

	question := c.ai.FollowUpQuestion(ctx, sessionContext, idea, existing)
	if strings.TrimSpace(question) == "" {
		question = agents.FallbackQuestion(idea.Name)
	}

	c.mu.Lock()
	if c.detailGen == gen {
		c.followUp = question
	}
	c.mu.Unlock()
	c.publish()
	return question, nil
}

// StartFollowUp launches a new LIVE run on the same session with question
// as its context. Prior ideas, analysis and selection are cleared.
func (c *Controller) StartFollowUp(ctx context.Context, question string) error {
	return c.startLive(ctx, "start follow-up", models.PhaseDetail, question)
}

// BackToAnalysis leaves DETAIL and discards the details
func (c *Controller) BackToAnalysis() error {
	c.mu.Lock()
	if err := c.requireLocked("back to analysis", models.PhaseDetail); err != nil {
		c.mu.Unlock()
		return err
	}
	c.clearDetailLocked()
	c.phase = models.PhaseAnalysis
	c.mu.Unlock()
	c.publish()
	return nil
}
