// Package session runs the admin-side phase machine of one brainstorm
// session: MENU, SETUP, LIVE, CLOSING, ANALYSIS and DETAIL.
//
// A Controller never holds its mutex across store or AI calls. Store
// subscriptions feed a single event queue that one goroutine applies in
// arrival order; events from an earlier run are dropped by epoch.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
	"golang.org/x/sync/singleflight"
)

// Generator is the AI surface the controller drives
type Generator interface {
	Analyze(ctx context.Context, sessionContext string, ideas []models.Idea) (*models.AIAnalysisResult, error)
	ClusterIdeas(ctx context.Context, sessionContext string, ideas []models.Idea) ([]models.Cluster, error)
	IdeaDetails(ctx context.Context, sessionContext string, idea models.Idea) (*models.IdeaDetails, error)
	BlogPost(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.BlogPost, error)
	PressRelease(ctx context.Context, sessionContext string, idea models.Idea, style models.Style) (*models.PressRelease, error)
	SlideOutline(ctx context.Context, sessionContext string, idea models.Idea, details *models.IdeaDetails) (*models.SlideOutline, error)
	FollowUpQuestion(ctx context.Context, sessionContext string, idea models.Idea, existing []string) string
	ChatReply(ctx context.Context, req agents.ChatRequest) (*agents.ChatReply, error)
}

const eventQueueSize = 256

type Controller struct {
	sessionID string
	store     store.Store
	ai        Generator
	cfg       settings

	lifeCtx  context.Context
	shutdown context.CancelFunc
	events   chan event
	loopDone chan struct{}

	selecting singleflight.Group

	notifyMu     sync.Mutex
	listenersMu  sync.Mutex
	listeners    map[int]func(State)
	nextListener int

	mu        sync.Mutex
	closed    bool
	version   uint64
	epoch     uint64 // bumps whenever a live run starts or the controller resets
	detailGen uint64 // bumps on every DETAIL entry and exit
	starting  bool

	phase          models.Phase
	context        string
	defaultContext string
	remoteActive   bool
	storeErr       string

	subs        []store.Unsubscribe
	subCancel   context.CancelFunc
	timerCancel context.CancelFunc
	scoreCancel context.CancelFunc

	ideas     []models.Idea
	duration  int
	countdown int

	analysis     *models.AIAnalysisResult
	analysisTask Task
	score        int
	chosenID     string
	manualID     string
	manualIdea   *models.Idea
	appendedID   string // manual idea appended to the top ideas
	reveal       Reveal
	clusters     []models.Cluster
	clusterTask  Task

	selected   *models.Idea
	details    *models.IdeaDetails
	detailTask Task
	tab        models.DetailTab
	blogTask   Task
	pressTask  Task
	slidesTask Task
	chat       []models.ChatMessage
	chatTask   Task
	followUp   string
}

// New creates a controller in MENU and starts its event loop. Call Close
// to stop it.
func New(sessionID string, st store.Store, ai Generator, opts ...Option) *Controller {
	cfg := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		sessionID: sessionID,
		store:     st,
		ai:        ai,
		cfg:       cfg,
		lifeCtx:   ctx,
		shutdown:  cancel,
		events:    make(chan event, eventQueueSize),
		loopDone:  make(chan struct{}),
		listeners: make(map[int]func(State)),
		phase:     models.PhaseMenu,
	}
	c.resetLocked()
	go c.run()
	return c
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// Close stops timers, subscriptions and the event loop. Store state is left
// untouched.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	subs, cancel := c.detachLocked()
	c.mu.Unlock()

	release(subs, cancel)
	c.shutdown()
	<-c.loopDone
}

// Setup moves MENU to SETUP and pre-fills the context with the default one
func (c *Controller) Setup(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireLocked("setup", models.PhaseMenu); err != nil {
		c.mu.Unlock()
		return err
	}
	cached := c.defaultContext
	c.mu.Unlock()

	if cached == "" {
		s, err := c.store.EnsureSession(ctx, c.sessionID)
		if err != nil {
			log.Printf("⚠️ Failed to load default context for session %s: %v", c.sessionID, err)
		} else {
			cached = s.DefaultContext
		}
	}

	c.mu.Lock()
	if err := c.requireLocked("setup", models.PhaseMenu); err != nil {
		c.mu.Unlock()
		return err
	}
	c.phase = models.PhaseSetup
	if cached != "" {
		c.defaultContext = cached
		c.context = cached
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// SetContext edits the session question while in SETUP
func (c *Controller) SetContext(text string) error {
	c.mu.Lock()
	if err := c.requireLocked("set context", models.PhaseSetup); err != nil {
		c.mu.Unlock()
		return err
	}
	c.context = text
	c.mu.Unlock()
	c.publish()
	return nil
}

// SaveDefaultContext persists the context used to pre-fill SETUP. Store
// failures are logged and swallowed.
func (c *Controller) SaveDefaultContext(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	c.mu.Lock()
	c.defaultContext = text
	c.mu.Unlock()

	err := c.store.UpdateSession(ctx, c.sessionID, models.SessionPatch{DefaultContext: models.String(text)})
	if err != nil {
		c.noteStoreError(store.Wrap("save default context", c.sessionID, err))
	}
	c.publish()
}

// StartSession moves SETUP to LIVE with a clean slate
func (c *Controller) StartSession(ctx context.Context) error {
	c.mu.Lock()
	text := c.context
	c.mu.Unlock()
	return c.startLive(ctx, "start session", models.PhaseSetup, text)
}

// startLive deletes the previous ideas, then activates the session, then
// subscribes. The order keeps a new submission from being wiped by the
// delete.
func (c *Controller) startLive(ctx context.Context, op string, from models.Phase, text string) error {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinContextLength {
		return &ValidationError{Field: "context", Reason: fmt.Sprintf("must be at least %d characters", MinContextLength)}
	}

	c.mu.Lock()
	if err := c.requireLocked(op, from); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.starting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.starting = true
	c.storeErr = ""
	c.epoch++
	epoch := c.epoch
	oldSubs, oldCancel := c.detachLocked()
	c.ideas = []models.Idea{}
	c.mu.Unlock()

	release(oldSubs, oldCancel)

	abort := func(err error) error {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
		c.publish()
		return err
	}

	if err := c.applyStorePolicy("delete ideas", c.store.DeleteIdeas(ctx, c.sessionID)); err != nil {
		return abort(err)
	}

	patch := models.SessionPatch{
		IsActive:             models.Bool(true),
		Context:              models.String(text),
		SelectedManualIdeaID: models.String(""),
	}
	if err := c.applyStorePolicy("activate session", c.store.UpdateSession(ctx, c.sessionID, patch)); err != nil {
		return abort(err)
	}

	subs, subCancel, err := c.subscribe(epoch)
	if err := c.applyStorePolicy("subscribe", err); err != nil {
		return abort(err)
	}

	c.mu.Lock()
	c.starting = false
	if c.epoch != epoch {
		c.mu.Unlock()
		release(subs, subCancel)
		c.deactivate(ctx, "deactivate superseded session")
		return ErrStaleResult
	}
	c.resetRunLocked()
	c.context = text
	c.subs, c.subCancel = subs, subCancel
	c.phase = models.PhaseLive
	c.startTimerLocked(func(tctx context.Context) { c.runDuration(tctx, epoch) })
	c.mu.Unlock()

	log.Printf("🚀 Session %s is live: %q", c.sessionID, text)
	c.publish()
	return nil
}

// StopSession closes submissions, then runs the CLOSING countdown which
// always ends in ANALYSIS. Only Reset interrupts it.
func (c *Controller) StopSession(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireLocked("stop session", models.PhaseLive); err != nil {
		c.mu.Unlock()
		return err
	}
	epoch := c.epoch
	c.stopTimerLocked()
	c.phase = models.PhaseClosing
	c.countdown = c.cfg.countdown
	c.mu.Unlock()
	c.publish()

	err := c.applyStorePolicy("deactivate session",
		c.store.UpdateSession(ctx, c.sessionID, models.SessionPatch{IsActive: models.Bool(false)}))

	c.mu.Lock()
	if c.epoch != epoch || c.phase != models.PhaseClosing {
		c.mu.Unlock()
		return ErrStaleResult
	}
	if err != nil {
		c.phase = models.PhaseLive
		c.countdown = 0
		c.startTimerLocked(func(tctx context.Context) { c.runDuration(tctx, epoch) })
		c.mu.Unlock()
		c.publish()
		return err
	}
	c.startTimerLocked(func(tctx context.Context) { c.runCountdown(tctx, epoch) })
	c.mu.Unlock()

	log.Printf("🛑 Session %s closed, countdown %d", c.sessionID, c.cfg.countdown)
	return nil
}

// CancelSession abandons a LIVE run. Submitted ideas are kept.
func (c *Controller) CancelSession(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireLocked("cancel session", models.PhaseLive); err != nil {
		c.mu.Unlock()
		return err
	}
	c.epoch++
	subs, cancel := c.detachLocked()
	c.resetLocked()
	c.mu.Unlock()

	release(subs, cancel)
	c.publish()

	log.Printf("↩️ Session %s cancelled", c.sessionID)
	return c.applyStorePolicy("cancel session",
		c.store.UpdateSession(ctx, c.sessionID, models.SessionPatch{IsActive: models.Bool(false)}))
}

// Reset returns to MENU from any phase and clears all local state. The
// store writes are best effort.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	c.epoch++
	subs, cancel := c.detachLocked()
	c.resetLocked()
	c.mu.Unlock()

	release(subs, cancel)
	c.publish()

	patch := models.SessionPatch{
		IsActive:             models.Bool(false),
		SelectedManualIdeaID: models.String(""),
	}
	if err := c.store.UpdateSession(ctx, c.sessionID, patch); err != nil {
		c.noteStoreError(store.Wrap("reset session", c.sessionID, err))
		c.publish()
	}
}

func (c *Controller) deactivate(ctx context.Context, op string) {
	err := c.store.UpdateSession(ctx, c.sessionID, models.SessionPatch{IsActive: models.Bool(false)})
	if err != nil {
		c.noteStoreError(store.Wrap(op, c.sessionID, err))
	}
}

// applyStorePolicy is the single branch deciding whether a failed critical
// write blocks a phase change.
func (c *Controller) applyStorePolicy(op string, err error) error {
	if err == nil {
		return nil
	}
	err = store.Wrap(op, c.sessionID, err)
	c.noteStoreError(err)
	if c.cfg.policy == FailClosed {
		return err
	}
	log.Printf("⚠️ Continuing despite store failure (%s)", c.cfg.policy)
	return nil
}

func (c *Controller) noteStoreError(err error) {
	log.Printf("❌ %v", err)
	c.mu.Lock()
	c.storeErr = err.Error()
	c.mu.Unlock()
}

func (c *Controller) requireLocked(op string, allowed ...models.Phase) error {
	if c.closed {
		return ErrClosed
	}
	for _, p := range allowed {
		if c.phase == p {
			return nil
		}
	}
	return &PhaseError{Op: op, Phase: c.phase}
}

// detachLocked hands back the live subscriptions and stops all timers
func (c *Controller) detachLocked() ([]store.Unsubscribe, context.CancelFunc) {
	subs, cancel := c.subs, c.subCancel
	c.subs, c.subCancel = nil, nil
	c.stopTimerLocked()
	c.stopScoreLocked()
	return subs, cancel
}

func release(subs []store.Unsubscribe, cancel context.CancelFunc) {
	if cancel != nil {
		cancel()
	}
	for _, unsub := range subs {
		unsub()
	}
}

// resetLocked is the full return to MENU
func (c *Controller) resetLocked() {
	c.phase = models.PhaseMenu
	c.starting = false
	c.remoteActive = false
	c.context = ""
	c.ideas = []models.Idea{}
	c.resetRunLocked()
}

// resetRunLocked clears everything one live run produces
func (c *Controller) resetRunLocked() {
	c.duration = 0
	c.countdown = 0
	c.analysis = nil
	c.analysisTask = Task{Status: StatusNotGenerated}
	c.score = 0
	c.chosenID = ""
	c.manualID = ""
	c.manualIdea = nil
	c.appendedID = ""
	c.reveal = Reveal{}
	c.clusters = nil
	c.clusterTask = Task{Status: StatusNotGenerated}
	c.clearDetailLocked()
}

func (c *Controller) clearDetailLocked() {
	c.detailGen++
	c.selected = nil
	c.details = nil
	c.detailTask = Task{Status: StatusNotGenerated}
	c.tab = ""
	c.blogTask = Task{Status: StatusNotGenerated}
	c.pressTask = Task{Status: StatusNotGenerated}
	c.slidesTask = Task{Status: StatusNotGenerated}
	c.chat = nil
	c.chatTask = Task{Status: StatusNotGenerated}
	c.followUp = ""
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	now := c.cfg.clock()
	st := State{
		Version:          c.version,
		SessionID:        c.sessionID,
		Phase:            c.phase,
		Context:          c.context,
		DefaultContext:   c.defaultContext,
		RemoteActive:     c.remoteActive,
		StoreError:       c.storeErr,
		Ideas:            models.CloneIdeas(c.ideas),
		DurationSeconds:  c.duration,
		Countdown:        c.countdown,
		Analysis:         cloneAnalysis(c.analysis),
		AnalysisTask:     c.analysisTask.snapshot(agents.KindAnalyze, now),
		AnimatedScore:    c.score,
		ChosenIdeaID:     c.chosenID,
		ManualIdeaID:     c.manualID,
		Reveal:           c.reveal,
		Clusters:         append([]models.Cluster(nil), c.clusters...),
		ClusterTask:      c.clusterTask.snapshot(agents.KindClusterIdeas, now),
		Details:          cloneDetails(c.details),
		DetailTask:       c.detailTask.snapshot(agents.KindIdeaDetails, now),
		Tab:              c.tab,
		BlogTask:         c.blogTask.snapshot(agents.KindBlogPost, now),
		PressTask:        c.pressTask.snapshot(agents.KindPressRelease, now),
		SlidesTask:       c.slidesTask.snapshot(agents.KindSlideOutline, now),
		Chat:             append([]models.ChatMessage(nil), c.chat...),
		ChatTask:         c.chatTask.snapshot(agents.KindChatReply, now),
		FollowUpQuestion: c.followUp,
	}
	if c.selected != nil {
		idea := *c.selected
		st.SelectedIdea = &idea
	}
	return st
}

// Subscribe calls fn with the current state and after every change.
// fn runs on the controller's goroutines and must not block or call back
// into the controller.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.notifyMu.Lock()
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenersMu.Unlock()
	fn(c.Snapshot())
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, id)
			c.listenersMu.Unlock()
		})
	}
}

func (c *Controller) publish() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.version++
	st := c.snapshotLocked()
	c.mu.Unlock()

	c.listenersMu.Lock()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
