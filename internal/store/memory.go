package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shubh-37/idea-processor/internal/models"
)

// Memory is a process-local Store. It is used in tests and when no
// DATABASE_URL is configured.
type Memory struct {
	// notifyMu serializes mutation+delivery so subscribers see snapshots in order
	notifyMu sync.Mutex
	mu       sync.Mutex

	sessions map[string]models.Session
	ideas    map[string][]models.Idea
	codes    map[string]string // code -> session id
	reports  map[string][]models.Report

	ideaSubs    map[string]map[int]func([]models.Idea)
	sessionSubs map[string]map[int]func(models.Session)
	nextSub     int

	failures map[string]error
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions:    make(map[string]models.Session),
		ideas:       make(map[string][]models.Idea),
		codes:       make(map[string]string),
		reports:     make(map[string][]models.Report),
		ideaSubs:    make(map[string]map[int]func([]models.Idea)),
		sessionSubs: make(map[string]map[int]func(models.Session)),
		failures:    make(map[string]error),
		now:         time.Now,
	}
}

// Fail makes every call of op return err until Fail(op, nil) is called.
// op is the method name, e.g. "DeleteIdeas".
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *Memory) failure(op, sessionID string) error {
	if err, ok := m.failures[op]; ok {
		return Wrap(op, sessionID, err)
	}
	return nil
}

func (m *Memory) GetSession(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("GetSession", id); err != nil {
		return nil, err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) EnsureSession(ctx context.Context, id string) (*models.Session, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("EnsureSession", id); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	s, ok := m.sessions[id]
	if ok {
		m.mu.Unlock()
		return &s, nil
	}
	s = *models.NewSession(id)
	s.UpdatedAt = m.now()
	m.sessions[id] = s
	subs := m.sessionSubscribers(id)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return &s, nil
}

func (m *Memory) UpdateSession(ctx context.Context, id string, patch models.SessionPatch) error {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("UpdateSession", id); err != nil {
		m.mu.Unlock()
		return err
	}
	s, ok := m.sessions[id]
	if !ok {
		s = *models.NewSession(id)
	}
	patch.Apply(&s, m.now())
	m.sessions[id] = s
	subs := m.sessionSubscribers(id)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return nil
}

func (m *Memory) FindActiveSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("FindActiveSession", ""); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s := m.sessions[id]; s.IsActive {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AddIdea(ctx context.Context, sessionID string, idea models.Idea) (string, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("AddIdea", sessionID); err != nil {
		m.mu.Unlock()
		return "", err
	}
	idea.ID = uuid.New().String()
	if idea.Timestamp == 0 {
		idea.Timestamp = m.now().UnixMilli()
	}
	m.ideas[sessionID] = append(m.ideas[sessionID], idea)
	snapshot := m.sortedIdeas(sessionID)
	subs := m.ideaSubscribers(sessionID)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(models.CloneIdeas(snapshot))
	}
	return idea.ID, nil
}

func (m *Memory) ListIdeas(ctx context.Context, sessionID string) ([]models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("ListIdeas", sessionID); err != nil {
		return nil, err
	}
	return m.sortedIdeas(sessionID), nil
}

func (m *Memory) DeleteIdeas(ctx context.Context, sessionID string) error {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("DeleteIdeas", sessionID); err != nil {
		m.mu.Unlock()
		return err
	}
	delete(m.ideas, sessionID)
	subs := m.ideaSubscribers(sessionID)
	m.mu.Unlock()

	for _, fn := range subs {
		fn([]models.Idea{})
	}
	return nil
}

func (m *Memory) LookupCode(ctx context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("LookupCode", ""); err != nil {
		return "", err
	}
	id, ok := m.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (m *Memory) AssignCode(ctx context.Context, sessionID, code string) error {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("AssignCode", sessionID); err != nil {
		m.mu.Unlock()
		return err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if owner, ok := m.codes[code]; ok && owner != sessionID {
		m.mu.Unlock()
		return ErrCodeTaken
	}
	for c, owner := range m.codes {
		if owner == sessionID {
			delete(m.codes, c)
		}
	}
	m.codes[code] = sessionID

	s, ok := m.sessions[sessionID]
	if !ok {
		s = *models.NewSession(sessionID)
	}
	s.AccessCode = code
	s.UpdatedAt = m.now()
	m.sessions[sessionID] = s
	subs := m.sessionSubscribers(sessionID)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return nil
}

func (m *Memory) SaveReport(ctx context.Context, report *models.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("SaveReport", report.SessionID); err != nil {
		return "", err
	}
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = m.now()
	}
	m.reports[report.SessionID] = append(m.reports[report.SessionID], *report)
	return report.ID, nil
}

func (m *Memory) ListReports(ctx context.Context, sessionID string) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("ListReports", sessionID); err != nil {
		return nil, err
	}
	out := make([]models.Report, len(m.reports[sessionID]))
	copy(out, m.reports[sessionID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

func (m *Memory) SubscribeIdeas(ctx context.Context, sessionID string, fn func([]models.Idea)) (Unsubscribe, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("SubscribeIdeas", sessionID); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	id := m.nextSub
	m.nextSub++
	if m.ideaSubs[sessionID] == nil {
		m.ideaSubs[sessionID] = make(map[int]func([]models.Idea))
	}
	m.ideaSubs[sessionID][id] = fn
	snapshot := m.sortedIdeas(sessionID)
	m.mu.Unlock()

	fn(snapshot)

	unsub := m.unsubscriber(func() { delete(m.ideaSubs[sessionID], id) })
	stopOnDone(ctx, unsub)
	return unsub, nil
}

func (m *Memory) SubscribeSession(ctx context.Context, sessionID string, fn func(models.Session)) (Unsubscribe, error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if err := m.failure("SubscribeSession", sessionID); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	id := m.nextSub
	m.nextSub++
	if m.sessionSubs[sessionID] == nil {
		m.sessionSubs[sessionID] = make(map[int]func(models.Session))
	}
	m.sessionSubs[sessionID][id] = fn
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()

	if ok {
		fn(s)
	}

	unsub := m.unsubscriber(func() { delete(m.sessionSubs[sessionID], id) })
	stopOnDone(ctx, unsub)
	return unsub, nil
}

func (m *Memory) unsubscriber(remove func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			remove()
			m.mu.Unlock()
		})
	}
}

func stopOnDone(ctx context.Context, unsub Unsubscribe) {
	if ctx.Done() == nil {
		return
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
}

// callers hold m.mu
func (m *Memory) sortedIdeas(sessionID string) []models.Idea {
	out := models.CloneIdeas(m.ideas[sessionID])
	if out == nil {
		out = []models.Idea{}
	}
	models.SortIdeas(out)
	return out
}

func (m *Memory) ideaSubscribers(sessionID string) []func([]models.Idea) {
	subs := make([]func([]models.Idea), 0, len(m.ideaSubs[sessionID]))
	for _, fn := range m.ideaSubs[sessionID] {
		subs = append(subs, fn)
	}
	return subs
}

func (m *Memory) sessionSubscribers(sessionID string) []func(models.Session) {
	subs := make([]func(models.Session), 0, len(m.sessionSubs[sessionID]))
	for _, fn := range m.sessionSubs[sessionID] {
		subs = append(subs, fn)
	}
	return subs
}
