package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/gate"
	"github.com/shubh-37/idea-processor/internal/linear"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/shubh-37/idea-processor/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
)

type testEnv struct {
	srv   *Server
	ai    *fakeAI
	store *store.Memory
	hub   *session.Hub
}

func newTestEnv(t *testing.T, mutate ...func(*Deps)) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	mem := store.NewMemory()
	ai := newFakeAI()
	hub := session.NewHub(mem, ai,
		session.WithTick(5*time.Millisecond),
		session.WithCountdown(2),
		session.WithScoreAnimation(time.Millisecond, 10),
	)
	t.Cleanup(hub.Close)

	deps := Deps{
		AI:          ai,
		Hub:         hub,
		Store:       mem,
		Gate:        gate.New(mem, gate.NewThrottle(gate.NewMemoryCounterStore())),
		Codes:       gate.NewRegistry(mem),
		Admin:       gate.NewAdminAuth(gate.AdminSettings{Email: adminEmail, PasswordHash: string(hash), JWTSecret: strings.Repeat("s", 32)}, gate.NewThrottle(gate.NewMemoryCounterStore())),
		Submissions: submission.New(mem, submission.NewMemoryCooldown(time.Minute)),
		Metrics:     NewMetrics(),
		RateLimit:   1000,
	}
	for _, m := range mutate {
		m(&deps)
	}
	return &testEnv{srv: NewServer(deps), ai: ai, store: mem, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/admin/login", credentials(adminEmail, adminPassword), "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

func credentials(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

func decodeError(t *testing.T, body []byte) ErrorBody {
	t.Helper()
	var out ErrorBody
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, healthMessage, string(body))
}

func TestAIProxy(t *testing.T) {
	idea := models.Idea{ID: "i1", Name: "Ann", Content: "Groene daken"}

	tests := []struct {
		name      string
		path      string
		body      any
		setup     func(*fakeAI)
		status    int
		wantError string
		wantBody  string
	}{
		{name: "analyze without ideas", path: "/api/analyze", body: map[string]any{"context": "x"}, status: 400, wantError: "No ideas provided"},
		{name: "analyze", path: "/api/analyze", body: map[string]any{"context": "x", "ideas": []models.Idea{idea}}, status: 200, wantBody: `"innovationScore":64`},
		{name: "analyze not configured", path: "/api/analyze", body: map[string]any{"ideas": []models.Idea{idea}}, setup: func(f *fakeAI) { f.analyzeErr = agents.ErrNotConfigured }, status: 500, wantError: "Server Error: API Key not configured"},
		{name: "analyze model failure", path: "/api/analyze", body: map[string]any{"ideas": []models.Idea{idea}}, setup: func(f *fakeAI) {
			f.analyzeErr = &agents.AIError{Kind: agents.KindAnalyze, Model: "m", Err: agents.ErrNoJSON}
		}, status: 502, wantError: "AI generation failed"},
		{name: "details without idea", path: "/api/generate-details", body: map[string]any{"context": "x"}, status: 400, wantError: "No idea provided"},
		{name: "details", path: "/api/generate-details", body: map[string]any{"idea": idea}, status: 200, wantBody: `"rationale":"Goed idee"`},
		{name: "blog style", path: "/api/generate-blog", body: map[string]any{"idea": idea, "style": "humor"}, status: 200, wantBody: `"title":"Blog humor"`},
		{name: "blog unknown style", path: "/api/generate-blog", body: map[string]any{"idea": idea, "style": "??"}, status: 200, wantBody: `"title":"Blog zakelijk"`},
		{name: "press release", path: "/api/generate-press-release", body: map[string]any{"idea": idea}, status: 200, wantBody: `"location":"Delft"`},
		{name: "slides without details", path: "/api/generate-slides", body: map[string]any{"idea": idea}, status: 400, wantError: "No details provided"},
		{name: "slides", path: "/api/generate-slides", body: map[string]any{"idea": idea, "details": map[string]any{"rationale": "R"}}, status: 200, wantBody: `"content":["R"]`},
		{name: "clusters", path: "/api/cluster-ideas", body: map[string]any{"ideas": []models.Idea{idea}}, status: 200, wantBody: `"originalIdeaIds":["i1"]`},
		{name: "chat", path: "/api/chat", body: map[string]any{"idea": idea, "currentRole": "INVESTOR", "history": []models.ChatMessage{{Role: "user", Content: "ROI?"}}}, status: 200, wantBody: `"text":"Professor Investor zegt ja"`},
		{name: "chat unknown role", path: "/api/chat", body: map[string]any{"idea": idea, "currentRole": "CEO", "history": []models.ChatMessage{{Role: "user", Content: "?"}}}, status: 400, wantError: "Validation failed"},
		{name: "chat without history", path: "/api/chat", body: map[string]any{"idea": idea, "currentRole": "SALES"}, status: 400, wantError: "Validation failed"},
		{name: "follow-up without content", path: "/api/generate-follow-up-question", body: map[string]any{"idea": map[string]string{"name": "Ann"}}, status: 400, wantError: "No idea or content provided"},
		{name: "follow-up", path: "/api/generate-follow-up-question", body: map[string]any{"idea": idea}, status: 200, wantBody: `"question":"Hoe kunnen we het idee \"Ann\"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env.ai)
			}
			resp, body := env.do(t, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, body).Error)
			}
			if tt.wantBody != "" {
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	env := newTestEnv(t)
	env.store.Fail("GetSession", errors.New("connection reset by peer"))

	resp, body := env.do(t, http.MethodGet, "/api/sessions/s1/status", nil, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := decodeError(t, body)
	assert.Equal(t, "Internal Server Error", e.Error)
	assert.NotContains(t, e.Message, "connection reset")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.RateLimit = 2 })

	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, http.MethodGet, "/api/sessions/s1/status", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	resp, body := env.do(t, http.MethodGet, "/api/sessions/s1/status", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, decodeError(t, body).Error, "Too many requests")

	resp, _ = env.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not limited")
}

func TestParticipantAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.store.UpdateSession(ctx, "s1", models.SessionPatch{IsActive: models.Bool(true)}))
	require.NoError(t, env.store.AssignCode(ctx, "s1", "ABC123"))

	resp, body := env.do(t, http.MethodPost, "/api/sessions/access", map[string]string{"code": " abc123 "}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"outcome":"admitted"`)
	assert.Contains(t, string(body), `"sessionId":"s1"`)

	for i := 0; i < gate.DefaultMaxAttempts; i++ {
		resp, _ = env.do(t, http.MethodPost, "/api/sessions/access", map[string]string{"code": "WRONG1"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body = env.do(t, http.MethodPost, "/api/sessions/access", map[string]string{"code": "ABC123"}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(body), `"outcome":"locked_out"`)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))
}

func TestParticipantClosedSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.store.AssignCode(ctx, "s1", "ABC123"))

	resp, body := env.do(t, http.MethodPost, "/api/sessions/access", map[string]string{"code": "ABC123"}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), `"outcome":"session_closed"`)

	resp, body = env.do(t, http.MethodPost, "/api/sessions/s1/ideas", map[string]string{"name": "Ann", "content": "Een goed idee"}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Session closed", decodeError(t, body).Error)
}

func TestSubmitIdea(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.store.UpdateSession(ctx, "s1", models.SessionPatch{IsActive: models.Bool(true), Context: models.String("Vraag?")}))

	resp, body := env.do(t, http.MethodGet, "/api/sessions/s1/status", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"isActive":true`)
	assert.Contains(t, string(body), `"context":"Vraag?"`)

	resp, body = env.do(t, http.MethodPost, "/api/sessions/s1/ideas", map[string]any{"name": "Ann", "content": "Meer groen", "deviceId": "d1"}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodPost, "/api/sessions/s1/ideas", map[string]any{"name": "Ann", "content": "Nog meer groen", "deviceId": "d1"}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	resp, body = env.do(t, http.MethodPost, "/api/sessions/s1/ideas", map[string]any{"name": "Bo", "content": "kort", "deviceId": "d2"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, body).Message, "content must be at least 5")

	ideas, err := env.store.ListIdeas(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, ideas, 1)
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/admin/sessions/s1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/admin/sessions/s1", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/admin/login", credentials(adminEmail, "wrong"), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", decodeError(t, body).Error)

	resp, _ = env.do(t, http.MethodPost, "/api/admin/login", credentials("not-an-email", "x"), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	token := env.login(t)
	env.hub.Get("s1")
	resp, body = env.do(t, http.MethodGet, "/api/admin/sessions/s1", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"phase":"MENU"`)
}

func TestReadsDoNotStartControllers(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	for _, path := range []string{
		"/api/admin/sessions/ghost",
		"/api/admin/sessions/ghost/backlog.csv",
	} {
		resp, _ := env.do(t, http.MethodGet, path, nil, token)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	resp, _ := env.do(t, http.MethodPost, "/api/admin/sessions/ghost/reports", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/ws/sessions/ghost?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, err := env.srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, ok := env.hub.Lookup("ghost")
	assert.False(t, ok)
	assert.Empty(t, env.hub.SessionIDs())
}

func TestAdminLoginLockout(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < gate.DefaultMaxAttempts; i++ {
		env.do(t, http.MethodPost, "/api/admin/login", credentials(adminEmail, "wrong"), "")
	}
	resp, body := env.do(t, http.MethodPost, "/api/admin/login", credentials(adminEmail, adminPassword), "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many login attempts", decodeError(t, body).Error)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

type stateBody struct {
	State  session.State   `json:"state"`
	Result json.RawMessage `json:"result"`
}

func (e *testEnv) control(t *testing.T, token, method, path string, body any) (int, stateBody) {
	t.Helper()
	resp, raw := e.do(t, method, "/api/admin/sessions/s1"+path, body, token)
	var out stateBody
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

type fakeExporter struct{ pbis int }

func (f *fakeExporter) ExportBacklog(ctx context.Context, sessionID string, idea models.Idea, pbis []models.PBI) ([]linear.Issue, error) {
	f.pbis += len(pbis)
	issues := make([]linear.Issue, len(pbis))
	for i, p := range pbis {
		issues[i] = linear.Issue{ID: p.ID, Identifier: "EXA-" + p.ID, Title: p.Title}
	}
	return issues, nil
}

func TestAdminSessionFlow(t *testing.T) {
	ctx := context.Background()
	exporter := &fakeExporter{}
	env := newTestEnv(t, func(d *Deps) { d.Backlog = exporter })
	token := env.login(t)

	status, _ := env.control(t, token, http.MethodPost, "/stop", nil)
	assert.Equal(t, http.StatusConflict, status, "stop is not allowed in MENU")

	status, out := env.control(t, token, http.MethodPost, "/setup", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PhaseSetup, out.State.Phase)

	status, _ = env.control(t, token, http.MethodPost, "/start", map[string]string{"context": "kort"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = env.control(t, token, http.MethodPost, "/start", map[string]string{"context": "Hoe vergroenen we Delft?"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PhaseLive, out.State.Phase)

	resp, body := env.do(t, http.MethodPost, "/api/admin/sessions/s1/code", map[string]string{"code": "grn42"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"code":"GRN42"`)

	for i, content := range []string{"Groene daken overal", "Fietsroutes uitbreiden"} {
		resp, body := env.do(t, http.MethodPost, "/api/sessions/s1/ideas", map[string]any{"name": "P", "content": content, "deviceId": string(rune('a' + i))}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}
	require.Eventually(t, func() bool { return len(env.hub.Get("s1").Snapshot().Ideas) == 2 }, time.Second, 5*time.Millisecond)

	status, _ = env.control(t, token, http.MethodPost, "/stop", nil)
	require.Equal(t, http.StatusOK, status)
	require.Eventually(t, func() bool {
		st := env.hub.Get("s1").Snapshot()
		return st.Phase == models.PhaseAnalysis && st.AnalysisTask.Status == session.StatusGenerated
	}, 2*time.Second, 5*time.Millisecond)

	st := env.hub.Get("s1").Snapshot()
	chosen := st.Analysis.TopIdeas[1].ID
	status, _ = env.control(t, token, http.MethodPost, "/choose", map[string]string{"ideaId": "nope"})
	assert.Equal(t, http.StatusNotFound, status)
	status, out = env.control(t, token, http.MethodPost, "/choose", map[string]string{"ideaId": chosen})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, chosen, out.State.ChosenIdeaID)

	status, out = env.control(t, token, http.MethodPost, "/select", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PhaseDetail, out.State.Phase)
	assert.Contains(t, string(out.Result), "Goed idee")

	status, out = env.control(t, token, http.MethodPut, "/tab", map[string]string{"tab": "backlog"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.TabBacklog, out.State.Tab)

	status, out = env.control(t, token, http.MethodPost, "/blog", map[string]string{"style": "spannend"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Blog spannend", out.State.Details.Blog.Title)

	status, out = env.control(t, token, http.MethodPost, "/chat", map[string]string{"persona": "SALES", "text": "Verkoopt dit?"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(out.Result), "Professor Sales")
	assert.Len(t, out.State.Chat, 2)

	resp, body = env.do(t, http.MethodPost, "/api/admin/sessions/s1/reports", map[string]string{"type": "pdf"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var meta reportMeta
	require.NoError(t, json.Unmarshal(body, &meta))
	assert.True(t, strings.HasPrefix(meta.Name, "Exact_Idea_P_"))

	resp, body = env.do(t, http.MethodGet, "/api/admin/sessions/s1/reports", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "base64")

	resp, body = env.do(t, http.MethodGet, "/api/admin/sessions/s1/reports/"+meta.ID, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), meta.Name)

	resp, body = env.do(t, http.MethodGet, "/api/admin/sessions/s1/backlog.csv", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Title,Story Points,Description")

	resp, _ = env.do(t, http.MethodGet, "/api/admin/sessions/s1/backlog.pdf", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/admin/sessions/s1/backlog/linear", nil, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"identifier":"EXA-PBI-001"`)
	assert.Equal(t, 1, exporter.pbis)

	status, out = env.control(t, token, http.MethodPost, "/back", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PhaseAnalysis, out.State.Phase)

	status, out = env.control(t, token, http.MethodPost, "/reset", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PhaseMenu, out.State.Phase)

	s, err := env.store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, s.IsActive)

	resp, body = env.do(t, http.MethodGet, "/api/admin/sessions/", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"sessionId":"s1"`)
}

func TestReportNeedsDetails(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.hub.Get("s1")
	resp, body := env.do(t, http.MethodPost, "/api/admin/sessions/s1/reports", nil, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Nothing to export", decodeError(t, body).Error)

	resp, _ = env.do(t, http.MethodPost, "/api/admin/sessions/s1/reports", map[string]string{"type": "docx"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPost, "/api/admin/sessions/s1/backlog/linear", nil, token)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, "Linear export not configured", decodeError(t, body).Error)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/ws/sessions/s1", nil, "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.srv.deps.Metrics.ObserveAICall(agents.KindAnalyze, "gpt-4o", time.Second, nil)
	env.srv.deps.Metrics.ObserveAICall(agents.KindAnalyze, "gpt-4o", time.Second, errors.New("boom"))
	env.do(t, http.MethodGet, "/api/sessions/missing/status", nil, "")

	resp, body := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `ai_calls_total{kind="analyze",model="gpt-4o",outcome="error"} 1`)
	assert.Contains(t, text, `http_requests_total{method="GET",route="/api/sessions/:id/status",status="404"} 1`)
}

func TestSlackMount(t *testing.T) {
	called := false
	env := newTestEnv(t, func(d *Deps) {
		d.Slack = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})
	})
	resp, _ := env.do(t, http.MethodPost, "/slack/events", map[string]string{"type": "event_callback"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, called)
}
