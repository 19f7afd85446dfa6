package session

import (
	"time"

	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/models"
)

// Status is the lifecycle of one AI generation as shown to the operator
type Status string

const (
	StatusNotGenerated Status = "NOT_GENERATED"
	StatusGenerating   Status = "GENERATING"
	StatusGenerated    Status = "GENERATED"
	StatusFailed       Status = "FAILED"
)

// Task tracks one AI generation
type Task struct {
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	Progress  int       `json:"progress"`
}

func (t *Task) start(now time.Time) {
	*t = Task{Status: StatusGenerating, StartedAt: now}
}

func (t *Task) succeed() {
	t.Status = StatusGenerated
	t.Error = ""
}

func (t *Task) fail(err error) {
	t.Status = StatusFailed
	t.Error = err.Error()
}

func (t Task) running() bool {
	return t.Status == StatusGenerating
}

// snapshot fills in the time-based progress estimate
func (t Task) snapshot(kind agents.Kind, now time.Time) Task {
	switch t.Status {
	case StatusGenerated:
		t.Progress = 100
	case StatusGenerating:
		t.Progress = agents.EstimateProgress(now.Sub(t.StartedAt), agents.ProgressScale(kind), false)
	default:
		t.Progress = 0
	}
	return t
}

// Reveal is the two-step drumroll selection
type Reveal struct {
	StagedID  string `json:"stagedId,omitempty"`
	Revealing bool   `json:"revealing"`
	Revealed  bool   `json:"revealed"`
}

// State is a point-in-time copy of a controller, safe to hand to UIs
type State struct {
	Version        uint64       `json:"version"`
	SessionID      string       `json:"sessionId"`
	Phase          models.Phase `json:"phase"`
	Context        string       `json:"context"`
	DefaultContext string       `json:"defaultContext,omitempty"`
	RemoteActive   bool         `json:"remoteActive"`
	StoreError     string       `json:"storeError,omitempty"`

	Ideas           []models.Idea `json:"ideas"`
	DurationSeconds int           `json:"durationSeconds"`
	Countdown       int           `json:"countdown"`

	Analysis      *models.AIAnalysisResult `json:"analysis,omitempty"`
	AnalysisTask  Task                     `json:"analysisTask"`
	AnimatedScore int                      `json:"animatedScore"`
	ChosenIdeaID  string                   `json:"chosenIdeaId,omitempty"`
	ManualIdeaID  string                   `json:"manualIdeaId,omitempty"`
	Reveal        Reveal                   `json:"reveal"`
	Clusters      []models.Cluster         `json:"clusters,omitempty"`
	ClusterTask   Task                     `json:"clusterTask"`

	SelectedIdea *models.Idea        `json:"selectedIdea,omitempty"`
	Details      *models.IdeaDetails `json:"details,omitempty"`
	DetailTask   Task                `json:"detailTask"`
	Tab          models.DetailTab    `json:"tab,omitempty"`
	BlogTask     Task                `json:"blogTask"`
	PressTask    Task                `json:"pressTask"`
	SlidesTask   Task                `json:"slidesTask"`

	Chat             []models.ChatMessage `json:"chat,omitempty"`
	ChatTask         Task                 `json:"chatTask"`
	FollowUpQuestion string               `json:"followUpQuestion,omitempty"`
}

func cloneAnalysis(a *models.AIAnalysisResult) *models.AIAnalysisResult {
	if a == nil {
		return nil
	}
	out := *a
	out.TopIdeas = models.CloneIdeas(a.TopIdeas)
	out.Keywords = append([]string(nil), a.Keywords...)
	return &out
}

func cloneDetails(d *models.IdeaDetails) *models.IdeaDetails {
	if d == nil {
		return nil
	}
	out := *d
	out.PBIs = append([]models.PBI(nil), d.PBIs...)
	if d.Blog != nil {
		b := *d.Blog
		out.Blog = &b
	}
	if d.PressRelease != nil {
		p := *d.PressRelease
		out.PressRelease = &p
	}
	if d.SlideOutline != nil {
		s := models.SlideOutline{Slides: append([]models.Slide(nil), d.SlideOutline.Slides...)}
		out.SlideOutline = &s
	}
	return &out
}
