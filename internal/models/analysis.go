package models

// NoIdeasSummary is the summary used when a session closes without submissions
const NoIdeasSummary = "Geen ideeën ingediend."

// MaxTopIdeas is the AI top 3 plus one manually selected idea
const MaxTopIdeas = 4

// AIAnalysisResult is recomputed each time a session enters ANALYSIS
type AIAnalysisResult struct {
	Summary         string   `json:"summary"`
	TopIdeas        []Idea   `json:"topIdeas"`
	Headline        string   `json:"headline"`
	InnovationScore int      `json:"innovationScore"`
	Keywords        []string `json:"keywords"`
}

// EmptyAnalysis is the zero-score result for a session without ideas
func EmptyAnalysis() *AIAnalysisResult {
	return &AIAnalysisResult{
		Summary:         NoIdeasSummary,
		TopIdeas:        []Idea{},
		Headline:        "",
		InnovationScore: 0,
		Keywords:        []string{},
	}
}

// ContainsIdea reports whether id is one of the top ideas
func (a *AIAnalysisResult) ContainsIdea(id string) bool {
	if a == nil {
		return false
	}
	_, ok := FindIdea(a.TopIdeas, id)
	return ok
}

// Cluster is an AI-proposed grouping of similar ideas
type Cluster struct {
	ID              string   `json:"id" jsonschema:"required"`
	Name            string   `json:"name" jsonschema:"required"`
	Summary         string   `json:"summary" jsonschema:"required"`
	OriginalIdeaIDs []string `json:"originalIdeaIds" jsonschema:"required"`
}

// AsIdea converts the cluster into the synthetic idea used for manual selection
func (c Cluster) AsIdea() Idea {
	return Idea{
		ID:      c.ID,
		Name:    c.Name,
		Content: c.Summary,
	}
}
