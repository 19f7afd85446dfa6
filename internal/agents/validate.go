package agents

import (
	"fmt"
	"math"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, fmt.Sprintf(format, args...))
}

// buildAnalysis maps the model's choice of ids back onto the submitted ideas.
// Unknown ids are dropped; when none remain the first three ideas are used.
func buildAnalysis(resp analyzeResponse, ideas []models.Idea) (*models.AIAnalysisResult, error) {
	if resp.InnovationScore == nil {
		return nil, invalid("innovationScore missing")
	}

	top := make([]models.Idea, 0, 3)
	seen := make(map[string]bool)
	for _, id := range resp.TopIdeaIDs {
		if seen[id] || len(top) == 3 {
			continue
		}
		if idea, ok := models.FindIdea(ideas, id); ok {
			top = append(top, idea)
			seen[id] = true
		}
	}
	if len(top) == 0 {
		top = append(top, ideas[:min(3, len(ideas))]...)
	}

	summary := strings.TrimSpace(resp.Summary)
	if summary == "" {
		summary = "Geen samenvatting beschikbaar."
	}
	headline := strings.TrimSpace(resp.Headline)
	if headline == "" {
		headline = "Innovatie Sessie"
	}
	keywords := resp.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	score := int(math.Round(*resp.InnovationScore))
	score = max(0, min(100, score))

	return &models.AIAnalysisResult{
		Summary:         summary,
		TopIdeas:        top,
		Headline:        headline,
		InnovationScore: score,
		Keywords:        keywords,
	}, nil
}

// validateClusters drops unknown idea ids and rejects empty groupings
func validateClusters(clusters []models.Cluster, ideas []models.Idea) ([]models.Cluster, error) {
	if len(clusters) == 0 {
		return nil, invalid("no clusters")
	}

	out := make([]models.Cluster, 0, len(clusters))
	usedIDs := make(map[string]bool)
	for i, c := range clusters {
		members := make([]string, 0, len(c.OriginalIdeaIDs))
		for _, id := range c.OriginalIdeaIDs {
			if _, ok := models.FindIdea(ideas, id); ok {
				members = append(members, id)
			}
		}
		if len(members) == 0 {
			return nil, invalid("cluster %d has no known ideas", i+1)
		}
		if strings.TrimSpace(c.Summary) == "" {
			return nil, invalid("cluster %d has no summary", i+1)
		}

		c.OriginalIdeaIDs = members
		if c.ID == "" || usedIDs[c.ID] {
			c.ID = fmt.Sprintf("cluster-%d", i+1)
		}
		if strings.TrimSpace(c.Name) == "" {
			c.Name = fmt.Sprintf("Cluster idee #%d", i+1)
		}
		usedIDs[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

func validateDetails(d *models.IdeaDetails) error {
	switch {
	case strings.TrimSpace(d.Rationale) == "":
		return invalid("rationale missing")
	case len(d.Steps) == 0:
		return invalid("steps missing")
	case len(d.PBIs) == 0:
		return invalid("pbis missing")
	case strings.TrimSpace(d.BusinessCase.ProblemStatement) == "":
		return invalid("businessCase missing")
	}
	for i, pbi := range d.PBIs {
		if strings.TrimSpace(pbi.Title) == "" {
			return invalid("pbi %d has no title", i+1)
		}
		if pbi.StoryPoints <= 0 {
			return invalid("pbi %d has no story points", i+1)
		}
	}
	return nil
}

func validateText(kind Kind, title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return invalid("%s needs title and content", kind)
	}
	return nil
}

func validateSlides(o *models.SlideOutline) error {
	if len(o.Slides) == 0 {
		return invalid("no slides")
	}
	for i, s := range o.Slides {
		if strings.TrimSpace(s.Title) == "" {
			return invalid("slide %d has no title", i+1)
		}
	}
	return nil
}
