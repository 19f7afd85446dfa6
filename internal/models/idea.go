package models

import (
	"sort"
	"strings"
	"time"
)

// Idea is one participant submission
type Idea struct {
	ID        string `json:"id" jsonschema:"required"`
	Name      string `json:"name" jsonschema:"required"`
	Content   string `json:"content" jsonschema:"required"`
	Timestamp int64  `json:"timestamp"` // client-observed epoch millis
}

// NewIdea creates an idea with trimmed fields and the current timestamp
func NewIdea(name, content string) *Idea {
	return &Idea{
		Name:      strings.TrimSpace(name),
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now().UnixMilli(),
	}
}

// SortIdeas orders ideas by timestamp ascending; ties are broken by id.
func SortIdeas(ideas []Idea) {
	sort.SliceStable(ideas, func(i, j int) bool {
		if ideas[i].Timestamp != ideas[j].Timestamp {
			return ideas[i].Timestamp < ideas[j].Timestamp
		}
		return ideas[i].ID < ideas[j].ID
	})
}

// FindIdea returns the idea with the given id
func FindIdea(ideas []Idea, id string) (Idea, bool) {
	for _, idea := range ideas {
		if idea.ID == id {
			return idea, true
		}
	}
	return Idea{}, false
}

// CloneIdeas returns a copy safe to hand to another goroutine
func CloneIdeas(ideas []Idea) []Idea {
	if ideas == nil {
		return nil
	}
	out := make([]Idea, len(ideas))
	copy(out, ideas)
	return out
}
