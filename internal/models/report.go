package models

import "time"

const (
	ReportTypePDF  = "pdf"
	ReportTypeDeck = "deck"
)

// Report is an archived export artifact stored as a base64 blob
type Report struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Name        string    `json:"name"`
	IdeaName    string    `json:"ideaName"`
	GeneratedAt time.Time `json:"generatedAt"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
}
