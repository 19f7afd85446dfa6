// Package export renders session results into downloadable files. Every
// builder is a pure function of already-fetched data.
package export

import (
	"regexp"
	"strings"
	"time"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Artifact is one rendered file
type Artifact struct {
	Name        string
	ContentType string
	Type        string // models.ReportTypePDF or models.ReportTypeDeck for archivable artifacts
	IdeaName    string
	GeneratedAt time.Time
	Pages       int
	Data        []byte
}

var whitespace = regexp.MustCompile(`\s+`)

func fileSafe(name string) string {
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" {
		return "Idee"
	}
	return name
}

// ReportName is Exact_Idea_<idea name>_<UTC timestamp>.pdf with whitespace
// runs replaced by underscores and ':' and '.' replaced by '-'.
func ReportName(ideaName string, at time.Time) string {
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "Exact_Idea_" + fileSafe(ideaName) + "_" + stamp + ".pdf"
}

// DeckName names a slide deck export
func DeckName(ideaName string, at time.Time) string {
	return strings.Replace(ReportName(ideaName, at), "Exact_Idea_", "Exact_Deck_", 1)
}

// BacklogName names a PBI export; ext is "csv" or "xlsx"
func BacklogName(ideaName, ext string) string {
	return "PBI_" + fileSafe(ideaName) + "." + ext
}
