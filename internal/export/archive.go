package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
)

// ReportSaver is the part of the session store that keeps reports
type ReportSaver interface {
	SaveReport(ctx context.Context, report *models.Report) (string, error)
}

var ErrNotArchivable = errors.New("artifact type cannot be archived")

// Archive stores the artifact as a self-contained data URI under the session
func Archive(ctx context.Context, saver ReportSaver, sessionID string, a *Artifact) (*models.Report, error) {
	if a.Type != models.ReportTypePDF && a.Type != models.ReportTypeDeck {
		return nil, ErrNotArchivable
	}

	report := &models.Report{
		SessionID:   sessionID,
		Name:        a.Name,
		IdeaName:    a.IdeaName,
		GeneratedAt: a.GeneratedAt,
		Type:        a.Type,
		Content:     "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data),
	}
	id, err := saver.SaveReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to archive report %s: %w", a.Name, err)
	}
	report.ID = id
	return report, nil
}

// Decode returns the raw bytes and content type of an archived report
func Decode(report models.Report) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(report.Content, "data:")
	if !ok {
		return nil, "", fmt.Errorf("report %s is not a data uri", report.ID)
	}
	contentType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("report %s is not base64 encoded", report.ID)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode report %s: %w", report.ID, err)
	}
	return data, contentType, nil
}
