package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/xuri/excelize/v2"
)

const backlogSheet = "Backlog"

// BuildBacklogCSV exports the PBIs as Title, Story Points, Description
func BuildBacklogCSV(idea models.Idea, pbis []models.PBI) (*Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Title", "Story Points", "Description"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, pbi := range pbis {
		if err := w.Write([]string{pbi.Title, strconv.Itoa(pbi.StoryPoints), pbi.UserStory}); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &Artifact{
		Name:        BacklogName(idea.Name, "csv"),
		ContentType: ContentTypeCSV,
		IdeaName:    idea.Name,
		Data:        buf.Bytes(),
	}, nil
}

// BuildBacklogXLSX exports every PBI field to a single sheet
func BuildBacklogXLSX(idea models.Idea, pbis []models.PBI) (*Artifact, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), backlogSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []string{"ID", "Title", "User Story", "Acceptance Criteria", "Priority", "Story Points", "Dependencies", "Business Value", "DoR"}
	if err := xl.SetSheetRow(backlogSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, pbi := range pbis {
		row := []interface{}{
			pbi.ID,
			pbi.Title,
			pbi.UserStory,
			strings.Join(pbi.AcceptanceCriteria, "\n"),
			pbi.Priority,
			pbi.StoryPoints,
			strings.Join(pbi.Dependencies, ", "),
			pbi.BusinessValue,
			pbi.DoRCheck,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(backlogSheet, cellRef, &row); err != nil {
			return nil, fmt.Errorf("failed to write pbi %s: %w", pbi.ID, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}

	return &Artifact{
		Name:        BacklogName(idea.Name, "xlsx"),
		ContentType: ContentTypeXLSX,
		IdeaName:    idea.Name,
		Data:        buf.Bytes(),
	}, nil
}
