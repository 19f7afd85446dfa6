package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shubh-37/idea-processor/internal/export"
	"github.com/shubh-37/idea-processor/internal/linear"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
)

type reportMeta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IdeaName    string    `json:"ideaName"`
	GeneratedAt time.Time `json:"generatedAt"`
	Type        string    `json:"type"`
}

func metaOf(r models.Report) reportMeta {
	return reportMeta{ID: r.ID, Name: r.Name, IdeaName: r.IdeaName, GeneratedAt: r.GeneratedAt, Type: r.Type}
}

// listReports is newest first and leaves out the file contents
func (s *Server) listReports(c *fiber.Ctx) error {
	reports, err := s.deps.Store.ListReports(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]reportMeta, len(reports))
	for i, r := range reports {
		out[i] = metaOf(r)
	}
	return c.JSON(out)
}

type buildReportRequest struct {
	Type string `json:"type" validate:"omitempty,oneof=pdf deck"`
}

// buildReport renders the chosen idea of a session in DETAIL and archives it
func (s *Server) buildReport(c *fiber.Ctx) error {
	var req buildReportRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	sessionID := c.Params("id")
	ctl, err := s.lookup(c)
	if err != nil {
		return err
	}
	st := ctl.Snapshot()
	if st.SelectedIdea == nil || st.Details == nil {
		return export.ErrNoDetails
	}

	var artifact *export.Artifact
	now := time.Now()
	if req.Type == models.ReportTypeDeck {
		artifact, err = export.BuildDeck(*st.SelectedIdea, st.Details, now)
	} else {
		artifact, err = export.BuildReport(reportData(st, now))
	}
	if err != nil {
		return err
	}

	report, err := export.Archive(c.UserContext(), s.deps.Store, sessionID, artifact)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(metaOf(*report))
}

func reportData(st session.State, at time.Time) export.ReportData {
	return export.ReportData{
		Context:     st.Context,
		Ideas:       st.Ideas,
		Analysis:    st.Analysis,
		Idea:        *st.SelectedIdea,
		Details:     st.Details,
		GeneratedAt: at,
	}
}

func (s *Server) downloadReport(c *fiber.Ctx) error {
	reports, err := s.deps.Store.ListReports(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	for _, r := range reports {
		if r.ID != c.Params("reportId") {
			continue
		}
		data, contentType, err := export.Decode(r)
		if err != nil {
			return err
		}
		return sendFile(c, r.Name, contentType, data)
	}
	return store.ErrNotFound
}

// downloadBacklog exports the PBIs of the chosen idea as csv or xlsx
func (s *Server) downloadBacklog(c *fiber.Ctx) error {
	ctl, err := s.lookup(c)
	if err != nil {
		return err
	}
	st := ctl.Snapshot()
	if st.SelectedIdea == nil || st.Details == nil {
		return export.ErrNoDetails
	}

	var artifact *export.Artifact
	switch c.Params("format") {
	case "csv":
		artifact, err = export.BuildBacklogCSV(*st.SelectedIdea, st.Details.PBIs)
	case "xlsx":
		artifact, err = export.BuildBacklogXLSX(*st.SelectedIdea, st.Details.PBIs)
	default:
		return badRequest("format must be csv or xlsx")
	}
	if err != nil {
		return err
	}
	return sendFile(c, artifact.Name, artifact.ContentType, artifact.Data)
}

// BacklogExporter pushes PBIs to an issue tracker
type BacklogExporter interface {
	ExportBacklog(ctx context.Context, sessionID string, idea models.Idea, pbis []models.PBI) ([]linear.Issue, error)
}

func (s *Server) exportBacklog(c *fiber.Ctx) error {
	if s.deps.Backlog == nil {
		return linear.ErrNotConfigured
	}
	id := c.Params("id")
	ctl, err := s.lookup(c)
	if err != nil {
		return err
	}
	st := ctl.Snapshot()
	if st.SelectedIdea == nil || st.Details == nil {
		return export.ErrNoDetails
	}
	issues, err := s.deps.Backlog.ExportBacklog(c.UserContext(), id, *st.SelectedIdea, st.Details.PBIs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"issues": issues})
}

func sendFile(c *fiber.Ctx, name, contentType string, data []byte) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
