package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
)

var ErrNoDetails = errors.New("no idea details to export")

// ReportData is everything the PDF report shows
type ReportData struct {
	Context     string
	Ideas       []models.Idea
	Analysis    *models.AIAnalysisResult
	Idea        models.Idea
	Details     *models.IdeaDetails
	GeneratedAt time.Time
}

// BuildReport renders the full plan for the selected idea with the list of
// every submitted idea as an appendix. Long sections flow onto new pages.
func BuildReport(data ReportData) (*Artifact, error) {
	if data.Details == nil {
		return nil, ErrNoDetails
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	details := data.Details

	d := newDocument("P")
	d.pdf.SetTitle("Exact Idea Processor - Plan", true)
	d.pdf.AddPage()

	d.title("Exact Idea Processor - Plan")
	d.muted("Gegenereerd op " + data.GeneratedAt.Format("02-01-2006 15:04"))
	d.pdf.Ln(4)
	d.item("Context:", data.Context)
	d.item("Idee: "+data.Idea.Name, data.Idea.Content)

	if a := data.Analysis; a != nil {
		d.heading("Sessie Analyse")
		if a.Headline != "" {
			d.item("Headline:", a.Headline)
		}
		d.item("Samenvatting:", a.Summary)
		d.item("Innovatiescore:", fmt.Sprintf("%d / 100", a.InnovationScore))
		if len(a.Keywords) > 0 {
			d.item("Kernwoorden:", strings.Join(a.Keywords, ", "))
		}
	}

	d.heading("Waarom dit een goed idee is")
	d.paragraph(details.Rationale)

	d.heading("Implementatie Stappen")
	d.numbered(details.Steps)

	bc := details.BusinessCase
	d.heading("Business Case Report")
	d.item("Probleemstelling:", bc.ProblemStatement)
	d.item("Oplossing:", bc.ProposedSolution)
	d.item("Strategische Fit:", bc.StrategicFit)
	d.item("Financiële Impact:", bc.FinancialImpact)
	if len(bc.Risks) > 0 {
		d.item("Risico's:", "")
		d.bullets(bc.Risks)
	}

	if da := details.DevilsAdvocate; da.Critique != "" {
		d.heading("Devil's Advocate Analysis")
		d.item("Kritiek:", da.Critique)
		if len(da.BlindSpots) > 0 {
			d.item("Blinde Vlekken:", "")
			d.bullets(da.BlindSpots)
		}
		d.item("Pre-Mortem:", da.PreMortem)
	}

	if m := details.Marketing; m.Slogan != "" {
		d.heading("Marketing & Pitch Assets")
		d.item("Slogan:", m.Slogan)
		d.item("Doelgroep:", m.TargetAudience)
		d.item("LinkedIn Post:", m.LinkedInPost)
		d.item("Viral Tweet:", m.ViralTweet)
	}

	if len(details.Questions) > 0 {
		d.heading("AI Simulatie: Vraag & Antwoord")
		for i, q := range details.Questions {
			d.item(fmt.Sprintf("V%d: %s", i+1, q), answerAt(details.QuestionAnswers, i))
		}
	}

	if details.Blog != nil {
		d.heading("Blog: " + details.Blog.Title)
		d.paragraph(details.Blog.Content)
	}
	if pr := details.PressRelease; pr != nil {
		d.heading("Persbericht: " + pr.Title)
		d.muted(pr.Location + ", " + pr.Date)
		d.paragraph(pr.Content)
	}

	d.pdf.AddPage()
	d.heading("Product Backlog Items")
	for _, pbi := range details.PBIs {
		d.item(fmt.Sprintf("[%d PTS] %s (%s)", pbi.StoryPoints, pbi.Title, pbi.Priority), pbi.UserStory)
		if len(pbi.AcceptanceCriteria) > 0 {
			d.bullets(pbi.AcceptanceCriteria)
		}
	}

	d.pdf.AddPage()
	d.heading("Appendix: Alle Ingezonden Ideeën")
	if len(data.Ideas) == 0 {
		d.paragraph(models.NoIdeasSummary)
	}
	for i, idea := range data.Ideas {
		d.item(fmt.Sprintf("%d. %s", i+1, idea.Name), idea.Content)
		d.muted(time.UnixMilli(idea.Timestamp).Format("15:04:05"))
		d.pdf.Ln(3)
	}

	out, pages, err := d.render()
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name:        ReportName(data.Idea.Name, data.GeneratedAt),
		ContentType: ContentTypePDF,
		Type:        models.ReportTypePDF,
		IdeaName:    data.Idea.Name,
		GeneratedAt: data.GeneratedAt,
		Pages:       pages,
		Data:        out,
	}, nil
}

func answerAt(answers []string, i int) string {
	if i < len(answers) {
		return answers[i]
	}
	return ""
}
