package export

import (
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
)

// BuildDeck renders one landscape page per slide. Slides come from the
// generated outline, or are derived from the details when there is none.
// A slide too long for one page continues on the next.
func BuildDeck(idea models.Idea, details *models.IdeaDetails, at time.Time) (*Artifact, error) {
	if details == nil {
		return nil, ErrNoDetails
	}
	if at.IsZero() {
		at = time.Now()
	}

	slides := deriveSlides(idea, details)

	d := newDocument("L")
	d.pdf.SetTitle(idea.Name, true)
	for _, s := range slides {
		d.pdf.AddPage()
		d.pdf.SetFont("Helvetica", "B", 28)
		d.pdf.SetTextColor(0, 82, 155)
		d.pdf.MultiCell(0, 12, d.tr(s.Title), "", "L", false)
		d.pdf.SetTextColor(0, 0, 0)
		d.pdf.Ln(6)

		d.pdf.SetFont("Helvetica", "", 16)
		for _, line := range s.Content {
			d.pdf.MultiCell(0, 8, d.tr("- "+line), "", "L", false)
			d.pdf.Ln(2)
		}
	}

	out, pages, err := d.render()
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name:        DeckName(idea.Name, at),
		ContentType: ContentTypePDF,
		Type:        models.ReportTypeDeck,
		IdeaName:    idea.Name,
		GeneratedAt: at,
		Pages:       pages,
		Data:        out,
	}, nil
}

func deriveSlides(idea models.Idea, details *models.IdeaDetails) []models.Slide {
	title := models.Slide{Title: idea.Name, Content: []string{idea.Content}}
	if details.SlideOutline != nil && len(details.SlideOutline.Slides) > 0 {
		return append([]models.Slide{title}, details.SlideOutline.Slides...)
	}

	slides := []models.Slide{title}
	add := func(heading string, lines ...string) {
		content := make([]string, 0, len(lines))
		for _, l := range lines {
			if l != "" {
				content = append(content, l)
			}
		}
		if len(content) > 0 {
			slides = append(slides, models.Slide{Title: heading, Content: content})
		}
	}

	bc := details.BusinessCase
	add("Het probleem", bc.ProblemStatement)
	add("De oplossing", bc.ProposedSolution, details.Rationale)
	add("Aanpak", details.Steps...)
	add("Business case", bc.StrategicFit, bc.FinancialImpact)
	add("Risico's", bc.Risks...)
	add("Marketing", details.Marketing.Slogan, details.Marketing.TargetAudience)
	return slides
}
