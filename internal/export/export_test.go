package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var generatedAt = time.Date(2026, 6, 12, 14, 30, 15, 123_000_000, time.UTC)

func sampleIdea() models.Idea {
	return models.Idea{ID: "i1", Name: "Slimme Daken", Content: "Zonnepanelen op alle bushokjes", Timestamp: generatedAt.UnixMilli()}
}

func sampleDetails() *models.IdeaDetails {
	return &models.IdeaDetails{
		Rationale:       "Past bij de energietransitie",
		Questions:       []string{"Wie onderhoudt de panelen?"},
		QuestionAnswers: []string{"De gemeente."},
		Steps:           []string{"Inventarisatie", "Pilot", "Uitrol"},
		PBIs: []models.PBI{
			{ID: "PBI-001", Title: "Pilot locatie, kiezen", UserStory: `Als "wethouder" wil ik...`, AcceptanceCriteria: []string{"a", "b", "c"}, Priority: "Must", StoryPoints: 5, Dependencies: []string{"Geen"}, BusinessValue: "hoog", DoRCheck: true},
			{ID: "PBI-002", Title: "Monitoring", UserStory: "Als beheerder...", Priority: "Should", StoryPoints: 3},
		},
		BusinessCase: models.BusinessCase{
			ProblemStatement: "Hoge energiekosten",
			ProposedSolution: "Zonnepanelen",
			StrategicFit:     "Klimaatdoelen",
			FinancialImpact:  "Terugverdientijd 6 jaar",
			Risks:            []string{"Vandalisme"},
		},
		DevilsAdvocate: models.DevilsAdvocate{Critique: "Duur", BlindSpots: []string{"Schaduw"}, PreMortem: "Subsidie valt weg"},
		Marketing:      models.Marketing{Slogan: "Daken die werken", TargetAudience: "Forenzen"},
	}
}

func TestReportName(t *testing.T) {
	assert.Equal(t, "Exact_Idea_Slimme_Daken_2026-06-12T14-30-15-123Z.pdf", ReportName("  Slimme   Daken ", generatedAt))
	assert.Equal(t, "Exact_Idea_Idee_2026-06-12T14-30-15-123Z.pdf", ReportName("", generatedAt))
	assert.Equal(t, "PBI_Slimme_Daken.csv", BacklogName("Slimme Daken", "csv"))
}

func TestBuildReport(t *testing.T) {
	ideas := []models.Idea{sampleIdea(), {ID: "i2", Name: "Bo", Content: "Groene daken", Timestamp: generatedAt.UnixMilli()}}
	a, err := BuildReport(ReportData{
		Context:     "Hoe besparen we energie?",
		Ideas:       ideas,
		Analysis:    &models.AIAnalysisResult{Summary: "Veel zon", Headline: "Delft op zonne-energie", InnovationScore: 77, Keywords: []string{"zon"}},
		Idea:        sampleIdea(),
		Details:     sampleDetails(),
		GeneratedAt: generatedAt,
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(a.Data, []byte("%PDF")))
	assert.Equal(t, models.ReportTypePDF, a.Type)
	assert.Equal(t, "Slimme Daken", a.IdeaName)
	assert.GreaterOrEqual(t, a.Pages, 3, "plan, backlog and appendix each start a page")
	assert.Equal(t, ReportName("Slimme Daken", generatedAt), a.Name)

	_, err = BuildReport(ReportData{Idea: sampleIdea()})
	assert.ErrorIs(t, err, ErrNoDetails)
}

func TestBuildReportPaginatesLongContent(t *testing.T) {
	short, err := BuildReport(ReportData{Idea: sampleIdea(), Details: sampleDetails(), GeneratedAt: generatedAt})
	require.NoError(t, err)

	many := make([]models.Idea, 0, 200)
	for i := 0; i < 200; i++ {
		many = append(many, models.Idea{ID: "x", Name: "Deelnemer", Content: strings.Repeat("lang idee ", 20)})
	}
	long, err := BuildReport(ReportData{Idea: sampleIdea(), Details: sampleDetails(), Ideas: many, GeneratedAt: generatedAt})
	require.NoError(t, err)

	assert.Greater(t, long.Pages, short.Pages+5)
}

func TestBuildDeck(t *testing.T) {
	details := sampleDetails()

	derived, err := BuildDeck(sampleIdea(), details, generatedAt)
	require.NoError(t, err)
	assert.Equal(t, models.ReportTypeDeck, derived.Type)
	assert.Equal(t, len(deriveSlides(sampleIdea(), details)), derived.Pages)

	details.SlideOutline = &models.SlideOutline{Slides: []models.Slide{
		{Title: "Probleem", Content: []string{"a"}},
		{Title: "Lang", Content: strings.Split(strings.Repeat("regel,", 60), ",")},
	}}
	outlined, err := BuildDeck(sampleIdea(), details, generatedAt)
	require.NoError(t, err)
	assert.Greater(t, outlined.Pages, 3, "a long slide continues on another page")
	assert.True(t, strings.HasPrefix(outlined.Name, "Exact_Deck_Slimme_Daken_"))
}

func TestBuildBacklogCSV(t *testing.T) {
	a, err := BuildBacklogCSV(sampleIdea(), sampleDetails().PBIs)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(a.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Title", "Story Points", "Description"}, records[0])
	assert.Equal(t, []string{"Pilot locatie, kiezen", "5", `Als "wethouder" wil ik...`}, records[1])
}

func TestBuildBacklogXLSX(t *testing.T) {
	a, err := BuildBacklogXLSX(sampleIdea(), sampleDetails().PBIs)
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(a.Data))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(backlogSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "User Story", rows[0][2])
	assert.Equal(t, "PBI-001", rows[1][0])
	assert.Equal(t, "a\nb\nc", rows[1][3])
	assert.Equal(t, "5", rows[1][5])
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	first, err := BuildReport(ReportData{Idea: sampleIdea(), Details: sampleDetails(), GeneratedAt: generatedAt})
	require.NoError(t, err)
	second, err := BuildDeck(sampleIdea(), sampleDetails(), generatedAt.Add(time.Minute))
	require.NoError(t, err)

	_, err = Archive(ctx, st, "s1", first)
	require.NoError(t, err)
	saved, err := Archive(ctx, st, "s1", second)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	reports, err := st.ListReports(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, models.ReportTypeDeck, reports[0].Type, "newest first")

	data, contentType, err := Decode(reports[1])
	require.NoError(t, err)
	assert.Equal(t, ContentTypePDF, contentType)
	assert.Equal(t, first.Data, data)

	csvArtifact, err := BuildBacklogCSV(sampleIdea(), nil)
	require.NoError(t, err)
	_, err = Archive(ctx, st, "s1", csvArtifact)
	assert.ErrorIs(t, err, ErrNotArchivable)
}
