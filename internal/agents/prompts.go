package agents

import (
	"fmt"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
)

func ideasBlock(ideas []models.Idea) string {
	var b strings.Builder
	for _, idea := range ideas {
		fmt.Fprintf(&b, "<idea id=\"%s\" author=\"%s\">%s</idea>\n",
			Sanitize(idea.ID), Sanitize(idea.Name), Sanitize(idea.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}

func selectedIdeaBlock(idea models.Idea) string {
	return fmt.Sprintf("<selected_idea>\n<author>%s</author>\n<content>%s</content>\n</selected_idea>",
		Sanitize(idea.Name), Sanitize(idea.Content))
}

func analyzePrompt(sessionContext string, ideas []models.Idea) string {
	return fmt.Sprintf(`You are an expert innovation consultant.

<system_instruction>
Analyze the ideas provided below based on the context.
%s
</system_instruction>

%s

%s

<task>
1. Write a concise summary (in Dutch) of the general sentiment and themes.
2. Select the top 3 most innovative and relevant ideas based on the context. Use their ids.
3. Generate a "Future Headline" (Dutch): a catchy, magazine-style headline summarizing the collective outcome.
4. Calculate an "Innovation Score" (0-100) based on the creativity and impact of the ideas.
5. Extract 4-6 powerful keywords.
</task>

Output JSON matching this schema:
%s`, dataInstruction, wrap("context", Sanitize(sessionContext)), wrap("ideas", ideasBlock(ideas)), analyzeSchema)
}

func clusterPrompt(sessionContext string, ideas []models.Idea) string {
	return fmt.Sprintf(`You are an expert innovation consultant.
Your task is to CLUSTER similar ideas together into broader concepts.

<system_instruction>
%s
</system_instruction>

%s

%s

<task>
1. Analyze all ideas and identify common themes or duplicates.
2. Group related ideas into clusters.
3. For each cluster:
   - Give it an id like "cluster-1" and a name like "Cluster idee #1".
   - Write a STRONG SUMMARY (in Dutch) that combines the best parts of the original ideas.
   - List the original idea ids that belong to this cluster.
4. A unique idea may be a cluster of 1, but prefer grouping.
5. Create at least 3 clusters if possible.
</task>

Output JSON matching this schema:
%s`, dataInstruction, wrap("context", Sanitize(sessionContext)), wrap("ideas", ideasBlock(ideas)), clusterSchema)
}

func detailsPrompt(sessionContext string, idea models.Idea) string {
	return fmt.Sprintf(`<system_instruction>
Provide a detailed project breakdown in Dutch based on the context and selected idea.
%s
</system_instruction>

%s
%s

<task>
Provide:
1. rationale: why is this a good idea given the context?
2. questions: 3 follow-up questions for the author.
3. questionAnswers: 3 plausible, hypothetical answers to those questions.
4. steps: 5 concrete implementation steps.
5. pbis: 4 Product Backlog Items (id like PBI-001, userStory in who/what/why form,
   at least 3 acceptance criteria, MoSCoW priority, Fibonacci story points, dorCheck true when ready).
6. businessCase: a McKinsey-style breakdown (problem, solution, strategic fit, financial impact, risks).
7. devilsAdvocate: a critical analysis (critique, blind spots, pre-mortem of failure).
8. marketing: slogan, LinkedIn post, viral tweet, target audience.
</task>

Output JSON matching this schema:
%s`, dataInstruction, wrap("context", Sanitize(sessionContext)), selectedIdeaBlock(idea), detailsSchema)
}

func blogStyle(style models.Style) string {
	switch style {
	case models.StyleExciting:
		return "Schrijf in een spannende, meeslepende stijl die de lezer enthousiast maakt over de toekomst."
	case models.StyleHumor:
		return "Gebruik veel humor en een informele toon. Maak het leuk en vermakelijk om te lezen."
	default:
		return "Schrijf in een professionele, zakelijke stijl geschikt voor een bedrijfsblog."
	}
}

func pressStyle(style models.Style) string {
	switch style {
	case models.StyleExciting:
		return "Maak het een spannend en sensationeel persbericht. Gebruik krachtige woorden en een meeslepende toon."
	case models.StyleHumor:
		return "Schrijf met een flinke dosis humor. Maak het grappig en memorabel."
	default:
		return "Schrijf een formeel, zakelijk persbericht geschikt voor serieuze media."
	}
}

func blogPrompt(sessionContext string, idea models.Idea, style models.Style) string {
	return fmt.Sprintf(`<system_instruction>
Schrijf een blogpost (ongeveer 500 woorden) in het Nederlands over het geselecteerde idee.
Stijl: %s
%s
</system_instruction>

%s
%s

Output JSON matching this schema:
%s`, blogStyle(style), dataInstruction, wrap("context", Sanitize(sessionContext)), selectedIdeaBlock(idea), blogSchema)
}

func pressPrompt(sessionContext string, idea models.Idea, style models.Style) string {
	return fmt.Sprintf(`<system_instruction>
Schrijf een persbericht in het Nederlands over het geselecteerde idee.
Locatie: %s, Datum: %s.
Stijl: %s
%s
</system_instruction>

%s
%s

Output JSON matching this schema:
%s`, DefaultPressLocation, DefaultPressDate, pressStyle(style), dataInstruction,
		wrap("context", Sanitize(sessionContext)), selectedIdeaBlock(idea), pressSchema)
}

func slidesPrompt(sessionContext string, idea models.Idea, details *models.IdeaDetails) string {
	var summary strings.Builder
	if details != nil {
		fmt.Fprintf(&summary, "Rationale: %s\n", Sanitize(details.Rationale))
		fmt.Fprintf(&summary, "Probleem: %s\n", Sanitize(details.BusinessCase.ProblemStatement))
		fmt.Fprintf(&summary, "Oplossing: %s\n", Sanitize(details.BusinessCase.ProposedSolution))
		for i, step := range details.Steps {
			fmt.Fprintf(&summary, "Stap %d: %s\n", i+1, Sanitize(step))
		}
	}
	return fmt.Sprintf(`<system_instruction>
Maak een presentatie-outline van 6 tot 8 slides in het Nederlands voor het geselecteerde idee.
Elke slide heeft een titel en 3 tot 5 korte bullets.
%s
</system_instruction>

%s
%s
%s

Output JSON matching this schema:
%s`, dataInstruction, wrap("context", Sanitize(sessionContext)), selectedIdeaBlock(idea),
		wrap("analysis", strings.TrimSpace(summary.String())), slidesSchema)
}

func followUpPrompt(sessionContext string, idea models.Idea, existing []string) string {
	questions := "Geen eerdere vragen beschikbaar."
	if len(existing) > 0 {
		lines := make([]string, 0, len(existing))
		for _, q := range existing {
			lines = append(lines, "- "+Sanitize(q))
		}
		questions = strings.Join(lines, "\n")
	}
	return fmt.Sprintf(`<system_instruction>
Je bent een expert innovatie facilitator.
Je doel is om een nieuwe brainstormsessie te starten die voortborduurt op een specifiek idee.
%s
</system_instruction>

%s
%s
%s

<task>
Bedenk EEN ultieme, verdiepende vervolgvraag voor een nieuwe sessie.
1. Herhaal de bestaande vragen niet.
2. Ga dieper: vraag naar hoe, waarom of de concrete uitvoering.
3. Geschikt voor een breed publiek, zonder technisch jargon.
4. Nodig uit tot creatieve oplossingen.
5. In het Nederlands.
</task>

Geef ALLEEN de nieuwe vraag terug als platte tekst. Geen inleiding, geen quotes.`,
		dataInstruction, wrap("context", Sanitize(sessionContext)), wrap("idea", Sanitize(idea.Content)),
		wrap("existing_questions", questions))
}

func chatSystemPrompt(cr ChatRequest) string {
	rationale, problem := "N/A", "N/A"
	if cr.Details != nil {
		if cr.Details.Rationale != "" {
			rationale = Sanitize(cr.Details.Rationale)
		}
		if cr.Details.BusinessCase.ProblemStatement != "" {
			problem = Sanitize(cr.Details.BusinessCase.ProblemStatement)
		}
	}
	return fmt.Sprintf(`<system_instruction>
%s

Je hebt toegang tot de volgende context over het idee:

CONTEXT VAN DE SESSIE:
%s

HET IDEE:
Titel: %s
Inhoud: %s

ANALYSE RESULTATEN:
Rationale: %s
Business Case Probleem: %s

Gebruik deze informatie om de vragen van de gebruiker te beantwoorden.
Blijf altijd in je rol.
</system_instruction>

%s`, personaInstruction(cr.Persona), Sanitize(cr.Context), Sanitize(cr.Idea.Name), Sanitize(cr.Idea.Content),
		rationale, problem, followUpInstruction)
}
