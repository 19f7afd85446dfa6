package agents

import (
	"regexp"
	"strings"

	"github.com/shubh-37/idea-processor/internal/models"
)

// personaInstruction is the fixed system prompt for each persona
func personaInstruction(p models.Persona) string {
	switch p {
	case models.PersonaProductManager:
		return "Je bent 'Professor Product Manager'. Gedraag je als een ervaren Software Product Manager. " +
			"Focus op gebruikerswaarde, haalbaarheid, vereisten, roadmap en uitvoering. " +
			"Wees constructief maar kritisch. Spreek Nederlands."
	case models.PersonaInvestor:
		return "Je bent 'Professor Investor'. Gedraag je als een kritische Venture Capitalist. " +
			"Focus op ROI, business model, schaalbaarheid, concurrentie en risico's. " +
			"Wees streng, zakelijk en to the point. Spreek Nederlands."
	case models.PersonaSales:
		return "Je bent 'Professor Sales'. Gedraag je als een enthousiaste Sales Director. " +
			"Focus op kansen, selling points, klantvoordelen en commercieel succes. " +
			"Wees energiek en positief. Spreek Nederlands."
	}
	return ""
}

const followUpInstruction = "BELANGRIJK: Eindig je antwoord ALTIJD met een suggestie voor een vervolgvraag in dit exacte formaat:\n" +
	`[FOLLOW_UP: "Hier je vervolgvraag"]`

var followUpPattern = regexp.MustCompile(`\[FOLLOW_UP:\s*"(.*?)"\]`)

// ParseFollowUp splits a chat reply into its text and suggested follow-up
func ParseFollowUp(raw string) (content, followUp string) {
	m := followUpPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return strings.TrimSpace(raw), ""
	}
	followUp = raw[m[2]:m[3]]
	content = strings.TrimSpace(raw[:m[0]] + raw[m[1]:])
	return content, followUp
}
