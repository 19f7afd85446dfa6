package models

import "fmt"

// Persona selects which "professor" answers in the idea chat
type Persona string

const (
	PersonaProductManager Persona = "PRODUCT_MANAGER"
	PersonaInvestor       Persona = "INVESTOR"
	PersonaSales          Persona = "SALES"
)

// Personas lists every persona in display order
var Personas = []Persona{PersonaProductManager, PersonaInvestor, PersonaSales}

func ParsePersona(s string) (Persona, error) {
	for _, p := range Personas {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown persona %q", s)
}

// Label is the display name shown next to a reply
func (p Persona) Label() string {
	switch p {
	case PersonaProductManager:
		return "Professor Product Manager"
	case PersonaInvestor:
		return "Professor Investor"
	case PersonaSales:
		return "Professor Sales"
	}
	return "AI"
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the idea chat
type ChatMessage struct {
	ID                string `json:"id"`
	Role              string `json:"role"` // "user" or "assistant"
	Content           string `json:"content"`
	Timestamp         int64  `json:"timestamp"`
	RoleLabel         string `json:"roleLabel,omitempty"`
	SuggestedFollowUp string `json:"suggestedFollowUp,omitempty"`
}
