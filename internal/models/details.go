package models

// IdeaDetails is the AI deep dive for the chosen idea
type IdeaDetails struct {
	Rationale       string         `json:"rationale" jsonschema:"required"`
	Questions       []string       `json:"questions" jsonschema:"required"`
	QuestionAnswers []string       `json:"questionAnswers" jsonschema:"required"`
	Steps           []string       `json:"steps" jsonschema:"required"`
	PBIs            []PBI          `json:"pbis" jsonschema:"required"`
	BusinessCase    BusinessCase   `json:"businessCase" jsonschema:"required"`
	DevilsAdvocate  DevilsAdvocate `json:"devilsAdvocate" jsonschema:"required"`
	Marketing       Marketing      `json:"marketing" jsonschema:"required"`

	// Lazily generated while in DETAIL
	Blog         *BlogPost     `json:"blog,omitempty"`
	PressRelease *PressRelease `json:"pressRelease,omitempty"`
	SlideOutline *SlideOutline `json:"slideOutline,omitempty"`
}

// PBI is a product backlog item suggestion
type PBI struct {
	ID                 string   `json:"id" jsonschema:"required"`
	Title              string   `json:"title" jsonschema:"required"`
	UserStory          string   `json:"userStory" jsonschema:"required"`
	AcceptanceCriteria []string `json:"acceptanceCriteria" jsonschema:"required"`
	Priority           string   `json:"priority" jsonschema:"required,enum=Must,enum=Should,enum=Could,enum=Won't"`
	StoryPoints        int      `json:"storyPoints" jsonschema:"required,enum=1,enum=2,enum=3,enum=5,enum=8,enum=13"`
	Dependencies       []string `json:"dependencies" jsonschema:"required"`
	BusinessValue      string   `json:"businessValue" jsonschema:"required"`
	DoRCheck           bool     `json:"dorCheck" jsonschema:"required"`
}

type BusinessCase struct {
	ProblemStatement string   `json:"problemStatement" jsonschema:"required"`
	ProposedSolution string   `json:"proposedSolution" jsonschema:"required"`
	StrategicFit     string   `json:"strategicFit" jsonschema:"required"`
	FinancialImpact  string   `json:"financialImpact" jsonschema:"required"`
	Risks            []string `json:"risks" jsonschema:"required"`
}

type DevilsAdvocate struct {
	Critique   string   `json:"critique" jsonschema:"required"`
	BlindSpots []string `json:"blindSpots" jsonschema:"required"`
	PreMortem  string   `json:"preMortem" jsonschema:"required"`
}

type Marketing struct {
	Slogan         string `json:"slogan" jsonschema:"required"`
	LinkedInPost   string `json:"linkedInPost" jsonschema:"required"`
	ViralTweet     string `json:"viralTweet" jsonschema:"required"`
	TargetAudience string `json:"targetAudience" jsonschema:"required"`
}

type BlogPost struct {
	Title   string `json:"title" jsonschema:"required"`
	Content string `json:"content" jsonschema:"required"`
}

type PressRelease struct {
	Title    string `json:"title" jsonschema:"required"`
	Content  string `json:"content" jsonschema:"required"`
	Date     string `json:"date" jsonschema:"required"`
	Location string `json:"location" jsonschema:"required"`
}

type SlideOutline struct {
	Slides []Slide `json:"slides" jsonschema:"required"`
}

type Slide struct {
	Title   string   `json:"title" jsonschema:"required"`
	Content []string `json:"content" jsonschema:"required"`
}

// Style selects the tone of blog posts and press releases
type Style string

const (
	StyleBusiness Style = "zakelijk"
	StyleExciting Style = "spannend"
	StyleHumor    Style = "humor"
)

// ParseStyle maps unknown or empty values to the business style
func ParseStyle(s string) Style {
	switch Style(s) {
	case StyleExciting, StyleHumor:
		return Style(s)
	default:
		return StyleBusiness
	}
}

// DetailTab is the active view in the DETAIL phase
type DetailTab string

const (
	TabGeneral   DetailTab = "GENERAL"
	TabBusiness  DetailTab = "BUSINESS"
	TabBacklog   DetailTab = "BACKLOG"
	TabMarketing DetailTab = "MARKETING"
	TabContent   DetailTab = "CONTENT"
)

func (t DetailTab) Valid() bool {
	switch t {
	case TabGeneral, TabBusiness, TabBacklog, TabMarketing, TabContent:
		return true
	}
	return false
}
