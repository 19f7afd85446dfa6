package agents

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/shubh-37/idea-processor/internal/models"
)

// response shapes the prompts ask for
type analyzeResponse struct {
	Summary         string   `json:"summary" jsonschema:"required"`
	TopIdeaIDs      []string `json:"topIdeaIds" jsonschema:"required,maxItems=3"`
	Headline        string   `json:"headline" jsonschema:"required"`
	InnovationScore *float64 `json:"innovationScore" jsonschema:"required,minimum=0,maximum=100"`
	Keywords        []string `json:"keywords" jsonschema:"required,minItems=4,maxItems=6"`
}

type clusterResponse struct {
	Clusters []models.Cluster `json:"clusters" jsonschema:"required,minItems=1"`
}

var (
	analyzeSchema = schemaFor[analyzeResponse]()
	clusterSchema = schemaFor[clusterResponse]()
	detailsSchema = schemaFor[models.IdeaDetails]()
	blogSchema    = schemaFor[models.BlogPost]()
	pressSchema   = schemaFor[models.PressRelease]()
	slidesSchema  = schemaFor[models.SlideOutline]()
)

// schemaFor renders the JSON schema of T for embedding in a prompt
func schemaFor[T any]() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}
