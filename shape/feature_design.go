// Package shape defines the supported tasks: their input and output records,
// the TypeDef each output must satisfy, and the registry the dispatcher
// routes by.
package shape

import (
	"strings"

	"github.com/BaSui01/shaperunner/schema"
)

// FeatureDesignID is the task identifier for the feature design shape.
const FeatureDesignID = "FeatureDesign"

// FeatureDesignInput asks the model to design a feature for a repository.
type FeatureDesignInput struct {
	RepoSummary string   `json:"repo_summary" msgpack:"repo_summary"`
	Constraints []string `json:"constraints" msgpack:"constraints"`
}

// Component is one building block of a proposed design.
type Component struct {
	ID             string `json:"id" msgpack:"id"`
	Responsibility string `json:"responsibility" msgpack:"responsibility"`
	API            string `json:"api" msgpack:"api"`
}

// FeatureDesignOutput is the structured artifact the model must produce.
type FeatureDesignOutput struct {
	Name       string      `json:"name" msgpack:"name"`
	Rationale  string      `json:"rationale" msgpack:"rationale"`
	Components []Component `json:"components" msgpack:"components"`
	Risks      []string    `json:"risks" msgpack:"risks"`
}

// featureDesignDef mirrors FeatureDesignOutput. Built once, shared read-only
// across every validation attempt.
var featureDesignDef = schema.ObjectOf(
	schema.Field("name", schema.Text()),
	schema.Field("rationale", schema.RichText()),
	schema.Field("components", schema.ListOf(schema.ObjectOf(
		schema.Field("id", schema.Text()),
		schema.Field("responsibility", schema.Text()),
		schema.Field("api", schema.RichText()),
	))),
	schema.Field("risks", schema.ListOf(schema.Text())),
)

// FeatureDesignTypeDef returns the output schema for the feature design shape.
func FeatureDesignTypeDef() schema.TypeDef { return featureDesignDef }

// featureDesignContext renders the task context block for the prompt.
func featureDesignContext(in FeatureDesignInput) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString("- Repo summary: ")
	sb.WriteString(in.RepoSummary)
	sb.WriteString("\n- Constraints:\n")
	for _, c := range in.Constraints {
		sb.WriteString("  - ")
		sb.WriteString(c)
		sb.WriteByte('\n')
	}
	return sb.String()
}
