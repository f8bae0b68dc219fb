package shape

import (
	"fmt"
	"strings"

	"github.com/BaSui01/shaperunner/schema"
)

// FormationID is the task identifier for the unit formation shape.
const FormationID = "Formation"

// FormationInput asks the model for a 2D spatial formation.
type FormationInput struct {
	FormationDescription string `json:"formation_description" msgpack:"formation_description"`
	UnitCount            int    `json:"unit_count" msgpack:"unit_count"`
}

// Coordinate is one 2D position.
type Coordinate struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// FormationOutput carries the generated positions. The coordinate count must
// equal the requested unit count; that contract is enforced by a post-decode
// check, not the schema.
type FormationOutput struct {
	Coordinates []Coordinate `json:"coordinates" msgpack:"coordinates"`
}

var formationDef = schema.ObjectOf(
	schema.Field("coordinates", schema.ListOf(schema.ObjectOf(
		schema.Field("x", schema.Number()),
		schema.Field("y", schema.Number()),
	))),
)

// FormationTypeDef returns the output schema for the formation shape.
func FormationTypeDef() schema.TypeDef { return formationDef }

// formationContext renders the task context block, including a worked
// example at exactly the requested unit count so the model anchors on the
// right cardinality.
func formationContext(in FormationInput) string {
	var sb strings.Builder
	sb.WriteString("Task: Generate 2D coordinates for unit formation.\n")
	fmt.Fprintf(&sb, "- Formation description: %s\n", in.FormationDescription)
	fmt.Fprintf(&sb, "- Number of units: %d\n\n", in.UnitCount)
	fmt.Fprintf(&sb, "CRITICAL: You MUST generate EXACTLY %d coordinates (x, y pairs), no more, no less.\n", in.UnitCount)
	fmt.Fprintf(&sb, "The coordinates array must contain exactly %d items.\n", in.UnitCount)
	sb.WriteString("Coordinates should be reasonable 2D positions (typically between 0-100 for x and y).\n")
	sb.WriteString("The formation should be visually recognizable as the requested shape.\n\n")
	fmt.Fprintf(&sb, "Example output format (for %d units):\n", in.UnitCount)
	sb.WriteString(formationExample(in.UnitCount))
	sb.WriteString("\n\nCRITICAL: Output ONLY the JSON object, nothing else. No text before or after. No markdown. No explanations.\n")
	sb.WriteString("The JSON must be valid and parseable. Do NOT include:\n")
	sb.WriteString("- Control characters (null bytes, etc.)\n")
	sb.WriteString("- Unescaped newlines or tabs inside JSON strings\n")
	sb.WriteString("- Any characters outside the JSON structure\n")
	sb.WriteString("- Trailing commas\n")
	return sb.String()
}

// formationExample builds a literal JSON example with count coordinates.
func formationExample(count int) string {
	var sb strings.Builder
	sb.WriteString(`{"coordinates":[`)
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"x":%d.0,"y":%d.0}`, i*10, (i%2)*10)
	}
	sb.WriteString("]}")
	return sb.String()
}

// checkCoordinateCount enforces the exact-count contract. A mismatch is
// reported as a TypeMismatch at $.coordinates so the feedback reads like any
// other validation error.
func checkCoordinateCount(want int) func(out *FormationOutput) *schema.ValidationError {
	return func(out *FormationOutput) *schema.ValidationError {
		got := len(out.Coordinates)
		if got == want {
			return nil
		}
		return &schema.ValidationError{
			Kind:     schema.TypeMismatch,
			Path:     "$.coordinates",
			Expected: fmt.Sprintf("array with exactly %d items", want),
			Found:    fmt.Sprintf("array with %d items", got),
		}
	}
}
