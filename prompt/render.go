// Package prompt turns a schema, task context, and prior-attempt feedback
// into the text sent to the model.
package prompt

import (
	"strings"

	"github.com/BaSui01/shaperunner/schema"
)

// Request carries everything one attempt's prompt depends on. ParseError and
// Errors are mutually exclusive per attempt: a parse failure pre-empts
// validation feedback because validation never ran.
type Request struct {
	Schema     schema.TypeDef
	Context    string
	ParseError string
	Errors     []schema.ValidationError
}

// Render builds the full prompt text for one attempt.
func Render(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are a system that strictly outputs JSON.\n")
	sb.WriteString("You must produce a JSON object that matches this schema:\n\n")
	sb.WriteString(DescribeSchema(req.Schema, 0))
	sb.WriteString("\nThe JSON must be parseable and not contain comments or explanations.\n")
	sb.WriteString("Do not wrap it in markdown code fences.\n")
	sb.WriteString("Do not include control characters (null bytes, etc.) in your output.\n")
	sb.WriteString("Escape special characters properly in JSON strings (use \\n for newlines, etc.).\n\n")

	sb.WriteString(req.Context)

	if req.ParseError != "" {
		sb.WriteString("\nYour previous response was not valid JSON. The error was:\n")
		sb.WriteString(req.ParseError)
		sb.WriteString("\n\nPlease output ONLY valid, parseable JSON without any control characters or formatting issues.\n")
	} else if len(req.Errors) > 0 {
		sb.WriteString("\nYour previous JSON had these validation problems:\n")
		for _, e := range req.Errors {
			sb.WriteString("- ")
			sb.WriteString(e.Error())
			sb.WriteByte('\n')
		}
		sb.WriteString("\nFix these issues and output ONLY corrected JSON.\n")
	}

	return sb.String()
}

// DescribeSchema renders a TypeDef as indented human-readable text for the
// model. The wording is part of the prompt contract; change it carefully.
func DescribeSchema(def schema.TypeDef, indent int) string {
	var sb strings.Builder
	pad := strings.Repeat(" ", indent)

	switch def.Kind {
	case schema.KindText:
		sb.WriteString(pad + "- string\n")
	case schema.KindRichText:
		sb.WriteString(pad + "- string (rich text)\n")
	case schema.KindNumber:
		sb.WriteString(pad + "- number\n")
	case schema.KindBool:
		sb.WriteString(pad + "- boolean\n")
	case schema.KindList:
		sb.WriteString(pad + "- array of:\n")
		sb.WriteString(DescribeSchema(*def.Elem, indent+2))
	case schema.KindObject:
		sb.WriteString(pad + "- object with fields:\n")
		for _, f := range def.Fields {
			sb.WriteString(pad + "  - " + f.Name + ": ")
			switch f.Type.Kind {
			case schema.KindText:
				sb.WriteString("string\n")
			case schema.KindRichText:
				sb.WriteString("string (rich text)\n")
			case schema.KindNumber:
				sb.WriteString("number\n")
			case schema.KindBool:
				sb.WriteString("boolean\n")
			case schema.KindList:
				sb.WriteString("array of:\n")
				sb.WriteString(DescribeSchema(*f.Type.Elem, indent+4))
			case schema.KindObject:
				sb.WriteString("nested object:\n")
				sb.WriteString(DescribeSchema(f.Type, indent+4))
			}
		}
	}

	return sb.String()
}
