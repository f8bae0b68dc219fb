// Package schema provides a declarative type model for model-generated JSON
// and a structural validator that checks decoded values against it.
package schema

// Kind identifies a TypeDef variant.
type Kind int

const (
	// KindText is a plain string.
	KindText Kind = iota
	// KindRichText is a string carrying formatted prose. It validates the
	// same as KindText but renders differently in prompts.
	KindRichText
	// KindNumber is any JSON number.
	KindNumber
	// KindBool is a JSON boolean.
	KindBool
	// KindList is a homogeneous array.
	KindList
	// KindObject is an object with a fixed, ordered field set.
	KindObject
)

// TypeDef describes an expected JSON shape. Values are immutable once built:
// each shape constructs its TypeDef once and shares it read-only across
// concurrent requests.
type TypeDef struct {
	Kind   Kind
	Elem   *TypeDef   // element type when Kind == KindList
	Fields []FieldDef // declared fields when Kind == KindObject, in order
}

// FieldDef is a named field of an object TypeDef. Field names must be unique
// within one object.
type FieldDef struct {
	Name string
	Type TypeDef
}

// Text returns a plain string TypeDef.
func Text() TypeDef { return TypeDef{Kind: KindText} }

// RichText returns a rich text TypeDef.
func RichText() TypeDef { return TypeDef{Kind: KindRichText} }

// Number returns a numeric TypeDef.
func Number() TypeDef { return TypeDef{Kind: KindNumber} }

// Bool returns a boolean TypeDef.
func Bool() TypeDef { return TypeDef{Kind: KindBool} }

// ListOf returns an array TypeDef with the given element type.
func ListOf(elem TypeDef) TypeDef {
	return TypeDef{Kind: KindList, Elem: &elem}
}

// ObjectOf returns an object TypeDef with the given fields.
func ObjectOf(fields ...FieldDef) TypeDef {
	return TypeDef{Kind: KindObject, Fields: fields}
}

// Field builds a FieldDef.
func Field(name string, t TypeDef) FieldDef {
	return FieldDef{Name: name, Type: t}
}

// KindName returns the JSON type name a TypeDef expects. Used in both
// validation errors and prompt rendering, so the wording must stay stable.
func (t TypeDef) KindName() string {
	switch t.Kind {
	case KindText, KindRichText:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}
