package schema

import (
	"fmt"
	"strings"
)

// ErrorKind distinguishes the two validation error variants.
type ErrorKind int

const (
	// MissingField reports a declared object field absent from the value.
	MissingField ErrorKind = iota
	// TypeMismatch reports a value whose JSON type differs from the schema.
	TypeMismatch
)

// ValidationError is a single violation with a root-anchored path locating it
// in the value tree ("$", "$.field", "$.list[2].field"). Paths are echoed
// verbatim into correction prompts, so the format must stay stable and
// human-readable.
type ValidationError struct {
	Kind     ErrorKind `json:"kind"`
	Path     string    `json:"path"`
	Expected string    `json:"expected,omitempty"`
	Found    string    `json:"found,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Kind == MissingField {
		return fmt.Sprintf("Missing required field at path %s", e.Path)
	}
	return fmt.Sprintf("Type mismatch at %s: expected %s, found %s", e.Path, e.Expected, e.Found)
}

// ValidationErrors carries every violation found in one validation pass.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks a decoded JSON value against a TypeDef. It returns nil when
// the value conforms, or a *ValidationErrors listing every violation found in
// a single pass. Errors are collected, not short-circuited: one pass yields
// the complete defect list so a correction prompt can address all of them at
// once. Object keys not declared in the schema are ignored.
func Validate(def TypeDef, value any) error {
	var errs []ValidationError
	validateValue(def, value, "$", &errs)
	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func validateValue(def TypeDef, value any, path string, errs *[]ValidationError) {
	switch def.Kind {
	case KindText, KindRichText:
		if _, ok := value.(string); !ok {
			*errs = append(*errs, mismatch(path, "string", value))
		}
	case KindNumber:
		if !isNumber(value) {
			*errs = append(*errs, mismatch(path, "number", value))
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			*errs = append(*errs, mismatch(path, "boolean", value))
		}
	case KindList:
		items, ok := value.([]any)
		if !ok {
			*errs = append(*errs, mismatch(path, "array", value))
			return
		}
		// A bad element never stops checking of its siblings.
		for i, item := range items {
			validateValue(*def.Elem, item, fmt.Sprintf("%s[%d]", path, i), errs)
		}
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			*errs = append(*errs, mismatch(path, "object", value))
			return
		}
		// Declared order drives error order, keeping messages deterministic.
		for _, field := range def.Fields {
			fieldPath := path + "." + field.Name
			fieldValue, present := obj[field.Name]
			if !present {
				*errs = append(*errs, ValidationError{Kind: MissingField, Path: fieldPath})
				continue
			}
			validateValue(field.Type, fieldValue, fieldPath, errs)
		}
	}
}

func mismatch(path, expected string, value any) ValidationError {
	return ValidationError{
		Kind:     TypeMismatch,
		Path:     path,
		Expected: expected,
		Found:    ValueTypeName(value),
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int64, int32:
		return true
	default:
		return false
	}
}

// ValueTypeName reports the JSON type name of a decoded value.
func ValueTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
