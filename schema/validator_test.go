package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValidate_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		def      TypeDef
		data     string
		wantErrs []string
	}{
		{
			name: "text accepts string",
			def:  Text(),
			data: `"hello"`,
		},
		{
			name:     "text rejects number",
			def:      Text(),
			data:     `42`,
			wantErrs: []string{"Type mismatch at $: expected string, found number"},
		},
		{
			name: "rich text accepts string",
			def:  RichText(),
			data: `"multi\nline"`,
		},
		{
			name:     "rich text rejects array",
			def:      RichText(),
			data:     `[]`,
			wantErrs: []string{"Type mismatch at $: expected string, found array"},
		},
		{
			name: "number accepts float",
			def:  Number(),
			data: `3.14`,
		},
		{
			name: "number accepts integer",
			def:  Number(),
			data: `7`,
		},
		{
			name:     "number rejects string",
			def:      Number(),
			data:     `"7"`,
			wantErrs: []string{"Type mismatch at $: expected number, found string"},
		},
		{
			name: "bool accepts true",
			def:  Bool(),
			data: `true`,
		},
		{
			name:     "bool rejects null",
			def:      Bool(),
			data:     `null`,
			wantErrs: []string{"Type mismatch at $: expected boolean, found null"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.def, mustDecode(t, tt.data))
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ve := err.(*ValidationErrors)
			require.Len(t, ve.Errors, len(tt.wantErrs))
			for i, want := range tt.wantErrs {
				assert.Equal(t, want, ve.Errors[i].Error())
			}
		})
	}
}

func TestValidate_MissingFields(t *testing.T) {
	def := ObjectOf(
		Field("name", Text()),
		Field("count", Number()),
	)

	err := Validate(def, mustDecode(t, `{}`))
	require.Error(t, err)
	ve := err.(*ValidationErrors)
	require.Len(t, ve.Errors, 2)
	assert.Equal(t, "Missing required field at path $.name", ve.Errors[0].Error())
	assert.Equal(t, "Missing required field at path $.count", ve.Errors[1].Error())
}

func TestValidate_CollectsAllErrorsInOnePass(t *testing.T) {
	def := ObjectOf(
		Field("name", Text()),
		Field("count", Number()),
		Field("tags", ListOf(Text())),
	)

	// One missing field, one mismatched field, one bad list element.
	err := Validate(def, mustDecode(t, `{"count": "three", "tags": ["a", 1, "c"]}`))
	require.Error(t, err)
	ve := err.(*ValidationErrors)
	require.Len(t, ve.Errors, 3)
	assert.Equal(t, "Missing required field at path $.name", ve.Errors[0].Error())
	assert.Equal(t, "Type mismatch at $.count: expected number, found string", ve.Errors[1].Error())
	assert.Equal(t, "Type mismatch at $.tags[1]: expected string, found number", ve.Errors[2].Error())
}

func TestValidate_ExtraKeysIgnored(t *testing.T) {
	def := ObjectOf(Field("name", Text()))
	err := Validate(def, mustDecode(t, `{"name": "x", "extra": 1, "more": {"stuff": true}}`))
	assert.NoError(t, err)
}

func TestValidate_NestedPaths(t *testing.T) {
	def := ObjectOf(
		Field("items", ListOf(ObjectOf(
			Field("id", Text()),
			Field("weight", Number()),
		))),
	)

	err := Validate(def, mustDecode(t, `{"items": [{"id": "a", "weight": 1}, {"weight": "heavy"}]}`))
	require.Error(t, err)
	ve := err.(*ValidationErrors)
	require.Len(t, ve.Errors, 2)
	assert.Equal(t, "Missing required field at path $.items[1].id", ve.Errors[0].Error())
	assert.Equal(t, "Type mismatch at $.items[1].weight: expected number, found string", ve.Errors[1].Error())
}

func TestValidate_BadElementDoesNotStopSiblings(t *testing.T) {
	def := ListOf(Number())

	err := Validate(def, mustDecode(t, `[1, "two", 3, "four"]`))
	require.Error(t, err)
	ve := err.(*ValidationErrors)
	require.Len(t, ve.Errors, 2)
	assert.Equal(t, "$[1]", ve.Errors[0].Path)
	assert.Equal(t, "$[3]", ve.Errors[1].Path)
}

func TestValidate_RootTypeMismatchStopsDescent(t *testing.T) {
	def := ObjectOf(Field("name", Text()))

	err := Validate(def, mustDecode(t, `[1, 2, 3]`))
	require.Error(t, err)
	ve := err.(*ValidationErrors)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "Type mismatch at $: expected object, found array", ve.Errors[0].Error())
}

func TestValidate_Deterministic(t *testing.T) {
	def := ObjectOf(
		Field("a", Text()),
		Field("b", Number()),
		Field("c", Bool()),
	)
	value := mustDecode(t, `{"c": "nope"}`)

	first := Validate(def, value).(*ValidationErrors)
	for i := 0; i < 20; i++ {
		again := Validate(def, value).(*ValidationErrors)
		assert.Equal(t, first.Error(), again.Error())
	}
}

func TestValidationErrors_ErrorMessage(t *testing.T) {
	single := &ValidationErrors{Errors: []ValidationError{
		{Kind: MissingField, Path: "$.x"},
	}}
	assert.Equal(t, "Missing required field at path $.x", single.Error())

	multi := &ValidationErrors{Errors: []ValidationError{
		{Kind: MissingField, Path: "$.x"},
		{Kind: TypeMismatch, Path: "$.y", Expected: "number", Found: "string"},
	}}
	assert.Equal(t,
		"validation failed with 2 errors: Missing required field at path $.x; Type mismatch at $.y: expected number, found string",
		multi.Error())
}

func TestValueTypeName(t *testing.T) {
	assert.Equal(t, "null", ValueTypeName(nil))
	assert.Equal(t, "boolean", ValueTypeName(true))
	assert.Equal(t, "number", ValueTypeName(1.5))
	assert.Equal(t, "string", ValueTypeName("s"))
	assert.Equal(t, "array", ValueTypeName([]any{}))
	assert.Equal(t, "object", ValueTypeName(map[string]any{}))
	assert.Equal(t, "unknown", ValueTypeName(struct{}{}))
}
