package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// answerSchema is the compiled JSON Schema for model answers.
var answerSchema *jsonschema.Schema

// answerSchemaText is the indented schema embedded into prompts.
var answerSchemaText string

func init() {
	answerSchema = mustCompileSchema(schemas.AnswerSchemaJSON, "answer.schema.json")

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(schemas.AnswerSchemaJSON), "", "  "); err != nil {
		panic(fmt.Sprintf("failed to indent answer.schema.json: %v", err))
	}
	answerSchemaText = buf.String()
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// SchemaText returns the answer schema as indented JSON, ready to embed in a prompt.
func SchemaText() string {
	return answerSchemaText
}

// Validate checks obj against the answer schema and returns the typed answer.
// Any violation is reported as a *SchemaError listing every failing location.
func Validate(obj map[string]any) (*models.StructuredAnswer, error) {
	if violations := validateAgainstSchema(answerSchema, obj); len(violations) > 0 {
		return nil, &SchemaError{Violations: violations}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, &SchemaError{Violations: []string{fmt.Sprintf("/: %v", err)}}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var answer models.StructuredAnswer
	if err := dec.Decode(&answer); err != nil {
		return nil, &SchemaError{Violations: []string{fmt.Sprintf("/: %v", err)}}
	}
	return &answer, nil
}

// Parse extracts the JSON object from raw model output and validates it.
func Parse(text string) (*models.StructuredAnswer, error) {
	obj, err := Extract(text)
	if err != nil {
		return nil, err
	}
	return Validate(obj)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	sort.Strings(errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
