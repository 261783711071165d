// Package prompts renders the user prompts sent for each job.
package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/validation"
)

// Data is the value prompt templates are rendered against.
type Data struct {
	CaseID            string
	Description       string
	Inputs            string
	SQLTransformation string
	Focus             string
	SchemaJSON        string
}

// NewData collects the template fields for task. Input tables are
// serialized as JSON with non-ASCII characters and HTML left unescaped.
func NewData(task models.Task) (Data, error) {
	inputs, err := marshalInputs(task.InputTables)
	if err != nil {
		return Data{}, fmt.Errorf("serializing input tables of %q: %w", task.ID, err)
	}
	return Data{
		CaseID:            task.ID,
		Description:       task.Description,
		Inputs:            inputs,
		SQLTransformation: task.SQLScript,
		Focus:             task.FocusOrDefault(),
		SchemaJSON:        validation.SchemaText(),
	}, nil
}

// Build renders the variant's user template for task.
func Build(variant models.PromptVariant, task models.Task) (string, error) {
	tmpl, err := template.New(variant.Name).Option("missingkey=error").Parse(variant.UserTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template for variant %q: %w", variant.Name, err)
	}

	data, err := NewData(task)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering variant %q for %q: %w", variant.Name, task.ID, err)
	}
	return buf.String(), nil
}

var repairTmpl = template.Must(template.New("repair").Parse(repairTemplate))

// RepairPrompt asks the model to correct a response that failed
// validation. rawResponse is embedded verbatim.
func RepairPrompt(rawResponse, schemaJSON string) string {
	var buf bytes.Buffer
	data := struct {
		RawResponse string
		SchemaJSON  string
	}{rawResponse, schemaJSON}
	if err := repairTmpl.Execute(&buf, data); err != nil {
		// Both fields are plain strings, execution cannot fail.
		panic(err)
	}
	return buf.String()
}

func marshalInputs(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
