package models

import (
	"fmt"
	"strings"
)

// DefaultFocus is used when a case does not name the aspects to look at.
const DefaultFocus = "Datentypen, Transformationen, Rechenlogik"

// Task is one data-lineage analysis case loaded from the case directory.
type Task struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Description string `yaml:"description" json:"description" validate:"required"`
	InputTables any    `yaml:"input_tables" json:"input_tables"`
	SQLScript   string `yaml:"sql_script,omitempty" json:"sql_script,omitempty"`
	Focus       string `yaml:"focus,omitempty" json:"focus,omitempty"`

	// SourceFile is the base name of the YAML file the task was read from.
	SourceFile string `yaml:"-" json:"source_file"`
}

// FocusOrDefault returns the configured focus hint or DefaultFocus.
func (t Task) FocusOrDefault() string {
	if strings.TrimSpace(t.Focus) == "" {
		return DefaultFocus
	}
	return t.Focus
}

// PromptVariant pairs a system prompt with a user prompt template.
// UserTemplate is a text/template rendered against a prompts.Data value.
type PromptVariant struct {
	Name         string `yaml:"name" json:"name"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	UserTemplate string `yaml:"user_template" json:"user_template"`
}

// Job is one (task, model, variant, repetition) execution attempt.
type Job struct {
	Task         Task
	Model        string
	VariantIndex int
	Repeat       int
}

// Key identifies the job in logs and progress events.
func (j Job) Key() string {
	return fmt.Sprintf("%s/%s/prompt%d/repeat%d", j.Model, j.Task.ID, j.VariantIndex+1, j.Repeat)
}

// TaskIDOrUnknown returns the task identifier, or "unknown" when it is empty.
func (j Job) TaskIDOrUnknown() string {
	if j.Task.ID == "" {
		return "unknown"
	}
	return j.Task.ID
}
