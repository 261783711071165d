package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/stretchr/testify/require"
)

const validAnswerJSON = `{
  "transformation_understanding": "Joins orders with customers and sums revenue per region.",
  "data_lineage": ["raw.orders", "raw.customers", "mart.revenue_by_region"],
  "transformations": [
    {"step": 1, "description": "Join orders to customers on customer_id"},
    {"step": 2, "description": "Aggregate revenue by region", "formula": "SUM(amount)", "improvement": null}
  ],
  "computations_valid": true,
  "error_risks": [
    {"severity": "medium", "source": "LEFT JOIN on customers", "fix": "Use INNER JOIN or filter nulls"}
  ],
  "final_feedback": "The transformation is correct apart from null regions."
}`

func TestParse_Valid(t *testing.T) {
	answer, err := Parse(validAnswerJSON)
	require.NoError(t, err)
	require.True(t, answer.ComputationsValid)
	require.Len(t, answer.Transformations, 2)
	require.Equal(t, 2, answer.Transformations[1].Step)
	require.NotNil(t, answer.Transformations[1].Formula)
	require.Equal(t, "SUM(amount)", *answer.Transformations[1].Formula)
	require.Nil(t, answer.Transformations[1].Improvement)
	require.Equal(t, models.SeverityMedium, answer.ErrorRisks[0].Severity)
	require.Nil(t, answer.ComputationDetails)
}

func TestExtract_WrappedInProse(t *testing.T) {
	text := "Here is my analysis:\n```json\n" + validAnswerJSON + "\n```\nHope this helps."

	obj, err := Extract(text)
	require.NoError(t, err)
	require.Contains(t, obj, "final_feedback")

	_, err = Validate(obj)
	require.NoError(t, err)
}

func TestExtract_Idempotent(t *testing.T) {
	text := "prefix " + validAnswerJSON + " suffix"

	first, err := Extract(text)
	require.NoError(t, err)
	second, err := Extract(text)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestExtract_LargestBraceSpan(t *testing.T) {
	// The span runs from the first '{' to the last '}', so nested objects survive.
	obj, err := Extract(`note {"a": {"b": 1}} end`)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": map[string]any{"b": float64(1)}}, obj)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no braces", "I cannot answer this question."},
		{"empty", ""},
		{"malformed", `result: {"a": 1,,}`},
		{"reversed braces", `} nothing here {`},
		{"top-level array", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text)
			require.Error(t, err)

			var extractErr *ExtractionError
			require.ErrorAs(t, err, &extractErr)
			require.True(t, IsAnswerError(err))
		})
	}
}

func TestValidate_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(obj map[string]any)
		wantLoc string
	}{
		{
			name:    "missing required field",
			mutate:  func(obj map[string]any) { delete(obj, "final_feedback") },
			wantLoc: "/",
		},
		{
			name:    "unknown field",
			mutate:  func(obj map[string]any) { obj["confidence"] = 0.9 },
			wantLoc: "/",
		},
		{
			name: "bad severity",
			mutate: func(obj map[string]any) {
				obj["error_risks"] = []any{map[string]any{"severity": "urgent", "source": "join", "fix": "filter"}}
			},
			wantLoc: "/error_risks/0/severity",
		},
		{
			name:    "too short",
			mutate:  func(obj map[string]any) { obj["transformation_understanding"] = "ok" },
			wantLoc: "/transformation_understanding",
		},
		{
			name: "too long",
			mutate: func(obj map[string]any) {
				obj["final_feedback"] = strings.Repeat("x", 2001)
			},
			wantLoc: "/final_feedback",
		},
		{
			name: "step not positive",
			mutate: func(obj map[string]any) {
				obj["transformations"] = []any{map[string]any{"step": float64(0), "description": "noop step"}}
			},
			wantLoc: "/transformations/0/step",
		},
		{
			name:    "wrong type",
			mutate:  func(obj map[string]any) { obj["computations_valid"] = "yes" },
			wantLoc: "/computations_valid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Extract(validAnswerJSON)
			require.NoError(t, err)
			tt.mutate(obj)

			_, err = Validate(obj)
			require.Error(t, err)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.NotEmpty(t, schemaErr.Violations)
			require.True(t, IsAnswerError(err))

			found := false
			for _, v := range schemaErr.Violations {
				if strings.HasPrefix(v, tt.wantLoc+":") {
					found = true
				}
			}
			require.True(t, found, "expected violation at %s, got %v", tt.wantLoc, schemaErr.Violations)
		})
	}
}

func TestIsAnswerError_Other(t *testing.T) {
	require.False(t, IsAnswerError(nil))
	require.False(t, IsAnswerError(errors.New("connection reset")))
	require.True(t, IsAnswerError(fmt.Errorf("first attempt: %w", &SchemaError{Violations: []string{"/: x"}})))
}

func TestSchemaText(t *testing.T) {
	text := SchemaText()
	require.Contains(t, text, "transformation_understanding")
	require.Contains(t, text, "\n  \"")
}
