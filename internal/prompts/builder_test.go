package prompts

import (
	"strings"
	"testing"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/validation"
	"github.com/stretchr/testify/require"
)

func sampleTask() models.Task {
	return models.Task{
		ID:          "umsatz_region",
		Description: "Umsatz je Region",
		InputTables: map[string]any{
			"orders": map[string]any{"columns": []any{"order_id", "amount"}, "note": "Größe <10>"},
		},
		SQLScript: "SELECT region, SUM(amount) FROM orders GROUP BY region;",
	}
}

func TestDefaultVariants(t *testing.T) {
	variants := DefaultVariants()
	require.Len(t, variants, 3)
	require.Equal(t, variants[0].SystemPrompt, variants[1].SystemPrompt)
	require.Equal(t, variants[0].UserTemplate, variants[1].UserTemplate)
	require.NotEqual(t, variants[0].SystemPrompt, variants[2].SystemPrompt)

	for _, v := range variants {
		_, err := Build(v, sampleTask())
		require.NoError(t, err, v.Name)
	}
}

func TestBuild_RendersTaskFields(t *testing.T) {
	prompt, err := Build(DefaultVariants()[0], sampleTask())
	require.NoError(t, err)

	require.Contains(t, prompt, "SELECT region, SUM(amount) FROM orders GROUP BY region;")
	require.Contains(t, prompt, `"note":"Größe <10>"`)
	require.Contains(t, prompt, models.DefaultFocus)
	require.Contains(t, prompt, validation.SchemaText())
}

func TestBuild_CustomFocus(t *testing.T) {
	task := sampleTask()
	task.Focus = "NULL-Behandlung"

	prompt, err := Build(DefaultVariants()[2], task)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "NULL-Behandlung"))
}

func TestBuild_TemplateErrors(t *testing.T) {
	_, err := Build(models.PromptVariant{Name: "broken", UserTemplate: "{{.Inputs"}, sampleTask())
	require.ErrorContains(t, err, `variant "broken"`)

	_, err = Build(models.PromptVariant{Name: "unknown-field", UserTemplate: "{{.Nope}}"}, sampleTask())
	require.Error(t, err)
}

func TestBuild_UnencodableInputs(t *testing.T) {
	task := sampleTask()
	task.InputTables = map[any]any{1: "x"}

	_, err := Build(DefaultVariants()[0], task)
	require.ErrorContains(t, err, "serializing input tables")
}

func TestNewData_NilInputs(t *testing.T) {
	data, err := NewData(models.Task{ID: "x", Description: "y"})
	require.NoError(t, err)
	require.Equal(t, "null", data.Inputs)
	require.Equal(t, "x", data.CaseID)
}

func TestRepairPrompt(t *testing.T) {
	raw := `{"transformation_understanding": "ok"`
	prompt := RepairPrompt(raw, `{"type":"object"}`)

	require.True(t, strings.HasPrefix(prompt, "Die vorherige Antwort entsprach nicht dem geforderten JSON-Schema."))
	require.Contains(t, prompt, "Hier ist die fehlerhafte Antwort:\n"+raw+"\n")
	require.Contains(t, prompt, "Das erwartete JSON-Schema ist:\n{\"type\":\"object\"}")
}
