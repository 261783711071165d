package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVariant = models.PromptVariant{Name: "v1", SystemPrompt: "sys", UserTemplate: "{{.Inputs}}"}

func TestNewRunConfig_DefaultValues(t *testing.T) {
	cfg := NewRunConfig([]string{"gpt"})

	assert.Equal(t, []string{"gpt"}, cfg.Models())
	assert.Empty(t, cfg.Variants())
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency())
	assert.Equal(t, DefaultRepeat, cfg.Repeat())
	assert.Zero(t, cfg.Limit())
	assert.Equal(t, DefaultInputDir, cfg.InputDir())
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir())
	assert.False(t, cfg.Stream())
}

func TestNewRunConfig_AppliesFunctionalOptions(t *testing.T) {
	cfg := NewRunConfig(
		[]string{"a", "b"},
		WithVariants(testVariant),
		WithConcurrency(3),
		WithRepeat(2),
		WithLimit(5),
		WithInputDir("cases"),
		WithOutputDir("out"),
		WithStream(true),
	)

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Variants(), 1)
	assert.Equal(t, 3, cfg.Concurrency())
	assert.Equal(t, 2, cfg.Repeat())
	assert.Equal(t, 5, cfg.Limit())
	assert.Equal(t, "cases", cfg.InputDir())
	assert.Equal(t, "out", cfg.OutputDir())
	assert.True(t, cfg.Stream())
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *RunConfig
		want string
	}{
		{"no models", NewRunConfig(nil, WithVariants(testVariant)), "Models"},
		{"blank model", NewRunConfig([]string{""}, WithVariants(testVariant)), "Models[0]"},
		{"no variants", NewRunConfig([]string{"gpt"}), "Variants"},
		{"zero concurrency", NewRunConfig([]string{"gpt"}, WithVariants(testVariant), WithConcurrency(0)), "Concurrency"},
		{"zero repeat", NewRunConfig([]string{"gpt"}, WithVariants(testVariant), WithRepeat(0)), "Repeat"},
		{"negative limit", NewRunConfig([]string{"gpt"}, WithVariants(testVariant), WithLimit(-1)), "Limit"},
		{"empty template", NewRunConfig([]string{"gpt"}, WithVariants(models.PromptVariant{Name: "x"})), "empty user template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range settingsKeys {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, old) })
		}
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	s, err := LoadSettings(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", s.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", s.BaseURL)
	assert.Equal(t, "openai:gpt-5", s.DefaultModelAlias)
	assert.InDelta(t, 0.2, s.Temperature, 1e-9)
	assert.Equal(t, 2000, s.MaxTokens)
	assert.Equal(t, 60*time.Second, s.RequestTimeout())
}

func TestLoadSettings_EnvFileOverlaidByEnvironment(t *testing.T) {
	clearSettingsEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-file\nOPENAI_BASE_URL=https://llm.example.com/v1\nTEMPERATURE=0.7\nMAX_TOKENS=512\nUNRELATED=1\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))
	t.Setenv("MAX_TOKENS", "1024")

	s, err := LoadSettings(envFile)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", s.APIKey)
	assert.Equal(t, "https://llm.example.com/v1", s.BaseURL)
	assert.InDelta(t, 0.7, s.Temperature, 1e-9)
	assert.Equal(t, 1024, s.MaxTokens)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing key", map[string]string{}, "OPENAI_API_KEY"},
		{"bad url", map[string]string{"OPENAI_API_KEY": "k", "OPENAI_BASE_URL": "not a url"}, "OPENAI_BASE_URL"},
		{"bad timeout", map[string]string{"OPENAI_API_KEY": "k", "REQUEST_TIMEOUT_S": "0"}, "REQUEST_TIMEOUT_S"},
		{"not a number", map[string]string{"OPENAI_API_KEY": "k", "MAX_TOKENS": "many"}, "decoding settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSettingsEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadSettings("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
