// Package config holds the configuration of a benchmark run and the
// settings of the text-generation service.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spboyer/lineagebench/internal/models"
)

// Defaults for a run when neither flags nor project config set a value.
const (
	DefaultInputDir    = "inputs"
	DefaultOutputDir   = "outputs"
	DefaultConcurrency = 8
	DefaultRepeat      = 1
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RunConfig describes one benchmark run: which models to query, with which
// prompt variants, how often and how many requests at a time.
type RunConfig struct {
	models      []string
	variants    []models.PromptVariant
	concurrency int
	repeat      int
	limit       int
	inputDir    string
	outputDir   string
	stream      bool
}

// RunOption configures a RunConfig.
type RunOption func(*RunConfig)

// WithVariants sets the ordered prompt variants.
func WithVariants(variants ...models.PromptVariant) RunOption {
	return func(c *RunConfig) {
		c.variants = variants
	}
}

// WithConcurrency sets the maximum number of in-flight requests.
func WithConcurrency(n int) RunOption {
	return func(c *RunConfig) {
		c.concurrency = n
	}
}

// WithRepeat sets how often every (task, model, variant) combination runs.
func WithRepeat(n int) RunOption {
	return func(c *RunConfig) {
		c.repeat = n
	}
}

// WithLimit truncates the task list to its first n entries. Zero means no limit.
func WithLimit(n int) RunOption {
	return func(c *RunConfig) {
		c.limit = n
	}
}

func WithInputDir(dir string) RunOption {
	return func(c *RunConfig) {
		c.inputDir = dir
	}
}

func WithOutputDir(dir string) RunOption {
	return func(c *RunConfig) {
		c.outputDir = dir
	}
}

// WithStream records that answers are streamed.
func WithStream(enabled bool) RunOption {
	return func(c *RunConfig) {
		c.stream = enabled
	}
}

// NewRunConfig creates a run configuration for the given models.
func NewRunConfig(modelIDs []string, opts ...RunOption) *RunConfig {
	c := &RunConfig{
		models:      modelIDs,
		concurrency: DefaultConcurrency,
		repeat:      DefaultRepeat,
		inputDir:    DefaultInputDir,
		outputDir:   DefaultOutputDir,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RunConfig) Models() []string                 { return c.models }
func (c *RunConfig) Variants() []models.PromptVariant { return c.variants }
func (c *RunConfig) Concurrency() int                 { return c.concurrency }
func (c *RunConfig) Repeat() int                      { return c.repeat }
func (c *RunConfig) Limit() int                       { return c.limit }
func (c *RunConfig) InputDir() string                 { return c.inputDir }
func (c *RunConfig) OutputDir() string                { return c.outputDir }
func (c *RunConfig) Stream() bool                     { return c.stream }

type runParams struct {
	Models      []string               `validate:"min=1,dive,required"`
	Variants    []models.PromptVariant `validate:"min=1,dive"`
	Concurrency int                    `validate:"gte=1"`
	Repeat      int                    `validate:"gte=1"`
	Limit       int                    `validate:"gte=0"`
	OutputDir   string                 `validate:"required"`
}

// Validate reports every invalid setting at once.
func (c *RunConfig) Validate() error {
	p := runParams{
		Models:      c.models,
		Variants:    c.variants,
		Concurrency: c.concurrency,
		Repeat:      c.repeat,
		Limit:       c.limit,
		OutputDir:   c.outputDir,
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid run configuration: %w", describe(err))
	}
	for i, v := range c.variants {
		if strings.TrimSpace(v.UserTemplate) == "" {
			return fmt.Errorf("invalid run configuration: variant %d (%s) has an empty user template", i+1, v.Name)
		}
	}
	return nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
