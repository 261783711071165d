package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
)

// Settings configures the connection to the text-generation service.
type Settings struct {
	APIKey            string  `mapstructure:"OPENAI_API_KEY" validate:"required"`
	BaseURL           string  `mapstructure:"OPENAI_BASE_URL" validate:"required,url"`
	DefaultModelAlias string  `mapstructure:"DEFAULT_MODEL_ALIAS"`
	Temperature       float64 `mapstructure:"TEMPERATURE" validate:"gte=0,lte=2"`
	MaxTokens         int     `mapstructure:"MAX_TOKENS" validate:"gte=1"`
	RequestTimeoutS   int     `mapstructure:"REQUEST_TIMEOUT_S" validate:"gte=1"`
}

// RequestTimeout is the bound applied to each request.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutS) * time.Second
}

func settingsDefaults() map[string]any {
	return map[string]any{
		"OPENAI_BASE_URL":     "https://api.openai.com/v1",
		"DEFAULT_MODEL_ALIAS": "openai:gpt-5",
		"TEMPERATURE":         0.2,
		"MAX_TOKENS":          2000,
		"REQUEST_TIMEOUT_S":   60,
	}
}

var settingsKeys = []string{
	"OPENAI_API_KEY",
	"OPENAI_BASE_URL",
	"DEFAULT_MODEL_ALIAS",
	"TEMPERATURE",
	"MAX_TOKENS",
	"REQUEST_TIMEOUT_S",
}

var settingsValidate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}()

// LoadSettings reads settings from envFile (a .env file, skipped when it
// does not exist) overlaid by the process environment. Unknown keys are
// ignored.
func LoadSettings(envFile string) (*Settings, error) {
	values := settingsDefaults()

	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for _, key := range settingsKeys {
				if v, ok := fileValues[key]; ok {
					values[key] = v
				}
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	for _, key := range settingsKeys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	var s Settings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	if err := settingsValidate.Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", describe(err))
	}
	return &s, nil
}
