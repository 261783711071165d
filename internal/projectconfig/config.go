// Package projectconfig provides the ProjectConfig struct and loader for
// .lineagebench.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/lineagebench/internal/config"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the working directory.
const FileName = ".lineagebench.yaml"

// Default values for project configuration. Run defaults come from the
// config package; New() references them and no other code should duplicate them.
const (
	DefaultEngine   = "openai"
	DefaultModel    = "gpt"
	DefaultLogLevel = "INFO"
	DefaultEnvFile  = ".env"
)

// DefaultAliases maps short model names accepted by --model to full model identifiers.
var DefaultAliases = map[string]string{
	"gpt":     "openai/gpt-5",
	"claude":  "anthropic/claude-sonnet-4",
	"google":  "google/gemini-2.5-pro",
	"mistral": "mistral/mistral-large",
	"llama":   "meta/llama-3.3-70b-instruct",
}

// PathsConfig holds the case and artifact directories.
type PathsConfig struct {
	Inputs  string `yaml:"inputs,omitempty"`
	Outputs string `yaml:"outputs,omitempty"`
	EnvFile string `yaml:"env_file,omitempty"`
}

// DefaultsConfig holds default run parameters.
type DefaultsConfig struct {
	Engine      string `yaml:"engine,omitempty"`
	Model       string `yaml:"model,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	Repeat      int    `yaml:"repeat,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	LogFile     *bool  `yaml:"log_file,omitempty"`
	Stream      *bool  `yaml:"stream,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .lineagebench.yaml.
type ProjectConfig struct {
	Paths    PathsConfig       `yaml:"paths,omitempty"`
	Defaults DefaultsConfig    `yaml:"defaults,omitempty"`
	Aliases  map[string]string `yaml:"aliases,omitempty"`

	// Dir is the directory the config file was found in, empty when defaults are used.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	aliases := make(map[string]string, len(DefaultAliases))
	for k, v := range DefaultAliases {
		aliases[k] = v
	}
	return &ProjectConfig{
		Paths: PathsConfig{
			Inputs:  config.DefaultInputDir,
			Outputs: config.DefaultOutputDir,
			EnvFile: DefaultEnvFile,
		},
		Defaults: DefaultsConfig{
			Engine:      DefaultEngine,
			Model:       DefaultModel,
			Concurrency: config.DefaultConcurrency,
			Repeat:      config.DefaultRepeat,
			LogLevel:    DefaultLogLevel,
			LogFile:     boolPtr(true),
			Stream:      boolPtr(false),
		},
		Aliases: aliases,
	}
}

// Load finds .lineagebench.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, path, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// ResolveModels splits a comma-separated model list and replaces known
// aliases with full model identifiers. Blank entries are dropped and
// unknown names are passed through unchanged.
func (c *ProjectConfig) ResolveModels(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if full, ok := c.Aliases[strings.ToLower(name)]; ok {
			name = full
		}
		out = append(out, name)
	}
	return out
}

// findConfigFile walks up from dir looking for the config file (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, string, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Inputs != "" {
		dst.Paths.Inputs = src.Paths.Inputs
	}
	if src.Paths.Outputs != "" {
		dst.Paths.Outputs = src.Paths.Outputs
	}
	if src.Paths.EnvFile != "" {
		dst.Paths.EnvFile = src.Paths.EnvFile
	}

	// Defaults
	if src.Defaults.Engine != "" {
		dst.Defaults.Engine = src.Defaults.Engine
	}
	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.Concurrency != 0 {
		dst.Defaults.Concurrency = src.Defaults.Concurrency
	}
	if src.Defaults.Repeat != 0 {
		dst.Defaults.Repeat = src.Defaults.Repeat
	}
	if src.Defaults.LogLevel != "" {
		dst.Defaults.LogLevel = src.Defaults.LogLevel
	}
	if src.Defaults.LogFile != nil {
		dst.Defaults.LogFile = src.Defaults.LogFile
	}
	if src.Defaults.Stream != nil {
		dst.Defaults.Stream = src.Defaults.Stream
	}

	// Aliases: file entries add to or replace the built-in ones.
	for k, v := range src.Aliases {
		dst.Aliases[strings.ToLower(k)] = v
	}
}

func boolPtr(b bool) *bool {
	return &b
}
