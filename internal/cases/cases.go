// Package cases loads data-lineage analysis cases from a directory of YAML files.
package cases

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spboyer/lineagebench/internal/models"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CaseLoadError is returned when a case file cannot be read, parsed or
// lacks a required field. It aborts the run before any job starts.
type CaseLoadError struct {
	Path string
	Err  error
}

func (e *CaseLoadError) Error() string {
	return fmt.Sprintf("loading case %s: %v", e.Path, e.Err)
}

func (e *CaseLoadError) Unwrap() error { return e.Err }

// LoadDir reads every *.yaml file in dir, ordered by file name.
func LoadDir(dir string) ([]models.Task, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &CaseLoadError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &CaseLoadError{Path: dir, Err: errors.New("not a directory")}
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, &CaseLoadError{Path: dir, Err: err}
	}
	sort.Strings(paths)

	tasks := make([]models.Task, 0, len(paths))
	for _, path := range paths {
		task, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// LoadFile reads a single case file.
func LoadFile(path string) (*models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CaseLoadError{Path: path, Err: err}
	}

	var task models.Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, &CaseLoadError{Path: path, Err: err}
	}
	task.ID = strings.TrimSpace(task.ID)
	task.SourceFile = filepath.Base(path)
	task.InputTables = stringKeys(task.InputTables)

	if err := validate.Struct(task); err != nil {
		return nil, &CaseLoadError{Path: path, Err: describeValidation(err)}
	}
	return &task, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid fields: %s", strings.Join(missing, ", "))
}

// stringKeys rewrites maps decoded with non-string keys (yaml.v3 produces
// map[any]any for keys like 2023) so the tables can be encoded as JSON.
func stringKeys(v any) any {
	switch v := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range v {
			v[k] = stringKeys(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = stringKeys(val)
		}
		return v
	default:
		return v
	}
}
