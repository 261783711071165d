// Package artifacts persists one JSON document per job attempt plus a
// per-run summary.
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spboyer/lineagebench/internal/models"
)

// StampLayout is the timestamp component of artifact names (minute resolution).
const StampLayout = "20060102_1504"

// WriteError is returned when an artifact cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing artifact %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer writes artifacts below an output directory, one subdirectory per
// model. Files are created exclusively, so two artifacts never end up on the
// same path, even across writers or processes sharing the directory.
type Writer struct {
	outDir string
	now    func() time.Time
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithClock replaces time.Now for the timestamp component of file names.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a writer rooted at outDir.
func NewWriter(outDir string, opts ...WriterOption) *Writer {
	w := &Writer{outDir: outDir, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	return w
}

// OutDir returns the root output directory.
func (w *Writer) OutDir() string {
	return w.outDir
}

// ModelDir returns the directory holding the artifacts of model.
func (w *Writer) ModelDir(model string) string {
	return filepath.Join(w.outDir, ModelShortName(model))
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeName(name string) string {
	s := strings.TrimSpace(name)
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, ".")
	if s == "" {
		s = "unnamed"
	}
	return s
}

// ModelShortName returns the segment after the last '/' or ':' of a model
// identifier, made safe for use in a file name.
func ModelShortName(model string) string {
	if i := strings.LastIndexAny(model, "/:"); i >= 0 {
		model = model[i+1:]
	}
	return sanitizeName(model)
}

// ResultFilename returns the base name of a successful job's artifact.
func ResultFilename(model, taskID string, variantIndex, repeat int, ts time.Time) string {
	return fmt.Sprintf("RESULTS_%s_%s_REPEAT%d_PROMPT%d_%s.json",
		strings.ToUpper(ModelShortName(model)),
		strings.ToUpper(sanitizeName(taskID)),
		repeat, variantIndex+1, ts.Format(StampLayout))
}

// ErrorFilename returns the base name of a failed job's artifact.
func ErrorFilename(model, taskID string, variantIndex, repeat int, ts time.Time) string {
	return fmt.Sprintf("error_results_%s_%s_REPEAT%d_PROMPT%d_%s.json",
		sanitizeName(taskID),
		ModelShortName(model),
		repeat, variantIndex+1, ts.Format(StampLayout))
}

// Write persists the record of a successful job and returns its path.
func (w *Writer) Write(record any, model string, task models.Task, variantIndex, repeat int) (string, error) {
	name := ResultFilename(model, task.ID, variantIndex, repeat, w.now())
	return w.writeJSON(w.ModelDir(model), name, record)
}

// WriteError persists the record of a failed job and returns its path.
func (w *Writer) WriteError(rec models.ErrorRecord, model string, task models.Task, variantIndex, repeat int) (string, error) {
	id := rec.CaseID
	if id == "" {
		id = task.ID
	}
	name := ErrorFilename(model, id, variantIndex, repeat, w.now())
	return w.writeJSON(w.ModelDir(model), name, rec)
}

// WriteSummary persists the per-model statistics of a run.
func (w *Writer) WriteSummary(summaries map[string]models.ModelSummary) (string, error) {
	name := fmt.Sprintf("run_summary_%s.json", w.now().Format(StampLayout))
	return w.writeJSON(w.outDir, name, summaries)
}

func (w *Writer) writeJSON(dir, name string, v any) (string, error) {
	data, err := encode(v)
	if err != nil {
		return "", &WriteError{Path: filepath.Join(dir, name), Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WriteError{Path: dir, Err: err}
	}

	path, err := createExclusive(filepath.Join(dir, name), data)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// createExclusive writes data to path, or to path with a _2, _3, ... suffix
// before the extension when a file of that name already exists.
func createExclusive(path string, data []byte) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	candidate := path
	for n := 2; ; n++ {
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
			continue
		}
		if err != nil {
			return candidate, err
		}
		if _, err := f.Write(data); err != nil {
			f.Close() //nolint:errcheck
			return candidate, err
		}
		return candidate, f.Close()
	}
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
