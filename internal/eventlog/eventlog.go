// Package eventlog records the progress events of a run as newline-delimited
// JSON, one line per event, for offline inspection of job lifecycles.
package eventlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/orchestration"
)

// Entry is one line of the event log.
type Entry struct {
	Timestamp  time.Time               `json:"timestamp"`
	RunID      string                  `json:"run_id"`
	Type       orchestration.EventType `json:"type"`
	Job        string                  `json:"job,omitempty"`
	Model      string                  `json:"model,omitempty"`
	TaskID     string                  `json:"task_id,omitempty"`
	Variant    int                     `json:"variant,omitempty"`
	Repeat     int                     `json:"repeat,omitempty"`
	State      models.JobState         `json:"state,omitempty"`
	Completed  int                     `json:"completed,omitempty"`
	TotalJobs  int                     `json:"total_jobs,omitempty"`
	DurationMs int64                   `json:"duration_ms,omitempty"`
	Details    map[string]any          `json:"details,omitempty"`
}

// Logger appends entries to a file. It is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	file  *os.File
	enc   *json.Encoder
	path  string
	runID string
	now   func() time.Time
	err   error
}

// Open creates or appends to the log at path. Parent directories are
// created automatically.
func Open(path, runID string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &Logger{
		file:  f,
		enc:   enc,
		path:  path,
		runID: runID,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Path returns the file path of the log.
func (l *Logger) Path() string {
	return l.path
}

// OnProgress writes event as one line. Register it with
// Dispatcher.OnProgress. The first write error is kept and reported by Close.
func (l *Logger) OnProgress(event orchestration.ProgressEvent) {
	entry := Entry{
		RunID:      l.runID,
		Type:       event.EventType,
		Job:        event.JobKey,
		Model:      event.Model,
		TaskID:     event.TaskID,
		Repeat:     event.Repeat,
		State:      event.State,
		Completed:  event.Completed,
		TotalJobs:  event.TotalJobs,
		DurationMs: event.DurationMs,
		Details:    event.Details,
	}
	// Run-level events carry no variant.
	if event.VariantName != "" {
		entry.Variant = event.VariantIndex + 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Timestamp = l.now()
	if err := l.enc.Encode(entry); err != nil && l.err == nil {
		l.err = fmt.Errorf("writing event log: %w", err)
	}
}

// Close closes the file and returns the first write error, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.err, l.file.Close())
}
