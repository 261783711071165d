package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/orchestration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, sc.Err())
	return entries
}

func TestLogger_WritesOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")
	l, err := Open(path, "run-1")
	require.NoError(t, err)
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.OnProgress(orchestration.ProgressEvent{EventType: orchestration.EventRunStart, TotalJobs: 3, TotalVariants: 3})
	l.OnProgress(orchestration.ProgressEvent{
		EventType: orchestration.EventJobState, JobKey: "openai/gpt-5/orders/prompt2/repeat1",
		Model: "openai/gpt-5", TaskID: "orders", VariantIndex: 1, VariantName: "baseline-repeat",
		Repeat: 1, State: models.JobRepairing,
	})
	l.OnProgress(orchestration.ProgressEvent{
		EventType: orchestration.EventJobComplete, Model: "openai/gpt-5", VariantName: "baseline",
		State: models.JobWritten, Completed: 1, TotalJobs: 3, DurationMs: 1200,
		Details: map[string]any{"corrected": true},
	})
	require.NoError(t, l.Close())

	entries := readEntries(t, path)
	require.Len(t, entries, 3)

	assert.Equal(t, orchestration.EventRunStart, entries[0].Type)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, 0, entries[0].Variant)
	assert.Equal(t, fixed, entries[0].Timestamp)

	assert.Equal(t, models.JobRepairing, entries[1].State)
	assert.Equal(t, 2, entries[1].Variant)
	assert.Equal(t, "orders", entries[1].TaskID)

	assert.Equal(t, 1, entries[2].Variant)
	assert.Equal(t, int64(1200), entries[2].DurationMs)
	assert.Equal(t, true, entries[2].Details["corrected"])
}

func TestLogger_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for _, id := range []string{"a", "b"} {
		l, err := Open(path, id)
		require.NoError(t, err)
		l.OnProgress(orchestration.ProgressEvent{EventType: orchestration.EventRunComplete})
		require.NoError(t, l.Close())
	}

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].RunID)
	assert.Equal(t, "b", entries[1].RunID)
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := Open(path, "run")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.OnProgress(orchestration.ProgressEvent{EventType: orchestration.EventJobStart, Model: "m"})
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close())

	assert.Len(t, readEntries(t, path), 50)
}

func TestOpen_InvalidDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := Open(filepath.Join(file, "events.jsonl"), "run")
	require.Error(t, err)
}
