package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spboyer/lineagebench/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Requests(t *testing.T) {
	r := NewRecorder()
	r.RequestFinished("gpt", false, 2*time.Second, nil)
	r.RequestFinished("gpt", true, time.Second, nil)
	r.RequestFinished("gpt", false, 0, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("gpt", "initial", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("gpt", "repair", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("gpt", "initial", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.requestDuration))
}

func TestRecorder_Jobs(t *testing.T) {
	r := NewRecorder()
	job := models.Job{Model: "claude", Task: models.Task{ID: "c1"}}

	r.JobFinished(job, models.JobWritten, false)
	r.JobFinished(job, models.JobWritten, true)
	r.JobFinished(job, models.JobFailed, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.jobsTotal.WithLabelValues("claude", "written")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobsTotal.WithLabelValues("claude", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.repairsTotal.WithLabelValues("claude", "repaired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.repairsTotal.WithLabelValues("claude", "exhausted")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.JobFinished(models.Job{Model: "gpt"}, models.JobWritten, false)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `lineagebench_jobs_total{model="gpt",state="written"} 1`))
}
