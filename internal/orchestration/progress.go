package orchestration

import (
	"github.com/spboyer/lineagebench/internal/models"
)

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart        EventType = "run_start"
	EventRunComplete     EventType = "run_complete"
	EventVariantStart    EventType = "variant_start"
	EventVariantComplete EventType = "variant_complete"
	EventJobStart        EventType = "job_start"
	EventJobState        EventType = "job_state"
	EventJobComplete     EventType = "job_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType     EventType
	JobKey        string
	Model         string
	TaskID        string
	VariantIndex  int
	VariantName   string
	TotalVariants int
	Repeat        int
	// Completed counts finished jobs including this one (job_complete only).
	Completed  int
	TotalJobs  int
	State      models.JobState
	DurationMs int64
	Details    map[string]any
}

// OnProgress registers a progress listener
func (d *Dispatcher) OnProgress(listener ProgressListener) {
	d.progressMu.Lock()
	defer d.progressMu.Unlock()
	d.listeners = append(d.listeners, listener)
}

func (d *Dispatcher) notifyProgress(event ProgressEvent) {
	d.progressMu.Lock()
	listeners := make([]ProgressListener, len(d.listeners))
	copy(listeners, d.listeners)
	d.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func jobEvent(t EventType, job models.Job, variant models.PromptVariant) ProgressEvent {
	return ProgressEvent{
		EventType:    t,
		JobKey:       job.Key(),
		Model:        job.Model,
		TaskID:       job.TaskIDOrUnknown(),
		VariantIndex: job.VariantIndex,
		VariantName:  variant.Name,
		Repeat:       job.Repeat,
	}
}
