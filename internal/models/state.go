package models

// JobState is the lifecycle position of a single job.
type JobState string

const (
	JobPending        JobState = "pending"
	JobAwaitingPermit JobState = "awaiting_permit"
	JobRequesting     JobState = "requesting"
	JobValidating     JobState = "validating"
	JobRepairing      JobState = "repairing"
	JobRevalidating   JobState = "revalidating"
	JobWritten        JobState = "written"
	JobFailed         JobState = "failed"
)

// jobTransitions lists the states reachable from each state. Jobs only move forward.
var jobTransitions = map[JobState][]JobState{
	JobPending:        {JobAwaitingPermit, JobFailed},
	JobAwaitingPermit: {JobRequesting, JobFailed},
	JobRequesting:     {JobValidating, JobFailed},
	JobValidating:     {JobWritten, JobRepairing, JobFailed},
	JobRepairing:      {JobRevalidating, JobFailed},
	JobRevalidating:   {JobWritten, JobFailed},
}

// CanTransition reports whether a job in state s may move to next.
func (s JobState) CanTransition(next JobState) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s is WRITTEN or FAILED.
func (s JobState) Terminal() bool {
	return s == JobWritten || s == JobFailed
}
