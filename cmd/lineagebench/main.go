package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Every job produced a result record
	ExitJobsFailed = 1 // One or more jobs ended with an error record
	ExitError      = 2 // Configuration or runtime error
)

// JobFailureError indicates that the run completed, but one or more jobs
// ended in the failed state.
type JobFailureError struct {
	Failed int
	Total  int
}

func (e *JobFailureError) Error() string {
	return fmt.Sprintf("run completed with %d of %d job(s) failed", e.Failed, e.Total)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var jobErr *JobFailureError
	if errors.As(err, &jobErr) {
		return ExitJobsFailed
	}
	return ExitError
}
