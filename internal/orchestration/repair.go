package orchestration

import (
	"context"
	"fmt"

	"github.com/spboyer/lineagebench/internal/execution"
	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/prompts"
	"github.com/spboyer/lineagebench/internal/validation"
)

// RepairExhaustedError means the answer was still invalid after the single
// corrective request.
type RepairExhaustedError struct {
	First  error
	Second error
}

func (e *RepairExhaustedError) Error() string {
	return fmt.Sprintf("answer still invalid after repair: %v (first attempt: %v)", e.Second, e.First)
}

func (e *RepairExhaustedError) Unwrap() []error {
	return []error{e.First, e.Second}
}

// repair sends one corrective prompt embedding the rejected text and
// validates the reply. It never retries.
func (d *Dispatcher) repair(ctx context.Context, run *jobRun, systemPrompt string, rejected execution.RawResponse, firstErr error) (*models.StructuredAnswer, execution.RawResponse, error) {
	userPrompt := prompts.RepairPrompt(rejected.Text, validation.SchemaText())

	d.logger.Info("Requesting corrected answer", "job", run.job.Key(), "reason", firstErr)
	resp, err := d.request(ctx, run, systemPrompt, userPrompt, true)
	if err != nil {
		return nil, resp, fmt.Errorf("repair request: %w", err)
	}

	run.advance(models.JobRevalidating)
	answer, err := validation.Parse(resp.Text)
	if err != nil {
		return nil, resp, &RepairExhaustedError{First: firstErr, Second: err}
	}
	return answer, resp, nil
}
