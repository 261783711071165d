package metrics

import (
	"sync"

	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/statistics"
)

// Aggregator collects per-model response statistics from successful jobs.
// It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	samples map[string]*modelSamples
	order   []string

	ciOpts []statistics.Option
}

type modelSamples struct {
	chars   []float64
	seconds []float64
}

// NewAggregator creates an aggregator that already knows models, so they
// appear in SummarizeAll even without samples. ciOpts tune the duration
// confidence interval.
func NewAggregator(modelIDs []string, ciOpts ...statistics.Option) *Aggregator {
	a := &Aggregator{samples: map[string]*modelSamples{}, ciOpts: ciOpts}
	for _, m := range modelIDs {
		a.ensure(m)
	}
	return a
}

func (a *Aggregator) ensure(model string) *modelSamples {
	s, ok := a.samples[model]
	if !ok {
		s = &modelSamples{}
		a.samples[model] = s
		a.order = append(a.order, model)
	}
	return s
}

// Record appends one sample for model.
func (a *Aggregator) Record(model string, durationSeconds float64, charCount int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.ensure(model)
	s.seconds = append(s.seconds, durationSeconds)
	s.chars = append(s.chars, float64(charCount))
}

// Models returns every known model in first-seen order.
func (a *Aggregator) Models() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Summarize computes the statistics of model. Rates whose denominator is
// zero are reported as 0.
func (a *Aggregator) Summarize(model string) models.ModelSummary {
	a.mu.Lock()
	var chars, seconds []float64
	if s, ok := a.samples[model]; ok {
		chars = append(chars, s.chars...)
		seconds = append(seconds, s.seconds...)
	}
	a.mu.Unlock()

	summary := models.ModelSummary{SampleCount: len(seconds)}
	if len(seconds) == 0 {
		return summary
	}

	totalChars := Sum(chars)
	totalSeconds := Sum(seconds)

	summary.MeanChars = Round(Mean(chars), 2)
	summary.MeanDuration = Round(Mean(seconds), 3)
	summary.DurationStdDev = Round(StdDev(seconds), 3)
	if totalSeconds > 0 {
		summary.CharsPerSecond = Round(totalChars/totalSeconds, 2)
	}
	if totalChars > 0 {
		summary.SecondsPer100Chars = Round(totalSeconds/totalChars*100, 3)
	}
	if len(seconds) >= 2 {
		ci := statistics.MeanCI(seconds, 0.95, a.ciOpts...)
		summary.DurationCI95 = &models.ConfidenceInterval{
			Lower: Round(ci.Lower, 3),
			Upper: Round(ci.Upper, 3),
			Mean:  Round(ci.Mean, 3),
		}
	}
	return summary
}

// SummarizeAll summarizes every known model.
func (a *Aggregator) SummarizeAll() map[string]models.ModelSummary {
	out := make(map[string]models.ModelSummary)
	for _, m := range a.Models() {
		out[m] = a.Summarize(m)
	}
	return out
}
