package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/lineagebench/internal/models"
	"github.com/spboyer/lineagebench/internal/orchestration"
)

// progressReporter prints one line per finished job. Listeners are called
// from job goroutines, so writes are serialized.
type progressReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func newProgressReporter(out io.Writer) *progressReporter {
	return &progressReporter{out: out}
}

func (p *progressReporter) OnProgress(event orchestration.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.EventType {
	case orchestration.EventRunStart:
		fmt.Fprintf(p.out, "Starting run with %d job(s) across %d prompt variant(s)...\n", event.TotalJobs, event.TotalVariants) //nolint:errcheck
	case orchestration.EventVariantStart:
		fmt.Fprintf(p.out, "\nPrompt %d/%d (%s)\n", event.VariantIndex+1, event.TotalVariants, event.VariantName) //nolint:errcheck
	case orchestration.EventJobComplete:
		p.jobComplete(event)
	case orchestration.EventRunComplete:
		fmt.Fprintf(p.out, "\nFinished %d/%d job(s) in %s\n", event.Completed, event.TotalJobs, formatSeconds(float64(event.DurationMs)/1000)) //nolint:errcheck
	}
}

func (p *progressReporter) jobComplete(event orchestration.ProgressEvent) {
	icon := "✓"
	suffix := ""
	if corrected, _ := event.Details["corrected"].(bool); corrected {
		suffix = " [repaired]"
	}
	if event.State == models.JobFailed {
		icon = "✗"
		if msg, ok := event.Details["error"].(string); ok {
			suffix = ": " + msg
		}
	}
	fmt.Fprintf(p.out, "%s [%d/%d] %s %s repeat %d (%s)%s\n", //nolint:errcheck
		icon, event.Completed, event.TotalJobs, event.Model, event.TaskID, event.Repeat,
		formatSeconds(float64(event.DurationMs)/1000), suffix)
}

var statsHeader = []string{"Model", "Samples", "Mean chars", "Mean s", "Std s", "Chars/s", "s/100 chars", "95% CI s"}

// printRunSummary prints the per-model statistics table and artifact totals.
func printRunSummary(w io.Writer, result *orchestration.RunResult, modelOrder []string) {
	rows := [][]string{statsHeader}
	for _, model := range modelOrder {
		s, ok := result.Summaries[model]
		if !ok {
			continue
		}
		ci := "-"
		if s.DurationCI95 != nil {
			ci = fmt.Sprintf("%.3f-%.3f", s.DurationCI95.Lower, s.DurationCI95.Upper)
		}
		rows = append(rows, []string{
			model,
			fmt.Sprintf("%d", s.SampleCount),
			fmt.Sprintf("%.2f", s.MeanChars),
			fmt.Sprintf("%.3f", s.MeanDuration),
			fmt.Sprintf("%.3f", s.DurationStdDev),
			fmt.Sprintf("%.2f", s.CharsPerSecond),
			fmt.Sprintf("%.3f", s.SecondsPer100Chars),
			ci,
		})
	}

	fmt.Fprintf(w, "\nRun %s\n", result.RunID) //nolint:errcheck
	writeTable(w, rows)
	fmt.Fprintf(w, "\nWritten: %d  Failed: %d  Total: %d\n", result.Written, result.Failed, result.JobCount) //nolint:errcheck
	if result.SummaryPath != "" {
		fmt.Fprintf(w, "Summary saved to: %s\n", result.SummaryPath) //nolint:errcheck
	}
}

// writeTable prints rows with columns padded to their display width.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")) //nolint:errcheck
		if r == 0 {
			seps := make([]string, len(widths))
			for i, n := range widths {
				seps[i] = strings.Repeat("─", n)
			}
			fmt.Fprintln(w, strings.Join(seps, "  ")) //nolint:errcheck
		}
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}
