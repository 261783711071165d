package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spboyer/lineagebench/internal/artifacts"
	"github.com/spboyer/lineagebench/internal/cases"
	"github.com/spboyer/lineagebench/internal/config"
	"github.com/spboyer/lineagebench/internal/eventlog"
	"github.com/spboyer/lineagebench/internal/execution"
	"github.com/spboyer/lineagebench/internal/metrics"
	"github.com/spboyer/lineagebench/internal/orchestration"
	"github.com/spboyer/lineagebench/internal/projectconfig"
	"github.com/spboyer/lineagebench/internal/prompts"
	"github.com/spboyer/lineagebench/internal/reporting"
	"github.com/spboyer/lineagebench/internal/spinner"
	"github.com/spboyer/lineagebench/internal/utils"
	"github.com/spf13/cobra"
)

// clientFactory builds the service client for an engine name.
type clientFactory func(engine string, stream bool, envFile string) (execution.Client, error)

type runOptions struct {
	ping        bool
	model       string
	input       string
	output      string
	limit       int
	logLevel    string
	logFile     bool
	concurrency int
	repeat      int
	stream      bool
	engine      string
	junitPath   string
	metricsFile string
	eventsFile  string
	cases       []string
	envFile     string

	newClient clientFactory
}

func newRunCommand() *cobra.Command {
	return newRunCommandWith(&runOptions{newClient: newClient})
}

func newRunCommandWith(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every case against every model and prompt variant",
		Long: `Run loads the YAML cases from the input directory and sends each one to
every model, once per prompt variant and repetition. Answers are validated
against the answer schema (with a single repair request on failure) and
written as JSON to the output directory, followed by a statistics summary.

Unset flags fall back to .lineagebench.yaml when one is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommandE(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.ping, "ping", false, "Ping the service with the first model and exit")
	f.StringVar(&opts.model, "model", projectconfig.DefaultModel, "Comma-separated list of model aliases or IDs (e.g. gpt,claude)")
	f.StringVar(&opts.input, "input", config.DefaultInputDir, "Directory containing .yaml cases")
	f.StringVar(&opts.output, "output", config.DefaultOutputDir, "Output directory for result records")
	f.IntVar(&opts.limit, "limit", 0, "Only run the first N cases (0 = all)")
	f.StringVar(&opts.logLevel, "loglevel", projectconfig.DefaultLogLevel, "Log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	f.BoolVar(&opts.logFile, "logfile", true, "Append logs to <output>/"+utils.LogFileName)
	f.IntVar(&opts.concurrency, "concurrency", config.DefaultConcurrency, "Maximum concurrent requests")
	f.IntVar(&opts.repeat, "repeat", config.DefaultRepeat, "Run every case this many times per model and variant")
	f.BoolVar(&opts.stream, "stream", false, "Use streaming responses")
	f.StringVar(&opts.engine, "engine", projectconfig.DefaultEngine, "Service engine: openai or mock")
	f.StringVar(&opts.junitPath, "junit", "", "Write a JUnit XML report to this path")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	f.StringVar(&opts.eventsFile, "events-file", "", "Append every progress event as a JSON line to this path")
	f.StringArrayVar(&opts.cases, "case", nil, "Filter cases by ID or file name glob pattern (can be repeated)")
	f.StringVar(&opts.envFile, "env-file", projectconfig.DefaultEnvFile, "Dotenv file with service settings")

	return cmd
}

func runCommandE(cmd *cobra.Command, opts *runOptions) error {
	pc, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	applyProjectDefaults(cmd, opts, pc)

	modelIDs := pc.ResolveModels(opts.model)
	if len(modelIDs) == 0 {
		return errors.New("no model given: use --model with a comma-separated list")
	}

	var logPath string
	if opts.logFile {
		logPath = filepath.Join(opts.output, utils.LogFileName)
	}
	logger, closeLog, err := utils.SetupLogging(utils.LogOptions{
		Level:    opts.logLevel,
		Console:  cmd.ErrOrStderr(),
		FilePath: logPath,
	})
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	client, err := opts.newClient(opts.engine, opts.stream, opts.envFile)
	if err != nil {
		return err
	}

	cfg := config.NewRunConfig(modelIDs,
		config.WithVariants(prompts.DefaultVariants()...),
		config.WithConcurrency(opts.concurrency),
		config.WithRepeat(opts.repeat),
		config.WithLimit(opts.limit),
		config.WithInputDir(opts.input),
		config.WithOutputDir(opts.output),
		config.WithStream(opts.stream),
	)
	if err := cfg.Validate(); err != nil {
		return err
	}

	dispatcherOpts := []orchestration.Option{orchestration.WithLogger(logger)}
	var recorder *metrics.Recorder
	if opts.metricsFile != "" {
		recorder = metrics.NewRecorder()
		dispatcherOpts = append(dispatcherOpts, orchestration.WithObserver(recorder))
	}
	d := orchestration.NewDispatcher(cfg, client, artifacts.NewWriter(cfg.OutputDir()), dispatcherOpts...)

	out := cmd.OutOrStdout()
	if opts.ping {
		return runPing(cmd.Context(), out, d, cfg.Models()[0])
	}

	tasks, err := cases.LoadDir(cfg.InputDir())
	if err != nil {
		return err
	}
	tasks, err = cases.Filter(tasks, opts.cases)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no cases to run in %s", cfg.InputDir())
	}
	logger.Info("Loaded cases", "count", len(tasks), "dir", cfg.InputDir())

	reporter := newProgressReporter(out)
	d.OnProgress(reporter.OnProgress)

	if opts.eventsFile != "" {
		events, err := eventlog.Open(opts.eventsFile, d.RunID())
		if err != nil {
			return err
		}
		d.OnProgress(events.OnProgress)
		defer func() {
			if err := events.Close(); err != nil {
				logger.Error("Closing event log failed", "path", events.Path(), "error", err)
			}
		}()
	}

	result, err := d.Run(cmd.Context(), tasks)
	if err != nil {
		return err
	}

	printRunSummary(out, result, cfg.Models())

	if opts.junitPath != "" {
		if err := reporting.WriteJUnitXML(result, opts.junitPath); err != nil {
			return fmt.Errorf("writing JUnit report: %w", err)
		}
		fmt.Fprintf(out, "JUnit report saved to: %s\n", opts.junitPath) //nolint:errcheck
	}
	if recorder != nil {
		if err := writeMetrics(recorder, opts.metricsFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "Metrics saved to: %s\n", opts.metricsFile) //nolint:errcheck
	}

	if !result.AllWritten() {
		return &JobFailureError{Failed: result.Failed, Total: result.JobCount}
	}
	return nil
}

// applyProjectDefaults fills every flag the user did not set from the
// project configuration. Flags the command does not define count as unset.
// Paths from the file are relative to its directory.
func applyProjectDefaults(cmd *cobra.Command, opts *runOptions, pc *projectconfig.ProjectConfig) {
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f == nil || !f.Changed
	}

	if unset("model") {
		opts.model = pc.Defaults.Model
	}
	if unset("engine") {
		opts.engine = pc.Defaults.Engine
	}
	if unset("input") {
		opts.input = utils.ResolvePath(pc.Paths.Inputs, pc.Dir)
	}
	if unset("output") {
		opts.output = utils.ResolvePath(pc.Paths.Outputs, pc.Dir)
	}
	if unset("env-file") {
		opts.envFile = utils.ResolvePath(pc.Paths.EnvFile, pc.Dir)
	}
	if unset("concurrency") {
		opts.concurrency = pc.Defaults.Concurrency
	}
	if unset("repeat") {
		opts.repeat = pc.Defaults.Repeat
	}
	if unset("loglevel") {
		opts.logLevel = pc.Defaults.LogLevel
	}
	if unset("logfile") && pc.Defaults.LogFile != nil {
		opts.logFile = *pc.Defaults.LogFile
	}
	if unset("stream") && pc.Defaults.Stream != nil {
		opts.stream = *pc.Defaults.Stream
	}
}

// newClient builds the client for engine. Service settings are only read
// for the openai engine, so mock runs need no API key.
func newClient(engine string, stream bool, envFile string) (execution.Client, error) {
	switch engine {
	case "mock":
		return execution.NewMockClient(), nil
	case "openai":
		settings, err := config.LoadSettings(envFile)
		if err != nil {
			return nil, err
		}
		return execution.NewOpenAIClient(settings, execution.WithStreaming(stream)), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want openai or mock)", engine)
	}
}

func runPing(ctx context.Context, out io.Writer, d *orchestration.Dispatcher, model string) error {
	stop := spinner.Start(out, "Pinging "+model+"...")
	resp, err := d.Ping(ctx)
	stop()
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	fmt.Fprintf(out, "Ping OK (%s): %s\n", formatSeconds(resp.Duration.Seconds()), resp.Text) //nolint:errcheck
	return nil
}

func writeMetrics(recorder *metrics.Recorder, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := recorder.WriteTextfile(path); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
