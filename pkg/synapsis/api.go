// Package synapsis is the public entry point for running plasticity
// experiments: single seeded runs, multi-seed benchmarks across
// conditions, and report generation over persisted results.
package synapsis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"synapsis/internal/experiment"
	"synapsis/internal/model"
	"synapsis/internal/pattern"
	"synapsis/internal/report"
	"synapsis/internal/stats"
	"synapsis/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "synapsis.db"
	defaultEpisodes     = 1000
	defaultWorkers      = 4
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store        storage.Store
	artifactsDir string
	initialized  bool
}

// RunRequest describes one seeded training run. A zero Patterns slice
// falls back to the built-in four-pattern demo set.
type RunRequest struct {
	Condition    string
	Network      model.Config
	Patterns     []model.Pattern
	Episodes     int
	Seed         int64
	EvalWindow   int
	SmoothWindow int

	Tune     bool
	TuneSpec *experiment.TuneSpec
}

type RunSummary struct {
	RunID         string
	ArtifactsDir  string
	FinalAccuracy float64
	FinalLoss     float64
	Accuracy      stats.Summary
}

// BenchmarkRequest runs every condition across the same seeds and writes
// an aggregate report. Conditions sharing the request-level fields only
// differ in their network configuration.
type BenchmarkRequest struct {
	Name       string
	Conditions []experiment.Condition
	Patterns   []model.Pattern
	Seeds      []int64
	Episodes   int
	Workers    int
	EvalWindow int
}

type BenchmarkSummary struct {
	ExperimentID string
	ReportDir    string
	Conditions   []report.ConditionSummary
	Comparisons  []report.Comparison
}

type HistoryRequest struct {
	RunID string
	Limit int
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, artifactsDir: artifactsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Run executes one seeded training run, persists it, and writes its
// artifacts.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	spec := experiment.RunSpec{
		Condition:  req.Condition,
		Config:     req.Network,
		Patterns:   req.Patterns,
		Episodes:   req.Episodes,
		EvalWindow: req.EvalWindow,
	}
	if spec.Condition == "" {
		spec.Condition = "default"
	}
	if len(spec.Patterns) == 0 {
		spec.Patterns = pattern.FourBitDemo()
	}
	if spec.Episodes <= 0 {
		spec.Episodes = defaultEpisodes
	}
	if req.Tune {
		spec.Tune = req.TuneSpec
		if spec.Tune == nil {
			spec.Tune = &experiment.TuneSpec{Attempts: 4, Steps: 6, StepSize: 0.35}
		}
	}

	runner := experiment.NewRunner(c.store, 1)
	runs, err := runner.RunSeeds(ctx, spec, []int64{req.Seed})
	if err != nil {
		return RunSummary{}, err
	}
	run := runs[0]

	dir, err := report.WriteRunArtifacts(c.artifactsDir, run, req.SmoothWindow)
	if err != nil {
		return RunSummary{}, err
	}
	summary, err := stats.Summarize(run.AccuracySeries)
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:         run.Record.RunID,
		ArtifactsDir:  filepath.Clean(dir),
		FinalAccuracy: run.Record.FinalAccuracy,
		FinalLoss:     run.Record.FinalLoss,
		Accuracy:      summary,
	}, nil
}

// Benchmark runs a multi-seed experiment over the given conditions and
// writes the aggregate report.
func (c *Client) Benchmark(ctx context.Context, req BenchmarkRequest) (BenchmarkSummary, error) {
	if err := c.Init(ctx); err != nil {
		return BenchmarkSummary{}, err
	}
	if len(req.Conditions) == 0 {
		return BenchmarkSummary{}, errors.New("at least one condition is required")
	}
	if req.Name == "" {
		req.Name = "benchmark"
	}
	if len(req.Seeds) == 0 {
		req.Seeds = []int64{1}
	}

	spec := experiment.RunSpec{
		Patterns:   req.Patterns,
		Episodes:   req.Episodes,
		EvalWindow: req.EvalWindow,
	}
	if len(spec.Patterns) == 0 {
		spec.Patterns = pattern.FourBitDemo()
	}
	if spec.Episodes <= 0 {
		spec.Episodes = defaultEpisodes
	}
	workers := req.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	runner := experiment.NewRunner(c.store, workers)
	result, err := runner.RunExperiment(ctx, req.Name, req.Conditions, spec, req.Seeds)
	if err != nil {
		return BenchmarkSummary{}, err
	}

	built, err := report.BuildExperimentReport(result)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	dir, err := report.WriteExperimentReport(c.artifactsDir, built)
	if err != nil {
		return BenchmarkSummary{}, err
	}

	return BenchmarkSummary{
		ExperimentID: result.Record.ID,
		ReportDir:    filepath.Clean(dir),
		Conditions:   built.Conditions,
		Comparisons:  built.Comparisons,
	}, nil
}

// Report rebuilds an experiment report from persisted runs and rewrites
// its artifacts.
func (c *Client) Report(ctx context.Context, experimentID string) (BenchmarkSummary, error) {
	if experimentID == "" {
		return BenchmarkSummary{}, errors.New("experiment id is required")
	}
	if err := c.Init(ctx); err != nil {
		return BenchmarkSummary{}, err
	}

	record, ok, err := c.store.GetExperiment(ctx, experimentID)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	if !ok {
		return BenchmarkSummary{}, fmt.Errorf("experiment not found: %s", experimentID)
	}

	runs, err := c.store.ListRuns(ctx, experimentID)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	if len(runs) == 0 {
		return BenchmarkSummary{}, fmt.Errorf("no runs recorded for experiment: %s", experimentID)
	}

	result := experiment.ExperimentResult{
		Record:  record,
		Results: make(map[string][]experiment.RunResult),
	}
	for _, run := range runs {
		series, _, err := c.store.GetAccuracySeries(ctx, run.RunID)
		if err != nil {
			return BenchmarkSummary{}, err
		}
		result.Results[run.Condition] = append(result.Results[run.Condition], experiment.RunResult{
			Record:         run,
			AccuracySeries: series,
		})
	}

	built, err := report.BuildExperimentReport(result)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	dir, err := report.WriteExperimentReport(c.artifactsDir, built)
	if err != nil {
		return BenchmarkSummary{}, err
	}
	return BenchmarkSummary{
		ExperimentID: experimentID,
		ReportDir:    filepath.Clean(dir),
		Conditions:   built.Conditions,
		Comparisons:  built.Comparisons,
	}, nil
}

// AccuracyHistory returns a persisted run's per-episode accuracy series,
// truncated to Limit when it is positive.
func (c *Client) AccuracyHistory(ctx context.Context, req HistoryRequest) ([]float64, error) {
	if req.RunID == "" {
		return nil, errors.New("run id is required")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	series, ok, err := c.store.GetAccuracySeries(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("accuracy series not found for run id: %s", req.RunID)
	}
	if req.Limit > 0 && len(series) > req.Limit {
		series = series[:req.Limit]
	}
	return series, nil
}
