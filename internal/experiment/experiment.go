package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"synapsis/internal/engine"
	"synapsis/internal/geom"
	"synapsis/internal/hillclimb"
	"synapsis/internal/model"
	"synapsis/internal/pattern"
	"synapsis/internal/stats"
	"synapsis/internal/storage"
	"synapsis/internal/topology"
)

// RunSpec describes one training run up to its seed: the network
// configuration, the pattern set, and the episode budget. EvalWindow sets
// how many trailing episodes feed the reported tail accuracy; 0 means the
// final evaluation only.
type RunSpec struct {
	Condition  string
	Config     model.Config
	Patterns   []model.Pattern
	Episodes   int
	EvalWindow int

	// Tune enables a post-training hill-climb over the final weights.
	Tune *TuneSpec
}

// TuneSpec configures the optional post-training weight hill-climb.
type TuneSpec struct {
	Attempts          int
	Steps             int
	StepSize          float64
	PerturbationRange float64
	AnnealingFactor   float64
	MinImprovement    float64
	GoalAccuracy      float64
}

// RunResult carries a finished run: its persistent record, the per-episode
// accuracy series, and the full step metrics.
type RunResult struct {
	Record         model.RunRecord
	AccuracySeries []float64
	Metrics        []model.StepMetrics
}

// Condition pairs a name with the configuration it trains under. A
// non-nil Tune overrides the experiment-wide tuning for this condition,
// letting one arm rely on hill climbing while another trains purely by
// chemical plasticity.
type Condition struct {
	Name   string
	Config model.Config
	Tune   *TuneSpec
}

// ExperimentResult groups per-condition results of one multi-seed
// experiment.
type ExperimentResult struct {
	Record  model.ExperimentRecord
	Results map[string][]RunResult
}

// Run executes one seeded training run to completion. The seed drives both
// topology construction and pattern presentation through a single source,
// so equal seeds replay the run exactly.
func Run(ctx context.Context, spec RunSpec, seed int64) (RunResult, error) {
	if spec.Episodes <= 0 {
		return RunResult{}, fmt.Errorf("episodes must be > 0")
	}
	cfg := spec.Config.Normalize()
	if err := pattern.Validate(spec.Patterns, cfg.InputSize, cfg.OutputSize); err != nil {
		return RunResult{}, fmt.Errorf("pattern set: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	net, err := topology.Build(cfg, rng)
	if err != nil {
		return RunResult{}, fmt.Errorf("build network: %w", err)
	}
	eng, err := engine.New(net, spec.Episodes)
	if err != nil {
		return RunResult{}, fmt.Errorf("new engine: %w", err)
	}
	sampler, err := pattern.NewSampler(spec.Patterns, rng)
	if err != nil {
		return RunResult{}, err
	}

	series := make([]float64, 0, spec.Episodes)
	metrics := make([]model.StepMetrics, 0, spec.Episodes)
	for episode := 0; episode < spec.Episodes; episode++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		p := sampler.Next()
		m, err := eng.Step(p.Input, p.Target, episode)
		if err != nil {
			return RunResult{}, fmt.Errorf("episode %d: %w", episode, err)
		}
		series = append(series, m.Accuracy)
		metrics = append(metrics, m)
	}

	if spec.Tune != nil && spec.Tune.Attempts > 0 {
		climber := &hillclimb.Climber{
			Rand:              rng,
			Attempts:          spec.Tune.Attempts,
			Steps:             spec.Tune.Steps,
			StepSize:          spec.Tune.StepSize,
			PerturbationRange: spec.Tune.PerturbationRange,
			AnnealingFactor:   spec.Tune.AnnealingFactor,
			MinImprovement:    spec.Tune.MinImprovement,
			GoalScore:         spec.Tune.GoalAccuracy,
		}
		if _, err := hillclimb.TuneNetwork(ctx, eng, spec.Patterns, climber); err != nil {
			return RunResult{}, fmt.Errorf("tune: %w", err)
		}
	}

	finalAccuracy, finalLoss, err := evaluateSet(eng, spec.Patterns)
	if err != nil {
		return RunResult{}, err
	}
	if spec.EvalWindow > 0 {
		tail, err := stats.FinalWindowMean(series, spec.EvalWindow)
		if err != nil {
			return RunResult{}, err
		}
		finalAccuracy = tail
	}

	record := model.RunRecord{
		VersionedRecord: storage.Stamp(),
		RunID:           geom.RunID(),
		Condition:       spec.Condition,
		Seed:            seed,
		Episodes:        spec.Episodes,
		Config:          cfg,
		FinalAccuracy:   finalAccuracy,
		FinalLoss:       finalLoss,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	return RunResult{Record: record, AccuracySeries: series, Metrics: metrics}, nil
}

// evaluateSet scores the whole pattern set without touching training
// state and averages the results.
func evaluateSet(eng *engine.Engine, patterns []model.Pattern) (accuracy, loss float64, err error) {
	for _, p := range patterns {
		result, err := eng.Evaluate(p.Input, p.Target)
		if err != nil {
			return 0, 0, err
		}
		accuracy += result.Accuracy
		loss += result.Loss
	}
	n := float64(len(patterns))
	return accuracy / n, loss / n, nil
}

// Runner fans seeded runs out over a fixed worker pool and persists
// results as they finish. A nil store skips persistence.
type Runner struct {
	store   storage.Store
	workers int
}

func NewRunner(store storage.Store, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{store: store, workers: workers}
}

// RunSeeds executes one run per seed. Results come back in seed
// order regardless of worker scheduling.
func (r *Runner) RunSeeds(ctx context.Context, spec RunSpec, seeds []int64) ([]RunResult, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("at least one seed is required")
	}

	type job struct {
		idx  int
		seed int64
	}
	type result struct {
		idx int
		run RunResult
		err error
	}

	jobs := make(chan job)
	results := make(chan result, len(seeds))

	workerCount := r.workers
	if workerCount > len(seeds) {
		workerCount = len(seeds)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				run, err := Run(ctx, spec, j.seed)
				results <- result{idx: j.idx, run: run, err: err}
			}
		}()
	}

	for i, seed := range seeds {
		jobs <- job{idx: i, seed: seed}
	}
	close(jobs)

	wg.Wait()
	close(results)

	ordered := make([]RunResult, len(seeds))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		ordered[res.idx] = res.run
	}

	for i := range ordered {
		if err := r.persistRun(ctx, &ordered[i]); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// RunExperiment runs every condition across the same seed list and records
// the experiment grouping.
func (r *Runner) RunExperiment(ctx context.Context, name string, conditions []Condition, spec RunSpec, seeds []int64) (ExperimentResult, error) {
	if len(conditions) == 0 {
		return ExperimentResult{}, fmt.Errorf("at least one condition is required")
	}

	record := model.ExperimentRecord{
		VersionedRecord: storage.Stamp(),
		ID:              geom.RunID(),
		Name:            name,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	out := ExperimentResult{Results: make(map[string][]RunResult, len(conditions))}

	for _, condition := range conditions {
		conditionSpec := spec
		conditionSpec.Condition = condition.Name
		conditionSpec.Config = condition.Config
		if condition.Tune != nil {
			conditionSpec.Tune = condition.Tune
		}

		runs, err := r.RunSeeds(ctx, conditionSpec, seeds)
		if err != nil {
			return ExperimentResult{}, fmt.Errorf("condition %s: %w", condition.Name, err)
		}
		for i := range runs {
			runs[i].Record.ExperimentID = record.ID
			if r.store != nil {
				if err := r.store.SaveRun(ctx, runs[i].Record); err != nil {
					return ExperimentResult{}, err
				}
			}
			record.RunIDs = append(record.RunIDs, runs[i].Record.RunID)
		}
		record.Conditions = append(record.Conditions, condition.Name)
		out.Results[condition.Name] = runs
	}

	if r.store != nil {
		if err := r.store.SaveExperiment(ctx, record); err != nil {
			return ExperimentResult{}, err
		}
	}
	out.Record = record
	return out, nil
}

func (r *Runner) persistRun(ctx context.Context, run *RunResult) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.SaveRun(ctx, run.Record); err != nil {
		return fmt.Errorf("save run %s: %w", run.Record.RunID, err)
	}
	if err := r.store.SaveAccuracySeries(ctx, run.Record.RunID, run.AccuracySeries); err != nil {
		return fmt.Errorf("save accuracy series %s: %w", run.Record.RunID, err)
	}
	if err := r.store.SaveStepMetrics(ctx, run.Record.RunID, run.Metrics); err != nil {
		return fmt.Errorf("save step metrics %s: %w", run.Record.RunID, err)
	}
	return nil
}
