package storage

import (
	"context"

	"synapsis/internal/model"
)

// Store defines persistence for finished runs and experiments. Networks
// themselves are never stored; only records, metric series and per-step
// summaries survive a process.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, experimentID string) ([]model.RunRecord, error)
	SaveExperiment(ctx context.Context, experiment model.ExperimentRecord) error
	GetExperiment(ctx context.Context, id string) (model.ExperimentRecord, bool, error)
	SaveAccuracySeries(ctx context.Context, runID string, series []float64) error
	GetAccuracySeries(ctx context.Context, runID string) ([]float64, bool, error)
	SaveStepMetrics(ctx context.Context, runID string, metrics []model.StepMetrics) error
	GetStepMetrics(ctx context.Context, runID string) ([]model.StepMetrics, bool, error)
}
