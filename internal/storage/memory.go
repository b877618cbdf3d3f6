package storage

import (
	"context"
	"sync"

	"synapsis/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	experiments map[string]model.ExperimentRecord
	series      map[string][]float64
	metrics     map[string][]model.StepMetrics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.ensure()
	return nil
}

// ensure allocates the backing maps. Callers must hold the write lock;
// writes that arrive before Init stay safe instead of panicking.
func (s *MemoryStore) ensure() {
	if s.runs != nil {
		return
	}
	s.runs = make(map[string]model.RunRecord)
	s.experiments = make(map[string]model.ExperimentRecord)
	s.series = make(map[string][]float64)
	s.metrics = make(map[string][]model.StepMetrics)
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure()
	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, experimentID string) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []model.RunRecord
	for _, run := range s.runs {
		if run.ExperimentID == experimentID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (s *MemoryStore) SaveExperiment(_ context.Context, experiment model.ExperimentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure()
	s.experiments[experiment.ID] = experiment
	return nil
}

func (s *MemoryStore) GetExperiment(_ context.Context, id string) (model.ExperimentRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	experiment, ok := s.experiments[id]
	return experiment, ok, nil
}

func (s *MemoryStore) SaveAccuracySeries(_ context.Context, runID string, series []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure()
	s.series[runID] = append([]float64(nil), series...)
	return nil
}

func (s *MemoryStore) GetAccuracySeries(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), series...), true, nil
}

func (s *MemoryStore) SaveStepMetrics(_ context.Context, runID string, metrics []model.StepMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure()
	copied := make([]model.StepMetrics, len(metrics))
	copy(copied, metrics)
	s.metrics[runID] = copied
	return nil
}

func (s *MemoryStore) GetStepMetrics(_ context.Context, runID string) ([]model.StepMetrics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics, ok := s.metrics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.StepMetrics, len(metrics))
	copy(copied, metrics)
	return copied, true, nil
}
