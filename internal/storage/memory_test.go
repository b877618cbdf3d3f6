package storage

import (
	"context"
	"reflect"
	"testing"

	"synapsis/internal/model"
)

func testRun(id, experimentID string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: Stamp(),
		RunID:           id,
		ExperimentID:    experimentID,
		Condition:       "baseline",
		Seed:            7,
		Episodes:        1000,
		FinalAccuracy:   0.875,
		FinalLoss:       0.05,
		CreatedAtUTC:    "2026-01-02T03:04:05Z",
	}
}

func TestMemoryStoreSaveBeforeInit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveRun(ctx, testRun("run-1", "")); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.SaveAccuracySeries(ctx, "run-1", []float64{0.5, 0.75}); err != nil {
		t.Fatalf("save series: %v", err)
	}
	if _, ok, _ := store.GetRun(ctx, "run-1"); !ok {
		t.Fatal("run not found")
	}

	// a later Init must not wipe what was already written
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, ok, _ := store.GetRun(ctx, "run-1"); !ok {
		t.Fatal("init dropped existing run")
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	want := testRun("run-1", "exp-1")
	if err := store.SaveRun(ctx, want); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("run not found")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("run mismatch: got=%+v want=%+v", got, want)
	}

	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("unexpected hit for missing run")
	}
}

func TestMemoryStoreListRunsFiltersByExperiment(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, run := range []model.RunRecord{
		testRun("run-1", "exp-a"),
		testRun("run-2", "exp-a"),
		testRun("run-3", "exp-b"),
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, "exp-a")
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("unexpected run count: got=%d want=2", len(runs))
	}
	for _, run := range runs {
		if run.ExperimentID != "exp-a" {
			t.Fatalf("wrong experiment in listing: %s", run.ExperimentID)
		}
	}
}

func TestMemoryStoreSeriesIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	series := []float64{0.25, 0.5, 0.75}
	if err := store.SaveAccuracySeries(ctx, "run-1", series); err != nil {
		t.Fatalf("save series: %v", err)
	}
	series[0] = -1 // the caller's slice must not alias the stored copy

	got, ok, err := store.GetAccuracySeries(ctx, "run-1")
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if !ok {
		t.Fatal("series not found")
	}
	if got[0] != 0.25 {
		t.Fatalf("stored series aliased caller slice: got=%v", got)
	}

	got[1] = -1
	again, _, _ := store.GetAccuracySeries(ctx, "run-1")
	if again[1] != 0.5 {
		t.Fatalf("returned series aliased stored copy: got=%v", again)
	}
}

func TestMemoryStoreExperimentAndMetrics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	experiment := model.ExperimentRecord{
		VersionedRecord: Stamp(),
		ID:              "exp-1",
		Name:            "flag-gating",
		Conditions:      []string{"baseline", "gated"},
		RunIDs:          []string{"run-1"},
		CreatedAtUTC:    "2026-01-02T03:04:05Z",
	}
	if err := store.SaveExperiment(ctx, experiment); err != nil {
		t.Fatalf("save experiment: %v", err)
	}
	got, ok, err := store.GetExperiment(ctx, "exp-1")
	if err != nil || !ok {
		t.Fatalf("get experiment: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, experiment) {
		t.Fatalf("experiment mismatch: got=%+v want=%+v", got, experiment)
	}

	metrics := []model.StepMetrics{{Episode: 0, Accuracy: 0.5}, {Episode: 1, Accuracy: 1}}
	if err := store.SaveStepMetrics(ctx, "run-1", metrics); err != nil {
		t.Fatalf("save metrics: %v", err)
	}
	gotMetrics, ok, err := store.GetStepMetrics(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get metrics: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotMetrics, metrics) {
		t.Fatalf("metrics mismatch: got=%+v want=%+v", gotMetrics, metrics)
	}
}
