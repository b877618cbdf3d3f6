package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"synapsis/internal/experiment"
	"synapsis/internal/model"
	"synapsis/internal/storage"
)

func testRunResult(id, condition string, finalAccuracy float64) experiment.RunResult {
	return experiment.RunResult{
		Record: model.RunRecord{
			VersionedRecord: storage.Stamp(),
			RunID:           id,
			Condition:       condition,
			Seed:            1,
			Episodes:        4,
			FinalAccuracy:   finalAccuracy,
		},
		AccuracySeries: []float64{0.25, 0.5, 0.75, finalAccuracy},
	}
}

func TestWriteAndReadRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	run := testRunResult("run-1", "baseline", 1)

	dir, err := WriteRunArtifacts(baseDir, run, 2)
	if err != nil {
		t.Fatalf("write run artifacts: %v", err)
	}
	if dir != filepath.Join(baseDir, "runs", "run-1") {
		t.Fatalf("unexpected run dir: %s", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, "series.json")); err != nil {
		t.Fatalf("series.json missing: %v", err)
	}

	artifact, ok, err := ReadRunArtifact(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read run artifact: ok=%v err=%v", ok, err)
	}
	if artifact.Record.RunID != "run-1" {
		t.Fatalf("unexpected record: %+v", artifact.Record)
	}
	if artifact.Accuracy.Final != 1 {
		t.Fatalf("unexpected final accuracy: got=%f want=1", artifact.Accuracy.Final)
	}
	if len(artifact.Smoothed) != 4 {
		t.Fatalf("unexpected smoothed length: got=%d want=4", len(artifact.Smoothed))
	}
}

func TestReadRunArtifactMissing(t *testing.T) {
	_, ok, err := ReadRunArtifact(t.TempDir(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("unexpected hit for missing artifact")
	}
}

func testExperimentResult() experiment.ExperimentResult {
	return experiment.ExperimentResult{
		Record: model.ExperimentRecord{
			VersionedRecord: storage.Stamp(),
			ID:              "exp-1",
			Name:            "flag-gating",
			Conditions:      []string{"baseline", "gated"},
		},
		Results: map[string][]experiment.RunResult{
			"baseline": {
				testRunResult("run-1", "baseline", 0.70),
				testRunResult("run-2", "baseline", 0.72),
				testRunResult("run-3", "baseline", 0.71),
			},
			"gated": {
				testRunResult("run-4", "gated", 0.90),
				testRunResult("run-5", "gated", 0.92),
				testRunResult("run-6", "gated", 0.91),
			},
		},
	}
}

func TestBuildExperimentReport(t *testing.T) {
	report, err := BuildExperimentReport(testExperimentResult())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	if len(report.Conditions) != 2 {
		t.Fatalf("unexpected condition count: got=%d want=2", len(report.Conditions))
	}
	// conditions are sorted by name
	if report.Conditions[0].Name != "baseline" || report.Conditions[1].Name != "gated" {
		t.Fatalf("unexpected condition order: %+v", report.Conditions)
	}
	if len(report.Comparisons) != 1 {
		t.Fatalf("unexpected comparison count: got=%d want=1", len(report.Comparisons))
	}
	cmp := report.Comparisons[0]
	if cmp.A != "baseline" || cmp.B != "gated" {
		t.Fatalf("unexpected comparison pair: %+v", cmp)
	}
	if cmp.Welch.P >= 0.01 {
		t.Fatalf("clearly separated conditions should be significant: p=%f", cmp.Welch.P)
	}
}

func TestBuildExperimentReportRejectsEmptyCondition(t *testing.T) {
	result := testExperimentResult()
	result.Results["empty"] = nil
	if _, err := BuildExperimentReport(result); err == nil {
		t.Fatal("expected error for condition with no runs")
	}
}

func TestWriteExperimentReport(t *testing.T) {
	baseDir := t.TempDir()
	report, err := BuildExperimentReport(testExperimentResult())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	dir, err := WriteExperimentReport(baseDir, report)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatalf("report.md missing: %v", err)
	}
	markdown := string(data)
	if !strings.Contains(markdown, "# Experiment flag-gating") {
		t.Fatalf("markdown missing title:\n%s", markdown)
	}
	if !strings.Contains(markdown, "| baseline |") || !strings.Contains(markdown, "| gated |") {
		t.Fatalf("markdown missing condition rows:\n%s", markdown)
	}
	if !strings.Contains(markdown, "## Comparisons") {
		t.Fatalf("markdown missing comparisons:\n%s", markdown)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.json")); err != nil {
		t.Fatalf("report.json missing: %v", err)
	}
}

func TestWriteExperimentReportRequiresID(t *testing.T) {
	if _, err := WriteExperimentReport(t.TempDir(), ExperimentReport{}); err == nil {
		t.Fatal("expected error for missing experiment id")
	}
}
