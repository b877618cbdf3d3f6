package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"synapsis/internal/experiment"
	"synapsis/internal/model"
	"synapsis/internal/stats"
)

const (
	runsDir        = "runs"
	experimentsDir = "experiments"
)

// RunArtifact is the on-disk shape of one finished run: the record, the
// accuracy summary, and the smoothed accuracy curve.
type RunArtifact struct {
	Record   model.RunRecord `json:"record"`
	Accuracy stats.Summary   `json:"accuracy"`
	Smoothed []float64       `json:"smoothed,omitempty"`
}

// WriteRunArtifacts writes run.json and series.json under
// baseDir/runs/<run id>/ and returns the run directory.
func WriteRunArtifacts(baseDir string, run experiment.RunResult, smoothWindow int) (string, error) {
	if run.Record.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	summary, err := stats.Summarize(run.AccuracySeries)
	if err != nil {
		return "", fmt.Errorf("summarize accuracy: %w", err)
	}

	dir := filepath.Join(baseDir, runsDir, run.Record.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	artifact := RunArtifact{Record: run.Record, Accuracy: summary}
	if smoothWindow > 1 {
		artifact.Smoothed = stats.WindowedMean(run.AccuracySeries, smoothWindow)
	}
	if err := writeJSON(filepath.Join(dir, "run.json"), artifact); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "series.json"), run.AccuracySeries); err != nil {
		return "", err
	}
	return dir, nil
}

// ReadRunArtifact loads a previously written run.json.
func ReadRunArtifact(baseDir, runID string) (RunArtifact, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runsDir, runID, "run.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return RunArtifact{}, false, nil
		}
		return RunArtifact{}, false, err
	}
	var artifact RunArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return RunArtifact{}, false, err
	}
	return artifact, true, nil
}

// ConditionSummary aggregates the final accuracies of one condition's
// seed runs.
type ConditionSummary struct {
	Name            string        `json:"name"`
	Runs            int           `json:"runs"`
	FinalAccuracies []float64     `json:"final_accuracies"`
	Accuracy        stats.Summary `json:"accuracy"`
}

// Comparison is a pairwise Welch's t-test between two conditions' final
// accuracies.
type Comparison struct {
	A     string            `json:"a"`
	B     string            `json:"b"`
	Welch stats.WelchResult `json:"welch"`
}

// ExperimentReport is the aggregate artifact for one experiment.
type ExperimentReport struct {
	Record      model.ExperimentRecord `json:"record"`
	GeneratedAt string                 `json:"generated_at_utc"`
	Conditions  []ConditionSummary     `json:"conditions"`
	Comparisons []Comparison           `json:"comparisons,omitempty"`
}

// BuildExperimentReport summarizes each condition and, when every
// condition has at least two seeds, runs all pairwise comparisons.
func BuildExperimentReport(result experiment.ExperimentResult) (ExperimentReport, error) {
	report := ExperimentReport{
		Record:      result.Record,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	names := make([]string, 0, len(result.Results))
	for name := range result.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	finals := make(map[string][]float64, len(names))
	for _, name := range names {
		runs := result.Results[name]
		if len(runs) == 0 {
			return ExperimentReport{}, fmt.Errorf("condition %s has no runs", name)
		}
		values := make([]float64, len(runs))
		for i, run := range runs {
			values[i] = run.Record.FinalAccuracy
		}
		summary, err := stats.Summarize(values)
		if err != nil {
			return ExperimentReport{}, err
		}
		finals[name] = values
		report.Conditions = append(report.Conditions, ConditionSummary{
			Name:            name,
			Runs:            len(runs),
			FinalAccuracies: values,
			Accuracy:        summary,
		})
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := finals[names[i]], finals[names[j]]
			if len(a) < 2 || len(b) < 2 {
				continue
			}
			welch, err := stats.Welch(a, b)
			if err != nil {
				return ExperimentReport{}, err
			}
			report.Comparisons = append(report.Comparisons, Comparison{A: names[i], B: names[j], Welch: welch})
		}
	}
	return report, nil
}

// WriteExperimentReport writes report.json and report.md under
// baseDir/experiments/<experiment id>/ and returns the directory.
func WriteExperimentReport(baseDir string, report ExperimentReport) (string, error) {
	if report.Record.ID == "" {
		return "", fmt.Errorf("experiment id is required")
	}
	dir := filepath.Join(baseDir, experimentsDir, report.Record.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "report.json"), report); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(renderMarkdown(report)), 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

func renderMarkdown(report ExperimentReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Experiment %s\n\n", report.Record.Name)
	fmt.Fprintf(&b, "ID: `%s`\n\n", report.Record.ID)

	b.WriteString("## Conditions\n\n")
	b.WriteString("| Condition | Runs | Mean accuracy | Std | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range report.Conditions {
		fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f |\n",
			c.Name, c.Runs, c.Accuracy.Mean, c.Accuracy.Std, c.Accuracy.Min, c.Accuracy.Max)
	}

	if len(report.Comparisons) > 0 {
		b.WriteString("\n## Comparisons\n\n")
		b.WriteString("| A | B | t | df | p |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range report.Comparisons {
			fmt.Fprintf(&b, "| %s | %s | %.4f | %.2f | %.4f |\n",
				c.A, c.B, c.Welch.T, c.Welch.DF, c.Welch.P)
		}
	}
	return b.String()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
