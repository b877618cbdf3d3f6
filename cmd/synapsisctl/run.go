package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"synapsis/internal/config"
	"synapsis/internal/experiment"
	"synapsis/pkg/synapsis"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train one seeded network and write its artifacts",
		Long: `Run trains a single network with the configured learning rule and
records the per-episode accuracy series.

Examples:
  synapsisctl run --config run.yaml
  synapsisctl run --config run.yaml --seed 42 --episodes 2000
  synapsisctl run --config run.yaml --tune`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			seed, _ := cmd.Flags().GetInt64("seed")
			episodes, _ := cmd.Flags().GetInt("episodes")
			tune, _ := cmd.Flags().GetBool("tune")

			req := synapsis.RunRequest{Seed: seed, Episodes: episodes, Tune: tune}
			if configPath != "" {
				file, err := config.Load(configPath)
				if err != nil {
					return err
				}
				req.Condition = file.Name
				req.Network = file.Network
				req.EvalWindow = file.EvalWindow
				req.SmoothWindow = file.SmoothWindow
				if req.Episodes == 0 {
					req.Episodes = file.Episodes
				}
				if !cmd.Flags().Changed("seed") && len(file.Seeds) > 0 {
					req.Seed = file.Seeds[0]
				}
			}

			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(cmd, summary, func() {
				fmt.Printf("run %s\n", summary.RunID)
				fmt.Printf("  final accuracy: %.4f\n", summary.FinalAccuracy)
				fmt.Printf("  final loss:     %.4f\n", summary.FinalLoss)
				fmt.Printf("  mean accuracy:  %.4f (std %.4f over %d episodes)\n",
					summary.Accuracy.Mean, summary.Accuracy.Std, summary.Accuracy.Count)
				fmt.Printf("  artifacts:      %s\n", summary.ArtifactsDir)
			})
		},
	}

	cmd.Flags().String("config", "", "run description file (yaml or json)")
	cmd.Flags().Int64("seed", 1, "random seed")
	cmd.Flags().Int("episodes", 0, "training episodes (overrides config)")
	cmd.Flags().Bool("tune", false, "hill-climb weights after training")
	return cmd
}

func newBenchmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run a multi-seed experiment across conditions",
		Long: `Benchmark trains every condition in the config across the same seed
list, persists the runs, and writes an aggregate report with pairwise
significance tests.

Examples:
  synapsisctl benchmark --config experiment.yaml
  synapsisctl benchmark --config experiment.yaml --workers 8`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			workers, _ := cmd.Flags().GetInt("workers")
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}

			file, err := config.Load(configPath)
			if err != nil {
				return err
			}

			conditions := make([]experiment.Condition, 0, len(file.Conditions))
			for _, condition := range file.Conditions {
				conditions = append(conditions, experiment.Condition{
					Name:   condition.Name,
					Config: condition.Network,
					Tune:   tuneSpec(condition.Tune),
				})
			}
			if len(conditions) == 0 {
				conditions = append(conditions, experiment.Condition{Name: "default", Config: file.Network})
			}
			if workers == 0 {
				workers = file.Workers
			}

			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := client.Benchmark(cmd.Context(), synapsis.BenchmarkRequest{
				Name:       file.Name,
				Conditions: conditions,
				Seeds:      file.Seeds,
				Episodes:   file.Episodes,
				Workers:    workers,
				EvalWindow: file.EvalWindow,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, summary, func() {
				fmt.Printf("experiment %s\n", summary.ExperimentID)
				for _, condition := range summary.Conditions {
					fmt.Printf("  %-12s runs=%d mean=%.4f std=%.4f\n",
						condition.Name, condition.Runs, condition.Accuracy.Mean, condition.Accuracy.Std)
				}
				for _, comparison := range summary.Comparisons {
					fmt.Printf("  %s vs %s: t=%.3f p=%.4f\n",
						comparison.A, comparison.B, comparison.Welch.T, comparison.Welch.P)
				}
				fmt.Printf("  report: %s\n", summary.ReportDir)
			})
		},
	}

	cmd.Flags().String("config", "", "experiment description file (yaml or json)")
	cmd.Flags().Int("workers", 0, "parallel seed runs (overrides config)")
	return cmd
}

func tuneSpec(t *config.Tune) *experiment.TuneSpec {
	if t == nil {
		return nil
	}
	return &experiment.TuneSpec{
		Attempts:          t.Attempts,
		Steps:             t.Steps,
		StepSize:          t.StepSize,
		PerturbationRange: t.PerturbationRange,
		AnnealingFactor:   t.AnnealingFactor,
		MinImprovement:    t.MinImprovement,
		GoalAccuracy:      t.GoalAccuracy,
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <experiment-id>",
		Short: "Rebuild an experiment report from persisted runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := client.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, summary, func() {
				fmt.Printf("report written to %s\n", summary.ReportDir)
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a run's per-episode accuracy series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runID, _ := cmd.Flags().GetString("run")
			limit, _ := cmd.Flags().GetInt("limit")

			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			series, err := client.AccuracyHistory(cmd.Context(), synapsis.HistoryRequest{
				RunID: runID,
				Limit: limit,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, series, func() {
				for episode, accuracy := range series {
					fmt.Printf("%d\t%.4f\n", episode, accuracy)
				}
			})
		},
	}

	cmd.Flags().String("run", "", "run id")
	cmd.Flags().Int("limit", 0, "truncate the series to the first N episodes")
	return cmd
}
