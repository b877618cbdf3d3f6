package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRootCmd wires the persistent flags so subcommands can be
// exercised in isolation.
func newTestRootCmd(artifactsDir string) *cobra.Command {
	rootCmd := &cobra.Command{Use: "synapsisctl"}
	rootCmd.PersistentFlags().String("store", "memory", "")
	rootCmd.PersistentFlags().String("db-path", "synapsis.db", "")
	rootCmd.PersistentFlags().String("artifacts", artifactsDir, "")
	rootCmd.PersistentFlags().Bool("json", false, "")
	return rootCmd
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const testConfigYAML = `
name: smoke
episodes: 30
seeds: [1, 2]
workers: 2
network:
  cluster_count: 2
  neurons_per_cluster: 12
  modulatory_per_cluster: 1
  intra_cluster_prob: 0.4
  inter_cluster_prob: 0.15
  input_size: 4
  output_size: 2
  initial_weight_min: -0.5
  initial_weight_max: 0.5
  initial_threshold: 0.5
  ambient_radius: 5
  chemical_diffusion_radius: 100
  chemical_falloff: constant
  positive_reward_strength: 1
  negative_reward_strength: 1
conditions:
  - name: baseline
    network:
      cluster_count: 2
      neurons_per_cluster: 12
      modulatory_per_cluster: 1
      intra_cluster_prob: 0.4
      inter_cluster_prob: 0.15
      input_size: 4
      output_size: 2
      initial_weight_min: -0.5
      initial_weight_max: 0.5
      initial_threshold: 0.5
      ambient_radius: 5
      chemical_diffusion_radius: 100
      chemical_falloff: constant
      positive_reward_strength: 1
      negative_reward_strength: 1
`

func TestRunCommand(t *testing.T) {
	artifactsDir := t.TempDir()
	configPath := writeConfig(t, testConfigYAML)

	rootCmd := newTestRootCmd(artifactsDir)
	rootCmd.AddCommand(newRunCmd())
	rootCmd.SetArgs([]string{"run", "--config", configPath, "--seed", "7"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run command: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(artifactsDir, "runs"))
	if err != nil {
		t.Fatalf("runs dir missing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected run artifact count: got=%d want=1", len(entries))
	}
}

func TestBenchmarkCommand(t *testing.T) {
	artifactsDir := t.TempDir()
	configPath := writeConfig(t, testConfigYAML)

	rootCmd := newTestRootCmd(artifactsDir)
	rootCmd.AddCommand(newBenchmarkCmd())
	rootCmd.SetArgs([]string{"benchmark", "--config", configPath})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("benchmark command: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(artifactsDir, "experiments"))
	if err != nil {
		t.Fatalf("experiments dir missing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected experiment artifact count: got=%d want=1", len(entries))
	}
	reportPath := filepath.Join(artifactsDir, "experiments", entries[0].Name(), "report.md")
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("report.md missing: %v", err)
	}
}

func TestBenchmarkCommandRequiresConfig(t *testing.T) {
	rootCmd := newTestRootCmd(t.TempDir())
	rootCmd.AddCommand(newBenchmarkCmd())
	rootCmd.SetArgs([]string{"benchmark"})
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestHistoryCommandUnknownRun(t *testing.T) {
	rootCmd := newTestRootCmd(t.TempDir())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.SetArgs([]string{"history", "--run", "missing"})
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
