package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"synapsis/pkg/synapsis"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "synapsisctl",
		Short: "Local plasticity network simulator",
		Long: `synapsisctl trains small threshold-neuron networks with local
plasticity signals and compares learning rule variants across seeds.`,
	}

	rootCmd.PersistentFlags().String("store", "memory", "store backend: memory|sqlite")
	rootCmd.PersistentFlags().String("db-path", "synapsis.db", "sqlite database path")
	rootCmd.PersistentFlags().String("artifacts", "artifacts", "artifacts output directory")
	rootCmd.PersistentFlags().Bool("json", false, "print output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newBenchmarkCmd(),
		newReportCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
				return
			}
			fmt.Printf("synapsisctl version %s\n", version)
		},
	}
}

func clientFromFlags(cmd *cobra.Command) (*synapsis.Client, error) {
	storeKind, _ := cmd.Flags().GetString("store")
	dbPath, _ := cmd.Flags().GetString("db-path")
	artifactsDir, _ := cmd.Flags().GetString("artifacts")

	return synapsis.New(synapsis.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
	})
}

func printResult(cmd *cobra.Command, value any, plain func()) error {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}
	plain()
	return nil
}
