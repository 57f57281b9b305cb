package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/datasetio"
	"github.com/yundddd/graphsim/pkg/graph"
	"github.com/yundddd/graphsim/pkg/reporting"
	"github.com/yundddd/graphsim/pkg/simulator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run a single deterministic simulation",
	Long:  `Loads a graph (and optional fault) YAML file and runs it to stop_at, writing the three CSV artifacts.`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().String("graph", "", "path to graph YAML file (required)")
	runCmd.Flags().String("fault", "", "path to fault YAML file (optional)")
	runCmd.Flags().Int("stop", 0, "stop_at: the logical clock value at which the run terminates (required)")
	runCmd.Flags().String("edge_index_output", "edge_index.csv", "path to write the edge index CSV")
	runCmd.Flags().String("node_feature_output", "node_feature.csv", "path to write the node feature CSV")
	runCmd.Flags().String("fault_label_output", "fault_label.csv", "path to write the fault label CSV")
	runCmd.Flags().Int("inject_at", 0, "override inject_at from the fault file (0 = use the file's value)")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	graphPath, _ := cmd.Flags().GetString("graph")
	faultPath, _ := cmd.Flags().GetString("fault")
	stopAt, _ := cmd.Flags().GetInt("stop")
	edgeIndexOutput, _ := cmd.Flags().GetString("edge_index_output")
	nodeFeatureOutput, _ := cmd.Flags().GetString("node_feature_output")
	faultLabelOutput, _ := cmd.Flags().GetString("fault_label_output")
	injectAtOverride, _ := cmd.Flags().GetInt("inject_at")

	if graphPath == "" {
		return fmt.Errorf("--graph flag is required")
	}
	if stopAt <= 0 {
		return fmt.Errorf("--stop flag is required and must be positive")
	}

	logger := reporting.NewRunLogger(os.Stdout, verbose, false)

	logger.Info().Str("path", graphPath).Msg("graphsim: loading graph")
	gc, err := config.LoadGraph(graphPath)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	g, err := graph.Build(gc)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	cleaner := datasetio.NewCleaner()
	if err := cleaner.Clean(edgeIndexOutput, nodeFeatureOutput, faultLabelOutput); err != nil {
		return fmt.Errorf("clean stale outputs: %w", err)
	}
	logger.Debug().Msg(cleaner.Summary())

	sim := simulator.New(g, stopAt, simulator.WithLogger(logger))

	if faultPath != "" {
		fc, err := config.LoadFault(faultPath)
		if err != nil {
			return fmt.Errorf("load fault: %w", err)
		}
		if injectAtOverride > 0 {
			fc.InjectAt = injectAtOverride
		}
		if err := sim.AttachFault(fc); err != nil {
			return fmt.Errorf("attach fault: %w", err)
		}
		logger.Info().Str("target", fc.InjectTo).Int("inject_at", fc.InjectAt).Msg("graphsim: fault attached")
	}

	if err := sim.Run(); err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}

	if err := datasetio.WriteEdgeIndex(edgeIndexOutput, g); err != nil {
		return err
	}
	if err := datasetio.WriteNodeFeatures(nodeFeatureOutput, sim.Rows); err != nil {
		return err
	}
	if err := datasetio.WriteFaultLabel(faultLabelOutput, sim.FaultTargetIndex, sim.FaultInjectAt); err != nil {
		return err
	}

	store, err := reporting.NewManifestStore(filepath.Dir(nodeFeatureOutput), 0, logger)
	if err != nil {
		return fmt.Errorf("create manifest store: %w", err)
	}
	manifest := reporting.RunManifest{
		GraphPath:       graphPath,
		FaultPath:       faultPath,
		StopAt:          stopAt,
		Seed:            simulator.DefaultSeed,
		EdgeIndexPath:   edgeIndexOutput,
		NodeFeaturePath: nodeFeatureOutput,
		FaultLabelPath:  faultLabelOutput,
		EdgeCount:       len(g.Edges()),
		NodeFeatureRows: len(sim.Rows),
		FaultAttached:   sim.FaultTargetIndex >= 0,
	}
	if _, err := store.Save(1, manifest); err != nil {
		logger.Warn().Err(err).Msg("graphsim: failed to save run manifest")
	}

	logger.Info().Int("rows", len(sim.Rows)).Int("edges", len(g.Edges())).Msg("graphsim: run complete")
	return nil
}
