package datasetgen

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/datasetio"
	"github.com/yundddd/graphsim/pkg/graph"
	"github.com/yundddd/graphsim/pkg/reporting"
	"github.com/yundddd/graphsim/pkg/simulator"
)

// roundLogName is the JSONL file under OutDir that accumulates one
// RoundResult line per completed round.
const roundLogName = "rounds.jsonl"

// RoundResult summarizes one completed round. One JSON line per round is
// appended to rounds.jsonl under OutDir, so a partially completed batch
// still records every round it finished.
type RoundResult struct {
	Round        int    `json:"round"`
	GraphPath    string `json:"graph_path"`
	FaultTo      string `json:"fault_to"`
	FaultAt      int    `json:"fault_at"`
	Rows         int    `json:"rows"`
	ManifestPath string `json:"manifest_path"`
}

// Config holds all settings for a dataset-generation batch.
type Config struct {
	GraphPaths []string // one or more graph YAML files, cycled round to round
	Rounds     int
	StopAt     int
	Seed       int64 // 0 = draw a random base seed at the start of Run
	OutDir     string
	KeepLastN  int // 0 = keep every manifest

	// StopFile, when set, is checked for existence at each round boundary;
	// its presence ends the batch early. Rounds are the only interruption
	// points — an in-flight simulation always runs to completion, so a
	// round's CSV outputs are never left half-written.
	StopFile string
}

// Runner drives Config.Rounds sequential simulation rounds, each against a
// freshly built graph with a freshly sampled fault, writing each round's CSV
// artifacts under OutDir/round-<nnnn>/ and its manifest as
// OutDir/round-<nnnn>.json.
type Runner struct {
	cfg   *Config
	log   zerolog.Logger
	store *reporting.ManifestStore
}

// NewRunner builds a Runner.
func NewRunner(cfg *Config, log zerolog.Logger) (*Runner, error) {
	store, err := reporting.NewManifestStore(cfg.OutDir, cfg.KeepLastN, log)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, log: log, store: store}, nil
}

// Run executes cfg.Rounds rounds sequentially. At each round boundary it
// checks ctx (the CLI wires SIGINT/SIGTERM into it) and the stop file, and
// ends the batch early if either asks it to.
func (r *Runner) Run(ctx context.Context) ([]RoundResult, error) {
	if len(r.cfg.GraphPaths) == 0 {
		return nil, fmt.Errorf("datasetgen: no graph paths configured")
	}

	seed := r.cfg.Seed
	if seed == 0 {
		seed = rand.Int63() //nolint:gosec
	}

	r.log.Info().Int("rounds", r.cfg.Rounds).Int64("seed", seed).Msg("datasetgen: starting batch")

	var results []RoundResult

	for round := 1; round <= r.cfg.Rounds; round++ {
		if ctx.Err() != nil {
			r.log.Warn().Int("round", round).Msg("datasetgen: interrupted, ending batch early")
			break
		}
		if r.stopRequested() {
			r.log.Warn().Str("stop_file", r.cfg.StopFile).Int("round", round).Msg("datasetgen: stop file present, ending batch early")
			break
		}

		graphPath := r.cfg.GraphPaths[(round-1)%len(r.cfg.GraphPaths)]
		res, err := r.runRound(round, graphPath, seed)
		if err != nil {
			return results, fmt.Errorf("round %d (%s): %w", round, graphPath, err)
		}
		results = append(results, *res)
	}

	r.log.Info().Int("completed_rounds", len(results)).Msg("datasetgen: batch finished")
	return results, nil
}

// stopRequested reports whether the operator has asked the batch to end by
// creating the configured stop file (an operator can `touch` it without
// knowing the run's flags or PID).
func (r *Runner) stopRequested() bool {
	if r.cfg.StopFile == "" {
		return false
	}
	_, err := os.Stat(r.cfg.StopFile)
	return err == nil
}

func (r *Runner) runRound(round int, graphPath string, seed int64) (*RoundResult, error) {
	gc, err := config.LoadGraph(graphPath)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	g, err := graph.Build(gc)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	roundSeed := seed + int64(round)
	sampler := NewSampler(roundSeed)
	fc, err := sampler.Sample(gc, r.cfg.StopAt)
	if err != nil {
		return nil, fmt.Errorf("sample fault: %w", err)
	}

	roundLog := r.log.With().Int("round", round).Logger()
	sim := simulator.New(g, r.cfg.StopAt, simulator.WithSeed(roundSeed), simulator.WithLogger(roundLog))
	if err := sim.AttachFault(fc); err != nil {
		return nil, fmt.Errorf("attach fault: %w", err)
	}
	if err := sim.Run(); err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}

	roundDir := filepath.Join(r.cfg.OutDir, fmt.Sprintf("round-%04d", round))
	if err := os.MkdirAll(roundDir, 0755); err != nil {
		return nil, fmt.Errorf("create round dir %s: %w", roundDir, err)
	}
	edgeIndexPath := filepath.Join(roundDir, "edge_index.csv")
	nodeFeaturePath := filepath.Join(roundDir, "node_feature.csv")
	faultLabelPath := filepath.Join(roundDir, "fault_label.csv")

	if err := datasetio.WriteEdgeIndex(edgeIndexPath, g); err != nil {
		return nil, err
	}
	if err := datasetio.WriteNodeFeatures(nodeFeaturePath, sim.Rows); err != nil {
		return nil, err
	}
	if err := datasetio.WriteFaultLabel(faultLabelPath, sim.FaultTargetIndex, sim.FaultInjectAt); err != nil {
		return nil, err
	}

	manifest := reporting.RunManifest{
		GraphPath:       graphPath,
		StopAt:          r.cfg.StopAt,
		Seed:            roundSeed,
		EdgeIndexPath:   edgeIndexPath,
		NodeFeaturePath: nodeFeaturePath,
		FaultLabelPath:  faultLabelPath,
		EdgeCount:       len(g.Edges()),
		NodeFeatureRows: len(sim.Rows),
		FaultAttached:   sim.FaultTargetIndex >= 0,
	}
	manifestPath, err := r.store.Save(round, manifest)
	if err != nil {
		return nil, err
	}

	res := &RoundResult{
		Round:        round,
		GraphPath:    graphPath,
		FaultTo:      fc.InjectTo,
		FaultAt:      fc.InjectAt,
		Rows:         len(sim.Rows),
		ManifestPath: manifestPath,
	}
	if err := r.appendRoundLog(res); err != nil {
		return nil, err
	}

	roundLog.Info().
		Str("graph", graphPath).
		Str("fault_to", fc.InjectTo).
		Int("fault_at", fc.InjectAt).
		Msg("datasetgen: round complete")

	return res, nil
}

// appendRoundLog appends res as one JSON line to OutDir/rounds.jsonl.
func (r *Runner) appendRoundLog(res *RoundResult) error {
	path := filepath.Join(r.cfg.OutDir, roundLogName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open round log %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(res); err != nil {
		return fmt.Errorf("append round log %s: %w", path, err)
	}
	return nil
}
