// Package datasetio writes the three CSV artifacts a simulation run
// produces — edge index, node-feature snapshots, and the fault label — and
// cleans up stale artifacts from a previous run before a new one starts.
package datasetio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/yundddd/graphsim/pkg/graph"
)

// WriteEdgeIndex overwrites path with one "src_index,dst_index" row per
// graph edge, in the graph's deterministic edge order.
func WriteEdgeIndex(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create edge index output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, e := range g.Edges() {
		if err := w.Write([]string{strconv.Itoa(e[0]), strconv.Itoa(e[1])}); err != nil {
			return fmt.Errorf("write edge index row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteNodeFeatures appends rows to path, one per emitted snapshot.
func WriteNodeFeatures(path string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open node feature output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write node feature row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteFaultLabel writes the single "inject_to_index,inject_at" row, or
// does nothing when no fault was attached to the run (targetIndex < 0).
func WriteFaultLabel(path string, targetIndex, injectAt int) error {
	if targetIndex < 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create fault label output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{strconv.Itoa(targetIndex), strconv.Itoa(injectAt)}); err != nil {
		return fmt.Errorf("write fault label row: %w", err)
	}
	w.Flush()
	return w.Error()
}
