package datasetio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/yundddd/graphsim/pkg/config"
	"github.com/yundddd/graphsim/pkg/graph"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	cfg := &config.GraphConfig{Nodes: []config.NodeConfig{
		{Name: "pub", Loop: &config.LoopSpec{Period: 1, Callback: config.CallbackSpec{
			Publish: []config.PublishSpec{{Topic: "t", ValueRange: config.Range{Lo: 0, Hi: 1}, DelayRange: config.Range{Lo: 0, Hi: 0}}},
		}}},
		{Name: "sub", Subscribe: []config.SubscriptionSpec{{Topic: "t", ValidRange: config.Range{Lo: 0, Hi: 1}}}},
	}}
	g, err := graph.Build(cfg)
	if err != nil {
		t.Fatalf("graph.Build: %v", err)
	}
	return g
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv %s: %v", path, err)
	}
	return rows
}

func TestWriteEdgeIndex(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "edge_index.csv")
	if err := WriteEdgeIndex(path, g); err != nil {
		t.Fatalf("WriteEdgeIndex: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 1 || rows[0][0] != "0" || rows[0][1] != "1" {
		t.Errorf("rows = %v, want [[0 1]]", rows)
	}
}

func TestWriteEdgeIndexOverwrites(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "edge_index.csv")
	if err := os.WriteFile(path, []byte("stale,data\n"), 0644); err != nil {
		t.Fatalf("seed stale file: %v", err)
	}
	if err := WriteEdgeIndex(path, g); err != nil {
		t.Fatalf("WriteEdgeIndex: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want exactly 1 row (overwrite, not append)", rows)
	}
}

func TestEdgeIndexRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "edge_index.csv")
	if err := WriteEdgeIndex(first, g); err != nil {
		t.Fatalf("WriteEdgeIndex: %v", err)
	}

	// Re-parse the emitted file and re-emit it; the bytes must not change.
	rows := readCSV(t, first)
	second := filepath.Join(dir, "edge_index_2.csv")
	f, err := os.Create(second)
	if err != nil {
		t.Fatalf("create %s: %v", second, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("re-emit edge index: %v", err)
	}
	f.Close()

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read %s: %v", first, err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read %s: %v", second, err)
	}
	if string(a) != string(b) {
		t.Errorf("re-emitted edge index differs:\n%q\nvs\n%q", a, b)
	}
}

func TestWriteNodeFeaturesAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node_feature.csv")
	if err := WriteNodeFeatures(path, [][]string{{"a", "1"}}); err != nil {
		t.Fatalf("WriteNodeFeatures (first): %v", err)
	}
	if err := WriteNodeFeatures(path, [][]string{{"b", "2"}}); err != nil {
		t.Fatalf("WriteNodeFeatures (second): %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want 2 (append, not overwrite)", rows)
	}
}

func TestWriteFaultLabelSkippedWhenNoTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fault_label.csv")
	if err := WriteFaultLabel(path, -1, 0); err != nil {
		t.Fatalf("WriteFaultLabel: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("fault label file should not be created when no fault attached")
	}
}

func TestWriteFaultLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fault_label.csv")
	if err := WriteFaultLabel(path, 3, 17); err != nil {
		t.Fatalf("WriteFaultLabel: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 1 || rows[0][0] != "3" || rows[0][1] != "17" {
		t.Errorf("rows = %v, want [[3 17]]", rows)
	}
}

func TestCleanerRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.csv")
	if err := os.WriteFile(stale, []byte("x"), 0644); err != nil {
		t.Fatalf("seed stale file: %v", err)
	}
	missing := filepath.Join(dir, "missing.csv")

	c := NewCleaner()
	if err := c.Clean(stale, missing); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file should have been removed")
	}
	log := c.AuditLog()
	if len(log) != 2 {
		t.Fatalf("len(AuditLog()) = %d, want 2", len(log))
	}
	if !log[0].Removed {
		t.Error("stale entry should be marked removed")
	}
	if log[1].Removed {
		t.Error("missing entry should not be marked removed")
	}
}
