package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// RunManifest records the inputs and outputs of one simulation run: the
// config paths that produced it, the PRNG seed, and the row counts each
// output artifact ended up with. A batch driver round writes one of these
// alongside its CSV outputs so a run can be reproduced or audited later.
type RunManifest struct {
	GraphPath       string    `json:"graph_path"`
	FaultPath       string    `json:"fault_path,omitempty"`
	StopAt          int       `json:"stop_at"`
	Seed            int64     `json:"seed"`
	EdgeIndexPath   string    `json:"edge_index_path"`
	NodeFeaturePath string    `json:"node_feature_path"`
	FaultLabelPath  string    `json:"fault_label_path,omitempty"`
	EdgeCount       int       `json:"edge_count"`
	NodeFeatureRows int       `json:"node_feature_rows"`
	FaultAttached   bool      `json:"fault_attached"`
	CreatedAt       time.Time `json:"created_at"`
}

// ManifestStore persists RunManifests under a directory, one JSON file per
// run, pruning to the newest keepLastN.
type ManifestStore struct {
	outputDir string
	keepLastN int
	log       zerolog.Logger
}

// NewManifestStore returns a ManifestStore writing into outputDir. A
// keepLastN of 0 or less disables pruning.
func NewManifestStore(outputDir string, keepLastN int, log zerolog.Logger) (*ManifestStore, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create manifest dir %s: %w", outputDir, err)
	}
	return &ManifestStore{outputDir: outputDir, keepLastN: keepLastN, log: log}, nil
}

// Save writes m as round-<round>.json under the store's directory, then
// prunes stale manifests if keepLastN is set.
func (s *ManifestStore) Save(round int, m RunManifest) (string, error) {
	path := filepath.Join(s.outputDir, fmt.Sprintf("round-%04d.json", round))
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write manifest %s: %w", path, err)
	}

	s.log.Info().Str("path", path).Int("round", round).Msg("manifest saved")

	if s.keepLastN > 0 {
		if err := s.cleanupOld(); err != nil {
			return path, err
		}
	}
	return path, nil
}

// Load reads back a manifest written by Save.
func (s *ManifestStore) Load(path string) (RunManifest, error) {
	var m RunManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("unmarshal manifest %s: %w", path, err)
	}
	return m, nil
}

// List returns every manifest path under the store's directory, sorted
// oldest first.
func (s *ManifestStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("list manifest dir %s: %w", s.outputDir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(s.outputDir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *ManifestStore) cleanupOld() error {
	paths, err := s.List()
	if err != nil {
		return err
	}
	if len(paths) <= s.keepLastN {
		return nil
	}
	stale := paths[:len(paths)-s.keepLastN]
	for _, p := range stale {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("prune manifest %s: %w", p, err)
		}
		s.log.Debug().Str("path", p).Msg("stale manifest pruned")
	}
	return nil
}
