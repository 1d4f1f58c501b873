// Package ingest loads sentiment summary files into the chunk store.
// A TOML manifest describes each file's metadata; files may be stored
// zstd-compressed.
package ingest

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Summary describes one summary file in the manifest.
type Summary struct {
	Path    string `toml:"path"`
	Type    string `toml:"type"`
	Country string `toml:"country,omitempty"`
	Period  string `toml:"period,omitempty"`
}

// Manifest lists the summary files of one ingest batch.
type Manifest struct {
	Version   int       `toml:"version"`
	Summaries []Summary `toml:"summaries"`
}

var validTypes = map[string]bool{
	"daily":           true,
	"weekly":          true,
	"monthly":         true,
	"country_summary": true,
	"anomaly":         true,
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if len(m.Summaries) == 0 {
		return nil, fmt.Errorf("manifest lists no summaries")
	}
	for i, s := range m.Summaries {
		if s.Path == "" {
			return nil, fmt.Errorf("summary %d has no path", i)
		}
		if !validTypes[s.Type] {
			return nil, fmt.Errorf("summary %q has unknown type %q", s.Path, s.Type)
		}
	}

	return &m, nil
}
