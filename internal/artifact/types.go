// Package artifact persists rendered illustrations. Each artifact is an SVG
// document plus an optional YAML manifest sidecar recording provenance and the
// content checksum, so a gallery directory can be re-verified later.

package artifact

import (
	"fmt"
	"strings"
	"time"
)

// ManifestSuffix is appended to the SVG filename to name its sidecar.
const ManifestSuffix = ".yaml"

// Metadata captures provenance stored in the manifest sidecar.
type Metadata struct {
	ArtifactID string
	Engine     string
	Version    string
	Source     string
	CreatedAt  time.Time
	Checksum   string
	Notes      map[string]string
}

// WithDefaults ensures metadata carries the artifact ID and timestamps.
func (m Metadata) WithDefaults(id string, now time.Time) Metadata {
	clone := m
	if clone.ArtifactID == "" {
		clone.ArtifactID = id
	}
	if clone.Engine == "" {
		clone.Engine = EngineName
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now.UTC()
	} else {
		clone.CreatedAt = clone.CreatedAt.UTC()
	}
	return clone
}

// ValidateFor ensures metadata matches the artifact it describes.
func (m Metadata) ValidateFor(id string) error {
	if m.ArtifactID != id {
		return fmt.Errorf("artifact: metadata id %s does not match %s", m.ArtifactID, id)
	}
	if m.Version == "" {
		return fmt.Errorf("artifact: version is required for %s", id)
	}
	if strings.TrimSpace(m.Checksum) == "" {
		return fmt.Errorf("artifact: checksum is required for %s", id)
	}
	return nil
}

// EngineName identifies the producer in manifests.
const EngineName = "mortem"

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Filename string
	Path     string
	State    State
	Decoded  string
	Metadata *Metadata
	Err      error
}
