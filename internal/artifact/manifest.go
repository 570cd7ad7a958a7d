package artifact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingManifest indicates the sidecar is empty.
	ErrMissingManifest = errors.New("artifact: missing manifest")
	// ErrMalformedManifest indicates the YAML block lacks required fields.
	ErrMalformedManifest = errors.New("artifact: malformed manifest")
)

// ParseManifest decodes a manifest sidecar.
func ParseManifest(content []byte) (Metadata, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return Metadata{}, ErrMissingManifest
	}
	var envelope mortemEnvelope
	if err := yaml.Unmarshal(content, &envelope); err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse manifest: %w", err)
	}
	return envelope.toMetadata()
}

// WriteManifest renders metadata as a YAML sidecar.
func WriteManifest(meta Metadata) ([]byte, error) {
	if meta.ArtifactID == "" {
		return nil, fmt.Errorf("artifact: metadata missing artifact id")
	}
	envelope := mortemEnvelope{}
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("artifact: encode manifest: %w", err)
	}
	return data, nil
}

type mortemEnvelope struct {
	Mortem mortemMetadata `yaml:"mortem"`
}

type mortemMetadata struct {
	Artifact string            `yaml:"artifact"`
	Engine   string            `yaml:"engine"`
	Version  string            `yaml:"version"`
	Source   string            `yaml:"source,omitempty"`
	Created  string            `yaml:"created"`
	Checksum string            `yaml:"checksum"`
	Notes    map[string]string `yaml:"notes,omitempty"`
}

func (e mortemEnvelope) toMetadata() (Metadata, error) {
	if e.Mortem.Artifact == "" || e.Mortem.Version == "" || e.Mortem.Checksum == "" {
		return Metadata{}, ErrMalformedManifest
	}
	created, err := parseTime(e.Mortem.Created)
	if err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse created timestamp: %w", err)
	}
	return Metadata{
		ArtifactID: e.Mortem.Artifact,
		Engine:     e.Mortem.Engine,
		Version:    e.Mortem.Version,
		Source:     e.Mortem.Source,
		CreatedAt:  created,
		Checksum:   e.Mortem.Checksum,
		Notes:      cloneNotes(e.Mortem.Notes),
	}, nil
}

func (e *mortemEnvelope) fromMetadata(meta Metadata) {
	e.Mortem.Artifact = meta.ArtifactID
	e.Mortem.Engine = meta.Engine
	e.Mortem.Version = meta.Version
	e.Mortem.Source = meta.Source
	e.Mortem.Created = meta.CreatedAt.UTC().Format(timeLayout)
	e.Mortem.Checksum = meta.Checksum
	e.Mortem.Notes = cloneNotes(meta.Notes)
}

func cloneNotes(notes map[string]string) map[string]string {
	if len(notes) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(notes))
	for k, v := range notes {
		cloned[k] = v
	}
	return cloned
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("artifact: empty created timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
