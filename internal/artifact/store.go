package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/mortem/internal/art"
	"github.com/kingrea/mortem/internal/lifecycle"
)

// Store manages artifact IO rooted at the output directory.
type Store struct {
	dir      string
	manifest bool
	now      func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for manifest timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// WithManifest toggles the YAML sidecar.
func WithManifest(enabled bool) StoreOption {
	return func(s *Store) {
		s.manifest = enabled
	}
}

// NewStore builds a store writing into dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir:      dir,
		manifest: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path resolves the on-disk location of filename.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Write persists the document and, when enabled, its manifest. source names
// the request the artifact came from and may be empty.
func (s *Store) Write(a art.Artifact, source string) (string, error) {
	if !art.FilenamePattern.MatchString(a.Filename) {
		return "", fmt.Errorf("artifact: refusing unexpected filename %q", a.Filename)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: ensure output dir: %w", err)
	}
	path := s.Path(a.Filename)
	if err := os.WriteFile(path, []byte(a.Document), 0o644); err != nil {
		return "", fmt.Errorf("artifact: write %s: %w", a.Filename, err)
	}
	if !s.manifest {
		return path, nil
	}
	meta := Metadata{
		Version:  art.SchemaVersion,
		Source:   source,
		Checksum: a.ContentHash,
		Notes:    notesFor(a),
	}.WithDefaults(a.Filename, s.now())
	if err := meta.ValidateFor(a.Filename); err != nil {
		return "", err
	}
	content, err := WriteManifest(meta)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path+ManifestSuffix, content, 0o644); err != nil {
		return "", fmt.Errorf("artifact: write manifest for %s: %w", a.Filename, err)
	}
	return path, nil
}

// Check re-reads an artifact, decodes its hidden text and verifies that the
// embedded hash, the filename and the manifest checksum all agree.
func (s *Store) Check(filename string) (CheckResult, error) {
	path := s.Path(filename)
	if !art.FilenamePattern.MatchString(filename) {
		return invalidResult(filename, path, fmt.Errorf("artifact: %q is not a mortem filename", filename))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Filename: filename, Path: path, State: StateMissing}, nil
		}
		return CheckResult{Filename: filename, Path: path, State: StateError, Err: err}, err
	}
	document := string(data)
	decoded := art.Decode(document)
	if !decoded.Success {
		return invalidResult(filename, path, fmt.Errorf("artifact: decode %s: %s", filename, decoded.Reason))
	}
	embedded, err := art.ReadMetadata(document)
	if err != nil {
		return invalidResult(filename, path, err)
	}
	phase, err := lifecycle.ParsePhase(embedded.Phase)
	if err != nil {
		return invalidResult(filename, path, err)
	}
	hash := art.ContentHash(embedded.Beat.Number, phase, decoded.Text)
	if hash != embedded.Hash {
		return invalidResult(filename, path, fmt.Errorf("artifact: embedded hash %s does not match content %s", embedded.Hash, hash))
	}
	if want := art.Filename(embedded.Beat.Number, phase, hash); want != filename {
		return invalidResult(filename, path, fmt.Errorf("artifact: content belongs in %s", want))
	}
	result := CheckResult{Filename: filename, Path: path, State: StateReady, Decoded: decoded.Text}

	sidecar, err := os.ReadFile(path + ManifestSuffix)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return CheckResult{Filename: filename, Path: path, State: StateError, Err: err}, err
	}
	meta, err := ParseManifest(sidecar)
	if err != nil {
		return invalidResult(filename, path, err)
	}
	if err := meta.ValidateFor(filename); err != nil {
		return invalidResult(filename, path, err)
	}
	if meta.Checksum != hash {
		return invalidResult(filename, path, fmt.Errorf("artifact: manifest checksum %s does not match %s", meta.Checksum, hash))
	}
	result.Metadata = &meta
	return result, nil
}

// List returns the artifact filenames in the output directory, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("artifact: list %s: %w", s.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), art.Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func notesFor(a art.Artifact) map[string]string {
	notes := map[string]string{
		"phase":      a.Phase.Lower(),
		"life":       strconv.FormatFloat(a.Geometry.LifeFraction, 'f', 4, 64),
		"void":       strconv.FormatFloat(a.Geometry.VoidRadius, 'f', 2, 64),
		"eye":        strconv.FormatFloat(a.Geometry.EyeOpenHeight, 'f', 2, 64),
		"units":      strconv.Itoa(a.Units),
		"round_trip": "ok",
	}
	if dominant, ok := a.Themes.Dominant(); ok {
		notes["dominant"] = dominant.String()
	}
	if decoded := art.Decode(a.Document); !decoded.Success {
		notes["round_trip"] = decoded.Reason
	}
	return notes
}

func invalidResult(filename, path string, err error) (CheckResult, error) {
	return CheckResult{Filename: filename, Path: path, State: StateInvalid, Err: err}, err
}
