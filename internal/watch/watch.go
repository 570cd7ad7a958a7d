// Package watch turns a directory of YAML request files into rendered
// artifacts. Each settled *.yaml file in the inbox is parsed, rendered,
// written to the artifact store and moved into inbox/done.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kingrea/mortem/internal/art"
	"github.com/kingrea/mortem/internal/artifact"
	"github.com/kingrea/mortem/internal/lifecycle"
	"github.com/kingrea/mortem/internal/logbook"
	"github.com/kingrea/mortem/internal/logging"
)

// RequestExt is the suffix of request files picked up from the inbox.
const RequestExt = ".yaml"

// Options configures a Watcher.
type Options struct {
	Inbox      string
	Done       string
	Debounce   time.Duration
	TotalBeats uint64
	Network    string
	Store      *artifact.Store
	Logger     *logging.Logger
	Journal    *logbook.Logbook
}

// Stats tracks watcher activity.
type Stats struct {
	Rendered  int
	Rejected  int
	LastFile  string
	LastError string
}

// Outcome reports what happened to one request file.
type Outcome struct {
	Request  string
	Artifact string
	Hash     string
	rendered art.Artifact
}

// Watcher consumes the inbox.
type Watcher struct {
	opts    Options
	mu      sync.Mutex
	pending map[string]time.Time
	stats   Stats
}

// New validates opts and builds a Watcher.
func New(opts Options) (*Watcher, error) {
	if strings.TrimSpace(opts.Inbox) == "" {
		return nil, fmt.Errorf("watch: inbox is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("watch: artifact store is required")
	}
	if opts.Done == "" {
		opts.Done = filepath.Join(opts.Inbox, "done")
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &Watcher{opts: opts, pending: map[string]time.Time{}}, nil
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run renders any requests already waiting, then watches the inbox until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for _, dir := range []string{w.opts.Inbox, w.opts.Done} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("watch: ensure %s: %w", dir, err)
		}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: start watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.opts.Inbox); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.opts.Inbox, err)
	}
	w.opts.Logger.Event("watching", "inbox", w.opts.Inbox, "debounce", w.opts.Debounce)

	if _, err := w.Drain(ctx); err != nil {
		return err
	}

	tick := w.opts.Debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stats := w.Stats()
			w.opts.Logger.Event("stopped", "rendered", stats.Rendered, "rejected", stats.Rejected)
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Event("watcher error", "error", err)
		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

// Drain renders every request currently in the inbox, oldest name first.
func (w *Watcher) Drain(ctx context.Context) ([]Outcome, error) {
	entries, err := os.ReadDir(w.opts.Inbox)
	if err != nil {
		return nil, fmt.Errorf("watch: read inbox: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isRequest(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.opts.Inbox, entry.Name()))
	}
	sort.Strings(paths)
	var outcomes []Outcome
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return outcomes, nil
		}
		out, err := w.Process(path)
		if err != nil {
			continue
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// Process renders a single request file and moves it into the done directory.
// Rejected requests stay in place so they can be fixed and rewritten.
func (w *Watcher) Process(path string) (Outcome, error) {
	out, err := w.render(path)
	w.mu.Lock()
	w.stats.LastFile = path
	if err != nil {
		w.stats.Rejected++
		w.stats.LastError = err.Error()
	} else {
		w.stats.Rendered++
		w.stats.LastError = ""
	}
	w.mu.Unlock()
	if err != nil {
		w.opts.Logger.Event("rejected", "request", filepath.Base(path), "error", err)
		w.opts.Journal.Warn("rejected %s: %v", filepath.Base(path), err)
		return Outcome{}, err
	}
	w.opts.Logger.Event("rendered", "request", filepath.Base(path), "artifact", out.Artifact, "hash", out.Hash)
	w.opts.Journal.Record(out.rendered, filepath.Base(path))
	return out, nil
}

func (w *Watcher) render(path string) (Outcome, error) {
	req, err := lifecycle.LoadRequest(path, w.opts.TotalBeats)
	if err != nil {
		return Outcome{}, err
	}
	if req.Chain != nil && req.Chain.Network == "" {
		req.Chain.Network = w.opts.Network
	}
	a, err := art.Generate(req)
	if err != nil {
		return Outcome{}, err
	}
	written, err := w.opts.Store.Write(a, filepath.Base(path))
	if err != nil {
		return Outcome{}, err
	}
	if err := os.MkdirAll(w.opts.Done, 0o755); err != nil {
		return Outcome{}, fmt.Errorf("watch: ensure done dir: %w", err)
	}
	if err := os.Rename(path, filepath.Join(w.opts.Done, filepath.Base(path))); err != nil {
		return Outcome{}, fmt.Errorf("watch: archive %s: %w", filepath.Base(path), err)
	}
	return Outcome{Request: path, Artifact: written, Hash: a.ContentHash, rendered: a}, nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isRequest(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.opts.Debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()
	sort.Strings(ready)

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		w.Process(path)
	}
}

func isRequest(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, RequestExt) && !strings.HasPrefix(base, ".")
}
