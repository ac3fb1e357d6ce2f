// Package watcher feeds documents dropped into inbox directories to the
// assessment callback. Write bursts are debounced so a file being copied in
// is assessed once, after it settles.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/ingest"
)

const settleDelay = 400 * time.Millisecond

// Inbox watches directories and calls onDocument for each settled file with
// a supported extension.
type Inbox struct {
	roots      []string
	recursive  bool
	onDocument func(path string)
	logger     *zap.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	pending  map[string]*time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(in *Inbox) { in.logger = logger }
}

// New returns an Inbox over roots. onDocument receives absolute paths of
// supported document files after they stop changing.
func New(roots []string, recursive bool, onDocument func(path string), opts ...Option) *Inbox {
	in := &Inbox{
		roots:      roots,
		recursive:  recursive,
		onDocument: onDocument,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Start begins watching. Missing roots are created. Runs until ctx is
// cancelled or Stop is called.
func (in *Inbox) Start(ctx context.Context) error {
	in.mu.Lock()
	if in.started {
		in.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		in.mu.Unlock()
		return err
	}
	in.watcher = watcher
	in.started = true

	for _, root := range in.roots {
		if err := in.watchRootLocked(root); err != nil {
			_ = in.watcher.Close()
			in.watcher = nil
			in.started = false
			in.mu.Unlock()
			return err
		}
	}
	in.mu.Unlock()

	in.logger.Info("inbox watching",
		zap.Strings("roots", in.roots), zap.Bool("recursive", in.recursive))
	go in.run(ctx)
	return nil
}

func (in *Inbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			in.Stop()
			return
		case <-in.done:
			return
		case ev, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			in.handleEvent(ev)
		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				in.logger.Warn("inbox watch error", zap.Error(err))
			}
		}
	}
}

func (in *Inbox) handleEvent(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			in.watchNewDirectory(ev.Name)
			return
		}
		if supportedDocument(ev.Name) {
			in.scheduleAssessment(ev.Name)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		in.cancelPending(ev.Name)
	}
}

// watchNewDirectory picks up directories created under a recursive root and
// assesses anything already inside them.
func (in *Inbox) watchNewDirectory(dir string) {
	in.mu.Lock()
	watcher := in.watcher
	recursive := in.recursive
	in.mu.Unlock()
	if watcher == nil || !recursive {
		return
	}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				in.logger.Warn("failed to watch new directory",
					zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
	in.syncDirectory(dir)
}

// scheduleAssessment (re)arms the settle timer for path.
func (in *Inbox) scheduleAssessment(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.pending[path]; ok {
		t.Stop()
	}
	in.pending[path] = time.AfterFunc(settleDelay, func() {
		in.mu.Lock()
		delete(in.pending, path)
		in.mu.Unlock()

		in.logger.Debug("inbox document settled", zap.String("path", path))
		if in.onDocument != nil {
			in.onDocument(path)
		}
	})
}

func (in *Inbox) cancelPending(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.pending[path]; ok {
		t.Stop()
		delete(in.pending, path)
	}
}

func (in *Inbox) watchRootLocked(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	}
	if !in.recursive {
		return in.watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return in.watcher.Add(path)
		}
		return nil
	})
}

// SyncExisting assesses supported files already present under the roots.
// Call after Start so drops made before startup are not missed.
func (in *Inbox) SyncExisting() {
	in.mu.Lock()
	roots := append([]string(nil), in.roots...)
	in.mu.Unlock()
	for _, root := range roots {
		in.syncDirectory(root)
	}
}

func (in *Inbox) syncDirectory(root string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if supportedDocument(path) && in.onDocument != nil {
			in.onDocument(path)
		}
		return nil
	})
}

// Stop stops watching and cancels pending assessments.
func (in *Inbox) Stop() {
	in.mu.Lock()
	if !in.started || in.watcher == nil {
		in.mu.Unlock()
		return
	}
	for path, t := range in.pending {
		t.Stop()
		delete(in.pending, path)
	}
	_ = in.watcher.Close()
	in.watcher = nil
	in.started = false
	in.mu.Unlock()
	in.stopOnce.Do(func() { close(in.done) })
}

func supportedDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range ingest.AllowedExtensions() {
		if ext == allowed {
			return true
		}
	}
	return false
}
