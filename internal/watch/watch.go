package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/config"
	"github.com/yildizm/SalesForecaster/internal/logger"
)

// queueSize bounds how many settled files may wait for upload
const queueSize = 64

// Uploader arms and submits one file at a time
type Uploader interface {
	SelectFile(file *api.File) error
	Submit(ctx context.Context) (*api.Report, error)
}

// Result is the outcome of one watched upload
type Result struct {
	Path   string
	Report *api.Report
	Err    error
}

// Option customizes a Watcher
type Option func(*Watcher)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l.WithComponent("watch")
		}
	}
}

// WithResultHandler registers fn to receive every upload outcome. fn runs
// on the upload goroutine.
func WithResultHandler(fn func(Result)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// Watcher uploads CSV files that appear or change in a directory. Files
// settle for the debounce period before upload and are uploaded one at a
// time in the order they settled.
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	uploader Uploader
	log      *logger.Logger
	onResult func(Result)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	queued  map[string]bool
	jobs    chan string
	stopped bool
}

// New creates a watcher for cfg.Directory
func New(cfg config.WatchConfig, uploader Uploader, opts ...Option) (*Watcher, error) {
	if uploader == nil {
		return nil, errors.New("uploader is required")
	}
	if err := validateWatchDir(cfg.Directory); err != nil {
		return nil, err
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = "*.csv"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	w := &Watcher{
		dir:      filepath.Clean(cfg.Directory),
		pattern:  pattern,
		debounce: cfg.Debounce,
		uploader: uploader,
		log:      logger.Discard(),
		timers:   make(map[string]*time.Timer),
		queued:   make(map[string]bool),
		jobs:     make(chan string, queueSize),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches until ctx is cancelled. The upload in progress when ctx ends
// is cancelled with it.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := createWatcher(w.dir)
	if err != nil {
		return err
	}
	defer cleanupWatcher(fsw, w.log)

	w.log.Info("watching %s for %s", w.dir, w.pattern)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.uploadLoop(ctx)
	}()

	err = w.runWatchLoop(ctx, fsw)

	w.mu.Lock()
	w.stopped = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	wg.Wait()
	return err
}

// runWatchLoop consumes filesystem events until ctx ends
func (w *Watcher) runWatchLoop(ctx context.Context, fsw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleWatchEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.WarnWithFields("watcher error", []logger.Field{logger.Error(err)})
		}
	}
}

// handleWatchEvent schedules matching created or written files
func (w *Watcher) handleWatchEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.matches(event.Name) {
		return
	}
	w.schedule(event.Name)
}

func (w *Watcher) matches(path string) bool {
	ok, err := filepath.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}

// schedule (re)starts the quiet period for path
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.settle(path) })
}

// settle queues path once its quiet period has passed
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.timers, path)
	if w.stopped || w.queued[path] {
		return
	}

	select {
	case w.jobs <- path:
		w.queued[path] = true
	default:
		w.log.Warn("upload queue full, dropping %s", path)
	}
}

// uploadLoop drains the queue one file at a time
func (w *Watcher) uploadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.jobs:
			w.mu.Lock()
			delete(w.queued, path)
			w.mu.Unlock()

			result := w.upload(ctx, path)
			if w.onResult != nil {
				w.onResult(result)
			}
		}
	}
}

func (w *Watcher) upload(ctx context.Context, path string) Result {
	result := Result{Path: path}

	file, err := api.FileFromPath(path)
	if err != nil {
		result.Err = err
		w.log.WarnWithFields("skipping file", []logger.Field{logger.F("path", path), logger.Error(err)})
		return result
	}

	if err := w.uploader.SelectFile(file); err != nil {
		result.Err = err
		return result
	}

	start := time.Now()
	report, err := w.uploader.Submit(ctx)
	result.Report, result.Err = report, err
	if err != nil {
		w.log.WarnWithFields("upload failed", []logger.Field{logger.F("path", path), logger.Error(err)})
		return result
	}

	w.log.InfoWithFields("uploaded", []logger.Field{logger.F("path", path), logger.Duration(time.Since(start))})
	return result
}

// createWatcher creates a filesystem watcher on dir
func createWatcher(dir string) (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	return fsw, nil
}

// cleanupWatcher closes fsw, logging any failure
func cleanupWatcher(fsw *fsnotify.Watcher, log *logger.Logger) {
	if err := fsw.Close(); err != nil {
		log.Debug("failed to close watcher: %v", err)
	}
}

// validateWatchDir checks that path names an existing directory
func validateWatchDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}
