// Package watcher re-ingests catalog files when they change on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driving"
	"github.com/custodia-labs/pimctx/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// ErrNoPaths is returned by Start when there is nothing to watch.
var ErrNoPaths = errors.New("watcher: no catalog paths")

// ReloadFunc receives the outcome of every re-ingestion.
type ReloadFunc func(report *domain.IngestReport, err error)

// CatalogWatcher watches catalog files and re-ingests all of them as one
// batch after any of them is written, created or renamed into place.
type CatalogWatcher struct {
	paths    []string
	watched  map[string]bool
	ingest   driving.IngestService
	debounce time.Duration
	onReload ReloadFunc

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher for paths. onReload may be nil.
func New(ingest driving.IngestService, onReload ReloadFunc, paths ...string) *CatalogWatcher {
	return &CatalogWatcher{
		paths:    paths,
		watched:  make(map[string]bool, len(paths)),
		ingest:   ingest,
		debounce: DefaultDebounce,
		onReload: onReload,
		done:     make(chan struct{}),
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *CatalogWatcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins watching. Directories are watched rather than files so that
// editors that save by renaming a temp file are still noticed.
// Call Stop, or cancel ctx, to clean up.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	if len(w.paths) == 0 {
		return ErrNoPaths
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		w.watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	w.watcher = fw

	go w.loop(ctx)
	logger.Info("Watching %d catalog file(s) for changes", len(w.paths))
	return nil
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (w *CatalogWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	_ = w.watcher.Close()
	<-w.done
}

// Done is closed when the event loop exits.
func (w *CatalogWatcher) Done() <-chan struct{} {
	return w.done
}

func (w *CatalogWatcher) loop(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			logger.Debug("Catalog change: %s %s", evt.Op, evt.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *CatalogWatcher) relevant(evt fsnotify.Event) bool {
	if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(evt.Name)
	if err != nil {
		return false
	}
	return w.watched[abs]
}

func (w *CatalogWatcher) reload(ctx context.Context) {
	logger.Section("Catalog reload")
	report, err := w.ingest.IngestFiles(ctx, w.paths...)
	if err != nil {
		logger.Error("Re-ingesting catalog failed: %v", err)
	} else {
		logger.Info("Re-ingested %d products (%d skipped)", report.Products, report.Skipped())
	}
	if w.onReload != nil {
		w.onReload(report, err)
	}
}
