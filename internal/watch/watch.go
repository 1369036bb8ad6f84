// Package watch saves a snapshot whenever a file settles after a change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/keshon/verskeep/internal/logger"
	"github.com/keshon/verskeep/internal/store/meta"
)

// AutoSaveDescription is attached to snapshots taken by the watcher.
const AutoSaveDescription = "Auto-saved"

// ErrAlreadyWatching means another process holds the watch lock of the file.
var ErrAlreadyWatching = errors.New("file is already being watched")

// Saver is the subset of the version manager the watcher needs.
type Saver interface {
	SaveVersion(ctx context.Context, path, description string) (meta.Version, error)
	HasChanged(ctx context.Context, path string) (bool, error)
	LockPath(ctx context.Context, path string) (string, error)
}

type Watcher struct {
	saver    Saver
	debounce time.Duration
	log      *logger.Logger

	// OnReady is called once the file is being watched.
	OnReady func()
	// OnSave is called after every auto-saved snapshot.
	OnSave func(meta.Version)
}

func New(saver Saver, debounce time.Duration, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{saver: saver, debounce: debounce, log: log}
}

// Run watches path until ctx is done. Each burst of writes is collapsed into
// one save after the debounce interval, skipped when the content matches the
// current snapshot.
func (w *Watcher) Run(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("failed to watch %q: %w", abs, err)
	}

	lock, err := w.lock(ctx, abs)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.log.WarnCtx(ctx, "failed to release watch lock", "lock", lock.Path(), "error", err)
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	w.log.InfoCtx(ctx, "watching file", logger.KeyFile, abs, "debounce", w.debounce)
	if w.OnReady != nil {
		w.OnReady()
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.save(ctx, abs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *Watcher) lock(ctx context.Context, abs string) (*flock.Flock, error) {
	lockPath, err := w.saver.LockPath(ctx, abs)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock dir: %w", err)
	}

	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %q: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("%q: %w", abs, ErrAlreadyWatching)
	}
	return lock, nil
}

func (w *Watcher) save(ctx context.Context, abs string) {
	changed, err := w.saver.HasChanged(ctx, abs)
	if err != nil {
		// the file may be mid-replace; the next event retries
		w.log.WarnCtx(ctx, "failed to compare file", logger.KeyFile, abs, "error", err)
		return
	}
	if !changed {
		w.log.DebugCtx(ctx, "content unchanged, skipping", logger.KeyFile, abs)
		return
	}

	v, err := w.saver.SaveVersion(ctx, abs, AutoSaveDescription)
	if err != nil {
		w.log.ErrorCtx(ctx, "auto-save failed", logger.KeyFile, abs, "error", err)
		return
	}
	if w.OnSave != nil {
		w.OnSave(v)
	}
}
