package pubcorpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/eringen/pubcorpus/post"
)

// ErrReloadRejected is returned in strict mode when a reload finds problems.
// The previous snapshot stays in service.
var ErrReloadRejected = errors.New("reload rejected")

// RejectedError carries the problems of a reload refused in strict mode.
// It matches ErrReloadRejected with errors.Is.
type RejectedError struct {
	Problems []error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v: %d problems", ErrReloadRejected, len(e.Problems))
}

func (e *RejectedError) Is(target error) bool { return target == ErrReloadRejected }

func (e *RejectedError) Unwrap() []error { return e.Problems }

// watchDebounce is how long the watcher waits after the last file event
// before reloading.
var watchDebounce = 500 * time.Millisecond

// Reload rescans the posts directory and, if the result is acceptable, syncs
// the index and swaps in the new snapshot. Reloads are serialized.
func (a *App) Reload(ctx context.Context) (*Snapshot, error) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	began := time.Now()
	c, err := a.Loader().Load(ctx)
	if c == nil {
		a.metrics.recordReload(reloadFailed, time.Since(began))
		return nil, err
	}
	if err != nil && a.Config.Strict {
		rej := &RejectedError{Problems: post.Problems(err)}
		problems := problemStrings(rej.Problems)
		a.rejected.Store(&problems)
		a.metrics.recordReload(reloadRejected, time.Since(began))
		a.Logger.Warn("reload rejected", zap.Int("problems", len(problems)), zap.Strings("details", problems))
		return nil, rej
	}

	snap := &Snapshot{Corpus: c, LoadedAt: a.now()}
	if a.Store != nil {
		res, err := a.Store.SyncCorpus(ctx, c, snap.LoadedAt)
		if err != nil {
			a.metrics.recordReload(reloadFailed, time.Since(began))
			return nil, fmt.Errorf("sync index: %w", err)
		}
		snap.Sync = res
		if a.Cache != nil {
			a.Cache.Invalidate()
		}
		for _, s := range res.Stale {
			a.Logger.Warn("body changed without a lastUpdatedDate bump",
				zap.String("urlPath", s.UrlPath),
				zap.String("folder", s.Folder),
				zap.String("lastUpdatedDate", s.LastUpdatedDate),
			)
		}
	}

	a.snapshot.Store(snap)
	a.rejected.Store(nil)
	a.metrics.recordSnapshot(snap)
	a.metrics.recordReload(reloadOK, time.Since(began))
	a.Logger.Info("corpus reloaded",
		zap.Int("posts", c.Len()),
		zap.Int("problems", len(c.Problems)),
		zap.Int("warnings", len(c.Warnings)),
		zap.Int("inserted", snap.Sync.Inserted),
		zap.Int("updated", snap.Sync.Updated),
		zap.Int("removed", snap.Sync.Removed),
	)
	return snap, nil
}

func problemStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// Watch reloads the corpus whenever files under root change. Bursts of
// events trigger a single reload. The returned func stops watching.
func (a *App) Watch(ctx context.Context, root string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				a.Logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				if event.Has(fsnotify.Create) && isDir(event.Name) {
					if err := watcher.Add(event.Name); err != nil {
						a.Logger.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					if _, err := a.Reload(ctx); err != nil {
						a.Logger.Warn("reload after change failed", zap.Error(err))
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.Logger.Warn("watcher error", zap.Error(err))
			}
		}
	}()

	a.Logger.Info("watching for changes", zap.String("root", root))
	return func() {
		watcher.Close()
		<-done
	}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
