package kb

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"ziwei/pkg/logger"
)

// Store hands out the current knowledge base. Readers always see a complete
// Base; a reload swaps the pointer.
type Store struct {
	cur atomic.Pointer[Base]
}

func NewStore(b *Base) *Store {
	s := &Store{}
	s.cur.Store(b)
	return s
}

// Open returns a store backed by path, or by the embedded content when path
// is empty.
func Open(path string) (*Store, error) {
	if path == "" {
		return NewStore(Embedded()), nil
	}
	b, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStore(b), nil
}

func (s *Store) Current() *Base {
	return s.cur.Load()
}

func (s *Store) Replace(b *Base) {
	s.cur.Store(b)
}

const reloadDebounce = 300 * time.Millisecond

// Watch reloads the store whenever path changes, until ctx is done. A file
// that fails to parse is logged and the previous content stays in place.
// The directory is watched so editors that replace the file are handled.
func (s *Store) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}

	log := logger.Named("kb")
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		var timer *time.Timer
		reload := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				b, err := LoadFile(path)
				if err != nil {
					log.Warnw("kb reload failed, keeping previous content", "path", path, "err", err)
					continue
				}
				s.Replace(b)
				log.Infow("kb reloaded", "path", path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warnw("kb watcher error", "err", err)
			}
		}
	}()
	return nil
}
