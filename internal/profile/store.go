package profile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
)

const reloadDebounce = 250 * time.Millisecond

// Store holds the live registry. Readers never block; updates swap the
// pointer.
type Store struct {
	current atomic.Pointer[Registry]
	log     logger.Logger
}

// NewStore wraps an initial registry.
func NewStore(initial *Registry, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{log: log.With(logger.Component("profiles"))}
	s.current.Store(initial)
	return s
}

// Registry returns the current snapshot.
func (s *Store) Registry() *Registry {
	return s.current.Load()
}

// Get resolves channel against the current snapshot.
func (s *Store) Get(channel string) Profile {
	return s.current.Load().Get(channel)
}

// IsStructured resolves channel against the current snapshot.
func (s *Store) IsStructured(channel string) bool {
	return s.current.Load().IsStructured(channel)
}

// Register adds p to the live registry.
func (s *Store) Register(p Profile) error {
	for {
		old := s.current.Load()
		next, err := old.Register(p)
		if err != nil {
			return err
		}
		if s.current.CompareAndSwap(old, next) {
			s.log.Info("Profile registered", logger.String("profile", p.Name))
			return nil
		}
	}
}

// Reload replaces the registry with the contents of path. The old registry
// stays live on error.
func (s *Store) Reload(path string) error {
	next, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.current.Store(next)
	s.log.Info("Profiles reloaded",
		logger.String("path", path),
		logger.Int("profiles", len(next.Profiles())),
	)
	return nil
}

// Watch reloads path whenever it changes, until ctx is done. The parent
// directory is watched so editors that replace the file are seen.
func (s *Store) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create profile watcher: %w", err)
	}
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch profile dir: %w", err)
	}

	go s.watchLoop(ctx, watcher, filepath.Clean(path))
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer func() { _ = watcher.Close() }()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			debounce = time.After(reloadDebounce)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("Profile watcher error", logger.Error(werr))
		case <-debounce:
			debounce = nil
			if err := s.Reload(path); err != nil {
				s.log.Error("Profile reload failed, keeping previous profiles",
					logger.String("path", path),
					logger.Error(err),
				)
			}
		}
	}
}
