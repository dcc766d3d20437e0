package knowledge

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/starford/munin/internal/apperr"
)

// storeLock pairs an in-process mutex with an advisory file lock so that
// writers in this process and in sibling processes are both serialized.
type storeLock struct {
	mu sync.Mutex
	fl *flock.Flock
}

type lockSet struct {
	mu    sync.Mutex
	locks map[string]*storeLock
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*storeLock)}
}

func (s *lockSet) get(key, lockPath string) *storeLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &storeLock{fl: flock.New(lockPath)}
	s.locks[key] = l
	return l
}

// withStoreLock runs fn while holding the lock for the store file at rel.
// The lock file lives next to the store file with a .lock suffix.
func (e *Engine) withStoreLock(rel string, fn func() error) error {
	abs, err := e.store.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &apperr.IOError{Op: "mkdir", Path: filepath.Dir(abs), Err: err}
	}

	l := e.locks.get(rel, abs+".lock")
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fl.Lock(); err != nil {
		return &apperr.IOError{Op: "lock", Path: abs + ".lock", Err: err}
	}
	defer l.fl.Unlock() //nolint:errcheck // unlock failure leaves the advisory lock to the OS

	return fn()
}
