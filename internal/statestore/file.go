package statestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// FileBackend stores the snapshot as a JSON file. Writes go to a temporary
// file in the same directory and are renamed into place while holding an
// advisory lock on path+".lock". The flock guards against other processes;
// mu serializes callers within this one.
type FileBackend struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileBackend stores the snapshot at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, lock: flock.New(path + ".lock")}
}

func (b *FileBackend) Name() string { return "file" }

// Path returns the snapshot file.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = b.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = b.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("lock snapshot: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock snapshot: %s is held by another process", b.lock.Path())
	}
	defer func() { _ = b.lock.Unlock() }()
	return fn()
}

func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.withLock(ctx, false, func() error {
		var readErr error
		data, readErr = os.ReadFile(b.path)
		return readErr
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	return b.withLock(ctx, true, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
		if err != nil {
			return fmt.Errorf("create temp snapshot: %w", err)
		}
		tmpName := tmp.Name()
		cleanup := func() { _ = os.Remove(tmpName) }
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			cleanup()
			return fmt.Errorf("write temp snapshot: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			cleanup()
			return fmt.Errorf("sync temp snapshot: %w", err)
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return fmt.Errorf("close temp snapshot: %w", err)
		}
		if err := os.Rename(tmpName, b.path); err != nil {
			cleanup()
			return fmt.Errorf("replace snapshot: %w", err)
		}
		return nil
	})
}

func (b *FileBackend) Delete(ctx context.Context) error {
	return b.withLock(ctx, true, func() error {
		if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove snapshot: %w", err)
		}
		return nil
	})
}

func (b *FileBackend) Close() error { return nil }
