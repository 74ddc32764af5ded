package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockTimeout bounds how long Write waits for a concurrent writer.
var LockTimeout = 5 * time.Second

// Write persists classes to path together with the sentinel entry
// sentinelKey → location.
//
// Writers serialize on an advisory lock next to the cache file, and the
// content is written to a temporary file that replaces path by rename, so a
// reader sees either the old or the new file.
func Write(path, sentinelKey, location string, classes Map) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache dir %s: %w", dir, err)
	}

	unlock, err := acquireCacheLock(path+".lock", LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	out := make(map[string]string, len(classes)+1)
	maps.Copy(out, classes)
	out[sentinelKey] = location

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create cache file: %w", err)
	}
	tmpPath := tmp.Name()
	// No-op once the rename succeeded.
	defer func() { _ = os.Remove(tmpPath) }()

	bw := bufio.NewWriter(tmp)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot encode cache: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write cache: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("cannot write cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cannot replace cache %s: %w", path, err)
	}
	return nil
}

// acquireCacheLock polls for the lock at lockPath until timeout.
func acquireCacheLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire cache lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w (lock: %s)", ErrLockTimeout, lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
