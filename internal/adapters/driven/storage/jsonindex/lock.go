//go:build !windows

package jsonindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

const lockFileName = ".lock"

// staleAfter is how long an unreleased lock file is presumed to belong to a
// dead process and may be reclaimed (spec.md §5).
const staleAfter = time.Hour

// lockInfo is the JSON body written into the lock file.
type lockInfo struct {
	PID        int       `json:"pid"`
	Host       string     `json:"host"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// acquireLock takes an exclusive, advisory file lock on dir's lock file,
// reclaiming it first if it is older than staleAfter. It returns an unlock
// function that releases the flock and removes the file.
func acquireLock(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonindex: creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, lockFileName)

	reclaimStaleLock(path)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonindex: opening lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s", domain.ErrLockHeld, describeHolder(path))
	}

	info := lockInfo{PID: os.Getpid(), Host: hostname(), AcquiredAt: time.Now().UTC()}
	if err := writeLockInfo(file, info); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, err
	}

	unlocked := false
	return func() error {
		if unlocked {
			return nil
		}
		unlocked = true
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return os.Remove(path)
	}, nil
}

func writeLockInfo(file *os.File, info lockInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if err := file.Truncate(0); err != nil {
		return err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return err
	}
	_, err = file.Write(data)
	return err
}

// reclaimStaleLock removes path if it holds a lockInfo older than
// staleAfter. Best effort: any error just leaves the file for the
// subsequent Flock attempt to fail naturally.
func reclaimStaleLock(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var info lockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return
	}
	if time.Since(info.AcquiredAt) > staleAfter {
		_ = os.Remove(path)
	}
}

func describeHolder(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "unknown holder"
	}
	var info lockInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return "unknown holder"
	}
	return fmt.Sprintf("pid %d on %s since %s", info.PID, info.Host, info.AcquiredAt.Format(time.RFC3339))
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
