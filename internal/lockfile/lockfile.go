// Package lockfile keeps a single bot instance per data directory. Two
// gateways on the same data would answer every interaction twice.
package lockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpid          = os.Getpid
)

var ErrAlreadyRunning = errors.New("another mellow instance is running")

// Lock is a held lockfile. Release removes it.
type Lock struct {
	path string
	pid  int
}

// Holder describes the process named in a lockfile.
type Holder struct {
	PID     int
	Started time.Time
	Alive   bool
}

// Acquire writes "<pid>|<unix start>" to path. A lockfile left by a process
// that is gone, or that is not mellow, is treated as stale and replaced.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	holder, err := Inspect(path)
	switch {
	case err == nil && holder.Alive:
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, holder.PID)
	case err == nil:
		logger.Warn("removing stale lockfile", "path", path, "pid", holder.PID)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		logger.Warn("replacing unreadable lockfile", "path", path, "error", err)
		_ = os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	pid := getpid()
	if _, err := fmt.Fprintf(f, "%d|%d", pid, time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path, pid: pid}, nil
}

// Inspect parses the lockfile and checks whether its process is a live
// mellow binary.
func Inspect(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}

	pidStr, startStr, ok := strings.Cut(strings.TrimSpace(string(content)), "|")
	if !ok {
		return Holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}
	started, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return Holder{}, errors.New("invalid start time in lockfile")
	}

	h := Holder{PID: pid, Started: time.Unix(started, 0)}
	process, err := findProcessFunc(pid)
	if err == nil && process != nil && strings.HasPrefix(process.Executable(), constants.AppName) {
		h.Alive = true
	}
	return h, nil
}

func (l *Lock) Path() string {
	return l.path
}

// Release removes the lockfile if it still names this process.
func (l *Lock) Release() error {
	h, err := Inspect(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && h.PID != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
