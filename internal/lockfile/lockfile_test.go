package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withProcesses(t *testing.T, running map[int]string) {
	t.Helper()
	oldFind, oldPid := findProcessFunc, getpid
	t.Cleanup(func() { findProcessFunc, getpid = oldFind, oldPid })

	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := running[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func TestAcquireAndRelease(t *testing.T) {
	withProcesses(t, nil)
	getpid = func() int { return 4242 }
	path := filepath.Join(t.TempDir(), "mellow.lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	h, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if h.PID != 4242 {
		t.Errorf("expected pid 4242, got %d", h.PID)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected lockfile to be removed")
	}
}

func TestAcquireRejectsLiveInstance(t *testing.T) {
	withProcesses(t, map[int]string{100: "mellow"})
	path := filepath.Join(t.TempDir(), "mellow.lock")
	os.WriteFile(path, []byte("100|1700000000"), 0o600)

	if _, err := Acquire(path); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := map[string]map[int]string{
		"process gone": nil,
		"pid reused":   {100: "bash"},
	}

	for name, running := range tests {
		t.Run(name, func(t *testing.T) {
			withProcesses(t, running)
			getpid = func() int { return 7 }
			path := filepath.Join(t.TempDir(), "mellow.lock")
			os.WriteFile(path, []byte("100|1700000000"), 0o600)

			lock, err := Acquire(path)
			if err != nil {
				t.Fatalf("expected stale lock to be replaced, got %v", err)
			}
			defer lock.Release()

			if h, _ := Inspect(path); h.PID != 7 {
				t.Errorf("expected new pid in lockfile, got %d", h.PID)
			}
		})
	}
}

func TestAcquireReplacesMalformedLock(t *testing.T) {
	withProcesses(t, nil)
	path := filepath.Join(t.TempDir(), "mellow.lock")
	os.WriteFile(path, []byte("garbage"), 0o600)

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("expected malformed lock to be replaced, got %v", err)
	}
	lock.Release()
}

func TestInspectMalformed(t *testing.T) {
	withProcesses(t, nil)
	path := filepath.Join(t.TempDir(), "mellow.lock")

	for _, content := range []string{"", "12", "abc|1", "12|abc", "-1|5"} {
		os.WriteFile(path, []byte(content), 0o600)
		if _, err := Inspect(path); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	withProcesses(t, nil)
	getpid = func() int { return 1 }
	path := filepath.Join(t.TempDir(), "mellow.lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	os.WriteFile(path, []byte("2|1700000000"), 0o600)

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("lockfile owned by another pid should be kept")
	}
}
