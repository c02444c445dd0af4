package safeio

import (
	"os"
	"path/filepath"
	"time"
)

// Workdir is a run-scoped temporary directory. Close removes it and
// everything inside, regardless of which stage failed first.
type Workdir struct {
	*SafeFS
	dir string
}

// NewWorkdir creates a unique directory under parent for one pipeline run.
func NewWorkdir(parent, prefix string) (*Workdir, error) {
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(parent, prefix+"-*")
	if err != nil {
		return nil, err
	}
	fsys, err := NewSafeFS(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &Workdir{SafeFS: fsys, dir: dir}, nil
}

// Close removes the workspace and all artifacts created in it.
func (w *Workdir) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	return os.RemoveAll(w.dir)
}

// RemoveOlderThan deletes entries under dir whose modification time is older
// than maxAge. Used to reap stale diagram images between runs. Returns the
// number of removed entries.
func RemoveOlderThan(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
