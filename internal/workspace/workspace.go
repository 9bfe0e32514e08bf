// Package workspace owns the temporary directory a run cuts segments into.
// It is created before the first cut and removed on every exit path via Close.
package workspace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type Workspace struct {
	dir    string
	logger *zap.Logger
}

// New creates a fresh directory under parent (os.TempDir when empty).
func New(parent, runID string, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir, err := os.MkdirTemp(parent, "adstrip-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	logger.Debug("workspace created", zap.String("dir", dir))
	return &Workspace{dir: dir, logger: logger}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// SegmentName is the file name of the i-th cut segment.
func SegmentName(i int, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%d%s", i, ext)
}

// SegmentPath is the absolute path of the i-th cut segment.
func (w *Workspace) SegmentPath(i int, ext string) string {
	return filepath.Join(w.dir, SegmentName(i, ext))
}

// WriteManifest writes the concat list for one output, one `file <name>` line
// per segment in order. Names are relative to the workspace directory, which
// is where the concat demuxer resolves them from.
func (w *Workspace) WriteManifest(output int, names []string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("filelist-%d.txt", output))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, name := range names {
		if _, err := fmt.Fprintf(bw, "file %s\n", name); err != nil {
			return "", fmt.Errorf("write manifest: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close manifest: %w", err)
	}
	return path, nil
}

// Close removes the workspace and everything in it. Safe to call twice.
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.logger.Debug("workspace removed", zap.String("dir", w.dir), zap.Error(err))
	w.dir = ""
	return err
}
