package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
)

// ArtifactWriter stores exported files. Names are slash-separated and
// relative to the export root.
type ArtifactWriter interface {
	WriteFile(ctx context.Context, name string, data []byte) error
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("snapshot: write requires a name")
	}
	if path.IsAbs(name) || name != path.Clean(name) || strings.HasPrefix(name, "../") || name == ".." {
		return fmt.Errorf("snapshot: invalid output name %q", name)
	}
	return nil
}

// DiskWriter writes files below Root. Each file is replaced atomically so a
// failed run never leaves a truncated page behind.
type DiskWriter struct {
	Root string
}

// NewDiskWriter returns a DiskWriter rooted at root.
func NewDiskWriter(root string) *DiskWriter {
	return &DiskWriter{Root: root}
}

// WriteFile creates parent directories and writes data to name.
func (w *DiskWriter) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	target := filepath.Join(w.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("snapshot: create dir for %s: %w", name, err)
	}
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", name, err)
	}
	return nil
}

// FSWriter writes files into an afero filesystem.
type FSWriter struct {
	Fs   afero.Fs
	Root string
}

// NewFSWriter returns an FSWriter over fs rooted at root.
func NewFSWriter(fs afero.Fs, root string) *FSWriter {
	return &FSWriter{Fs: fs, Root: root}
}

// WriteFile creates parent directories and writes data to name.
func (w *FSWriter) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	target := filepath.Join(w.Root, filepath.FromSlash(name))
	if err := w.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("snapshot: create dir for %s: %w", name, err)
	}
	if err := afero.WriteFile(w.Fs, target, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", name, err)
	}
	return nil
}
