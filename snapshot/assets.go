package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// Asset is a directory tree copied verbatim into the export under Dst.
// A missing Optional asset is skipped; a missing required one fails the run.
type Asset struct {
	Name     string // for diagnostics
	FS       fs.FS
	Dst      string
	Optional bool
}

// copyAsset copies every regular file of a.FS below a.Dst and returns the
// number of files written.
func copyAsset(ctx context.Context, w ArtifactWriter, a Asset) (int, error) {
	if a.FS == nil {
		if a.Optional {
			return 0, nil
		}
		return 0, fmt.Errorf("snapshot: asset %s has no filesystem", a.Name)
	}
	if _, err := fs.Stat(a.FS, "."); err != nil {
		if a.Optional && errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("snapshot: asset %s: %w", a.Name, err)
	}

	n := 0
	err := fs.WalkDir(a.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := fs.ReadFile(a.FS, p)
		if err != nil {
			return err
		}
		if err := w.WriteFile(ctx, path.Join(a.Dst, p), data); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("snapshot: copy asset %s: %w", a.Name, err)
	}
	return n, nil
}
