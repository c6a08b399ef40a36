package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FSAdapter stores objects as files of an afero filesystem
type FSAdapter struct {
	fs afero.Fs
}

// NewLocalAdapter creates an adapter rooted at basePath on the OS filesystem
func NewLocalAdapter(basePath string) (*FSAdapter, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "create base path")
	}
	return NewFSAdapter(afero.NewBasePathFs(afero.NewOsFs(), basePath)), nil
}

// NewMemoryAdapter creates an adapter that keeps everything in memory
func NewMemoryAdapter() *FSAdapter {
	return NewFSAdapter(afero.NewMemMapFs())
}

// NewFSAdapter wraps an arbitrary afero filesystem
func NewFSAdapter(fsys afero.Fs) *FSAdapter {
	return &FSAdapter{fs: fsys}
}

// Put writes data to a temporary file next to the target and renames it into
// place, so readers never observe a partial object
func (a *FSAdapter) Put(ctx context.Context, p string, data io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := clean(p)
	if err := a.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, "create directories")
	}

	tmp := target + ".tmp-" + uuid.NewString()
	if err := afero.WriteReader(a.fs, tmp, data); err != nil {
		_ = a.fs.Remove(tmp)
		return errors.Wrapf(err, "write %s", p)
	}
	if err := a.fs.Rename(tmp, target); err != nil {
		_ = a.fs.Remove(tmp)
		return errors.Wrapf(err, "commit %s", p)
	}
	return nil
}

// Get opens the object at the given path
func (a *FSAdapter) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := a.fs.Open(clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "get %s", p)
		}
		return nil, errors.Wrapf(err, "open %s", p)
	}
	return f, nil
}

// Delete removes the object at the given path
func (a *FSAdapter) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := a.fs.Remove(clean(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "delete %s", p)
	}
	return nil
}

// Exists checks if an object exists at the given path
func (a *FSAdapter) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := a.fs.Stat(clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", p)
	}
	return !info.IsDir(), nil
}

// List returns the sorted paths of all objects whose path starts with prefix
func (a *FSAdapter) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string

	err := afero.Walk(a.fs, "/", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || strings.Contains(path.Base(p), ".tmp-") {
			return nil
		}

		rel := strings.TrimPrefix(toSlash(p), "/")
		if strings.HasPrefix(rel, prefix) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list objects")
	}

	sort.Strings(paths)
	return paths, nil
}

// Close releases nothing; files are not kept open between calls
func (a *FSAdapter) Close() error {
	return nil
}

func clean(p string) string {
	return path.Join("/", toSlash(p))
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
