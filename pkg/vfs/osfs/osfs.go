// Package osfs implements a vfs.FileSystem rooted at a real directory
// on disk, the backend cmd/nfs4d wires up for production use. Every
// vfs path is translated to a path under Root before touching the
// operating system; memoryfs remains the in-memory backend used by
// tests.
package osfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelpfs/nfs4d/pkg/vfs"
)

// FS is a vfs.FileSystem backed by a directory tree rooted at Root.
type FS struct {
	Root string
}

// New returns an FS rooted at root, which must already exist as a
// directory.
func New(root string) (*FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("osfs: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("osfs: root %q is not a directory", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("osfs: resolve root: %w", err)
	}
	return &FS{Root: abs}, nil
}

// native maps a vfs path (always slash-separated, rooted at "/") to a
// real filesystem path under Root.
func (f *FS) native(path string) string {
	return filepath.Join(f.Root, filepath.Clean("/"+filepath.FromSlash(path)))
}

func wrapNotExist(op, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("osfs: %s %s: %w", op, path, vfs.ErrNotExist)
	}
	return fmt.Errorf("osfs: %s %s: %w", op, path, err)
}

func (f *FS) Stat(path string) (vfs.Info, error) {
	info, err := os.Stat(f.native(path))
	if err != nil {
		return vfs.Info{}, wrapNotExist("stat", path, err)
	}
	kind := vfs.KindFile
	if info.IsDir() {
		kind = vfs.KindDir
	}
	return vfs.Info{
		Path:       path,
		Kind:       kind,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		AccessTime: info.ModTime(),
	}, nil
}

func (f *FS) List(path string) ([]vfs.Info, error) {
	entries, err := os.ReadDir(f.native(path))
	if err != nil {
		return nil, wrapNotExist("list", path, err)
	}
	infos := make([]vfs.Info, 0, len(entries))
	for _, entry := range entries {
		childInfo, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("osfs: list %s: %w", path, err)
		}
		kind := vfs.KindFile
		if childInfo.IsDir() {
			kind = vfs.KindDir
		}
		infos = append(infos, vfs.Info{
			Path:       vfs.Join(path, entry.Name()),
			Kind:       kind,
			Size:       childInfo.Size(),
			ModTime:    childInfo.ModTime(),
			AccessTime: childInfo.ModTime(),
		})
	}
	return infos, nil
}

func (f *FS) CreateFile(path string) error {
	file, err := os.OpenFile(f.native(path), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("osfs: create file %s: %w", path, err)
	}
	return file.Close()
}

func (f *FS) CreateDir(path string) error {
	if err := os.Mkdir(f.native(path), 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("osfs: create dir %s: %w", path, err)
	}
	return nil
}

func (f *FS) Remove(path string) error {
	if err := os.Remove(f.native(path)); err != nil {
		return wrapNotExist("remove", path, err)
	}
	return nil
}

func (f *FS) ReadAll(path string) ([]byte, error) {
	data, err := os.ReadFile(f.native(path))
	if err != nil {
		return nil, wrapNotExist("read", path, err)
	}
	return data, nil
}

func (f *FS) WriteAll(path string, data []byte) error {
	if err := os.WriteFile(f.native(path), data, 0644); err != nil {
		return fmt.Errorf("osfs: write %s: %w", path, err)
	}
	return nil
}
