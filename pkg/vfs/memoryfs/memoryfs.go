// Package memoryfs implements an in-memory vfs.FileSystem seeded from a
// YAML document, the reference backend used by the test suite. It is
// not part of the protocol core: the core only imports
// pkg/vfs's interface.
package memoryfs

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kelpfs/nfs4d/pkg/vfs"
)

type node struct {
	kind     vfs.Kind
	data     []byte
	modTime  time.Time
	children map[string]*node // directories only
}

// FS is an in-memory filesystem tree guarded by a single mutex; every
// FileSystem method takes the lock for its whole duration, giving the
// same single-writer guarantee spec'd for the coordinators above it.
type FS struct {
	mu   sync.RWMutex
	root *node
}

// New returns an empty filesystem containing only the root directory.
func New() *FS {
	return &FS{root: &node{kind: vfs.KindDir, children: map[string]*node{}, modTime: time.Now()}}
}

// LoadYAML parses a YAML document of the shape
//
//	file1.txt: "Hello, world!"
//	dir1/file2.txt: "Hello, file2!"
//	dir2: {}
//
// into a new FS. Scalar values become regular file contents; an empty
// mapping value declares an explicit (possibly empty) directory.
// Intermediate directories implied by a "/"-separated key are created
// automatically.
func LoadYAML(data []byte) (*FS, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("memoryfs: parse yaml: %w", err)
	}

	fs := New()
	for path, value := range doc {
		path = strings.Trim(path, "/")
		switch v := value.(type) {
		case string:
			if err := fs.CreateFile("/" + path); err != nil {
				return nil, err
			}
			if err := fs.WriteAll("/"+path, []byte(v)); err != nil {
				return nil, err
			}
		case map[string]any:
			if len(v) != 0 {
				return nil, fmt.Errorf("memoryfs: key %q: directory entries must be an empty mapping", path)
			}
			if err := fs.CreateDir("/" + path); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("memoryfs: key %q: value must be a string or an empty mapping", path)
		}
	}
	return fs, nil
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// walk resolves path to its node, creating intermediate directories
// along the way when mkdirAll is true.
func (f *FS) walk(path string, mkdirAll bool) (*node, error) {
	cur := f.root
	for _, part := range split(path) {
		child, ok := cur.children[part]
		if !ok {
			if !mkdirAll {
				return nil, fmt.Errorf("memoryfs: %s: %w", path, vfs.ErrNotExist)
			}
			child = &node{kind: vfs.KindDir, children: map[string]*node{}, modTime: time.Now()}
			cur.children[part] = child
		}
		if child.kind != vfs.KindDir {
			return nil, fmt.Errorf("memoryfs: %s: not a directory", path)
		}
		cur = child
	}
	return cur, nil
}

func (f *FS) lookup(path string) (*node, error) {
	parts := split(path)
	if len(parts) == 0 {
		return f.root, nil
	}
	parent, err := f.walk(strings.Join(parts[:len(parts)-1], "/"), false)
	if err != nil {
		return nil, err
	}
	child, ok := parent.children[parts[len(parts)-1]]
	if !ok {
		return nil, fmt.Errorf("memoryfs: %s: %w", path, vfs.ErrNotExist)
	}
	return child, nil
}

func (f *FS) Stat(path string) (vfs.Info, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, err := f.lookup(path)
	if err != nil {
		return vfs.Info{}, err
	}
	return vfs.Info{Path: path, Kind: n.kind, Size: int64(len(n.data)), ModTime: n.modTime, AccessTime: n.modTime}, nil
}

func (f *FS) List(path string) ([]vfs.Info, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, err := f.lookup(path)
	if err != nil {
		return nil, err
	}
	if n.kind != vfs.KindDir {
		return nil, fmt.Errorf("memoryfs: %s: not a directory", path)
	}
	infos := make([]vfs.Info, 0, len(n.children))
	for name, child := range n.children {
		infos = append(infos, vfs.Info{
			Path:       vfs.Join(path, name),
			Kind:       child.kind,
			Size:       int64(len(child.data)),
			ModTime:    child.modTime,
			AccessTime: child.modTime,
		})
	}
	return infos, nil
}

func (f *FS) CreateFile(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := split(path)
	if len(parts) == 0 {
		return fmt.Errorf("memoryfs: cannot create root as a file")
	}
	parent, err := f.walk(strings.Join(parts[:len(parts)-1], "/"), true)
	if err != nil {
		return err
	}
	name := parts[len(parts)-1]
	if _, exists := parent.children[name]; exists {
		return nil
	}
	parent.children[name] = &node{kind: vfs.KindFile, modTime: time.Now()}
	return nil
}

func (f *FS) CreateDir(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.walk(path, true)
	return err
}

func (f *FS) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := split(path)
	if len(parts) == 0 {
		return fmt.Errorf("memoryfs: cannot remove root")
	}
	parent, err := f.walk(strings.Join(parts[:len(parts)-1], "/"), false)
	if err != nil {
		return err
	}
	name := parts[len(parts)-1]
	if _, exists := parent.children[name]; !exists {
		return fmt.Errorf("memoryfs: %s: %w", path, vfs.ErrNotExist)
	}
	delete(parent.children, name)
	return nil
}

func (f *FS) ReadAll(path string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, err := f.lookup(path)
	if err != nil {
		return nil, err
	}
	if n.kind != vfs.KindFile {
		return nil, fmt.Errorf("memoryfs: %s: not a regular file", path)
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out, nil
}

func (f *FS) WriteAll(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := split(path)
	if len(parts) == 0 {
		return fmt.Errorf("memoryfs: cannot write to root")
	}
	parent, err := f.walk(strings.Join(parts[:len(parts)-1], "/"), true)
	if err != nil {
		return err
	}
	name := parts[len(parts)-1]
	n, exists := parent.children[name]
	if !exists {
		n = &node{kind: vfs.KindFile}
		parent.children[name] = n
	}
	if n.kind != vfs.KindFile {
		return fmt.Errorf("memoryfs: %s: not a regular file", path)
	}
	n.data = append([]byte(nil), data...)
	n.modTime = time.Now()
	return nil
}
