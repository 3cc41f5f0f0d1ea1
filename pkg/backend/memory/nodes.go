package memory

import (
	"context"
	"sync"

	"github.com/marmos91/dittovfs/pkg/vfs"
)

// entry is the DirEntry node: a reference to a named node of unknown kind.
type entry struct {
	fs  *FS
	ref ref
}

func (e *entry) OpenDir(ctx context.Context) (vfs.DirNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.fs.mu.RLock()
	defer e.fs.mu.RUnlock()

	n, err := e.fs.get(e.ref)
	if err != nil {
		return nil, err
	}
	if n.kind != kindDir {
		return nil, vfs.NewError(vfs.ErrIsNotDirectory, n.name)
	}
	return &dir{fs: e.fs, ref: e.ref}, nil
}

func (e *entry) OpenFile(ctx context.Context) (vfs.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.fs.mu.RLock()
	defer e.fs.mu.RUnlock()

	n, err := e.fs.get(e.ref)
	if err != nil {
		return nil, err
	}
	if n.kind != kindFile {
		return nil, vfs.NewError(vfs.ErrIsNotFile, n.name)
	}
	return &file{fs: e.fs, ref: e.ref}, nil
}

// dir is an open directory.
type dir struct {
	fs  *FS
	ref ref
}

func (d *dir) Find(ctx context.Context, name string) (vfs.EntryNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.fs.mu.RLock()
	defer d.fs.mu.RUnlock()

	child, i, err := d.fs.lookup(d.ref, name)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return nil, vfs.NewError(vfs.ErrNotFound, name)
	}
	return &entry{fs: d.fs, ref: child}, nil
}

func (d *dir) Create(ctx context.Context, name string) error {
	return d.fs.add(ctx, d.ref, name, kindFile)
}

func (d *dir) Mkdir(ctx context.Context, name string) error {
	return d.fs.add(ctx, d.ref, name, kindDir)
}

func (d *dir) Remove(ctx context.Context, name string) error {
	return d.fs.remove(ctx, d.ref, name)
}

func (d *dir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.fs.mu.RLock()
	defer d.fs.mu.RUnlock()

	n, err := d.fs.get(d.ref)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.children))
	for _, child := range n.children {
		names = append(names, d.fs.nodes[child.index].name)
	}
	return names, nil
}

// file is an open file. Each open carries its own read cursor; writes
// always append.
type file struct {
	fs  *FS
	ref ref

	mu     sync.Mutex
	offset int
}

func (f *file) Read(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()

	n, err := f.fs.get(f.ref)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offset >= len(n.data) {
		return 0, nil
	}
	count := copy(p, n.data[f.offset:])
	f.offset += count
	return count, nil
}

func (f *file) Write(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	n, err := f.fs.get(f.ref)
	if err != nil {
		return 0, err
	}
	n.data = append(n.data, p...)
	return len(p), nil
}
