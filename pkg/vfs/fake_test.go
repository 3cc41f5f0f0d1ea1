package vfs_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/marmos91/dittovfs/pkg/vfs"
)

// hooks counts teardown calls made by the framework.
type hooks struct {
	cleanup   atomic.Int32
	closeDir  atomic.Int32
	closeFile atomic.Int32
	unmount   atomic.Int32

	unmountErr error
}

// hookEntry is a DirEntry node. Names starting with "f" are files, all
// other names are directories.
type hookEntry struct {
	h    *hooks
	file bool
}

func (e *hookEntry) OpenDir(ctx context.Context) (vfs.DirNode, error) {
	if e.file {
		return nil, vfs.NewError(vfs.ErrIsNotDirectory, "")
	}
	return &hookDir{h: e.h}, nil
}

func (e *hookEntry) OpenFile(ctx context.Context) (vfs.FileNode, error) {
	if !e.file {
		return nil, vfs.NewError(vfs.ErrIsNotFile, "")
	}
	return &hookFile{h: e.h}, nil
}

func (e *hookEntry) CleanupEntry() {
	e.h.cleanup.Add(1)
}

type hookDir struct {
	h *hooks
}

func (d *hookDir) Find(ctx context.Context, name string) (vfs.EntryNode, error) {
	if name == "missing" {
		return nil, vfs.NewError(vfs.ErrNotFound, name)
	}
	if name == "broken" {
		return nil, errBackend
	}
	return &hookEntry{h: d.h, file: len(name) > 0 && name[0] == 'f'}, nil
}

func (d *hookDir) CloseDir() {
	d.h.closeDir.Add(1)
}

type hookFile struct {
	h *hooks
}

func (f *hookFile) Read(ctx context.Context, p []byte) (int, error) {
	return 0, nil
}

func (f *hookFile) CloseFile() {
	f.h.closeFile.Add(1)
}

type hookDrive struct {
	h *hooks
}

func (d *hookDrive) Unmount(ctx context.Context) error {
	d.h.unmount.Add(1)
	return d.h.unmountErr
}

var errBackend = errors.New("backend exploded")

func newHookDrive() (*vfs.Drive, *hooks) {
	h := &hooks{}
	return vfs.NewDrive("hooks", &hookEntry{h: h}, &hookDrive{h: h}), h
}

// bare implements no operation at all.
type bare struct{}

// rewindFile ignores the read position and copies from offset 0 on every
// call, so it never reports end of file.
type rewindFile struct {
	data []byte
}

func (f *rewindFile) Read(ctx context.Context, p []byte) (int, error) {
	return copy(p, f.data), nil
}

// rewindEntry serves every name as a rewindFile.
type rewindEntry struct{}

func (rewindEntry) OpenDir(ctx context.Context) (vfs.DirNode, error) {
	return rewindEntry{}, nil
}

func (rewindEntry) Find(ctx context.Context, name string) (vfs.EntryNode, error) {
	return rewindEntry{}, nil
}

func (rewindEntry) OpenFile(ctx context.Context) (vfs.FileNode, error) {
	return &rewindFile{data: []byte("again")}, nil
}
