package vfs

import (
	"context"
	"io"
	"sync/atomic"
)

// ============================================================================
// DirEntry
// ============================================================================

// DirEntry is a handle to a named node whose kind (file or directory) is not
// known until it is opened.
//
// Release must be called when the handle is no longer needed. It runs the
// backend's CleanupEntry hook exactly once for this handle instance, or drops
// one reference when the entry is shared (see NewSharedEntry).
type DirEntry struct {
	node     EntryNode
	shared   *sharedEntry
	released atomic.Bool
}

// sharedEntry is the reference count behind shared DirEntry handles.
type sharedEntry struct {
	node EntryNode
	refs atomic.Int64
}

// acquire adds a reference unless the count already reached zero.
func (s *sharedEntry) acquire() bool {
	for {
		refs := s.refs.Load()
		if refs <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(refs, refs+1) {
			return true
		}
	}
}

func (s *sharedEntry) drop() {
	if s.refs.Add(-1) == 0 {
		cleanupEntry(s.node)
	}
}

func cleanupEntry(node EntryNode) {
	if c, ok := node.(EntryCleaner); ok {
		c.CleanupEntry()
	}
}

// NewDirEntry wraps a backend entry node in a handle.
func NewDirEntry(node EntryNode) *DirEntry {
	return &DirEntry{node: node}
}

// NewSharedEntry wraps a backend entry node in a reference-counted handle.
//
// Dup on the returned handle (and on its duplicates) adds a reference; the
// CleanupEntry hook runs once, when the last reference is released.
func NewSharedEntry(node EntryNode) *DirEntry {
	s := &sharedEntry{node: node}
	s.refs.Store(1)
	return &DirEntry{node: node, shared: s}
}

// Node returns the backend node carried by the handle.
func (e *DirEntry) Node() EntryNode {
	return e.node
}

// Ops returns the operation table of the entry.
func (e *DirEntry) Ops() OpSet {
	return Capabilities(e.node)
}

// Shared reports whether the handle is a reference to a shared entry.
func (e *DirEntry) Shared() bool {
	return e.shared != nil
}

// OpenDir opens the entry as a directory.
func (e *DirEntry) OpenDir(ctx context.Context) (*Directory, error) {
	if e.released.Load() {
		return nil, closed("entry")
	}
	op, ok := e.node.(DirOpener)
	if !ok {
		return nil, unsupported(OpOpenDir)
	}
	node, err := op.OpenDir(ctx)
	if err != nil {
		return nil, err
	}
	return NewDirectory(node), nil
}

// Open opens the entry as a file.
func (e *DirEntry) Open(ctx context.Context) (*File, error) {
	if e.released.Load() {
		return nil, closed("entry")
	}
	op, ok := e.node.(FileOpener)
	if !ok {
		return nil, unsupported(OpOpenFile)
	}
	node, err := op.OpenFile(ctx)
	if err != nil {
		return nil, err
	}
	return NewFile(node), nil
}

// Dup returns a second handle to the same entry.
//
// For shared entries this adds a reference, unless the last one is already
// gone. Otherwise the new handle aliases the same backend node and runs its
// own cleanup hook when released.
// Duplicating a released handle yields a released handle.
func (e *DirEntry) Dup() *DirEntry {
	if e.released.Load() {
		dup := &DirEntry{node: e.node}
		dup.released.Store(true)
		return dup
	}
	if e.shared != nil {
		if !e.shared.acquire() {
			dup := &DirEntry{node: e.node}
			dup.released.Store(true)
			return dup
		}
		return &DirEntry{node: e.node, shared: e.shared}
	}
	return &DirEntry{node: e.node}
}

// Release releases the handle. Calling Release more than once is a no-op.
func (e *DirEntry) Release() {
	if !e.released.CompareAndSwap(false, true) {
		return
	}
	if e.shared != nil {
		e.shared.drop()
		return
	}
	cleanupEntry(e.node)
}

// ============================================================================
// Directory
// ============================================================================

// Directory is a handle to a directory open for lookup, creation and listing.
type Directory struct {
	node   DirNode
	closed atomic.Bool
}

// NewDirectory wraps a backend directory node in a handle.
func NewDirectory(node DirNode) *Directory {
	return &Directory{node: node}
}

// Node returns the backend node carried by the handle.
func (d *Directory) Node() DirNode {
	return d.node
}

// Ops returns the operation table of the directory.
func (d *Directory) Ops() OpSet {
	return Capabilities(d.node)
}

// Find looks up a single component in the directory.
func (d *Directory) Find(ctx context.Context, name string) (*DirEntry, error) {
	if d.closed.Load() {
		return nil, closed("directory")
	}
	op, ok := d.node.(Finder)
	if !ok {
		return nil, unsupported(OpFind)
	}
	node, err := op.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewDirEntry(node), nil
}

// Create adds an empty file named name.
func (d *Directory) Create(ctx context.Context, name string) error {
	if d.closed.Load() {
		return closed("directory")
	}
	op, ok := d.node.(Creator)
	if !ok {
		return unsupported(OpCreate)
	}
	return op.Create(ctx, name)
}

// Mkdir adds an empty subdirectory named name.
func (d *Directory) Mkdir(ctx context.Context, name string) error {
	if d.closed.Load() {
		return closed("directory")
	}
	op, ok := d.node.(DirMaker)
	if !ok {
		return unsupported(OpMkdir)
	}
	return op.Mkdir(ctx, name)
}

// List returns the names of the directory entries.
func (d *Directory) List(ctx context.Context) ([]string, error) {
	if d.closed.Load() {
		return nil, closed("directory")
	}
	op, ok := d.node.(Lister)
	if !ok {
		return nil, unsupported(OpList)
	}
	return op.List(ctx)
}

// Remove deletes the entry named name.
func (d *Directory) Remove(ctx context.Context, name string) error {
	if d.closed.Load() {
		return closed("directory")
	}
	op, ok := d.node.(Remover)
	if !ok {
		return unsupported(OpRemove)
	}
	return op.Remove(ctx, name)
}

// Dup returns a second handle aliasing the same directory node.
// Duplicating a closed handle yields a closed handle.
func (d *Directory) Dup() *Directory {
	dup := &Directory{node: d.node}
	dup.closed.Store(d.closed.Load())
	return dup
}

// Close closes the handle, running the CloseDir hook once.
func (d *Directory) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := d.node.(DirCloser); ok {
		c.CloseDir()
	}
	return nil
}

// ============================================================================
// File
// ============================================================================

// File is a handle to a file open for reading and writing.
type File struct {
	node   FileNode
	closed atomic.Bool
}

// NewFile wraps a backend file node in a handle.
func NewFile(node FileNode) *File {
	return &File{node: node}
}

// Node returns the backend node carried by the handle.
func (f *File) Node() FileNode {
	return f.node
}

// Ops returns the operation table of the file.
func (f *File) Ops() OpSet {
	return Capabilities(f.node)
}

// Read reads up to len(p) bytes into p.
func (f *File) Read(ctx context.Context, p []byte) (int, error) {
	if f.closed.Load() {
		return 0, closed("file")
	}
	op, ok := f.node.(Reader)
	if !ok {
		return 0, unsupported(OpRead)
	}
	return op.Read(ctx, p)
}

// Write writes p to the file.
func (f *File) Write(ctx context.Context, p []byte) (int, error) {
	if f.closed.Load() {
		return 0, closed("file")
	}
	op, ok := f.node.(Writer)
	if !ok {
		return 0, unsupported(OpWrite)
	}
	return op.Write(ctx, p)
}

// Dup returns a second handle aliasing the same file node.
// Duplicating a closed handle yields a closed handle.
func (f *File) Dup() *File {
	dup := &File{node: f.node}
	dup.closed.Store(f.closed.Load())
	return dup
}

// Close closes the handle, running the CloseFile hook once.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := f.node.(FileCloser); ok {
		c.CloseFile()
	}
	return nil
}

// ============================================================================
// io adapters
// ============================================================================

type fileReader struct {
	ctx context.Context
	f   *File
}

// NewReader adapts f to io.Reader.
//
// A zero-byte read from the backend is reported as io.EOF.
func NewReader(ctx context.Context, f *File) io.Reader {
	return &fileReader{ctx: ctx, f: f}
}

func (r *fileReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.f.Read(r.ctx, p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

type fileWriter struct {
	ctx context.Context
	f   *File
}

// NewWriter adapts f to io.Writer.
func NewWriter(ctx context.Context, f *File) io.Writer {
	return &fileWriter{ctx: ctx, f: f}
}

func (w *fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(w.ctx, p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}
