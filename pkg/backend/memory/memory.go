// Package memory implements the reference in-memory backend.
//
// Every node of a drive lives in one arena owned by the FS: a slice of node
// records addressed by (index, generation). Handles carry that address, never
// a pointer, so removing a node (or unmounting the drive) frees it for real
// and any handle still pointing at it fails with ErrNotFound instead of
// reading recycled memory.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/marmos91/dittovfs/pkg/vfs"
)

// BackendName is the backend type reported by drives of this package.
const BackendName = "memory"

// ErrNodeLimit is returned when the arena reached Config.MaxNodes.
var ErrNodeLimit = errors.New("memory: node limit reached")

type kind uint8

const (
	kindFile kind = iota
	kindDir
)

// ref addresses a node in the arena. A ref whose generation no longer matches
// the slot is stale.
type ref struct {
	index uint32
	gen   uint32
}

type node struct {
	gen  uint32
	live bool
	name string
	kind kind

	// children holds the directory entries in insertion order (directories only)
	children []ref

	// data holds the file content (files only)
	data []byte
}

// Config contains configuration for the in-memory backend.
type Config struct {
	// MaxNodes bounds the number of files and directories, root included.
	// 0 means unlimited.
	MaxNodes int `mapstructure:"max_nodes"`
}

// FS is one in-memory filesystem instance.
//
// Thread Safety:
// All arena access is protected by a single read-write mutex.
type FS struct {
	mu        sync.RWMutex
	nodes     []node
	free      []uint32
	live      int
	root      ref
	maxNodes  int
	unmounted bool
}

// New creates an empty filesystem containing only the root directory.
func New(cfg Config) *FS {
	fs := &FS{maxNodes: cfg.MaxNodes}
	fs.root, _ = fs.alloc("/", kindDir)
	return fs
}

// NewDrive creates an empty in-memory drive.
func NewDrive(cfg Config) *vfs.Drive {
	return New(cfg).Drive()
}

// Drive wraps the filesystem in a vfs.Drive. The drive's unmount hook frees
// the arena.
func (fs *FS) Drive() *vfs.Drive {
	return vfs.NewDrive(BackendName, &entry{fs: fs, ref: fs.root}, fs)
}

// Stats reports the number of live nodes and stored file bytes.
func (fs *FS) Stats() (nodes int, bytes int64) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for i := range fs.nodes {
		if fs.nodes[i].live {
			bytes += int64(len(fs.nodes[i].data))
		}
	}
	return fs.live, bytes
}

// Unmount frees every node. Handles that outlive the drive fail with ErrClosed.
func (fs *FS) Unmount(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.nodes = nil
	fs.free = nil
	fs.live = 0
	fs.unmounted = true
	return nil
}

// ============================================================================
// Arena
// ============================================================================

// alloc must be called with mu held for writing.
func (fs *FS) alloc(name string, k kind) (ref, error) {
	if fs.maxNodes > 0 && fs.live >= fs.maxNodes {
		return ref{}, ErrNodeLimit
	}
	fs.live++

	if n := len(fs.free); n > 0 {
		index := fs.free[n-1]
		fs.free = fs.free[:n-1]
		slot := &fs.nodes[index]
		*slot = node{gen: slot.gen + 1, live: true, name: name, kind: k}
		return ref{index: index, gen: slot.gen}, nil
	}

	fs.nodes = append(fs.nodes, node{gen: 1, live: true, name: name, kind: k})
	return ref{index: uint32(len(fs.nodes) - 1), gen: 1}, nil
}

// release frees r and, for directories, its whole subtree. mu must be held
// for writing.
func (fs *FS) release(r ref) {
	n := &fs.nodes[r.index]
	children := n.children
	*n = node{gen: n.gen}
	fs.free = append(fs.free, r.index)
	fs.live--

	for _, child := range children {
		fs.release(child)
	}
}

// get resolves r. mu must be held.
func (fs *FS) get(r ref) (*node, error) {
	if fs.unmounted {
		return nil, vfs.NewError(vfs.ErrClosed, "memory drive unmounted")
	}
	if int(r.index) >= len(fs.nodes) {
		return nil, vfs.NewError(vfs.ErrNotFound, "stale handle")
	}
	n := &fs.nodes[r.index]
	if !n.live || n.gen != r.gen {
		return nil, vfs.NewError(vfs.ErrNotFound, "stale handle")
	}
	return n, nil
}

// lookup returns the child named name of the directory at r and its position
// in the children list. mu must be held.
func (fs *FS) lookup(r ref, name string) (ref, int, error) {
	n, err := fs.get(r)
	if err != nil {
		return ref{}, -1, err
	}
	if n.kind != kindDir {
		return ref{}, -1, vfs.NewError(vfs.ErrIsNotDirectory, n.name)
	}
	for i, child := range n.children {
		if fs.nodes[child.index].name == name {
			return child, i, nil
		}
	}
	return ref{}, -1, nil
}

// add creates a child of kind k. Duplicate names are rejected.
func (fs *FS) add(ctx context.Context, parent ref, name string, k kind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, i, err := fs.lookup(parent, name)
	if err != nil {
		return err
	}
	if i >= 0 {
		return vfs.NewError(vfs.ErrAlreadyExists, name)
	}

	child, err := fs.alloc(name, k)
	if err != nil {
		return err
	}
	// alloc may grow the arena; index the parent again
	p := &fs.nodes[parent.index]
	p.children = append(p.children, child)
	return nil
}

// remove unlinks name from the directory at parent and frees its subtree.
func (fs *FS) remove(ctx context.Context, parent ref, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	child, i, err := fs.lookup(parent, name)
	if err != nil {
		return err
	}
	if i < 0 {
		return vfs.NewError(vfs.ErrNotFound, name)
	}

	p := &fs.nodes[parent.index]
	p.children = append(p.children[:i], p.children[i+1:]...)
	fs.release(child)
	return nil
}

func validName(name string) error {
	if name == "" || strings.ContainsRune(name, '/') {
		return vfs.NewError(vfs.ErrInvalidPath, name)
	}
	return nil
}
