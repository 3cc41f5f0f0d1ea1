package vfs

import (
	"context"
	"sync/atomic"
)

// Drive is one mounted filesystem.
//
// A drive couples a shared root entry with an optional drive-wide backend
// node. The root is reference counted: every path resolution holds its own
// reference, so a drive unmounted while a resolution is in flight keeps its
// root alive until that resolution releases it.
type Drive struct {
	backend   string
	root      *DirEntry
	node      any
	unmounted atomic.Bool
}

// NewDrive creates a drive for a backend.
//
// Parameters:
//   - backend: Backend type name (e.g. "memory"), used in listings and logs
//   - root: Backend entry node of the drive root directory
//   - node: Optional drive-wide backend state; if it implements Unmounter,
//     its Unmount hook runs when the drive is unmounted
func NewDrive(backend string, root EntryNode, node any) *Drive {
	return &Drive{
		backend: backend,
		root:    NewSharedEntry(root),
		node:    node,
	}
}

// Backend returns the backend type name.
func (d *Drive) Backend() string {
	return d.backend
}

// Node returns the drive-wide backend state passed to NewDrive.
func (d *Drive) Node() any {
	return d.node
}

// Root returns a new reference to the drive root entry.
// The caller must Release it.
func (d *Drive) Root() *DirEntry {
	return d.root.Dup()
}

// Capabilities returns the union of the operation tables of the root entry,
// the root directory and the drive node.
//
// Opening the root directory is a backend call; if it fails only the entry
// and drive slots are reported.
func (d *Drive) Capabilities(ctx context.Context) OpSet {
	caps := Capabilities(d.root.Node()) | Capabilities(d.node)
	root := d.Root()
	defer root.Release()
	if dir, err := root.OpenDir(ctx); err == nil {
		caps |= dir.Ops()
		_ = dir.Close()
	}
	return caps
}

// Unmounted reports whether the drive has been torn down.
func (d *Drive) Unmounted() bool {
	return d.unmounted.Load()
}

// Unmount runs the unmount hook and drops the drive's own root reference.
// It is a no-op after the first call.
//
// Kernel.Unmount and Kernel.Close call it for mounted drives; call it
// directly only for a drive that never made it into a kernel.
func (d *Drive) Unmount(ctx context.Context) error {
	if !d.unmounted.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if u, ok := d.node.(Unmounter); ok {
		err = u.Unmount(ctx)
	}
	d.root.Release()
	return err
}
