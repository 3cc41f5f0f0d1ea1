package vfs

import (
	"context"
	"strings"
)

// ============================================================================
// Backend Nodes
// ============================================================================

// EntryNode is the backend state behind a DirEntry.
//
// The framework never inspects a node: it only asks, through type assertions,
// which of the operation interfaces below the node implements. A backend's
// operation table is therefore the method set of its node types. It is fixed
// at compile time and shared by every handle carrying a node of that type.
type EntryNode any

// DirNode is the backend state behind an open Directory.
type DirNode any

// FileNode is the backend state behind an open File.
type FileNode any

// ============================================================================
// Operation Table
// ============================================================================
//
// Every interface below is one optional slot. A backend implements only the
// slots it supports; invoking a missing slot through a handle fails with
// ErrUnsupported.

// Finder looks up a single path component inside an open directory.
//
// Implementations must return ErrNotFound when name does not exist. The name
// is always one component: no separators, no wildcards.
type Finder interface {
	Find(ctx context.Context, name string) (EntryNode, error)
}

// DirOpener opens an entry as a directory.
//
// Implementations must return ErrIsNotDirectory for file entries.
type DirOpener interface {
	OpenDir(ctx context.Context) (DirNode, error)
}

// FileOpener opens an entry as a file.
//
// Implementations must return ErrIsNotFile for directory entries.
type FileOpener interface {
	OpenFile(ctx context.Context) (FileNode, error)
}

// Creator adds a new empty file entry to a directory.
type Creator interface {
	Create(ctx context.Context, name string) error
}

// DirMaker adds a new empty subdirectory to a directory.
type DirMaker interface {
	Mkdir(ctx context.Context, name string) error
}

// Reader reads bytes from an open file into p.
//
// Each open file node owns a read position starting at 0. A Read continues
// where the previous one stopped and advances the position by the count it
// returns. At end of file Read returns 0, nil. Implementations must never
// report more than len(p) bytes, and must fill p when at least len(p) bytes
// remain.
type Reader interface {
	Read(ctx context.Context, p []byte) (int, error)
}

// Writer writes p to an open file.
type Writer interface {
	Write(ctx context.Context, p []byte) (int, error)
}

// DirCloser is invoked once when a Directory handle is closed.
type DirCloser interface {
	CloseDir()
}

// FileCloser is invoked once when a File handle is closed.
type FileCloser interface {
	CloseFile()
}

// EntryCleaner is invoked once when a DirEntry handle is released.
type EntryCleaner interface {
	CleanupEntry()
}

// Unmounter is invoked once when a Drive is unmounted. It is implemented on
// the drive-wide node passed to NewDrive.
type Unmounter interface {
	Unmount(ctx context.Context) error
}

// Lister returns the names of the entries of an open directory.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Remover deletes the named entry of an open directory.
//
// Implementations must return ErrNotFound when name does not exist.
type Remover interface {
	Remove(ctx context.Context, name string) error
}

// ============================================================================
// Op / OpSet
// ============================================================================

// Op identifies one slot of the operation table.
type Op uint8

const (
	OpFind Op = iota
	OpOpenDir
	OpOpenFile
	OpCreate
	OpMkdir
	OpRead
	OpWrite
	OpCloseDir
	OpCloseFile
	OpCleanupEntry
	OpUnmount
	OpList
	OpRemove

	opCount
)

var opNames = [opCount]string{
	OpFind:         "find",
	OpOpenDir:      "open_dir",
	OpOpenFile:     "open",
	OpCreate:       "create",
	OpMkdir:        "mkdir",
	OpRead:         "read",
	OpWrite:        "write",
	OpCloseDir:     "close_dir",
	OpCloseFile:    "close",
	OpCleanupEntry: "cleanup_entry",
	OpUnmount:      "unmount",
	OpList:         "list",
	OpRemove:       "remove",
}

func (o Op) String() string {
	if o < opCount {
		return opNames[o]
	}
	return "unknown"
}

// OpSet is a set of operation table slots.
type OpSet uint16

// Has reports whether op is in the set.
func (s OpSet) Has(op Op) bool {
	return s&(1<<op) != 0
}

// With returns s with op added.
func (s OpSet) With(op Op) OpSet {
	return s | 1<<op
}

// Ops returns the operations of the set in table order.
func (s OpSet) Ops() []Op {
	var ops []Op
	for op := Op(0); op < opCount; op++ {
		if s.Has(op) {
			ops = append(ops, op)
		}
	}
	return ops
}

func (s OpSet) String() string {
	names := make([]string, 0, opCount)
	for _, op := range s.Ops() {
		names = append(names, op.String())
	}
	return strings.Join(names, ",")
}

// Capabilities returns the operation table implemented by a backend node.
func Capabilities(node any) OpSet {
	var s OpSet
	if _, ok := node.(Finder); ok {
		s = s.With(OpFind)
	}
	if _, ok := node.(DirOpener); ok {
		s = s.With(OpOpenDir)
	}
	if _, ok := node.(FileOpener); ok {
		s = s.With(OpOpenFile)
	}
	if _, ok := node.(Creator); ok {
		s = s.With(OpCreate)
	}
	if _, ok := node.(DirMaker); ok {
		s = s.With(OpMkdir)
	}
	if _, ok := node.(Reader); ok {
		s = s.With(OpRead)
	}
	if _, ok := node.(Writer); ok {
		s = s.With(OpWrite)
	}
	if _, ok := node.(DirCloser); ok {
		s = s.With(OpCloseDir)
	}
	if _, ok := node.(FileCloser); ok {
		s = s.With(OpCloseFile)
	}
	if _, ok := node.(EntryCleaner); ok {
		s = s.With(OpCleanupEntry)
	}
	if _, ok := node.(Unmounter); ok {
		s = s.With(OpUnmount)
	}
	if _, ok := node.(Lister); ok {
		s = s.With(OpList)
	}
	if _, ok := node.(Remover); ok {
		s = s.With(OpRemove)
	}
	return s
}
