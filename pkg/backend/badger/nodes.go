package badger

import (
	"context"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/dittovfs/pkg/vfs"
)

// entry is the DirEntry node for the node stored under id.
type entry struct {
	s  *Store
	id uuid.UUID
}

func (e *entry) OpenDir(ctx context.Context) (vfs.DirNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := e.s.view("open_dir", func(txn *badger.Txn) error {
		_, err := getDir(txn, e.id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dir{s: e.s, id: e.id}, nil
}

func (e *entry) OpenFile(ctx context.Context) (vfs.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := e.s.view("open", func(txn *badger.Txn) error {
		r, err := getRecord(txn, e.id)
		if err != nil {
			return err
		}
		if r.Kind != kindFile {
			return vfs.NewError(vfs.ErrIsNotFile, r.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &file{s: e.s, id: e.id}, nil
}

// dir is an open directory.
type dir struct {
	s  *Store
	id uuid.UUID
}

func (d *dir) Find(ctx context.Context, name string) (vfs.EntryNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var childID uuid.UUID
	err := d.s.view("find", func(txn *badger.Txn) error {
		if _, err := getDir(txn, d.id); err != nil {
			return err
		}
		id, err := lookupChild(txn, d.id, name)
		if err != nil {
			return err
		}
		if id == uuid.Nil {
			return vfs.NewError(vfs.ErrNotFound, name)
		}
		childID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry{s: d.s, id: childID}, nil
}

func (d *dir) Create(ctx context.Context, name string) error {
	return d.add(ctx, "create", name, kindFile)
}

func (d *dir) Mkdir(ctx context.Context, name string) error {
	return d.add(ctx, "mkdir", name, kindDir)
}

func (d *dir) add(ctx context.Context, op, name string, kind nodeKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || strings.ContainsRune(name, '/') {
		return vfs.NewError(vfs.ErrInvalidPath, name)
	}

	return d.s.update(op, func(txn *badger.Txn) error {
		if _, err := getDir(txn, d.id); err != nil {
			return err
		}
		existing, err := lookupChild(txn, d.id, name)
		if err != nil {
			return err
		}
		if existing != uuid.Nil {
			return vfs.NewError(vfs.ErrAlreadyExists, name)
		}

		id := uuid.New()
		if err := putRecord(txn, id, record{Kind: kind, Name: name}); err != nil {
			return err
		}
		if kind == kindFile {
			if err := txn.Set(keyData(id), []byte{}); err != nil {
				return err
			}
		}
		return txn.Set(keyChild(d.id, name), id[:])
	})
}

func (d *dir) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return d.s.update("remove", func(txn *badger.Txn) error {
		if _, err := getDir(txn, d.id); err != nil {
			return err
		}
		id, err := lookupChild(txn, d.id, name)
		if err != nil {
			return err
		}
		if id == uuid.Nil {
			return vfs.NewError(vfs.ErrNotFound, name)
		}
		if err := deleteTree(txn, id); err != nil {
			return err
		}
		return txn.Delete(keyChild(d.id, name))
	})
}

func (d *dir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string
	err := d.s.view("scan", func(txn *badger.Txn) error {
		if _, err := getDir(txn, d.id); err != nil {
			return err
		}
		var err error
		names, _, err = childIDs(txn, d.id)
		return err
	})
	return names, err
}

// file is an open file with its own read cursor. Writes append.
type file struct {
	s  *Store
	id uuid.UUID

	mu     sync.Mutex
	offset int
}

func (f *file) Read(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var n int
	err := f.s.view("read", func(txn *badger.Txn) error {
		item, err := txn.Get(keyData(f.id))
		if err == badger.ErrKeyNotFound {
			return vfs.NewError(vfs.ErrNotFound, "stale handle")
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if f.offset < len(val) {
				n = copy(p, val[f.offset:])
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	f.offset += n
	return n, nil
}

func (f *file) Write(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	err := f.s.update("write", func(txn *badger.Txn) error {
		item, err := txn.Get(keyData(f.id))
		if err == badger.ErrKeyNotFound {
			return vfs.NewError(vfs.ErrNotFound, "stale handle")
		}
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.Set(keyData(f.id), append(data, p...))
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
