package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittovfs/pkg/vfs"
)

// entry is a file object (key) or a directory (key is a prefix ending in
// '/', or "" for the bucket root).
type entry struct {
	b   *Bucket
	key string
	dir bool
}

func (e *entry) OpenDir(ctx context.Context) (vfs.DirNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !e.dir {
		return nil, vfs.NewError(vfs.ErrIsNotDirectory, e.key)
	}
	return &dir{b: e.b, prefix: e.key}, nil
}

func (e *entry) OpenFile(ctx context.Context) (vfs.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.dir {
		return nil, vfs.NewError(vfs.ErrIsNotFile, e.key)
	}

	size, found, err := e.b.headObject(ctx, e.key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, vfs.NewError(vfs.ErrNotFound, e.key)
	}
	return &file{b: e.b, key: e.key, size: size}, nil
}

// dir is an open directory: read-only, so only find and list are offered.
type dir struct {
	b      *Bucket
	prefix string
}

func (d *dir) Find(ctx context.Context, name string) (vfs.EntryNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.ContainsRune(name, '/') {
		return nil, vfs.NewError(vfs.ErrNotFound, name)
	}

	key := d.prefix + name
	_, found, err := d.b.headObject(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return &entry{b: d.b, key: key}, nil
	}

	found, err = d.b.hasPrefix(ctx, key+"/")
	if err != nil {
		return nil, err
	}
	if found {
		return &entry{b: d.b, key: key + "/", dir: true}, nil
	}
	return nil, vfs.NewError(vfs.ErrNotFound, name)
}

func (d *dir) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(d.b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(d.b.bucket),
		Prefix:    aws.String(d.prefix),
		Delimiter: aws.String("/"),
	})

	var names []string
	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		page, err := paginator.NextPage(ctx)
		d.b.metrics.RecordStorageOperation("ListObjectsV2", time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, p := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), d.prefix), "/")
			if name != "" {
				names = append(names, name)
			}
		}
		for _, obj := range page.Contents {
			// skip the zero-byte "folder" marker of the directory itself
			name := strings.TrimPrefix(aws.ToString(obj.Key), d.prefix)
			if name != "" {
				names = append(names, name)
			}
		}
	}

	slices.Sort(names)
	return slices.Compact(names), nil
}

// file is an open object with its own read cursor. Each read fetches the
// requested window with a ranged GET.
type file struct {
	b    *Bucket
	key  string
	size int64

	mu     sync.Mutex
	offset int64
}

func (f *file) Read(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(p) == 0 || f.offset >= f.size {
		return 0, nil
	}
	end := min(f.offset+int64(len(p)), f.size) - 1

	start := time.Now()
	result, err := f.b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.b.bucket),
		Key:    aws.String(f.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", f.offset, end)),
	})
	f.b.metrics.RecordStorageOperation("GetObject", time.Since(start), err)
	if err != nil {
		if isNotFound(err) {
			return 0, vfs.NewError(vfs.ErrNotFound, f.key)
		}
		return 0, fmt.Errorf("failed to get object %q: %w", f.key, err)
	}
	defer result.Body.Close()

	n, err := io.ReadFull(result.Body, p[:end-f.offset+1])
	f.offset += int64(n)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("failed to read object %q: %w", f.key, err)
	}
	return n, nil
}
