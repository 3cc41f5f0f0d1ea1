// Package s3 implements a read-only backend exposing an S3 bucket.
//
// Object keys map onto the tree by '/' separators: "docs/report.txt" is the
// file report.txt inside directory docs. A directory exists as long as at
// least one key lives under its prefix. The bucket is never written: the
// directory and file nodes implement no create, mkdir, write or remove slot,
// so the framework answers those calls with ErrUnsupported.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/internal/ratelimiter"
	"github.com/marmos91/dittovfs/pkg/metrics"
	"github.com/marmos91/dittovfs/pkg/vfs"
)

// BackendName is the backend type reported by drives of this package.
const BackendName = "s3"

// Client is the subset of the S3 API the backend calls. *s3.Client
// satisfies it.
type Client interface {
	s3.ListObjectsV2APIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config contains configuration for the S3 backend.
type Config struct {
	// Client is the configured S3 client
	Client Client

	// Bucket is the S3 bucket name
	Bucket string

	// KeyPrefix is an optional prefix that becomes the drive root.
	// Example: "exports/" exposes "exports/a.txt" as L:/a.txt
	KeyPrefix string

	// RequestsPerSecond caps the sustained request rate against the bucket.
	// 0 means unlimited.
	RequestsPerSecond uint

	// Burst is the number of requests allowed above the sustained rate
	Burst uint
}

// Bucket is a read-only view of one bucket (or of one prefix within it).
//
// Thread Safety:
// Bucket holds no mutable state; open files guard their own cursor.
type Bucket struct {
	client  Client
	bucket  string
	root    string
	metrics metrics.BackendMetrics
}

// New verifies bucket access and returns the bucket view.
//
// The bucket must already exist.
func New(ctx context.Context, cfg Config, m metrics.BackendMetrics) (*Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	b := &Bucket{
		client:  throttle(cfg.Client, ratelimiter.New(cfg.RequestsPerSecond, cfg.Burst)),
		bucket:  cfg.Bucket,
		root:    normalizePrefix(cfg.KeyPrefix),
		metrics: metrics.OrNoop(m),
	}

	start := time.Now()
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	b.metrics.RecordStorageOperation("HeadBucket", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	logger.Debug("S3 drive ready: bucket=%s prefix=%q", b.bucket, b.root)
	return b, nil
}

// NewDrive creates a read-only drive over the bucket.
func NewDrive(ctx context.Context, cfg Config, m metrics.BackendMetrics) (*vfs.Drive, error) {
	b, err := New(ctx, cfg, m)
	if err != nil {
		return nil, err
	}
	return b.Drive(), nil
}

// Drive wraps the bucket in a vfs.Drive.
func (b *Bucket) Drive() *vfs.Drive {
	return vfs.NewDrive(BackendName, &entry{b: b, key: b.root, dir: true}, b)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// isNotFound reports whether err is S3's answer for a missing key.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

// headObject returns the object size, or found=false when key does not exist.
func (b *Bucket) headObject(ctx context.Context, key string) (size int64, found bool, err error) {
	start := time.Now()
	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		b.metrics.RecordStorageOperation("HeadObject", time.Since(start), nil)
		return 0, false, nil
	}
	b.metrics.RecordStorageOperation("HeadObject", time.Since(start), err)
	if err != nil {
		return 0, false, fmt.Errorf("failed to head object %q: %w", key, err)
	}
	return aws.ToInt64(result.ContentLength), true, nil
}

// hasPrefix reports whether at least one key lives under prefix.
func (b *Bucket) hasPrefix(ctx context.Context, prefix string) (bool, error) {
	start := time.Now()
	result, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	b.metrics.RecordStorageOperation("ListObjectsV2", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to list prefix %q: %w", prefix, err)
	}
	return len(result.Contents) > 0 || len(result.CommonPrefixes) > 0, nil
}
