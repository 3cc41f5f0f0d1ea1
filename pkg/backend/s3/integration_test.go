//go:build integration

package s3_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3backend "github.com/marmos91/dittovfs/pkg/backend/s3"
	"github.com/marmos91/dittovfs/pkg/vfs"
	vfstesting "github.com/marmos91/dittovfs/pkg/vfs/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestS3 creates a client and a bucket on Localstack (or any other
// S3-compatible endpoint) and uploads objects into it. The bucket is emptied
// and deleted when the test ends.
func setupTestS3(t *testing.T, bucketName string, objects map[string]string) *s3.Client {
	t.Helper()
	ctx := context.Background()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err, "Failed to load AWS config")

	// Localstack needs path-style URLs
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucketName)})
	require.NoError(t, err, "Failed to create test bucket")

	for key, body := range objects {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String(key),
			Body:   strings.NewReader(body),
		})
		require.NoError(t, err, "Failed to upload %s", key)
	}

	t.Cleanup(func() {
		for key := range objects {
			_, _ = client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucketName),
				Key:    aws.String(key),
			})
		}
		_, _ = client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucketName)})
	})

	return client
}

// TestS3Drive_Integration exercises the drive against a real S3 API.
//
// Prerequisites:
//   - Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./pkg/backend/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3Drive_Integration(t *testing.T) {
	ctx := context.Background()
	bucketName := fmt.Sprintf("dittovfs-test-%d", time.Now().UnixNano())

	client := setupTestS3(t, bucketName, map[string]string{
		"export/readme.txt":       "Hello from S3",
		"export/docs/a.txt":       strings.Repeat("a", 100_000),
		"export/docs/deep/b.txt":  "bravo",
		"elsewhere/invisible.txt": "nope",
	})

	drive, err := s3backend.NewDrive(ctx, s3backend.Config{
		Client:    client,
		Bucket:    bucketName,
		KeyPrefix: "export",
	}, nil)
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	t.Run("List", func(t *testing.T) {
		assert.Equal(t, []string{"docs", "readme.txt"}, vfstesting.List(t, kernel, "A:/"))
		assert.Equal(t, []string{"a.txt", "deep"}, vfstesting.List(t, kernel, "A:/docs"))
	})

	t.Run("Read", func(t *testing.T) {
		assert.Equal(t, "Hello from S3", vfstesting.ReadFile(t, kernel, "A:/readme.txt"))
		assert.Len(t, vfstesting.ReadFile(t, kernel, "A:/docs/a.txt"), 100_000)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := kernel.Find(ctx, "A:/invisible.txt")
		vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err)
	})

	t.Run("ReadOnly", func(t *testing.T) {
		vfstesting.AssertErrorCode(t, vfs.ErrUnsupported, kernel.Create(ctx, "A:/new.txt"))
		vfstesting.AssertErrorCode(t, vfs.ErrUnsupported, kernel.Remove(ctx, "A:/readme.txt"))
	})
}
