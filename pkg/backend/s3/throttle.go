package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittovfs/internal/ratelimiter"
)

// throttledClient waits for a limiter token before every request.
type throttledClient struct {
	Client
	limiter *ratelimiter.RateLimiter
}

func throttle(c Client, limiter *ratelimiter.RateLimiter) Client {
	if limiter.Unlimited() {
		return c
	}
	return &throttledClient{Client: c, limiter: limiter}
}

func (c *throttledClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.ListObjectsV2(ctx, params, optFns...)
}

func (c *throttledClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.HeadBucket(ctx, params, optFns...)
}

func (c *throttledClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.HeadObject(ctx, params, optFns...)
}

func (c *throttledClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.GetObject(ctx, params, optFns...)
}
