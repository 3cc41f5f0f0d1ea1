package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittovfs/internal/logger"
	aferobackend "github.com/marmos91/dittovfs/pkg/backend/afero"
	badgerbackend "github.com/marmos91/dittovfs/pkg/backend/badger"
	"github.com/marmos91/dittovfs/pkg/backend/memory"
	s3backend "github.com/marmos91/dittovfs/pkg/backend/s3"
	"github.com/marmos91/dittovfs/pkg/metrics"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/mitchellh/mapstructure"
)

// BackendMetricsFactory returns the storage metrics collector for a backend
// type. A nil factory disables backend metrics.
type BackendMetricsFactory func(backend string) metrics.BackendMetrics

// s3Options is the drives[].s3 section.
type s3Options struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`

	// RequestsPerSecond and Burst throttle calls to the bucket (0 = unlimited)
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
	Burst             uint `mapstructure:"burst"`
}

// aferoOptions is the drives[].afero section.
type aferoOptions = aferobackend.Config

// CreateDrive creates a drive based on configuration.
//
// This factory function uses the Type field to determine which backend to
// create, then decodes the type-specific options map and passes it to the
// backend's constructor.
//
// Supported types:
//   - "memory": pkg/backend/memory (arena-backed, ephemeral)
//   - "badger": pkg/backend/badger (in-memory BadgerDB, ephemeral)
//   - "s3":     pkg/backend/s3 (read-only bucket view)
//   - "afero":  pkg/backend/afero (in-memory or read-only host directory)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Drive configuration
//   - newMetrics: Optional backend metrics factory
//
// Returns:
//   - *vfs.Drive: Initialized drive, not yet mounted
//   - error: Configuration or initialization error
func CreateDrive(ctx context.Context, cfg DriveConfig, newMetrics BackendMetricsFactory) (*vfs.Drive, error) {
	var m metrics.BackendMetrics
	if newMetrics != nil {
		m = newMetrics(cfg.Type)
	}

	switch cfg.Type {
	case "memory":
		return createMemoryDrive(cfg.Memory)
	case "badger":
		return createBadgerDrive(ctx, cfg.Badger, m)
	case "s3":
		return createS3Drive(ctx, cfg.S3, m)
	case "afero":
		return createAferoDrive(cfg.Afero)
	default:
		return nil, fmt.Errorf("unknown drive type: %q", cfg.Type)
	}
}

func createMemoryDrive(options map[string]any) (*vfs.Drive, error) {
	var backendCfg memory.Config
	if err := mapstructure.Decode(options, &backendCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory drive config: %w", err)
	}
	return memory.NewDrive(backendCfg), nil
}

func createBadgerDrive(ctx context.Context, options map[string]any, m metrics.BackendMetrics) (*vfs.Drive, error) {
	var backendCfg badgerbackend.Config
	if err := mapstructure.Decode(options, &backendCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger drive config: %w", err)
	}

	drive, err := badgerbackend.NewDrive(ctx, backendCfg, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger drive: %w", err)
	}
	return drive, nil
}

func createS3Drive(ctx context.Context, options map[string]any, m metrics.BackendMetrics) (*vfs.Drive, error) {
	var opts s3Options
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 drive config: %w", err)
	}

	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3 drive: bucket is required")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("S3 drive: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(opts.Region))

	// Use static credentials if provided, otherwise the default credential chain
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints (MinIO, Localstack) need path-style addressing
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create Drive
	// ========================================================================

	drive, err := s3backend.NewDrive(ctx, s3backend.Config{
		Client:            client,
		Bucket:            opts.Bucket,
		KeyPrefix:         opts.KeyPrefix,
		RequestsPerSecond: opts.RequestsPerSecond,
		Burst:             opts.Burst,
	}, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 drive: %w", err)
	}

	logger.Info("S3 drive initialized: bucket=%s, region=%s, prefix=%s",
		opts.Bucket, opts.Region, opts.KeyPrefix)

	return drive, nil
}

func createAferoDrive(options map[string]any) (*vfs.Drive, error) {
	var opts aferoOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode afero drive config: %w", err)
	}

	drive, err := aferobackend.NewDrive(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create afero drive: %w", err)
	}
	return drive, nil
}

// MountDrives creates every configured drive and mounts it on kernel.
//
// Drives are created and mounted in configuration order. If any drive
// fails, the drives mounted so far by this call are unmounted again and the
// error is returned.
func MountDrives(ctx context.Context, kernel *vfs.Kernel, drives []DriveConfig, newMetrics BackendMetricsFactory) error {
	var mounted []vfs.Letter

	rollback := func(cause error) error {
		errs := []error{cause}
		for _, letter := range mounted {
			if err := kernel.Unmount(ctx, letter); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for i, driveCfg := range drives {
		letter, err := vfs.ParseLetter(driveCfg.Letter)
		if err != nil {
			return rollback(fmt.Errorf("drives[%d]: %w", i, err))
		}

		drive, err := CreateDrive(ctx, driveCfg, newMetrics)
		if err != nil {
			return rollback(fmt.Errorf("drives[%d]: %w", i, err))
		}

		if err := kernel.Mount(letter, drive); err != nil {
			// the drive never reached the table; tear it down here
			_ = drive.Unmount(ctx)
			return rollback(fmt.Errorf("drives[%d]: failed to mount %s: %w", i, letter, err))
		}
		mounted = append(mounted, letter)
	}

	return nil
}
