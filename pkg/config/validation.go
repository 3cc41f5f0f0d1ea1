package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/mitchellh/mapstructure"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for rules that cannot
// be expressed in tags.
//
// Note: Letter and log level normalization is handled in ApplyDefaults.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	letters := make(map[vfs.Letter]bool)
	for i, drive := range cfg.Drives {
		letter, err := vfs.ParseLetter(drive.Letter)
		if err != nil {
			return fmt.Errorf("drives[%d]: letter %q must be one of A..Z", i, drive.Letter)
		}
		if letters[letter] {
			return fmt.Errorf("drives[%d]: duplicate drive letter %q", i, drive.Letter)
		}
		letters[letter] = true

		if err := validateDriveOptions(drive); err != nil {
			return fmt.Errorf("drives[%d]: %w", i, err)
		}
	}

	return nil
}

// validateDriveOptions checks the backend options that must be present
// before a factory runs.
func validateDriveOptions(drive DriveConfig) error {
	switch drive.Type {
	case "s3":
		var opts s3Options
		if err := mapstructure.Decode(drive.S3, &opts); err != nil {
			return fmt.Errorf("invalid s3 options: %w", err)
		}
		if opts.Bucket == "" {
			return fmt.Errorf("s3: bucket is required")
		}
		if opts.Region == "" {
			return fmt.Errorf("s3: region is required")
		}
	case "afero":
		var opts aferoOptions
		if err := mapstructure.Decode(drive.Afero, &opts); err != nil {
			return fmt.Errorf("invalid afero options: %w", err)
		}
		// host directories are exposed read-only
		if opts.Root != "" && !opts.ReadOnly {
			return fmt.Errorf("afero: root %q requires read_only: true", opts.Root)
		}
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
