package vfs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := vfs.NewError(vfs.ErrNotFound, "bar.txt")

	assert.ErrorIs(t, err, vfs.ErrNotFound)
	assert.ErrorIs(t, err, vfs.NewError(vfs.ErrNotFound, "other"))
	assert.NotErrorIs(t, err, vfs.ErrIsNotFile)
	assert.Equal(t, "not found: bar.txt", err.Error())
}

func TestError_Wrapped(t *testing.T) {
	err := fmt.Errorf("lookup failed: %w", vfs.NewError(vfs.ErrIsNotDirectory, "foo"))

	assert.ErrorIs(t, err, vfs.ErrIsNotDirectory)

	code, ok := vfs.CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, vfs.ErrIsNotDirectory, code)
}

func TestCodeOf(t *testing.T) {
	code, ok := vfs.CodeOf(vfs.ErrMissingDrive)
	assert.True(t, ok)
	assert.Equal(t, vfs.ErrMissingDrive, code)

	_, ok = vfs.CodeOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = vfs.CodeOf(nil)
	assert.False(t, ok)
}

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code vfs.ErrorCode
		want string
	}{
		{vfs.ErrInvalidPath, "InvalidPath"},
		{vfs.ErrInvalidDrive, "InvalidDrive"},
		{vfs.ErrMissingDrive, "MissingDrive"},
		{vfs.ErrAlreadyExists, "AlreadyExists"},
		{vfs.ErrUnsupported, "Unsupported"},
		{vfs.ErrNotFound, "NotFound"},
		{vfs.ErrIsNotDirectory, "IsNotDirectory"},
		{vfs.ErrIsNotFile, "IsNotFile"},
		{vfs.ErrClosed, "Closed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.String())
	}
}
