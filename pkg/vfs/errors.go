package vfs

import "errors"

// ErrorCode represents the category of a VFS error.
//
// ErrorCode values implement the error interface, so they can be used
// directly as sentinels with errors.Is:
//
//	if errors.Is(err, vfs.ErrNotFound) { ... }
//
// Backends should return *Error values (or bare codes) for conditions that
// fall into one of these categories, and wrap infrastructure failures
// (database, network) with fmt.Errorf instead.
type ErrorCode int

const (
	// ErrInvalidPath indicates malformed path syntax: missing ':' separator,
	// missing leading '/', or an empty final component where a name is required
	ErrInvalidPath ErrorCode = iota

	// ErrInvalidDrive indicates the drive token is not exactly one letter in A..Z
	ErrInvalidDrive

	// ErrMissingDrive indicates no drive is mounted at the referenced letter
	ErrMissingDrive

	// ErrAlreadyExists indicates a mount on an occupied letter, or a
	// duplicate name in backends that reject duplicates
	ErrAlreadyExists

	// ErrUnsupported indicates the backend does not implement the operation
	ErrUnsupported

	// ErrNotFound indicates a lookup could not locate the named component
	ErrNotFound

	// ErrIsNotDirectory indicates a file entry was opened as a directory
	ErrIsNotDirectory

	// ErrIsNotFile indicates a directory entry was opened as a file
	ErrIsNotFile

	// ErrClosed indicates an operation on a handle that was already released
	ErrClosed
)

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidPath:
		return "InvalidPath"
	case ErrInvalidDrive:
		return "InvalidDrive"
	case ErrMissingDrive:
		return "MissingDrive"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrUnsupported:
		return "Unsupported"
	case ErrNotFound:
		return "NotFound"
	case ErrIsNotDirectory:
		return "IsNotDirectory"
	case ErrIsNotFile:
		return "IsNotFile"
	case ErrClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Error implements the error interface.
func (c ErrorCode) Error() string {
	switch c {
	case ErrInvalidPath:
		return "invalid path"
	case ErrInvalidDrive:
		return "invalid drive letter"
	case ErrMissingDrive:
		return "missing drive"
	case ErrAlreadyExists:
		return "already exists"
	case ErrUnsupported:
		return "unsupported operation"
	case ErrNotFound:
		return "not found"
	case ErrIsNotDirectory:
		return "is not a directory"
	case ErrIsNotFile:
		return "is not a file"
	case ErrClosed:
		return "handle already released"
	default:
		return "unknown error"
	}
}

// Error is a VFS error carrying a category, a message and the path or name
// it concerns.
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the path or component name related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Error()
	}
	if e.Path != "" {
		return msg + ": " + e.Path
	}
	return msg
}

// Is reports whether target is the same error category.
//
// Both bare codes (vfs.ErrNotFound) and other *Error values with the same
// code match.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

// NewError creates an *Error with the default message for code.
func NewError(code ErrorCode, path string) *Error {
	return &Error{Code: code, Message: code.Error(), Path: path}
}

// CodeOf extracts the ErrorCode from err.
//
// Returns false when err does not carry a VFS error category.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	var c ErrorCode
	if errors.As(err, &c) {
		return c, true
	}
	return 0, false
}

func unsupported(op Op) error {
	return &Error{Code: ErrUnsupported, Message: "unsupported operation", Path: op.String()}
}

func closed(kind string) error {
	return &Error{Code: ErrClosed, Message: "handle already released", Path: kind}
}
