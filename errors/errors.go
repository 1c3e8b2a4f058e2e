package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Op names the filesystem operation that produced an error
type Op string

const (
	OpOpen     Op = "open"
	OpOpenDir  Op = "opendir"
	OpMkdir    Op = "mkdir"
	OpRmdir    Op = "rmdir"
	OpUnlink   Op = "unlink"
	OpLink     Op = "link"
	OpRename   Op = "rename"
	OpSymlink  Op = "symlink"
	OpReadlink Op = "readlink"
	OpStat     Op = "stat"
	OpReaddir  Op = "readdir"
	OpRead     Op = "read"
	OpWrite    Op = "write"
	OpSeek     Op = "seek"
	OpTruncate Op = "truncate"
	OpAllocate Op = "allocate"
	OpUtimes   Op = "utimes"
	OpResolve  Op = "resolve"
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindAlreadyExists    Kind = "already_exists"
	KindNotADirectory    Kind = "not_a_directory"
	KindIsADirectory     Kind = "is_a_directory"
	KindNotEmpty         Kind = "not_empty"
	KindPermissionDenied Kind = "permission_denied"
	KindNotCapable       Kind = "not_capable"   // foreign capability implementation
	KindNotSupported     Kind = "not_supported" // cross-instance operation
	KindBadDescriptor    Kind = "bad_descriptor"
	KindOverflow         Kind = "overflow"
	KindInvalid          Kind = "invalid"
	KindUnimplemented    Kind = "unimplemented"
)

// Error is the structured error type used throughout virtfs
type Error struct {
	Cause  error
	Op     Op
	Kind   Kind
	Path   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Op))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without an Op
// matches any operation of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks against a kind regardless of operation.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrAlreadyExists    = &Error{Kind: KindAlreadyExists}
	ErrNotADirectory    = &Error{Kind: KindNotADirectory}
	ErrIsADirectory     = &Error{Kind: KindIsADirectory}
	ErrNotEmpty         = &Error{Kind: KindNotEmpty}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrNotCapable       = &Error{Kind: KindNotCapable}
	ErrNotSupported     = &Error{Kind: KindNotSupported}
	ErrBadDescriptor    = &Error{Kind: KindBadDescriptor}
	ErrOverflow         = &Error{Kind: KindOverflow}
	ErrInvalid          = &Error{Kind: KindInvalid}
	ErrUnimplemented    = &Error{Kind: KindUnimplemented}
)

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(op Op, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Op:   op,
			Kind: kind,
		},
	}
}

// Path sets the path the operation was resolving
func (b *Builder) Path(path string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error
func NotFound(op Op, path string) *Error {
	return &Error{Op: op, Kind: KindNotFound, Path: path}
}

// Exist creates an already-exists error
func Exist(op Op, path string) *Error {
	return &Error{Op: op, Kind: KindAlreadyExists, Path: path}
}

// NotDir creates an error for a path that names a file where a directory is required
func NotDir(op Op, path string) *Error {
	return &Error{Op: op, Kind: KindNotADirectory, Path: path}
}

// IsDir creates an error for a path that names a directory where a file is required
func IsDir(op Op, path string) *Error {
	return &Error{Op: op, Kind: KindIsADirectory, Path: path}
}

// NotEmpty creates a directory-not-empty error
func NotEmpty(op Op, path string) *Error {
	return &Error{Op: op, Kind: KindNotEmpty, Path: path}
}

// PermissionDenied creates a permission error
func PermissionDenied(op Op, detail string) *Error {
	return &Error{Op: op, Kind: KindPermissionDenied, Detail: detail}
}

// NotCapable creates an error for a capability of the wrong implementation
func NotCapable(op Op, detail string) *Error {
	return &Error{Op: op, Kind: KindNotCapable, Detail: detail}
}

// NotSupported creates an error for operations spanning filesystem instances
func NotSupported(op Op, detail string) *Error {
	return &Error{Op: op, Kind: KindNotSupported, Detail: detail}
}

// BadDescriptor creates an error for access-mode or append-mode violations
func BadDescriptor(op Op, detail string) *Error {
	return &Error{Op: op, Kind: KindBadDescriptor, Detail: detail}
}

// Overflow creates an arithmetic overflow error
func Overflow(op Op, detail string) *Error {
	return &Error{Op: op, Kind: KindOverflow, Detail: detail}
}

// Invalid creates an invalid-argument error
func Invalid(op Op, detail string) *Error {
	return &Error{Op: op, Kind: KindInvalid, Detail: detail}
}

// Unimplemented creates an error for placeholder operations
func Unimplemented(op Op) *Error {
	return &Error{Op: op, Kind: KindUnimplemented, Detail: fmt.Sprintf("%s is not implemented", op)}
}

// Wrap wraps an existing error with additional context
func Wrap(op Op, kind Kind, cause error, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
