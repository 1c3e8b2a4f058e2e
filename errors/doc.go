// Package errors provides structured error types for the virtfs engine and its hosts.
//
// Errors are categorized by Op (the filesystem operation that failed) and Kind (the logical
// failure). Hosts map a Kind onto their own error space: WASI preview2 error codes, wazero
// errnos, or POSIX values.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.OpLink, errors.KindNotSupported).
//		Path("a/b.txt").
//		Detail("link source and destination must be in same filesystem").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.OpOpen, "docs/readme.md")
//	err := errors.Overflow(errors.OpAllocate, "offset + len overflows u64")
//
// All errors implement the standard error interface and support errors.Is/As.
// KindOf recovers the Kind of an error through any wrapping.
package errors
