// Package io implements WASI I/O interfaces for stream operations.
//
// Implements:
//   - wasi:io/streams@0.2.8 - Input and output streams
//   - wasi:io/poll@0.2.8 - Pollable resources
//   - wasi:io/error@0.2.8 - Stream errors
//
// Streams over in-memory files never block, so every subscribe returns a
// pollable that is already ready. A failed operation stores the cause as an
// error resource whose handle is reported in StreamError.LastOpFailedErr.
package io
