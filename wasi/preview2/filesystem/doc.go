// Package filesystem implements WASI filesystem interfaces over the in-memory
// filesystem engine.
//
// Implements:
//   - wasi:filesystem/types@0.2.3 - Descriptors, directory streams and metadata
//   - wasi:filesystem/preopens@0.2.3 - Pre-opened directories
//
// Descriptors wrap vfs.Dir and vfs.File capabilities. Paths are always
// resolved relative to a directory descriptor, so a guest can only reach
// nodes below the directories it was granted.
package filesystem
