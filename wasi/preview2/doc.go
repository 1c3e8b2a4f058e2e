// Package preview2 holds the host context and resources for the WASI Preview2
// filesystem, io and clocks interfaces, backed by the in-memory filesystem.
//
// # Quick Start
//
//	wasi := preview2.New().
//	    WithStdin([]byte("input data"))
//
//	root := wasi.Filesystem().Root()
//	_ = root.CreateDir("tmp")
//
// New creates a fresh memfs.Filesystem on the real clock and preopens its root
// at "/". WithFilesystem swaps in a prepared tree and WithPreopen grants more
// directories.
//
// # Resource Management
//
// Handles the guest holds are entries of a ResourceTable:
//
//   - DescriptorResource: an open directory or file plus the granted flags
//   - DirectoryEntryStreamResource: a listing, with "." and ".." skipped
//   - FileInputStreamResource / FileOutputStreamResource: byte streams over a file
//   - PollableResource / TimerPollable: readiness for wasi:io/poll
//
// Streams and listings are added with AddChild so their descriptor cannot be
// dropped while they are alive.
//
// # Implemented Interfaces
//
// Sub-packages provide the host functions:
//
//   - filesystem: wasi:filesystem/types and wasi:filesystem/preopens
//   - io: streams, poll and error
//   - clocks: wall and monotonic clocks
//
// # Thread Safety
//
// A single WASI context should be used with one component instance at a time.
// The filesystem panics on overlapping access to the same node.
package preview2
