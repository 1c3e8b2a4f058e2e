package vfs

// File is an open-file capability: one open instance of a file with its own
// cursor, access mode and flags.
type File interface {
	GetFiletype() (FileType, error)
	GetFdflags() (FdFlags, error)
	SetFdflags(flags FdFlags) error
	GetFilestat() (Filestat, error)

	// SetFilestatSize truncates or zero-extends the file to exactly size bytes.
	SetFilestatSize(size uint64) error

	// Allocate grows the file to at least offset+length bytes.
	Allocate(offset, length uint64) error

	// SetTimes updates the access and/or modification time. A nil spec leaves
	// that timestamp unchanged.
	SetTimes(atime, mtime *SystemTimeSpec) error

	Advise(offset, length uint64, advice Advice) error
	Sync() error
	Datasync() error

	// ReadVectored fills bufs in order from the cursor and advances it.
	ReadVectored(bufs [][]byte) (uint64, error)
	// ReadVectoredAt fills bufs in order from offset. The cursor is unchanged.
	ReadVectoredAt(bufs [][]byte, offset uint64) (uint64, error)
	// WriteVectored writes bufs in order at the cursor and advances it.
	WriteVectored(bufs [][]byte) (uint64, error)
	// WriteVectoredAt writes bufs in order at offset.
	WriteVectoredAt(bufs [][]byte, offset uint64) (uint64, error)

	// Seek moves the cursor like io.Seeker and returns the new offset.
	Seek(offset int64, whence int) (int64, error)

	// Peek reads from the cursor without advancing it.
	Peek(buf []byte) (uint64, error)
	NumReadyBytes() (uint64, error)
}
