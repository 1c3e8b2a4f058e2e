package vfs

import "time"

// FileType identifies the kind of node a descriptor or entry refers to.
type FileType uint8

const (
	FileTypeUnknown FileType = iota
	FileTypeBlockDevice
	FileTypeCharacterDevice
	FileTypeDirectory
	FileTypeRegularFile
	FileTypeSocketDgram
	FileTypeSocketStream
	FileTypeSymbolicLink
	FileTypePipe
)

func (t FileType) String() string {
	switch t {
	case FileTypeBlockDevice:
		return "block-device"
	case FileTypeCharacterDevice:
		return "character-device"
	case FileTypeDirectory:
		return "directory"
	case FileTypeRegularFile:
		return "regular-file"
	case FileTypeSocketDgram:
		return "socket-dgram"
	case FileTypeSocketStream:
		return "socket-stream"
	case FileTypeSymbolicLink:
		return "symbolic-link"
	case FileTypePipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// Filestat is the metadata record reported for a node.
// A zero timestamp means the implementation does not track it.
type Filestat struct {
	Atim     time.Time
	Mtim     time.Time
	Ctim     time.Time
	DeviceID uint64
	Inode    uint64
	Nlink    uint64
	Size     uint64
	FileType FileType
}

// FdFlags are per-handle flags of an open file.
type FdFlags uint16

const (
	FdFlagAppend FdFlags = 1 << iota
	FdFlagDsync
	FdFlagNonblock
	FdFlagRsync
	FdFlagSync
)

// Contains reports whether all bits of other are set.
func (f FdFlags) Contains(other FdFlags) bool {
	return f&other == other
}

// OFlags select the open policy of Dir.OpenFile.
type OFlags uint16

const (
	OFlagCreate OFlags = 1 << iota
	OFlagDirectory
	OFlagExclusive
	OFlagTruncate
)

// Contains reports whether all bits of other are set.
func (f OFlags) Contains(other OFlags) bool {
	return f&other == other
}

// Advice is an access-pattern hint for a byte range of a file.
type Advice uint8

const (
	AdviceNormal Advice = iota
	AdviceSequential
	AdviceRandom
	AdviceWillNeed
	AdviceDontNeed
	AdviceNoReuse
)

// SystemTimeSpec is the new value of a timestamp: either the clock's current
// time or an absolute time supplied by the caller.
type SystemTimeSpec struct {
	Time time.Time
	Now  bool
}

// Now returns a spec resolved against the clock when applied.
func Now() *SystemTimeSpec {
	return &SystemTimeSpec{Now: true}
}

// Absolute returns a spec for the fixed time t.
func Absolute(t time.Time) *SystemTimeSpec {
	return &SystemTimeSpec{Time: t}
}

// Cursor is an opaque, monotonically increasing position in a directory listing.
type Cursor uint64

// CursorStart is the position of the first entry of any listing.
const CursorStart Cursor = 0

// ReaddirEntity is one entry of a directory listing.
type ReaddirEntity struct {
	Name     string
	Next     Cursor // position of the entry after this one
	Inode    uint64
	FileType FileType
}
