package memfs

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wippyai/virtfs/errors"
	"github.com/wippyai/virtfs/vfs"
)

// File is one open instance of a file node. The node is shared with every
// other handle and name; the cursor and flags belong to this handle only.
// A handle opened with neither read nor write access is read-only.
type File struct {
	inode *fileInode
	read  bool
	write bool

	state    guard // position, flags
	position uint64
	flags    vfs.FdFlags
}

var (
	_ vfs.File           = (*File)(nil)
	_ io.ReadWriteSeeker = (*File)(nil)
)

func newFile(node *fileInode, read, write bool, flags vfs.FdFlags) *File {
	f := &File{
		inode: node,
		read:  read || !write,
		write: write,
		flags: flags,
	}
	f.state = newGuard(fmt.Sprintf("handle of file %d", node.serial), nil)
	return f
}

// CanRead reports whether the handle was opened with read access.
func (f *File) CanRead() bool { return f.read }

// CanWrite reports whether the handle was opened with write access.
func (f *File) CanWrite() bool { return f.write }

func (f *File) isAppend() bool {
	release := f.state.shared()
	defer release()
	return f.flags.Contains(vfs.FdFlagAppend)
}

// MaxFileSize is the largest size a file may reach. Growth past it fails
// with Overflow.
const MaxFileSize = 1 << 32

// checkRange rejects byte ranges the buffer cannot address.
func checkRange(op errors.Op, offset, length uint64) (uint64, error) {
	if offset > math.MaxUint64-length {
		return 0, errors.Overflow(op, fmt.Sprintf("offset %d + length %d overflows", offset, length))
	}
	end := offset + length
	if end > MaxFileSize {
		return 0, errors.Overflow(op, fmt.Sprintf("end offset %d exceeds the maximum file size", end))
	}
	return end, nil
}

func totalLen(bufs [][]byte) uint64 {
	var n uint64
	for _, b := range bufs {
		n += uint64(len(b))
	}
	return n
}

func (f *File) GetFiletype() (vfs.FileType, error) {
	return vfs.FileTypeRegularFile, nil
}

func (f *File) GetFdflags() (vfs.FdFlags, error) {
	release := f.state.shared()
	defer release()
	return f.flags, nil
}

func (f *File) SetFdflags(flags vfs.FdFlags) error {
	release := f.state.exclusive()
	defer release()
	f.flags = flags
	return nil
}

func (f *File) GetFilestat() (vfs.Filestat, error) {
	return f.inode.filestat(), nil
}

// SetFilestatSize truncates or zero-extends the file to exactly size bytes.
func (f *File) SetFilestatSize(size uint64) error {
	if _, err := checkRange(errors.OpTruncate, size, 0); err != nil {
		return err
	}
	f.inode.resize(size)
	return nil
}

// Allocate grows the file to at least offset+length bytes. It never shrinks.
func (f *File) Allocate(offset, length uint64) error {
	end, err := checkRange(errors.OpAllocate, offset, length)
	if err != nil {
		return err
	}
	if f.inode.size() < end {
		f.inode.resize(end)
	}
	return nil
}

// SetTimes sets the access and modification times. nil leaves a time unchanged.
func (f *File) SetTimes(atime, mtime *vfs.SystemTimeSpec) error {
	node := f.inode
	resolveSpec := func(spec *vfs.SystemTimeSpec) (t time.Time) {
		if spec.Now {
			return node.fs.now()
		}
		return spec.Time
	}

	var at, mt time.Time
	if atime != nil {
		at = resolveSpec(atime)
	}
	if mtime != nil {
		mt = resolveSpec(mtime)
	}

	release := node.guard.exclusive()
	defer release()
	if atime != nil {
		node.atim = at
	}
	if mtime != nil {
		node.mtim = mt
	}
	return nil
}

func (f *File) Advise(_, _ uint64, _ vfs.Advice) error { return nil }

func (f *File) Sync() error { return nil }

func (f *File) Datasync() error { return nil }

func (f *File) ReadVectored(bufs [][]byte) (uint64, error) {
	if !f.read {
		return 0, errors.BadDescriptor(errors.OpRead, "file is not open for reading")
	}
	release := f.state.exclusive()
	defer release()
	n := f.inode.readAt(bufs, f.position)
	f.position += n
	return n, nil
}

func (f *File) ReadVectoredAt(bufs [][]byte, offset uint64) (uint64, error) {
	if !f.read {
		return 0, errors.BadDescriptor(errors.OpRead, "file is not open for reading")
	}
	return f.inode.readAt(bufs, offset), nil
}

// WriteVectored writes at the cursor. Append mode does not move the cursor to
// the end of the file first.
func (f *File) WriteVectored(bufs [][]byte) (uint64, error) {
	if !f.write {
		return 0, errors.BadDescriptor(errors.OpWrite, "file is not open for writing")
	}
	release := f.state.exclusive()
	defer release()
	if _, err := checkRange(errors.OpWrite, f.position, totalLen(bufs)); err != nil {
		return 0, err
	}
	n := f.inode.writeAt(bufs, f.position)
	f.position += n
	return n, nil
}

// WriteVectoredAt writes at offset and leaves the cursor at the end of the
// written range. It is rejected in append mode.
func (f *File) WriteVectoredAt(bufs [][]byte, offset uint64) (uint64, error) {
	if !f.write {
		return 0, errors.BadDescriptor(errors.OpWrite, "file is not open for writing")
	}
	if f.isAppend() {
		return 0, errors.BadDescriptor(errors.OpWrite, "positioned write on an append-mode handle")
	}
	if _, err := checkRange(errors.OpWrite, offset, totalLen(bufs)); err != nil {
		return 0, err
	}
	release := f.state.exclusive()
	defer release()
	n := f.inode.writeAt(bufs, offset)
	f.position = offset + n
	return n, nil
}

// Seek moves the cursor like io.Seeker. An append-mode handle only accepts
// Seek(0, io.SeekCurrent).
func (f *File) Seek(offset int64, whence int) (int64, error) {
	release := f.state.exclusive()
	defer release()

	if f.flags.Contains(vfs.FdFlagAppend) {
		if offset == 0 && whence == io.SeekCurrent {
			return int64(f.position), nil
		}
		return 0, errors.BadDescriptor(errors.OpSeek, "only the current position may be queried in append mode")
	}

	var base uint64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = f.position
	case io.SeekEnd:
		base = f.inode.size()
	default:
		return 0, errors.Invalid(errors.OpSeek, fmt.Sprintf("invalid whence %d", whence))
	}
	if base > math.MaxInt64 {
		return 0, errors.Overflow(errors.OpSeek, "current position exceeds the seekable range")
	}
	b := int64(base)
	if offset > 0 && b > math.MaxInt64-offset {
		return 0, errors.Overflow(errors.OpSeek, "resulting offset overflows")
	}
	pos := b + offset
	if pos < 0 {
		return 0, errors.Invalid(errors.OpSeek, fmt.Sprintf("resulting offset %d is negative", pos))
	}
	f.position = uint64(pos)
	return pos, nil
}

// Peek reads from the cursor without advancing it.
func (f *File) Peek(buf []byte) (uint64, error) {
	if !f.read {
		return 0, errors.BadDescriptor(errors.OpRead, "file is not open for reading")
	}
	release := f.state.shared()
	defer release()
	return f.inode.readAt([][]byte{buf}, f.position), nil
}

// NumReadyBytes reports the bytes between the cursor and the end of the file.
func (f *File) NumReadyBytes() (uint64, error) {
	if !f.read {
		return 0, errors.BadDescriptor(errors.OpRead, "file is not open for reading")
	}
	release := f.state.shared()
	defer release()
	size := f.inode.size()
	if f.position >= size {
		return 0, nil
	}
	return size - f.position, nil
}

// Read implements io.Reader on top of ReadVectored.
func (f *File) Read(p []byte) (int, error) {
	n, err := f.ReadVectored([][]byte{p})
	if err != nil {
		return int(n), err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// Write implements io.Writer on top of WriteVectored.
func (f *File) Write(p []byte) (int, error) {
	n, err := f.WriteVectored([][]byte{p})
	return int(n), err
}
