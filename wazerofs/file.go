package wazerofs

import (
	"io"
	"io/fs"
	"time"

	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"
	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/virtfs/vfs"
)

func nanosSpec(ns int64) *vfs.SystemTimeSpec {
	if ns == experimentalsys.UTIME_OMIT {
		return nil
	}
	return vfs.Absolute(time.Unix(0, ns))
}

// regularFile adapts an open vfs.File. O_APPEND is tracked here rather than on
// the engine handle, whose append mode rejects positioned writes.
type regularFile struct {
	experimentalsys.UnimplementedFile
	file   vfs.File
	append bool
}

var _ experimentalsys.File = (*regularFile)(nil)

func (f *regularFile) Dev() (uint64, experimentalsys.Errno) {
	st, err := f.file.GetFilestat()
	if err != nil {
		return 0, toErrno(err)
	}
	return st.DeviceID, 0
}

func (f *regularFile) Ino() (sys.Inode, experimentalsys.Errno) {
	st, err := f.file.GetFilestat()
	if err != nil {
		return 0, toErrno(err)
	}
	return st.Inode, 0
}

func (f *regularFile) IsDir() (bool, experimentalsys.Errno) { return false, 0 }

func (f *regularFile) IsAppend() bool { return f.append }

func (f *regularFile) SetAppend(enable bool) experimentalsys.Errno {
	f.append = enable
	return 0
}

func (f *regularFile) Stat() (sys.Stat_t, experimentalsys.Errno) {
	st, err := f.file.GetFilestat()
	if err != nil {
		return sys.Stat_t{}, toErrno(err)
	}
	return toStat(st), 0
}

func (f *regularFile) Read(buf []byte) (int, experimentalsys.Errno) {
	n, err := f.file.ReadVectored([][]byte{buf})
	return int(n), toErrno(err)
}

func (f *regularFile) Pread(buf []byte, off int64) (int, experimentalsys.Errno) {
	if off < 0 {
		return 0, experimentalsys.EINVAL
	}
	n, err := f.file.ReadVectoredAt([][]byte{buf}, uint64(off))
	return int(n), toErrno(err)
}

func (f *regularFile) Seek(offset int64, whence int) (int64, experimentalsys.Errno) {
	pos, err := f.file.Seek(offset, whence)
	return pos, toErrno(err)
}

func (f *regularFile) Readdir(int) ([]experimentalsys.Dirent, experimentalsys.Errno) {
	return nil, experimentalsys.ENOTDIR
}

// Write appends at the current end of the file in append mode and at the
// cursor otherwise.
func (f *regularFile) Write(buf []byte) (int, experimentalsys.Errno) {
	if f.append {
		st, err := f.file.GetFilestat()
		if err != nil {
			return 0, toErrno(err)
		}
		n, err := f.file.WriteVectoredAt([][]byte{buf}, st.Size)
		return int(n), toErrno(err)
	}
	n, err := f.file.WriteVectored([][]byte{buf})
	return int(n), toErrno(err)
}

func (f *regularFile) Pwrite(buf []byte, off int64) (int, experimentalsys.Errno) {
	if off < 0 {
		return 0, experimentalsys.EINVAL
	}
	n, err := f.file.WriteVectoredAt([][]byte{buf}, uint64(off))
	return int(n), toErrno(err)
}

func (f *regularFile) Truncate(size int64) experimentalsys.Errno {
	if size < 0 {
		return experimentalsys.EINVAL
	}
	return toErrno(f.file.SetFilestatSize(uint64(size)))
}

func (f *regularFile) Sync() experimentalsys.Errno     { return toErrno(f.file.Sync()) }
func (f *regularFile) Datasync() experimentalsys.Errno { return toErrno(f.file.Datasync()) }

func (f *regularFile) Utimens(atim, mtim int64) experimentalsys.Errno {
	return toErrno(f.file.SetTimes(nanosSpec(atim), nanosSpec(mtim)))
}

func (f *regularFile) Close() experimentalsys.Errno { return 0 }

// dirFile adapts a vfs.Dir. Listings start past "." and "..", which wazero
// adds on its own.
type dirFile struct {
	experimentalsys.UnimplementedFile
	dir  vfs.Dir
	iter vfs.ReaddirIterator
}

var _ experimentalsys.File = (*dirFile)(nil)

const firstChild vfs.Cursor = 2

func (d *dirFile) Dev() (uint64, experimentalsys.Errno) {
	st, err := d.dir.GetFilestat()
	if err != nil {
		return 0, toErrno(err)
	}
	return st.DeviceID, 0
}

func (d *dirFile) Ino() (sys.Inode, experimentalsys.Errno) {
	st, err := d.dir.GetFilestat()
	if err != nil {
		return 0, toErrno(err)
	}
	return st.Inode, 0
}

func (d *dirFile) IsDir() (bool, experimentalsys.Errno) { return true, 0 }

func (d *dirFile) Stat() (sys.Stat_t, experimentalsys.Errno) {
	st, err := d.dir.GetFilestat()
	if err != nil {
		return sys.Stat_t{}, toErrno(err)
	}
	return toStat(st), 0
}

// Readdir returns up to n entries, or all remaining ones when n <= 0. An
// empty result marks the end of the listing.
func (d *dirFile) Readdir(n int) ([]experimentalsys.Dirent, experimentalsys.Errno) {
	if d.iter == nil {
		iter, err := d.dir.Readdir(firstChild)
		if err != nil {
			return nil, toErrno(err)
		}
		d.iter = iter
	}
	var out []experimentalsys.Dirent
	for n <= 0 || len(out) < n {
		ent, ok, err := d.iter.Next()
		if err != nil {
			return out, toErrno(err)
		}
		if !ok {
			break
		}
		var typ fs.FileMode
		if ent.FileType == vfs.FileTypeDirectory {
			typ = fs.ModeDir
		}
		out = append(out, experimentalsys.Dirent{Ino: ent.Inode, Name: ent.Name, Type: typ})
	}
	return out, 0
}

// Seek only supports rewinding the listing.
func (d *dirFile) Seek(offset int64, whence int) (int64, experimentalsys.Errno) {
	if offset != 0 || whence != io.SeekStart {
		return 0, experimentalsys.EINVAL
	}
	d.iter = nil
	return 0, 0
}

func (d *dirFile) Read([]byte) (int, experimentalsys.Errno)         { return 0, experimentalsys.EISDIR }
func (d *dirFile) Pread([]byte, int64) (int, experimentalsys.Errno) { return 0, experimentalsys.EISDIR }
func (d *dirFile) Write([]byte) (int, experimentalsys.Errno)        { return 0, experimentalsys.EISDIR }
func (d *dirFile) Pwrite([]byte, int64) (int, experimentalsys.Errno) {
	return 0, experimentalsys.EISDIR
}
func (d *dirFile) Truncate(int64) experimentalsys.Errno { return experimentalsys.EISDIR }
func (d *dirFile) Sync() experimentalsys.Errno          { return 0 }
func (d *dirFile) Datasync() experimentalsys.Errno      { return 0 }
func (d *dirFile) Close() experimentalsys.Errno         { return 0 }

func (d *dirFile) Utimens(atim, mtim int64) experimentalsys.Errno {
	return toErrno(d.dir.SetTimes(".", nanosSpec(atim), nanosSpec(mtim), false))
}
