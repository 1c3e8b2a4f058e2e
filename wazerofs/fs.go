package wazerofs

import (
	"io/fs"
	"path"
	"strings"

	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/virtfs/vfs"
)

// FS exposes a directory capability as a wazero filesystem.
type FS struct {
	experimentalsys.UnimplementedFS
	root vfs.Dir
}

// New returns a filesystem rooted at root.
func New(root vfs.Dir) *FS {
	return &FS{root: root}
}

// Root returns the directory the filesystem is rooted at.
func (f *FS) Root() vfs.Dir {
	return f.root
}

// String implements fmt.Stringer. wazero uses it in debug output.
func (f *FS) String() string {
	return "virtfs"
}

// normalize strips the mount-relative leading slash and cleans the path.
// The root itself is ".".
func normalize(p string) string {
	return path.Clean(strings.TrimLeft(p, "/"))
}

const (
	dirMode  fs.FileMode = fs.ModeDir | 0o755
	fileMode fs.FileMode = 0o644
)

func toStat(st vfs.Filestat) sys.Stat_t {
	mode := fileMode
	if st.FileType == vfs.FileTypeDirectory {
		mode = dirMode
	}
	return sys.Stat_t{
		Dev:   st.DeviceID,
		Ino:   st.Inode,
		Mode:  mode,
		Nlink: st.Nlink,
		Size:  int64(st.Size),
		Atim:  st.Atim.UnixNano(),
		Mtim:  st.Mtim.UnixNano(),
		Ctim:  st.Ctim.UnixNano(),
	}
}

// OpenFile implements experimental/sys.FS. perm is ignored: nodes carry no
// permission bits.
func (f *FS) OpenFile(name string, flag experimentalsys.Oflag, _ fs.FileMode) (experimentalsys.File, experimentalsys.Errno) {
	p := normalize(name)
	read, write := accessMode(flag)

	st, err := f.root.GetPathFilestat(p, false)
	if err == nil && st.FileType == vfs.FileTypeDirectory {
		switch {
		case flag&(experimentalsys.O_CREAT|experimentalsys.O_EXCL) == experimentalsys.O_CREAT|experimentalsys.O_EXCL:
			return nil, experimentalsys.EEXIST
		case write:
			return nil, experimentalsys.EISDIR
		}
		dir, err := f.root.OpenDir(false, p)
		if err != nil {
			return nil, toErrno(err)
		}
		Logger().Debug("open directory", zap.String("path", p))
		return &dirFile{dir: dir}, 0
	}
	if flag&experimentalsys.O_DIRECTORY != 0 {
		if err != nil {
			return nil, toErrno(err)
		}
		return nil, experimentalsys.ENOTDIR
	}

	var oflags vfs.OFlags
	if flag&experimentalsys.O_CREAT != 0 {
		oflags |= vfs.OFlagCreate
	}
	if flag&experimentalsys.O_EXCL != 0 {
		oflags |= vfs.OFlagExclusive
	}
	var fdflags vfs.FdFlags
	if flag&experimentalsys.O_SYNC != 0 {
		fdflags |= vfs.FdFlagSync
	}
	if flag&experimentalsys.O_DSYNC != 0 {
		fdflags |= vfs.FdFlagDsync
	}

	if flag&experimentalsys.O_TRUNC != 0 && !write {
		return nil, experimentalsys.EINVAL
	}

	file, err := f.root.OpenFile(false, p, oflags, read, write, fdflags)
	if err != nil {
		Logger().Debug("open failed", zap.String("path", p), zap.Error(err))
		return nil, toErrno(err)
	}
	if flag&experimentalsys.O_TRUNC != 0 {
		if err := file.SetFilestatSize(0); err != nil {
			return nil, toErrno(err)
		}
	}
	Logger().Debug("open file", zap.String("path", p), zap.Bool("read", read), zap.Bool("write", write))
	return &regularFile{file: file, append: flag&experimentalsys.O_APPEND != 0}, 0
}

func accessMode(flag experimentalsys.Oflag) (read, write bool) {
	switch {
	case flag&experimentalsys.O_RDWR != 0:
		return true, true
	case flag&experimentalsys.O_WRONLY != 0:
		return false, true
	default:
		return true, false
	}
}

// Stat implements experimental/sys.FS.
func (f *FS) Stat(name string) (sys.Stat_t, experimentalsys.Errno) {
	st, err := f.root.GetPathFilestat(normalize(name), true)
	if err != nil {
		return sys.Stat_t{}, toErrno(err)
	}
	return toStat(st), 0
}

// Lstat implements experimental/sys.FS. Without symbolic links it matches Stat.
func (f *FS) Lstat(name string) (sys.Stat_t, experimentalsys.Errno) {
	st, err := f.root.GetPathFilestat(normalize(name), false)
	if err != nil {
		return sys.Stat_t{}, toErrno(err)
	}
	return toStat(st), 0
}

// Mkdir implements experimental/sys.FS.
func (f *FS) Mkdir(name string, _ fs.FileMode) experimentalsys.Errno {
	return toErrno(f.root.CreateDir(normalize(name)))
}

// Rmdir implements experimental/sys.FS.
func (f *FS) Rmdir(name string) experimentalsys.Errno {
	return toErrno(f.root.RemoveDir(normalize(name)))
}

// Unlink implements experimental/sys.FS.
func (f *FS) Unlink(name string) experimentalsys.Errno {
	return toErrno(f.root.UnlinkFile(normalize(name)))
}

// Link implements experimental/sys.FS.
func (f *FS) Link(oldName, newName string) experimentalsys.Errno {
	return toErrno(f.root.HardLink(normalize(oldName), f.root, normalize(newName)))
}

// Utimens implements experimental/sys.FS. Path-based timestamp updates are
// delegated to the directory, which does not support them.
func (f *FS) Utimens(name string, atim, mtim int64) experimentalsys.Errno {
	return toErrno(f.root.SetTimes(normalize(name), nanosSpec(atim), nanosSpec(mtim), true))
}
