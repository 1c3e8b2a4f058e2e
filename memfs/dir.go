package memfs

import (
	"strings"

	"github.com/wippyai/virtfs/errors"
	"github.com/wippyai/virtfs/vfs"
)

// Dir is the directory capability over one directory node.
type Dir struct {
	inode *dirInode
}

var _ vfs.Dir = (*Dir)(nil)

// Filesystem returns the tree the directory belongs to.
func (d *Dir) Filesystem() *Filesystem {
	return d.inode.fs
}

// resolve walks path from dir and calls fn with the directory holding the
// final component and that component's name. A path ending in "/" is only
// accepted when acceptTrailingSlash is set; fn then receives the last
// non-empty component.
func resolve(op errors.Op, dir *dirInode, path string, acceptTrailingSlash bool, fn func(dir *dirInode, name string) error) error {
	rest := path
	for {
		head, tail, found := strings.Cut(rest, "/")
		if !found {
			return fn(dir, rest)
		}
		if tail == "" {
			if !acceptTrailingSlash {
				return errors.New(op, errors.KindNotFound).Path(path).Detail("empty final component").Build()
			}
			return fn(dir, head)
		}
		n, ok := dir.child(head)
		if !ok {
			return errors.NotFound(op, path)
		}
		next, ok := n.(*dirInode)
		if !ok {
			return errors.NotDir(op, path)
		}
		dir, rest = next, tail
	}
}

func reservedName(name string) bool {
	return name == "" || name == "." || name == ".."
}

// OpenFile implements vfs.Dir. Symbolic links do not exist, so symlinkFollow is ignored.
func (d *Dir) OpenFile(_ bool, path string, oflags vfs.OFlags, read, write bool, fdflags vfs.FdFlags) (vfs.File, error) {
	var file *File
	err := resolve(errors.OpOpen, d.inode, path, false, func(dir *dirInode, name string) error {
		switch {
		case name == "":
			return errors.NotFound(errors.OpOpen, path)
		case reservedName(name) && oflags.Contains(vfs.OFlagCreate|vfs.OFlagExclusive):
			return errors.Exist(errors.OpOpen, path)
		case reservedName(name):
			return errors.IsDir(errors.OpOpen, path)
		}

		existing, ok := dir.child(name)

		switch {
		case oflags.Contains(vfs.OFlagCreate | vfs.OFlagExclusive):
			if ok {
				return errors.Exist(errors.OpOpen, path)
			}
		case oflags.Contains(vfs.OFlagCreate):
			if ok {
				return openExisting(existing, path, read, write, fdflags, &file)
			}
		default:
			if !ok {
				return errors.NotFound(errors.OpOpen, path)
			}
			return openExisting(existing, path, read, write, fdflags, &file)
		}

		node := newFileInode(dir.fs)
		dir.insert(name, node)
		file = newFile(node, read, write, fdflags)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func openExisting(n inode, path string, read, write bool, fdflags vfs.FdFlags, out **File) error {
	node, ok := n.(*fileInode)
	if !ok {
		return errors.IsDir(errors.OpOpen, path)
	}
	node.touch()
	*out = newFile(node, read, write, fdflags)
	return nil
}

func (d *dirInode) insert(name string, n inode) {
	release := d.guard.exclusive()
	defer release()
	d.children[name] = n
}

// OpenDir implements vfs.Dir. A trailing slash is accepted and "." as the
// final component names the directory itself.
func (d *Dir) OpenDir(_ bool, path string) (vfs.Dir, error) {
	var out *Dir
	err := resolve(errors.OpOpenDir, d.inode, path, true, func(dir *dirInode, name string) error {
		if name == "." {
			out = &Dir{inode: dir}
			return nil
		}
		n, ok := dir.child(name)
		if !ok {
			return errors.NotFound(errors.OpOpenDir, path)
		}
		sub, ok := n.(*dirInode)
		if !ok {
			return errors.NotDir(errors.OpOpenDir, path)
		}
		out = &Dir{inode: sub}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDir implements vfs.Dir.
func (d *Dir) CreateDir(path string) error {
	return resolve(errors.OpMkdir, d.inode, path, true, func(dir *dirInode, name string) error {
		if name == "" {
			return errors.NotFound(errors.OpMkdir, path)
		}
		if reservedName(name) {
			return errors.Exist(errors.OpMkdir, path)
		}
		release := dir.guard.exclusive()
		defer release()
		if _, ok := dir.children[name]; ok {
			return errors.Exist(errors.OpMkdir, path)
		}
		dir.children[name] = newDirInode(dir.fs, dir.fs.allocateSerial(), dir)
		return nil
	})
}

// RemoveDir implements vfs.Dir.
func (d *Dir) RemoveDir(path string) error {
	return resolve(errors.OpRmdir, d.inode, path, true, func(dir *dirInode, name string) error {
		n, ok := dir.child(name)
		if !ok {
			return errors.NotFound(errors.OpRmdir, path)
		}
		sub, ok := n.(*dirInode)
		if !ok {
			return errors.NotDir(errors.OpRmdir, path)
		}
		if sub.filestat().Size > 0 {
			return errors.NotEmpty(errors.OpRmdir, path)
		}
		release := dir.guard.exclusive()
		defer release()
		delete(dir.children, name)
		return nil
	})
}

// UnlinkFile implements vfs.Dir. Open handles on the file keep its content.
func (d *Dir) UnlinkFile(path string) error {
	return resolve(errors.OpUnlink, d.inode, path, false, func(dir *dirInode, name string) error {
		n, ok := dir.child(name)
		if !ok {
			return errors.NotFound(errors.OpUnlink, path)
		}
		node, ok := n.(*fileInode)
		if !ok {
			return errors.IsDir(errors.OpUnlink, path)
		}
		release := dir.guard.exclusive()
		defer release()
		node.unlink()
		delete(dir.children, name)
		return nil
	})
}

func (f *fileInode) unlink() {
	release := f.guard.exclusive()
	defer release()
	if f.nlink > 0 {
		f.nlink--
	}
}

// HardLink implements vfs.Dir. targetDir must be a *Dir of the same Filesystem.
func (d *Dir) HardLink(srcPath string, targetDir vfs.Dir, targetPath string) error {
	var src *fileInode
	err := resolve(errors.OpLink, d.inode, srcPath, false, func(dir *dirInode, name string) error {
		n, ok := dir.child(name)
		if !ok {
			return errors.NotFound(errors.OpLink, srcPath)
		}
		node, ok := n.(*fileInode)
		if !ok {
			return errors.PermissionDenied(errors.OpLink, "directories cannot be hard-linked")
		}
		src = node
		return nil
	})
	if err != nil {
		return err
	}

	target, ok := targetDir.(*Dir)
	if !ok {
		return errors.NotCapable(errors.OpLink, "target directory belongs to another implementation")
	}
	if target.inode.fs != d.inode.fs {
		return errors.NotSupported(errors.OpLink, "target directory belongs to another filesystem")
	}

	return resolve(errors.OpLink, target.inode, targetPath, false, func(dir *dirInode, name string) error {
		if reservedName(name) {
			return errors.Exist(errors.OpLink, targetPath)
		}
		release := dir.guard.exclusive()
		defer release()
		if _, ok := dir.children[name]; ok {
			return errors.Exist(errors.OpLink, targetPath)
		}
		src.link()
		dir.children[name] = src
		return nil
	})
}

func (f *fileInode) link() {
	release := f.guard.exclusive()
	defer release()
	f.nlink++
}

// Readdir implements vfs.Dir.
func (d *Dir) Readdir(cursor vfs.Cursor) (vfs.ReaddirIterator, error) {
	return newReaddir(d.inode, cursor), nil
}

// GetFilestat implements vfs.Dir.
func (d *Dir) GetFilestat() (vfs.Filestat, error) {
	return d.inode.filestat(), nil
}

// GetPathFilestat implements vfs.Dir. "." as the final component reports the
// containing directory.
func (d *Dir) GetPathFilestat(path string, _ bool) (vfs.Filestat, error) {
	var stat vfs.Filestat
	err := resolve(errors.OpStat, d.inode, path, false, func(dir *dirInode, name string) error {
		if name == "." {
			stat = dir.filestat()
			return nil
		}
		n, ok := dir.child(name)
		if !ok {
			return errors.NotFound(errors.OpStat, path)
		}
		stat = n.filestat()
		return nil
	})
	return stat, err
}

func (d *Dir) Symlink(_, _ string) error {
	return errors.Unimplemented(errors.OpSymlink)
}

func (d *Dir) ReadLink(_ string) (string, error) {
	return "", errors.Unimplemented(errors.OpReadlink)
}

func (d *Dir) Rename(_ string, _ vfs.Dir, _ string) error {
	return errors.Unimplemented(errors.OpRename)
}

func (d *Dir) SetTimes(_ string, _, _ *vfs.SystemTimeSpec, _ bool) error {
	return errors.Unimplemented(errors.OpUtimes)
}
