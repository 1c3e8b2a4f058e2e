package memfs

import (
	"fmt"
	"maps"
	"slices"
	"time"
	"weak"

	"github.com/wippyai/virtfs/vfs"
)

// inode is either a *dirInode or a *fileInode.
type inode interface {
	filestat() vfs.Filestat
}

type dirInode struct {
	guard    guard
	fs       *Filesystem
	parent   weak.Pointer[dirInode] // zero for the root
	children map[string]inode
	serial   uint64
	atim     time.Time
	mtim     time.Time
	ctim     time.Time
}

func newDirInode(fs *Filesystem, serial uint64, parent *dirInode) *dirInode {
	now := fs.now()
	d := &dirInode{
		fs:       fs,
		serial:   serial,
		children: make(map[string]inode),
		atim:     now,
		mtim:     now,
		ctim:     now,
	}
	if parent != nil {
		d.parent = weak.Make(parent)
	}
	d.guard = newGuard(fmt.Sprintf("directory %d", serial), d.checkInvariants)
	return d
}

func (d *dirInode) checkInvariants() {
	if _, ok := d.children["."]; ok {
		panic("memfs: directory contains \".\"")
	}
	if _, ok := d.children[".."]; ok {
		panic("memfs: directory contains \"..\"")
	}
}

// parentOrSelf returns the parent directory, or d itself for the root and for
// a directory whose parent is no longer reachable.
func (d *dirInode) parentOrSelf() *dirInode {
	if p := d.parent.Value(); p != nil {
		return p
	}
	return d
}

func (d *dirInode) child(name string) (inode, bool) {
	release := d.guard.shared()
	defer release()
	n, ok := d.children[name]
	return n, ok
}

// sortedNames returns a snapshot of the child names in ascending order.
func (d *dirInode) sortedNames() []string {
	release := d.guard.shared()
	defer release()
	return slices.Sorted(maps.Keys(d.children))
}

func (d *dirInode) filestat() vfs.Filestat {
	release := d.guard.shared()
	defer release()
	return vfs.Filestat{
		DeviceID: d.fs.deviceID,
		Inode:    d.serial,
		FileType: vfs.FileTypeDirectory,
		Size:     uint64(len(d.children)),
		Atim:     d.atim,
		Mtim:     d.mtim,
		Ctim:     d.ctim,
	}
}

type fileInode struct {
	guard  guard
	fs     *Filesystem
	data   []byte
	nlink  uint64
	serial uint64
	atim   time.Time
	mtim   time.Time
	ctim   time.Time
}

func newFileInode(fs *Filesystem) *fileInode {
	now := fs.now()
	f := &fileInode{
		fs:     fs,
		serial: fs.allocateSerial(),
		nlink:  1,
		atim:   now,
		mtim:   now,
		ctim:   now,
	}
	f.guard = newGuard(fmt.Sprintf("file %d", f.serial), nil)
	return f
}

func (f *fileInode) filestat() vfs.Filestat {
	release := f.guard.shared()
	defer release()
	return vfs.Filestat{
		DeviceID: f.fs.deviceID,
		Inode:    f.serial,
		FileType: vfs.FileTypeRegularFile,
		Nlink:    f.nlink,
		Size:     uint64(len(f.data)),
		Atim:     f.atim,
		Mtim:     f.mtim,
		Ctim:     f.ctim,
	}
}

func (f *fileInode) touch() {
	now := f.fs.now()
	release := f.guard.exclusive()
	defer release()
	f.atim = now
}

// resize sets the content length to exactly size, zero-filling growth.
func (f *fileInode) resize(size uint64) {
	release := f.guard.exclusive()
	defer release()
	f.resizeLocked(size)
}

func (f *fileInode) resizeLocked(size uint64) {
	n := uint64(len(f.data))
	switch {
	case size < n:
		clear(f.data[size:])
		f.data = f.data[:size]
	case size > n:
		f.data = append(f.data, make([]byte, size-n)...)
	}
}

func (f *fileInode) readAt(bufs [][]byte, offset uint64) uint64 {
	release := f.guard.shared()
	defer release()
	var total uint64
	for _, buf := range bufs {
		if offset >= uint64(len(f.data)) {
			break
		}
		n := copy(buf, f.data[offset:])
		offset += uint64(n)
		total += uint64(n)
	}
	return total
}

// writeAt writes bufs in order at offset and returns the bytes written.
func (f *fileInode) writeAt(bufs [][]byte, offset uint64) uint64 {
	release := f.guard.exclusive()
	defer release()
	var total uint64
	for _, buf := range bufs {
		end := offset + uint64(len(buf))
		if end > uint64(len(f.data)) {
			f.resizeLocked(end)
		}
		copy(f.data[offset:end], buf)
		offset = end
		total += uint64(len(buf))
	}
	return total
}

func (f *fileInode) size() uint64 {
	release := f.guard.shared()
	defer release()
	return uint64(len(f.data))
}
