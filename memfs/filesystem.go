package memfs

import (
	"sync/atomic"
	"time"

	"github.com/wippyai/virtfs/vfs"
)

// Filesystem is one in-memory tree. The device id and clock never change after New.
type Filesystem struct {
	root     *dirInode
	clock    vfs.Clock
	deviceID uint64
	serial   atomic.Uint64
}

// New creates a filesystem whose root directory has serial 0.
func New(clock vfs.Clock, deviceID uint64) *Filesystem {
	fs := &Filesystem{clock: clock, deviceID: deviceID}
	fs.root = newDirInode(fs, 0, nil)
	return fs
}

// Root returns a capability for the root directory. Every call refers to the same node.
func (fs *Filesystem) Root() *Dir {
	return &Dir{inode: fs.root}
}

// DeviceID returns the device id reported in every Filestat.
func (fs *Filesystem) DeviceID() uint64 {
	return fs.deviceID
}

func (fs *Filesystem) allocateSerial() uint64 {
	return fs.serial.Add(1)
}

func (fs *Filesystem) now() time.Time {
	return fs.clock.Now(0)
}
