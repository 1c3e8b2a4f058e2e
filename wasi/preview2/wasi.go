package preview2

import (
	"io"

	"github.com/jacobsa/timeutil"

	"github.com/wippyai/virtfs/memfs"
	"github.com/wippyai/virtfs/vfs"
)

// Preopen is a directory capability granted to the guest under a path.
type Preopen struct {
	Dir       vfs.Dir
	GuestPath string
}

// WASI configures a WASI preview2 environment. Use builder methods to set up.
type WASI struct {
	resources *ResourceTable
	fs        *memfs.Filesystem
	clock     vfs.Clock
	stdin     *InputStreamResource
	stdout    *OutputStreamResource
	stderr    *OutputStreamResource
	preopens  []Preopen
}

// New creates a WASI context over a fresh in-memory filesystem whose root is
// preopened at "/".
func New() *WASI {
	clock := vfs.NewSystemClock(timeutil.RealClock())
	fs := memfs.New(clock, 0)
	return &WASI{
		resources: NewResourceTable(),
		fs:        fs,
		clock:     clock,
		stdin:     NewInputStreamResource(nil),
		stdout:    NewOutputStreamResource(nil),
		stderr:    NewOutputStreamResource(nil),
		preopens:  []Preopen{{Dir: fs.Root(), GuestPath: "/"}},
	}
}

// WithFilesystem replaces the filesystem and preopens its root at "/".
func (w *WASI) WithFilesystem(fs *memfs.Filesystem) *WASI {
	return w.WithFilesystemAt(fs, "/")
}

// WithFilesystemAt replaces the filesystem and preopens its root at guestPath.
// Earlier preopens are discarded.
func (w *WASI) WithFilesystemAt(fs *memfs.Filesystem, guestPath string) *WASI {
	w.fs = fs
	w.preopens = []Preopen{{Dir: fs.Root(), GuestPath: guestPath}}
	return w
}

// WithPreopen grants an additional directory under guestPath.
func (w *WASI) WithPreopen(guestPath string, dir vfs.Dir) *WASI {
	w.preopens = append(w.preopens, Preopen{Dir: dir, GuestPath: guestPath})
	return w
}

// WithClock sets the clock used by timers and the wall clock.
func (w *WASI) WithClock(clock vfs.Clock) *WASI {
	w.clock = clock
	return w
}

// WithStdin sets stdin data
func (w *WASI) WithStdin(data []byte) *WASI {
	w.stdin = NewInputStreamResource(data)
	return w
}

// WithStdout forwards stdout to dst instead of capturing it.
func (w *WASI) WithStdout(dst io.Writer) *WASI {
	w.stdout = NewOutputStreamResource(dst)
	return w
}

// WithStderr forwards stderr to dst instead of capturing it.
func (w *WASI) WithStderr(dst io.Writer) *WASI {
	w.stderr = NewOutputStreamResource(dst)
	return w
}

// Filesystem returns the in-memory filesystem.
func (w *WASI) Filesystem() *memfs.Filesystem {
	return w.fs
}

// Preopens returns the preopened directories in grant order.
func (w *WASI) Preopens() []Preopen {
	return w.preopens
}

// Clock returns the clock shared by the host implementations.
func (w *WASI) Clock() vfs.Clock {
	return w.clock
}

// Resources returns the resource table
func (w *WASI) Resources() *ResourceTable {
	return w.resources
}

// Stdout returns captured stdout contents
func (w *WASI) Stdout() []byte {
	return w.stdout.Bytes()
}

// Stderr returns captured stderr contents
func (w *WASI) Stderr() []byte {
	return w.stderr.Bytes()
}

// Stdin returns stdin resource
func (w *WASI) Stdin() *InputStreamResource {
	return w.stdin
}

// StdoutResource returns stdout resource
func (w *WASI) StdoutResource() *OutputStreamResource {
	return w.stdout
}

// StderrResource returns stderr resource
func (w *WASI) StderrResource() *OutputStreamResource {
	return w.stderr
}

// Close cleans up all resources
func (w *WASI) Close() {
	w.resources.Clear()
}
