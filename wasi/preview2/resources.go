package preview2

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/wippyai/virtfs/resource"
	"github.com/wippyai/virtfs/vfs"
)

// MaxAllocationSize is the maximum size for single allocations (1 GB) to prevent DoS
const MaxAllocationSize = 1 << 30

// DefaultBufferSize is the default buffer size for streams (64 KB)
const DefaultBufferSize = 65536

// ResourceTable manages WASI preview2 resource handles over a resource.Table.
type ResourceTable struct {
	table *resource.Table
}

// Resource is a WASI preview2 resource that can be managed by ResourceTable.
type Resource interface {
	// Type returns the resource type identifier.
	Type() ResourceType
	// Drop releases any underlying resources.
	Drop()
}

// ResourceType identifies the type of a WASI resource for type-safe handle management.
type ResourceType uint8

const (
	ResourcePollable ResourceType = iota
	ResourceInputStream
	ResourceOutputStream
	ResourceError
	ResourceDescriptor
	ResourceDirectoryEntryStream
)

func (t ResourceType) kind() resource.Kind {
	switch t {
	case ResourcePollable:
		return resource.KindPollable
	case ResourceInputStream:
		return resource.KindInputStream
	case ResourceOutputStream:
		return resource.KindOutputStream
	case ResourceError:
		return resource.KindError
	case ResourceDescriptor:
		return resource.KindDescriptor
	default:
		return resource.KindDirectoryEntryStream
	}
}

// NewResourceTable creates a new resource table
func NewResourceTable() *ResourceTable {
	return &ResourceTable{table: resource.NewTable()}
}

// Add stores a resource and returns a stable handle.
func (t *ResourceTable) Add(r Resource) uint32 {
	return uint32(t.table.Insert(r.Type().kind(), &resourceAdapter{resource: r}))
}

// AddChild stores a resource that reads through parent. The parent cannot be
// removed until the child is dropped.
func (t *ResourceTable) AddChild(r Resource, parent uint32) uint32 {
	if !t.table.Borrow(resource.Handle(parent)) {
		return 0
	}
	h := t.table.Insert(r.Type().kind(), &resourceAdapter{resource: r, table: t.table, parent: resource.Handle(parent)})
	if h == 0 {
		t.table.ReturnBorrow(resource.Handle(parent))
	}
	return uint32(h)
}

// Get returns the resource for a handle, or (nil, false) if invalid.
func (t *ResourceTable) Get(handle uint32) (Resource, bool) {
	res, ok := t.table.Get(resource.Handle(handle))
	if !ok {
		return nil, false
	}
	if adapter, ok := res.(*resourceAdapter); ok {
		return adapter.resource, true
	}
	return nil, false
}

// Remove drops the resource. It reports false when the handle is invalid or
// still has child resources.
func (t *ResourceTable) Remove(handle uint32) bool {
	_, ok := t.table.Remove(resource.Handle(handle))
	return ok
}

// Len returns the number of live handles.
func (t *ResourceTable) Len() int {
	return t.table.Len()
}

// Subscribe forwards lifecycle events of the underlying table.
func (t *ResourceTable) Subscribe(o resource.Observer) {
	t.table.Subscribe(o)
}

// Clear drops and removes all resources. Used during shutdown.
func (t *ResourceTable) Clear() {
	t.table.Clear()
}

// resourceAdapter returns the parent borrow when dropped.
type resourceAdapter struct {
	resource Resource
	table    *resource.Table
	parent   resource.Handle
}

// Drop implements resource.Dropper
func (a *resourceAdapter) Drop() {
	if a.resource != nil {
		a.resource.Drop()
	}
	if a.parent != 0 {
		a.table.ReturnBorrow(a.parent)
	}
}

// Pollable is the interface for async-ready resources that can be polled.
type Pollable interface {
	Resource
	// Ready returns true if the resource is ready for I/O.
	Ready() bool
	// Block waits until the resource becomes ready or ctx is canceled.
	Block(ctx context.Context)
}

// PollableResource is a basic pollable that can be manually set ready.
type PollableResource struct {
	ready bool
}

func (p *PollableResource) Type() ResourceType { return ResourcePollable }
func (p *PollableResource) Drop()              {}
func (p *PollableResource) Ready() bool        { return p.ready }
func (p *PollableResource) SetReady(r bool)    { p.ready = r }
func (p *PollableResource) Block(ctx context.Context) {
	p.ready = true
}

// TimerPollable implements a time-based pollable that becomes ready at a deadline
type TimerPollable struct {
	deadline time.Time
	clock    vfs.Clock
}

// NewTimerPollable creates a pollable that becomes ready once clock reaches deadline.
func NewTimerPollable(clock vfs.Clock, deadline time.Time) *TimerPollable {
	return &TimerPollable{deadline: deadline, clock: clock}
}

func (p *TimerPollable) Type() ResourceType { return ResourcePollable }
func (p *TimerPollable) Drop()              {}
func (p *TimerPollable) Ready() bool        { return !p.clock.Now(0).Before(p.deadline) }
func (p *TimerPollable) Block(ctx context.Context) {
	remaining := p.deadline.Sub(p.clock.Now(0))
	if remaining <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(remaining):
	}
}

// InputStreamResource wraps byte data or io.Reader for WASI input streams.
type InputStreamResource struct {
	reader io.Reader
	data   []byte
	offset int
	closed bool
}

func NewInputStreamResource(source any) *InputStreamResource {
	s := &InputStreamResource{}
	switch v := source.(type) {
	case []byte:
		s.data = v
	case io.Reader:
		s.reader = v
	}
	return s
}

func (s *InputStreamResource) Type() ResourceType { return ResourceInputStream }
func (s *InputStreamResource) Drop() {
	if s.reader != nil {
		if closer, ok := s.reader.(io.Closer); ok {
			closer.Close()
		}
	}
}

func (s *InputStreamResource) Read(length uint64) ([]byte, error) {
	if s.closed {
		return nil, &StreamError{Closed: true}
	}
	// Limit allocation to prevent DoS
	if length > MaxAllocationSize {
		length = MaxAllocationSize
	}
	if s.reader != nil {
		buf := make([]byte, length)
		n, err := s.reader.Read(buf)
		if err != nil {
			s.closed = true
			if errors.Is(err, io.EOF) && n > 0 {
				return buf[:n], nil
			}
			return nil, &StreamError{Closed: true}
		}
		return buf[:n], nil
	}
	remaining := len(s.data) - s.offset
	if remaining == 0 {
		s.closed = true
		return nil, &StreamError{Closed: true}
	}
	toRead := min(int(length), remaining)
	result := s.data[s.offset : s.offset+toRead]
	s.offset += toRead
	return result, nil
}

// OutputStreamResource collects writes in memory or forwards them to an io.Writer.
type OutputStreamResource struct {
	writer io.Writer
	buf    bytes.Buffer
	closed bool
}

func NewOutputStreamResource(dest io.Writer) *OutputStreamResource {
	return &OutputStreamResource{writer: dest}
}

func (s *OutputStreamResource) Type() ResourceType { return ResourceOutputStream }
func (s *OutputStreamResource) Drop()              {}

func (s *OutputStreamResource) Write(data []byte) error {
	if s.closed {
		return &StreamError{Closed: true}
	}
	if s.writer != nil {
		if _, err := s.writer.Write(data); err != nil {
			return &StreamError{LastOpFailed: true}
		}
		return nil
	}
	s.buf.Write(data)
	return nil
}

// Bytes returns what was written when no destination writer was given.
func (s *OutputStreamResource) Bytes() []byte {
	return s.buf.Bytes()
}

func (s *OutputStreamResource) CheckWrite() (uint64, error) {
	if s.closed {
		return 0, &StreamError{Closed: true}
	}
	return DefaultBufferSize, nil
}

// FileInputStreamResource reads an open file from a fixed starting offset.
// It keeps its own position and never moves the file's cursor.
type FileInputStreamResource struct {
	file   vfs.File
	offset uint64
	closed bool
}

func NewFileInputStreamResource(file vfs.File, offset uint64) *FileInputStreamResource {
	return &FileInputStreamResource{file: file, offset: offset}
}

func (s *FileInputStreamResource) Type() ResourceType { return ResourceInputStream }
func (s *FileInputStreamResource) Drop()              { s.closed = true }

func (s *FileInputStreamResource) Read(length uint64) ([]byte, error) {
	if s.closed {
		return nil, &StreamError{Closed: true}
	}
	length = min(length, MaxAllocationSize)
	buf := make([]byte, length)
	n, err := s.file.ReadVectoredAt([][]byte{buf}, s.offset)
	if err != nil {
		return nil, &StreamError{LastOpFailed: true, Cause: err}
	}
	if n == 0 && length > 0 {
		s.closed = true
		return nil, &StreamError{Closed: true}
	}
	s.offset += n
	return buf[:n], nil
}

// FileOutputStreamResource writes to an open file, either from a fixed offset
// or always at the current end of the file.
type FileOutputStreamResource struct {
	file   vfs.File
	offset uint64
	append bool
	closed bool
}

func NewFileOutputStreamResource(file vfs.File, offset uint64, append bool) *FileOutputStreamResource {
	return &FileOutputStreamResource{file: file, offset: offset, append: append}
}

func (s *FileOutputStreamResource) Type() ResourceType { return ResourceOutputStream }
func (s *FileOutputStreamResource) Drop()              { s.closed = true }

func (s *FileOutputStreamResource) Write(data []byte) error {
	if s.closed {
		return &StreamError{Closed: true}
	}
	if s.append {
		stat, err := s.file.GetFilestat()
		if err != nil {
			return &StreamError{LastOpFailed: true, Cause: err}
		}
		s.offset = stat.Size
	}
	n, err := s.file.WriteVectoredAt([][]byte{data}, s.offset)
	if err != nil {
		return &StreamError{LastOpFailed: true, Cause: err}
	}
	s.offset += n
	return nil
}

func (s *FileOutputStreamResource) CheckWrite() (uint64, error) {
	if s.closed {
		return 0, &StreamError{Closed: true}
	}
	return DefaultBufferSize, nil
}

func (s *FileOutputStreamResource) Flush() error {
	if s.closed {
		return &StreamError{Closed: true}
	}
	return s.file.Sync()
}

// StreamError represents a WASI stream error with error codes.
type StreamError struct {
	Cause           error  // Underlying failure, if any
	Closed          bool   // Stream is closed
	LastOpFailed    bool   // Previous operation failed
	LastOpFailedErr uint32 // Error resource handle for the failed operation
}

func (e *StreamError) Error() string {
	if e.Closed {
		return "stream closed"
	}
	if e.Cause != nil {
		return "stream error: " + e.Cause.Error()
	}
	return "stream error"
}

func (e *StreamError) Unwrap() error { return e.Cause }

// ErrorResource holds an error that can be retrieved via ToDebugString.
type ErrorResource struct {
	err error
}

func NewErrorResource(err error) *ErrorResource {
	return &ErrorResource{err: err}
}

func (e *ErrorResource) Type() ResourceType { return ResourceError }
func (e *ErrorResource) Drop()              {}
func (e *ErrorResource) Err() error         { return e.err }
func (e *ErrorResource) ToDebugString() string {
	if e.err == nil {
		return "unknown error"
	}
	return e.err.Error()
}

// DescriptorFlags are the access rights of a descriptor.
type DescriptorFlags uint8

const (
	DescriptorRead DescriptorFlags = 1 << iota
	DescriptorWrite
	DescriptorFileIntegritySync
	DescriptorDataIntegritySync
	DescriptorRequestedWriteSync
	DescriptorMutateDirectory
)

// DescriptorResource is an open directory or file capability with the rights
// the guest was granted on it.
type DescriptorResource struct {
	dir   vfs.Dir
	file  vfs.File
	flags DescriptorFlags
}

// NewDirDescriptor wraps a directory capability.
func NewDirDescriptor(dir vfs.Dir, flags DescriptorFlags) *DescriptorResource {
	return &DescriptorResource{dir: dir, flags: flags}
}

// NewFileDescriptor wraps an open file.
func NewFileDescriptor(file vfs.File, flags DescriptorFlags) *DescriptorResource {
	return &DescriptorResource{file: file, flags: flags}
}

func (d *DescriptorResource) Type() ResourceType       { return ResourceDescriptor }
func (d *DescriptorResource) Drop()                    {}
func (d *DescriptorResource) IsDir() bool              { return d.dir != nil }
func (d *DescriptorResource) Dir() vfs.Dir             { return d.dir }
func (d *DescriptorResource) File() vfs.File           { return d.file }
func (d *DescriptorResource) Flags() DescriptorFlags   { return d.flags }
func (d *DescriptorResource) CanRead() bool            { return d.flags&DescriptorRead != 0 }
func (d *DescriptorResource) CanWrite() bool           { return d.flags&DescriptorWrite != 0 }
func (d *DescriptorResource) CanMutateDirectory() bool { return d.flags&DescriptorMutateDirectory != 0 }

// Stat returns the metadata of the underlying directory or file.
func (d *DescriptorResource) Stat() (vfs.Filestat, error) {
	if d.dir != nil {
		return d.dir.GetFilestat()
	}
	return d.file.GetFilestat()
}

// DirectoryEntryStreamResource iterates over directory entries. The
// synthetic "." and ".." entries are not reported.
type DirectoryEntryStreamResource struct {
	iter vfs.ReaddirIterator
}

// DirectoryEntry represents a single entry in a directory listing.
type DirectoryEntry struct {
	Name string
	Type vfs.FileType
}

func NewDirectoryEntryStreamResource(iter vfs.ReaddirIterator) *DirectoryEntryStreamResource {
	return &DirectoryEntryStreamResource{iter: iter}
}

func (d *DirectoryEntryStreamResource) Type() ResourceType { return ResourceDirectoryEntryStream }
func (d *DirectoryEntryStreamResource) Drop()              {}

// ReadNext returns the next entry, or nil at the end of the listing.
func (d *DirectoryEntryStreamResource) ReadNext() (*DirectoryEntry, error) {
	for {
		ent, ok, err := d.iter.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if ent.Name == "." || ent.Name == ".." {
			continue
		}
		return &DirectoryEntry{Name: ent.Name, Type: ent.FileType}, nil
	}
}
