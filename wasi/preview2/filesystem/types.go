package filesystem

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/virtfs/errors"
	"github.com/wippyai/virtfs/vfs"
	"github.com/wippyai/virtfs/wasi/preview2"
	"github.com/wippyai/virtfs/wasi/preview2/clocks"
)

type TypesHost struct {
	resources *preview2.ResourceTable
}

func NewTypesHost(resources *preview2.ResourceTable) *TypesHost {
	return &TypesHost{resources: resources}
}

func (h *TypesHost) Namespace() string {
	return "wasi:filesystem/types@0.2.3"
}

// Error is the error-code result of a descriptor method. The engine error it
// was mapped from is kept for logging and unwrapping.
type Error struct {
	Code  ErrorCode
	cause error
}

type ErrorCode uint8

const (
	ErrorAccess ErrorCode = iota
	ErrorWouldBlock
	ErrorAlready
	ErrorBadDescriptor
	ErrorBusy
	ErrorDeadlock
	ErrorQuota
	ErrorExist
	ErrorFileTooLarge
	ErrorIllegalByteSequence
	ErrorInProgress
	ErrorInterrupted
	ErrorInvalid
	ErrorIo
	ErrorIsDirectory
	ErrorLoop
	ErrorTooManyLinks
	ErrorMessageSize
	ErrorNameTooLong
	ErrorNoDevice
	ErrorNoEntry
	ErrorNoLock
	ErrorInsufficientMemory
	ErrorInsufficientSpace
	ErrorNotDirectory
	ErrorNotEmpty
	ErrorNotRecoverable
	ErrorUnsupported
	ErrorNoTty
	ErrorNoSuchDevice
	ErrorOverflow
	ErrorNotPermitted
	ErrorPipe
	ErrorReadOnly
	ErrorInvalidSeek
	ErrorTextFileBusy
	ErrorCrossDevice
)

var errorCodeNames = [...]string{
	"access", "would-block", "already", "bad-descriptor", "busy", "deadlock",
	"quota", "exist", "file-too-large", "illegal-byte-sequence", "in-progress",
	"interrupted", "invalid", "io", "is-directory", "loop", "too-many-links",
	"message-size", "name-too-long", "no-device", "no-entry", "no-lock",
	"insufficient-memory", "insufficient-space", "not-directory", "not-empty",
	"not-recoverable", "unsupported", "no-tty", "no-such-device", "overflow",
	"not-permitted", "pipe", "read-only", "invalid-seek", "text-file-busy",
	"cross-device",
}

func (c ErrorCode) String() string {
	if int(c) < len(errorCodeNames) {
		return errorCodeNames[c]
	}
	return "unknown"
}

func (e *Error) Error() string {
	return "filesystem error: " + e.Code.String()
}

func (e *Error) Unwrap() error { return e.cause }

// codeOf maps an engine error kind to its WASI error code.
func codeOf(err error) (ErrorCode, bool) {
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		return ErrorNoEntry, true
	case errors.KindAlreadyExists:
		return ErrorExist, true
	case errors.KindNotADirectory:
		return ErrorNotDirectory, true
	case errors.KindIsADirectory:
		return ErrorIsDirectory, true
	case errors.KindNotEmpty:
		return ErrorNotEmpty, true
	case errors.KindPermissionDenied:
		return ErrorNotPermitted, true
	case errors.KindNotCapable:
		return ErrorAccess, true
	case errors.KindNotSupported:
		return ErrorCrossDevice, true
	case errors.KindBadDescriptor:
		return ErrorBadDescriptor, true
	case errors.KindOverflow:
		return ErrorOverflow, true
	case errors.KindUnimplemented:
		return ErrorUnsupported, true
	case errors.KindInvalid:
		return ErrorInvalid, true
	default:
		return ErrorIo, false
	}
}

func mapError(method string, err error) *Error {
	if err == nil {
		return nil
	}
	code, _ := codeOf(err)
	Logger().Debug("descriptor call failed",
		zap.String("method", method),
		zap.Stringer("code", code),
		zap.Error(err))
	return &Error{Code: code, cause: err}
}

type DescriptorType uint8

const (
	DescriptorTypeUnknown DescriptorType = iota
	DescriptorTypeBlockDevice
	DescriptorTypeCharacterDevice
	DescriptorTypeDirectory
	DescriptorTypeFifo
	DescriptorTypeSymbolicLink
	DescriptorTypeRegularFile
	DescriptorTypeSocket
)

func descriptorType(t vfs.FileType) DescriptorType {
	switch t {
	case vfs.FileTypeBlockDevice:
		return DescriptorTypeBlockDevice
	case vfs.FileTypeCharacterDevice:
		return DescriptorTypeCharacterDevice
	case vfs.FileTypeDirectory:
		return DescriptorTypeDirectory
	case vfs.FileTypeRegularFile:
		return DescriptorTypeRegularFile
	case vfs.FileTypeSymbolicLink:
		return DescriptorTypeSymbolicLink
	case vfs.FileTypePipe:
		return DescriptorTypeFifo
	case vfs.FileTypeSocketDgram, vfs.FileTypeSocketStream:
		return DescriptorTypeSocket
	default:
		return DescriptorTypeUnknown
	}
}

// PathFlags control how the final path component is resolved.
type PathFlags uint8

const PathFlagSymlinkFollow PathFlags = 1

// OpenFlags select the open-at policy.
type OpenFlags uint8

const (
	OpenFlagCreate OpenFlags = 1 << iota
	OpenFlagDirectory
	OpenFlagExclusive
	OpenFlagTruncate
)

type DescriptorStat struct {
	Type                      DescriptorType
	LinkCount                 uint64
	Size                      uint64
	DataAccessTimestamp       *clocks.Datetime
	DataModificationTimestamp *clocks.Datetime
	StatusChangeTimestamp     *clocks.Datetime
}

func toDescriptorStat(st vfs.Filestat) *DescriptorStat {
	atim := clocks.ToDatetime(st.Atim)
	mtim := clocks.ToDatetime(st.Mtim)
	ctim := clocks.ToDatetime(st.Ctim)
	return &DescriptorStat{
		Type:                      descriptorType(st.FileType),
		LinkCount:                 st.Nlink,
		Size:                      st.Size,
		DataAccessTimestamp:       &atim,
		DataModificationTimestamp: &mtim,
		StatusChangeTimestamp:     &ctim,
	}
}

// NewTimestampKind selects how a timestamp is updated by set-times.
type NewTimestampKind uint8

const (
	NewTimestampNoChange NewTimestampKind = iota
	NewTimestampNow
	NewTimestampValue
)

type NewTimestamp struct {
	Kind     NewTimestampKind
	Datetime clocks.Datetime
}

func (t NewTimestamp) spec() *vfs.SystemTimeSpec {
	switch t.Kind {
	case NewTimestampNow:
		return vfs.Now()
	case NewTimestampValue:
		return vfs.Absolute(t.Datetime.Time())
	default:
		return nil
	}
}

type MetadataHashValue struct {
	Lower uint64
	Upper uint64
}

// hashFilestat derives a metadata hash from the node identity, size and
// timestamps. Equal metadata on the same node always hashes equally.
func hashFilestat(st vfs.Filestat) MetadataHashValue {
	h := fnv.New128a()
	var buf [8]byte
	for _, v := range []uint64{
		st.DeviceID,
		st.Inode,
		st.Size,
		uint64(st.Mtim.UnixNano()),
		uint64(st.Ctim.UnixNano()),
	} {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	sum := h.Sum(nil)
	return MetadataHashValue{
		Lower: binary.LittleEndian.Uint64(sum[:8]),
		Upper: binary.LittleEndian.Uint64(sum[8:]),
	}
}

type DirectoryEntry struct {
	Type DescriptorType
	Name string
}

func (h *TypesHost) getDescriptor(handle uint32) (*preview2.DescriptorResource, *Error) {
	r, ok := h.resources.Get(handle)
	if !ok {
		return nil, &Error{Code: ErrorBadDescriptor}
	}
	desc, ok := r.(*preview2.DescriptorResource)
	if !ok {
		return nil, &Error{Code: ErrorBadDescriptor}
	}
	return desc, nil
}

func (h *TypesHost) getDir(handle uint32) (*preview2.DescriptorResource, *Error) {
	desc, err := h.getDescriptor(handle)
	if err != nil {
		return nil, err
	}
	if !desc.IsDir() {
		return nil, &Error{Code: ErrorNotDirectory}
	}
	return desc, nil
}

func (h *TypesHost) getFile(handle uint32) (*preview2.DescriptorResource, *Error) {
	desc, err := h.getDescriptor(handle)
	if err != nil {
		return nil, err
	}
	if desc.IsDir() {
		return nil, &Error{Code: ErrorIsDirectory}
	}
	return desc, nil
}

// getMutableDir returns a directory descriptor that may be modified.
func (h *TypesHost) getMutableDir(handle uint32) (*preview2.DescriptorResource, *Error) {
	desc, err := h.getDir(handle)
	if err != nil {
		return nil, err
	}
	if !desc.CanMutateDirectory() {
		return nil, &Error{Code: ErrorReadOnly}
	}
	return desc, nil
}

// checkPath rejects absolute paths. Everything else, including "..", is
// left to the engine's resolver.
func checkPath(path string) *Error {
	if strings.HasPrefix(path, "/") {
		return &Error{Code: ErrorNotPermitted}
	}
	return nil
}

// FilesystemErrorCode extracts a filesystem error code from a stream error
// resource, if the error originated in the filesystem.
func (h *TypesHost) FilesystemErrorCode(_ context.Context, errHandle uint32) (ErrorCode, bool) {
	r, ok := h.resources.Get(errHandle)
	if !ok {
		return 0, false
	}
	e, ok := r.(*preview2.ErrorResource)
	if !ok {
		return 0, false
	}
	return codeOf(e.Err())
}

func (h *TypesHost) MethodDescriptorRead(_ context.Context, self uint32, length uint64, offset uint64) ([]byte, bool, *Error) {
	desc, err := h.getFile(self)
	if err != nil {
		return nil, false, err
	}
	if !desc.CanRead() {
		return nil, false, &Error{Code: ErrorBadDescriptor}
	}

	// Limit allocation size to prevent DoS
	if length > preview2.MaxAllocationSize {
		length = preview2.MaxAllocationSize
	}

	buf := make([]byte, length)
	n, rerr := desc.File().ReadVectoredAt([][]byte{buf}, offset)
	if rerr != nil {
		return nil, false, mapError("read", rerr)
	}
	st, serr := desc.File().GetFilestat()
	if serr != nil {
		return nil, false, mapError("read", serr)
	}
	return buf[:n], offset+n >= st.Size, nil
}

func (h *TypesHost) MethodDescriptorWrite(_ context.Context, self uint32, buffer []byte, offset uint64) (uint64, *Error) {
	desc, err := h.getFile(self)
	if err != nil {
		return 0, err
	}
	if !desc.CanWrite() {
		return 0, &Error{Code: ErrorBadDescriptor}
	}

	n, werr := desc.File().WriteVectoredAt([][]byte{buffer}, offset)
	if werr != nil {
		return n, mapError("write", werr)
	}
	return n, nil
}

func (h *TypesHost) MethodDescriptorGetType(_ context.Context, self uint32) (DescriptorType, *Error) {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return DescriptorTypeUnknown, err
	}
	if desc.IsDir() {
		return DescriptorTypeDirectory, nil
	}
	t, terr := desc.File().GetFiletype()
	if terr != nil {
		return DescriptorTypeUnknown, mapError("get-type", terr)
	}
	return descriptorType(t), nil
}

func (h *TypesHost) MethodDescriptorStat(_ context.Context, self uint32) (*DescriptorStat, *Error) {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return nil, err
	}
	st, serr := desc.Stat()
	if serr != nil {
		return nil, mapError("stat", serr)
	}
	return toDescriptorStat(st), nil
}

func (h *TypesHost) MethodDescriptorStatAt(_ context.Context, self uint32, pathFlags PathFlags, path string) (*DescriptorStat, *Error) {
	desc, err := h.getDir(self)
	if err != nil {
		return nil, err
	}
	if err := checkPath(path); err != nil {
		return nil, err
	}
	st, serr := desc.Dir().GetPathFilestat(path, pathFlags&PathFlagSymlinkFollow != 0)
	if serr != nil {
		return nil, mapError("stat-at", serr)
	}
	return toDescriptorStat(st), nil
}

// MethodDescriptorSeek moves the host-side cursor of a file descriptor.
// whence follows io.SeekStart, io.SeekCurrent and io.SeekEnd.
func (h *TypesHost) MethodDescriptorSeek(_ context.Context, self uint32, offset int64, whence uint8) (uint64, *Error) {
	desc, err := h.getFile(self)
	if err != nil {
		return 0, err
	}
	switch int(whence) {
	case io.SeekStart, io.SeekCurrent, io.SeekEnd:
	default:
		return 0, &Error{Code: ErrorInvalid}
	}
	pos, serr := desc.File().Seek(offset, int(whence))
	if serr != nil {
		return 0, mapError("seek", serr)
	}
	return uint64(pos), nil
}

func (h *TypesHost) MethodDescriptorGetFlags(_ context.Context, self uint32) (preview2.DescriptorFlags, *Error) {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return 0, err
	}
	return desc.Flags(), nil
}

func (h *TypesHost) MethodDescriptorOpenAt(_ context.Context, self uint32, pathFlags PathFlags, path string, openFlags OpenFlags, flags preview2.DescriptorFlags) (uint32, *Error) {
	desc, err := h.getDir(self)
	if err != nil {
		return 0, err
	}
	if err := checkPath(path); err != nil {
		return 0, err
	}

	write := flags&preview2.DescriptorWrite != 0
	read := flags&preview2.DescriptorRead != 0
	mutating := write ||
		flags&preview2.DescriptorMutateDirectory != 0 ||
		openFlags&(OpenFlagCreate|OpenFlagTruncate) != 0
	if mutating && !desc.CanMutateDirectory() {
		return 0, &Error{Code: ErrorReadOnly}
	}
	follow := pathFlags&PathFlagSymlinkFollow != 0

	if openFlags&OpenFlagDirectory != 0 {
		if openFlags&(OpenFlagCreate|OpenFlagExclusive|OpenFlagTruncate) != 0 {
			return 0, &Error{Code: ErrorInvalid}
		}
		if write {
			return 0, &Error{Code: ErrorIsDirectory}
		}
		return h.openDir(self, desc, follow, path, flags)
	}

	if openFlags&OpenFlagTruncate != 0 && !write {
		return 0, &Error{Code: ErrorInvalid}
	}

	var oflags vfs.OFlags
	if openFlags&OpenFlagCreate != 0 {
		oflags |= vfs.OFlagCreate
	}
	if openFlags&OpenFlagExclusive != 0 {
		oflags |= vfs.OFlagExclusive
	}
	var fdflags vfs.FdFlags
	if flags&preview2.DescriptorFileIntegritySync != 0 {
		fdflags |= vfs.FdFlagSync
	}
	if flags&preview2.DescriptorDataIntegritySync != 0 {
		fdflags |= vfs.FdFlagDsync
	}
	if flags&preview2.DescriptorRequestedWriteSync != 0 {
		fdflags |= vfs.FdFlagRsync
	}

	file, oerr := desc.Dir().OpenFile(follow, path, oflags, read, write, fdflags)
	if oerr != nil {
		// A directory may be opened without the directory flag as long as
		// nothing asks to create, truncate or write it.
		if errors.KindOf(oerr) == errors.KindIsADirectory && !write && openFlags&OpenFlagCreate == 0 {
			return h.openDir(self, desc, follow, path, flags)
		}
		return 0, mapError("open-at", oerr)
	}
	if openFlags&OpenFlagTruncate != 0 {
		if terr := file.SetFilestatSize(0); terr != nil {
			return 0, mapError("open-at", terr)
		}
	}

	if !read && !write {
		flags |= preview2.DescriptorRead
	}
	handle := h.resources.Add(preview2.NewFileDescriptor(file, flags))
	Logger().Debug("opened file",
		zap.Uint32("parent", self),
		zap.String("path", path),
		zap.Uint32("handle", handle))
	return handle, nil
}

func (h *TypesHost) openDir(self uint32, desc *preview2.DescriptorResource, follow bool, path string, flags preview2.DescriptorFlags) (uint32, *Error) {
	sub, derr := desc.Dir().OpenDir(follow, path)
	if derr != nil {
		return 0, mapError("open-at", derr)
	}
	// Directory rights never exceed those of the parent.
	flags &= desc.Flags() | preview2.DescriptorRead
	handle := h.resources.Add(preview2.NewDirDescriptor(sub, flags))
	Logger().Debug("opened directory",
		zap.Uint32("parent", self),
		zap.String("path", path),
		zap.Uint32("handle", handle))
	return handle, nil
}

func (h *TypesHost) MethodDescriptorCreateDirectoryAt(_ context.Context, self uint32, path string) *Error {
	desc, err := h.getMutableDir(self)
	if err != nil {
		return err
	}
	if err := checkPath(path); err != nil {
		return err
	}
	return mapError("create-directory-at", desc.Dir().CreateDir(path))
}

func (h *TypesHost) MethodDescriptorReadDirectory(_ context.Context, self uint32) (uint32, *Error) {
	desc, err := h.getDir(self)
	if err != nil {
		return 0, err
	}
	iter, rerr := desc.Dir().Readdir(vfs.CursorStart)
	if rerr != nil {
		return 0, mapError("read-directory", rerr)
	}
	return h.resources.AddChild(preview2.NewDirectoryEntryStreamResource(iter), self), nil
}

func (h *TypesHost) MethodDescriptorSync(_ context.Context, self uint32) *Error {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return err
	}
	if desc.IsDir() {
		return nil
	}
	return mapError("sync", desc.File().Sync())
}

func (h *TypesHost) MethodDescriptorSyncData(_ context.Context, self uint32) *Error {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return err
	}
	if desc.IsDir() {
		return nil
	}
	return mapError("sync-data", desc.File().Datasync())
}

func (h *TypesHost) MethodDescriptorReadViaStream(_ context.Context, self uint32, offset uint64) (uint32, *Error) {
	desc, err := h.getFile(self)
	if err != nil {
		return 0, err
	}
	if !desc.CanRead() {
		return 0, &Error{Code: ErrorBadDescriptor}
	}
	stream := preview2.NewFileInputStreamResource(desc.File(), offset)
	return h.resources.AddChild(stream, self), nil
}

func (h *TypesHost) MethodDescriptorWriteViaStream(_ context.Context, self uint32, offset uint64) (uint32, *Error) {
	desc, err := h.getFile(self)
	if err != nil {
		return 0, err
	}
	if !desc.CanWrite() {
		return 0, &Error{Code: ErrorBadDescriptor}
	}
	stream := preview2.NewFileOutputStreamResource(desc.File(), offset, false)
	return h.resources.AddChild(stream, self), nil
}

func (h *TypesHost) MethodDescriptorAppendViaStream(_ context.Context, self uint32) (uint32, *Error) {
	desc, err := h.getFile(self)
	if err != nil {
		return 0, err
	}
	if !desc.CanWrite() {
		return 0, &Error{Code: ErrorBadDescriptor}
	}
	stream := preview2.NewFileOutputStreamResource(desc.File(), 0, true)
	return h.resources.AddChild(stream, self), nil
}

func (h *TypesHost) MethodDescriptorMetadataHash(_ context.Context, self uint32) (MetadataHashValue, *Error) {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return MetadataHashValue{}, err
	}
	st, serr := desc.Stat()
	if serr != nil {
		return MetadataHashValue{}, mapError("metadata-hash", serr)
	}
	return hashFilestat(st), nil
}

func (h *TypesHost) MethodDescriptorMetadataHashAt(_ context.Context, self uint32, pathFlags PathFlags, path string) (MetadataHashValue, *Error) {
	desc, err := h.getDir(self)
	if err != nil {
		return MetadataHashValue{}, err
	}
	if err := checkPath(path); err != nil {
		return MetadataHashValue{}, err
	}
	st, serr := desc.Dir().GetPathFilestat(path, pathFlags&PathFlagSymlinkFollow != 0)
	if serr != nil {
		return MetadataHashValue{}, mapError("metadata-hash-at", serr)
	}
	return hashFilestat(st), nil
}

func (h *TypesHost) MethodDescriptorRenameAt(_ context.Context, self uint32, oldPath string, newDescriptor uint32, newPath string) *Error {
	oldDesc, err := h.getMutableDir(self)
	if err != nil {
		return err
	}
	newDesc, err := h.getMutableDir(newDescriptor)
	if err != nil {
		return err
	}
	if err := checkPath(oldPath); err != nil {
		return err
	}
	if err := checkPath(newPath); err != nil {
		return err
	}
	return mapError("rename-at", oldDesc.Dir().Rename(oldPath, newDesc.Dir(), newPath))
}

func (h *TypesHost) MethodDescriptorUnlinkFileAt(_ context.Context, self uint32, path string) *Error {
	desc, err := h.getMutableDir(self)
	if err != nil {
		return err
	}
	if err := checkPath(path); err != nil {
		return err
	}
	return mapError("unlink-file-at", desc.Dir().UnlinkFile(path))
}

func (h *TypesHost) MethodDescriptorRemoveDirectoryAt(_ context.Context, self uint32, path string) *Error {
	desc, err := h.getMutableDir(self)
	if err != nil {
		return err
	}
	if err := checkPath(path); err != nil {
		return err
	}
	return mapError("remove-directory-at", desc.Dir().RemoveDir(path))
}

func (h *TypesHost) MethodDescriptorSymlinkAt(_ context.Context, self uint32, oldPath string, newPath string) *Error {
	desc, err := h.getMutableDir(self)
	if err != nil {
		return err
	}
	if err := checkPath(newPath); err != nil {
		return err
	}
	return mapError("symlink-at", desc.Dir().Symlink(oldPath, newPath))
}

func (h *TypesHost) MethodDescriptorReadlinkAt(_ context.Context, self uint32, path string) (string, *Error) {
	desc, err := h.getDir(self)
	if err != nil {
		return "", err
	}
	if err := checkPath(path); err != nil {
		return "", err
	}
	target, rerr := desc.Dir().ReadLink(path)
	if rerr != nil {
		return "", mapError("readlink-at", rerr)
	}
	return target, nil
}

func (h *TypesHost) MethodDescriptorLinkAt(_ context.Context, self uint32, _ PathFlags, oldPath string, newDescriptor uint32, newPath string) *Error {
	oldDesc, err := h.getDir(self)
	if err != nil {
		return err
	}
	newDesc, err := h.getMutableDir(newDescriptor)
	if err != nil {
		return err
	}
	if err := checkPath(oldPath); err != nil {
		return err
	}
	if err := checkPath(newPath); err != nil {
		return err
	}
	return mapError("link-at", oldDesc.Dir().HardLink(oldPath, newDesc.Dir(), newPath))
}

func (h *TypesHost) MethodDescriptorSetTimes(_ context.Context, self uint32, atime NewTimestamp, mtime NewTimestamp) *Error {
	desc, err := h.getDescriptor(self)
	if err != nil {
		return err
	}
	if desc.IsDir() {
		return mapError("set-times", desc.Dir().SetTimes(".", atime.spec(), mtime.spec(), false))
	}
	return mapError("set-times", desc.File().SetTimes(atime.spec(), mtime.spec()))
}

func (h *TypesHost) MethodDescriptorSetTimesAt(_ context.Context, self uint32, pathFlags PathFlags, path string, atime NewTimestamp, mtime NewTimestamp) *Error {
	desc, err := h.getDir(self)
	if err != nil {
		return err
	}
	if err := checkPath(path); err != nil {
		return err
	}
	follow := pathFlags&PathFlagSymlinkFollow != 0
	return mapError("set-times-at", desc.Dir().SetTimes(path, atime.spec(), mtime.spec(), follow))
}

func (h *TypesHost) MethodDescriptorSetSize(_ context.Context, self uint32, size uint64) *Error {
	desc, err := h.getFile(self)
	if err != nil {
		return err
	}
	if !desc.CanWrite() {
		return &Error{Code: ErrorBadDescriptor}
	}
	return mapError("set-size", desc.File().SetFilestatSize(size))
}

func (h *TypesHost) MethodDescriptorAdvise(_ context.Context, self uint32, offset uint64, length uint64, advice uint8) *Error {
	desc, err := h.getFile(self)
	if err != nil {
		return err
	}
	if vfs.Advice(advice) > vfs.AdviceNoReuse {
		return &Error{Code: ErrorInvalid}
	}
	return mapError("advise", desc.File().Advise(offset, length, vfs.Advice(advice)))
}

func (h *TypesHost) ResourceDropDescriptor(_ context.Context, self uint32) {
	if !h.resources.Remove(self) {
		Logger().Debug("descriptor drop failed", zap.Uint32("handle", self))
	}
}

func (h *TypesHost) ResourceDropDirectoryEntryStream(_ context.Context, self uint32) {
	h.resources.Remove(self)
}

// MethodDescriptorIsSameObject reports whether both descriptors refer to the
// same node of the same filesystem.
func (h *TypesHost) MethodDescriptorIsSameObject(_ context.Context, self uint32, other uint32) bool {
	selfDesc, err := h.getDescriptor(self)
	if err != nil {
		return false
	}
	otherDesc, err := h.getDescriptor(other)
	if err != nil {
		return false
	}
	a, aerr := selfDesc.Stat()
	b, berr := otherDesc.Stat()
	if aerr != nil || berr != nil {
		return false
	}
	return a.DeviceID == b.DeviceID && a.Inode == b.Inode
}

func (h *TypesHost) MethodDirectoryEntryStreamReadDirectoryEntry(_ context.Context, self uint32) (*DirectoryEntry, *Error) {
	r, ok := h.resources.Get(self)
	if !ok {
		return nil, &Error{Code: ErrorBadDescriptor}
	}
	stream, ok := r.(*preview2.DirectoryEntryStreamResource)
	if !ok {
		return nil, &Error{Code: ErrorBadDescriptor}
	}

	entry, err := stream.ReadNext()
	if err != nil {
		return nil, mapError("read-directory-entry", err)
	}
	if entry == nil {
		return nil, nil
	}
	return &DirectoryEntry{Type: descriptorType(entry.Type), Name: entry.Name}, nil
}

func (h *TypesHost) Register() map[string]any {
	return map[string]any{
		"filesystem-error-code": h.FilesystemErrorCode,
		// Descriptor methods
		"[method]descriptor.read":                h.MethodDescriptorRead,
		"[method]descriptor.write":               h.MethodDescriptorWrite,
		"[method]descriptor.get-type":            h.MethodDescriptorGetType,
		"[method]descriptor.stat":                h.MethodDescriptorStat,
		"[method]descriptor.stat-at":             h.MethodDescriptorStatAt,
		"[method]descriptor.seek":                h.MethodDescriptorSeek,
		"[method]descriptor.get-flags":           h.MethodDescriptorGetFlags,
		"[method]descriptor.open-at":             h.MethodDescriptorOpenAt,
		"[method]descriptor.create-directory-at": h.MethodDescriptorCreateDirectoryAt,
		"[method]descriptor.read-directory":      h.MethodDescriptorReadDirectory,
		"[method]descriptor.sync":                h.MethodDescriptorSync,
		"[method]descriptor.sync-data":           h.MethodDescriptorSyncData,
		"[method]descriptor.read-via-stream":     h.MethodDescriptorReadViaStream,
		"[method]descriptor.write-via-stream":    h.MethodDescriptorWriteViaStream,
		"[method]descriptor.append-via-stream":   h.MethodDescriptorAppendViaStream,
		"[method]descriptor.metadata-hash":       h.MethodDescriptorMetadataHash,
		"[method]descriptor.metadata-hash-at":    h.MethodDescriptorMetadataHashAt,
		"[method]descriptor.rename-at":           h.MethodDescriptorRenameAt,
		"[method]descriptor.unlink-file-at":      h.MethodDescriptorUnlinkFileAt,
		"[method]descriptor.remove-directory-at": h.MethodDescriptorRemoveDirectoryAt,
		"[method]descriptor.symlink-at":          h.MethodDescriptorSymlinkAt,
		"[method]descriptor.readlink-at":         h.MethodDescriptorReadlinkAt,
		"[method]descriptor.link-at":             h.MethodDescriptorLinkAt,
		"[method]descriptor.set-times":           h.MethodDescriptorSetTimes,
		"[method]descriptor.set-times-at":        h.MethodDescriptorSetTimesAt,
		"[method]descriptor.set-size":            h.MethodDescriptorSetSize,
		"[method]descriptor.advise":              h.MethodDescriptorAdvise,
		"[method]descriptor.is-same-object":      h.MethodDescriptorIsSameObject,
		// Directory entry stream methods
		"[method]directory-entry-stream.read-directory-entry": h.MethodDirectoryEntryStreamReadDirectoryEntry,
		// Resource drops
		"[resource-drop]descriptor":             h.ResourceDropDescriptor,
		"[resource-drop]directory-entry-stream": h.ResourceDropDirectoryEntryStream,
	}
}
