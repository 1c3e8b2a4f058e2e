package wazerofs

import (
	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"

	"github.com/wippyai/virtfs/errors"
)

// toErrno maps an engine error to the errno reported to the guest.
func toErrno(err error) experimentalsys.Errno {
	if err == nil {
		return 0
	}
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		return experimentalsys.ENOENT
	case errors.KindAlreadyExists:
		return experimentalsys.EEXIST
	case errors.KindNotADirectory:
		return experimentalsys.ENOTDIR
	case errors.KindIsADirectory:
		return experimentalsys.EISDIR
	case errors.KindNotEmpty:
		return experimentalsys.ENOTEMPTY
	case errors.KindPermissionDenied:
		return experimentalsys.EPERM
	case errors.KindNotCapable:
		return experimentalsys.EACCES
	case errors.KindNotSupported:
		return experimentalsys.ENOTSUP
	case errors.KindBadDescriptor:
		return experimentalsys.EBADF
	case errors.KindOverflow, errors.KindInvalid:
		return experimentalsys.EINVAL
	case errors.KindUnimplemented:
		return experimentalsys.ENOSYS
	default:
		return experimentalsys.EIO
	}
}
