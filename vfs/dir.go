package vfs

// Dir is a directory capability.
//
// Paths are relative, '/'-separated and resolved component by component from
// this directory. Implementations do not normalize them: "." and ".." are not
// special in the middle of a path and symbolic links are not followed.
type Dir interface {
	// OpenFile opens or creates the file at path. oflags selects the policy:
	// Create|Exclusive creates a new file, Create opens or creates, and no flags
	// open an existing file only. The handle starts at offset 0.
	OpenFile(symlinkFollow bool, path string, oflags OFlags, read, write bool, fdflags FdFlags) (File, error)

	// OpenDir opens the existing directory at path. A trailing slash is accepted.
	OpenDir(symlinkFollow bool, path string) (Dir, error)

	// CreateDir creates an empty directory at path.
	CreateDir(path string) error

	// Readdir lists the directory starting at cursor.
	Readdir(cursor Cursor) (ReaddirIterator, error)

	// RemoveDir removes the empty directory at path.
	RemoveDir(path string) error

	// UnlinkFile removes the name of the file at path. Open handles keep the
	// file's content alive.
	UnlinkFile(path string) error

	// HardLink adds targetPath in targetDir as a second name for the file at srcPath.
	HardLink(srcPath string, targetDir Dir, targetPath string) error

	GetFilestat() (Filestat, error)
	GetPathFilestat(path string, followSymlinks bool) (Filestat, error)

	// Placeholders. Implementations may return an unimplemented error.
	Symlink(srcPath, destPath string) error
	ReadLink(path string) (string, error)
	Rename(srcPath string, destDir Dir, destPath string) error
	SetTimes(path string, atime, mtime *SystemTimeSpec, followSymlinks bool) error
}

// ReaddirIterator yields directory entries in cursor order.
type ReaddirIterator interface {
	// Next returns the next entry. ok is false once the listing is exhausted.
	Next() (ent ReaddirEntity, ok bool, err error)
}
