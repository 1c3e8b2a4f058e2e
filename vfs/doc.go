// Package vfs defines the capability interfaces a host uses to satisfy filesystem
// system calls for a sandboxed process.
//
// There are two capabilities:
//
//	Dir   - a directory: path resolution, open, mkdir, unlink, link, stat, readdir
//	File  - one open instance of a file: cursor, access mode, read/write/seek/stat
//
// and one collaborator the host supplies:
//
//	Clock - wall-clock time at a requested precision
//
// A host holds capabilities, never paths into a backing store. Operations that take a second
// directory (HardLink, Rename) must check that the argument comes from the same implementation
// and fail with a not-capable error otherwise.
//
// # Directory Listings
//
// Readdir returns a ReaddirIterator positioned at an opaque Cursor. Every entry carries the
// cursor of the entry after it, so a host can stop anywhere and resume later:
//
//	it, _ := dir.Readdir(vfs.CursorStart)
//	for {
//	    ent, ok, err := it.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    save(ent.Next)
//	}
//
// # Errors
//
// Implementations return *errors.Error values from github.com/wippyai/virtfs/errors so hosts
// can map failures with errors.KindOf.
package vfs
