package memfs

import "github.com/wippyai/virtfs/vfs"

// Readdir iterates a directory listing: "." at cursor 0, ".." at 1, then the
// children in ascending name order. Child names are captured when the
// iterator is created; mutating the directory during a listing may skip or
// repeat entries.
type Readdir struct {
	dir    *dirInode
	names  []string
	cursor vfs.Cursor
}

var _ vfs.ReaddirIterator = (*Readdir)(nil)

func newReaddir(dir *dirInode, cursor vfs.Cursor) *Readdir {
	return &Readdir{
		dir:    dir,
		names:  dir.sortedNames(),
		cursor: cursor,
	}
}

// Next returns the entry at the current cursor and advances past it.
func (r *Readdir) Next() (vfs.ReaddirEntity, bool, error) {
	for {
		var (
			name string
			stat vfs.Filestat
		)
		switch r.cursor {
		case 0:
			name, stat = ".", r.dir.filestat()
		case 1:
			name, stat = "..", r.dir.parentOrSelf().filestat()
		default:
			idx := uint64(r.cursor - 2)
			if idx >= uint64(len(r.names)) {
				return vfs.ReaddirEntity{}, false, nil
			}
			n, ok := r.dir.child(r.names[idx])
			if !ok {
				r.cursor++
				continue
			}
			name, stat = r.names[idx], n.filestat()
		}

		r.cursor++
		return vfs.ReaddirEntity{
			Name:     name,
			Next:     r.cursor,
			Inode:    stat.Inode,
			FileType: stat.FileType,
		}, true, nil
	}
}
