package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/virtfs/vfs"
)

// seedFromHost copies the regular files and directories below src into dst.
// Other node types are skipped. It returns the number of files copied.
func seedFromHost(dst vfs.Dir, src string) (int, error) {
	files := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			return dst.CreateDir(rel)
		case d.Type().IsRegular():
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			f, err := dst.OpenFile(false, rel, vfs.OFlagCreate|vfs.OFlagExclusive, false, true, 0)
			if err != nil {
				return err
			}
			if _, err := f.WriteVectoredAt([][]byte{data}, 0); err != nil {
				return err
			}
			files++
		}
		return nil
	})
	return files, err
}

type entry struct {
	name string
	typ  vfs.FileType
	size uint64
}

// listDir returns the children of dir in listing order.
func listDir(dir vfs.Dir) ([]entry, error) {
	iter, err := dir.Readdir(vfs.CursorStart)
	if err != nil {
		return nil, err
	}
	var out []entry
	for {
		ent, ok, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if ent.Name == "." || ent.Name == ".." {
			continue
		}
		e := entry{name: ent.Name, typ: ent.FileType}
		if st, err := dir.GetPathFilestat(ent.Name, false); err == nil {
			e.size = st.Size
		}
		out = append(out, e)
	}
}

// dumpTree prints every node below dir, one per line, indented by depth.
func dumpTree(w io.Writer, dir vfs.Dir) error {
	fmt.Fprintln(w, "/")
	return dumpLevel(w, dir, 1)
}

func dumpLevel(w io.Writer, dir vfs.Dir, depth int) error {
	entries, err := listDir(dir)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		if e.typ != vfs.FileTypeDirectory {
			fmt.Fprintf(w, "%s%s (%d bytes)\n", indent, e.name, e.size)
			continue
		}
		fmt.Fprintf(w, "%s%s/\n", indent, e.name)
		sub, err := dir.OpenDir(false, e.name)
		if err != nil {
			return err
		}
		if err := dumpLevel(w, sub, depth+1); err != nil {
			return err
		}
	}
	return nil
}
