package memfs

import (
	"fmt"
	"testing"

	"github.com/wippyai/virtfs/vfs"
)

func TestReaddir_Complete(t *testing.T) {
	fs, _ := newTestFS(t)
	root := fs.Root()

	const n = 5
	for i := range n {
		mustCreate(t, root, fmt.Sprintf("f%d", n-i))
	}
	if err := root.CreateDir("sub"); err != nil {
		t.Fatal(err)
	}

	ents := listAll(t, root, vfs.CursorStart)
	if len(ents) != n+1+2 {
		t.Fatalf("got %d entries, want %d", len(ents), n+3)
	}
	want := []string{".", "..", "f1", "f2", "f3", "f4", "f5", "sub"}
	for i, ent := range ents {
		if ent.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, ent.Name, want[i])
		}
		if ent.Next != vfs.Cursor(i+1) {
			t.Errorf("entry %d next = %d, want %d", i, ent.Next, i+1)
		}
	}
	if ents[0].Inode != 0 || ents[1].Inode != 0 {
		t.Errorf("root . and .. should both be serial 0: %+v %+v", ents[0], ents[1])
	}
	if ents[0].FileType != vfs.FileTypeDirectory || ents[7].FileType != vfs.FileTypeDirectory {
		t.Error("directory entries should report directory type")
	}
	if ents[2].FileType != vfs.FileTypeRegularFile {
		t.Error("file entries should report regular-file type")
	}
}

func TestReaddir_Restart(t *testing.T) {
	fs, _ := newTestFS(t)
	root := fs.Root()
	for _, name := range []string{"c", "a", "b", "d"} {
		mustCreate(t, root, name)
	}

	full := listAll(t, root, vfs.CursorStart)
	for i, ent := range full {
		suffix := listAll(t, root, ent.Next)
		if len(suffix) != len(full)-i-1 {
			t.Fatalf("restart at %d: got %d entries, want %d", ent.Next, len(suffix), len(full)-i-1)
		}
		for j, s := range suffix {
			if s != full[i+1+j] {
				t.Fatalf("restart at %d: entry %d = %+v, want %+v", ent.Next, j, s, full[i+1+j])
			}
		}
	}

	if rest := listAll(t, root, vfs.Cursor(1000)); len(rest) != 0 {
		t.Fatalf("listing past the end returned %d entries", len(rest))
	}
}

func TestReaddir_Empty(t *testing.T) {
	fs, _ := newTestFS(t)
	root := fs.Root()
	if err := root.CreateDir("e"); err != nil {
		t.Fatal(err)
	}
	sub, err := root.OpenDir(false, "e")
	if err != nil {
		t.Fatal(err)
	}

	ents := listAll(t, sub, vfs.CursorStart)
	if len(ents) != 2 {
		t.Fatalf("got %d entries, want 2", len(ents))
	}
	self, _ := sub.GetFilestat()
	if ents[0].Inode != self.Inode || ents[1].Inode != 0 {
		t.Fatalf("unexpected entries %+v", ents)
	}
}

func TestReaddir_SkipsRemovedChildren(t *testing.T) {
	fs, _ := newTestFS(t)
	root := fs.Root()
	mustCreate(t, root, "a")
	mustCreate(t, root, "b")

	it, err := root.Readdir(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := root.UnlinkFile("a"); err != nil {
		t.Fatal(err)
	}
	ent, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("Next = %v, %v", ok, err)
	}
	if ent.Name != "b" || ent.Next != 4 {
		t.Fatalf("entry = %+v, want b with next 4", ent)
	}
}
