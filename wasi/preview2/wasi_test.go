package preview2

import (
	"bytes"
	"testing"

	"github.com/wippyai/virtfs/vfs"
)

func TestWASI_DefaultFilesystem(t *testing.T) {
	wasi := New()
	defer wasi.Close()

	if wasi.Filesystem() == nil {
		t.Fatal("expected a filesystem")
	}
	preopens := wasi.Preopens()
	if len(preopens) != 1 || preopens[0].GuestPath != "/" {
		t.Fatalf("unexpected preopens %+v", preopens)
	}
	stat, err := preopens[0].Dir.GetFilestat()
	if err != nil {
		t.Fatal(err)
	}
	if stat.Inode != 0 || stat.FileType != vfs.FileTypeDirectory {
		t.Fatalf("preopen should be the root directory, got %+v", stat)
	}
}

func TestWASI_WithFilesystem(t *testing.T) {
	fs, _ := newTestFS(t)
	if err := fs.Root().CreateDir("data"); err != nil {
		t.Fatal(err)
	}
	data, err := fs.Root().OpenDir(false, "data")
	if err != nil {
		t.Fatal(err)
	}

	wasi := New().WithFilesystem(fs).WithPreopen("/data", data)
	defer wasi.Close()

	if wasi.Filesystem() != fs {
		t.Fatal("WithFilesystem did not take effect")
	}
	preopens := wasi.Preopens()
	if len(preopens) != 2 || preopens[1].GuestPath != "/data" {
		t.Fatalf("unexpected preopens %+v", preopens)
	}
}

func TestWASI_Stdio(t *testing.T) {
	var stderr bytes.Buffer
	wasi := New().WithStdin([]byte("input")).WithStderr(&stderr)
	defer wasi.Close()

	data, err := wasi.Stdin().Read(100)
	if err != nil || string(data) != "input" {
		t.Fatalf("stdin = %q, %v", data, err)
	}

	if err := wasi.StdoutResource().Write([]byte("out")); err != nil {
		t.Fatal(err)
	}
	if string(wasi.Stdout()) != "out" {
		t.Fatalf("stdout = %q", wasi.Stdout())
	}

	if err := wasi.StderrResource().Write([]byte("err")); err != nil {
		t.Fatal(err)
	}
	if stderr.String() != "err" {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestWASI_CloseClearsResources(t *testing.T) {
	wasi := New()
	wasi.Resources().Add(&PollableResource{})
	wasi.Resources().Add(NewDirDescriptor(wasi.Filesystem().Root(), DescriptorRead))

	wasi.Close()
	if wasi.Resources().Len() != 0 {
		t.Fatalf("Len() = %d after Close", wasi.Resources().Len())
	}
}
