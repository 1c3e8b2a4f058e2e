package filesystem

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/wippyai/virtfs/memfs"
	"github.com/wippyai/virtfs/vfs"
	"github.com/wippyai/virtfs/wasi/preview2"
	"github.com/wippyai/virtfs/wasi/preview2/clocks"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	fs        *memfs.Filesystem
	clock     *timeutil.SimulatedClock
	resources *preview2.ResourceTable
	host      *TypesHost
	root      uint32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(testEpoch)
	fs := memfs.New(vfs.NewSystemClock(clock), 1)
	resources := preview2.NewResourceTable()
	root := resources.Add(preview2.NewDirDescriptor(fs.Root(),
		preview2.DescriptorRead|preview2.DescriptorMutateDirectory))
	return &fixture{
		fs:        fs,
		clock:     clock,
		resources: resources,
		host:      NewTypesHost(resources),
		root:      root,
	}
}

func (f *fixture) open(t *testing.T, path string, oflags OpenFlags, flags preview2.DescriptorFlags) uint32 {
	t.Helper()
	h, err := f.host.MethodDescriptorOpenAt(context.Background(), f.root, 0, path, oflags, flags)
	if err != nil {
		t.Fatalf("open-at %q: %v", path, err)
	}
	return h
}

func (f *fixture) writeFile(t *testing.T, path, content string) {
	t.Helper()
	h := f.open(t, path, OpenFlagCreate, preview2.DescriptorWrite)
	defer f.host.ResourceDropDescriptor(context.Background(), h)
	if _, err := f.host.MethodDescriptorWrite(context.Background(), h, []byte(content), 0); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

func wantCode(t *testing.T, err *Error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got success", code)
	}
	if err.Code != code {
		t.Fatalf("expected %s, got %s (%v)", code, err.Code, err.Unwrap())
	}
}

func TestTypesHost_MethodDescriptorGetType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "test.txt", "content")

	fileHandle := f.open(t, "test.txt", 0, preview2.DescriptorRead)
	dtype, err := f.host.MethodDescriptorGetType(ctx, fileHandle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dtype != DescriptorTypeRegularFile {
		t.Errorf("expected regular file, got %d", dtype)
	}

	dtype, err = f.host.MethodDescriptorGetType(ctx, f.root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dtype != DescriptorTypeDirectory {
		t.Errorf("expected directory, got %d", dtype)
	}
}

func TestTypesHost_MethodDescriptorRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "test.txt", "hello world")

	h := f.open(t, "test.txt", 0, preview2.DescriptorRead)

	data, end, err := f.host.MethodDescriptorRead(ctx, h, 5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" || end {
		t.Errorf("read = %q end=%v", data, end)
	}

	data, end, err = f.host.MethodDescriptorRead(ctx, h, 100, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "world" || !end {
		t.Errorf("read = %q end=%v", data, end)
	}

	data, end, err = f.host.MethodDescriptorRead(ctx, h, 10, 100)
	if err != nil {
		t.Fatalf("read past end: %v", err)
	}
	if len(data) != 0 || !end {
		t.Errorf("read past end = %q end=%v", data, end)
	}
}

func TestTypesHost_MethodDescriptorRead_Directory(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.host.MethodDescriptorRead(context.Background(), f.root, 10, 0)
	wantCode(t, err, ErrorIsDirectory)
}

func TestTypesHost_MethodDescriptorWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h := f.open(t, "out.txt", OpenFlagCreate, preview2.DescriptorRead|preview2.DescriptorWrite)
	n, err := f.host.MethodDescriptorWrite(ctx, h, []byte("abc"), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("wrote %d bytes", n)
	}

	data, _, err := f.host.MethodDescriptorRead(ctx, h, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\x00\x00abc" {
		t.Errorf("content = %q", data)
	}
}

func TestTypesHost_MethodDescriptorWrite_ReadOnlyDescriptor(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "ro.txt", "data")

	h := f.open(t, "ro.txt", 0, preview2.DescriptorRead)
	_, err := f.host.MethodDescriptorWrite(context.Background(), h, []byte("x"), 0)
	wantCode(t, err, ErrorBadDescriptor)

	err = f.host.MethodDescriptorSetSize(context.Background(), h, 0)
	wantCode(t, err, ErrorBadDescriptor)
}

func TestTypesHost_MethodDescriptorStat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "stat.txt", "12345")

	h := f.open(t, "stat.txt", 0, preview2.DescriptorRead)
	st, err := f.host.MethodDescriptorStat(ctx, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Type != DescriptorTypeRegularFile || st.Size != 5 || st.LinkCount != 1 {
		t.Errorf("unexpected stat %+v", st)
	}
	if st.StatusChangeTimestamp == nil || st.StatusChangeTimestamp.Time() != testEpoch {
		t.Errorf("ctime = %v", st.StatusChangeTimestamp)
	}

	st, err = f.host.MethodDescriptorStatAt(ctx, f.root, 0, "stat.txt")
	if err != nil {
		t.Fatal(err)
	}
	if st.Size != 5 {
		t.Errorf("stat-at size = %d", st.Size)
	}

	_, err = f.host.MethodDescriptorStatAt(ctx, f.root, 0, "missing")
	wantCode(t, err, ErrorNoEntry)
}

func TestTypesHost_MethodDescriptorSeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "seek.txt", "0123456789")

	h := f.open(t, "seek.txt", 0, preview2.DescriptorRead)

	pos, err := f.host.MethodDescriptorSeek(ctx, h, 4, io.SeekStart)
	if err != nil || pos != 4 {
		t.Fatalf("seek set = %d, %v", pos, err)
	}
	pos, err = f.host.MethodDescriptorSeek(ctx, h, 2, io.SeekCurrent)
	if err != nil || pos != 6 {
		t.Fatalf("seek cur = %d, %v", pos, err)
	}
	pos, err = f.host.MethodDescriptorSeek(ctx, h, -1, io.SeekEnd)
	if err != nil || pos != 9 {
		t.Fatalf("seek end = %d, %v", pos, err)
	}

	_, err = f.host.MethodDescriptorSeek(ctx, h, -100, io.SeekStart)
	wantCode(t, err, ErrorInvalid)
	_, err = f.host.MethodDescriptorSeek(ctx, h, 0, 7)
	wantCode(t, err, ErrorInvalid)
	_, err = f.host.MethodDescriptorSeek(ctx, f.root, 0, io.SeekStart)
	wantCode(t, err, ErrorIsDirectory)
}

func TestTypesHost_MethodDescriptorOpenAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "missing.txt", 0, preview2.DescriptorRead)
	wantCode(t, err, ErrorNoEntry)

	f.writeFile(t, "exists.txt", "x")
	_, err = f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "exists.txt",
		OpenFlagCreate|OpenFlagExclusive, preview2.DescriptorWrite)
	wantCode(t, err, ErrorExist)

	_, err = f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "/abs.txt", OpenFlagCreate, preview2.DescriptorWrite)
	wantCode(t, err, ErrorNotPermitted)

	_, err = f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "exists.txt", OpenFlagDirectory, preview2.DescriptorRead)
	wantCode(t, err, ErrorNotDirectory)

	_, err = f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "d", OpenFlagDirectory|OpenFlagCreate, preview2.DescriptorRead)
	wantCode(t, err, ErrorInvalid)

	_, err = f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "exists.txt", OpenFlagTruncate, preview2.DescriptorRead)
	wantCode(t, err, ErrorInvalid)
}

func TestTypesHost_MethodDescriptorOpenAt_Truncate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "trunc.txt", "old content")

	h := f.open(t, "trunc.txt", OpenFlagTruncate, preview2.DescriptorWrite)
	st, err := f.host.MethodDescriptorStat(ctx, h)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size != 0 {
		t.Errorf("size after truncate = %d", st.Size)
	}
}

func TestTypesHost_MethodDescriptorOpenAt_Directory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "sub"); err != nil {
		t.Fatal(err)
	}

	sub := f.open(t, "sub", OpenFlagDirectory, preview2.DescriptorRead|preview2.DescriptorMutateDirectory)
	if dtype, _ := f.host.MethodDescriptorGetType(ctx, sub); dtype != DescriptorTypeDirectory {
		t.Fatalf("expected directory, got %d", dtype)
	}

	// Opening a directory without the directory flag still yields a directory.
	plain := f.open(t, "sub", 0, preview2.DescriptorRead)
	if dtype, _ := f.host.MethodDescriptorGetType(ctx, plain); dtype != DescriptorTypeDirectory {
		t.Fatalf("expected directory, got %d", dtype)
	}

	_, err := f.host.MethodDescriptorOpenAt(ctx, f.root, 0, "sub", 0, preview2.DescriptorWrite)
	wantCode(t, err, ErrorIsDirectory)

	h, err := f.host.MethodDescriptorOpenAt(ctx, sub, 0, "inner.txt", OpenFlagCreate, preview2.DescriptorWrite)
	if err != nil {
		t.Fatal(err)
	}
	f.host.ResourceDropDescriptor(ctx, h)

	if _, err := f.host.MethodDescriptorStatAt(ctx, f.root, 0, "sub/inner.txt"); err != nil {
		t.Fatalf("file created through subdirectory not visible: %v", err)
	}
}

func TestTypesHost_ReadOnlyDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "ro"); err != nil {
		t.Fatal(err)
	}
	ro := f.open(t, "ro", OpenFlagDirectory, preview2.DescriptorRead)

	_, err := f.host.MethodDescriptorOpenAt(ctx, ro, 0, "new.txt", OpenFlagCreate, preview2.DescriptorWrite)
	wantCode(t, err, ErrorReadOnly)
	wantCode(t, f.host.MethodDescriptorCreateDirectoryAt(ctx, ro, "x"), ErrorReadOnly)
	wantCode(t, f.host.MethodDescriptorUnlinkFileAt(ctx, ro, "x"), ErrorReadOnly)
	wantCode(t, f.host.MethodDescriptorRemoveDirectoryAt(ctx, ro, "x"), ErrorReadOnly)
}

func TestTypesHost_MethodDescriptorCreateDirectoryAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "a"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "a"), ErrorExist)
	wantCode(t, f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "missing/b"), ErrorNoEntry)

	f.writeFile(t, "file", "")
	wantCode(t, f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "file/b"), ErrorNotDirectory)
}

func TestTypesHost_MethodDescriptorReadDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "b.txt", "")
	f.writeFile(t, "a.txt", "")
	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "c"); err != nil {
		t.Fatal(err)
	}

	stream, err := f.host.MethodDescriptorReadDirectory(ctx, f.root)
	if err != nil {
		t.Fatal(err)
	}

	var got []DirectoryEntry
	for {
		entry, err := f.host.MethodDirectoryEntryStreamReadDirectoryEntry(ctx, stream)
		if err != nil {
			t.Fatal(err)
		}
		if entry == nil {
			break
		}
		got = append(got, *entry)
	}

	want := []DirectoryEntry{
		{Type: DescriptorTypeRegularFile, Name: "a.txt"},
		{Type: DescriptorTypeRegularFile, Name: "b.txt"},
		{Type: DescriptorTypeDirectory, Name: "c"},
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// The stream borrows its directory.
	f.host.ResourceDropDescriptor(ctx, f.root)
	if _, ok := f.resources.Get(f.root); !ok {
		t.Fatal("directory dropped while its entry stream is alive")
	}
	f.host.ResourceDropDirectoryEntryStream(ctx, stream)
	f.host.ResourceDropDescriptor(ctx, f.root)
	if _, ok := f.resources.Get(f.root); ok {
		t.Fatal("directory still present after stream was dropped")
	}
}

func TestTypesHost_UnlinkAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "file.txt", "")
	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "dir"); err != nil {
		t.Fatal(err)
	}
	f.writeFile(t, "dir/inner", "")

	wantCode(t, f.host.MethodDescriptorUnlinkFileAt(ctx, f.root, "dir"), ErrorIsDirectory)
	wantCode(t, f.host.MethodDescriptorRemoveDirectoryAt(ctx, f.root, "file.txt"), ErrorNotDirectory)
	wantCode(t, f.host.MethodDescriptorRemoveDirectoryAt(ctx, f.root, "dir"), ErrorNotEmpty)

	if err := f.host.MethodDescriptorUnlinkFileAt(ctx, f.root, "dir/inner"); err != nil {
		t.Fatal(err)
	}
	if err := f.host.MethodDescriptorRemoveDirectoryAt(ctx, f.root, "dir"); err != nil {
		t.Fatal(err)
	}
	if err := f.host.MethodDescriptorUnlinkFileAt(ctx, f.root, "file.txt"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, f.host.MethodDescriptorUnlinkFileAt(ctx, f.root, "file.txt"), ErrorNoEntry)
}

func TestTypesHost_MethodDescriptorLinkAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "orig", "shared")
	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, f.root, "dir"); err != nil {
		t.Fatal(err)
	}

	if err := f.host.MethodDescriptorLinkAt(ctx, f.root, 0, "orig", f.root, "alias"); err != nil {
		t.Fatal(err)
	}
	st, err := f.host.MethodDescriptorStatAt(ctx, f.root, 0, "alias")
	if err != nil {
		t.Fatal(err)
	}
	if st.LinkCount != 2 {
		t.Errorf("link count = %d", st.LinkCount)
	}

	a := f.open(t, "orig", 0, preview2.DescriptorRead)
	b := f.open(t, "alias", 0, preview2.DescriptorRead)
	if !f.host.MethodDescriptorIsSameObject(ctx, a, b) {
		t.Error("hard links should be the same object")
	}
	if f.host.MethodDescriptorIsSameObject(ctx, a, f.root) {
		t.Error("file and root reported as the same object")
	}

	wantCode(t, f.host.MethodDescriptorLinkAt(ctx, f.root, 0, "dir", f.root, "dir2"), ErrorNotPermitted)
	wantCode(t, f.host.MethodDescriptorLinkAt(ctx, f.root, 0, "orig", f.root, "alias"), ErrorExist)

	other := newFixture(t)
	otherRoot := f.resources.Add(preview2.NewDirDescriptor(other.fs.Root(),
		preview2.DescriptorRead|preview2.DescriptorMutateDirectory))
	wantCode(t, f.host.MethodDescriptorLinkAt(ctx, f.root, 0, "orig", otherRoot, "x"), ErrorCrossDevice)
}

func TestTypesHost_UnsupportedOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "a", "")

	wantCode(t, f.host.MethodDescriptorRenameAt(ctx, f.root, "a", f.root, "b"), ErrorUnsupported)
	wantCode(t, f.host.MethodDescriptorSymlinkAt(ctx, f.root, "a", "l"), ErrorUnsupported)
	_, err := f.host.MethodDescriptorReadlinkAt(ctx, f.root, "a")
	wantCode(t, err, ErrorUnsupported)
	wantCode(t, f.host.MethodDescriptorSetTimesAt(ctx, f.root, 0, "a",
		NewTimestamp{Kind: NewTimestampNow}, NewTimestamp{}), ErrorUnsupported)
}

func TestTypesHost_MethodDescriptorSetTimes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "t.txt", "")
	h := f.open(t, "t.txt", 0, preview2.DescriptorRead)

	mtime := clocks.ToDatetime(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))
	f.clock.AdvanceTime(time.Hour)
	err := f.host.MethodDescriptorSetTimes(ctx, h,
		NewTimestamp{Kind: NewTimestampNow},
		NewTimestamp{Kind: NewTimestampValue, Datetime: mtime})
	if err != nil {
		t.Fatal(err)
	}

	st, err := f.host.MethodDescriptorStat(ctx, h)
	if err != nil {
		t.Fatal(err)
	}
	if *st.DataModificationTimestamp != mtime {
		t.Errorf("mtime = %+v", st.DataModificationTimestamp)
	}
	if st.DataAccessTimestamp.Time() != testEpoch.Add(time.Hour) {
		t.Errorf("atime = %v", st.DataAccessTimestamp.Time())
	}
}

func TestTypesHost_MethodDescriptorSetSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.open(t, "grow", OpenFlagCreate, preview2.DescriptorRead|preview2.DescriptorWrite)

	if err := f.host.MethodDescriptorSetSize(ctx, h, 16); err != nil {
		t.Fatal(err)
	}
	st, _ := f.host.MethodDescriptorStat(ctx, h)
	if st.Size != 16 {
		t.Errorf("size = %d", st.Size)
	}
	wantCode(t, f.host.MethodDescriptorSetSize(ctx, f.root, 0), ErrorIsDirectory)
}

func TestTypesHost_Streams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.open(t, "stream.txt", OpenFlagCreate, preview2.DescriptorRead|preview2.DescriptorWrite)

	out, err := f.host.MethodDescriptorWriteViaStream(ctx, h, 0)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := f.resources.Get(out)
	if werr := r.(*preview2.FileOutputStreamResource).Write([]byte("hello")); werr != nil {
		t.Fatal(werr)
	}

	app, err := f.host.MethodDescriptorAppendViaStream(ctx, h)
	if err != nil {
		t.Fatal(err)
	}
	r, _ = f.resources.Get(app)
	if werr := r.(*preview2.FileOutputStreamResource).Write([]byte(" world")); werr != nil {
		t.Fatal(werr)
	}

	in, err := f.host.MethodDescriptorReadViaStream(ctx, h, 6)
	if err != nil {
		t.Fatal(err)
	}
	r, _ = f.resources.Get(in)
	data, rerr := r.(*preview2.FileInputStreamResource).Read(100)
	if rerr != nil {
		t.Fatal(rerr)
	}
	if string(data) != "world" {
		t.Errorf("stream read = %q", data)
	}

	ro := f.open(t, "stream.txt", 0, preview2.DescriptorRead)
	_, err = f.host.MethodDescriptorWriteViaStream(ctx, ro, 0)
	wantCode(t, err, ErrorBadDescriptor)
	_, err = f.host.MethodDescriptorAppendViaStream(ctx, ro)
	wantCode(t, err, ErrorBadDescriptor)
}

func TestTypesHost_MethodDescriptorMetadataHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.writeFile(t, "a", "1")
	f.writeFile(t, "b", "1")

	a := f.open(t, "a", 0, preview2.DescriptorRead)
	h1, err := f.host.MethodDescriptorMetadataHash(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := f.host.MethodDescriptorMetadataHashAt(ctx, f.root, 0, "a")
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("hash of same node differs: %+v vs %+v", h1, h2)
	}
	hb, err := f.host.MethodDescriptorMetadataHashAt(ctx, f.root, 0, "b")
	if err != nil {
		t.Fatal(err)
	}
	if hb == h1 {
		t.Error("distinct nodes hashed equally")
	}
}

func TestTypesHost_MethodDescriptorGetFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.open(t, "x", OpenFlagCreate, preview2.DescriptorWrite)
	flags, err := f.host.MethodDescriptorGetFlags(ctx, h)
	if err != nil {
		t.Fatal(err)
	}
	if flags != preview2.DescriptorWrite {
		t.Errorf("flags = %b", flags)
	}

	// Neither read nor write requested yields a readable descriptor.
	h = f.open(t, "x", 0, 0)
	flags, _ = f.host.MethodDescriptorGetFlags(ctx, h)
	if flags&preview2.DescriptorRead == 0 {
		t.Errorf("flags = %b", flags)
	}
}

func TestTypesHost_BadDescriptor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.host.MethodDescriptorStat(ctx, 9999)
	wantCode(t, err, ErrorBadDescriptor)
	_, err = f.host.MethodDirectoryEntryStreamReadDirectoryEntry(ctx, f.root)
	wantCode(t, err, ErrorBadDescriptor)
	if f.host.MethodDescriptorIsSameObject(ctx, f.root, 9999) {
		t.Error("unknown handle reported as same object")
	}
}

func TestTypesHost_FilesystemErrorCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, openErr := f.fs.Root().OpenFile(false, "missing", 0, true, false, 0)
	h := f.resources.Add(preview2.NewErrorResource(openErr))
	code, ok := f.host.FilesystemErrorCode(ctx, h)
	if !ok || code != ErrorNoEntry {
		t.Errorf("code = %s, %v", code, ok)
	}

	h = f.resources.Add(preview2.NewErrorResource(io.ErrUnexpectedEOF))
	if _, ok := f.host.FilesystemErrorCode(ctx, h); ok {
		t.Error("non-filesystem error reported a code")
	}
}

func TestPreopensHost_GetDirectories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.fs.Root().CreateDir("data"); err != nil {
		t.Fatal(err)
	}
	data, err := f.fs.Root().OpenDir(false, "data")
	if err != nil {
		t.Fatal(err)
	}

	host := NewPreopensHost(f.resources, []preview2.Preopen{
		{Dir: f.fs.Root(), GuestPath: "/"},
		{Dir: data, GuestPath: "/data"},
	})
	dirs := host.GetDirectories(ctx)
	if len(dirs) != 2 || dirs[0].Path != "/" || dirs[1].Path != "/data" {
		t.Fatalf("preopens = %+v", dirs)
	}

	st, serr := f.host.MethodDescriptorStat(ctx, dirs[1].Handle)
	if serr != nil {
		t.Fatal(serr)
	}
	if st.Type != DescriptorTypeDirectory {
		t.Errorf("preopen type = %d", st.Type)
	}
	if err := f.host.MethodDescriptorCreateDirectoryAt(ctx, dirs[1].Handle, "sub"); err != nil {
		t.Fatalf("preopen should allow mutation: %v", err)
	}
}

func TestErrorCode_String(t *testing.T) {
	if ErrorNoEntry.String() != "no-entry" || ErrorCrossDevice.String() != "cross-device" {
		t.Errorf("names = %s, %s", ErrorNoEntry, ErrorCrossDevice)
	}
	if ErrorCode(200).String() != "unknown" {
		t.Error("out of range code")
	}
}
