package memfs

import (
	"testing"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/wippyai/virtfs/errors"
	"github.com/wippyai/virtfs/vfs"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	EnableInvariantsCheck()
}

func newTestFS(t *testing.T) (*Filesystem, *timeutil.SimulatedClock) {
	t.Helper()
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(testEpoch)
	return New(vfs.ClockFunc(func(time.Duration) time.Time { return clock.Now() }), 7), clock
}

func mustCreate(t *testing.T, d vfs.Dir, path string) *File {
	t.Helper()
	f, err := d.OpenFile(false, path, vfs.OFlagCreate|vfs.OFlagExclusive, true, true, 0)
	if err != nil {
		t.Fatalf("create %q: %v", path, err)
	}
	return f.(*File)
}

func mustOpen(t *testing.T, d vfs.Dir, path string, read, write bool, flags vfs.FdFlags) *File {
	t.Helper()
	f, err := d.OpenFile(false, path, 0, read, write, flags)
	if err != nil {
		t.Fatalf("open %q: %v", path, err)
	}
	return f.(*File)
}

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := errors.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func listAll(t *testing.T, d vfs.Dir, cursor vfs.Cursor) []vfs.ReaddirEntity {
	t.Helper()
	it, err := d.Readdir(cursor)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var out []vfs.ReaddirEntity
	for {
		ent, ok, err := it.Next()
		if err != nil {
			t.Fatalf("readdir next: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, ent)
	}
}
