package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/wippyai/virtfs/engine"
	"github.com/wippyai/virtfs/internal/wasmtest"
	"github.com/wippyai/virtfs/memfs"
	"github.com/wippyai/virtfs/vfs"
	"github.com/wippyai/virtfs/wasi/preview2"
)

func newTestWASI(t *testing.T) *preview2.WASI {
	t.Helper()
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	sc := vfs.NewSystemClock(clock)
	w := preview2.New().WithClock(sc).WithFilesystem(memfs.New(sc, 0))
	t.Cleanup(w.Close)
	return w
}

func TestWASIRegistration(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, newTestWASI(t), nil)
	if err != nil {
		t.Fatalf("create runtime: %v", err)
	}
	defer rt.Close(ctx)

	want := []string{
		"wasi:clocks/monotonic-clock@0.2.8",
		"wasi:clocks/wall-clock@0.2.3",
		"wasi:filesystem/preopens@0.2.3",
		"wasi:filesystem/types@0.2.3",
		"wasi:io/error@0.2.8",
		"wasi:io/poll@0.2.8",
		"wasi:io/streams@0.2.8",
	}
	got := rt.Hosts().Namespaces()
	if len(got) != len(want) {
		t.Fatalf("namespaces = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("namespace[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	for _, fn := range []string{
		"[method]descriptor.open-at",
		"[method]descriptor.read-directory",
		"[method]directory-entry-stream.read-directory-entry",
		"filesystem-error-code",
	} {
		if _, ok := rt.Hosts().Lookup("wasi:filesystem/types@0.2.3", fn); !ok {
			t.Errorf("missing %s", fn)
		}
	}
	if _, ok := rt.Hosts().Lookup("wasi:filesystem/preopens@0.2.3", "get-directories"); !ok {
		t.Error("missing get-directories")
	}
	if rt.Hosts().Count() < 40 {
		t.Errorf("only %d functions registered", rt.Hosts().Count())
	}
}

func TestHostRegistry_VersionMatching(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, newTestWASI(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	tests := []struct {
		namespace string
		ok        bool
	}{
		{"wasi:filesystem/preopens@0.2.3", true},
		{"wasi:filesystem/preopens@0.2.0", true},
		{"wasi:filesystem/preopens@0.2.4", false},
		{"wasi:filesystem/preopens@0.3.0", false},
		{"wasi:filesystem/preopens", false},
		{"wasi:filesystem/preopen@0.2.0", false},
	}
	for _, tc := range tests {
		_, ok := rt.Hosts().Lookup(tc.namespace, "get-directories")
		if ok != tc.ok {
			t.Errorf("Lookup(%q) = %v, want %v", tc.namespace, ok, tc.ok)
		}
	}
}

type emptyHost struct{ ns string }

func (h emptyHost) Namespace() string        { return h.ns }
func (h emptyHost) Register() map[string]any { return nil }

type oneFuncHost struct{}

func (oneFuncHost) Namespace() string { return "test:pkg/api@1.0.0" }
func (oneFuncHost) Register() map[string]any {
	return map[string]any{"ping": func() string { return "pong" }}
}

func TestHostRegistry_RegisterHost(t *testing.T) {
	r := NewHostRegistry()
	if err := r.RegisterHost(emptyHost{}); err == nil {
		t.Error("expected error for empty namespace")
	}
	if err := r.RegisterHost(emptyHost{ns: "test:pkg/empty@1.0.0"}); err == nil {
		t.Error("expected error for host without functions")
	}
	if err := r.RegisterHost(oneFuncHost{}); err != nil {
		t.Fatal(err)
	}
	fn, ok := r.Lookup("test:pkg/api@1.0.0", "ping")
	if !ok {
		t.Fatal("ping not found")
	}
	if got := fn.(func() string)(); got != "pong" {
		t.Errorf("ping() = %q", got)
	}
	if _, ok := r.Lookup("test:pkg/api@1.0.0", "missing"); ok {
		t.Error("unexpected function")
	}
	if fns := r.Functions("test:pkg/api@1.0.0"); len(fns) != 1 || fns[0] != "ping" {
		t.Errorf("Functions = %v", fns)
	}
}

func TestRuntime_RunUsesPreopens(t *testing.T) {
	ctx := context.Background()
	w := newTestWASI(t)
	rt, err := New(ctx, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	code, err := rt.Run(ctx, wasmtest.MkdirModule(), []string{"mkdir"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	st, err := w.Filesystem().Root().GetPathFilestat("made", false)
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if st.FileType != vfs.FileTypeDirectory {
		t.Errorf("type = %v", st.FileType)
	}
}

func TestRuntime_RunWritesStdout(t *testing.T) {
	ctx := context.Background()
	w := newTestWASI(t)
	rt, err := New(ctx, w, &engine.Config{MemoryLimitPages: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	code, err := rt.Run(ctx, wasmtest.StdoutModule(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got := string(w.Stdout()); got != "hello" {
		t.Errorf("stdout = %q", got)
	}
}

func TestStreamReader(t *testing.T) {
	r := streamReader{preview2.NewInputStreamResource([]byte("abc"))}
	buf := make([]byte, 2)
	n, err := r.Read(buf)
	if err != nil || string(buf[:n]) != "ab" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}
	n, err = r.Read(buf)
	if err != nil || string(buf[:n]) != "c" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}
	if _, err := r.Read(buf); err == nil {
		t.Fatal("expected EOF")
	}
}
