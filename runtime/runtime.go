package runtime

import (
	"context"
	"io"

	"github.com/wippyai/virtfs/engine"
	"github.com/wippyai/virtfs/wasi/preview2"
)

type Runtime struct {
	engine *engine.WazeroEngine
	wasi   *preview2.WASI
	hosts  *HostRegistry
}

// New creates an engine and registers the preview2 hosts backed by w.
// A nil cfg uses the engine defaults.
func New(ctx context.Context, w *preview2.WASI, cfg *engine.Config) (*Runtime, error) {
	eng, err := engine.NewWazeroEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		engine: eng,
		wasi:   w,
		hosts:  NewHostRegistry(),
	}
	if err := r.RegisterWASI(w); err != nil {
		eng.Close(ctx)
		return nil, err
	}
	return r, nil
}

// Close releases the engine. The WASI context is owned by the caller.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}

func (r *Runtime) RegisterHost(h Host) error {
	return r.hosts.RegisterHost(h)
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

func (r *Runtime) WASI() *preview2.WASI {
	return r.wasi
}

// Run executes a preview1 command module against the WASI context and
// returns its exit code.
func (r *Runtime) Run(ctx context.Context, wasm []byte, args []string, env []engine.EnvVar) (uint32, error) {
	return r.engine.Run(ctx, wasm, r.runConfig(args, env))
}

func (r *Runtime) runConfig(args []string, env []engine.EnvVar) engine.RunConfig {
	cfg := engine.RunConfig{
		Args:   args,
		Env:    env,
		Stdin:  streamReader{r.wasi.Stdin()},
		Stdout: streamWriter{r.wasi.StdoutResource()},
		Stderr: streamWriter{r.wasi.StderrResource()},
		Clock:  r.wasi.Clock(),
	}
	for _, p := range r.wasi.Preopens() {
		cfg.Mounts = append(cfg.Mounts, engine.Mount{Dir: p.Dir, GuestPath: p.GuestPath})
	}
	return cfg
}

// streamReader reads the guest's stdin from an input stream.
// A closed stream reads as EOF.
type streamReader struct {
	s *preview2.InputStreamResource
}

func (r streamReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data, err := r.s.Read(uint64(len(p)))
	if err != nil {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

type streamWriter struct {
	s *preview2.OutputStreamResource
}

func (w streamWriter) Write(p []byte) (int, error) {
	if err := w.s.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
