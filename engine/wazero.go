package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"github.com/tetratelabs/wazero/experimental/sysfs"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/virtfs/vfs"
	"github.com/wippyai/virtfs/wazerofs"
)

// WazeroEngine runs WASI preview1 modules using the wazero runtime
type WazeroEngine struct {
	runtime      wazero.Runtime
	wasiInitMu   sync.Mutex
	wasiInitDone atomic.Bool
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	// This allows atomic operations and shared memory within WASM modules.
	EnableThreads bool
}

// NewWazeroEngine creates a new engine. cfg may be nil.
func NewWazeroEngine(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.EnableThreads {
			runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &WazeroEngine{runtime: runtime}, nil
}

func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// InitWASI instantiates the WASI singleton for this engine's runtime.
// Safe for concurrent calls.
func (e *WazeroEngine) InitWASI(ctx context.Context) error {
	if e.wasiInitDone.Load() {
		return nil
	}

	e.wasiInitMu.Lock()
	defer e.wasiInitMu.Unlock()

	if e.wasiInitDone.Load() {
		return nil
	}

	if e.runtime.Module(wasiModuleName) != nil {
		e.wasiInitDone.Store(true)
		return nil
	}

	_, err := InstantiateWASIWithAdapter(ctx, e.runtime)
	if err != nil {
		// If another path initialized WASI concurrently in the same runtime,
		// treat it as success and mark done.
		if e.runtime.Module(wasiModuleName) == nil {
			return fmt.Errorf("instantiate WASI: %w", err)
		}
	}

	e.wasiInitDone.Store(true)
	return nil
}

// WazeroModule is a compiled WASM module
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
}

// LoadModule compiles wasmBytes for later runs.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	return &WazeroModule{engine: e, compiled: compiled}, nil
}

// Close releases the compiled code.
func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// RunConfig describes one execution of a module.
type RunConfig struct {
	// Args are the program arguments, starting with the program name.
	Args []string
	// Env entries are passed in order.
	Env []EnvVar

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Root is mounted at GuestPath. No filesystem is visible when nil.
	Root vfs.Dir
	// GuestPath defaults to "/".
	GuestPath string
	// Mounts are additional directories, mounted after Root.
	Mounts []Mount

	// Clock backs the guest's wall clock. The host clock is used when nil.
	Clock vfs.Clock
}

// Mount pairs a directory with the guest path it is visible at.
type Mount struct {
	Dir       vfs.Dir
	GuestPath string
}

type EnvVar struct {
	Key   string
	Value string
}

func (c *RunConfig) moduleConfig() wazero.ModuleConfig {
	mc := wazero.NewModuleConfig().
		WithName("").
		WithArgs(c.Args...).
		WithSysNanotime().
		WithSysNanosleep()

	for _, kv := range c.Env {
		mc = mc.WithEnv(kv.Key, kv.Value)
	}
	if c.Stdin != nil {
		mc = mc.WithStdin(c.Stdin)
	}
	if c.Stdout != nil {
		mc = mc.WithStdout(c.Stdout)
	}
	if c.Stderr != nil {
		mc = mc.WithStderr(c.Stderr)
	}

	if c.Clock != nil {
		clock := c.Clock
		mc = mc.WithWalltime(func() (int64, int32) {
			now := clock.Now(0)
			return now.Unix(), int32(now.Nanosecond())
		}, sys.ClockResolution(1))
	} else {
		mc = mc.WithSysWalltime()
	}

	mounts := c.Mounts
	if c.Root != nil {
		mounts = append([]Mount{{Dir: c.Root, GuestPath: c.GuestPath}}, mounts...)
	}
	if len(mounts) > 0 {
		fsCfg := wazero.NewFSConfig()
		for _, m := range mounts {
			guestPath := m.GuestPath
			if guestPath == "" {
				guestPath = "/"
			}
			fsCfg = fsCfg.(sysfs.FSConfig).WithSysFSMount(wazerofs.New(m.Dir), guestPath)
		}
		mc = mc.WithFSConfig(fsCfg)
	}
	return mc
}

// Run instantiates the module and runs its _start function to completion.
// It returns the guest's exit code.
func (m *WazeroModule) Run(ctx context.Context, cfg RunConfig) (uint32, error) {
	if err := m.engine.InitWASI(ctx); err != nil {
		return 0, err
	}

	Logger().Debug("running module",
		zap.Strings("args", cfg.Args),
		zap.Bool("mounted", cfg.Root != nil),
		zap.Int("mounts", len(cfg.Mounts)))

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, cfg.moduleConfig())
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return exitErr.ExitCode(), ctxErr
			}
			Logger().Debug("module exited", zap.Uint32("code", exitErr.ExitCode()))
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("instantiate: %w", err)
	}
	// proc_exit(0) during _start leaves no module behind.
	if mod != nil {
		if err := mod.Close(ctx); err != nil {
			return 0, fmt.Errorf("close instance: %w", err)
		}
	}
	return 0, nil
}

// Run compiles wasmBytes, runs it once and releases the compiled code.
func (e *WazeroEngine) Run(ctx context.Context, wasmBytes []byte, cfg RunConfig) (uint32, error) {
	mod, err := e.LoadModule(ctx, wasmBytes)
	if err != nil {
		return 0, err
	}
	defer mod.Close(ctx)
	return mod.Run(ctx, cfg)
}
