// Package runtime ties a WASI context to the execution engine.
//
// # Quick Start
//
//	ctx := context.Background()
//	w := preview2.New().WithStdout(os.Stdout)
//	defer w.Close()
//
//	rt, err := runtime.New(ctx, w, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	code, err := rt.Run(ctx, wasmBytes, []string{"prog"}, nil)
//
// # Hosts
//
// New registers the preview2 interfaces backed by the WASI context:
//
//	wasi:io/error, wasi:io/poll, wasi:io/streams
//	wasi:clocks/monotonic-clock, wasi:clocks/wall-clock
//	wasi:filesystem/types, wasi:filesystem/preopens
//
// Lookups accept any import version with the same major and minor version
// and a patch version not above the registered one.
//
// The registry is a dispatch table for embedders that call preview2 hosts
// themselves. Run does not bind it to guest imports: preview1 guests reach
// the filesystem through the engine's wazero mount.
//
// # Running modules
//
// Run executes a preview1 command module. Every preopen of the WASI context
// is mounted at its guest path, stdio is routed through the context's
// streams and the guest wall clock reads the context's clock.
package runtime
