// Package virtfs is an in-memory hierarchical filesystem for sandboxed
// WebAssembly hosts.
//
// Guests never see host paths. They receive directory capabilities and
// reach files only by resolving relative paths below them. Files are byte
// buffers held in memory, shared by every hard link and open handle.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	virtfs/
//	├── vfs/             Dir and File capability interfaces, shared types, clocks
//	├── memfs/           The in-memory engine implementing vfs
//	├── errors/          Structured error kinds returned by the engine
//	├── resource/        Resource handle table implementation
//	├── wasi/preview2/   WASI preview2 host interfaces over the engine
//	├── wazerofs/        Mounts a vfs.Dir into wazero
//	├── engine/          Runs WASI preview1 modules with the mounted filesystem
//	├── runtime/         Binds a WASI context and its hosts to the engine
//	└── cmd/run/         Command-line runner and filesystem browser
//
// # Quick Start
//
// Build a filesystem and work with it directly:
//
//	fs := memfs.New(vfs.NewSystemClock(timeutil.RealClock()), 0)
//	root := fs.Root()
//
//	if err := root.CreateDir("data"); err != nil {
//	    log.Fatal(err)
//	}
//	f, err := root.OpenFile(false, "data/out.txt", vfs.OFlagCreate, true, true, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f.WriteVectored([][]byte{[]byte("hello")})
//
// Or run a WASI module against it:
//
//	w := preview2.New().WithFilesystem(fs)
//	rt, _ := runtime.New(ctx, w, nil)
//	defer rt.Close(ctx)
//	code, err := rt.Run(ctx, wasmBytes, []string{"prog"}, nil)
//
// # Errors
//
// Every engine operation fails with an *errors.Error carrying a Kind. Host
// adapters translate kinds into their own vocabulary: WASI preview2 error
// codes in wasi/preview2/filesystem and errno values in wazerofs.
//
// # Concurrency
//
// Nodes are guarded by non-blocking reader/writer guards. Conflicting
// concurrent access to the same node is a programming error and panics
// instead of blocking. Hosts serialize guest calls per instance.
package virtfs
