// Package engine runs WASI preview1 modules on wazero over the in-memory
// filesystem.
//
// # Architecture
//
//	WazeroEngine  - Owns a wazero runtime and the shared WASI host module
//	WazeroModule  - A compiled module that can be run many times
//	RunConfig     - Arguments, environment, stdio, clock and mounted directories
//
// Each run instantiates an anonymous module, so several runs of the same
// compiled module may proceed concurrently. The directory given in
// RunConfig.Root is mounted through wazerofs and appears to the guest as
// its first preopen (fd 3). RunConfig.Mounts follow it in order.
//
// # Exit codes
//
// A guest that calls proc_exit ends the run with that code. Returning from
// _start is exit code 0. Traps and instantiation failures are returned as
// errors.
//
// # WASI adapter shims
//
// Modules produced by the component-model preview1 adapter import a few
// helper functions from wasi_snapshot_preview1 in addition to the standard
// set. InstantiateWASIWithAdapter provides them so such modules link.
package engine
