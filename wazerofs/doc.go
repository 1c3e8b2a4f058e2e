// Package wazerofs mounts a vfs.Dir into a wazero runtime.
//
// FS implements the experimental/sys.FS interface of wazero so WASI
// preview1 guests see the in-memory filesystem as their root. Paths arrive
// relative to the mount point and are resolved by the vfs.Dir itself.
//
// Usage:
//
//	fs := memfs.New(clock, 0)
//	fsConfig := wazero.NewFSConfig().(sysfs.FSConfig).WithSysFSMount(wazerofs.New(fs.Root()), "/")
//	moduleConfig := wazero.NewModuleConfig().WithFSConfig(fsConfig)
//
// Renames, symbolic links and mode changes are not supported and fail with
// ENOSYS.
package wazerofs
