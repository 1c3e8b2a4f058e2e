// Package memfs implements the vfs capabilities over a tree of directories and
// files held entirely in memory.
//
// A Filesystem owns the root directory. Directories own their children through
// a name map; a child directory points back at its parent weakly, so detaching a
// subtree lets the garbage collector reclaim it. A file node is reachable from
// every name that links it and from every open File, which is how content
// survives UnlinkFile while a handle is still open.
//
// Paths are walked component by component with no normalization:
//
//	fs := memfs.New(clock, 0)
//	root := fs.Root()
//	_ = root.CreateDir("etc")
//	f, err := root.OpenFile(false, "etc/hosts", vfs.OFlagCreate, true, true, 0)
//
// "." and ".." are synthesized only in directory listings. OpenDir accepts "."
// as the final component and returns the directory itself; ".." never ascends.
//
// A Filesystem is driven by one goroutine at a time. Each node carries a
// guard that panics when an exclusive access overlaps any other access of the
// same node, so unsynchronized sharing fails fast instead of corrupting state.
package memfs
