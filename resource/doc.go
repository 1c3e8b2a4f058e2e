// Package resource provides the host-side handle table that maps the integer
// handles a guest holds to descriptors, directory streams and byte streams.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	h := table.Insert(resource.KindDescriptor, desc)
//
//	// Kind-checked retrieval
//	desc, ok := resource.Lookup[*Descriptor](table, h, resource.KindDescriptor)
//
//	// Remove and get value
//	value, ok := table.Remove(h)
//
// Handle 0 is never issued. Freed handles are reused, most recently freed first.
//
// # Borrows
//
// A child resource that reads through its parent (a directory-entry stream
// over a descriptor, a byte stream over an open file) borrows the parent's
// handle. Remove refuses to drop a handle with outstanding borrows:
//
//	table.Borrow(parent)
//	defer table.ReturnBorrow(parent)
//
// # Observers
//
// Observers are notified when handles are created and dropped:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    logger.Debug("handle event", zap.Uint32("handle", uint32(e.Handle)))
//	}))
//
// Values implementing Dropper are dropped when removed and on Close.
package resource
