package resource

import (
	"sync"
)

// Table maps handles to host values and notifies observers of their lifecycle.
type Table struct {
	slots     *slots
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{slots: newSlots()}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *Table) Insert(kind Kind, value any) Handle {
	handle, err := t.slots.create(kind, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})
	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	value, _, ok := t.slots.get(handle)
	return value, ok
}

// GetTyped retrieves a value only if it was inserted with the expected kind.
func (t *Table) GetTyped(handle Handle, kind Kind) (any, bool) {
	value, actual, ok := t.slots.get(handle)
	if !ok || actual != kind {
		return nil, false
	}
	return value, true
}

// Lookup retrieves a value of the expected kind and Go type.
func Lookup[T any](t *Table, handle Handle, kind Kind) (T, bool) {
	var zero T
	value, ok := t.GetTyped(handle, kind)
	if !ok {
		return zero, false
	}
	v, ok := value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Remove drops a resource and returns (value, true) if found. A handle with
// outstanding borrows is not removed.
func (t *Table) Remove(handle Handle) (any, bool) {
	value, kind, err := t.slots.drop(handle)
	if err != nil {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		Kind:   kind,
		Value:  value,
	})
	return value, true
}

// Borrow records that a child resource depends on handle.
func (t *Table) Borrow(handle Handle) bool {
	return t.slots.borrow(handle, 1)
}

// ReturnBorrow releases a borrow taken with Borrow.
func (t *Table) ReturnBorrow(handle Handle) bool {
	return t.slots.borrow(handle, -1)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of active resources.
func (t *Table) Len() int {
	return t.slots.len()
}

// Clear drops all resources. Children are dropped before the parents they borrow.
func (t *Table) Clear() {
	for {
		removed := 0
		handles := t.slots.handles()
		for i := len(handles) - 1; i >= 0; i-- {
			if _, ok := t.Remove(handles[i]); ok {
				removed++
			}
		}
		if removed == 0 || removed == len(handles) {
			return
		}
	}
}

// Close drops all resources and stops accepting inserts.
func (t *Table) Close() error {
	for _, value := range t.slots.close() {
		if d, ok := value.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
