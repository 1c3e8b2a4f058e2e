package resource

import (
	"sync"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(KindDescriptor, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok := table.GetTyped(h, KindDescriptor); !ok {
		t.Fatal("GetTyped with correct kind failed")
	}
	if _, ok := table.GetTyped(h, KindInputStream); ok {
		t.Fatal("GetTyped with wrong kind should fail")
	}

	val, ok = table.Remove(h)
	if !ok || val != "test" {
		t.Fatalf("Remove = %v, %v", val, ok)
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if _, ok := table.Remove(h); ok {
		t.Fatal("Remove of a dropped handle should fail")
	}
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable()
	h := table.Insert(KindPollable, 42)

	v, ok := Lookup[int](table, h, KindPollable)
	if !ok || v != 42 {
		t.Fatalf("Lookup = %v, %v", v, ok)
	}
	if _, ok := Lookup[string](table, h, KindPollable); ok {
		t.Fatal("Lookup with wrong Go type should fail")
	}
	if _, ok := Lookup[int](table, h, KindError); ok {
		t.Fatal("Lookup with wrong kind should fail")
	}
}

func TestTable_InvalidHandle(t *testing.T) {
	table := NewTable()

	for _, h := range []Handle{0, 1, 100} {
		if _, ok := table.Get(h); ok {
			t.Errorf("Get(%d) should fail", h)
		}
		if table.Borrow(h) {
			t.Errorf("Borrow(%d) should fail", h)
		}
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable()

	h1 := table.Insert(KindDescriptor, "a")
	h2 := table.Insert(KindDescriptor, "b")
	table.Remove(h1)

	h3 := table.Insert(KindDescriptor, "c")
	if h3 != h1 {
		t.Fatalf("Expected handle %d to be reused, got %d", h1, h3)
	}
	if v, _ := table.Get(h2); v != "b" {
		t.Fatalf("handle %d changed value to %v", h2, v)
	}
}

func TestTable_Borrow(t *testing.T) {
	table := NewTable()
	parent := table.Insert(KindDescriptor, "dir")

	if !table.Borrow(parent) {
		t.Fatal("Borrow failed")
	}
	if _, ok := table.Remove(parent); ok {
		t.Fatal("Remove should fail with an outstanding borrow")
	}
	if !table.ReturnBorrow(parent) {
		t.Fatal("ReturnBorrow failed")
	}
	if table.ReturnBorrow(parent) {
		t.Fatal("ReturnBorrow without a borrow should fail")
	}
	if _, ok := table.Remove(parent); !ok {
		t.Fatal("Remove failed after the borrow was returned")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(KindOutputStream, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if e := obs.events[0]; e.Type != EventCreated || e.Handle != h || e.Kind != KindOutputStream {
		t.Fatalf("unexpected created event %+v", e)
	}

	table.Remove(h)
	if len(obs.events) != 2 || obs.events[1].Type != EventDropped {
		t.Fatalf("Expected a dropped event, got %+v", obs.events)
	}
}

func TestTable_ObserverFunc(t *testing.T) {
	table := NewTable()
	var created int
	table.Subscribe(ObserverFunc(func(e Event) {
		if e.Type == EventCreated {
			created++
		}
	}))

	table.Insert(KindError, "x")
	table.Insert(KindError, "y")
	if created != 2 {
		t.Fatalf("Expected 2 created events, got %d", created)
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()

	parent := table.Insert(KindDescriptor, "a")
	table.Borrow(parent)
	child := table.Insert(KindDirectoryEntryStream, &borrowingChild{table: table, parent: parent})
	table.Insert(KindDescriptor, "c")
	_ = child

	if table.Len() != 3 {
		t.Fatalf("Expected Len() == 3, got %d", table.Len())
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatalf("Expected Len() == 0 after Clear, got %d", table.Len())
	}
}

type borrowingChild struct {
	table  *Table
	parent Handle
}

func (c *borrowingChild) Drop() {
	c.table.ReturnBorrow(c.parent)
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	table.Insert(KindDescriptor, d)
	table.Insert(KindDescriptor, "b")

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.count != 1 {
		t.Fatalf("Expected Drop() on Close, called %d times", d.count)
	}
	if h := table.Insert(KindDescriptor, "c"); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
	if err := table.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	h := table.Insert(KindDescriptor, d)
	table.Remove(h)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := table.Insert(KindPollable, j)
				if _, ok := table.Get(h); !ok {
					t.Error("Get failed for a fresh handle")
				}
				table.Remove(h)
			}
		}()
	}
	wg.Wait()

	if table.Len() != 0 {
		t.Fatalf("Expected Len() == 0, got %d", table.Len())
	}
}
