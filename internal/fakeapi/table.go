package fakeapi

import (
	"sync"
)

// EventType identifies a handle lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	if t == EventDropped {
		return "dropped"
	}
	return "created"
}

// Event is delivered to observers on handle creation and drop.
type Event struct {
	Type   EventType
	Object Object
	Handle uint64
	Parent uint64
}

// Observer receives handle lifecycle events.
type Observer interface {
	OnHandleEvent(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

// OnHandleEvent calls f.
func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

type entry struct {
	object Object
	parent uint64
	value  uint64
	valid  bool
}

// Table stores live handles. Handle 0 is never issued.
type Table struct {
	entries   []entry
	freeList  []uint64
	observers []Observer
	mu        sync.Mutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint64, 0, 16),
	}
}

// Create issues a handle for an object of the given type.
func (t *Table) Create(object Object, parent, value uint64) uint64 {
	t.mu.Lock()
	e := entry{object: object, parent: parent, value: value, valid: true}

	var h uint64
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
	} else {
		t.entries = append(t.entries, e)
		h = uint64(len(t.entries))
	}
	observers := t.observers
	t.mu.Unlock()

	notify(observers, Event{Type: EventCreated, Object: object, Handle: h, Parent: parent})
	return h
}

// Lookup returns the object type, parent and value of a live handle.
func (t *Table) Lookup(h uint64) (object Object, parent, value uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.get(h)
	if !ok {
		return 0, 0, 0, false
	}
	return e.object, e.parent, e.value, true
}

// Is reports whether h is a live handle of the given type.
func (t *Table) Is(h uint64, object Object) bool {
	got, _, _, ok := t.Lookup(h)
	return ok && got == object
}

// Drop frees a live handle. It reports false for null, unknown or
// already dropped handles.
func (t *Table) Drop(h uint64) bool {
	t.mu.Lock()
	e, ok := t.get(h)
	if !ok {
		t.mu.Unlock()
		return false
	}
	t.entries[h-1] = entry{}
	t.freeList = append(t.freeList, h)
	observers := t.observers
	t.mu.Unlock()

	notify(observers, Event{Type: EventDropped, Object: e.object, Handle: h, Parent: e.parent})
	return true
}

// Children returns the live handles whose parent is h, in issue order.
func (t *Table) Children(h uint64, object Object) []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []uint64
	for i, e := range t.entries {
		if e.valid && e.parent == h && e.object == object {
			out = append(out, uint64(i+1))
		}
	}
	return out
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries) - len(t.freeList)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers[:len(t.observers):len(t.observers)], o)
}

func (t *Table) get(h uint64) (entry, bool) {
	if h == 0 || h > uint64(len(t.entries)) {
		return entry{}, false
	}
	e := t.entries[h-1]
	return e, e.valid
}

func notify(observers []Observer, e Event) {
	for _, o := range observers {
		o.OnHandleEvent(e)
	}
}
