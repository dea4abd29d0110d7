package handle

import (
	"fmt"
	"sort"
	"unsafe"
)

// Entry associates a handle type with its object type and raw width.
type Entry struct {
	Name       string
	Parent     string
	ObjectType ObjectType
	Bits       int
}

// Table is an immutable association table between handle type names,
// object types and raw representations.
type Table struct {
	byName  map[string]int
	byType  map[ObjectType]int
	entries []Entry
}

// NewTable builds a table. Names and object types must be unique and
// object types non-zero.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byType:  make(map[ObjectType]int, len(entries)),
	}
	copy(t.entries, entries)
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].ObjectType < t.entries[j].ObjectType })

	for i, e := range t.entries {
		if e.ObjectType == Unknown {
			return nil, fmt.Errorf("handle: %q has reserved object type 0", e.Name)
		}
		if e.Bits != 32 && e.Bits != 64 {
			return nil, fmt.Errorf("handle: %q has unsupported width %d", e.Name, e.Bits)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("handle: duplicate name %q", e.Name)
		}
		if _, dup := t.byType[e.ObjectType]; dup {
			return nil, fmt.Errorf("handle: duplicate object type %d", e.ObjectType)
		}
		t.byName[e.Name] = i
		t.byType[e.ObjectType] = i
	}
	return t, nil
}

// ByName looks up a handle type by name.
func (t *Table) ByName(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// ByObjectType looks up a handle type by object type.
func (t *Table) ByObjectType(ot ObjectType) (Entry, bool) {
	i, ok := t.byType[ot]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entries returns all entries ordered by object type.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// EntryOf describes the handle type Handle[K, R].
func EntryOf[K Kind, R Raw]() Entry {
	var k K
	var r R
	return Entry{
		Name:       k.TypeName(),
		ObjectType: k.ObjectType(),
		Bits:       int(unsafe.Sizeof(r)) * 8,
	}
}

// SameSize reports whether Handle[K, R] has the size of R.
func SameSize[K Kind, R Raw]() bool {
	var r R
	return unsafe.Sizeof(Handle[K, R]{}) == unsafe.Sizeof(r)
}

type anyKind struct{}

func (anyKind) ObjectType() ObjectType { return Unknown }
func (anyKind) TypeName() string       { return "Handle" }

// Handle must stay exactly as large as its raw value.
var (
	_ [unsafe.Sizeof(Handle[anyKind, uint32]{}) - unsafe.Sizeof(uint32(0))]struct{}
	_ [unsafe.Sizeof(uint32(0)) - unsafe.Sizeof(Handle[anyKind, uint32]{})]struct{}
	_ [unsafe.Sizeof(Handle[anyKind, uint64]{}) - unsafe.Sizeof(uint64(0))]struct{}
	_ [unsafe.Sizeof(uint64(0)) - unsafe.Sizeof(Handle[anyKind, uint64]{})]struct{}
	_ [unsafe.Sizeof(Handle[anyKind, uintptr]{}) - unsafe.Sizeof(uintptr(0))]struct{}
	_ [unsafe.Sizeof(uintptr(0)) - unsafe.Sizeof(Handle[anyKind, uintptr]{})]struct{}
)
