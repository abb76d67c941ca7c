package m3g

import "iter"

// Table is the ordered, append-only arena of decoded objects. Index 0 is
// the null reference and objects are addressed from 1 in encounter order.
//
// A Table has a single writer. Once Close is called it is frozen against
// appends and may be read concurrently.
type Table struct {
	objects []Object
	index   map[Object]uint32
	closed  bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[Object]uint32)}
}

// Append adds obj and returns its index. It panics on a closed table.
func (t *Table) Append(obj Object) uint32 {
	if t.closed {
		panic("m3g: append to closed table")
	}
	t.objects = append(t.objects, obj)
	i := uint32(len(t.objects))
	if _, dup := t.index[obj]; !dup {
		t.index[obj] = i
	}
	return i
}

// Get returns the object at index i. Get(0) and out-of-range indices
// report false.
func (t *Table) Get(i uint32) (Object, bool) {
	if i == 0 || uint64(i) > uint64(len(t.objects)) {
		return nil, false
	}
	return t.objects[i-1], true
}

// Len returns the number of objects.
func (t *Table) Len() int {
	return len(t.objects)
}

// IndexOf returns the index obj was appended at.
func (t *Table) IndexOf(obj Object) (uint32, bool) {
	i, ok := t.index[obj]
	return i, ok
}

// Close freezes the table.
func (t *Table) Close() {
	t.closed = true
}

// Closed reports whether Close has been called.
func (t *Table) Closed() bool {
	return t.closed
}

// All yields every object with its index, in table order.
func (t *Table) All() iter.Seq2[uint32, Object] {
	return func(yield func(uint32, Object) bool) {
		for i, obj := range t.objects {
			if !yield(uint32(i+1), obj) {
				return
			}
		}
	}
}
