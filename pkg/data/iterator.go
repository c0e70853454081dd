package data

import (
	"unsafe"

	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// Iterator walks an array without knowing its element type. It moves a raw
// cursor by BytesPerElement and reads and writes through a getter and setter
// bound to the element type.
//
//	it := arr.Iterator()
//	for it.Next() {
//		fmt.Println(it.Value())
//	}
type Iterator struct {
	id   types.ID
	base unsafe.Pointer
	size uintptr
	n    int
	idx  int

	get func(unsafe.Pointer) Value
	set func(unsafe.Pointer, Value) bool
}

func (a *TypedArray[T]) Iterator() *Iterator {
	var zero T
	return &Iterator{
		id:   a.TypeID(),
		base: unsafe.Pointer(unsafe.SliceData(a.data)),
		size: unsafe.Sizeof(zero),
		n:    len(a.data),
		idx:  -1,
		get:  func(p unsafe.Pointer) Value { return NewValue(*(*T)(p)) },
		set:  func(p unsafe.Pointer, v Value) bool { return storeValue((*T)(p), v) },
	}
}

// Next advances to the next element. The first call moves to element 0.
func (it *Iterator) Next() bool {
	if it.idx < it.n {
		it.idx++
	}
	return it.idx < it.n
}

// Seek positions the iterator at element i.
func (it *Iterator) Seek(i int) bool {
	if i < 0 || i >= it.n {
		reportRange("cannot seek to %d in %s of length %d", i, it.id.ArrayName(), it.n)
		return false
	}
	it.idx = i
	return true
}

func (it *Iterator) Index() int { return it.idx }

func (it *Iterator) Len() int { return it.n }

func (it *Iterator) TypeID() types.ID { return it.id }

func (it *Iterator) current() unsafe.Pointer {
	if it.idx < 0 || it.idx >= it.n {
		reportRange("iterator of %s is not positioned on an element", it.id.ArrayName())
		return nil
	}
	return unsafe.Add(it.base, uintptr(it.idx)*it.size)
}

// Value returns a copy of the current element.
func (it *Iterator) Value() Value {
	p := it.current()
	if p == nil {
		return nil
	}
	return it.get(p)
}

// Set converts v into the current element.
func (it *Iterator) Set(v Value) bool {
	p := it.current()
	if p == nil {
		return false
	}
	return it.set(p, v)
}

// storeValue converts v into *dst. Overflowed conversions store the clamped
// value and report false.
func storeValue[T types.Payload](dst *T, v Value) bool {
	if s, ok := v.(*Scalar[T]); ok {
		*dst = types.Clone(s.v)
		return true
	}
	to := types.IDOf[T]()
	if v == nil {
		reportUnsupported("cannot store an empty value into %s", to.Name())
		return false
	}
	c := Lookup(v.TypeID(), to)
	if c == nil {
		reportUnknown(v.TypeID(), to, subject(v))
		return false
	}
	tmp := &Scalar[T]{}
	rc := c.Convert(v, tmp)
	reportOverflow(rc, subject(v), to)
	*dst = tmp.v
	return rc == numeric.InRange
}
