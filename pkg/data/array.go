package data

import (
	"bytes"
	"iter"
	"strconv"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/metrics"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	stringpool "github.com/isis-group/isis-sub000/pkg/strings"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// Array is a typed, fixed length sequence of values that shares its memory
// with every view spliced from it. The only implementation is
// *TypedArray[T]; a nil Array is the empty handle.
type Array interface {
	TypeID() types.ID
	// TypeName is the kind name followed by "*".
	TypeName() string
	Len() int
	BytesPerElement() int
	IsFloat() bool
	IsInteger() bool

	// At returns a copy of element i, or nil if i is out of range.
	At(i int) Value
	// SetAt converts v into element i. It reports false if the conversion
	// is unknown or overflowed; overflowed elements hold the clamped value.
	SetAt(i int, v Value) bool
	Iterator() *Iterator
	All() iter.Seq2[int, Value]

	// Splice cuts the array into views of at most size elements each. The
	// views share this array's memory.
	Splice(size int) []Array
	// MinMax returns the smallest and largest value of the array.
	MinMax() (lo, hi Value)

	// ScalingTo computes the scaling that maps this array's value range
	// into kind id under the given policy.
	ScalingTo(id types.ID, opt numeric.Policy) ScalingPair
	// CopyTo converts into the existing dst. An unset scaling is computed
	// with the autoscale policy.
	CopyTo(dst Array, sc ScalingPair) bool
	// CopyByID converts into a new array of kind id. Empty arrays convert
	// into empty arrays without computing a scaling.
	CopyByID(id types.ID, sc ScalingPair) Array
	// ConvertByID is CopyByID, except that it returns a new share of this
	// array when no conversion is needed.
	ConvertByID(id types.ID, sc ScalingPair) Array
	// CloneToNew creates a zeroed array of the same kind.
	CloneToNew(n int) Array
	// CopyRange copies the elements start..end (inclusive) into dst at
	// dstStart. Both arrays must be of the same kind.
	CopyRange(start, end int, dst Array, dstStart int) bool
	// Compare counts the elements in [start, end) that differ from other,
	// starting at otherStart. Arrays of another kind differ everywhere.
	Compare(start, end int, other Array, otherStart int) int

	// EndianSwap reverses the byte order of every component in place.
	EndianSwap()
	// Bytes exposes the memory of plain kinds; nil for kinds holding
	// pointers.
	Bytes() []byte

	// ToString renders "len#v1|v2|...", labeled appends the type name.
	ToString(labeled bool) string
	String() string

	// UseCount is the number of live handles sharing the memory.
	UseCount() int64
	// Retain returns a new handle sharing this array's memory.
	Retain() Array
	// Release drops this handle. The memory's release callback runs after
	// the last handle was released.
	Release()

	MarshalJSON() ([]byte, error)

	sealed()
}

// sharedBuffer counts the handles of one allocation.
type sharedBuffer struct {
	refs    atomic.Int64
	release func()
}

func newBuffer(release func()) *sharedBuffer {
	b := &sharedBuffer{release: release}
	b.refs.Store(1)
	metrics.BuffersLive.Inc()
	return b
}

func (b *sharedBuffer) retain() { b.refs.Add(1) }

func (b *sharedBuffer) drop() {
	switch n := b.refs.Add(-1); {
	case n == 0:
		metrics.BuffersLive.Dec()
		if b.release != nil {
			b.release()
		}
	case n < 0:
		reportUnsupported("array memory released more often than it was shared")
	}
}

// TypedArray is an Array of T.
type TypedArray[T types.Payload] struct {
	data []T
	buf  *sharedBuffer
}

var _ Array = (*TypedArray[float32])(nil)

// NewArray allocates n zeroed elements.
func NewArray[T types.Payload](n int) *TypedArray[T] {
	if n < 0 {
		reportRange("cannot create an array of negative length %d", n)
		n = 0
	}
	return &TypedArray[T]{data: make([]T, n), buf: newBuffer(nil)}
}

// WrapArray takes ownership of data. release, if not nil, runs once after the
// last handle to data was released.
func WrapArray[T types.Payload](data []T, release func()) *TypedArray[T] {
	return &TypedArray[T]{data: data, buf: newBuffer(release)}
}

// CreateByID allocates n zeroed elements of kind id, or returns nil for
// unknown kinds.
func CreateByID(id types.ID, n int) Array {
	if !id.Valid() {
		reportUnsupported("there is no known creator for kind %d", id)
		return nil
	}
	return descriptors()[id].newArray(n)
}

// WrapBytes reinterprets raw memory as elements of kind id without copying,
// unless b is not aligned for the kind. Only kinds without pointers can be
// wrapped.
func WrapBytes(id types.ID, b []byte, release func()) Array {
	if !id.Valid() || descriptors()[id].wrap == nil {
		reportUnsupported("cannot wrap raw memory as %s", id.ArrayName())
		return nil
	}
	return descriptors()[id].wrap(b, release)
}

// ViewBytes reinterprets b, which must lie in the memory of owner, as
// elements of kind id. The view is one more handle of owner's memory: it is
// counted by UseCount and owner's release callback waits for it. Misaligned
// memory is copied into an array with handles of its own.
func ViewBytes(id types.ID, b []byte, owner Array) Array {
	if !id.Valid() || descriptors()[id].share == nil {
		reportUnsupported("cannot view raw memory as %s", id.ArrayName())
		return nil
	}
	o, ok := owner.(interface{ shared() *sharedBuffer })
	if !ok || o.shared() == nil {
		reportUnsupported("cannot view the memory of a released array")
		return nil
	}
	return descriptors()[id].share(b, o.shared())
}

func (a *TypedArray[T]) sealed() {}

func (a *TypedArray[T]) shared() *sharedBuffer { return a.buf }

// Slice returns the elements. They alias the array's memory.
func (a *TypedArray[T]) Slice() []T { return a.data }

// Get returns element i; it panics like a slice index when out of range.
func (a *TypedArray[T]) Get(i int) T { return a.data[i] }

// Set stores v at i; it panics like a slice index when out of range.
func (a *TypedArray[T]) Set(i int, v T) { a.data[i] = types.Clone(v) }

func (a *TypedArray[T]) TypeID() types.ID { return types.IDOf[T]() }

func (a *TypedArray[T]) TypeName() string { return a.TypeID().ArrayName() }

func (a *TypedArray[T]) Len() int { return len(a.data) }

func (a *TypedArray[T]) BytesPerElement() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (a *TypedArray[T]) IsFloat() bool { return a.TypeID().IsFloat() }

func (a *TypedArray[T]) IsInteger() bool { return a.TypeID().IsInteger() }

func (a *TypedArray[T]) inBounds(i int) bool {
	if i < 0 || i >= len(a.data) {
		reportRange("index %d is out of the range of %s of length %d", i, a.TypeName(), len(a.data))
		return false
	}
	return true
}

func (a *TypedArray[T]) At(i int) Value {
	if !a.inBounds(i) {
		return nil
	}
	return NewValue(a.data[i])
}

func (a *TypedArray[T]) SetAt(i int, v Value) bool {
	if !a.inBounds(i) {
		return false
	}
	return storeValue(&a.data[i], v)
}

// All iterates over copies of the elements.
func (a *TypedArray[T]) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, v := range a.data {
			if !yield(i, NewValue(v)) {
				return
			}
		}
	}
}

func (a *TypedArray[T]) Splice(size int) []Array {
	if size <= 0 {
		reportRange("cannot splice %s into blocks of %d elements", a.TypeName(), size)
		return nil
	}
	if a.buf == nil {
		reportUnsupported("cannot splice a released %s", a.TypeName())
		return nil
	}
	n := len(a.data)
	if size >= n {
		logger.Warn("splicing into blocks not smaller than the array, the result is one view of the whole array",
			zap.String("type", a.TypeName()), zap.Int("size", size), zap.Int("length", n))
	}
	views := make([]Array, 0, (n+size-1)/size)
	for off := 0; off < n; off += size {
		end := min(off+size, n)
		a.buf.retain()
		views = append(views, &TypedArray[T]{data: a.data[off:end:end], buf: a.buf})
	}
	return views
}

func (a *TypedArray[T]) ScalingTo(id types.ID, opt numeric.Policy) ScalingPair {
	c := Lookup(a.TypeID(), id)
	if c == nil {
		reportUnknown(a.TypeID(), id, a.TypeName())
		return ScalingPair{}
	}
	if id == a.TypeID() && opt == numeric.AutoScale {
		return IdentityScaling()
	}
	return c.scalingOf(a, opt)
}

// resolveScaling computes an unset scaling with the autoscale policy and
// warns when it shrinks the values.
func (a *TypedArray[T]) resolveScaling(id types.ID, sc ScalingPair) ScalingPair {
	if !sc.IsZero() {
		return sc
	}
	sc = a.ScalingTo(id, numeric.AutoScale)
	if scale, _ := sc.Values(); !sc.IsZero() && scale < 1 {
		logger.Warn("downscaling the values, you might lose information",
			zap.Float64("scale", scale), zap.String("from", a.TypeName()), zap.String("to", id.ArrayName()))
	}
	return sc
}

func (a *TypedArray[T]) CopyTo(dst Array, sc ScalingPair) bool {
	if dst == nil {
		reportUnsupported("cannot copy %s into an empty array", a.TypeName())
		return false
	}
	c := Lookup(a.TypeID(), dst.TypeID())
	if c == nil {
		reportUnknown(a.TypeID(), dst.TypeID(), a.TypeName())
		return false
	}
	if len(a.data) == 0 {
		return true
	}
	sc = a.resolveScaling(dst.TypeID(), sc)
	if sc.IsZero() {
		return false
	}
	rc := c.ConvertArray(a, dst, sc)
	reportOverflow(rc, a.TypeName(), dst.TypeID())
	return rc == numeric.InRange
}

func (a *TypedArray[T]) CopyByID(id types.ID, sc ScalingPair) Array {
	c := Lookup(a.TypeID(), id)
	if c == nil {
		reportUnknown(a.TypeID(), id, a.TypeName())
		return nil
	}
	// no range to scale, the result is empty either way
	if len(a.data) == 0 {
		return c.CreateArray(0)
	}
	sc = a.resolveScaling(id, sc)
	if sc.IsZero() {
		return nil
	}
	dst, rc := c.GenerateArray(a, sc)
	reportOverflow(rc, a.TypeName(), id)
	return dst
}

func (a *TypedArray[T]) ConvertByID(id types.ID, sc ScalingPair) Array {
	if id == a.TypeID() && (sc.IsZero() || sc.IsIdentity()) {
		return a.Retain()
	}
	return a.CopyByID(id, sc)
}

func (a *TypedArray[T]) CloneToNew(n int) Array { return NewArray[T](n) }

func (a *TypedArray[T]) CopyRange(start, end int, dst Array, dstStart int) bool {
	d, ok := dst.(*TypedArray[T])
	switch {
	case !ok:
		if dst == nil {
			reportUnsupported("cannot copy a range of %s into an empty array", a.TypeName())
		} else {
			reportUnsupported("range copy into an array of another kind is not supported, it is %s not %s",
				dst.TypeName(), a.TypeName())
		}
		return false
	case start < 0 || end < start:
		reportRange("invalid range %d..%d", start, end)
		return false
	case end >= len(a.data):
		reportRange("the end of the range (%d) is behind the end of this array (%d)", end, len(a.data))
		return false
	case dstStart < 0 || dstStart+end-start+1 > len(d.data):
		reportRange("the end of the range (%d) is behind the end of the destination (%d)",
			dstStart+end-start+1, len(d.data))
		return false
	}
	for i, v := range a.data[start : end+1] {
		d.data[dstStart+i] = types.Clone(v)
	}
	return true
}

func (a *TypedArray[T]) Compare(start, end int, other Array, otherStart int) int {
	if start < 0 || end < start {
		reportRange("invalid range %d..%d", start, end)
		return 0
	}
	n := end - start
	o, ok := other.(*TypedArray[T])
	if !ok {
		name := "an empty array"
		if other != nil {
			name = other.TypeName()
		}
		reportUnsupported("comparing to %s instead of %s, assuming all elements to be different", name, a.TypeName())
		return n
	}
	if end > len(a.data) {
		reportRange("the end of the range (%d) is behind the end of this array (%d)", end, len(a.data))
		end = len(a.data)
	}
	if otherStart < 0 || otherStart+n > len(o.data) {
		reportRange("the end of the range (%d) is behind the end of the other array (%d)", otherStart+n, len(o.data))
	}
	plain := a.TypeID().Traits().Plain()
	diff := 0
	for i := start; i < start+n; i++ {
		j := otherStart + i - start
		if i >= end || j < 0 || j >= len(o.data) {
			diff++
			continue
		}
		if plain {
			if !bytes.Equal(elementBytes(&a.data[i]), elementBytes(&o.data[j])) {
				diff++
			}
		} else if !equalPayload(a.data[i], o.data[j]) {
			diff++
		}
	}
	return diff
}

func elementBytes[T any](p *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(*p))
}

func (a *TypedArray[T]) Bytes() []byte {
	if !a.TypeID().Traits().Plain() {
		reportUnsupported("%s does not have a raw memory representation", a.TypeName())
		return nil
	}
	if len(a.data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(a.data))), len(a.data)*a.BytesPerElement())
}

func (a *TypedArray[T]) EndianSwap() {
	tr := a.TypeID().Traits()
	if !tr.Plain() {
		reportUnsupported("cannot swap the byte order of %s", a.TypeName())
		return
	}
	if tr.ComponentSize < 2 {
		return
	}
	swapComponents(a.Bytes(), tr.ComponentSize)
}

// swapComponents reverses every group of width bytes in b.
func swapComponents(b []byte, width int) {
	for off := 0; off+width <= len(b); off += width {
		c := b[off : off+width]
		for i, j := 0, width-1; i < j; i, j = i+1, j-1 {
			c[i], c[j] = c[j], c[i]
		}
	}
}

func (a *TypedArray[T]) ToString(labeled bool) string {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)
	b.WriteString(strconv.Itoa(len(a.data)))
	b.WriteByte('#')
	for i, v := range a.data {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(formatPayload(v))
	}
	if labeled {
		b.WriteString("(" + a.TypeName() + ")")
	}
	return b.String()
}

func (a *TypedArray[T]) String() string { return a.ToString(false) }

func (a *TypedArray[T]) UseCount() int64 {
	if a.buf == nil {
		return 0
	}
	return a.buf.refs.Load()
}

func (a *TypedArray[T]) Retain() Array {
	if a.buf == nil {
		reportUnsupported("cannot share a released %s", a.TypeName())
		return nil
	}
	a.buf.retain()
	return &TypedArray[T]{data: a.data, buf: a.buf}
}

func (a *TypedArray[T]) Release() {
	if a.buf == nil {
		reportUnsupported("%s was already released", a.TypeName())
		return
	}
	a.buf.drop()
	a.buf, a.data = nil, nil
}
