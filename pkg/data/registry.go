package data

import (
	"sync"
	"unsafe"

	"github.com/isis-group/isis-sub000/pkg/types"
)

// descriptor creates values and arrays of one kind without knowing its Go
// type at the call site.
type descriptor struct {
	newValue func() Value
	newArray func(n int) Array
	// nil for kinds whose memory holds pointers
	wrap  func(b []byte, release func()) Array
	share func(b []byte, buf *sharedBuffer) Array
}

var (
	descOnce sync.Once
	descTab  [types.NumTypes + 1]descriptor
)

func descriptors() *[types.NumTypes + 1]descriptor {
	descOnce.Do(func() {
		describe[bool](&descTab, true)
		describe[int8](&descTab, true)
		describe[uint8](&descTab, true)
		describe[int16](&descTab, true)
		describe[uint16](&descTab, true)
		describe[int32](&descTab, true)
		describe[uint32](&descTab, true)
		describe[int64](&descTab, true)
		describe[uint64](&descTab, true)
		describe[float32](&descTab, true)
		describe[float64](&descTab, true)
		describe[types.Color24](&descTab, true)
		describe[types.Color48](&descTab, true)
		describe[types.FVector3](&descTab, true)
		describe[types.DVector3](&descTab, true)
		describe[types.FVector4](&descTab, true)
		describe[types.DVector4](&descTab, true)
		describe[types.IVector4](&descTab, true)
		describe[types.IList](&descTab, false)
		describe[types.DList](&descTab, false)
		describe[types.SList](&descTab, false)
		describe[string](&descTab, false)
		describe[types.Selection](&descTab, false)
		describe[complex64](&descTab, true)
		describe[complex128](&descTab, true)
		describe[types.Date](&descTab, true)
		describe[types.Timestamp](&descTab, true)
		describe[types.Duration](&descTab, true)
	})
	return &descTab
}

func describe[T types.Payload](tab *[types.NumTypes + 1]descriptor, plain bool) {
	d := descriptor{
		newValue: func() Value { return &Scalar[T]{} },
		newArray: func(n int) Array { return NewArray[T](n) },
	}
	if plain {
		d.wrap = func(b []byte, release func()) Array { return wrapBytes[T](b, release) }
		d.share = func(b []byte, buf *sharedBuffer) Array { return shareBytes[T](b, buf) }
	}
	tab[types.IDOf[T]()] = d
}

// castBytes reinterprets b as elements of T. Trailing bytes that do not form
// a whole element are ignored. shared is false when b was empty or not aligned
// for T; misaligned elements are copied.
func castBytes[T types.Payload](b []byte) (s []T, shared bool) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(b) / size
	if len(b)%size != 0 {
		reportRange("%d bytes are not a multiple of the %d byte %s elements, ignoring the last %d bytes",
			len(b), size, types.IDOf[T]().Name(), len(b)%size)
	}
	if n == 0 {
		return make([]T, 0), false
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(b)))%unsafe.Alignof(zero) != 0 {
		s = make([]T, n)
		copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n*size), b)
		return s, false
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), true
}

// wrapBytes gives b its own handles. Memory that could not be shared is
// released right away.
func wrapBytes[T types.Payload](b []byte, release func()) *TypedArray[T] {
	s, shared := castBytes[T](b)
	if !shared {
		if release != nil {
			release()
		}
		return WrapArray(s, nil)
	}
	return WrapArray(s, release)
}

// shareBytes makes b one more handle of buf.
func shareBytes[T types.Payload](b []byte, buf *sharedBuffer) *TypedArray[T] {
	s, shared := castBytes[T](b)
	if !shared {
		return WrapArray(s, nil)
	}
	buf.retain()
	return &TypedArray[T]{data: s, buf: buf}
}
