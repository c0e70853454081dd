package data

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// element is the set of payloads that make up colors, vectors and lists.
type element interface {
	uint8 | uint16 | int32 | float32 | float64 | string
}

type (
	channel      interface{ uint8 | uint16 }
	colorPayload interface{ types.Color24 | types.Color48 }
	complexType  interface{ complex64 | complex128 }
	floatType    interface{ float32 | float64 }
)

// seqView exposes a payload as a slice of its elements. Fixed size payloads
// alias their array, lists are resized through resize.
type seqView[T types.Payload, E element] struct {
	view   func(*T) []E
	resize func(*T, int) // nil for fixed size payloads
}

var (
	fvec3View = seqView[types.FVector3, float32]{view: func(v *types.FVector3) []float32 { return v[:] }}
	dvec3View = seqView[types.DVector3, float64]{view: func(v *types.DVector3) []float64 { return v[:] }}
	fvec4View = seqView[types.FVector4, float32]{view: func(v *types.FVector4) []float32 { return v[:] }}
	dvec4View = seqView[types.DVector4, float64]{view: func(v *types.DVector4) []float64 { return v[:] }}
	ivec4View = seqView[types.IVector4, int32]{view: func(v *types.IVector4) []int32 { return v[:] }}

	ilistView = seqView[types.IList, int32]{
		view:   func(v *types.IList) []int32 { return *v },
		resize: func(v *types.IList, n int) { *v = make(types.IList, n) },
	}
	dlistView = seqView[types.DList, float64]{
		view:   func(v *types.DList) []float64 { return *v },
		resize: func(v *types.DList, n int) { *v = make(types.DList, n) },
	}
	slistView = seqView[types.SList, string]{
		view:   func(v *types.SList) []string { return *v },
		resize: func(v *types.SList, n int) { *v = make(types.SList, n) },
	}

	color24View = seqView[types.Color24, uint8]{view: func(c *types.Color24) []uint8 { return channels[uint8](c, 3) }}
	color48View = seqView[types.Color48, uint16]{view: func(c *types.Color48) []uint16 { return channels[uint16](c, 3) }}
)

// channels reinterprets the memory of one payload as n consecutive E.
// Only used for colors and complex numbers, which have no padding.
func channels[E any, T any](p *T, n int) []E {
	return unsafe.Slice((*E)(unsafe.Pointer(p)), n)
}

// flatten reinterprets a slice of multi-channel payloads as its channels.
func flatten[E any, T any](s []T, n int) []E {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*E)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*n)
}

// build fills the table. Every kind converts into itself and into string;
// the remaining cells are chosen by the categories of source and
// destination.
func (t *convTable) build() {
	kind[bool](t)
	kind[int8](t)
	kind[uint8](t)
	kind[int16](t)
	kind[uint16](t)
	kind[int32](t)
	kind[uint32](t)
	kind[int64](t)
	kind[uint64](t)
	kind[float32](t)
	kind[float64](t)
	kind[types.Color24](t)
	kind[types.Color48](t)
	kind[types.FVector3](t)
	kind[types.DVector3](t)
	kind[types.FVector4](t)
	kind[types.DVector4](t)
	kind[types.IVector4](t)
	kind[types.IList](t)
	kind[types.DList](t)
	kind[types.SList](t)
	kind[string](t)
	kind[types.Selection](t)
	kind[complex64](t)
	kind[complex128](t)
	kind[types.Date](t)
	kind[types.Timestamp](t)
	kind[types.Duration](t)

	numericRow[int8](t)
	numericRow[uint8](t)
	numericRow[int16](t)
	numericRow[uint16](t)
	numericRow[int32](t)
	numericRow[uint32](t)
	numericRow[int64](t)
	numericRow[uint64](t)
	numericRow[float32](t)
	numericRow[float64](t)

	complexCell[complex64, float32, complex64, float32](t)
	complexCell[complex64, float32, complex128, float64](t)
	complexCell[complex128, float64, complex64, float32](t)
	complexCell[complex128, float64, complex128, float64](t)

	colorCell[types.Color24, uint8, types.Color24, uint8](t)
	colorCell[types.Color24, uint8, types.Color48, uint16](t)
	colorCell[types.Color48, uint16, types.Color24, uint8](t)
	colorCell[types.Color48, uint16, types.Color48, uint16](t)

	seqRow(t, fvec3View)
	seqRow(t, dvec3View)
	seqRow(t, fvec4View)
	seqRow(t, dvec4View)
	seqRow(t, ivec4View)
	seqRow(t, ilistView)
	seqRow(t, dlistView)
	seqRow(t, slistView)

	t.buildFromString()

	register(t, func(s types.Timestamp, d *types.Date) numeric.RangeCheck {
		*d = s.Date()
		return numeric.InRange
	})
	register(t, func(s types.Date, d *types.Timestamp) numeric.RangeCheck {
		*d = s.Timestamp()
		return numeric.InRange
	})
}

// register installs the converter for the cell function f. Arrays are
// converted element by element unless the caller installs a bulk strategy.
func register[S, D types.Payload](t *convTable, f func(S, *D) numeric.RangeCheck) *Converter {
	c := &Converter{from: types.IDOf[S](), to: types.IDOf[D]()}
	c.scalar = func(src, dst Value) numeric.RangeCheck {
		return f(src.(*Scalar[S]).v, &dst.(*Scalar[D]).v)
	}
	c.array = func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck {
		if scale != 1 || offset != 0 {
			reportUnsupported("scaling is ignored when converting %s to %s", c.from.ArrayName(), c.to.ArrayName())
		}
		s, d := src.(*TypedArray[S]).data[:n], dst.(*TypedArray[D]).data[:n]
		rc := numeric.InRange
		for i := range s {
			rc = rc.Worst(f(s[i], &d[i]))
		}
		return rc
	}
	t[c.from][c.to] = c
	return c
}

// kind installs the identity and the string conversion of T.
func kind[T types.Payload](t *convTable) {
	register(t, func(s T, d *T) numeric.RangeCheck {
		*d = types.Clone(s)
		return numeric.InRange
	})
	register(t, func(s T, d *string) numeric.RangeCheck {
		*d = formatPayload(s)
		return numeric.InRange
	})
}

func numericRow[S types.Number](t *convTable) {
	numericCell[S, int8](t)
	numericCell[S, uint8](t)
	numericCell[S, int16](t)
	numericCell[S, uint16](t)
	numericCell[S, int32](t)
	numericCell[S, uint32](t)
	numericCell[S, int64](t)
	numericCell[S, uint64](t)
	numericCell[S, float32](t)
	numericCell[S, float64](t)

	register(t, func(s S, d *bool) numeric.RangeCheck {
		*d = s != 0
		return numeric.InRange
	})
	register(t, func(s bool, d *S) numeric.RangeCheck {
		*d = 0
		if s {
			*d = 1
		}
		return numeric.InRange
	})

	numToComplex[S, complex64, float32](t)
	numToComplex[S, complex128, float64](t)
	numToColor[S, types.Color24, uint8](t)
	numToColor[S, types.Color48, uint16](t)
}

func numericCell[S, D types.Number](t *convTable) {
	c := register(t, func(s S, d *D) numeric.RangeCheck {
		v, rc := numeric.Cast[S, D](s)
		*d = v
		return rc
	})
	c.array = func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck {
		return numericArray(src.(*TypedArray[S]).data[:n], dst.(*TypedArray[D]).data[:n], scale, offset)
	}
	c.scaling = numericScaling(types.IDOf[S]().IsInteger(), c.to, scalarBound)
}

// numericArray is the bulk conversion between numbers. Without scaling the
// values are rounded and range checked, otherwise scaled and saturated.
func numericArray[S, D types.Number](src []S, dst []D, scale, offset float64) numeric.RangeCheck {
	if scale == 1 && offset == 0 {
		if same, ok := any(src).([]D); ok {
			copy(dst, same)
			return numeric.InRange
		}
		rc := numeric.InRange
		for i, v := range src {
			d, r := numeric.Round[S, D](v)
			dst[i] = d
			rc = rc.Worst(r)
		}
		return rc
	}
	for i, v := range src {
		dst[i] = numeric.Clamp[D](float64(v)*scale + offset)
	}
	return numeric.InRange
}

// bound reduces a min or max value to one number; low selects the lower
// channel for multi-channel values.
type bound func(v Value, low bool) float64

func scalarBound(v Value, _ bool) float64 { return As[float64](v) }

func colorBound(v Value, low bool) float64 {
	if v.IsFloat() || v.IsInteger() {
		return As[float64](v)
	}
	c := As[types.Color48](v)
	if low {
		return float64(min(c.R, c.G, c.B))
	}
	return float64(max(c.R, c.G, c.B))
}

func complexBound(v Value, low bool) float64 {
	if v.IsFloat() || v.IsInteger() {
		return As[float64](v)
	}
	c := As[complex128](v)
	if low {
		return min(real(c), imag(c))
	}
	return max(real(c), imag(c))
}

func numericScaling(srcInteger bool, dst types.ID, b bound) scalingFunc {
	return func(lo, hi Value, opt numeric.Policy) (float64, float64) {
		return numeric.Scaling(b(lo, true), b(hi, false), srcInteger, dst, opt)
	}
}

func castComplex[S, D complexType](s S) (D, numeric.RangeCheck) {
	c := complex128(s)
	var zero D
	if _, narrow := any(zero).(complex64); !narrow {
		return D(c), numeric.InRange
	}
	re, r1 := numeric.Cast[float64, float32](real(c))
	im, r2 := numeric.Cast[float64, float32](imag(c))
	return D(complex(float64(re), float64(im))), r1.Worst(r2)
}

func complexCell[S complexType, SE floatType, D complexType, DE floatType](t *convTable) {
	c := register(t, func(s S, d *D) numeric.RangeCheck {
		v, rc := castComplex[S, D](s)
		*d = v
		return rc
	})
	c.array = func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck {
		if scale != 1 || offset != 0 {
			reportUnsupported("complex conversion with scaling is not supported, ignoring the scaling")
		}
		s := flatten[SE](src.(*TypedArray[S]).data[:n], 2)
		d := flatten[DE](dst.(*TypedArray[D]).data[:n], 2)
		return numericArray(s, d, 1, 0)
	}
	c.scaling = numericScaling(false, types.IDOf[DE](), complexBound)
}

func numToComplex[S types.Number, D complexType, DE floatType](t *convTable) {
	c := register(t, func(s S, d *D) numeric.RangeCheck {
		v, rc := numeric.Cast[S, DE](s)
		*d = D(complex(float64(v), 0))
		return rc
	})
	c.array = func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck {
		re := make([]DE, n)
		rc := numericArray(src.(*TypedArray[S]).data[:n], re, scale, offset)
		d := dst.(*TypedArray[D]).data[:n]
		for i, v := range re {
			d[i] = D(complex(float64(v), 0))
		}
		return rc
	}
	c.scaling = numericScaling(types.IDOf[S]().IsInteger(), types.IDOf[DE](), complexBound)
}

func colorCell[S colorPayload, SE channel, D colorPayload, DE channel](t *convTable) {
	c := register(t, func(s S, d *D) numeric.RangeCheck {
		src, dst := channels[SE](&s, 3), channels[DE](d, 3)
		rc := numeric.InRange
		for i := range src {
			v, r := numeric.Cast[SE, DE](src[i])
			dst[i] = v
			rc = rc.Worst(r)
		}
		return rc
	})
	c.array = func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck {
		s := flatten[SE](src.(*TypedArray[S]).data[:n], 3)
		d := flatten[DE](dst.(*TypedArray[D]).data[:n], 3)
		return numericArray(s, d, scale, offset)
	}
	c.scaling = numericScaling(true, types.IDOf[DE](), colorBound)
}

func numToColor[S types.Number, D colorPayload, DE channel](t *convTable) {
	c := register(t, func(s S, d *D) numeric.RangeCheck {
		v, rc := numeric.Cast[S, DE](s)
		dst := channels[DE](d, 3)
		dst[0], dst[1], dst[2] = v, v, v
		return rc
	})
	c.array = func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck {
		gray := make([]DE, n)
		rc := numericArray(src.(*TypedArray[S]).data[:n], gray, scale, offset)
		d := flatten[DE](dst.(*TypedArray[D]).data[:n], 3)
		for i, v := range gray {
			d[3*i], d[3*i+1], d[3*i+2] = v, v, v
		}
		return rc
	}
	c.scaling = numericScaling(types.IDOf[S]().IsInteger(), types.IDOf[DE](), colorBound)
}

func seqRow[S types.Payload, SE element](t *convTable, sv seqView[S, SE]) {
	seqCell(t, sv, fvec3View)
	seqCell(t, sv, dvec3View)
	seqCell(t, sv, fvec4View)
	seqCell(t, sv, dvec4View)
	seqCell(t, sv, ivec4View)
	seqCell(t, sv, ilistView)
	seqCell(t, sv, dlistView)
	seqCell(t, sv, slistView)
}

// seqCell converts vectors and lists element by element. Lists take the
// source length; a fixed size destination reports a positive overflow when
// a non-zero element does not fit.
func seqCell[S types.Payload, SE element, D types.Payload, DE element](t *convTable, sv seqView[S, SE], dv seqView[D, DE]) {
	if types.IDOf[S]() == types.IDOf[D]() {
		return
	}
	register(t, func(s S, d *D) numeric.RangeCheck {
		src := sv.view(&s)
		if dv.resize != nil {
			if len(dv.view(d)) != 0 {
				logger.Warn("storing into a non empty list",
					zap.String("from", types.IDOf[S]().Name()), zap.String("to", types.IDOf[D]().Name()))
			}
			dv.resize(d, len(src))
		}
		return convertElements(t.at(types.IDOf[SE](), types.IDOf[DE]()), src, dv.view(d))
	})
}

// convertElements converts src into dst through the element converter ec.
// Surplus source elements must be zero.
func convertElements[SE, DE element](ec *Converter, src []SE, dst []DE) numeric.RangeCheck {
	var zero SE
	rc := numeric.InRange
	for i, s := range src {
		if i >= len(dst) {
			if s != zero {
				return numeric.PositiveOverflow
			}
			continue
		}
		out := &Scalar[DE]{}
		rc = rc.Worst(ec.scalar(&Scalar[SE]{v: s}, out))
		dst[i] = out.v
	}
	return rc
}
