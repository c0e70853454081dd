package data

import (
	"math"

	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// MinMax computes the value range. Numbers skip NaN and infinite elements,
// colors return the bounding box in color space and complex numbers the
// smallest and largest magnitude. Empty arrays and other kinds yield nil.
func (a *TypedArray[T]) MinMax() (lo, hi Value) {
	if len(a.data) == 0 {
		report(zapcore.ErrorLevel, errors.Newf(errors.ErrorTypeEmptyArray,
			"skipping computation of min/max on an empty %s", a.TypeName()))
		return nil, nil
	}
	switch s := any(a.data).(type) {
	case []bool:
		return boolMinMax(s)
	case []int8:
		return numberMinMax(s)
	case []uint8:
		return numberMinMax(s)
	case []int16:
		return numberMinMax(s)
	case []uint16:
		return numberMinMax(s)
	case []int32:
		return numberMinMax(s)
	case []uint32:
		return numberMinMax(s)
	case []int64:
		return numberMinMax(s)
	case []uint64:
		return numberMinMax(s)
	case []float32:
		return numberMinMax(s)
	case []float64:
		return numberMinMax(s)
	case []types.Color24:
		l, h := colorMinMax[types.Color24, uint8](s)
		return NewValue(l), NewValue(h)
	case []types.Color48:
		l, h := colorMinMax[types.Color48, uint16](s)
		return NewValue(l), NewValue(h)
	case []complex64:
		return complexMinMax[complex64, float32](s)
	case []complex128:
		return complexMinMax[complex128, float64](s)
	}
	reportUnsupported("min/max computation of %s is not supported", a.TypeName())
	return nil, nil
}

func boolMinMax(s []bool) (Value, Value) {
	lo, hi := true, false
	for _, v := range s {
		lo = lo && v
		hi = hi || v
	}
	return NewValue(lo), NewValue(hi)
}

func excluded(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }

func numberMinMax[T types.Number](s []T) (Value, Value) {
	var lo, hi T
	found := false
	for _, v := range s {
		if excluded(float64(v)) {
			continue
		}
		if !found {
			lo, hi, found = v, v, true
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	if !found {
		report(zapcore.WarnLevel, errors.Newf(errors.ErrorTypeAllValuesExcluded,
			"skipped all %d elements of this %s, as they all are NaN or infinite, results will be invalid",
			len(s), types.IDOf[T]().ArrayName()))
		nan := math.NaN()
		return NewValue(T(nan)), NewValue(T(nan))
	}
	return NewValue(lo), NewValue(hi)
}

func colorMinMax[C colorPayload, E channel](s []C) (lo, hi C) {
	flat := flatten[E](s, 3)
	l, h := channels[E](&lo, 3), channels[E](&hi, 3)
	copy(l, flat[:3])
	copy(h, flat[:3])
	for i, v := range flat {
		c := i % 3
		l[c], h[c] = min(l[c], v), max(h[c], v)
	}
	return lo, hi
}

func complexMinMax[C complexType, E floatType](s []C) (Value, Value) {
	var lo, hi float64
	found := false
	for _, v := range s {
		c := complex128(v)
		re, im := real(c), imag(c)
		if math.IsNaN(re) || math.IsNaN(im) {
			continue
		}
		sq := re*re + im*im
		if !found {
			lo, hi, found = sq, sq, true
			continue
		}
		lo, hi = min(lo, sq), max(hi, sq)
	}
	if !found {
		report(zapcore.ErrorLevel, errors.Newf(errors.ErrorTypeAllValuesExcluded,
			"%s is all NaN, returning NaN/NaN as minimum/maximum", types.IDOf[C]().ArrayName()))
		return NewValue(E(math.NaN())), NewValue(E(math.NaN()))
	}
	return NewValue(E(math.Sqrt(lo))), NewValue(E(math.Sqrt(hi)))
}
