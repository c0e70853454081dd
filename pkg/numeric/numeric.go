// Package numeric holds the range-checked casts and the domain mapping used
// when numbers change representation.
package numeric

import (
	"math"

	"github.com/isis-group/isis-sub000/pkg/types"
)

// RangeCheck is the outcome of a numeric conversion.
type RangeCheck uint8

const (
	InRange RangeCheck = iota
	PositiveOverflow
	NegativeOverflow
)

func (r RangeCheck) String() string {
	switch r {
	case PositiveOverflow:
		return "positive_overflow"
	case NegativeOverflow:
		return "negative_overflow"
	}
	return "in_range"
}

// Worst merges two results, keeping the first overflow seen.
func (r RangeCheck) Worst(o RangeCheck) RangeCheck {
	if r != InRange {
		return r
	}
	return o
}

type kind struct {
	float  bool
	signed bool
	bits   int
	minI   int64
	maxU   uint64
	lo, hi float64 // representable domain
}

func kindOf[T types.Number]() kind {
	var z T
	switch any(z).(type) {
	case int8:
		return kind{signed: true, bits: 8, minI: math.MinInt8, maxU: math.MaxInt8, lo: math.MinInt8, hi: math.MaxInt8}
	case uint8:
		return kind{bits: 8, maxU: math.MaxUint8, hi: math.MaxUint8}
	case int16:
		return kind{signed: true, bits: 16, minI: math.MinInt16, maxU: math.MaxInt16, lo: math.MinInt16, hi: math.MaxInt16}
	case uint16:
		return kind{bits: 16, maxU: math.MaxUint16, hi: math.MaxUint16}
	case int32:
		return kind{signed: true, bits: 32, minI: math.MinInt32, maxU: math.MaxInt32, lo: math.MinInt32, hi: math.MaxInt32}
	case uint32:
		return kind{bits: 32, maxU: math.MaxUint32, hi: math.MaxUint32}
	case int64:
		return kind{signed: true, bits: 64, minI: math.MinInt64, maxU: math.MaxInt64, lo: math.MinInt64, hi: math.MaxInt64}
	case uint64:
		return kind{bits: 64, maxU: math.MaxUint64, hi: math.MaxUint64}
	case float32:
		return kind{float: true, signed: true, bits: 32, lo: -math.MaxFloat32, hi: math.MaxFloat32}
	default:
		return kind{float: true, signed: true, bits: 64, lo: -math.MaxFloat64, hi: math.MaxFloat64}
	}
}

// Domain returns the lowest and highest value representable by T.
func Domain[T types.Number]() (lo, hi float64) {
	k := kindOf[T]()
	return k.lo, k.hi
}

// DomainOf returns the representable domain of a numeric kind. Bool maps
// to [0, 1]; non numeric kinds report ok == false.
func DomainOf(id types.ID) (lo, hi float64, ok bool) {
	switch id {
	case types.BoolID:
		return 0, 1, true
	case types.Int8ID:
		lo, hi = Domain[int8]()
	case types.Uint8ID:
		lo, hi = Domain[uint8]()
	case types.Int16ID:
		lo, hi = Domain[int16]()
	case types.Uint16ID:
		lo, hi = Domain[uint16]()
	case types.Int32ID:
		lo, hi = Domain[int32]()
	case types.Uint32ID:
		lo, hi = Domain[uint32]()
	case types.Int64ID:
		lo, hi = Domain[int64]()
	case types.Uint64ID:
		lo, hi = Domain[uint64]()
	case types.Float32ID:
		lo, hi = Domain[float32]()
	case types.Float64ID:
		lo, hi = Domain[float64]()
	default:
		return 0, 0, false
	}
	return lo, hi, true
}

// IsFloat reports whether T is a floating point type.
func IsFloat[T types.Number]() bool { return kindOf[T]().float }

// Cast converts s to D, rounding half to even when leaving a floating point
// source. Values outside D's domain are clamped to the nearest bound and the
// direction of the overflow is reported. NaN becomes zero for integer
// destinations.
func Cast[S, D types.Number](s S) (D, RangeCheck) {
	sk, dk := kindOf[S](), kindOf[D]()
	switch {
	case dk.float:
		if sk.float && dk.bits == 32 {
			f := float64(s)
			if f > dk.hi && !math.IsInf(f, 1) {
				return D(dk.hi), PositiveOverflow
			}
			if f < dk.lo && !math.IsInf(f, -1) {
				return D(dk.lo), NegativeOverflow
			}
		}
		return D(s), InRange
	case sk.float:
		return fromFloat[D](math.RoundToEven(float64(s)), dk)
	case sk.signed:
		v := int64(s)
		if v < dk.minI {
			return D(dk.minI), NegativeOverflow
		}
		if v > 0 && uint64(v) > dk.maxU {
			return D(dk.maxU), PositiveOverflow
		}
		return D(s), InRange
	default:
		u := uint64(s)
		if u > dk.maxU {
			return D(dk.maxU), PositiveOverflow
		}
		return D(s), InRange
	}
}

// fromFloat clamps an already rounded value into an integer destination.
// float64(max) of the 64 bit types rounds up to 2^63/2^64, so the upper
// bound is exclusive there.
func fromFloat[D types.Number](r float64, dk kind) (D, RangeCheck) {
	if math.IsNaN(r) {
		return 0, InRange
	}
	if r < dk.lo {
		return D(dk.minI), NegativeOverflow
	}
	if r > dk.hi || (dk.bits == 64 && r >= dk.hi) {
		return D(dk.maxU), PositiveOverflow
	}
	return D(r), InRange
}

// Clamp converts an already scaled value into D, rounding half away from
// zero for integer destinations and saturating at D's bounds.
func Clamp[D types.Number](v float64) D {
	dk := kindOf[D]()
	if dk.float {
		if dk.bits == 32 {
			if v > math.MaxFloat32 {
				v = math.MaxFloat32
			} else if v < -math.MaxFloat32 {
				v = -math.MaxFloat32
			}
		}
		return D(v)
	}
	d, _ := fromFloat[D](math.Round(v), dk)
	return d
}

// Round converts v to D with half away from zero rounding, reporting the
// range check. This is the rounding used by bulk conversions.
func Round[S, D types.Number](v S) (D, RangeCheck) {
	if kindOf[S]().float && !kindOf[D]().float {
		return fromFloat[D](math.Round(float64(v)), kindOf[D]())
	}
	return Cast[S, D](v)
}
