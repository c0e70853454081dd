package data

import (
	"cmp"
	"slices"

	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

type opKind uint8

const (
	opPlus opKind = iota
	opMinus
	opMultiply
	opDivide
)

var opNames = [...]string{"plus", "minus", "multiply", "divide"}

func (o opKind) allowed(t types.Traits) bool {
	switch o {
	case opPlus:
		return t.Plus
	case opMinus:
		return t.Minus
	case opMultiply:
		return t.Multiply
	}
	return t.Divide
}

// operand converts other into T for a comparison. ok is false when no
// converter exists; rc carries the overflow direction.
func operand[T types.Payload](other Value) (v T, rc numeric.RangeCheck, ok bool) {
	if o, same := other.(*Scalar[T]); same {
		return o.v, numeric.InRange, true
	}
	to := types.IDOf[T]()
	if other == nil {
		reportUnsupported("cannot compare %s with an empty value", to.Name())
		return v, numeric.InRange, false
	}
	c := Lookup(other.TypeID(), to)
	if c == nil {
		reportUnknown(other.TypeID(), to, subject(other))
		return v, numeric.InRange, false
	}
	tmp := &Scalar[T]{}
	rc = c.Convert(other, tmp)
	return tmp.v, rc, true
}

func (s *Scalar[T]) Eq(other Value) bool {
	o, rc, ok := operand[T](other)
	if !ok || rc != numeric.InRange {
		return false
	}
	return equalPayload(s.v, o)
}

// Lt reports s < other. An other too big for T counts as greater, one too
// small as lower.
func (s *Scalar[T]) Lt(other Value) bool {
	if !s.TypeID().Traits().Ordered {
		reportUnsupported("%s is not ordered", s.TypeName())
		return false
	}
	o, rc, ok := operand[T](other)
	switch {
	case !ok:
		return false
	case rc == numeric.PositiveOverflow:
		return true
	case rc == numeric.NegativeOverflow:
		return false
	}
	c, ok := comparePayload(s.v, o)
	return ok && c < 0
}

func (s *Scalar[T]) Gt(other Value) bool {
	if !s.TypeID().Traits().Ordered {
		reportUnsupported("%s is not ordered", s.TypeName())
		return false
	}
	o, rc, ok := operand[T](other)
	switch {
	case !ok:
		return false
	case rc == numeric.PositiveOverflow:
		return false
	case rc == numeric.NegativeOverflow:
		return true
	}
	c, ok := comparePayload(s.v, o)
	return ok && c > 0
}

func equalPayload[T types.Payload](a, b T) bool {
	switch x := any(a).(type) {
	case types.IList:
		return slices.Equal(x, any(b).(types.IList))
	case types.DList:
		return slices.Equal(x, any(b).(types.DList))
	case types.SList:
		return slices.Equal(x, any(b).(types.SList))
	case types.Selection:
		y := any(b).(types.Selection)
		return x.SameEntries(y) && x.Index() == y.Index()
	}
	return any(a) == any(b)
}

func orderFloat[F float32 | float64](a, b F) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func comparePayload[T types.Payload](a, b T) (int, bool) {
	switch x := any(a).(type) {
	case bool:
		y := any(b).(bool)
		switch {
		case x == y:
			return 0, true
		case y:
			return -1, true
		}
		return 1, true
	case int8:
		return cmp.Compare(x, any(b).(int8)), true
	case uint8:
		return cmp.Compare(x, any(b).(uint8)), true
	case int16:
		return cmp.Compare(x, any(b).(int16)), true
	case uint16:
		return cmp.Compare(x, any(b).(uint16)), true
	case int32:
		return cmp.Compare(x, any(b).(int32)), true
	case uint32:
		return cmp.Compare(x, any(b).(uint32)), true
	case int64:
		return cmp.Compare(x, any(b).(int64)), true
	case uint64:
		return cmp.Compare(x, any(b).(uint64)), true
	case float32:
		return orderFloat(x, any(b).(float32)), true
	case float64:
		return orderFloat(x, any(b).(float64)), true
	case string:
		return cmp.Compare(x, any(b).(string)), true
	case types.Date:
		return cmp.Compare(x, any(b).(types.Date)), true
	case types.Timestamp:
		return cmp.Compare(x, any(b).(types.Timestamp)), true
	case types.Duration:
		return cmp.Compare(x, any(b).(types.Duration)), true
	case types.IList:
		return slices.Compare(x, any(b).(types.IList)), true
	case types.DList:
		return slices.Compare(x, any(b).(types.DList)), true
	case types.SList:
		return slices.Compare(x, any(b).(types.SList)), true
	case types.Selection:
		return x.Compare(any(b).(types.Selection))
	}
	return 0, false
}

func (s *Scalar[T]) Plus(other Value) Value     { return s.arith(opPlus, other) }
func (s *Scalar[T]) Minus(other Value) Value    { return s.arith(opMinus, other) }
func (s *Scalar[T]) Multiply(other Value) Value { return s.arith(opMultiply, other) }
func (s *Scalar[T]) Divide(other Value) Value   { return s.arith(opDivide, other) }

func (s *Scalar[T]) arith(op opKind, other Value) Value {
	ret := &Scalar[T]{v: types.Clone(s.v)}
	if !op.allowed(s.TypeID().Traits()) {
		reportUnsupported("operation %s is not supported for %s", opNames[op], s.TypeName())
		return ret
	}
	if other == nil {
		reportUnsupported("operation %s of %s with an empty value", opNames[op], s.TypeName())
		return ret
	}
	var ok bool
	switch x := any(&ret.v).(type) {
	case *types.Date:
		var d types.Duration
		if d, ok = durationOperand(other); ok {
			if op == opMinus {
				d = -d
			}
			*x = x.AddDuration(d)
		}
	case *types.Timestamp:
		var d types.Duration
		if d, ok = durationOperand(other); ok {
			if op == opMinus {
				d = -d
			}
			*x += types.Timestamp(d)
		}
	case *types.Duration:
		if op == opMultiply || op == opDivide {
			f := As[float64](other)
			if op == opDivide {
				if f == 0 {
					break
				}
				f = 1 / f
			}
			r, _ := numeric.Cast[float64, int64](float64(*x) * f)
			*x, ok = types.Duration(r), true
			break
		}
		var d types.Duration
		if d, ok = durationOperand(other); ok {
			*x = types.Duration(arithScalar(op, int64(*x), int64(d), &ok))
		}
	default:
		o, rc, conv := operand[T](other)
		if !conv {
			return ret
		}
		if rc != numeric.InRange {
			reportOverflow(rc, subject(other), s.TypeID())
			return ret
		}
		ok = applyArith(op, &ret.v, o)
	}
	if !ok {
		report(zapcore.ErrorLevel, errors.Newf(errors.ErrorTypeUnsupported,
			"operation %s of %s with %s failed", opNames[op], subject(s), subject(other)))
		return &Scalar[T]{v: types.Clone(s.v)}
	}
	return ret
}

func durationOperand(other Value) (types.Duration, bool) {
	if d, ok := other.(*Scalar[types.Duration]); ok {
		return d.v, true
	}
	c := Lookup(other.TypeID(), types.DurationID)
	if c == nil {
		reportUnknown(other.TypeID(), types.DurationID, subject(other))
		return 0, false
	}
	tmp := &Scalar[types.Duration]{}
	if rc := c.Convert(other, tmp); rc != numeric.InRange {
		reportOverflow(rc, subject(other), types.DurationID)
		return 0, false
	}
	return tmp.v, true
}

type arithmetic interface {
	types.Number | complex64 | complex128
}

func isIntegral[T arithmetic]() bool {
	var z T
	switch any(z).(type) {
	case float32, float64, complex64, complex128:
		return false
	}
	return true
}

// arithScalar applies op; integer division by zero leaves a unchanged and
// clears ok.
func arithScalar[T arithmetic](op opKind, a, b T, ok *bool) T {
	switch op {
	case opPlus:
		return a + b
	case opMinus:
		return a - b
	case opMultiply:
		return a * b
	}
	if b == 0 && isIntegral[T]() {
		*ok = false
		return a
	}
	return a / b
}

func arithSlice[E arithmetic](op opKind, dst, b []E) bool {
	ok := true
	for i := range dst {
		dst[i] = arithScalar(op, dst[i], b[i], &ok)
	}
	return ok
}

// applyArith computes *dst = *dst op b for the arithmetic payloads.
func applyArith[T types.Payload](op opKind, dst *T, b T) bool {
	ok := true
	switch x := any(dst).(type) {
	case *int8:
		*x = arithScalar(op, *x, any(b).(int8), &ok)
	case *uint8:
		*x = arithScalar(op, *x, any(b).(uint8), &ok)
	case *int16:
		*x = arithScalar(op, *x, any(b).(int16), &ok)
	case *uint16:
		*x = arithScalar(op, *x, any(b).(uint16), &ok)
	case *int32:
		*x = arithScalar(op, *x, any(b).(int32), &ok)
	case *uint32:
		*x = arithScalar(op, *x, any(b).(uint32), &ok)
	case *int64:
		*x = arithScalar(op, *x, any(b).(int64), &ok)
	case *uint64:
		*x = arithScalar(op, *x, any(b).(uint64), &ok)
	case *float32:
		*x = arithScalar(op, *x, any(b).(float32), &ok)
	case *float64:
		*x = arithScalar(op, *x, any(b).(float64), &ok)
	case *complex64:
		*x = arithScalar(op, *x, any(b).(complex64), &ok)
	case *complex128:
		*x = arithScalar(op, *x, any(b).(complex128), &ok)
	case *types.FVector3:
		y := any(b).(types.FVector3)
		ok = arithSlice(op, x[:], y[:])
	case *types.DVector3:
		y := any(b).(types.DVector3)
		ok = arithSlice(op, x[:], y[:])
	case *types.FVector4:
		y := any(b).(types.FVector4)
		ok = arithSlice(op, x[:], y[:])
	case *types.DVector4:
		y := any(b).(types.DVector4)
		ok = arithSlice(op, x[:], y[:])
	case *types.IVector4:
		y := any(b).(types.IVector4)
		ok = arithSlice(op, x[:], y[:])
	case *string:
		if op != opPlus {
			return false
		}
		*x += any(b).(string)
	default:
		return false
	}
	return ok
}
