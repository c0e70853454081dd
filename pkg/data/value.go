// Package data holds the type-erased containers of the isis type layer:
// single values (Value), shared arrays of values (Array) and the converter
// table that moves both between the registered kinds.
//
// Failures never panic. A missing conversion, an overflow or unparsable text
// is logged through pkg/logger and answered with a default value, so callers
// that ignore the diagnostics see harmless zero values.
package data

import (
	"regexp"

	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	stringpool "github.com/isis-group/isis-sub000/pkg/strings"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// Value is one typed value of a registered kind. The only implementation is
// *Scalar[T]; a nil Value is the empty handle.
type Value interface {
	TypeID() types.ID
	TypeName() string
	IsFloat() bool
	IsInteger() bool
	// Native returns a copy of the payload as an interface.
	Native() any

	// ToString renders the value. Numbers accept printf formats, dates and
	// timestamps strftime formats; everything else is converted to string.
	// labeled appends the type name in parentheses.
	ToString(labeled bool, format string) string
	String() string

	Clone() Value

	// Comparisons convert other into this value's kind first.
	Eq(other Value) bool
	Lt(other Value) bool
	Gt(other Value) bool

	// Arithmetic returns a new value; unsupported operations log and return
	// an unchanged copy of the receiver.
	Plus(other Value) Value
	Minus(other Value) Value
	Multiply(other Value) Value
	Divide(other Value) Value

	// CopyByID converts into a new value of kind id. Overflows are logged
	// and the clamped value returned; a missing converter yields nil.
	CopyByID(id types.ID) Value
	// FitsInto reports whether the value converts into id without overflow.
	FitsInto(id types.ID) bool
	// Apply converts other into this value in place.
	Apply(other Value) bool

	MarshalJSON() ([]byte, error)

	sealed()
}

// Scalar holds one payload of type T.
type Scalar[T types.Payload] struct {
	v T
}

var _ Value = (*Scalar[int32])(nil)

// NewValue wraps v. List payloads are copied.
func NewValue[T types.Payload](v T) *Scalar[T] {
	return &Scalar[T]{v: types.Clone(v)}
}

// Get returns the payload. List payloads share memory with the scalar.
func (s *Scalar[T]) Get() T { return s.v }

// Set replaces the payload.
func (s *Scalar[T]) Set(v T) { s.v = types.Clone(v) }

func (s *Scalar[T]) sealed() {}

func (s *Scalar[T]) TypeID() types.ID { return types.IDOf[T]() }

func (s *Scalar[T]) TypeName() string { return s.TypeID().Name() }

func (s *Scalar[T]) IsFloat() bool { return s.TypeID().IsFloat() }

func (s *Scalar[T]) IsInteger() bool { return s.TypeID().IsInteger() }

func (s *Scalar[T]) Native() any { return types.Clone(s.v) }

func (s *Scalar[T]) Clone() Value { return &Scalar[T]{v: types.Clone(s.v)} }

func (s *Scalar[T]) String() string { return formatPayload(s.v) }

func (s *Scalar[T]) ToString(labeled bool, format string) string {
	var ret string
	if format != "" {
		switch {
		case s.IsFloat() || s.IsInteger():
			ret = printfNumber(s, format)
		case s.TypeID() == types.DateID || s.TypeID() == types.TimestampID:
			ts := As[types.Timestamp](s)
			out, err := types.Strftime(format, ts.Time())
			if err != nil {
				report(zapcore.ErrorLevel, errors.Wrap(err, errors.ErrorTypeParse, "invalid time format "+format))
			}
			ret = out
		default:
			reportUnsupported("got a format for %s, which is neither a number nor a date, ignoring it", s.TypeName())
		}
	}
	if ret == "" {
		if str := s.CopyByID(types.StringID); str == nil {
			reportUnsupported("automatic conversion of %s to string failed, returning an empty string", s.TypeName())
		} else {
			ret = str.(*Scalar[string]).v
		}
	}
	if labeled {
		ret += "(" + s.TypeName() + ")"
	}
	return ret
}

var (
	intFormat   = regexp.MustCompile(`%[-+# 0]*\d*[di]$`)
	uintFormat  = regexp.MustCompile(`%[-+# 0]*\d*u$`)
	floatFormat = regexp.MustCompile(`(?i)%[-+# 0]*\d*(\.\d+)?[efag]$`)
)

// printfNumber applies a C style printf format ending in one numeric verb.
func printfNumber(v Value, format string) string {
	last := len(format) - 1
	switch {
	case intFormat.MatchString(format):
		return stringpool.Sprintf(format[:last]+"d", As[int64](v))
	case uintFormat.MatchString(format):
		return stringpool.Sprintf(format[:last]+"d", As[uint64](v))
	case floatFormat.MatchString(format):
		switch format[last] {
		case 'a':
			format = format[:last] + "x"
		case 'A':
			format = format[:last] + "X"
		}
		return stringpool.Sprintf(format, As[float64](v))
	}
	reportUnsupported("unsupported number format %q", format)
	return ""
}

func (s *Scalar[T]) CopyByID(id types.ID) Value {
	c := Lookup(s.TypeID(), id)
	if c == nil {
		reportUnknown(s.TypeID(), id, subject(s))
		return nil
	}
	out, rc := c.Generate(s)
	reportOverflow(rc, subject(s), id)
	return out
}

func (s *Scalar[T]) FitsInto(id types.ID) bool {
	c := Lookup(s.TypeID(), id)
	if c == nil {
		reportUnknown(s.TypeID(), id, subject(s))
		return false
	}
	_, rc := c.Generate(s)
	return rc == numeric.InRange
}

func (s *Scalar[T]) Apply(other Value) bool {
	return convertInto(other, s)
}

// convertInto runs the converter from src's kind into dst and logs the
// outcome. It reports true only for an in-range conversion.
func convertInto(src, dst Value) bool {
	if src == nil {
		reportUnsupported("cannot convert an empty value into %s", dst.TypeName())
		return false
	}
	c := Lookup(src.TypeID(), dst.TypeID())
	if c == nil {
		reportUnknown(src.TypeID(), dst.TypeID(), subject(src))
		return false
	}
	rc := c.Convert(src, dst)
	reportOverflow(rc, subject(src), dst.TypeID())
	return rc == numeric.InRange
}

// As returns v's payload as U. If v already holds a U its payload is
// returned, otherwise it is converted. Without a converter U's zero value is
// returned and the failure logged.
func As[U types.Payload](v Value) U {
	if s, ok := v.(*Scalar[U]); ok {
		return types.Clone(s.v)
	}
	var zero U
	if v == nil {
		reportUnsupported("cannot convert an empty value into %s", types.IDOf[U]().Name())
		return zero
	}
	out := v.CopyByID(types.IDOf[U]())
	if out == nil {
		return zero
	}
	return out.(*Scalar[U]).v
}

// Is reports whether v holds a T.
func Is[T types.Payload](v Value) bool {
	_, ok := v.(*Scalar[T])
	return ok
}

// Cast returns the typed scalar behind v, or nil if v holds another kind.
func Cast[T types.Payload](v Value) *Scalar[T] {
	s, ok := v.(*Scalar[T])
	if !ok {
		if v != nil {
			reportUnsupported("%s accessed as %s", v.TypeName(), types.IDOf[T]().Name())
		}
		return nil
	}
	return s
}

// NewValueByID creates the zero value of kind id, or nil for unknown IDs.
func NewValueByID(id types.ID) Value {
	if !id.Valid() {
		reportUnsupported("cannot create a value of unknown kind %d", id)
		return nil
	}
	return descriptors()[id].newValue()
}

// ParseValue converts text into a value of kind id through the string
// converter of that kind.
func ParseValue(id types.ID, text string) Value {
	return NewValue(text).CopyByID(id)
}
