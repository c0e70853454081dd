package data

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/metrics"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

type (
	scalarFunc  func(src, dst Value) numeric.RangeCheck
	arrayFunc   func(src, dst Array, n int, scale, offset float64) numeric.RangeCheck
	scalingFunc func(lo, hi Value, opt numeric.Policy) (scale, offset float64)
)

// Converter moves values and arrays from one registered kind into another.
// Converters are created once when the table is built and never change.
type Converter struct {
	from, to types.ID
	scalar   scalarFunc
	array    arrayFunc
	// nil for pairs that never scale
	scaling scalingFunc
}

type convTable [types.NumTypes + 1][types.NumTypes + 1]*Converter

var (
	tableOnce sync.Once
	table     *convTable
)

func converters() *convTable {
	tableOnce.Do(func() {
		t := &convTable{}
		t.build()
		table = t
		logger.Debug("conversion table created", zap.Int("converters", t.count()))
	})
	return table
}

func (t *convTable) at(from, to types.ID) *Converter { return t[from][to] }

func (t *convTable) count() int {
	n := 0
	for i := range t {
		for j := range t[i] {
			if t[i][j] != nil {
				n++
			}
		}
	}
	return n
}

// Lookup returns the converter from one kind into another, or nil if the
// pair cannot be converted.
func Lookup(from, to types.ID) *Converter {
	if !from.Valid() || !to.Valid() {
		return nil
	}
	return converters().at(from, to)
}

// Converters lists every registered converter, ordered by source and
// destination.
func Converters() []*Converter {
	t := converters()
	out := make([]*Converter, 0, t.count())
	for _, from := range types.All() {
		for _, to := range types.All() {
			if c := t[from][to]; c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func (c *Converter) From() types.ID { return c.from }

func (c *Converter) To() types.ID { return c.to }

// Scalable reports whether the pair computes a value dependent scaling.
func (c *Converter) Scalable() bool { return c.scaling != nil }

func (c *Converter) String() string { return c.from.Name() + "=>" + c.to.Name() }

func (c *Converter) mismatch(from, to types.ID) {
	report(zapcore.ErrorLevel, errors.Newf(errors.ErrorTypeInternal,
		"converter %s used for %s=>%s", c, from.Name(), to.Name()))
}

// Convert writes src into the existing dst.
func (c *Converter) Convert(src, dst Value) numeric.RangeCheck {
	if src == nil || dst == nil {
		reportUnsupported("converter %s called with an empty value", c)
		return numeric.InRange
	}
	if src.TypeID() != c.from || dst.TypeID() != c.to {
		c.mismatch(src.TypeID(), dst.TypeID())
		return numeric.InRange
	}
	rc := c.scalar(src, dst)
	metrics.RecordConversion(c.from.Name(), c.to.Name(), rc.String())
	return rc
}

// Generate creates a new value of the destination kind and converts src
// into it.
func (c *Converter) Generate(src Value) (Value, numeric.RangeCheck) {
	dst := descriptors()[c.to].newValue()
	return dst, c.Convert(src, dst)
}

// CreateArray allocates a zeroed array of the destination kind.
func (c *Converter) CreateArray(n int) Array {
	return descriptors()[c.to].newArray(n)
}

// Scaling computes the scale and offset that map [lo, hi] into the
// destination. Pairs that never scale return the identity.
func (c *Converter) Scaling(lo, hi Value, opt numeric.Policy) ScalingPair {
	if c.scaling == nil {
		return IdentityScaling()
	}
	if lo == nil || hi == nil {
		reportUnsupported("cannot compute a scaling for %s without min and max", c)
		return ScalingPair{}
	}
	scale, offset := c.scaling(lo, hi, opt)
	return NewScaling(scale, offset)
}

// ConvertArray converts the overlapping part of src into dst. An unset
// scaling is computed from src's value range with the autoscale policy.
func (c *Converter) ConvertArray(src, dst Array, sc ScalingPair) numeric.RangeCheck {
	if src == nil || dst == nil {
		reportUnsupported("converter %s called with an empty array", c)
		return numeric.InRange
	}
	if src.TypeID() != c.from || dst.TypeID() != c.to {
		c.mismatch(src.TypeID(), dst.TypeID())
		return numeric.InRange
	}
	if sc.IsZero() {
		sc = c.scalingOf(src, numeric.AutoScale)
		if sc.IsZero() {
			return numeric.InRange
		}
	}

	n := src.Len()
	switch {
	case n > dst.Len():
		reportRange("the destination %s is shorter than the source (%d < %d), only converting %d elements",
			dst.TypeName(), dst.Len(), n, dst.Len())
		n = dst.Len()
	case n < dst.Len():
		logger.Warn("the destination is longer than the source, leaving the remainder untouched",
			zap.String("to", dst.TypeName()), zap.Int("source", n), zap.Int("destination", dst.Len()))
	}

	scale, offset := sc.Values()
	timer := metrics.NewTimer()
	rc := c.array(src, dst, n, scale, offset)
	metrics.RecordArrayConversion(c.from.Name(), c.to.Name(), n, timer.Stop())
	return rc
}

// GenerateArray allocates a destination of src's length and converts into it.
func (c *Converter) GenerateArray(src Array, sc ScalingPair) (Array, numeric.RangeCheck) {
	if src == nil {
		reportUnsupported("converter %s called with an empty array", c)
		return nil, numeric.InRange
	}
	dst := c.CreateArray(src.Len())
	return dst, c.ConvertArray(src, dst, sc)
}

func (c *Converter) scalingOf(src Array, opt numeric.Policy) ScalingPair {
	if c.scaling == nil {
		return IdentityScaling()
	}
	lo, hi := src.MinMax()
	return c.Scaling(lo, hi, opt)
}
