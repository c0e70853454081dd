package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isis-group/isis-sub000/pkg/types"
)

func TestCastInRange(t *testing.T) {
	v, r := Cast[int32, int16](1234)
	assert.Equal(t, int16(1234), v)
	assert.Equal(t, InRange, r)

	f, r := Cast[int64, float32](1 << 40)
	assert.Equal(t, float32(1<<40), f)
	assert.Equal(t, InRange, r)

	u, r := Cast[float64, uint8](2.5)
	assert.Equal(t, uint8(2), u, "half to even")
	assert.Equal(t, InRange, r)

	u, _ = Cast[float64, uint8](3.5)
	assert.Equal(t, uint8(4), u)
}

func TestCastOverflowClamps(t *testing.T) {
	u, r := Cast[int32, uint8](300)
	assert.Equal(t, uint8(255), u)
	assert.Equal(t, PositiveOverflow, r)

	u, r = Cast[int8, uint8](-1)
	assert.Equal(t, uint8(0), u)
	assert.Equal(t, NegativeOverflow, r)

	i, r := Cast[uint64, int64](math.MaxUint64)
	assert.Equal(t, int64(math.MaxInt64), i)
	assert.Equal(t, PositiveOverflow, r)

	i, r = Cast[float64, int64](9.3e18)
	assert.Equal(t, int64(math.MaxInt64), i)
	assert.Equal(t, PositiveOverflow, r)

	s, r := Cast[float64, int16](-40000)
	assert.Equal(t, int16(math.MinInt16), s)
	assert.Equal(t, NegativeOverflow, r)

	f, r := Cast[float64, float32](1e300)
	assert.Equal(t, float32(math.MaxFloat32), f)
	assert.Equal(t, PositiveOverflow, r)

	f, r = Cast[float64, float32](math.Inf(-1))
	assert.True(t, math.IsInf(float64(f), -1))
	assert.Equal(t, InRange, r)
}

func TestCastNaNToInteger(t *testing.T) {
	v, r := Cast[float32, int32](float32(math.NaN()))
	assert.Equal(t, int32(0), v)
	assert.Equal(t, InRange, r)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	v, _ := Round[float64, int8](2.5)
	assert.Equal(t, int8(3), v)
	v, _ = Round[float64, int8](-2.5)
	assert.Equal(t, int8(-3), v)
	assert.Equal(t, uint8(255), Clamp[uint8](1000.2))
	assert.Equal(t, int8(-128), Clamp[int8](-1000))
	assert.Equal(t, float32(1.5), Clamp[float32](1.5))
}

func TestRoundTripIdentity(t *testing.T) {
	for _, v := range []int64{math.MinInt64, -1, 0, 1, math.MaxInt64} {
		got, r := Cast[int64, int64](v)
		assert.Equal(t, v, got)
		assert.Equal(t, InRange, r)
	}
	for _, v := range []float64{-math.MaxFloat64, -1.5, 0, math.SmallestNonzeroFloat64, 3.5415} {
		got, r := Cast[float64, float64](v)
		assert.Equal(t, v, got)
		assert.Equal(t, InRange, r)
	}
	got, _ := Cast[uint64, uint64](math.MaxUint64)
	assert.Equal(t, uint64(math.MaxUint64), got)
}

func TestWorst(t *testing.T) {
	assert.Equal(t, PositiveOverflow, InRange.Worst(PositiveOverflow))
	assert.Equal(t, NegativeOverflow, NegativeOverflow.Worst(PositiveOverflow))
	assert.Equal(t, InRange, InRange.Worst(InRange))
}

var integerIDs = []types.ID{
	types.Int8ID, types.Uint8ID, types.Int16ID, types.Uint16ID,
	types.Int32ID, types.Uint32ID, types.Int64ID, types.Uint64ID,
}

var ranges = [][2]float64{
	{-5, 1000}, {0, 1}, {0.25, 0.5}, {-1, -0.5}, {-200, 300}, {100, 200},
	{-1e6, 1e6}, {1000, 1010}, {0, 0}, {-3, 3}, {1e12, 1e15},
}

func TestScalingNoScaleIsIdentity(t *testing.T) {
	for _, dst := range integerIDs {
		for _, r := range ranges {
			scale, offset := Scaling(r[0], r[1], false, dst, NoScale)
			assert.Equal(t, 1.0, scale)
			assert.Equal(t, 0.0, offset)
		}
	}
}

func TestScalingFloatDestinationNeverScales(t *testing.T) {
	for _, dst := range []types.ID{types.Float32ID, types.Float64ID} {
		for _, opt := range []Policy{NoScale, AutoScale, NoUpscale, Upscale} {
			for _, r := range ranges {
				scale, offset := Scaling(r[0], r[1], true, dst, opt)
				assert.Equal(t, 1.0, scale, "%s %s %v", dst, opt, r)
				assert.Equal(t, 0.0, offset)
			}
		}
	}
}

func TestScalingDomainContainment(t *testing.T) {
	for _, dst := range integerIDs {
		lo, hi, ok := DomainOf(dst)
		require.True(t, ok)
		tol := 1 + 1e-9*math.Max(math.Abs(lo), math.Abs(hi))
		for _, srcInt := range []bool{false, true} {
			for _, r := range ranges {
				scale, offset := Scaling(r[0], r[1], srcInt, dst, AutoScale)
				low := r[0]*scale + offset
				high := r[1]*scale + offset
				assert.GreaterOrEqual(t, low, lo-tol, "%s %v int=%v", dst, r, srcInt)
				assert.LessOrEqual(t, high, hi+tol, "%s %v int=%v", dst, r, srcInt)
				assert.LessOrEqual(t, low, high)
			}
		}
	}
}

func TestScalingNoUpscaleNeverMagnifies(t *testing.T) {
	for _, dst := range integerIDs {
		for _, r := range ranges {
			scale, _ := Scaling(r[0], r[1], false, dst, NoUpscale)
			assert.LessOrEqual(t, scale, 1.0)
		}
	}
}

func TestScalingIntegerSourceIsNotMagnified(t *testing.T) {
	scale, offset := Scaling(0, 10, true, types.Uint16ID, AutoScale)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, 0.0, offset)

	scale, _ = Scaling(0, 10, false, types.Uint16ID, AutoScale)
	assert.InDelta(t, 6553.5, scale, 1e-9)

	scale, _ = Scaling(0, 10, true, types.Uint16ID, Upscale)
	assert.InDelta(t, 6553.5, scale, 1e-9)
}

func TestScalingDoubleToUint8(t *testing.T) {
	scale, offset := Scaling(-5, 1000, false, types.Uint8ID, AutoScale)
	assert.InDelta(t, 255.0/1005, scale, 1e-12)
	assert.InDelta(t, 5*255.0/1005, offset, 1e-12)
}

func TestScalingClampKeepsOffsetWhenRangeDoesNotFit(t *testing.T) {
	// [1000,1010] does not fit u8bit, so the shift to zero survives the clamp
	scale, offset := Scaling(1000, 1010, true, types.Uint8ID, AutoScale)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, -1000.0, offset)

	// [10,20] fits, so no shift is applied
	scale, offset = Scaling(10, 20, true, types.Uint8ID, AutoScale)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, 0.0, offset)
}

func TestScalingSymmetricAroundZero(t *testing.T) {
	scale, offset := Scaling(-200, 300, false, types.Int8ID, AutoScale)
	assert.InDelta(t, 127.0/300, scale, 1e-12)
	assert.Equal(t, 0.0, offset)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("NoUpscale")
	require.NoError(t, err)
	assert.Equal(t, NoUpscale, p)

	_, err = ParsePolicy("sideways")
	assert.Error(t, err)

	var q Policy
	require.NoError(t, q.UnmarshalText([]byte("upscale")))
	assert.Equal(t, Upscale, q)
	b, _ := q.MarshalText()
	assert.Equal(t, "upscale", string(b))
}

func TestDomainOf(t *testing.T) {
	lo, hi, ok := DomainOf(types.Int16ID)
	assert.True(t, ok)
	assert.Equal(t, float64(math.MinInt16), lo)
	assert.Equal(t, float64(math.MaxInt16), hi)

	_, _, ok = DomainOf(types.StringID)
	assert.False(t, ok)
}
