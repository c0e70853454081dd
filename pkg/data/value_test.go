package data

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/testutil"
	"github.com/isis-group/isis-sub000/pkg/types"
)

func TestIntToString(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	v := NewValue(int32(5))

	s := v.CopyByID(types.StringID)
	require.NotNil(t, s)
	assert.Equal(t, "5", As[string](s))
	assert.Equal(t, "5", v.ToString(false, ""))
	assert.Equal(t, "5(s32bit)", v.ToString(true, ""))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)
}

func TestStringToFloat(t *testing.T) {
	testutil.CaptureLogs(t)
	assert.Equal(t, float32(3.5415), As[float32](NewValue("3.5415")))
	assert.Equal(t, 3.5415, As[float64](NewValue(" 3.5415 ")))
}

func TestStringToBool(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.True(t, As[bool](NewValue("true")))
	assert.True(t, As[bool](NewValue("Yes")))
	assert.False(t, As[bool](NewValue("no")))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.False(t, As[bool](NewValue("maybe")))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, `failed to interpret "maybe" as boolean`)
}

func TestStringToNumber(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, int64(-42), As[int64](NewValue("-42")))
	assert.Equal(t, uint64(math.MaxUint64), As[uint64](NewValue("18446744073709551615")))
	assert.Equal(t, int16(2), As[int16](NewValue("2.5e0")), "rounds half to even")
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.Equal(t, int8(127), As[int8](NewValue("1000")))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "positive overflow")

	assert.Equal(t, int8(0), As[int8](NewValue("abc")))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, `failed to interpret "abc" as s8bit`)
}

func TestStringToNumberPrefix(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, int32(12), As[int32](NewValue("12px")))
	ignored := logs.FilterMessageSnippet("ignoring the text after the number").All()
	require.Len(t, ignored, 1)
	assert.Equal(t, zapcore.WarnLevel, ignored[0].Level)
	testutil.RequireNotLogged(t, logs, zapcore.ErrorLevel)

	assert.Equal(t, 350.0, As[float64](NewValue("3.5e2kg")))
	assert.Equal(t, -7.0, As[float64](NewValue(" -7e ")))

	assert.Equal(t, int32(0), As[int32](NewValue("px12")))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, `failed to interpret "px12" as s32bit`)
}

func TestNumericOverflowClamps(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	out := NewValue(int32(300)).CopyByID(types.Uint8ID)
	require.NotNil(t, out)
	assert.Equal(t, uint8(255), Cast[uint8](out).Get())
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "positive overflow when converting 300(s32bit) to u8bit")

	assert.Equal(t, uint8(0), As[uint8](NewValue(int32(-1))))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "negative overflow")

	assert.False(t, NewValue(int32(300)).FitsInto(types.Uint8ID))
	assert.True(t, NewValue(int32(200)).FitsInto(types.Uint8ID))
}

func TestUnknownConversionFailsSoft(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	d := NewValue(types.Date(3))
	assert.Nil(t, d.CopyByID(types.Int8ID))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "no known conversion from date to s8bit")

	assert.Equal(t, int8(0), As[int8](d))
	assert.False(t, d.FitsInto(types.Int8ID))
	assert.False(t, NewValue(int8(1)).Eq(d))
}

func TestComparisonsWithOverflow(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	small := NewValue(uint8(200))
	assert.True(t, small.Lt(NewValue(int32(1000))))
	assert.False(t, small.Gt(NewValue(int32(1000))))
	assert.False(t, small.Eq(NewValue(int32(1000))))

	assert.True(t, small.Gt(NewValue(int32(-5))))
	assert.False(t, small.Lt(NewValue(int32(-5))))

	assert.True(t, NewValue(int8(3)).Eq(NewValue("3")))
	assert.True(t, NewValue(2.5).Lt(NewValue(int8(3))))
	assert.True(t, NewValue("b").Gt(NewValue("a")))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)
}

func TestUnorderedKindsDoNotCompare(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	v := NewValue(types.FVector3{1, 2, 3})
	assert.False(t, v.Lt(NewValue(types.FVector3{2, 3, 4})))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "fvector3 is not ordered")
	assert.True(t, v.Eq(NewValue(types.FVector3{1, 2, 3})))
}

func TestArithmetic(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, int16(8), As[int16](NewValue(int16(5)).Plus(NewValue(int16(3)))))
	assert.Equal(t, int16(2), As[int16](NewValue(int16(5)).Minus(NewValue("3"))))
	assert.Equal(t, 7.5, As[float64](NewValue(2.5).Multiply(NewValue(int8(3)))))
	assert.Equal(t, "ab", As[string](NewValue("a").Plus(NewValue("b"))))
	assert.Equal(t, complex(2, 2), As[complex128](NewValue(complex(1, 1)).Multiply(NewValue(complex(2, 0)))))
	assert.Equal(t, types.FVector3{2, 4, 6},
		As[types.FVector3](NewValue(types.FVector3{1, 2, 3}).Plus(NewValue(types.FVector3{1, 2, 3}))))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	unchanged := NewValue(int32(5)).Divide(NewValue(int32(0)))
	assert.Equal(t, int32(5), As[int32](unchanged))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "operation divide of 5(s32bit) with 0(s32bit) failed")

	assert.True(t, As[bool](NewValue(true).Plus(NewValue(true))))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "operation plus is not supported for boolean")

	assert.Equal(t, "a", As[string](NewValue("a").Minus(NewValue("b"))))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "operation minus is not supported for string")
}

func TestTemporalArithmetic(t *testing.T) {
	testutil.CaptureLogs(t)

	ts := NewValue(types.Timestamp(0)).Plus(NewValue(types.Duration(1500)))
	assert.Equal(t, types.Timestamp(1500), As[types.Timestamp](ts))

	d := NewValue(types.Date(10)).Minus(NewValue(types.Duration(2 * 86400000)))
	assert.Equal(t, types.Date(8), As[types.Date](d))

	dur := NewValue(types.Duration(1000)).Multiply(NewValue(2.5))
	assert.Equal(t, types.Duration(2500), As[types.Duration](dur))

	dur = NewValue(types.Duration(1000)).Divide(NewValue(int8(4)))
	assert.Equal(t, types.Duration(250), As[types.Duration](dur))
}

func TestToStringFormats(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, "3.14", NewValue(3.14159).ToString(false, "%.2f"))
	assert.Equal(t, "-0005", NewValue(int8(-5)).ToString(false, "%05d"))
	assert.Equal(t, "7", NewValue(uint16(7)).ToString(false, "%u"))
	assert.Equal(t, "1.000000e+00", NewValue(int32(1)).ToString(false, "%e"))

	local := time.Date(2020, time.January, 2, 3, 4, 5, 0, time.Local)
	assert.Equal(t, "2020-01-02 03:04:05",
		NewValue(types.TimestampOf(local)).ToString(false, "%Y-%m-%d %H:%M:%S"))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.Equal(t, "x(string)", NewValue("x").ToString(true, "%d"))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "neither a number nor a date")
}

func TestCanonicalStrings(t *testing.T) {
	testutil.CaptureLogs(t)

	cases := []struct {
		v    Value
		want string
	}{
		{NewValue(true), "true"},
		{NewValue(float32(0.1)), "0.1"},
		{NewValue(types.Color24{1, 2, 3}), "<1|2|3>"},
		{NewValue(types.DVector3{1.5, 2, 3}), "<1.5|2|3>"},
		{NewValue(types.IList{1, 2, 3}), "{1,2,3}"},
		{NewValue(types.SList{"a", "b"}), "{a,b}"},
		{NewValue(complex64(complex(1, -2))), "(1,-2)"},
		{NewValue(types.Duration(42)), "42ms"},
		{NewValue(types.NewSelection("a,b")), types.NotSet},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.v.String())
		assert.Equal(t, tc.want, As[string](tc.v))
	}
}

func TestStringToSequences(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, types.IList{1, 2, 3}, As[types.IList](NewValue("1,2,3")))
	assert.Equal(t, types.DList{-1.5, 2e3}, As[types.DList](NewValue("{-1.5; 2e3}")))
	assert.Equal(t, types.SList{"a", "b", "c"}, As[types.SList](NewValue("{a,b, c}")))
	assert.Equal(t, types.FVector3{1, 2, 3}, As[types.FVector3](NewValue("<1|2|3|4>")))
	assert.Equal(t, types.IVector4{1, 2, 0, 0}, As[types.IVector4](NewValue("1 2")))
	assert.Equal(t, types.Color24{10, 20, 30}, As[types.Color24](NewValue("<10|20|30>")))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.Equal(t, types.Color24{255, 0, 1}, As[types.Color24](NewValue("300 -4 1")))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "overflow when converting")
}

func TestSequenceConversions(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, types.FVector3{1, 2, 3}, As[types.FVector3](NewValue(types.IList{1, 2, 3, 0})))
	assert.Equal(t, types.DList{1, 2, 3, 4}, As[types.DList](NewValue(types.FVector4{1, 2, 3, 4})))
	assert.Equal(t, types.SList{"1.5", "2"}, As[types.SList](NewValue(types.DList{1.5, 2})))
	assert.Equal(t, types.IList{2, 2}, As[types.IList](NewValue(types.DList{1.5, 2.4})))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.Equal(t, types.FVector3{1, 2, 3}, As[types.FVector3](NewValue(types.IList{1, 2, 3, 4})))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "positive overflow")
}

func TestApplyIntoNonEmptyListWarns(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	dst := NewValue(types.DList{9, 9, 9})
	assert.True(t, dst.Apply(NewValue(types.IList{1, 2})))
	assert.Equal(t, types.DList{1, 2}, dst.Get())
	testutil.RequireLogged(t, logs, zapcore.WarnLevel, "storing into a non empty list")
}

func TestComplexAndColor(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	assert.Equal(t, complex(1, 2), As[complex128](NewValue("(1,2)")))
	assert.Equal(t, complex(1, 2), As[complex128](NewValue("(1+2i)")))
	assert.Equal(t, complex64(3), As[complex64](NewValue(int8(3))))
	assert.Equal(t, types.Color48{7, 7, 7}, As[types.Color48](NewValue(uint8(7))))
	assert.Equal(t, types.Color48{1, 2, 3}, As[types.Color48](NewValue(types.Color24{1, 2, 3})))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.Equal(t, types.Color24{255, 2, 3}, As[types.Color24](NewValue(types.Color48{300, 2, 3})))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "positive overflow")
}

func TestSelection(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	sel := NewValue(types.NewSelection("a,b,c"))
	assert.True(t, sel.Apply(NewValue("B")))
	assert.Equal(t, "b", As[string](sel))
	assert.Equal(t, 2, sel.Get().Index())

	assert.False(t, sel.Apply(NewValue("z")))
	assert.Equal(t, "b", As[string](sel))
	testutil.RequireLogged(t, logs, zapcore.WarnLevel, "not an entry of the selection")

	other := NewValue(types.NewSelection("a,b,c", "c"))
	assert.True(t, sel.Lt(other))
	assert.False(t, sel.Eq(other))
}

func TestTemporalConversions(t *testing.T) {
	logs := testutil.CaptureLogs(t)

	want := types.TimestampOf(time.Date(1970, time.January, 2, 0, 0, 0, 0, time.Local))
	assert.Equal(t, want, As[types.Timestamp](NewValue("19700102000000")))

	assert.Equal(t, types.Date(1), As[types.Date](NewValue(types.Timestamp(86400000+5000))))
	assert.Equal(t, types.Date(-1), As[types.Date](NewValue(types.Timestamp(-1))))
	assert.Equal(t, types.Timestamp(86400000), As[types.Timestamp](NewValue(types.Date(1))))
	assert.Equal(t, types.Duration(3600000), As[types.Duration](NewValue("01:00:00")))
	assert.Equal(t, types.NewDate(2020, time.March, 4), As[types.Date](NewValue("2020-03-04")))
	testutil.RequireNotLogged(t, logs, zapcore.WarnLevel)

	assert.Equal(t, types.Timestamp(0), As[types.Timestamp](NewValue("yesterday")))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, `failed to interpret "yesterday" as timestamp`)
}

func TestBoolNumbers(t *testing.T) {
	testutil.CaptureLogs(t)
	assert.True(t, As[bool](NewValue(0.5)))
	assert.False(t, As[bool](NewValue(int64(0))))
	assert.Equal(t, uint16(1), As[uint16](NewValue(true)))
}

func TestCloneIsDeep(t *testing.T) {
	v := NewValue(types.IList{1, 2})
	c := Cast[types.IList](v.Clone())
	require.NotNil(t, c)
	c.Get()[0] = 9
	assert.Equal(t, types.IList{1, 2}, v.Get())
}

func TestCastAndIs(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	v := Value(NewValue(int8(1)))
	assert.True(t, Is[int8](v))
	assert.False(t, Is[uint8](v))
	assert.Nil(t, Cast[uint8](v))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "s8bit accessed as u8bit")
}

func TestNewValueByID(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	for _, id := range types.All() {
		v := NewValueByID(id)
		require.NotNil(t, v, id.Name())
		assert.Equal(t, id, v.TypeID())
		assert.Equal(t, id.Name(), v.TypeName())
	}
	assert.Nil(t, NewValueByID(types.InvalidID))
	testutil.RequireLogged(t, logs, zapcore.ErrorLevel, "unknown kind")
}

func TestParseValue(t *testing.T) {
	testutil.CaptureLogs(t)
	v := ParseValue(types.Uint16ID, "513")
	require.NotNil(t, v)
	assert.Equal(t, uint16(513), As[uint16](v))
	assert.True(t, v.IsInteger())
	assert.False(t, v.IsFloat())
	assert.Equal(t, uint16(513), v.Native())
}
