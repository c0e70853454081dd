package columnar

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/isis-group/isis-sub000/pkg/compression"
	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/testutil"
	"github.com/isis-group/isis-sub000/pkg/types"
)

func sampleArrays() []data.Array {
	return []data.Array{
		data.WrapArray([]bool{true, false}, nil),
		data.WrapArray([]int8{-128, 127}, nil),
		data.WrapArray([]uint8{0, 255}, nil),
		data.WrapArray([]int16{-1, 2}, nil),
		data.WrapArray([]uint16{3, 65535}, nil),
		data.WrapArray([]int32{math.MinInt32, 5}, nil),
		data.WrapArray([]uint32{6, math.MaxUint32}, nil),
		data.WrapArray([]int64{math.MinInt64, 7}, nil),
		data.WrapArray([]uint64{8, math.MaxUint64}, nil),
		data.WrapArray([]float32{0.5, -1.25}, nil),
		data.WrapArray([]float64{math.Pi, -0.0}, nil),
		data.WrapArray([]string{"a", "b c"}, nil),
		data.WrapArray([]types.Date{types.NewDate(2020, 2, 29), 0}, nil),
		data.WrapArray([]types.Timestamp{1600000000123, -1}, nil),
		data.WrapArray([]types.Duration{1500, -20}, nil),
		data.WrapArray([]types.Color24{{1, 2, 3}, {255, 0, 9}}, nil),
		data.WrapArray([]types.Color48{{1000, 2, 3}, {4, 5, 65535}}, nil),
		data.WrapArray([]types.FVector3{{1, 2, 3}, {4, 5, 6}}, nil),
		data.WrapArray([]types.DVector3{{1.5, 2, 3}, {4, 5, 6}}, nil),
		data.WrapArray([]types.FVector4{{1, 2, 3, 4}, {}}, nil),
		data.WrapArray([]types.DVector4{{1, 2, 3, 4}, {-1, -2, -3, -4}}, nil),
		data.WrapArray([]types.IVector4{{1, -2, 3, -4}, {}}, nil),
		data.WrapArray([]complex64{complex(1, 2), 0}, nil),
		data.WrapArray([]complex128{complex(-1, 0.5), complex(3, 4)}, nil),
		data.WrapArray([]types.IList{{1, 2, 3}, {}}, nil),
		data.WrapArray([]types.DList{{0.5}, {1, 2}}, nil),
		data.WrapArray([]types.SList{{"x", "y"}, {"z"}}, nil),
		data.WrapArray([]types.Selection{types.NewSelection("red,green", "green"), types.NewSelection("red,green")}, nil),
	}
}

func TestArrowRoundTripEveryKind(t *testing.T) {
	testutil.CaptureLogs(t)
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	for _, a := range sampleArrays() {
		t.Run(a.TypeName(), func(t *testing.T) {
			defer a.Release()
			arr, err := ToArrow(mem, a)
			require.NoError(t, err)
			defer arr.Release()
			assert.Equal(t, a.Len(), arr.Len())

			back, err := FromArrow(arr)
			require.NoError(t, err)
			defer back.Release()
			assert.Equal(t, a.TypeID(), back.TypeID())
			assert.Equal(t, 0, a.Compare(0, a.Len(), back, 0), "%s vs %s", a, back)
		})
	}
}

func TestArrowTypes(t *testing.T) {
	mem := memory.NewGoAllocator()
	check := func(a data.Array, want arrow.DataType) {
		t.Helper()
		defer a.Release()
		arr, err := ToArrow(mem, a)
		require.NoError(t, err)
		defer arr.Release()
		assert.True(t, arrow.TypeEqual(want, arr.DataType()), "%s: %s", a.TypeName(), arr.DataType())
	}
	check(data.NewArray[types.Timestamp](1), &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"})
	check(data.NewArray[types.Color24](1), arrow.FixedSizeListOf(3, arrow.PrimitiveTypes.Uint8))
	check(data.NewArray[types.DList](1), arrow.ListOf(arrow.PrimitiveTypes.Float64))
	check(data.NewArray[types.Date](1), arrow.FixedWidthTypes.Date32)
}

func TestSelectionUnsetBecomesNull(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := data.WrapArray([]types.Selection{types.NewSelection("a,b"), types.NewSelection("a,b", "b")}, nil)
	defer a.Release()

	arr, err := ToArrow(mem, a)
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 1, arr.NullN())
	assert.True(t, arr.IsNull(0))
}

func TestFromArrowNullsAreZero(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	b := array.NewInt32Builder(memory.NewGoAllocator())
	defer b.Release()
	b.AppendValues([]int32{4, 99, 6}, []bool{true, false, true})
	arr := b.NewArray()
	defer arr.Release()

	back, err := FromArrow(arr)
	require.NoError(t, err)
	defer back.Release()
	assert.Equal(t, []int32{4, 0, 6}, back.(*data.TypedArray[int32]).Slice())
	testutil.RequireLogged(t, logs, zapcore.WarnLevel, "null entries were imported as zero values")
}

func TestFromArrowTimeUnits(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Microsecond})
	defer b.Release()
	b.Append(arrow.Timestamp(1_500_000))
	arr := b.NewArray()
	defer arr.Release()

	back, err := FromArrow(arr)
	require.NoError(t, err)
	defer back.Release()
	assert.Equal(t, types.Timestamp(1500), data.As[types.Timestamp](back.At(0)))

	db := array.NewDurationBuilder(mem, &arrow.DurationType{Unit: arrow.Second})
	defer db.Release()
	db.Append(arrow.Duration(3))
	darr := db.NewArray()
	defer darr.Release()

	dback, err := FromArrow(darr)
	require.NoError(t, err)
	defer dback.Release()
	assert.Equal(t, types.Duration(3000), data.As[types.Duration](dback.At(0)))
}

func TestUnsupportedArrowTypes(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	defer b.Release()
	b.Append([]byte{1})
	arr := b.NewArray()
	defer arr.Release()

	_, err := FromArrow(arr)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))

	_, err = ToArrow(mem, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestIPCRoundTrip(t *testing.T) {
	testutil.CaptureLogs(t)
	ids := data.WrapArray([]int32{1, 2, 3}, nil)
	defer ids.Release()
	names := data.WrapArray([]string{"a", "b", "c"}, nil)
	defer names.Release()
	where := data.WrapArray([]types.FVector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, nil)
	defer where.Release()

	var buf bytes.Buffer
	require.NoError(t, WriteIPC(&buf, []Column{{"id", ids}, {"name", names}, {"pos", where}}))

	cols, err := ReadIPC(&buf)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	for i, want := range []data.Array{ids, names, where} {
		defer cols[i].Array.Release()
		assert.Equal(t, want.TypeID(), cols[i].Array.TypeID())
		assert.Equal(t, 0, want.Compare(0, want.Len(), cols[i].Array, 0))
	}
	assert.Equal(t, "pos", cols[2].Name)
}

func TestIPCErrors(t *testing.T) {
	short := data.WrapArray([]int8{1}, nil)
	defer short.Release()
	long := data.WrapArray([]int8{1, 2}, nil)
	defer long.Release()

	var buf bytes.Buffer
	err := WriteIPC(&buf, []Column{{"a", short}, {"b", long}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	err = WriteIPC(&buf, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = ReadIPC(bytes.NewReader([]byte("not arrow")))
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParquetRoundTrip(t *testing.T) {
	testutil.CaptureLogs(t)

	cols := []Column{
		{"s16", data.WrapArray([]int16{-1, 2, 300}, nil)},
		{"u8", data.WrapArray([]uint8{0, 128, 255}, nil)},
		{"d", data.WrapArray([]float64{0.5, math.MaxFloat64, -3}, nil)},
		{"flag", data.WrapArray([]bool{true, false, true}, nil)},
		{"name", data.WrapArray([]string{"a", "", "c d"}, nil)},
		{"day", data.WrapArray([]types.Date{types.NewDate(2021, 6, 7), 0, 1}, nil)},
		{"at", data.WrapArray([]types.Timestamp{0, 1234567890123, -5}, nil)},
	}
	defer releaseColumns(cols)

	for _, alg := range []compression.Algorithm{compression.None, compression.Snappy, compression.Zstd, compression.Gzip} {
		var buf bytes.Buffer
		require.NoError(t, WriteParquet(&buf, cols, alg), alg)

		back, err := ReadParquet(context.Background(), &buf)
		require.NoError(t, err, alg)
		require.Len(t, back, len(cols))
		for i, want := range cols {
			assert.Equal(t, want.Name, back[i].Name)
			assert.Equal(t, want.Array.TypeID(), back[i].Array.TypeID(), want.Name)
			assert.Equal(t, 0, want.Array.Compare(0, want.Array.Len(), back[i].Array, 0), want.Name)
		}
		releaseColumns(back)
	}
}

func TestParquetErrors(t *testing.T) {
	a := data.WrapArray([]int8{1}, nil)
	defer a.Release()

	var buf bytes.Buffer
	err := WriteParquet(&buf, []Column{{"a", a}}, compression.S2)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))

	err = WriteParquet(&buf, nil, compression.None)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = ReadParquet(context.Background(), bytes.NewReader([]byte("PAR1 but not really")))
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}
