// Package columnar bridges typed arrays and Apache Arrow columns, and stores
// named arrays as Arrow IPC or Parquet files.
//
// Every kind with a fixed layout has an Arrow counterpart:
//
//	boolean, numbers          -> the matching primitive type
//	string                    -> utf8
//	date, timestamp, duration -> date32, timestamp[ms, UTC], duration[ms]
//	colors, vectors, complex  -> fixed_size_list of the channel type
//	lists                     -> list of int32, float64 or utf8
//	selection                 -> dictionary<int32, utf8>, unset as null
package columnar

import (
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/types"
)

var (
	timestampType = &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}
	durationType  = &arrow.DurationType{Unit: arrow.Millisecond}
	selectionType = &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
)

type valuesBuilder[T any] interface {
	array.Builder
	AppendValues(v []T, valid []bool)
}

func primitive[T any](b valuesBuilder[T], vals []T) arrow.Array {
	defer b.Release()
	b.AppendValues(vals, nil)
	return b.NewArray()
}

func mapped[T, A any](b valuesBuilder[A], vals []T, conv func(T) A) arrow.Array {
	defer b.Release()
	b.Reserve(len(vals))
	out := make([]A, len(vals))
	for i, v := range vals {
		out[i] = conv(v)
	}
	b.AppendValues(out, nil)
	return b.NewArray()
}

// nestedBuilder is the common surface of list and fixed size list builders.
type nestedBuilder interface {
	array.Builder
	Append(valid bool)
	ValueBuilder() array.Builder
}

func nested[E any](b nestedBuilder, rows []E, fill func(array.Builder, E)) arrow.Array {
	defer b.Release()
	vb := b.ValueBuilder()
	for _, r := range rows {
		b.Append(true)
		fill(vb, r)
	}
	return b.NewArray()
}

func fixed[E any](mem memory.Allocator, n int32, elem arrow.DataType, rows []E, fill func(array.Builder, E)) arrow.Array {
	return nested(array.NewFixedSizeListBuilder(mem, n, elem), rows, fill)
}

func list[E any](mem memory.Allocator, elem arrow.DataType, rows []E, fill func(array.Builder, E)) arrow.Array {
	return nested(array.NewListBuilder(mem, elem), rows, fill)
}

// ToArrow copies a into a new Arrow array allocated from mem. The caller
// releases the result.
func ToArrow(mem memory.Allocator, a data.Array) (arrow.Array, error) {
	if a == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "cannot export an empty array handle")
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	switch x := a.(type) {
	case *data.TypedArray[bool]:
		return primitive(array.NewBooleanBuilder(mem), x.Slice()), nil
	case *data.TypedArray[int8]:
		return primitive(array.NewInt8Builder(mem), x.Slice()), nil
	case *data.TypedArray[uint8]:
		return primitive(array.NewUint8Builder(mem), x.Slice()), nil
	case *data.TypedArray[int16]:
		return primitive(array.NewInt16Builder(mem), x.Slice()), nil
	case *data.TypedArray[uint16]:
		return primitive(array.NewUint16Builder(mem), x.Slice()), nil
	case *data.TypedArray[int32]:
		return primitive(array.NewInt32Builder(mem), x.Slice()), nil
	case *data.TypedArray[uint32]:
		return primitive(array.NewUint32Builder(mem), x.Slice()), nil
	case *data.TypedArray[int64]:
		return primitive(array.NewInt64Builder(mem), x.Slice()), nil
	case *data.TypedArray[uint64]:
		return primitive(array.NewUint64Builder(mem), x.Slice()), nil
	case *data.TypedArray[float32]:
		return primitive(array.NewFloat32Builder(mem), x.Slice()), nil
	case *data.TypedArray[float64]:
		return primitive(array.NewFloat64Builder(mem), x.Slice()), nil
	case *data.TypedArray[string]:
		return primitive(array.NewStringBuilder(mem), x.Slice()), nil

	case *data.TypedArray[types.Date]:
		return mapped(array.NewDate32Builder(mem), x.Slice(), func(d types.Date) arrow.Date32 { return arrow.Date32(d) }), nil
	case *data.TypedArray[types.Timestamp]:
		return mapped(array.NewTimestampBuilder(mem, timestampType), x.Slice(),
			func(t types.Timestamp) arrow.Timestamp { return arrow.Timestamp(t) }), nil
	case *data.TypedArray[types.Duration]:
		return mapped(array.NewDurationBuilder(mem, durationType), x.Slice(),
			func(d types.Duration) arrow.Duration { return arrow.Duration(d) }), nil

	case *data.TypedArray[types.Color24]:
		return fixed(mem, 3, arrow.PrimitiveTypes.Uint8, x.Slice(), func(b array.Builder, c types.Color24) {
			b.(*array.Uint8Builder).AppendValues([]uint8{c.R, c.G, c.B}, nil)
		}), nil
	case *data.TypedArray[types.Color48]:
		return fixed(mem, 3, arrow.PrimitiveTypes.Uint16, x.Slice(), func(b array.Builder, c types.Color48) {
			b.(*array.Uint16Builder).AppendValues([]uint16{c.R, c.G, c.B}, nil)
		}), nil
	case *data.TypedArray[types.FVector3]:
		return fixed(mem, 3, arrow.PrimitiveTypes.Float32, x.Slice(), func(b array.Builder, v types.FVector3) {
			b.(*array.Float32Builder).AppendValues(v[:], nil)
		}), nil
	case *data.TypedArray[types.DVector3]:
		return fixed(mem, 3, arrow.PrimitiveTypes.Float64, x.Slice(), func(b array.Builder, v types.DVector3) {
			b.(*array.Float64Builder).AppendValues(v[:], nil)
		}), nil
	case *data.TypedArray[types.FVector4]:
		return fixed(mem, 4, arrow.PrimitiveTypes.Float32, x.Slice(), func(b array.Builder, v types.FVector4) {
			b.(*array.Float32Builder).AppendValues(v[:], nil)
		}), nil
	case *data.TypedArray[types.DVector4]:
		return fixed(mem, 4, arrow.PrimitiveTypes.Float64, x.Slice(), func(b array.Builder, v types.DVector4) {
			b.(*array.Float64Builder).AppendValues(v[:], nil)
		}), nil
	case *data.TypedArray[types.IVector4]:
		return fixed(mem, 4, arrow.PrimitiveTypes.Int32, x.Slice(), func(b array.Builder, v types.IVector4) {
			b.(*array.Int32Builder).AppendValues(v[:], nil)
		}), nil
	case *data.TypedArray[complex64]:
		return fixed(mem, 2, arrow.PrimitiveTypes.Float32, x.Slice(), func(b array.Builder, c complex64) {
			b.(*array.Float32Builder).AppendValues([]float32{real(c), imag(c)}, nil)
		}), nil
	case *data.TypedArray[complex128]:
		return fixed(mem, 2, arrow.PrimitiveTypes.Float64, x.Slice(), func(b array.Builder, c complex128) {
			b.(*array.Float64Builder).AppendValues([]float64{real(c), imag(c)}, nil)
		}), nil

	case *data.TypedArray[types.IList]:
		return list(mem, arrow.PrimitiveTypes.Int32, x.Slice(), func(b array.Builder, l types.IList) {
			b.(*array.Int32Builder).AppendValues(l, nil)
		}), nil
	case *data.TypedArray[types.DList]:
		return list(mem, arrow.PrimitiveTypes.Float64, x.Slice(), func(b array.Builder, l types.DList) {
			b.(*array.Float64Builder).AppendValues(l, nil)
		}), nil
	case *data.TypedArray[types.SList]:
		return list(mem, arrow.BinaryTypes.String, x.Slice(), func(b array.Builder, l types.SList) {
			b.(*array.StringBuilder).AppendValues(l, nil)
		}), nil

	case *data.TypedArray[types.Selection]:
		return selectionToArrow(mem, x.Slice()), nil
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupported, "%s has no Arrow representation", a.TypeName())
}

// selectionToArrow encodes selections as dictionary indices into the entries
// of the first element. Unset selections and names missing from those entries
// become nulls.
func selectionToArrow(mem memory.Allocator, sels []types.Selection) arrow.Array {
	var entries []string
	if len(sels) > 0 {
		entries = sels[0].Entries()
	}
	index := make(map[string]int32, len(entries))
	for i, e := range entries {
		index[e] = int32(i)
	}

	dict := primitive(array.NewStringBuilder(mem), entries)
	defer dict.Release()

	ib := array.NewInt32Builder(mem)
	defer ib.Release()
	missing := 0
	for _, s := range sels {
		i, ok := index[s.String()]
		switch {
		case !s.IsSet():
			ib.AppendNull()
		case !ok:
			missing++
			ib.AppendNull()
		default:
			ib.Append(i)
		}
	}
	if missing > 0 {
		logger.Warn("selections with foreign entries were exported as null",
			zap.Int("count", missing), zap.Strings("entries", entries))
	}
	indices := ib.NewArray()
	defer indices.Release()
	return array.NewDictionaryArray(selectionType, indices, dict)
}

// collect copies the valid slots of arr; nulls become zero values.
func collect[T types.Payload](arr arrow.Array, at func(i int) T) data.Array {
	out := make([]T, arr.Len())
	for i := range out {
		if arr.IsValid(i) {
			out[i] = at(i)
		}
	}
	if n := arr.NullN(); n > 0 {
		logger.Warn("null entries were imported as zero values",
			zap.Int("nulls", n), zap.String("type", types.IDOf[T]().ArrayName()))
	}
	return data.WrapArray(out, nil)
}

func fixedRows[T types.Payload, E any](c *array.FixedSizeList, vals []E, build func([]E) T) data.Array {
	return collect(c, func(i int) T {
		s, e := c.ValueOffsets(i)
		return build(vals[s:e])
	})
}

func listRows[T types.Payload, E any](c *array.List, vals []E, build func([]E) T) data.Array {
	return collect(c, func(i int) T {
		s, e := c.ValueOffsets(i)
		return build(vals[s:e])
	})
}

func stringValues(c *array.String) []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// toMillis converts a count of unit into milliseconds.
func toMillis(v int64, unit arrow.TimeUnit) int64 {
	return v * int64(unit.Multiplier()) / int64(time.Millisecond)
}

// FromArrow copies an Arrow array into a new typed array.
func FromArrow(arr arrow.Array) (data.Array, error) {
	switch c := arr.(type) {
	case *array.Boolean:
		return collect(c, c.Value), nil
	case *array.Int8:
		return collect(c, c.Value), nil
	case *array.Uint8:
		return collect(c, c.Value), nil
	case *array.Int16:
		return collect(c, c.Value), nil
	case *array.Uint16:
		return collect(c, c.Value), nil
	case *array.Int32:
		return collect(c, c.Value), nil
	case *array.Uint32:
		return collect(c, c.Value), nil
	case *array.Int64:
		return collect(c, c.Value), nil
	case *array.Uint64:
		return collect(c, c.Value), nil
	case *array.Float32:
		return collect(c, c.Value), nil
	case *array.Float64:
		return collect(c, c.Value), nil
	case *array.String:
		return collect(c, c.Value), nil
	case *array.LargeString:
		return collect(c, c.Value), nil

	case *array.Date32:
		return collect(c, func(i int) types.Date { return types.Date(c.Value(i)) }), nil
	case *array.Date64:
		return collect(c, func(i int) types.Date { return types.Timestamp(c.Value(i)).Date() }), nil
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return collect(c, func(i int) types.Timestamp { return types.Timestamp(toMillis(int64(c.Value(i)), unit)) }), nil
	case *array.Duration:
		unit := c.DataType().(*arrow.DurationType).Unit
		return collect(c, func(i int) types.Duration { return types.Duration(toMillis(int64(c.Value(i)), unit)) }), nil

	case *array.FixedSizeList:
		return fromFixedSizeList(c)
	case *array.List:
		return fromList(c)
	case *array.Dictionary:
		return fromDictionary(c)
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupported, "Arrow type %s has no array kind", arr.DataType())
}

func fromFixedSizeList(c *array.FixedSizeList) (data.Array, error) {
	n := c.DataType().(*arrow.FixedSizeListType).Len()
	switch v := c.ListValues().(type) {
	case *array.Uint8:
		if n == 3 {
			return fixedRows(c, v.Uint8Values(), func(s []uint8) types.Color24 { return types.Color24{R: s[0], G: s[1], B: s[2]} }), nil
		}
	case *array.Uint16:
		if n == 3 {
			return fixedRows(c, v.Uint16Values(), func(s []uint16) types.Color48 { return types.Color48{R: s[0], G: s[1], B: s[2]} }), nil
		}
	case *array.Int32:
		if n == 4 {
			return fixedRows(c, v.Int32Values(), func(s []int32) types.IVector4 { return types.IVector4(s) }), nil
		}
	case *array.Float32:
		switch n {
		case 2:
			return fixedRows(c, v.Float32Values(), func(s []float32) complex64 { return complex(s[0], s[1]) }), nil
		case 3:
			return fixedRows(c, v.Float32Values(), func(s []float32) types.FVector3 { return types.FVector3(s) }), nil
		case 4:
			return fixedRows(c, v.Float32Values(), func(s []float32) types.FVector4 { return types.FVector4(s) }), nil
		}
	case *array.Float64:
		switch n {
		case 2:
			return fixedRows(c, v.Float64Values(), func(s []float64) complex128 { return complex(s[0], s[1]) }), nil
		case 3:
			return fixedRows(c, v.Float64Values(), func(s []float64) types.DVector3 { return types.DVector3(s) }), nil
		case 4:
			return fixedRows(c, v.Float64Values(), func(s []float64) types.DVector4 { return types.DVector4(s) }), nil
		}
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupported, "Arrow type %s has no array kind", c.DataType())
}

func fromList(c *array.List) (data.Array, error) {
	switch v := c.ListValues().(type) {
	case *array.Int32:
		return listRows(c, v.Int32Values(), func(s []int32) types.IList { return append(types.IList{}, s...) }), nil
	case *array.Float64:
		return listRows(c, v.Float64Values(), func(s []float64) types.DList { return append(types.DList{}, s...) }), nil
	case *array.String:
		return listRows(c, stringValues(v), func(s []string) types.SList { return append(types.SList{}, s...) }), nil
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupported, "Arrow type %s has no array kind", c.DataType())
}

func fromDictionary(c *array.Dictionary) (data.Array, error) {
	dict, ok := c.Dictionary().(*array.String)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnsupported, "Arrow type %s has no array kind", c.DataType())
	}
	entries := stringValues(dict)
	proto := types.NewSelection(strings.Join(entries, ","))
	out := make([]types.Selection, c.Len())
	for i := range out {
		out[i] = proto
		if c.IsValid(i) {
			out[i].SetIndex(c.GetValueIndex(i) + 1)
		}
	}
	return data.WrapArray(out, nil), nil
}

