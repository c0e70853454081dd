package columnar

import (
	"bytes"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
)

// typeKey is the field metadata key holding the array kind name.
const typeKey = "isis.type"

// Column is a named array in a table.
type Column struct {
	Name  string
	Array data.Array
}

// newRecord builds one record batch from equally long columns. The kind name
// of every column is kept in its field metadata.
func newRecord(mem memory.Allocator, cols []Column) (arrow.Record, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "no columns to write")
	}
	rows := cols[0].Array.Len()

	fields := make([]arrow.Field, 0, len(cols))
	arrays := make([]arrow.Array, 0, len(cols))
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	for _, c := range cols {
		if c.Array.Len() != rows {
			return nil, errors.Newf(errors.ErrorTypeValidation, "column %q has %d rows, expected %d", c.Name, c.Array.Len(), rows)
		}
		arr, err := ToArrow(mem, c.Array)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnsupported, "column "+c.Name)
		}
		arrays = append(arrays, arr)
		fields = append(fields, arrow.Field{
			Name:     c.Name,
			Type:     arr.DataType(),
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{typeKey}, []string{c.Array.TypeName()}),
		})
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(rows)), nil
}

// WriteIPC stores equally long columns as one record batch in an Arrow IPC
// file.
func WriteIPC(w io.Writer, cols []Column) error {
	mem := memory.NewGoAllocator()
	rec, err := newRecord(mem, cols)
	if err != nil {
		return err
	}
	defer rec.Release()
	schema := rec.Schema()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write record batch")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Arrow writer")
	}
	return nil
}

// ReadIPC loads every column of an Arrow IPC file, concatenating its record
// batches.
func ReadIPC(r io.Reader) ([]Column, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Arrow data")
	}
	mem := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(bytes.NewReader(raw), ipc.WithAllocator(mem))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to open Arrow file")
	}
	defer fr.Close()

	schema := fr.Schema()
	chunks := make([][]arrow.Array, schema.NumFields())
	defer func() {
		for _, cs := range chunks {
			for _, c := range cs {
				c.Release()
			}
		}
	}()
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read record batch")
		}
		for j := range chunks {
			col := rec.Column(j)
			col.Retain()
			chunks[j] = append(chunks[j], col)
		}
	}

	out := make([]Column, 0, len(chunks))
	for j, cs := range chunks {
		field := schema.Field(j)
		a, err := columnFrom(mem, field, cs)
		if err != nil {
			releaseColumns(out)
			return nil, err
		}
		out = append(out, Column{Name: field.Name, Array: a})
	}
	return out, nil
}

func releaseColumns(cols []Column) {
	for _, c := range cols {
		c.Array.Release()
	}
}

func columnFrom(mem memory.Allocator, field arrow.Field, chunks []arrow.Array) (data.Array, error) {
	var whole arrow.Array
	switch len(chunks) {
	case 0:
		b := array.NewBuilder(mem, field.Type)
		whole = b.NewArray()
		b.Release()
	case 1:
		whole = chunks[0]
		whole.Retain()
	default:
		var err error
		if whole, err = array.Concatenate(chunks, mem); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "column "+field.Name)
		}
	}
	defer whole.Release()

	a, err := FromArrow(whole)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnsupported, "column "+field.Name)
	}
	if name, ok := field.Metadata.GetValue(typeKey); ok && name != a.TypeName() {
		logger.Warn("Arrow column kind differs from the stored kind",
			zap.String("column", field.Name), zap.String("stored", name), zap.String("read", a.TypeName()))
	}
	return a, nil
}
