package columnar

import (
	"bytes"
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/isis-group/isis-sub000/pkg/compression"
	"github.com/isis-group/isis-sub000/pkg/errors"
)

// parquetCodec maps a raw file codec to the parquet page codec.
func parquetCodec(alg compression.Algorithm) (compress.Compression, error) {
	switch alg {
	case compression.None:
		return compress.Codecs.Uncompressed, nil
	case compression.Gzip:
		return compress.Codecs.Gzip, nil
	case compression.Snappy, "":
		return compress.Codecs.Snappy, nil
	case compression.LZ4:
		return compress.Codecs.Lz4Raw, nil
	case compression.Zstd:
		return compress.Codecs.Zstd, nil
	}
	return compress.Codecs.Uncompressed, errors.Newf(errors.ErrorTypeUnsupported, "parquet has no %s codec", alg)
}

// WriteParquet stores equally long columns as one row group of a Parquet
// file. The Arrow schema is embedded so kinds without a native parquet
// counterpart read back unchanged.
func WriteParquet(w io.Writer, cols []Column, alg compression.Algorithm) error {
	codec, err := parquetCodec(alg)
	if err != nil {
		return err
	}
	mem := memory.NewGoAllocator()
	rec, err := newRecord(mem, cols)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(mem),
		pqarrow.WithStoreSchema(),
	)
	// the parquet writer closes its sink, the caller owns w
	fw, err := pqarrow.NewFileWriter(rec.Schema(), struct{ io.Writer }{w}, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeUnsupported, "failed to create Parquet writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write row group")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Parquet writer")
	}
	return nil
}

// ReadParquet loads every column of a Parquet file.
func ReadParquet(ctx context.Context, r io.Reader) ([]Column, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Parquet data")
	}
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, bytes.NewReader(raw), parquet.NewReaderProperties(mem),
		pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to open Parquet file")
	}
	defer tbl.Release()

	schema := tbl.Schema()
	out := make([]Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		field := schema.Field(i)
		a, err := columnFrom(mem, field, tbl.Column(i).Data().Chunks())
		if err != nil {
			releaseColumns(out)
			return nil, err
		}
		out = append(out, Column{Name: field.Name, Array: a})
	}
	return out, nil
}
