// Package compression wraps the codecs raw data files may be stored with.
// It supports both in-memory and streaming compression/decompression.
//
// Algorithms are selected explicitly or from a file name:
//
//	alg, base := compression.FromPath("brain.raw.zst") // Zstd, "brain.raw"
//	comp, err := compression.NewCompressor(&compression.Config{Algorithm: alg})
//	payload, err := comp.Decompress(data)
package compression

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/pool"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
)

var extensions = map[string]Algorithm{
	".gz":      Gzip,
	".sz":      Snappy,
	".lz4":     LZ4,
	".zst":     Zstd,
	".s2":      S2,
	".deflate": Deflate,
}

// Algorithms lists every supported algorithm, None first.
func Algorithms() []Algorithm {
	return []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}
}

// ParseAlgorithm maps a name (case-insensitive, "" meaning None) to an
// Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return None, nil
	}
	want := Algorithm(strings.ToLower(name))
	for _, a := range Algorithms() {
		if a == want {
			return a, nil
		}
	}
	return None, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", name)
}

// FromPath picks the algorithm from the file extension and returns the path
// without that extension. Unknown extensions mean None.
func FromPath(path string) (Algorithm, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := extensions[ext]; ok {
		return alg, path[:len(path)-len(ext)]
	}
	return None, path
}

// Extension returns the file extension for alg, "" for None.
func (a Algorithm) Extension() string {
	for ext, alg := range extensions {
		if alg == a {
			return ext
		}
	}
	return ""
}

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to a Level. Unknown names fall back to Default.
func ParseLevel(name string) Level {
	for _, l := range []Level{Fastest, Default, Better, Best} {
		if strings.EqualFold(l.String(), name) {
			return l
		}
	}
	return Default
}

// Compressor provides compression and decompression functionality.
// All implementations are safe for concurrent use.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	// The input data is not modified.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data and returns the original bytes.
	// The input data is not modified.
	Decompress(data []byte) ([]byte, error)

	// CompressStream compresses from reader to writer.
	CompressStream(dst io.Writer, src io.Reader) error

	// DecompressStream decompresses from reader to writer.
	DecompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the compression algorithm used.
	Algorithm() Algorithm

	// Level returns the compression level configured.
	Level() Level
}

// Config represents compressor configuration.
type Config struct {
	Algorithm Algorithm // Compression algorithm to use
	Level     Level     // Compression level
	// MaxDecompressedSize bounds Decompress output; 0 means unbounded.
	MaxDecompressedSize int64
}

// DefaultConfig returns the configuration used for raw data files: Zstd at
// the default level.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: Zstd,
		Level:     Default,
	}
}

// NewCompressor creates a new compressor based on the provided configuration.
// If config is nil, default configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	base := baseCompressor{algorithm: config.Algorithm, level: config.Level, limit: config.MaxDecompressedSize}

	switch config.Algorithm {
	case None, "":
		base.algorithm = None
		return &noneCompressor{base}, nil
	case Gzip:
		return newGzipCompressor(base), nil
	case Snappy:
		return &streamCompressor{
			baseCompressor: base,
			writer:         func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil },
			reader:         func(r io.Reader) (io.Reader, error) { return snappy.NewReader(r), nil },
		}, nil
	case S2:
		return &streamCompressor{
			baseCompressor: base,
			writer:         func(w io.Writer) (io.WriteCloser, error) { return s2.NewWriter(w), nil },
			reader:         func(r io.Reader) (io.Reader, error) { return s2.NewReader(r), nil },
		}, nil
	case LZ4:
		level := mapLZ4Level(config.Level)
		return &streamCompressor{
			baseCompressor: base,
			writer: func(w io.Writer) (io.WriteCloser, error) {
				zw := lz4.NewWriter(w)
				if err := zw.Apply(lz4.CompressionLevelOption(level)); err != nil {
					return nil, err
				}
				return zw, nil
			},
			reader: func(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil },
		}, nil
	case Deflate:
		level := mapDeflateLevel(config.Level)
		return &streamCompressor{
			baseCompressor: base,
			writer:         func(w io.Writer) (io.WriteCloser, error) { return flate.NewWriter(w, level) },
			reader:         func(r io.Reader) (io.Reader, error) { return flate.NewReader(r), nil },
		}, nil
	case Zstd:
		return newZstdCompressor(base), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", config.Algorithm)
	}
}

type baseCompressor struct {
	algorithm Algorithm
	level     Level
	limit     int64
}

func (bc *baseCompressor) Algorithm() Algorithm { return bc.algorithm }

func (bc *baseCompressor) Level() Level { return bc.level }

// drain copies r into a pooled buffer, enforcing the size limit, and returns
// a copy of the result.
func (bc *baseCompressor) drain(r io.Reader) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if bc.limit > 0 {
		r = io.LimitReader(r, bc.limit+1)
	}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, string(bc.algorithm)+" decompression failed")
	}
	if bc.limit > 0 && int64(buf.Len()) > bc.limit {
		return nil, errors.Newf(errors.ErrorTypeRange, "decompressed data exceeds %d bytes", bc.limit)
	}
	return bytes.Clone(buf.Bytes()), nil
}

type noneCompressor struct {
	baseCompressor
}

func (nc *noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (nc *noneCompressor) Decompress(data []byte) ([]byte, error) {
	if nc.limit > 0 && int64(len(data)) > nc.limit {
		return nil, errors.Newf(errors.ErrorTypeRange, "decompressed data exceeds %d bytes", nc.limit)
	}
	return data, nil
}

func (nc *noneCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

func (nc *noneCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

// streamCompressor adapts codecs that only expose writer/reader constructors.
type streamCompressor struct {
	baseCompressor
	writer func(io.Writer) (io.WriteCloser, error)
	reader func(io.Reader) (io.Reader, error)
}

func (sc *streamCompressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := sc.CompressStream(buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (sc *streamCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := sc.reader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, string(sc.algorithm)+" decompression failed")
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return sc.drain(r)
}

func (sc *streamCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := sc.writer(dst)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, string(sc.algorithm)+" writer")
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (sc *streamCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r, err := sc.reader(src)
	if err != nil {
		return err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	_, err = io.Copy(dst, r)
	return err
}

// Gzip compressor
type gzipCompressor struct {
	baseCompressor
	writerPool sync.Pool
	readerPool sync.Pool
}

func newGzipCompressor(base baseCompressor) *gzipCompressor {
	level := mapGzipLevel(base.level)
	gc := &gzipCompressor{baseCompressor: base}
	gc.writerPool.New = func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, level)
		return w
	}
	gc.readerPool.New = func() interface{} {
		return new(gzip.Reader)
	}
	return gc
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := gc.CompressStream(buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r := gc.readerPool.Get().(*gzip.Reader)
	defer gc.readerPool.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "gzip header")
	}
	return gc.drain(r)
}

func (gc *gzipCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w := gc.writerPool.Get().(*gzip.Writer)
	defer gc.writerPool.Put(w)

	w.Reset(dst)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (gc *gzipCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	r := gc.readerPool.Get().(*gzip.Reader)
	defer gc.readerPool.Put(r)

	if err := r.Reset(src); err != nil {
		return err
	}
	_, err := io.Copy(dst, r)
	return err
}

// Zstd compressor
type zstdCompressor struct {
	baseCompressor
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCompressor(base baseCompressor) *zstdCompressor {
	level := mapZstdLevel(base.level)
	zc := &zstdCompressor{baseCompressor: base}
	zc.encoderPool.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		return enc
	}
	zc.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	}
	return zc
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "zstd header")
	}
	return zc.drain(dec)
}

func (zc *zstdCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	enc.Reset(dst)
	if _, err := io.Copy(enc, src); err != nil {
		return err
	}
	return enc.Close()
}

func (zc *zstdCompressor) DecompressStream(dst io.Writer, src io.Reader) error {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	if err := dec.Reset(src); err != nil {
		return err
	}
	_, err := io.Copy(dst, dec)
	return err
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
