// Package rawio reads and writes headerless raw data files: a flat run of
// elements of one kind, optionally compressed and in either byte order.
//
//	cfg := config.Default().Raw
//	cfg.ByteOrder = "big"
//	vol, err := rawio.ReadFile("t1.raw.zst", types.Int16ID, cfg)
//	if err != nil {
//	    return err
//	}
//	defer vol.Release()
package rawio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/compression"
	"github.com/isis-group/isis-sub000/pkg/config"
	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/mmap"
	"github.com/isis-group/isis-sub000/pkg/numeric"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// ByteArray is a block of raw bytes that can be viewed as elements of any
// plain kind. Views share the block; it is released after the last of them.
type ByteArray struct {
	bytes *data.TypedArray[uint8]
}

// NewByteArray takes ownership of b. release runs after the last view is
// gone.
func NewByteArray(b []byte, release func()) *ByteArray {
	return &ByteArray{bytes: data.WrapArray(b, release)}
}

// Len returns the size in bytes.
func (b *ByteArray) Len() int { return b.bytes.Len() }

// Bytes returns the raw block.
func (b *ByteArray) Bytes() []byte { return b.bytes.Slice() }

// Array returns the block as a u8bit array sharing its memory.
func (b *ByteArray) Array() data.Array { return b.bytes.Retain() }

// Release drops this handle's share of the block.
func (b *ByteArray) Release() { b.bytes.Release() }

// AtByID views length elements of kind id starting at byte offset. A
// negative length takes every whole element up to the end. With swap the
// elements are copied and byte swapped; otherwise the view shares the block.
func (b *ByteArray) AtByID(id types.ID, offset, length int, swap bool) (data.Array, error) {
	tr := id.Traits()
	if !tr.Plain() {
		return nil, errors.Newf(errors.ErrorTypeUnsupported, "%s has no raw representation", id.ArrayName())
	}
	raw := b.bytes.Slice()
	if offset < 0 || offset > len(raw) {
		return nil, errors.Newf(errors.ErrorTypeRange, "offset %d is outside of the %d byte block", offset, len(raw))
	}
	avail := (len(raw) - offset) / tr.Size
	if length < 0 {
		length = avail
	}
	if length > avail {
		return nil, errors.Newf(errors.ErrorTypeRange, "%d elements of %s need %d bytes, only %d left after offset %d",
			length, id.Name(), length*tr.Size, len(raw)-offset, offset).
			WithDetail("offset", offset)
	}
	chunk := raw[offset : offset+length*tr.Size]

	if swap {
		out := data.WrapBytes(id, bytes.Clone(chunk), nil)
		out.EndianSwap()
		return out, nil
	}
	return data.ViewBytes(id, chunk, b.bytes), nil
}

// needsSwap reports whether data stored in order differs from memory.
func needsSwap(order binary.ByteOrder) bool {
	word := []byte{1, 0}
	return order.Uint16(word) != binary.NativeEndian.Uint16(word)
}

// Open loads a raw file. Uncompressed files are memory mapped when cfg allows
// it; compressed files are decompressed into memory.
func Open(path string, cfg config.RawConfig) (*ByteArray, error) {
	cc, err := cfg.CompressionConfig(path)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat raw file")
	}
	if st.Size() == 0 {
		return NewByteArray(nil, nil), nil
	}

	if cc.Algorithm == compression.None && cfg.UseMmap {
		r, err := mmap.NewReader(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("mapped raw file", zap.String("path", path), zap.Int("bytes", r.Len()))
		return NewByteArray(r.ReadAll(), func() {
			if err := r.Close(); err != nil {
				logger.Warn("failed to unmap raw file", zap.String("path", path), zap.Error(err))
			}
		}), nil
	}

	payload, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read raw file")
	}
	comp, err := compression.NewCompressor(cc)
	if err != nil {
		return nil, err
	}
	payload, err = comp.Decompress(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress "+path)
	}
	logger.Debug("read raw file", zap.String("path", path), zap.String("compression", string(cc.Algorithm)),
		zap.Int64("stored", st.Size()), zap.Int("bytes", len(payload)))
	return NewByteArray(payload, nil), nil
}

// ReadFile loads a whole raw file as elements of kind id.
func ReadFile(path string, id types.ID, cfg config.RawConfig) (data.Array, error) {
	order, err := cfg.Order()
	if err != nil {
		return nil, err
	}
	block, err := Open(path, cfg)
	if err != nil {
		return nil, err
	}
	defer block.Release()
	return block.AtByID(id, 0, -1, needsSwap(order))
}

// WriteFile stores the elements of a, compressed and ordered as cfg says.
// The file is replaced atomically.
func WriteFile(path string, a data.Array, cfg config.RawConfig) error {
	order, err := cfg.Order()
	if err != nil {
		return err
	}
	cc, err := cfg.CompressionConfig(path)
	if err != nil {
		return err
	}
	if !a.TypeID().Traits().Plain() {
		return errors.Newf(errors.ErrorTypeUnsupported, "%s has no raw representation", a.TypeName())
	}

	raw := a.Bytes()
	if needsSwap(order) && len(raw) > 0 {
		swapped := data.WrapBytes(a.TypeID(), bytes.Clone(raw), nil)
		defer swapped.Release()
		swapped.EndianSwap()
		raw = swapped.Bytes()
	}

	comp, err := compression.NewCompressor(cc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create raw file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after the rename

	if err := comp.CompressStream(tmp, bytes.NewReader(raw)); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write raw file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close raw file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to move raw file into place")
	}
	logger.Debug("wrote raw file", zap.String("path", path), zap.String("type", a.TypeName()),
		zap.Int("elements", a.Len()), zap.String("compression", string(cc.Algorithm)))
	return nil
}

// WriteArray converts a to kind id, scaled by policy, and writes the result.
func WriteArray(path string, a data.Array, id types.ID, policy numeric.Policy, cfg config.RawConfig) error {
	if id == a.TypeID() {
		return WriteFile(path, a, cfg)
	}
	converted := a.CopyByID(id, a.ScalingTo(id, policy))
	if converted == nil {
		return errors.Newf(errors.ErrorTypeUnknownConversion, "cannot convert %s to %s", a.TypeName(), id.ArrayName())
	}
	defer converted.Release()
	return WriteFile(path, converted, cfg)
}
