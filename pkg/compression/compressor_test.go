package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isis-group/isis-sub000/pkg/errors"
)

func sampleVolume() []byte {
	// a smooth ramp compresses well with every codec
	out := make([]byte, 64*1024)
	for i := range out {
		out[i] = byte(i / 256)
	}
	return out
}

func TestRoundTripAllAlgorithms(t *testing.T) {
	original := sampleVolume()
	for _, alg := range Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: Default})
			require.NoError(t, err)
			assert.Equal(t, alg, comp.Algorithm())
			assert.Equal(t, Default, comp.Level())

			packed, err := comp.Compress(original)
			require.NoError(t, err)
			if alg != None {
				assert.Less(t, len(packed), len(original))
			}

			unpacked, err := comp.Decompress(packed)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(original, unpacked))

			var stream, back bytes.Buffer
			require.NoError(t, comp.CompressStream(&stream, bytes.NewReader(original)))
			require.NoError(t, comp.DecompressStream(&back, &stream))
			assert.True(t, bytes.Equal(original, back.Bytes()))
		})
	}
}

func TestCompressionLevels(t *testing.T) {
	data := bytes.Repeat([]byte("isis raw data "), 200)
	for _, level := range []Level{Fastest, Default, Better, Best} {
		for _, alg := range []Algorithm{LZ4, Zstd, Gzip, Deflate} {
			comp, err := NewCompressor(&Config{Algorithm: alg, Level: level})
			require.NoError(t, err)
			packed, err := comp.Compress(data)
			require.NoError(t, err, "%s/%s", alg, level)
			unpacked, err := comp.Decompress(packed)
			require.NoError(t, err, "%s/%s", alg, level)
			assert.Equal(t, data, unpacked)
		}
	}
}

func TestDecompressLimit(t *testing.T) {
	comp, err := NewCompressor(&Config{Algorithm: Zstd, MaxDecompressedSize: 1024})
	require.NoError(t, err)
	packed, err := comp.Compress(make([]byte, 4096))
	require.NoError(t, err)

	_, err = comp.Decompress(packed)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRange))
}

func TestCorruptInput(t *testing.T) {
	comp, err := NewCompressor(&Config{Algorithm: Gzip})
	require.NoError(t, err)
	_, err = comp.Decompress([]byte("definitely not gzip"))
	assert.Error(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, Zstd, alg)

	alg, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, None, alg)

	_, err = ParseAlgorithm("brotli")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewCompressor(&Config{Algorithm: "brotli"})
	assert.Error(t, err)
}

func TestFromPath(t *testing.T) {
	alg, base := FromPath("/data/brain.raw.zst")
	assert.Equal(t, Zstd, alg)
	assert.Equal(t, "/data/brain.raw", base)

	alg, base = FromPath("scan.RAW.GZ")
	assert.Equal(t, Gzip, alg)
	assert.Equal(t, "scan.RAW", base)

	alg, base = FromPath("plain.raw")
	assert.Equal(t, None, alg)
	assert.Equal(t, "plain.raw", base)

	assert.Equal(t, ".lz4", LZ4.Extension())
	assert.Equal(t, "", None.Extension())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Best, ParseLevel("BEST"))
	assert.Equal(t, Default, ParseLevel("bogus"))
	assert.Equal(t, "fastest", Fastest.String())
}

func TestNilConfigUsesDefault(t *testing.T) {
	comp, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Zstd, comp.Algorithm())
}
