package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := New(
		func() *[]int { s := make([]int, 0, 8); return &s },
		func(s *[]int) { *s = (*s)[:0] },
	)
	s := p.Get()
	*s = append(*s, 1, 2, 3)
	p.Put(s)

	allocated, inUse, gets := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(0), inUse)
	assert.Equal(t, int64(1), gets)

	again := p.Get()
	assert.Empty(t, *again)
}

func TestBufferPoolBuckets(t *testing.T) {
	bp := NewBufferPool()

	b := bp.Get(1000)
	require.Len(t, b, 1000)
	assert.Equal(t, 2048, cap(b))
	bp.Put(b)

	big := bp.Get(20 << 20)
	assert.Len(t, big, 20<<20)
	bp.Put(big)
}

func TestSharedBuffers(t *testing.T) {
	b := GetBuffer()
	b.WriteString("abc")
	PutBuffer(b)

	again := GetBuffer()
	assert.Zero(t, again.Len())
	PutBuffer(again)
	PutBuffer(nil)
}
