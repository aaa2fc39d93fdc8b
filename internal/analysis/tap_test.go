package analysis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTap_RoundsToPowerOfTwo(t *testing.T) {
	assert.Equal(t, 8, NewTap(5).Capacity())
	assert.Equal(t, 8, NewTap(8).Capacity())
	assert.Equal(t, 1, NewTap(0).Capacity())
}

func TestTap_LatestBeforeFull(t *testing.T) {
	tap := NewTap(8)
	tap.Write([]float32{1, 2, 3}, []float32{-1, -2, -3})

	l := make([]float32, 5)
	r := make([]float32, 5)
	tap.Latest(l, r)

	assert.Equal(t, []float32{0, 0, 1, 2, 3}, l)
	assert.Equal(t, []float32{0, 0, -1, -2, -3}, r)
}

func TestTap_Wraparound(t *testing.T) {
	tap := NewTap(4)
	for i := range 10 {
		v := float32(i)
		tap.Write([]float32{v}, []float32{-v})
	}

	l := make([]float32, 4)
	r := make([]float32, 4)
	tap.Latest(l, r)

	assert.Equal(t, []float32{6, 7, 8, 9}, l)
	assert.Equal(t, []float32{-6, -7, -8, -9}, r)
	assert.Equal(t, uint64(10), tap.Written())
}

func TestTap_LatestClampedToCapacity(t *testing.T) {
	tap := NewTap(2)
	tap.Write([]float32{1, 2, 3}, []float32{1, 2, 3})

	l := make([]float32, 4)
	r := make([]float32, 4)
	tap.Latest(l, r)
	assert.Equal(t, []float32{2, 3, 0, 0}, l, "only capacity samples are copied")
}

func TestTap_WriteInterleaved(t *testing.T) {
	tap := NewTap(4)
	tap.WriteInterleaved([]float32{1, -1, 2, -2, 3}, 2)

	l := make([]float32, 2)
	r := make([]float32, 2)
	tap.Latest(l, r)
	assert.Equal(t, []float32{1, 2}, l, "partial trailing frame is dropped")
	assert.Equal(t, []float32{-1, -2}, r)

	tap.Clear()
	tap.WriteInterleaved([]float32{5, 6}, 1)
	tap.Latest(l, r)
	assert.Equal(t, []float32{5, 6}, l)
	assert.Equal(t, []float32{5, 6}, r, "mono is duplicated")
}

func TestTap_Clear(t *testing.T) {
	tap := NewTap(4)
	tap.Write([]float32{1, 2}, []float32{1, 2})
	tap.Clear()

	l := make([]float32, 4)
	r := make([]float32, 4)
	tap.Latest(l, r)
	assert.Equal(t, make([]float32, 4), l)
	assert.Equal(t, uint64(0), tap.Written())
}

func TestTap_ConcurrentProducer(t *testing.T) {
	tap := NewTap(1024)
	block := make([]float32, 64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 500 {
			tap.Write(block, block)
		}
	}()

	l := make([]float32, 256)
	r := make([]float32, 256)
	for range 500 {
		tap.Latest(l, r)
	}
	wg.Wait()
	require.Equal(t, uint64(500*64), tap.Written())
}
