package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetPut(t *testing.T) {
	ctx := context.Background()
	c := New[[]float32]()

	_, ok := c.Get(ctx, "grades")
	assert.False(t, ok)

	c.Put(ctx, "grades", []float32{0.6, 0.8})
	v, ok := c.Get(ctx, "grades")
	assert.True(t, ok)
	assert.Equal(t, []float32{0.6, 0.8}, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := New[int]()

	c.Put(ctx, "k", 1)
	c.Put(ctx, "k", 1)

	v, _ := c.Get(ctx, "k")
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := New[string]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("q%d", n%10)
			c.Put(ctx, key, key)
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
