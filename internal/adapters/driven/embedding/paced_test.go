package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 1 }
func (c *countingEmbedder) ModelName() string { return "count" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error { return nil }

func TestNewPaced_Disabled(t *testing.T) {
	inner := &countingEmbedder{}

	assert.Same(t, inner, NewPaced(inner, 0))
}

func TestPaced_DelegatesAndKeepsMetadata(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewPaced(inner, 1000)

	_, err := svc.Embed(context.Background(), "a")
	require.NoError(t, err)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Len(t, vecs, 2)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "count", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
}

func TestPaced_HonoursContext(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewPaced(inner, 0.5)

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.Embed(ctx, "second")

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
