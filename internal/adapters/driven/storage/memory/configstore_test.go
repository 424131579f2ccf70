package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "google/gemini-2.5-pro"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "google/gemini-2.5-pro", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("search.k", int64(7))
	_ = store.Set("search.max_fetch", 150)
	_ = store.Set("llm.answer_temperature", 0.7)
	_ = store.Set("llm.planner_temperature", int64(0))
	_ = store.Set("server.watch", true)
	_ = store.Set("server.allowed_origins", []any{"http://localhost:3000", 42})

	assert.Equal(t, 7, store.GetInt("search.k"))
	assert.Equal(t, 150, store.GetInt("search.max_fetch"))
	assert.Equal(t, 0.7, store.GetFloat("llm.answer_temperature"))
	assert.Equal(t, 0.0, store.GetFloat("llm.planner_temperature"))
	assert.Equal(t, 150.0, store.GetFloat("search.max_fetch"))
	assert.True(t, store.GetBool("server.watch"))
	assert.Equal(t, []string{"http://localhost:3000"}, store.GetStringSlice("server.allowed_origins"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", "value")

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("llm.model", "m")
	_ = store.Set("cache.kind", "lru")
	_ = store.Set("embedding.model", "all-minilm")

	assert.Equal(t, []string{"cache.kind", "embedding.model", "llm.model"}, store.Keys())
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n)
			_ = store.Set(key, n)
			assert.Equal(t, n, store.GetInt(key))
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
