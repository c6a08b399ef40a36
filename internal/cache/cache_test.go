package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/bookreader/internal/cache"
	"github.com/unalkalkan/bookreader/pkg/types"
)

func doc(titles ...string) *types.Document {
	d := &types.Document{}
	for _, title := range titles {
		d.Chapters = append(d.Chapters, types.Chapter{Title: title, Content: title + " body"})
	}
	return d
}

func TestBuildKey(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, cache.BuildKey("/books/a.epub", types.FormatEPUB), cache.BuildKey("/books/a.epub", types.FormatEPUB))
	})

	t.Run("format distinguishes keys", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, cache.BuildKey("/books/a", types.FormatEPUB), cache.BuildKey("/books/a", types.FormatMOBI))
	})

	t.Run("separator prevents collisions", func(t *testing.T) {
		t.Parallel()
		// a path ending in "|PDF" must not collide with the PDF key of its prefix
		assert.NotEqual(t, cache.BuildKey("/x|PDF", types.FormatTXT), cache.BuildKey("/x", types.Format("PDF|TXT")))
	})
}

func TestCaches(t *testing.T) {
	t.Parallel()

	constructors := map[string]func() cache.Cache{
		"memory":  func() cache.Cache { return cache.New() },
		"bounded": func() cache.Cache { return cache.NewBounded(16) },
	}

	for name, newCache := range constructors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			t.Run("miss on empty cache", func(t *testing.T) {
				c := newCache()
				got, ok := c.Get("missing")
				assert.False(t, ok)
				assert.Nil(t, got)
			})

			t.Run("put then get returns same document", func(t *testing.T) {
				c := newCache()
				d := doc("one")
				c.Put("k", d)
				got, ok := c.Get("k")
				require.True(t, ok)
				assert.Same(t, d, got)
				assert.Equal(t, 1, c.Len())
			})

			t.Run("last write wins", func(t *testing.T) {
				c := newCache()
				c.Put("k", doc("first"))
				second := doc("second")
				c.Put("k", second)
				got, _ := c.Get("k")
				assert.Same(t, second, got)
				assert.Equal(t, 1, c.Len())
			})

			t.Run("remove", func(t *testing.T) {
				c := newCache()
				c.Put("k", doc("one"))
				c.Remove("k")
				_, ok := c.Get("k")
				assert.False(t, ok)
				c.Remove("never-there")
				assert.Equal(t, 0, c.Len())
			})

			t.Run("clear", func(t *testing.T) {
				c := newCache()
				c.Put("a", doc("a"))
				c.Put("b", doc("b"))
				c.Clear()
				assert.Equal(t, 0, c.Len())
				_, ok := c.Get("a")
				assert.False(t, ok)
			})

			t.Run("concurrent access", func(t *testing.T) {
				c := newCache()
				var wg sync.WaitGroup
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						key := fmt.Sprintf("k%d", i)
						for j := 0; j < 100; j++ {
							c.Put(key, doc(key))
							c.Get(key)
							if j%10 == 0 {
								c.Remove(key)
							}
						}
						c.Put(key, doc(key))
					}(i)
				}
				wg.Wait()
				assert.Equal(t, 8, c.Len())
			})
		})
	}
}

func TestNewBounded(t *testing.T) {
	t.Parallel()

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()
		c := cache.NewBounded(2)
		c.Put("a", doc("a"))
		c.Put("b", doc("b"))
		c.Get("a")
		c.Put("c", doc("c"))

		_, ok := c.Get("b")
		assert.False(t, ok)
		_, ok = c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("non-positive size is unbounded", func(t *testing.T) {
		t.Parallel()
		c := cache.NewBounded(0)
		_, isMemory := c.(*cache.MemoryCache)
		assert.True(t, isMemory)
	})
}
