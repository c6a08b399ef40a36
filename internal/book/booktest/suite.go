// Package booktest holds the behaviour checks every book.Repository must pass.
package booktest

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// NewBook returns a populated record with the given id
func NewBook(id, title, author string) *types.Book {
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.Book{
		ID:          id,
		Title:       title,
		Author:      author,
		FilePath:    "/library/" + id + ".epub",
		Format:      types.FormatEPUB,
		FileSize:    2048,
		FileHash:    "hash-" + id,
		TotalPages:  10,
		CurrentPage: 1,
		Status:      types.StatusNotStarted,
		AddedAt:     added,
		UpdatedAt:   added,
	}
}

// RunRepositorySuite exercises repo, which must start empty
func RunRepositorySuite(t *testing.T, repo book.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndGetBook", func(t *testing.T) {
		b := NewBook("b1", "War and Peace", "Leo Tolstoy")
		b.Description = "A long one"
		require.NoError(t, repo.SaveBook(ctx, b))

		got, err := repo.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, b.Title, got.Title)
		assert.Equal(t, b.Author, got.Author)
		assert.Equal(t, b.Description, got.Description)
		assert.Equal(t, b.Format, got.Format)
		assert.Equal(t, b.FileSize, got.FileSize)
		assert.Equal(t, b.TotalPages, got.TotalPages)
		assert.True(t, b.AddedAt.Equal(got.AddedAt))
		assert.Nil(t, got.LastReadAt)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.GetBook(ctx, "nope")
		assert.True(t, errors.Is(err, book.ErrNotFound))
	})

	t.Run("UpdateBook", func(t *testing.T) {
		b, err := repo.GetBook(ctx, "b1")
		require.NoError(t, err)

		book.ApplyProgress(b, 10, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC))
		b.Favorite = true
		require.NoError(t, repo.UpdateBook(ctx, b))

		got, err := repo.GetBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 10, got.CurrentPage)
		assert.Equal(t, 100.0, got.Progress)
		assert.Equal(t, types.StatusCompleted, got.Status)
		assert.True(t, got.Favorite)
		require.NotNil(t, got.LastReadAt)
		require.NotNil(t, got.CompletedAt)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := repo.UpdateBook(ctx, NewBook("ghost", "x", "y"))
		assert.True(t, errors.Is(err, book.ErrNotFound))
	})

	t.Run("FindBookByHash", func(t *testing.T) {
		got, err := repo.FindBookByHash(ctx, "hash-b1")
		require.NoError(t, err)
		assert.Equal(t, "b1", got.ID)

		_, err = repo.FindBookByHash(ctx, "hash-unknown")
		assert.True(t, errors.Is(err, book.ErrNotFound))
	})

	t.Run("ListBooks", func(t *testing.T) {
		b2 := NewBook("b2", "Anna Karenina", "Leo Tolstoy")
		b2.AddedAt = b2.AddedAt.Add(time.Hour)
		b3 := NewBook("b3", "Dead Souls", "Nikolai Gogol")
		book.ApplyProgress(b3, 3, time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC))
		require.NoError(t, repo.SaveBook(ctx, b2))
		require.NoError(t, repo.SaveBook(ctx, b3))

		all, err := repo.ListBooks(ctx, book.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b3", "b1", "b2"}, ids(all), "read books first, most recent first")

		reading, err := repo.ListBooks(ctx, book.Filter{Status: types.StatusReading})
		require.NoError(t, err)
		assert.Equal(t, []string{"b3"}, ids(reading))

		favorites, err := repo.ListBooks(ctx, book.Filter{FavoritesOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, ids(favorites))

		tolstoy, err := repo.ListBooks(ctx, book.Filter{Search: "tolSTOY"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"b1", "b2"}, ids(tolstoy))

		byTitle, err := repo.ListBooks(ctx, book.Filter{Search: "souls"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b3"}, ids(byTitle))
	})

	t.Run("DeleteBook", func(t *testing.T) {
		require.NoError(t, repo.DeleteBook(ctx, "b2"))
		_, err := repo.GetBook(ctx, "b2")
		assert.True(t, errors.Is(err, book.ErrNotFound))

		err = repo.DeleteBook(ctx, "b2")
		assert.True(t, errors.Is(err, book.ErrNotFound))
	})
}

func ids(books []*types.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}
