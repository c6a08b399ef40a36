package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/bookreader/pkg/types"
)

func TestApplyProgress(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		page       int
		total      int
		wantPct    float64
		wantStatus string
	}{
		{"first of four", 1, 4, 25, types.StatusReading},
		{"middle", 2, 4, 50, types.StatusReading},
		{"last page completes", 4, 4, 100, types.StatusCompleted},
		{"beyond last capped", 9, 4, 100, types.StatusCompleted},
		{"no pages", 1, 0, 0, types.StatusNotStarted},
		{"page zero", 0, 4, 0, types.StatusNotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &types.Book{TotalPages: tt.total}
			ApplyProgress(b, tt.page, now)

			assert.Equal(t, tt.page, b.CurrentPage)
			assert.InDelta(t, tt.wantPct, b.Progress, 1e-9)
			assert.Equal(t, tt.wantStatus, b.Status)
			require.NotNil(t, b.LastReadAt)
			assert.True(t, now.Equal(*b.LastReadAt))
			assert.True(t, now.Equal(b.UpdatedAt))
		})
	}
}

func TestApplyProgress_CompletionStampedOnce(t *testing.T) {
	first := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	b := &types.Book{TotalPages: 2}
	ApplyProgress(b, 2, first)
	ApplyProgress(b, 1, later)
	ApplyProgress(b, 2, later)

	require.NotNil(t, b.CompletedAt)
	assert.True(t, first.Equal(*b.CompletedAt))
	assert.Equal(t, types.StatusCompleted, b.Status)
}

func TestFilter_Match(t *testing.T) {
	b := &types.Book{Title: "Crime and Punishment", Author: "Fyodor Dostoevsky", Status: types.StatusReading, Favorite: true}

	assert.True(t, Filter{}.Match(b))
	assert.True(t, Filter{Search: "crime"}.Match(b))
	assert.True(t, Filter{Search: "DOSTO"}.Match(b))
	assert.False(t, Filter{Search: "tolstoy"}.Match(b))
	assert.True(t, Filter{Status: types.StatusReading, FavoritesOnly: true}.Match(b))
	assert.False(t, Filter{Status: types.StatusCompleted}.Match(b))
}
