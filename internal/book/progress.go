package book

import (
	"time"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// ApplyProgress records that page (1-based) of b was read at now. Progress is
// the share of pages reached; status follows progress.
func ApplyProgress(b *types.Book, page int, now time.Time) {
	b.CurrentPage = page
	b.Progress = Progress(page, b.TotalPages)
	b.Status = StatusFor(b.Progress)

	b.LastReadAt = &now
	b.UpdatedAt = now
	if b.Status == types.StatusCompleted && b.CompletedAt == nil {
		b.CompletedAt = &now
	}
}

// Progress returns page/total as a percentage capped at 100
func Progress(page, total int) float64 {
	if total <= 0 || page <= 0 {
		return 0
	}
	p := float64(page) / float64(total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// StatusFor maps a progress percentage to a reading status
func StatusFor(progress float64) string {
	switch {
	case progress >= 100:
		return types.StatusCompleted
	case progress > 0:
		return types.StatusReading
	default:
		return types.StatusNotStarted
	}
}
