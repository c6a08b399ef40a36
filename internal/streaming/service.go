// Package streaming emits the pages of a book as newline-delimited JSON.
package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// Opener returns a book together with its parsed document
type Opener interface {
	Open(ctx context.Context, id string) (*types.Book, *types.Document, error)
}

// Service handles streaming of book pages
type Service struct {
	books Opener
}

// NewService creates a new streaming service
func NewService(books Opener) *Service {
	return &Service{books: books}
}

// StreamItem is a single line of the NDJSON stream
type StreamItem struct {
	Page    int    `json:"page"`
	Total   int    `json:"total"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Chars   int    `json:"chars"`
	URL     string `json:"url"`
}

// StreamChapters returns the pages of a book following afterPage. An
// afterPage of zero streams the whole book.
func (s *Service) StreamChapters(ctx context.Context, bookID string, afterPage int) ([]StreamItem, error) {
	if afterPage < 0 {
		return nil, errors.Errorf("invalid page %d", afterPage)
	}

	b, doc, err := s.books.Open(ctx, bookID)
	if err != nil {
		return nil, err
	}

	total := doc.PageCount()
	if afterPage >= total {
		return []StreamItem{}, nil
	}

	items := make([]StreamItem, 0, total-afterPage)
	for i := afterPage; i < total; i++ {
		ch := doc.Chapters[i]
		items = append(items, StreamItem{
			Page:    i + 1,
			Total:   total,
			Title:   ch.Title,
			Content: ch.Content,
			Chars:   utf8.RuneCountInString(ch.Content),
			URL:     pageURL(b.ID, i+1),
		})
	}
	return items, nil
}

func pageURL(bookID string, page int) string {
	return fmt.Sprintf("/api/v1/books/%s/pages/%d", bookID, page)
}

// EncodeNDJSON writes one JSON object per line
func EncodeNDJSON(w io.Writer, items []StreamItem) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return errors.Wrapf(err, "encode page %d", item.Page)
		}
	}
	return nil
}
