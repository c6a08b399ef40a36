package book

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/internal/storage"
	"github.com/unalkalkan/bookreader/pkg/types"
)

var (
	// ErrNotFound is returned when no record has the requested id or hash
	ErrNotFound = errors.New("book not found")

	// ErrDuplicate is returned when importing a file already in the library
	ErrDuplicate = errors.New("book already in library")
)

// Filter narrows ListBooks. The zero value matches every book.
type Filter struct {
	Status        string
	FavoritesOnly bool
	// Search matches title or author, case-insensitively
	Search string
}

// Match reports whether b passes the filter
func (f Filter) Match(b *types.Book) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.FavoritesOnly && !b.Favorite {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
			return false
		}
	}
	return true
}

// Repository handles book record persistence
type Repository interface {
	// SaveBook stores a new book record
	SaveBook(ctx context.Context, book *types.Book) error

	// GetBook retrieves a book by ID
	GetBook(ctx context.Context, bookID string) (*types.Book, error)

	// UpdateBook replaces an existing book record
	UpdateBook(ctx context.Context, book *types.Book) error

	// DeleteBook removes a book record
	DeleteBook(ctx context.Context, bookID string) error

	// ListBooks returns matching books, most recently read first
	ListBooks(ctx context.Context, filter Filter) ([]*types.Book, error)

	// FindBookByHash returns the book whose file has the given content hash
	FindBookByHash(ctx context.Context, hash string) (*types.Book, error)
}

// SortBooks orders books most recently read first; never-read books follow,
// newest additions first
func SortBooks(books []*types.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		switch {
		case a.LastReadAt != nil && b.LastReadAt != nil && !a.LastReadAt.Equal(*b.LastReadAt):
			return a.LastReadAt.After(*b.LastReadAt)
		case a.LastReadAt != nil && b.LastReadAt == nil:
			return true
		case a.LastReadAt == nil && b.LastReadAt != nil:
			return false
		case !a.AddedAt.Equal(b.AddedAt):
			return a.AddedAt.After(b.AddedAt)
		default:
			return a.ID < b.ID
		}
	})
}

// StorageRepository implements Repository with one JSON document per book
// at books/<id>/metadata.json
type StorageRepository struct {
	storage storage.Adapter
}

// NewRepository creates a new book repository
func NewRepository(storageAdapter storage.Adapter) *StorageRepository {
	return &StorageRepository{
		storage: storageAdapter,
	}
}

func metadataPath(bookID string) string {
	return path.Join("books", bookID, "metadata.json")
}

// SaveBook stores book metadata
func (r *StorageRepository) SaveBook(ctx context.Context, book *types.Book) error {
	if book.ID == "" {
		return errors.New("book id is required")
	}
	data, err := json.Marshal(book)
	if err != nil {
		return errors.Wrap(err, "marshal book")
	}
	return r.storage.Put(ctx, metadataPath(book.ID), bytes.NewReader(data))
}

// GetBook retrieves book metadata by ID
func (r *StorageRepository) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	reader, err := r.storage.Get(ctx, metadataPath(bookID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "book %s", bookID)
		}
		return nil, errors.Wrap(err, "get book metadata")
	}
	defer reader.Close()

	var book types.Book
	if err := json.NewDecoder(reader).Decode(&book); err != nil {
		return nil, errors.Wrapf(err, "decode book %s", bookID)
	}
	return &book, nil
}

// UpdateBook replaces the record of an existing book
func (r *StorageRepository) UpdateBook(ctx context.Context, book *types.Book) error {
	exists, err := r.storage.Exists(ctx, metadataPath(book.ID))
	if err != nil {
		return errors.Wrap(err, "check book")
	}
	if !exists {
		return errors.Wrapf(ErrNotFound, "book %s", book.ID)
	}
	return r.SaveBook(ctx, book)
}

// DeleteBook removes the record of a book
func (r *StorageRepository) DeleteBook(ctx context.Context, bookID string) error {
	exists, err := r.storage.Exists(ctx, metadataPath(bookID))
	if err != nil {
		return errors.Wrap(err, "check book")
	}
	if !exists {
		return errors.Wrapf(ErrNotFound, "book %s", bookID)
	}
	return r.storage.Delete(ctx, metadataPath(bookID))
}

// ListBooks returns all books passing the filter
func (r *StorageRepository) ListBooks(ctx context.Context, filter Filter) ([]*types.Book, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}

	books := make([]*types.Book, 0, len(all))
	for _, b := range all {
		if filter.Match(b) {
			books = append(books, b)
		}
	}
	SortBooks(books)
	return books, nil
}

// FindBookByHash scans the records for a matching file hash
func (r *StorageRepository) FindBookByHash(ctx context.Context, hash string) (*types.Book, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.FileHash == hash {
			return b, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "hash %s", hash)
}

func (r *StorageRepository) all(ctx context.Context) ([]*types.Book, error) {
	paths, err := r.storage.List(ctx, "books/")
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}

	books := make([]*types.Book, 0, len(paths))
	for _, p := range paths {
		if path.Base(p) != "metadata.json" {
			continue
		}

		reader, err := r.storage.Get(ctx, p)
		if err != nil {
			continue // removed since listing
		}

		var book types.Book
		err = json.NewDecoder(reader).Decode(&book)
		reader.Close()
		if err != nil {
			continue
		}
		books = append(books, &book)
	}
	return books, nil
}
