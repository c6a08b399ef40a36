package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// Compile-time interface verification.
var _ book.Repository = (*BookRepository)(nil)

// timeLayout is fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const bookColumns = `id, title, author, description, file_path, format, file_size, file_hash,
	total_pages, current_page, progress, status, favorite, synced, cloud_id,
	added_at, last_read_at, completed_at, updated_at`

// BookRepository implements book.Repository using SQLite.
type BookRepository struct {
	db *DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db}
}

// SaveBook inserts a new book record.
func (r *BookRepository) SaveBook(ctx context.Context, b *types.Book) error {
	if b.ID == "" {
		return errors.New("book id is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.Author, b.Description, b.FilePath, string(b.Format), b.FileSize, b.FileHash,
		b.TotalPages, b.CurrentPage, b.Progress, b.Status, b.Favorite, b.Synced, b.CloudID,
		formatTime(b.AddedAt), formatTimePtr(b.LastReadAt), formatTimePtr(b.CompletedAt), formatTime(b.UpdatedAt))
	if err != nil {
		return errors.Wrapf(err, "insert book %s", b.ID)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (r *BookRepository) GetBook(ctx context.Context, id string) (*types.Book, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(book.ErrNotFound, "book %s", id)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook replaces every column of an existing record.
func (r *BookRepository) UpdateBook(ctx context.Context, b *types.Book) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, description = ?, file_path = ?, format = ?, file_size = ?, file_hash = ?,
			total_pages = ?, current_page = ?, progress = ?, status = ?, favorite = ?, synced = ?, cloud_id = ?,
			added_at = ?, last_read_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, b.Title, b.Author, b.Description, b.FilePath, string(b.Format), b.FileSize, b.FileHash,
		b.TotalPages, b.CurrentPage, b.Progress, b.Status, b.Favorite, b.Synced, b.CloudID,
		formatTime(b.AddedAt), formatTimePtr(b.LastReadAt), formatTimePtr(b.CompletedAt), formatTime(b.UpdatedAt),
		b.ID)
	if err != nil {
		return errors.Wrapf(err, "update book %s", b.ID)
	}
	return requireAffected(result, b.ID)
}

// DeleteBook permanently removes a book record.
func (r *BookRepository) DeleteBook(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return errors.Wrapf(err, "delete book %s", id)
	}
	return requireAffected(result, id)
}

// ListBooks retrieves books matching the filter, most recently read first.
func (r *BookRepository) ListBooks(ctx context.Context, filter book.Filter) ([]*types.Book, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + bookColumns + " FROM books WHERE 1=1")

	if filter.Status != "" {
		query.WriteString(" AND status = ?")
		args = append(args, filter.Status)
	}
	if filter.FavoritesOnly {
		query.WriteString(" AND favorite = 1")
	}
	if filter.Search != "" {
		query.WriteString(" AND (lower(title) LIKE ? ESCAPE '\\' OR lower(author) LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		args = append(args, pattern, pattern)
	}

	// NULL last_read_at sorts after every timestamp in descending order
	query.WriteString(" ORDER BY last_read_at DESC, added_at DESC, id ASC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}
	defer rows.Close()

	books := make([]*types.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// FindBookByHash retrieves the book whose file has the given hash.
func (r *BookRepository) FindBookByHash(ctx context.Context, hash string) (*types.Book, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE file_hash = ? LIMIT 1`, hash)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(book.ErrNotFound, "hash %s", hash)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*types.Book, error) {
	var (
		b                       types.Book
		format                  string
		addedAt, updatedAt      string
		lastReadAt, completedAt sql.NullString
	)
	err := s.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.FilePath, &format, &b.FileSize, &b.FileHash,
		&b.TotalPages, &b.CurrentPage, &b.Progress, &b.Status, &b.Favorite, &b.Synced, &b.CloudID,
		&addedAt, &lastReadAt, &completedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	b.Format = types.Format(format)

	if b.AddedAt, err = parseTime(addedAt, "added_at"); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	if b.LastReadAt, err = parseTimePtr(lastReadAt, "last_read_at"); err != nil {
		return nil, err
	}
	if b.CompletedAt, err = parseTimePtr(completedAt, "completed_at"); err != nil {
		return nil, err
	}
	return &b, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(book.ErrNotFound, "book %s", id)
	}
	return nil
}
