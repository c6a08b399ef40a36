package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/library"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// Library is the part of library.Service the handlers use
type Library interface {
	Import(ctx context.Context, name string, r io.Reader) (*types.Book, error)
	Get(ctx context.Context, id string) (*types.Book, error)
	List(ctx context.Context, filter book.Filter) ([]*types.Book, error)
	ReadPage(ctx context.Context, id string, number int) (*library.Page, error)
	SetFavorite(ctx context.Context, id string, favorite bool) (*types.Book, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*types.LibraryStats, error)
}

// BookHandler handles book-related API endpoints
type BookHandler struct {
	library   Library
	maxUpload int64
	logger    *zap.Logger
}

// NewBookHandler creates a new book handler. Uploads larger than maxUpload
// bytes are rejected.
func NewBookHandler(lib Library, maxUpload int64, logger *zap.Logger) *BookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookHandler{
		library:   lib,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes registers the book endpoints on mux
func (h *BookHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/books", h.UploadBook)
	mux.HandleFunc("GET /api/v1/books", h.ListBooks)
	mux.HandleFunc("GET /api/v1/books/{id}", h.GetBook)
	mux.HandleFunc("DELETE /api/v1/books/{id}", h.DeleteBook)
	mux.HandleFunc("GET /api/v1/books/{id}/pages/{page}", h.GetPage)
	mux.HandleFunc("PUT /api/v1/books/{id}/favorite", h.SetFavorite)
	mux.HandleFunc("GET /api/v1/stats", h.GetStats)
}

// UploadBook handles POST /api/v1/books with the file in the "file" field
func (h *BookHandler) UploadBook(w http.ResponseWriter, r *http.Request) {
	// multipart framing needs some room above the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	b, err := h.library.Import(r.Context(), header.Filename, file)
	if errors.Is(err, book.ErrDuplicate) {
		respondJSON(w, map[string]any{
			"error": "Book already in library",
			"book":  b,
		}, http.StatusConflict)
		return
	}
	if err != nil {
		respondFailure(w, h.logger, "import", err)
		return
	}

	respondJSON(w, b, http.StatusCreated)
}

// ListBooks handles GET /api/v1/books?status=&favorites=&q=
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := book.Filter{
		Status: query.Get("status"),
		Search: query.Get("q"),
	}
	if v := query.Get("favorites"); v != "" {
		favorites, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, "Invalid favorites flag", http.StatusBadRequest)
			return
		}
		filter.FavoritesOnly = favorites
	}

	books, err := h.library.List(r.Context(), filter)
	if err != nil {
		respondFailure(w, h.logger, "list", err)
		return
	}
	respondJSON(w, map[string]any{
		"books": books,
		"count": len(books),
	}, http.StatusOK)
}

// GetBook handles GET /api/v1/books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.library.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondFailure(w, h.logger, "get", err)
		return
	}
	respondJSON(w, b, http.StatusOK)
}

// DeleteBook handles DELETE /api/v1/books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondFailure(w, h.logger, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPage handles GET /api/v1/books/{id}/pages/{page}
func (h *BookHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		respondError(w, "Invalid page number", http.StatusBadRequest)
		return
	}

	page, err := h.library.ReadPage(r.Context(), r.PathValue("id"), number)
	if err != nil {
		respondFailure(w, h.logger, "read page", err)
		return
	}
	respondJSON(w, page, http.StatusOK)
}

// SetFavorite handles PUT /api/v1/books/{id}/favorite with {"favorite": bool}
func (h *BookHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Favorite *bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Favorite == nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.library.SetFavorite(r.Context(), r.PathValue("id"), *req.Favorite)
	if err != nil {
		respondFailure(w, h.logger, "set favorite", err)
		return
	}
	respondJSON(w, b, http.StatusOK)
}

// GetStats handles GET /api/v1/stats
func (h *BookHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.library.Stats(r.Context())
	if err != nil {
		respondFailure(w, h.logger, "stats", err)
		return
	}
	respondJSON(w, stats, http.StatusOK)
}

// respondFailure maps library errors to status codes
func respondFailure(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		respondError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, parser.ErrUnsupportedFormat):
		respondError(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, library.ErrTooLarge):
		respondError(w, "File too large", http.StatusRequestEntityTooLarge)
	default:
		logger.Error("request failed", zap.String("op", op), zap.Error(err))
		respondError(w, "Internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
