package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/unalkalkan/bookreader/internal/streaming"
)

// Streamer produces the NDJSON page stream of a book
type Streamer interface {
	StreamChapters(ctx context.Context, bookID string, afterPage int) ([]streaming.StreamItem, error)
}

// Packager produces the ZIP export of a book
type Packager interface {
	PackageBook(ctx context.Context, bookID string) (io.ReadCloser, error)
}

// ExportHandler serves whole-book streams and downloads
type ExportHandler struct {
	streamer Streamer
	packager Packager
	logger   *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(streamer Streamer, packager Packager, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{
		streamer: streamer,
		packager: packager,
		logger:   logger,
	}
}

// Routes registers the export endpoints on mux
func (h *ExportHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/books/{id}/stream", h.StreamBook)
	mux.HandleFunc("GET /api/v1/books/{id}/download", h.DownloadBook)
}

// StreamBook handles GET /api/v1/books/{id}/stream?after=N
func (h *ExportHandler) StreamBook(w http.ResponseWriter, r *http.Request) {
	after := 0
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, "Invalid after parameter", http.StatusBadRequest)
			return
		}
		after = n
	}

	items, err := h.streamer.StreamChapters(r.Context(), r.PathValue("id"), after)
	if err != nil {
		respondFailure(w, h.logger, "stream", err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if err := streaming.EncodeNDJSON(w, items); err != nil {
		h.logger.Warn("stream interrupted", zap.String("id", r.PathValue("id")), zap.Error(err))
	}
}

// DownloadBook handles GET /api/v1/books/{id}/download
func (h *ExportHandler) DownloadBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	archive, err := h.packager.PackageBook(r.Context(), id)
	if err != nil {
		respondFailure(w, h.logger, "download", err)
		return
	}
	defer archive.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".zip"))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, archive); err != nil {
		h.logger.Warn("download interrupted", zap.String("id", id), zap.Error(err))
	}
}
