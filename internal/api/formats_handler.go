package api

import (
	"net/http"

	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/pkg/types"
)

// FormatsHandler reports which book formats can be read
type FormatsHandler struct {
	factory parser.Factory
}

// NewFormatsHandler creates a new formats handler
func NewFormatsHandler(factory parser.Factory) *FormatsHandler {
	return &FormatsHandler{
		factory: factory,
	}
}

// FormatResponse represents a format in the API response
type FormatResponse struct {
	Format    types.Format `json:"format"`
	Extension string       `json:"extension"`
	Readable  bool         `json:"readable"`
}

// Routes registers the format endpoints on mux
func (h *FormatsHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/formats", h.ListFormats)
}

// ListFormats handles GET /api/v1/formats, optionally narrowed by ?format=
func (h *FormatsHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	formats := types.Formats()

	if tag := r.URL.Query().Get("format"); tag != "" {
		f, err := types.ParseFormat(tag)
		if err != nil {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		formats = []types.Format{f}
	}

	all := make([]FormatResponse, 0, len(formats))
	for _, f := range formats {
		_, err := h.factory.GetParser(f)
		all = append(all, FormatResponse{
			Format:    f,
			Extension: "." + f.Extension(),
			Readable:  err == nil,
		})
	}

	respondJSON(w, map[string]any{
		"formats": all,
		"count":   len(all),
	}, http.StatusOK)
}
