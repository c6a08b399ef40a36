package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies the container/markup format of a book file
type Format string

const (
	FormatEPUB Format = "EPUB"
	FormatPDF  Format = "PDF"
	FormatFB2  Format = "FB2"
	FormatMOBI Format = "MOBI"
	FormatTXT  Format = "TXT"
)

// Formats lists every supported format in a stable order
func Formats() []Format {
	return []Format{FormatEPUB, FormatPDF, FormatFB2, FormatMOBI, FormatTXT}
}

// ParseFormat converts a format tag ("epub", "PDF", ".fb2") into a Format
func ParseFormat(tag string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), ".")))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %q", tag)
}

// FormatFromPath derives the format from a file name extension
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("file %q has no extension", filepath.Base(path))
	}
	return ParseFormat(ext)
}

// Extension returns the lower-case file extension used for stored files
func (f Format) Extension() string {
	return strings.ToLower(string(f))
}

// Reading statuses of a book
const (
	StatusNotStarted = "NOT_STARTED"
	StatusReading    = "READING"
	StatusCompleted  = "COMPLETED"
)

// Book represents a book in the local library
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description,omitempty"`
	FilePath    string     `json:"file_path"`
	Format      Format     `json:"format"`
	FileSize    int64      `json:"file_size"`
	FileHash    string     `json:"file_hash,omitempty"`
	TotalPages  int        `json:"total_pages"`
	CurrentPage int        `json:"current_page"` // 1-based
	Progress    float64    `json:"progress"`     // 0-100
	Status      string     `json:"status"`
	Favorite    bool       `json:"favorite"`
	Synced      bool       `json:"synced"`
	CloudID     string     `json:"cloud_id,omitempty"`
	AddedAt     time.Time  `json:"added_at"`
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Chapter is a titled span of plain text, one navigational page of a book
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Document is the ordered chapter list extracted from one book file.
// Documents handed out by the parser are shared with its cache and must be
// treated as read-only.
type Document struct {
	Chapters []Chapter `json:"chapters"`
}

// PageCount returns the number of pages, which equals the chapter count
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Chapters)
}

// Page returns the chapter for a 1-based page number
func (d *Document) Page(number int) (Chapter, bool) {
	if d == nil || number < 1 || number > len(d.Chapters) {
		return Chapter{}, false
	}
	return d.Chapters[number-1], true
}

// Metadata holds descriptive fields read from a book file
type Metadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
}

// LibraryStats summarises the library
type LibraryStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	Favorites  int            `json:"favorites"`
	TotalBytes int64          `json:"total_bytes"`
}
