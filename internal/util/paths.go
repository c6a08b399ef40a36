package util

import (
	"fmt"
	"path"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// BookFilePath returns where the imported file of a book is stored
func BookFilePath(booksDir, bookID string, format types.Format) string {
	return path.Join(booksDir, fmt.Sprintf("%s.%s", bookID, format.Extension()))
}

// ChapterEntryPath returns the archive path of a chapter (0-based index) in
// an export, sharded 100 chapters per folder
func ChapterEntryPath(index int) string {
	return path.Join("chapters", fmt.Sprintf("%03d", index/100), fmt.Sprintf("%04d.txt", index+1))
}
