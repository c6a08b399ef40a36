package util

import (
	"testing"

	"github.com/unalkalkan/bookreader/pkg/types"
)

func TestBookFilePath(t *testing.T) {
	got := BookFilePath("/srv/books", "abc", types.FormatFB2)
	if got != "/srv/books/abc.fb2" {
		t.Errorf("BookFilePath() = %q", got)
	}
}

func TestChapterEntryPath(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "chapters/000/0001.txt"},
		{99, "chapters/000/0100.txt"},
		{100, "chapters/001/0101.txt"},
	}
	for _, tt := range tests {
		if got := ChapterEntryPath(tt.index); got != tt.want {
			t.Errorf("ChapterEntryPath(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
