package parser

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestFB2Parser_Parse(t *testing.T) {
	t.Parallel()
	parser := NewFB2Parser()
	ctx := context.Background()

	t.Run("sections titled from title element", func(t *testing.T) {
		t.Parallel()
		doc, err := parser.Parse(ctx, source("stories.fb2", []byte(sampleFB2)))
		require.NoError(t, err)
		require.Len(t, doc.Chapters, 2)

		assert.Equal(t, "The Bet", doc.Chapters[0].Title)
		assert.Equal(t, "The Student", doc.Chapters[1].Title)
		assert.Contains(t, doc.Chapters[0].Content, "It was a dark autumn night.\n\nThe old banker was pacing & remembering.")
	})

	t.Run("plain title and paragraph per section", func(t *testing.T) {
		t.Parallel()
		data := `<FictionBook><body>` +
			`<section><title>Intro</title><p>Hello</p></section>` +
			`<section><title>Intro</title><p>Hello</p></section>` +
			`</body></FictionBook>`

		doc, err := parser.Parse(ctx, source("greeting.fb2", []byte(data)))
		require.NoError(t, err)
		require.Len(t, doc.Chapters, 2)
		for _, ch := range doc.Chapters {
			assert.Equal(t, "Intro", ch.Title)
			assert.Equal(t, "Hello", ch.Content)
		}
	})

	t.Run("untitled section numbered by position", func(t *testing.T) {
		t.Parallel()
		data := `<FictionBook><body>
			<section><p></p></section>
			<section><p>Text without a heading.</p></section>
			<section><title>  </title><p>Blank heading.</p></section>
		</body></FictionBook>`

		doc, err := parser.Parse(ctx, source("book.fb2", []byte(data)))
		require.NoError(t, err)
		require.Len(t, doc.Chapters, 2)
		assert.Equal(t, "Chapter 2", doc.Chapters[0].Title)
		assert.Equal(t, "Text without a heading.", doc.Chapters[0].Content)
		assert.Equal(t, "Chapter 3", doc.Chapters[1].Title)
	})

	t.Run("paragraphs outside sections", func(t *testing.T) {
		t.Parallel()
		data := `<FictionBook><body><p>Loose paragraph one.</p><p>Loose paragraph two.</p></body></FictionBook>`

		doc, err := parser.Parse(ctx, source("/library/loose.fb2", []byte(data)))
		require.NoError(t, err)
		require.Len(t, doc.Chapters, 1)
		assert.Equal(t, "loose", doc.Chapters[0].Title)
		assert.Equal(t, "Loose paragraph one.\n\nLoose paragraph two.", doc.Chapters[0].Content)
	})

	t.Run("no paragraphs at all", func(t *testing.T) {
		t.Parallel()
		_, err := parser.Parse(ctx, source("book.fb2", []byte(`<FictionBook><body></body></FictionBook>`)))
		assert.True(t, errors.Is(err, ErrEmpty))
	})

	t.Run("declared charset decoded", func(t *testing.T) {
		t.Parallel()
		utf8Doc := `<?xml version="1.0" encoding="windows-1251"?>
<FictionBook><body><section><title><p>Глава первая</p></title><p>Мороз и солнце.</p></section></body></FictionBook>`
		encoded, err := charmap.Windows1251.NewEncoder().String(utf8Doc)
		require.NoError(t, err)

		doc, err := parser.Parse(ctx, source("book.fb2", []byte(encoded)))
		require.NoError(t, err)
		require.Len(t, doc.Chapters, 1)
		assert.Equal(t, "Глава первая", doc.Chapters[0].Title)
		assert.Contains(t, doc.Chapters[0].Content, "Мороз и солнце.")
	})

	t.Run("unknown charset", func(t *testing.T) {
		t.Parallel()
		data := `<?xml version="1.0" encoding="x-made-up"?><FictionBook/>`
		_, err := parser.Parse(ctx, source("book.fb2", []byte(data)))
		assert.True(t, errors.Is(err, ErrCorrupt))
	})
}
