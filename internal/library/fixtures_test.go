package library_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/cache"
	"github.com/unalkalkan/bookreader/internal/library"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/internal/storage"
)

const booksDir = "/library/books"

type env struct {
	lib    *library.Service
	fs     afero.Fs
	repo   book.Repository
	cache  cache.Cache
	parser *parser.Service
}

func newEnv(t *testing.T, opts ...library.Option) *env {
	t.Helper()
	fsys := afero.NewMemMapFs()
	c := cache.New()
	ps := parser.NewService(fsys, c)
	repo := book.NewRepository(storage.NewMemoryAdapter())
	opts = append([]library.Option{library.WithClock(tickingClock())}, opts...)
	return &env{
		lib:    library.NewService(fsys, booksDir, repo, ps, opts...),
		fs:     fsys,
		repo:   repo,
		cache:  c,
		parser: ps,
	}
}

// tickingClock returns a clock that advances one minute per call
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
}

func longText(label string) string {
	return label + ": " + strings.Repeat("The schooner rolled in the grey swell. ", 3)
}

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const contentOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Sea Wolf</dc:title>
    <dc:creator>Jack London</dc:creator>
    <dc:description>A novel about the sea.</dc:description>
  </metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

// epubBook builds a two-chapter ePUB
func epubBook(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range [][2]string{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", contentOPF},
		{"OEBPS/ch1.xhtml", "<html><body><p>" + longText("one") + "</p></body></html>"},
		{"OEBPS/ch2.xhtml", "<html><body><p>" + longText("two") + "</p></body></html>"},
	} {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleFB2 = `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
  <description>
    <title-info>
      <author><first-name>Anton</first-name><last-name>Chekhov</last-name></author>
      <book-title>Short Stories</book-title>
    </title-info>
  </description>
  <body>
    <section>
      <title><p>The Bet</p></title>
      <p>It was a dark autumn night.</p>
    </section>
    <section>
      <title><p>The Student</p></title>
      <p>At first the weather was fine and still.</p>
    </section>
  </body>
</FictionBook>`
