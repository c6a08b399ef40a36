package main_test

import (
	"archive/zip"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/unalkalkan/bookreader/cmd/bookreader"
	"github.com/unalkalkan/bookreader/internal/book"
	"github.com/unalkalkan/bookreader/internal/cache"
	"github.com/unalkalkan/bookreader/internal/library"
	"github.com/unalkalkan/bookreader/internal/packaging"
	"github.com/unalkalkan/bookreader/internal/parser"
	"github.com/unalkalkan/bookreader/internal/storage"
	"github.com/unalkalkan/bookreader/pkg/types"
)

const sampleFB2 = `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0">
  <description>
    <title-info>
      <author><first-name>Nikolai</first-name><last-name>Gogol</last-name></author>
      <book-title>Petersburg Tales</book-title>
      <lang>en</lang>
    </title-info>
  </description>
  <body>
    <section>
      <title><p>The Nose</p></title>
      <p>An extraordinarily strange thing happened in Petersburg.</p>
    </section>
    <section>
      <title><p>The Overcoat</p></title>
      <p>In the department of... but I had better not mention which department.</p>
    </section>
  </body>
</FictionBook>`

type testEnv struct {
	deps   *main.Dependencies
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fsys := afero.NewMemMapFs()
	ps := parser.NewService(fsys, cache.New())
	repo := book.NewRepository(storage.NewMemoryAdapter())

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testEnv{
		deps: &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Fs:      fsys,
			Library: library.NewService(fsys, "/data/books", repo, ps),
			Parser:  ps,
			Export:  packaging.NewService(repo, fsys, ps),
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, afero.WriteFile(e.deps.Fs, name, []byte(content), 0o644))
	return name
}

func (e *testEnv) reset() {
	e.stdout.Reset()
	e.stderr.Reset()
}

func (e *testEnv) importOne(t *testing.T, name, content string) *types.Book {
	t.Helper()
	b, err := e.deps.Library.ImportFile(e.deps.Ctx, e.write(t, name, content))
	require.NoError(t, err)
	return b
}

func TestImportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("imports files and directories", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		e.write(t, "/inbox/gogol.fb2", sampleFB2)
		e.write(t, "/inbox/notes.txt", "remember the milk")
		e.write(t, "/inbox/cover.png", "not a book")
		single := e.write(t, "/elsewhere/diary.txt", "dear diary")

		cmd := &main.ImportCmd{Paths: []string{"/inbox", single}}
		require.NoError(t, cmd.Run(e.deps))

		out := e.stdout.String()
		assert.Contains(t, out, `Imported "Petersburg Tales" by Nikolai Gogol (2 pages)`)
		assert.Contains(t, out, `Imported "notes"`)
		assert.Contains(t, out, `Imported "diary"`)
		assert.Contains(t, out, "3 imported, 0 skipped, 0 failed")
		assert.Empty(t, e.stderr.String())
	})

	t.Run("skips duplicates", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		existing := e.importOne(t, "/a.txt", "same")
		dup := e.write(t, "/b.txt", "same")

		cmd := &main.ImportCmd{Paths: []string{dup}}
		require.NoError(t, cmd.Run(e.deps))
		assert.Contains(t, e.stdout.String(), "already in library as "+existing.ID)
		assert.Contains(t, e.stdout.String(), "0 imported, 1 skipped, 0 failed")
	})

	t.Run("reports failures", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		bad := e.write(t, "/fake.pdf", "plain words")

		cmd := &main.ImportCmd{Paths: []string{bad, "/missing.txt"}}
		err := cmd.Run(e.deps)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 2 files failed")
		assert.Contains(t, e.stderr.String(), "/fake.pdf")
	})
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists books with size and progress", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		b := e.importOne(t, "/gogol.fb2", sampleFB2)
		_, err := e.deps.Library.ReadPage(e.deps.Ctx, b.ID, 1)
		require.NoError(t, err)
		_, err = e.deps.Library.SetFavorite(e.deps.Ctx, b.ID, true)
		require.NoError(t, err)
		e.importOne(t, "/other.txt", "other")

		require.NoError(t, (&main.ListCmd{}).Run(e.deps))

		out := e.stdout.String()
		assert.Contains(t, out, "ID")
		assert.Contains(t, out, b.ID)
		assert.Contains(t, out, "* Petersburg Tales")
		assert.Contains(t, out, "50% (1/2)")
		assert.Contains(t, out, "never")
		assert.Contains(t, out, " B ")

		// most recently read first
		assert.Less(t, strings.Index(out, "Petersburg"), strings.Index(out, "other"))
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		e.importOne(t, "/gogol.fb2", sampleFB2)
		e.importOne(t, "/other.txt", "other")

		require.NoError(t, (&main.ListCmd{Search: "gogol"}).Run(e.deps))
		assert.Contains(t, e.stdout.String(), "Petersburg Tales")
		assert.NotContains(t, e.stdout.String(), "other")

		e.reset()
		require.NoError(t, (&main.ListCmd{Status: "completed"}).Run(e.deps))
		assert.Contains(t, e.stdout.String(), "No books found")

		e.reset()
		assert.Error(t, (&main.ListCmd{Status: "abandoned"}).Run(e.deps))
		assert.Contains(t, e.stderr.String(), "unknown status")
	})

	t.Run("shows helpful message when library is empty", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)

		require.NoError(t, (&main.ListCmd{}).Run(e.deps))
		assert.Contains(t, e.stdout.String(), "bookreader import")
	})
}

func TestReadCmd_Run(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	b := e.importOne(t, "/gogol.fb2", sampleFB2)

	require.NoError(t, (&main.ReadCmd{ID: b.ID, Page: 2}).Run(e.deps))
	assert.Contains(t, e.stdout.String(), "Page 2 of 2")
	assert.Contains(t, e.stdout.String(), "## The Overcoat")

	// without a page the current position is shown
	e.reset()
	require.NoError(t, (&main.ReadCmd{ID: b.ID}).Run(e.deps))
	assert.Contains(t, e.stdout.String(), "Page 2 of 2")

	e.reset()
	assert.Error(t, (&main.ReadCmd{ID: "missing"}).Run(e.deps))
	assert.Contains(t, e.stderr.String(), "not found")
}

func TestDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires force", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		b := e.importOne(t, "/a.txt", "alpha")

		assert.Error(t, (&main.DeleteCmd{ID: b.ID}).Run(e.deps))
		assert.Contains(t, e.stderr.String(), "--force")

		_, err := e.deps.Library.Get(e.deps.Ctx, b.ID)
		assert.NoError(t, err)
	})

	t.Run("deletes book", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		b := e.importOne(t, "/a.txt", "alpha")

		require.NoError(t, (&main.DeleteCmd{ID: b.ID, Force: true}).Run(e.deps))
		assert.Contains(t, e.stdout.String(), `Deleted "a"`)

		_, err := e.deps.Library.Get(e.deps.Ctx, b.ID)
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("unknown book", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)

		assert.ErrorIs(t, (&main.DeleteCmd{ID: "nope", Force: true}).Run(e.deps), book.ErrNotFound)
		assert.Contains(t, e.stderr.String(), "bookreader list")
	})
}

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("writes archive", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		b := e.importOne(t, "/gogol.fb2", sampleFB2)

		require.NoError(t, (&main.ExportCmd{ID: b.ID, Output: "/out/gogol.zip"}).Run(e.deps))
		assert.Contains(t, e.stdout.String(), "Exported "+b.ID+" to /out/gogol.zip")

		data, err := afero.ReadFile(e.deps.Fs, "/out/gogol.zip")
		require.NoError(t, err)
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.NotEmpty(t, zr.File)
	})

	t.Run("defaults to id in working directory", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		b := e.importOne(t, "/a.txt", "alpha")

		require.NoError(t, (&main.ExportCmd{ID: b.ID}).Run(e.deps))
		exists, err := afero.Exists(e.deps.Fs, b.ID+".zip")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown book", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)

		assert.ErrorIs(t, (&main.ExportCmd{ID: "nope"}).Run(e.deps), book.ErrNotFound)
		assert.Contains(t, e.stderr.String(), "not found")
	})
}

func TestParseCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints metadata and chapters", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		path := e.write(t, "/loose/gogol.fb2", sampleFB2)

		require.NoError(t, (&main.ParseCmd{File: path, Full: true}).Run(e.deps))

		out := e.stdout.String()
		assert.Contains(t, out, "Title:    Petersburg Tales")
		assert.Contains(t, out, "Author:   Nikolai Gogol")
		assert.Contains(t, out, "Language: en")
		assert.Contains(t, out, "Chapters: 2")
		assert.Contains(t, out, "1. The Nose")
		assert.Contains(t, out, "An extraordinarily strange thing")

		books, err := e.deps.Library.List(e.deps.Ctx, book.Filter{})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("format flag overrides extension", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		path := e.write(t, filepath.Join("/loose", "README"), "just text")

		require.NoError(t, (&main.ParseCmd{File: path, Format: "txt"}).Run(e.deps))
		assert.Contains(t, e.stdout.String(), "Chapters: 1")
		assert.Contains(t, e.stdout.String(), "Author:   "+parser.UnknownAuthor)
	})

	t.Run("reports parse failures", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)

		err := (&main.ParseCmd{File: "/missing.txt"}).Run(e.deps)
		assert.ErrorIs(t, err, parser.ErrNotFound)

		e.reset()
		path := e.write(t, "/loose/notes", "x")
		assert.Error(t, (&main.ParseCmd{File: path}).Run(e.deps))
		assert.Contains(t, e.stderr.String(), "no extension")
	})
}

func TestStatsCmd_Run(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	b := e.importOne(t, "/a.txt", "alpha")
	e.importOne(t, "/b.txt", "bravo")
	_, err := e.deps.Library.ReadPage(e.deps.Ctx, b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, (&main.StatsCmd{}).Run(e.deps))

	out := e.stdout.String()
	assert.Contains(t, out, "Books:       2 (10 B)")
	assert.Contains(t, out, "Not started: 1")
	assert.Contains(t, out, "Completed:   1")
	assert.Contains(t, out, "Favorites:   0")
}
