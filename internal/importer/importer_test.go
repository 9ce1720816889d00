package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/entities"
	"github.com/QuoteSync/quotesync/internal/reconciler"
)

const sampleClippings = `El nombre del viento (Patrick Rothfuss)
- Your Highlight on page 42 | Added on Monday, March 14, 2023 9:26:53 AM

Era una noche como cualquier otra.
==========
Dune (Frank Herbert)
- Your Highlight at location 784-785 | Added on Tuesday, March 15, 2023 10:00:00 PM

Fear is the mind-killer.
==========
`

var annotationLines = []string{
	"El nombre del viento",
	"Patrick Rothfuss",
	"Plaza & Janés",
	"Este documento contiene tus anotaciones.",
	"Tienes 2 notas/fragmentos resaltados",
	"Índice",
	"",
	"1. El principio del silencio",
	"",
	"42",
	"Era una noche como cualquier otra, con un silencio de tres partes.",
	"14 de marzo de 2023",
	"",
	"57",
	"La música suena cuando la tocas, pero no es tuya.",
	"20 de marzo de 2023",
}

func setup(t *testing.T) (*Importer, *database.Database, *entities.User) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	user, err := db.CreateUser("reader", "reader@example.com", "hash")
	require.NoError(t, err)

	imp := NewImporter(db, reconciler.NewReconciler(db), nil)
	return imp, db, user
}

// xmlEscape escapes text for embedding in element content or attribute
// values; ampersands in publisher names and URL query strings would
// otherwise produce malformed XML.
func xmlEscape(t *testing.T, s string) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, xml.EscapeText(&buf, []byte(s)))
	return buf.String()
}

// writeDocx builds a minimal DOCX: one paragraph per line, plus relationship
// entries for the given hyperlink URLs.
func writeDocx(t *testing.T, path string, lines []string, urls []string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`)
	for i, line := range lines {
		body.WriteString("<w:p>")
		if i == 0 && len(urls) > 0 {
			body.WriteString(`<w:hyperlink r:id="rId1">`)
		}
		body.WriteString("<w:r><w:t>")
		body.WriteString(xmlEscape(t, line))
		body.WriteString("</w:t></w:r>")
		if i == 0 && len(urls) > 0 {
			body.WriteString("</w:hyperlink>")
		}
		body.WriteString("</w:p>")
	}
	body.WriteString("</w:body></w:document>")

	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(body.String()))
	require.NoError(t, err)

	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i, url := range urls {
		rels.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s"/>`, i+1, xmlEscape(t, url)))
	}
	rels.WriteString(`</Relationships>`)

	rel, err := zw.Create("word/_rels/document.xml.rels")
	require.NoError(t, err)
	_, err = rel.Write([]byte(rels.String()))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
}

func writeZip(t *testing.T, path string, add func(zw *zip.Writer)) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	add(zw)
	require.NoError(t, zw.Close())
}

func addFileFromDisk(t *testing.T, zw *zip.Writer, name, src string) {
	t.Helper()

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
}

func TestImportClippings(t *testing.T) {
	t.Run("TwoBlocks", func(t *testing.T) {
		imp, db, user := setup(t)

		summary, err := imp.ImportClippings(user.ID, strings.NewReader(sampleClippings), "My Clippings.txt")
		require.NoError(t, err)

		assert.Equal(t, 2, summary.QuotesAdded)
		assert.Equal(t, 0, summary.Duplicates)
		assert.Len(t, summary.QuoteIDs, 2)

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entities.ImportStatusCompleted, logs[0].Status)
		assert.Equal(t, entities.PlatformKindle, logs[0].Platform)
		assert.Equal(t, 2, logs[0].QuotesAdded)
		assert.Equal(t, "My Clippings.txt", logs[0].FileName)

		books, err := db.GetAllBooks()
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("ReimportCountsDuplicatesButKeepsRows", func(t *testing.T) {
		imp, db, user := setup(t)

		_, err := imp.ImportClippings(user.ID, strings.NewReader(sampleClippings), "My Clippings.txt")
		require.NoError(t, err)

		second, err := imp.ImportClippings(user.ID, strings.NewReader(sampleClippings), "My Clippings.txt")
		require.NoError(t, err)

		assert.Equal(t, 2, second.Duplicates)

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		// Most recent first. An all-duplicates run reports zero net additions.
		assert.Equal(t, 0, logs[0].QuotesAdded)
		assert.Equal(t, 2, logs[0].DuplicatesSkipped)

		_, total, err := db.GetQuotesForUser(user.ID, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
	})

	t.Run("EmptyFileRejected", func(t *testing.T) {
		imp, db, user := setup(t)

		_, err := imp.ImportClippings(user.ID, strings.NewReader(""), "empty.txt")
		assert.ErrorIs(t, err, ErrInvalidInput)

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		assert.Empty(t, logs, "nothing is persisted for invalid input")
	})
}

func TestImportDocx(t *testing.T) {
	t.Run("SingleDocument", func(t *testing.T) {
		imp, db, user := setup(t)

		path := filepath.Join(t.TempDir(), "export.docx")
		url := "http://play.google.com/books/reader?printsec=frontcover&output=reader&id=abc123&pg=GBS.PA42.w.1.0.5"
		writeDocx(t, path, annotationLines, []string{url})

		summary, err := imp.ImportDocx(user.ID, path, "export.docx")
		require.NoError(t, err)

		assert.Equal(t, 2, summary.QuotesAdded)
		require.NotNil(t, summary.Book)
		assert.Equal(t, "El nombre del viento", summary.Book.Title)
		assert.Equal(t, "Patrick Rothfuss", summary.Book.Author)
		assert.Equal(t, "http://play.google.com/books/reader?printsec=frontcover&output=reader&id=abc123", summary.Book.BookURL)

		book, err := db.GetBookByTitle("El nombre del viento")
		require.NoError(t, err)
		require.NotNil(t, book.Author)
		assert.Equal(t, "Patrick Rothfuss", book.Author.Name)
		assert.Equal(t, "Plaza & Janés", book.Publisher)

		quote, err := db.GetQuoteByID(summary.QuoteIDs[0])
		require.NoError(t, err)
		assert.Equal(t, url, quote.BookURL, "page-anchored URL attached to the page-42 quote")

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entities.PlatformGoogleBooks, logs[0].Platform)
		assert.Equal(t, entities.ImportStatusCompleted, logs[0].Status)
	})

	t.Run("CorruptFileRejected", func(t *testing.T) {
		imp, db, user := setup(t)

		path := filepath.Join(t.TempDir(), "broken.docx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

		_, err := imp.ImportDocx(user.ID, path, "broken.docx")
		assert.ErrorIs(t, err, ErrInvalidInput)

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestImportZip(t *testing.T) {
	t.Run("BatchWithOneBrokenFile", func(t *testing.T) {
		imp, db, user := setup(t)
		dir := t.TempDir()

		good := filepath.Join(dir, "good.docx")
		writeDocx(t, good, annotationLines, nil)

		zipPath := filepath.Join(dir, "batch.zip")
		writeZip(t, zipPath, func(zw *zip.Writer) {
			addFileFromDisk(t, zw, "exports/good.docx", good)

			broken, err := zw.Create("exports/broken.docx")
			require.NoError(t, err)
			_, err = broken.Write([]byte("not a docx"))
			require.NoError(t, err)

			junk, err := zw.Create("__MACOSX/._good.docx")
			require.NoError(t, err)
			_, err = junk.Write([]byte("resource fork"))
			require.NoError(t, err)

			readme, err := zw.Create("exports/readme.txt")
			require.NoError(t, err)
			_, err = readme.Write([]byte("ignored"))
			require.NoError(t, err)
		})

		summary, err := imp.ImportZip(user.ID, zipPath, "batch.zip")
		require.NoError(t, err)

		assert.Equal(t, 2, summary.TotalFiles, "__MACOSX and non-docx entries are not counted")
		assert.Equal(t, 1, summary.ProcessedFiles)
		assert.Equal(t, 2, summary.QuotesAdded)
		require.Len(t, summary.Errors, 1)
		assert.Contains(t, summary.Errors[0], "broken.docx")
		assert.Equal(t, map[string]int{"El nombre del viento": 2}, summary.Books)

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entities.PlatformGoogleBooksBatch, logs[0].Platform)
		assert.Equal(t, entities.ImportStatusCompleted, logs[0].Status)
		assert.Contains(t, logs[0].Errors, "broken.docx")
	})

	t.Run("ArchiveWithoutDocxRejected", func(t *testing.T) {
		imp, db, user := setup(t)
		dir := t.TempDir()

		zipPath := filepath.Join(dir, "empty.zip")
		writeZip(t, zipPath, func(zw *zip.Writer) {
			w, err := zw.Create("notes.txt")
			require.NoError(t, err)
			_, err = w.Write([]byte("no documents here"))
			require.NoError(t, err)
		})

		_, err := imp.ImportZip(user.ID, zipPath, "empty.zip")
		assert.ErrorIs(t, err, ErrInvalidInput)

		logs, err := db.GetImportLogsForUser(user.ID)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		imp, _, user := setup(t)

		path := filepath.Join(t.TempDir(), "fake.zip")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

		_, err := imp.ImportZip(user.ID, path, "fake.zip")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
