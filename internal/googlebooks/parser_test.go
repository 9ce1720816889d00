package googlebooks

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `El nombre del viento
Patrick Rothfuss
Plaza & Janés
Este documento contiene tus anotaciones del libro.
Tienes 3 notas/fragmentos resaltados
Índice

1. El principio del silencio

42
Era una noche como cualquier otra, con un silencio de tres partes.
14 de marzo de 2023

2. Un día precioso

57
La música suena cuando la tocas, pero no es tuya.
Pertenece al momento.
20 de marzo de 2023

99
Las palabras pueden encender fuegos en las mentes de los hombres.
2 de abril de 2023
`

func TestParse(t *testing.T) {
	t.Run("HeaderFields", func(t *testing.T) {
		book := Parse(sampleExport, nil)

		assert.Equal(t, "El nombre del viento", book.Title)
		assert.Equal(t, "Patrick Rothfuss", book.Author)
		assert.Equal(t, "Plaza & Janés", book.Publisher)
	})

	t.Run("BoilerplateSkippedInHeader", func(t *testing.T) {
		text := "Este documento contiene tus anotaciones.\nMi libro\nAutora\nEditorial\nTienes 1 notas/fragmentos resaltados\n"
		book := Parse(text, nil)

		assert.Equal(t, "Mi libro", book.Title)
		assert.Equal(t, "Autora", book.Author)
		assert.Equal(t, "Editorial", book.Publisher)
	})

	t.Run("QuoteExtraction", func(t *testing.T) {
		book := Parse(sampleExport, nil)
		require.Len(t, book.Quotes, 3)

		first := book.Quotes[0]
		assert.Equal(t, "1. El principio del silencio", first.Chapter)
		assert.Equal(t, "Era una noche como cualquier otra, con un silencio de tres partes.", first.Text)
		assert.Equal(t, "14 de marzo de 2023", first.Date)
		assert.Equal(t, "42", first.Page)
	})

	t.Run("MultiLineBodyJoinedWithSpaces", func(t *testing.T) {
		book := Parse(sampleExport, nil)
		require.Len(t, book.Quotes, 3)

		second := book.Quotes[1]
		assert.Equal(t, "La música suena cuando la tocas, pero no es tuya. Pertenece al momento.", second.Text)
		assert.Equal(t, "2. Un día precioso", second.Chapter)
		assert.Equal(t, "57", second.Page)
	})

	t.Run("ChapterCarriesForward", func(t *testing.T) {
		book := Parse(sampleExport, nil)
		require.Len(t, book.Quotes, 3)

		// Third quote has no chapter heading of its own.
		assert.Equal(t, "2. Un día precioso", book.Quotes[2].Chapter)
		assert.Equal(t, "99", book.Quotes[2].Page)
	})

	t.Run("PendingQuoteFlushedAtEOF", func(t *testing.T) {
		text := "Libro\nAutor\nEditorial\nTienes 2 notas/fragmentos resaltados\nÍndice\n\nPrimera cita completa de prueba.\n1 de enero de 2024\n\nSegunda cita que termina el documento sin línea de fecha propia.\n"
		book := Parse(text, nil)

		// The trailing body is flushed because a date was seen earlier.
		require.Len(t, book.Quotes, 2)
		assert.Equal(t, "Segunda cita que termina el documento sin línea de fecha propia.", book.Quotes[1].Text)
		assert.Equal(t, "1 de enero de 2024", book.Quotes[1].Date)
	})

	t.Run("ShortBodiesDiscarded", func(t *testing.T) {
		// "Fin" is exactly 3 runes, "Alma" exactly 4: the floor keeps 4 and up.
		text := "Libro\nAutor\nEditorial\nTienes 2 notas/fragmentos resaltados\nÍndice\n\nFin\n1 de enero de 2024\n\nAlma\n2 de enero de 2024\n"
		book := Parse(text, nil)

		require.Len(t, book.Quotes, 1)
		assert.Equal(t, "Alma", book.Quotes[0].Text)
	})

	t.Run("LeadingPageArtifactStripped", func(t *testing.T) {
		text := "Libro\nAutor\nEditorial\nTienes 1 notas/fragmentos resaltados\nÍndice\n\n118 La cita empieza con un número de página pegado.\n5 de mayo de 2024\n"
		book := Parse(text, nil)

		require.Len(t, book.Quotes, 1)
		assert.Equal(t, "La cita empieza con un número de página pegado.", book.Quotes[0].Text)
	})

	t.Run("EpiloguePass", func(t *testing.T) {
		text := "Libro\nAutor\nEditorial\nTienes 1 notas/fragmentos resaltados\nÍndice\n\n3. Capítulo final\n\nEpílogo Y así terminó todo, como había empezado.\n9 de junio de 2024\n"
		book := Parse(text, nil)

		require.Len(t, book.Quotes, 1)
		assert.Equal(t, "Epílogo", book.Quotes[0].Chapter)
		assert.Equal(t, "Y así terminó todo, como había empezado.", book.Quotes[0].Text)
		assert.NotContains(t, book.Quotes[0].Text, "Epílogo")
	})

	t.Run("CustomDateMatcher", func(t *testing.T) {
		opts := DefaultParserOptions()
		opts.DateMatcher = regexp.MustCompile(`\w+ \d+, \d{4}`)

		text := "Libro\nAutor\nEditorial\nTienes 1 notas/fragmentos resaltados\nÍndice\n\nA quote in an English-locale export.\nMarch 14, 2023\n"
		book := Parse(text, opts)

		require.Len(t, book.Quotes, 1)
		assert.Equal(t, "March 14, 2023", book.Quotes[0].Date)
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		book := Parse("", nil)
		assert.Empty(t, book.Quotes)
		assert.Empty(t, book.Title)
	})
}

func TestConvert(t *testing.T) {
	urls := []string{
		"http://play.google.com/books/reader?printsec=frontcover&output=reader&id=abc123&pg=GBS.PA42.w.1.0.5",
		"http://play.google.com/books/reader?printsec=frontcover&output=reader&id=abc123",
	}

	book := Convert(sampleExport, urls, nil)

	require.Len(t, book.Quotes, 3)
	assert.Equal(t, "http://play.google.com/books/reader?printsec=frontcover&output=reader&id=abc123", book.BookURL)

	// Page 42 quote gets its anchor URL; the rest get the book-level fallback.
	assert.Equal(t, []string{urls[0]}, book.Quotes[0].URLs)
	for _, q := range book.Quotes {
		assert.NotNil(t, q.URLs, "URLs is always at least an empty list")
	}
}
