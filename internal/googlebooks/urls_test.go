package googlebooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readerURL(suffix string) string {
	return "http://play.google.com/books/reader?printsec=frontcover&output=reader&id=xK9zAAAAQBAJ" + suffix
}

func TestAssociateURLs(t *testing.T) {
	t.Run("PageMatch", func(t *testing.T) {
		urls := []string{
			readerURL("&pg=GBS.PA15.w.2.0.3"),
			readerURL("&pg=GBS.PA27.w.1.0.0"),
		}
		quotes := []QuoteRecord{
			{Text: "Una cita en la página quince.", Page: "15"},
			{Text: "Otra cita distinta.", Page: "27"},
		}

		out := AssociateURLs(quotes, urls)
		require.Len(t, out, 2)
		assert.Equal(t, []string{urls[0]}, out[0].URLs)
		assert.Equal(t, []string{urls[1]}, out[1].URLs)
	})

	t.Run("MultipleURLsSamePage", func(t *testing.T) {
		urls := []string{
			readerURL("&pg=GBS.PA15.w.2.0.3"),
			readerURL("&pg=GBS.PA15.w.2.0.9"),
		}
		quotes := []QuoteRecord{{Text: "Cita resaltada dos veces.", Page: "15"}}

		out := AssociateURLs(quotes, urls)
		assert.Equal(t, urls, out[0].URLs)
	})

	t.Run("PageNumberInBody", func(t *testing.T) {
		urls := []string{readerURL("&pg=GBS.PA88.w.1.0.0")}
		quotes := []QuoteRecord{
			{Text: "La cita menciona 88 dentro del cuerpo."},
		}

		out := AssociateURLs(quotes, urls)
		assert.Equal(t, urls, out[0].URLs)
	})

	t.Run("BookLevelFallback", func(t *testing.T) {
		bookURL := readerURL("")
		urls := []string{
			readerURL("&pg=GBS.PA15.w.0.0.0"),
			bookURL,
		}
		quotes := []QuoteRecord{
			{Text: "Esta cita no coincide con ninguna página.", Page: "3"},
		}

		out := AssociateURLs(quotes, urls)
		assert.Equal(t, []string{bookURL}, out[0].URLs)
	})

	t.Run("FallbackWhenEveryURLIsPageAnchor", func(t *testing.T) {
		urls := []string{readerURL("&pg=GBS.PA15.w.0.0.0")}
		quotes := []QuoteRecord{{Text: "Sin coincidencia posible.", Page: "99"}}

		out := AssociateURLs(quotes, urls)
		assert.Equal(t, []string{urls[0]}, out[0].URLs, "first URL stands in when no book-level URL exists")
	})

	t.Run("NoURLs", func(t *testing.T) {
		quotes := []QuoteRecord{{Text: "Un documento sin hipervínculos."}}
		out := AssociateURLs(quotes, nil)
		assert.Empty(t, out[0].URLs)
	})
}

func TestExtractBookURL(t *testing.T) {
	t.Run("FromPageAnchor", func(t *testing.T) {
		urls := []string{readerURL("&pg=GBS.PA15.w.2.0.3")}
		assert.Equal(t, readerURL(""), ExtractBookURL(urls))
	})

	t.Run("IgnoresForeignURLs", func(t *testing.T) {
		urls := []string{"https://example.com/article?id=5"}
		assert.Empty(t, ExtractBookURL(urls))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, ExtractBookURL(nil))
	})
}
