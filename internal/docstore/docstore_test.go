package docstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("SaveUploadKeepsExtension", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "docs"))
		require.NoError(t, err)

		path, err := store.SaveUpload(strings.NewReader("content"), "Export From Play Books.DOCX")
		require.NoError(t, err)

		assert.Equal(t, ".docx", filepath.Ext(path))
		assert.NotContains(t, filepath.Base(path), "Export", "stored name is anonymized")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))
	})

	t.Run("UniqueNames", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		first, err := store.SaveUpload(strings.NewReader("a"), "same.txt")
		require.NoError(t, err)
		second, err := store.SaveUpload(strings.NewReader("b"), "same.txt")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("SaveJSONAlongside", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		docPath, err := store.SaveUpload(strings.NewReader("doc"), "export.docx")
		require.NoError(t, err)

		jsonPath, err := store.SaveJSON(docPath, map[string]string{"title": "Dune"})
		require.NoError(t, err)

		assert.Equal(t, strings.TrimSuffix(docPath, ".docx")+".json", jsonPath)

		data, err := os.ReadFile(jsonPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"title": "Dune"`)
	})
}
