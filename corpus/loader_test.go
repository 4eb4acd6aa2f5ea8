package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/document"
)

func seedCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"eluniverso/2024-03-15/pagina-03.txt": "Guayaquil. El municipio anunció nuevas obras viales para el sur de la ciudad.\n\nLos trabajos empiezan la próxima semana.\n",
		"eluniverso/2024-03-15/editorial.md":  "## Editorial\n\nLa seguridad sigue siendo la principal preocupación ciudadana.\n\n- primer punto\n- segundo punto\n",
		"elcomercio/1998-07-02/portada.txt":   "Quito. La crisis bancaria domina los titulares de esta edición histórica.\n",
		"eluniverso/2024-03-15/meta.json":     `{"pages": 48}`,
		"_raw/2024-03-15/scan-notes.txt":      "raw scanner output, should never be loaded",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestLoader_Load(t *testing.T) {
	root := seedCorpus(t)
	loader := NewLoader()

	docs, failures, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, docs, 3)

	t.Run("ShouldSortDocumentsByID", func(t *testing.T) {
		assert.Equal(t, "elcomercio/1998-07-02/portada.txt", docs[0].ID)
		assert.Equal(t, "eluniverso/2024-03-15/editorial.md", docs[1].ID)
		assert.Equal(t, "eluniverso/2024-03-15/pagina-03.txt", docs[2].ID)
	})

	t.Run("ShouldDeriveMetadataFromPath", func(t *testing.T) {
		assert.Equal(t, "elcomercio", docs[0].Publication)
		assert.Equal(t, time.Date(1998, 7, 2, 0, 0, 0, 0, time.UTC), docs[0].ArchiveDate)
		assert.Equal(t, "eluniverso", docs[2].Publication)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), docs[2].ArchiveDate)
	})

	t.Run("ShouldMarkMarkdownBoundaries", func(t *testing.T) {
		editorial := docs[1]
		assert.NotEmpty(t, editorial.Boundaries)
		for _, offset := range editorial.Boundaries {
			assert.GreaterOrEqual(t, offset, 0)
			assert.Less(t, offset, len(editorial.Text))
		}
	})

	t.Run("ShouldSkipExcludedAndUnsupportedFiles", func(t *testing.T) {
		for _, doc := range docs {
			assert.NotContains(t, doc.ID, "_raw")
			assert.NotContains(t, doc.ID, ".json")
		}
	})
}

func TestLoader_LoadUnreadable(t *testing.T) {
	root := seedCorpus(t)
	badPDF := filepath.Join(root, "eluniverso", "2024-03-15", "suplemento.pdf")
	require.NoError(t, os.WriteFile(badPDF, []byte("not a pdf at all"), 0o644))
	badText := filepath.Join(root, "elcomercio", "1998-07-02", "corrupt.txt")
	require.NoError(t, os.WriteFile(badText, []byte{0xff, 0xfe, 0x00, 0x80, 0x81}, 0o644))

	loader := NewLoader()
	docs, failures, err := loader.Load(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	require.Len(t, failures, 2)
	assert.Equal(t, "elcomercio/1998-07-02/corrupt.txt", failures[0].DocumentID)
	assert.Equal(t, document.FailureUnreadable, failures[0].Kind)
	assert.Equal(t, "eluniverso/2024-03-15/suplemento.pdf", failures[1].DocumentID)
	assert.Equal(t, document.FailureUnreadable, failures[1].Kind)
	assert.NotEmpty(t, failures[1].Detail)
}

func TestMatcher_IsExcluded(t *testing.T) {
	t.Run("ShouldApplyDefaultExclusions", func(t *testing.T) {
		m := NewMatcher()
		assert.True(t, m.IsExcluded("/corpus/_raw/page.txt", 10))
		assert.True(t, m.IsExcluded("/corpus/eluniverso/meta.json", 10))
		assert.False(t, m.IsExcluded("/corpus/eluniverso/page.txt", 10))
	})

	t.Run("ShouldHonorSizeLimit", func(t *testing.T) {
		m := NewMatcher(WithMaxSizeBytes(100))
		assert.True(t, m.IsExcluded("/corpus/huge.txt", 101))
		assert.False(t, m.IsExcluded("/corpus/small.txt", 100))
	})

	t.Run("ShouldRestrictToInclusions", func(t *testing.T) {
		m := NewMatcher(WithInclusions("*.txt"))
		assert.False(t, m.IsExcluded("/corpus/eluniverso/page.txt", 10))
		assert.True(t, m.IsExcluded("/corpus/eluniverso/editorial.md", 10))
	})
}
