package index

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubEmbedder returns a preset vector per exact input text and counts calls.
type stubEmbedder struct {
	vectors   map[string][]float32
	dimension int
	calls     int
	err       error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return v, nil
}

func (s *stubEmbedder) Dimension() int { return s.dimension }

func writeDOCX(t *testing.T, path, text string) {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(doc, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body>
</w:document>`, text)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newTestIndex(t *testing.T, emb *stubEmbedder, files map[string]string) *Index {
	t.Helper()

	dir := t.TempDir()
	for name, text := range files {
		writeDOCX(t, filepath.Join(dir, name), text)
	}
	loader := NewCorpusLoader([]string{dir}, zap.NewNop())
	return New(emb, loader, zap.NewNop())
}

func TestSearchOrdersByScore(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"приём в организацию": {1, 0},
			"устав и положения":   {0, 1},
			"вопрос о приёме":     {0.9, 0.1},
		},
	}
	idx := newTestIndex(t, emb, map[string]string{
		"rules.docx":   "приём в организацию",
		"charter.docx": "устав и положения",
	})
	require.NoError(t, idx.Build(context.Background()))
	require.Equal(t, 2, idx.Size())

	results, err := idx.Search(context.Background(), "вопрос о приёме", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "rules.docx", results[0].Name)
	assert.Equal(t, "charter.docx", results[1].Name)
	assert.Greater(t, results[0].Score, results[1].Score)

	// score = 1 - squared L2 distance
	assert.InDelta(t, 1-(0.01+0.01), results[0].Score, 1e-6)
	assert.InDelta(t, 1-(0.81+0.81), results[1].Score, 1e-6)
}

func TestSearchExactDocumentTextRanksFirst(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 2,
		vectors: map[string][]float32{
			"правила приёма":    {0.3, 0.8},
			"устав организации": {0.7, 0.1},
		},
	}
	idx := newTestIndex(t, emb, map[string]string{
		"rules.docx":   "правила приёма",
		"charter.docx": "устав организации",
	})
	require.NoError(t, idx.Build(context.Background()))

	// Querying with a document's own text is a zero-distance match, so that
	// document must come back first with the maximal score.
	results, err := idx.Search(context.Background(), "устав организации", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "charter.docx", results[0].Name)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Less(t, results[1].Score, results[0].Score)
}

func TestCancelledRebuildKeepsLiveSnapshot(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 1,
		vectors:   map[string][]float32{"текст": {1}},
	}
	idx := newTestIndex(t, emb, map[string]string{"a.docx": "текст"})
	require.NoError(t, idx.Build(context.Background()))
	require.Equal(t, 1, idx.Size())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	err := idx.Build(cancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, idx.Size())
	results, err := idx.Search(context.Background(), "текст", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.docx", results[0].Name)
}

func TestSearchClampsTopK(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 1,
		vectors: map[string][]float32{
			"a": {0},
			"b": {1},
			"q": {0},
		},
	}
	idx := newTestIndex(t, emb, map[string]string{
		"a.docx": "a",
		"b.docx": "b",
	})
	require.NoError(t, idx.Build(context.Background()))

	results, err := idx.Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = idx.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.docx", results[0].Name)
}

func TestSearchTieKeepsInsertionOrder(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 1,
		vectors: map[string][]float32{
			"same": {0.5},
			"q":    {0.5},
		},
	}
	idx := newTestIndex(t, emb, map[string]string{
		"a.docx": "same",
		"b.docx": "same",
	})
	require.NoError(t, idx.Build(context.Background()))

	results, err := idx.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.docx", results[0].Name)
	assert.Equal(t, "b.docx", results[1].Name)
}

func TestSearchEmptyIndexSkipsEmbedding(t *testing.T) {
	emb := &stubEmbedder{dimension: 1, vectors: map[string][]float32{}}
	idx := New(emb, NewCorpusLoader(nil, zap.NewNop()), zap.NewNop())
	require.NoError(t, idx.Build(context.Background()))

	results, err := idx.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, emb.calls)
}

func TestSearchZeroTopK(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 1,
		vectors:   map[string][]float32{"a": {0}},
	}
	idx := newTestIndex(t, emb, map[string]string{"a.docx": "a"})
	require.NoError(t, idx.Build(context.Background()))

	results, err := idx.Search(context.Background(), "a", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuildFailsOnEmbedderError(t *testing.T) {
	emb := &stubEmbedder{dimension: 1, err: errors.New("embedding backend down")}
	idx := newTestIndex(t, emb, map[string]string{"a.docx": "a"})

	err := idx.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, idx.Size())
}

func TestBuildRejectsWrongDimension(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 3,
		vectors:   map[string][]float32{"a": {1, 0}},
	}
	idx := newTestIndex(t, emb, map[string]string{"a.docx": "a"})

	err := idx.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestLoaderSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeDOCX(t, filepath.Join(dir, "kept.docx"), "содержимое")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skipped.txt"), []byte("plain"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	loader := NewCorpusLoader([]string{dir}, zap.NewNop())
	docs := loader.Load(context.Background())

	require.Len(t, docs, 1)
	assert.Equal(t, "kept.docx", docs[0].Name)
	assert.Equal(t, "содержимое", docs[0].Text)
}

func TestLoaderToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeDOCX(t, filepath.Join(dir, "good.docx"), "текст")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.docx"), []byte("not a zip"), 0o644))

	loader := NewCorpusLoader([]string{dir}, zap.NewNop())
	docs := loader.Load(context.Background())
	require.Len(t, docs, 2)

	byName := map[string]string{}
	for _, d := range docs {
		byName[d.Name] = d.Text
	}
	assert.Equal(t, "текст", byName["good.docx"])
	assert.Equal(t, "", byName["bad.docx"])
}

func TestBuildDropsDocsWithoutText(t *testing.T) {
	emb := &stubEmbedder{
		dimension: 1,
		vectors:   map[string][]float32{"текст": {1}},
	}
	dir := t.TempDir()
	writeDOCX(t, filepath.Join(dir, "good.docx"), "текст")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.docx"), []byte("not a zip"), 0o644))

	idx := New(emb, NewCorpusLoader([]string{dir}, zap.NewNop()), zap.NewNop())
	require.NoError(t, idx.Build(context.Background()))
	assert.Equal(t, 1, idx.Size())
}

func TestLoaderMissingDirectory(t *testing.T) {
	loader := NewCorpusLoader([]string{filepath.Join(t.TempDir(), "absent")}, zap.NewNop())
	docs := loader.Load(context.Background())
	assert.Empty(t, docs)
}
