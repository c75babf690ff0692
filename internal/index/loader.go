package index

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"sro-assistant/internal/pkg/extract"
)

// Document is one corpus file with its extracted text. Text is empty when
// extraction failed; the index decides whether such files are kept.
type Document struct {
	Name string
	Path string
	Text string
}

// CorpusLoader enumerates the configured document directories and extracts
// text from every supported file.
type CorpusLoader struct {
	dirs []string
	log  *zap.Logger
}

func NewCorpusLoader(dirs []string, log *zap.Logger) *CorpusLoader {
	return &CorpusLoader{dirs: dirs, log: log}
}

// Load walks each directory (non-recursive) and extracts text per file.
// A corrupt file degrades to empty text; it never aborts the load.
func (l *CorpusLoader) Load(ctx context.Context) []Document {
	var docs []Document
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			l.log.Warn("document directory unavailable", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				return docs
			}
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !extract.Supported(path) {
				continue
			}
			text, err := extract.FromFile(path)
			if err != nil {
				l.log.Warn("document extraction failed", zap.String("path", path), zap.Error(err))
				text = ""
			}
			docs = append(docs, Document{
				Name: entry.Name(),
				Path: path,
				Text: text,
			})
		}
	}
	return docs
}
