package corpus

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/revtopics/pkg/revtopics/normalize"
)

// Document is one input record after normalization. ID is the position of
// the record in the input.
type Document struct {
	ID     int
	Text   string
	Tokens []string
}

// Len returns the number of tokens, with repetition.
func (d Document) Len() int {
	return len(d.Tokens)
}

// NewDocuments normalizes texts one after another.
func NewDocuments(texts []string, n *normalize.Normalizer) []Document {
	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: i, Text: text, Tokens: n.Normalize(text)}
	}
	return docs
}

// NormalizeAll normalizes texts on up to workers goroutines. Each document
// lands in its own slot, so the result is in input order regardless of
// scheduling. workers <= 0 uses GOMAXPROCS.
func NormalizeAll(ctx context.Context, texts []string, n *normalize.Normalizer, workers int) ([]Document, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	docs := make([]Document, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = Document{ID: i, Text: text, Tokens: n.Normalize(text)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
