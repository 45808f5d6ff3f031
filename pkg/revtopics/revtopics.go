// Package revtopics runs the review analysis pipeline: normalization, the
// document-term matrix, lexicon sentiment, term ranking, rating means and
// an LDA topic model, collected into one Report.
package revtopics

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/revtopics/pkg/revtopics/aggregate"
	"github.com/cognicore/revtopics/pkg/revtopics/corpus"
	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
	"github.com/cognicore/revtopics/pkg/revtopics/lda"
	"github.com/cognicore/revtopics/pkg/revtopics/normalize"
	"github.com/cognicore/revtopics/pkg/revtopics/sentiment"
	"github.com/cognicore/revtopics/pkg/revtopics/store"
)

// Report is the result of one Analyze call.
type Report = store.Report

// Input is one review record.
type Input struct {
	Text   string
	Rating *float64 // nil when the record has no rating
	Entity string   // grouping key for rating means, e.g. the product title
}

// Engine is the analysis facade
type Engine struct {
	normalizer *normalize.Normalizer
	scorer     *sentiment.Scorer
	topics     lda.Config
	workers    int
	rankSize   int
	store      store.Store
	now        func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine
type Options struct {
	Normalizer *normalize.Normalizer // nil: no stopwords
	Scorer     *sentiment.Scorer     // nil: empty lexicon
	Topics     lda.Config            // zero value: lda.DefaultConfig()
	Workers    int                   // 0 uses GOMAXPROCS
	RankSize   int                   // terms kept in the ranking, 0 keeps all
	Store      store.Store           // optional; reports are saved when set
	Now        func() time.Time      // optional clock for report timestamps
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	e := &Engine{
		normalizer: opts.Normalizer,
		scorer:     opts.Scorer,
		topics:     opts.Topics,
		workers:    opts.Workers,
		rankSize:   opts.RankSize,
		store:      opts.Store,
		now:        opts.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if e.normalizer == nil {
		e.normalizer = normalize.NewNormalizer(nil)
	}
	if e.scorer == nil {
		e.scorer = sentiment.NewScorer(nil)
	}
	if e.topics == (lda.Config{}) {
		e.topics = lda.DefaultConfig()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Close releases the store, if any
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Analyze runs the whole pipeline over inputs. Inputs keep their order:
// document d of every per-document output is inputs[d].
//
// Sentiment is scored on the raw text while topics and rankings use the
// normalized tokens. An empty vocabulary or a corpus without tokens makes
// the topic model fail with internalerr.ErrInvalidConfig.
func (e *Engine) Analyze(ctx context.Context, inputs []Input) (Report, error) {
	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}

	docs, err := corpus.NormalizeAll(ctx, texts, e.normalizer, e.workers)
	if err != nil {
		return Report{}, fmt.Errorf("normalize: %w", err)
	}
	vocab, dtm := corpus.Build(docs)

	profiles, err := e.scorer.ScoreAll(ctx, texts, e.workers)
	if err != nil {
		return Report{}, fmt.Errorf("sentiment: %w", err)
	}

	model, err := lda.New(dtm, e.topics)
	if err != nil {
		return Report{}, fmt.Errorf("topic model: %w", err)
	}
	if err := model.Train(ctx); err != nil {
		return Report{}, fmt.Errorf("topic model: %w", err)
	}

	rows, cols := dtm.Dims()
	r := Report{
		CreatedAt:     e.now().UTC(),
		Documents:     rows,
		Vocabulary:    cols,
		Tokens:        dtm.Total(),
		Sentiment:     sentiment.Distribution(sentiment.Totals(profiles)),
		TopicConfig:   e.topics,
		Topics:        model.Topics(vocab, e.topics.TopTerms),
		LogLikelihood: model.LogLikelihood(),
		Ratings: aggregate.AverageBy(inputs,
			func(in Input) string { return in.Entity },
			func(in Input) (float64, bool) {
				if in.Rating == nil {
					return 0, false
				}
				return *in.Rating, true
			}),
	}

	ranking := aggregate.TermFrequencyRanking(dtm, vocab)
	if e.rankSize > 0 {
		ranking = aggregate.TopTerms(ranking, e.rankSize)
	}
	r.Terms = ranking

	r.DominantTopics = make([]int, rows)
	for d := range r.DominantTopics {
		r.DominantTopics[d] = model.DominantTopic(d)
	}

	if r.ID, err = e.newID(r.CreatedAt); err != nil {
		return Report{}, err
	}

	if e.store != nil {
		if err := e.store.SaveReport(ctx, r); err != nil {
			return Report{}, fmt.Errorf("save report: %w", err)
		}
	}
	return r, nil
}

func (e *Engine) newID(t time.Time) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), e.entropy)
	if err != nil {
		return "", fmt.Errorf("report id: %w", err)
	}
	return id.String(), nil
}

// Report returns a stored report by id.
func (e *Engine) Report(ctx context.Context, id string) (Report, error) {
	if e.store == nil {
		return Report{}, fmt.Errorf("no store configured: %w", internalerr.ErrStoreUnavailable)
	}
	return e.store.GetReport(ctx, id)
}

// Reports lists stored reports, newest first.
func (e *Engine) Reports(ctx context.Context, limit int) ([]store.Summary, error) {
	if e.store == nil {
		return nil, fmt.Errorf("no store configured: %w", internalerr.ErrStoreUnavailable)
	}
	return e.store.ListReports(ctx, limit)
}
