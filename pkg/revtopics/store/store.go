package store

import (
	"context"
	"time"

	"github.com/cognicore/revtopics/pkg/revtopics/aggregate"
	"github.com/cognicore/revtopics/pkg/revtopics/lda"
	"github.com/cognicore/revtopics/pkg/revtopics/sentiment"
)

// Store persists analysis reports.
//
// GetReport returns internalerr.ErrNotFound for an unknown id. Every method
// called after Close returns internalerr.ErrStoreUnavailable.
type Store interface {
	Close() error

	SaveReport(ctx context.Context, r Report) error
	GetReport(ctx context.Context, id string) (Report, error)
	ListReports(ctx context.Context, limit int) ([]Summary, error)
}

// Report is the result of one analysis run, in the shape handed to
// rendering consumers.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Documents  int `json:"documents"`
	Vocabulary int `json:"vocabulary"`
	Tokens     int `json:"tokens"`

	Terms          []aggregate.TermCount     `json:"terms"`
	Sentiment      []sentiment.CategoryShare `json:"sentiment"`
	TopicConfig    lda.Config                `json:"topic_config"`
	Topics         []lda.Topic               `json:"topics"`
	DominantTopics []int                     `json:"dominant_topics"` // per document, -1 if empty
	LogLikelihood  float64                   `json:"log_likelihood"`
	Ratings        []aggregate.EntityMean    `json:"ratings"`
}

// Summary is the listing view of a stored report.
type Summary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
	Tokens     int       `json:"tokens"`
}

// Summarize returns the listing view of r.
func (r Report) Summarize() Summary {
	return Summary{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Documents:  r.Documents,
		Vocabulary: r.Vocabulary,
		Tokens:     r.Tokens,
	}
}
