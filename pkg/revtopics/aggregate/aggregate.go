// Package aggregate reduces corpus artifacts into ranked or grouped
// summaries for reporting.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cognicore/revtopics/pkg/revtopics/corpus"
)

// TermCount is a term with its corpus-wide count.
type TermCount struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
	Count int    `json:"count"`
}

// TermFrequencyRanking sums each DTM column and returns every term ordered
// by descending count, ties by ascending term id. vocab may be nil, in
// which case tokens are left empty.
func TermFrequencyRanking(dtm *corpus.DTM, vocab *corpus.Vocabulary) []TermCount {
	sums := dtm.ColSums()
	out := make([]TermCount, len(sums))
	for id, c := range sums {
		out[id] = TermCount{ID: id, Count: c}
		if vocab != nil {
			out[id].Token = vocab.Token(id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// TopTerms returns the first n entries of a ranking.
func TopTerms(ranking []TermCount, n int) []TermCount {
	if n < 0 {
		n = 0
	}
	if n > len(ranking) {
		n = len(ranking)
	}
	return ranking[:n]
}

// EntityMean is the mean of the values observed for one key.
type EntityMean struct {
	Key  string  `json:"key"`
	Mean float64 `json:"mean"`
	N    int     `json:"n"`
}

// AverageBy groups the present values of records by key and returns the
// mean of each group, sorted by key.
//
// value reports false for a record without a usable value; such records
// are skipped. A key whose records all lack a value does not appear in the
// result, and keys are only ever taken from records.
func AverageBy[R any](records []R, key func(R) string, value func(R) (float64, bool)) []EntityMean {
	groups := make(map[string][]float64)
	for _, r := range records {
		v, ok := value(r)
		if !ok {
			continue
		}
		k := key(r)
		groups[k] = append(groups[k], v)
	}

	out := make([]EntityMean, 0, len(groups))
	for k, vals := range groups {
		out = append(out, EntityMean{Key: k, Mean: stat.Mean(vals, nil), N: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
