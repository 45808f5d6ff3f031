package aggregate

import (
	"math"
	"reflect"
	"testing"

	"github.com/cognicore/revtopics/pkg/revtopics/corpus"
	"github.com/cognicore/revtopics/pkg/revtopics/normalize"
	"github.com/cognicore/revtopics/pkg/revtopics/stoplist"
)

func TestTermFrequencyRanking(t *testing.T) {
	n := normalize.NewNormalizer(stoplist.NewManager([]string{"it"}))
	docs := corpus.NewDocuments([]string{
		"Great book, loved it!",
		"Terrible. Hated it.",
		"great GREAT book",
	}, n)
	vocab, dtm := corpus.Build(docs)

	got := TermFrequencyRanking(dtm, vocab)
	want := []TermCount{
		{ID: 0, Token: "great", Count: 3},
		{ID: 1, Token: "book", Count: 2},
		{ID: 2, Token: "loved", Count: 1},
		{ID: 3, Token: "terrible", Count: 1},
		{ID: 4, Token: "hated", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TermFrequencyRanking = %+v, want %+v", got, want)
	}

	top := TopTerms(got, 2)
	if len(top) != 2 || top[0].Token != "great" || top[1].Token != "book" {
		t.Errorf("TopTerms(2) = %+v", top)
	}
	if len(TopTerms(got, 100)) != 5 {
		t.Error("TopTerms should clamp to the ranking length")
	}
	if len(TopTerms(got, -1)) != 0 {
		t.Error("TopTerms with negative n should be empty")
	}
}

func TestTermFrequencyRankingNilVocabulary(t *testing.T) {
	_, dtm := corpus.Build([]corpus.Document{
		{ID: 0, Tokens: []string{"x", "y", "y"}},
	})
	got := TermFrequencyRanking(dtm, nil)
	want := []TermCount{{ID: 1, Count: 2}, {ID: 0, Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TermFrequencyRanking = %+v, want %+v", got, want)
	}
}

func TestTermFrequencyRankingEmpty(t *testing.T) {
	vocab, dtm := corpus.Build(nil)
	if got := TermFrequencyRanking(dtm, vocab); len(got) != 0 {
		t.Errorf("TermFrequencyRanking on empty corpus = %+v", got)
	}
}

type rated struct {
	entity string
	rating *float64
}

func ptr(v float64) *float64 { return &v }

func byEntity(r rated) string { return r.entity }

func ratingOf(r rated) (float64, bool) {
	if r.rating == nil {
		return 0, false
	}
	return *r.rating, true
}

func TestAverageBy(t *testing.T) {
	records := []rated{{"A", ptr(4)}, {"A", ptr(2)}, {"B", ptr(5)}}

	got := AverageBy(records, byEntity, ratingOf)
	want := []EntityMean{{Key: "A", Mean: 3, N: 2}, {Key: "B", Mean: 5, N: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AverageBy = %+v, want %+v", got, want)
	}
}

func TestAverageByMissingValues(t *testing.T) {
	records := []rated{
		{"Dune", ptr(4.5)},
		{"Emma", nil},
		{"Dune", nil},
		{"Emma", nil},
		{"Beloved", ptr(3)},
		{"Dune", ptr(3.5)},
	}

	got := AverageBy(records, byEntity, ratingOf)
	if len(got) != 2 {
		t.Fatalf("AverageBy = %+v, want 2 groups", got)
	}
	if got[0].Key != "Beloved" || got[1].Key != "Dune" {
		t.Errorf("keys = %q, %q; want Beloved, Dune", got[0].Key, got[1].Key)
	}
	if math.Abs(got[1].Mean-4) > 1e-12 || got[1].N != 2 {
		t.Errorf("Dune = %+v, want mean 4 over 2", got[1])
	}
}

func TestAverageByEmpty(t *testing.T) {
	if got := AverageBy(nil, byEntity, ratingOf); len(got) != 0 {
		t.Errorf("AverageBy(nil) = %+v", got)
	}
}
