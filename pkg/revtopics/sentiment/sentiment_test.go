package sentiment

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cognicore/revtopics/pkg/revtopics/lexicon"
)

func testLexicon() *lexicon.Lexicon {
	lex := lexicon.New()
	lex.Add("great", lexicon.Joy, lexicon.Positive)
	lex.Add("loved", lexicon.Joy, lexicon.Positive)
	lex.Add("terrible", lexicon.Anger, lexicon.Disgust, lexicon.Fear, lexicon.Negative)
	lex.Add("hated", lexicon.Anger, lexicon.Negative)
	lex.Add("don't", lexicon.Negative)
	return lex
}

func TestScoreCountsEveryCategory(t *testing.T) {
	s := NewScorer(testLexicon())

	p := s.Score("Terrible. Hated it.")
	want := map[lexicon.Category]int{
		lexicon.Anger:    2,
		lexicon.Disgust:  1,
		lexicon.Fear:     1,
		lexicon.Negative: 2,
	}
	for _, c := range lexicon.Categories {
		if got := p.Count(c); got != want[c] {
			t.Errorf("Count(%s) = %d, want %d", c, got, want[c])
		}
	}
	if p.Total() != 6 {
		t.Errorf("Total() = %d, want 6", p.Total())
	}
}

func TestScoreRepeatedTokens(t *testing.T) {
	s := NewScorer(testLexicon())

	p := s.Score("great GREAT book")
	if p.Count(lexicon.Joy) != 2 || p.Count(lexicon.Positive) != 2 {
		t.Errorf("joy=%d positive=%d, want 2 and 2", p.Count(lexicon.Joy), p.Count(lexicon.Positive))
	}
}

func TestScoreUsesRawText(t *testing.T) {
	lex := lexicon.New()
	lex.Add("it", lexicon.Trust)
	s := NewScorer(lex)

	// "it" would be removed by a stoplist but sentiment sees the raw text
	if got := s.Score("Loved it!").Count(lexicon.Trust); got != 1 {
		t.Errorf("Count(trust) = %d, want 1", got)
	}
}

func TestScoreMissesAndEmpty(t *testing.T) {
	s := NewScorer(testLexicon())

	if p := s.Score("the cover is blue"); p.Total() != 0 {
		t.Errorf("Total() = %d, want 0", p.Total())
	}
	if p := s.Score(""); p.Total() != 0 {
		t.Errorf("Total() = %d, want 0 for empty text", p.Total())
	}
	if p := NewScorer(nil).Score("great"); p.Total() != 0 {
		t.Errorf("nil lexicon Total() = %d, want 0", p.Total())
	}
}

func TestScoreContraction(t *testing.T) {
	s := NewScorer(testLexicon())

	for _, text := range []string{"I don't know", "I don’t know"} {
		if got := s.Score(text).Count(lexicon.Negative); got != 1 {
			t.Errorf("Score(%q) negative = %d, want 1", text, got)
		}
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Great book, loved it!", []string{"great", "book", "loved", "it"}},
		{"end.Start", []string{"end", "start"}},
		{"don't", []string{"don't"}},
		{"'quoted'", []string{"quoted"}},
		{"5 stars", []string{"5", "stars"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := words(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("words(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTotalsPreservesMass(t *testing.T) {
	s := NewScorer(testLexicon())
	texts := []string{"Great book, loved it!", "Terrible. Hated it.", "great GREAT book", ""}

	profiles := make([]Profile, len(texts))
	sum := 0
	for i, text := range texts {
		profiles[i] = s.Score(text)
		sum += profiles[i].Total()
	}

	total := Totals(profiles)
	if total.Total() != sum {
		t.Errorf("Totals().Total() = %d, want %d", total.Total(), sum)
	}
	if total.Count(lexicon.Joy) != 4 {
		t.Errorf("joy = %d, want 4", total.Count(lexicon.Joy))
	}
}

func TestScoreAllOrder(t *testing.T) {
	s := NewScorer(testLexicon())
	var texts []string
	for i := 0; i < 25; i++ {
		texts = append(texts, "Great book, loved it!", "Terrible. Hated it.", "meh")
	}

	got, err := s.ScoreAll(context.Background(), texts, 3)
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("len = %d, want %d", len(got), len(texts))
	}
	for i, text := range texts {
		if got[i] != s.Score(text) {
			t.Fatalf("profile %d differs from sequential score", i)
		}
	}
}

func TestScoreAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScorer(testLexicon()).ScoreAll(ctx, []string{"great"}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ScoreAll error = %v, want context.Canceled", err)
	}
}

func TestDistribution(t *testing.T) {
	var p Profile
	p[lexicon.Joy.Index()] = 3
	p[lexicon.Positive.Index()] = 1

	dist := Distribution(p)
	if len(dist) != lexicon.NumCategories {
		t.Fatalf("len = %d, want %d", len(dist), lexicon.NumCategories)
	}

	var sum float64
	for i, row := range dist {
		if row.Category != lexicon.Categories[i] {
			t.Errorf("row %d category = %s, want %s", i, row.Category, lexicon.Categories[i])
		}
		sum += row.Share
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("shares sum to %v, want 1", sum)
	}
	if joy := dist[lexicon.Joy.Index()]; joy.Count != 3 || math.Abs(joy.Share-0.75) > 1e-12 {
		t.Errorf("joy = %+v, want count 3 share 0.75", joy)
	}
}

func TestDistributionAllZero(t *testing.T) {
	for _, row := range Distribution(Profile{}) {
		if row.Count != 0 || row.Share != 0 {
			t.Errorf("%s = %+v, want zero", row.Category, row)
		}
	}
}

func TestProfileMap(t *testing.T) {
	p := NewScorer(testLexicon()).Score("loved")
	m := p.Map()
	if len(m) != lexicon.NumCategories {
		t.Errorf("len(Map()) = %d, want %d", len(m), lexicon.NumCategories)
	}
	if m[lexicon.Joy] != 1 || m[lexicon.Anger] != 0 {
		t.Errorf("Map() = %v", m)
	}
}
