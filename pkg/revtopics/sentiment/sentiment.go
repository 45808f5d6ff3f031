package sentiment

import (
	"context"
	"runtime"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/revtopics/pkg/revtopics/lexicon"
)

// Profile counts lexicon hits per category, indexed in canonical category
// order (see lexicon.Categories).
type Profile [lexicon.NumCategories]int

// Count returns the count for cat, or 0 if cat is not a known category.
func (p Profile) Count(cat lexicon.Category) int {
	i := cat.Index()
	if i < 0 {
		return 0
	}
	return p[i]
}

// Total returns the sum over all categories. A token that hits several
// categories contributes once to each of them.
func (p Profile) Total() int {
	var n int
	for _, c := range p {
		n += c
	}
	return n
}

// Map returns the profile keyed by category, including zero counts.
func (p Profile) Map() map[lexicon.Category]int {
	m := make(map[lexicon.Category]int, lexicon.NumCategories)
	for i, c := range lexicon.Categories {
		m[c] = p[i]
	}
	return m
}

// Scorer assigns sentiment profiles using a fixed lexicon.
type Scorer struct {
	lex *lexicon.Lexicon
}

// NewScorer creates a scorer over lex. A nil lexicon scores every text as
// all-zero.
func NewScorer(lex *lexicon.Lexicon) *Scorer {
	if lex == nil {
		lex = lexicon.New()
	}
	return &Scorer{lex: lex}
}

// Lexicon returns the lexicon used for lookups.
func (s *Scorer) Lexicon() *lexicon.Lexicon {
	return s.lex
}

// Score tokenizes the raw text on its own, independent of the stopword
// normalizer, and counts category hits for every token occurrence.
func (s *Scorer) Score(text string) Profile {
	var p Profile
	for _, word := range words(text) {
		s.lex.Each(word, func(idx int) {
			p[idx]++
		})
	}
	return p
}

// ScoreAll scores texts on up to workers goroutines. Profiles are returned
// in input order. workers <= 0 uses GOMAXPROCS.
func (s *Scorer) ScoreAll(ctx context.Context, texts []string, workers int) ([]Profile, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]Profile, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = s.Score(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// words lowercases text and splits it on every rune that is neither a
// letter nor a digit. Apostrophes between letters stay inside the word so
// contractions can match lexicon entries.
func words(text string) []string {
	text = strings.ToLower(text)
	runes := []rune(text)

	var out []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case isApostrophe(r) && b.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			b.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()
	return out
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// Totals sums profiles by category.
func Totals(profiles []Profile) Profile {
	var t Profile
	for _, p := range profiles {
		for i, c := range p {
			t[i] += c
		}
	}
	return t
}

// CategoryShare is one row of a sentiment distribution.
type CategoryShare struct {
	Category lexicon.Category `json:"category"`
	Count    int              `json:"count"`
	Share    float64          `json:"share"`
}

// Distribution returns per-category totals with their share of the overall
// mass, in canonical order. If the profile is all zero every share is 0.
func Distribution(t Profile) []CategoryShare {
	counts := make([]float64, lexicon.NumCategories)
	for i, c := range t {
		counts[i] = float64(c)
	}
	shares := make([]float64, lexicon.NumCategories)
	if sum := floats.Sum(counts); sum > 0 {
		floats.ScaleTo(shares, 1/sum, counts)
	}

	out := make([]CategoryShare, lexicon.NumCategories)
	for i, c := range lexicon.Categories {
		out[i] = CategoryShare{Category: c, Count: t[i], Share: shares[i]}
	}
	return out
}
