package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// StopChecker reports whether a token must be discarded.
type StopChecker interface {
	IsStop(token string) bool
}

// Normalizer turns raw review text into clean tokens.
//
// The pipeline is: NFC composition, lowercasing, punctuation stripping,
// whitespace split, removal of all-digit tokens, stopword filtering.
// A Normalizer holds no mutable state and may be shared between goroutines.
type Normalizer struct {
	stops StopChecker
	lang  language.Tag
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLanguage selects the casing rules used for lowercasing.
func WithLanguage(tag language.Tag) Option {
	return func(n *Normalizer) {
		n.lang = tag
	}
}

// NewNormalizer creates a normalizer filtering tokens through stops.
// A nil stops keeps every token.
func NewNormalizer(stops StopChecker, opts ...Option) *Normalizer {
	n := &Normalizer{stops: stops, lang: language.Und}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the token sequence of text. Empty or all-noise input
// yields an empty sequence.
func (n *Normalizer) Normalize(text string) []string {
	if text == "" {
		return nil
	}

	// cases.Caser keeps state between calls, so each call gets its own.
	lower := cases.Lower(n.lang).String(norm.NFC.String(text))
	runes := []rune(lower)

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := n.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			current.WriteRune(r)
		case isJoiner(r) && i > 0 && i+1 < len(runes) && isWordRune(runes[i-1]) && isWordRune(runes[i+1]):
			// intra-word mark ("don't", "e-book"): drop it, keep the word whole
		default:
			// whitespace, or punctuation that would otherwise glue two words
			flush()
		}
	}
	flush()

	return tokens
}

// processToken drops standalone numbers and stopwords.
func (n *Normalizer) processToken(word string) string {
	if isNumericOnly(word) {
		return ""
	}
	if n.stops != nil && n.stops.IsStop(word) {
		return ""
	}
	return word
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// isJoiner matches apostrophes, dashes and connector punctuation.
func isJoiner(r rune) bool {
	switch r {
	case '\'', '’', 'ʼ':
		return true
	}
	return unicode.Is(unicode.Pd, r) || unicode.Is(unicode.Pc, r)
}

// isNumericOnly returns true if the token contains only digits.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
