package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
)

// Lexicon maps words to the emotion/sentiment categories they evoke.
//
// A word may belong to several categories at once ("hate" is both anger
// and negative). Lookups are case-insensitive. The lexicon is built once
// and then only read, so concurrent lookups need no locking.
type Lexicon struct {
	// word -> bitmask over Categories
	words map[string]uint16
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{words: make(map[string]uint16)}
}

// Add records that word belongs to the given categories. Repeated calls
// merge; invalid categories are ignored.
func (l *Lexicon) Add(word string, cats ...Category) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	mask := l.words[word]
	for _, c := range cats {
		if i := c.Index(); i >= 0 {
			mask |= 1 << uint(i)
		}
	}
	if mask != 0 {
		l.words[word] = mask
	}
}

// Categories returns the categories of word in canonical order, or nil if
// the word is not in the lexicon.
func (l *Lexicon) Categories(word string) []Category {
	mask, ok := l.words[strings.ToLower(word)]
	if !ok {
		return nil
	}
	out := make([]Category, 0, 2)
	for i, c := range Categories {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, c)
		}
	}
	return out
}

// Each calls fn with the canonical index of every category of word.
// word must already be lowercase. It does nothing for unknown words and
// does not allocate.
func (l *Lexicon) Each(word string, fn func(idx int)) {
	mask, ok := l.words[word]
	if !ok {
		return
	}
	for i := 0; i < NumCategories; i++ {
		if mask&(1<<uint(i)) != 0 {
			fn(i)
		}
	}
}

// Contains reports whether word has at least one category.
func (l *Lexicon) Contains(word string) bool {
	_, ok := l.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int {
	return len(l.words)
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	s := Stats{Words: len(l.words)}
	for _, mask := range l.words {
		for i := 0; i < NumCategories; i++ {
			if mask&(1<<uint(i)) != 0 {
				s.PerCategory[i]++
				s.Associations++
			}
		}
	}
	return s
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Words        int                // distinct words
	Associations int                // word/category pairs
	PerCategory  [NumCategories]int // words per category, canonical order
}

// LoadFromYAML loads a lexicon from a YAML file.
//
// Expected format:
//
//	entries:
//	  - word: abandon
//	    categories: [fear, negative, sadness]
//	  - word: delight
//	    categories: [joy, positive]
//
// Unknown category labels are rejected.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Entries []struct {
			Word       string   `yaml:"word"`
			Categories []string `yaml:"categories"`
		} `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range doc.Entries {
		cats := make([]Category, 0, len(entry.Categories))
		for _, raw := range entry.Categories {
			c, err := ParseCategory(raw)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", entry.Word, err)
			}
			cats = append(cats, c)
		}
		lex.Add(entry.Word, cats...)
	}
	return lex, nil
}

// LoadNRCFile opens path and parses it with LoadNRC.
func LoadNRCFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadNRC(f)
}

// LoadNRC parses the word-level NRC Emotion Lexicon layout: one
// "word<TAB>category<TAB>flag" association per line, where only flag 1
// records membership. Blank lines and lines starting with '#' are skipped.
func LoadNRC(r io.Reader) (*Lexicon, error) {
	lex := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated fields, got %d: %w",
				lineNo, len(parts), internalerr.ErrInvalidInput)
		}

		switch strings.TrimSpace(parts[2]) {
		case "0":
			continue
		case "1":
		default:
			return nil, fmt.Errorf("line %d: flag %q is not 0 or 1: %w",
				lineNo, parts[2], internalerr.ErrInvalidInput)
		}

		c, err := ParseCategory(parts[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		lex.Add(parts[0], c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lex, nil
}
