package config

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
	"github.com/cognicore/revtopics/pkg/revtopics/lexicon"
	"github.com/cognicore/revtopics/pkg/revtopics/normalize"
	"github.com/cognicore/revtopics/pkg/revtopics/sentiment"
	"github.com/cognicore/revtopics/pkg/revtopics/stoplist"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	StoplistPath  string
	LexiconPath   string
	LexiconFormat string // FormatYAML (default) or FormatNRC
	Language      string // BCP 47 tag used for case folding
}

// Components holds all loaded configuration components
type Components struct {
	Normalizer *normalize.Normalizer
	Stoplist   *stoplist.Manager
	Lexicon    *lexicon.Lexicon
	Scorer     *sentiment.Scorer
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load stoplist
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = stoplist.NewManager(sl.Terms, stoplist.WithBuiltin(sl.Builtin))
	} else {
		comp.Stoplist = stoplist.NewManager([]string{})
	}

	tag := language.Und
	if l.Language != "" {
		t, err := language.Parse(l.Language)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %v: %w", l.Language, err, internalerr.ErrInvalidConfig)
		}
		tag = t
	}
	comp.Normalizer = normalize.NewNormalizer(comp.Stoplist, normalize.WithLanguage(tag))

	// Load emotion lexicon
	if l.LexiconPath != "" {
		var (
			lex *lexicon.Lexicon
			err error
		)
		switch l.LexiconFormat {
		case "", FormatYAML:
			lex, err = lexicon.LoadFromYAML(l.LexiconPath)
		case FormatNRC:
			lex, err = lexicon.LoadNRCFile(l.LexiconPath)
		default:
			return nil, fmt.Errorf("unknown lexicon format %q: %w", l.LexiconFormat, internalerr.ErrInvalidConfig)
		}
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexicon.New()
	}
	comp.Scorer = sentiment.NewScorer(comp.Lexicon)

	return comp, nil
}
