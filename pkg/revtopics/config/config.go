package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
	"github.com/cognicore/revtopics/pkg/revtopics/lda"
)

// Lexicon file formats accepted by the loader.
const (
	FormatYAML = "yaml"
	FormatNRC  = "nrc"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms   []string `yaml:"terms"`
	Builtin string   `yaml:"builtin"` // optional ISO 639-1 code for the bundled list
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Run is the configuration of one analysis run.
type Run struct {
	Stoplist      string `yaml:"stoplist"`
	Lexicon       string `yaml:"lexicon"`
	LexiconFormat string `yaml:"lexicon_format"`
	Language      string `yaml:"language"`
	Workers       int    `yaml:"workers"` // 0 uses GOMAXPROCS
	Topics        Topics `yaml:"topics"`
}

// Topics configures the topic model.
type Topics struct {
	K          int     `yaml:"k"`
	Alpha      float64 `yaml:"alpha"` // 0 means 50/k
	Beta       float64 `yaml:"beta"`
	Iterations int     `yaml:"iterations"`
	Seed       uint64  `yaml:"seed"`
	TopTerms   int     `yaml:"top_terms"`
}

// DefaultRun returns a run with no lexicon files and the default topic
// model parameters.
func DefaultRun() Run {
	def := lda.DefaultConfig()
	return Run{
		LexiconFormat: FormatYAML,
		Topics: Topics{
			K:          def.Topics,
			Beta:       def.Beta,
			Iterations: def.Iterations,
			Seed:       def.Seed,
			TopTerms:   def.TopTerms,
		},
	}
}

// LoadRun reads a run file. Keys missing from the file keep their
// DefaultRun values.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	run := DefaultRun()
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := run.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &run, nil
}

// LDA converts the topic section into a sampler configuration.
func (r Run) LDA() lda.Config {
	alpha := r.Topics.Alpha
	if alpha == 0 && r.Topics.K > 0 {
		alpha = 50.0 / float64(r.Topics.K)
	}
	return lda.Config{
		Topics:     r.Topics.K,
		Alpha:      alpha,
		Beta:       r.Topics.Beta,
		Iterations: r.Topics.Iterations,
		Seed:       r.Topics.Seed,
		TopTerms:   r.Topics.TopTerms,
	}
}

// Validate checks the run for values no component would accept.
func (r Run) Validate() error {
	switch r.LexiconFormat {
	case "", FormatYAML, FormatNRC:
	default:
		return fmt.Errorf("unknown lexicon_format %q: %w", r.LexiconFormat, internalerr.ErrInvalidConfig)
	}
	if r.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d: %w", r.Workers, internalerr.ErrInvalidConfig)
	}
	if err := r.LDA().Validate(); err != nil {
		return fmt.Errorf("topics: %w", err)
	}
	return nil
}

// Loader returns a Loader for the files named in the run.
func (r Run) Loader() *Loader {
	return &Loader{
		StoplistPath:  r.Stoplist,
		LexiconPath:   r.Lexicon,
		LexiconFormat: r.LexiconFormat,
		Language:      r.Language,
	}
}
