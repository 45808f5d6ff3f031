package lda

import (
	"fmt"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
)

// Config holds the sampler parameters.
type Config struct {
	Topics     int     `json:"topics"`     // K
	Alpha      float64 `json:"alpha"`      // document-topic smoothing
	Beta       float64 `json:"beta"`       // topic-term smoothing
	Iterations int     `json:"iterations"` // full sweeps run by Train
	Seed       uint64  `json:"seed"`
	TopTerms   int     `json:"top_terms"` // terms reported per topic by Topics
}

// DefaultConfig returns the usual Gibbs defaults: 5 topics, α = 50/K,
// β = 0.1 and 2000 sweeps.
func DefaultConfig() Config {
	return Config{
		Topics:     5,
		Alpha:      50.0 / 5,
		Beta:       0.1,
		Iterations: 2000,
		Seed:       1234,
		TopTerms:   10,
	}
}

// Validate checks that the parameters define a proper model.
func (c Config) Validate() error {
	if c.Topics <= 0 {
		return fmt.Errorf("topics must be positive, got %d: %w", c.Topics, internalerr.ErrInvalidConfig)
	}
	if !(c.Alpha > 0) {
		return fmt.Errorf("alpha must be positive, got %v: %w", c.Alpha, internalerr.ErrInvalidConfig)
	}
	if !(c.Beta > 0) {
		return fmt.Errorf("beta must be positive, got %v: %w", c.Beta, internalerr.ErrInvalidConfig)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d: %w", c.Iterations, internalerr.ErrInvalidConfig)
	}
	if c.TopTerms < 0 {
		return fmt.Errorf("top_terms must not be negative, got %d: %w", c.TopTerms, internalerr.ErrInvalidConfig)
	}
	return nil
}
