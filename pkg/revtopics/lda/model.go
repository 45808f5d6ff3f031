// Package lda estimates Latent Dirichlet Allocation by collapsed Gibbs
// sampling.
//
// The model keeps only sufficient statistics: the topic assignment of every
// token occurrence plus three count tables. Probabilities are computed from
// the counts when read. All randomness comes from one PCG stream seeded from
// Config.Seed and consumed in traversal order, so a given DTM, seed and
// number of sweeps always produce the same state.
package lda

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/cognicore/revtopics/pkg/revtopics/corpus"
	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
)

// Model is the sampler state.
type Model struct {
	cfg Config

	numDocs  int // D
	numTerms int // V

	// token occurrences in traversal order: by document, then term id,
	// each term repeated count times
	words    []int
	z        []int
	docStart []int // tokens of document d are [docStart[d], docStart[d+1])

	ndk []int // D×K document-topic counts, row-major
	nkw []int // K×V topic-term counts, row-major
	nk  []int // K topic totals

	rng   *rand.Rand
	probs []float64 // scratch, len K
	iter  int
}

// New validates cfg, expands dtm into token occurrences and assigns every
// occurrence a uniformly random initial topic.
//
// An empty vocabulary or a corpus without tokens is rejected before any
// sampling state is allocated.
func New(dtm *corpus.DTM, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dtm == nil {
		return nil, fmt.Errorf("nil dtm: %w", internalerr.ErrInvalidConfig)
	}
	numDocs, numTerms := dtm.Dims()
	if numTerms == 0 {
		return nil, fmt.Errorf("empty vocabulary: %w", internalerr.ErrInvalidConfig)
	}
	total := dtm.Total()
	if total == 0 {
		return nil, fmt.Errorf("corpus has no tokens: %w", internalerr.ErrInvalidConfig)
	}

	K := cfg.Topics
	m := &Model{
		cfg:      cfg,
		numDocs:  numDocs,
		numTerms: numTerms,
		words:    make([]int, 0, total),
		z:        make([]int, total),
		docStart: make([]int, numDocs+1),
		ndk:      make([]int, numDocs*K),
		nkw:      make([]int, K*numTerms),
		nk:       make([]int, K),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		probs:    make([]float64, K),
	}

	dtm.DoNonZero(func(d, t, count int) {
		for i := 0; i < count; i++ {
			m.words = append(m.words, t)
		}
		m.docStart[d+1] = len(m.words)
	})
	// documents without entries get an empty range
	for d := 1; d <= numDocs; d++ {
		if m.docStart[d] < m.docStart[d-1] {
			m.docStart[d] = m.docStart[d-1]
		}
	}

	for d := 0; d < numDocs; d++ {
		for i := m.docStart[d]; i < m.docStart[d+1]; i++ {
			k := m.rng.IntN(K)
			m.z[i] = k
			m.ndk[d*K+k]++
			m.nkw[k*numTerms+m.words[i]]++
			m.nk[k]++
		}
	}
	return m, nil
}

// Config returns the parameters the model was built with.
func (m *Model) Config() Config {
	return m.cfg
}

// Dims returns the number of documents, terms and topics.
func (m *Model) Dims() (docs, terms, topics int) {
	return m.numDocs, m.numTerms, m.cfg.Topics
}

// Iteration returns the number of completed sweeps.
func (m *Model) Iteration() int {
	return m.iter
}

// Sweep resamples the topic of every token occurrence once, in traversal
// order. Each update sees the counts left by all previous updates.
func (m *Model) Sweep() {
	K := m.cfg.Topics
	V := m.numTerms
	alpha, beta := m.cfg.Alpha, m.cfg.Beta
	vBeta := float64(V) * beta

	for d := 0; d < m.numDocs; d++ {
		row := m.ndk[d*K : (d+1)*K]
		for i := m.docStart[d]; i < m.docStart[d+1]; i++ {
			w := m.words[i]
			old := m.z[i]

			row[old]--
			m.nkw[old*V+w]--
			m.nk[old]--

			var sum float64
			for k := 0; k < K; k++ {
				p := (float64(row[k]) + alpha) *
					(float64(m.nkw[k*V+w]) + beta) /
					(float64(m.nk[k]) + vBeta)
				sum += p
				m.probs[k] = sum
			}
			k := draw(m.probs, m.rng.Float64()*sum)

			m.z[i] = k
			row[k]++
			m.nkw[k*V+w]++
			m.nk[k]++
		}
	}
	m.iter++
}

// draw returns the first index whose cumulative weight exceeds u.
func draw(cum []float64, u float64) int {
	for k, c := range cum {
		if u < c {
			return k
		}
	}
	return len(cum) - 1
}

// Train runs sweeps until the configured number of iterations has been
// completed. ctx is checked between sweeps; a sweep in progress always
// finishes, so the counts stay consistent when Train returns early.
func (m *Model) Train(ctx context.Context) error {
	for m.iter < m.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("lda stopped after %d of %d sweeps: %w", m.iter, m.cfg.Iterations, err)
		}
		m.Sweep()
	}
	return nil
}

// CheckInvariants verifies that the count tables agree with the
// assignments: every document-topic row sums to the document length,
// every topic-term row sums to the topic total, and recounting the
// assignments reproduces all three tables.
func (m *Model) CheckInvariants() error {
	K := m.cfg.Topics
	V := m.numTerms

	ndk := make([]int, len(m.ndk))
	nkw := make([]int, len(m.nkw))
	nk := make([]int, K)
	for d := 0; d < m.numDocs; d++ {
		for i := m.docStart[d]; i < m.docStart[d+1]; i++ {
			k := m.z[i]
			if k < 0 || k >= K {
				return fmt.Errorf("token %d has topic %d outside [0, %d)", i, k, K)
			}
			ndk[d*K+k]++
			nkw[k*V+m.words[i]]++
			nk[k]++
		}
	}

	for d := 0; d < m.numDocs; d++ {
		var sum int
		for k := 0; k < K; k++ {
			if m.ndk[d*K+k] != ndk[d*K+k] {
				return fmt.Errorf("doc %d topic %d: count %d, assignments give %d", d, k, m.ndk[d*K+k], ndk[d*K+k])
			}
			sum += m.ndk[d*K+k]
		}
		if n := m.docStart[d+1] - m.docStart[d]; sum != n {
			return fmt.Errorf("doc %d: topic counts sum to %d, document has %d tokens", d, sum, n)
		}
	}
	for k := 0; k < K; k++ {
		var sum int
		for w := 0; w < V; w++ {
			if m.nkw[k*V+w] != nkw[k*V+w] {
				return fmt.Errorf("topic %d term %d: count %d, assignments give %d", k, w, m.nkw[k*V+w], nkw[k*V+w])
			}
			sum += m.nkw[k*V+w]
		}
		if sum != m.nk[k] || m.nk[k] != nk[k] {
			return fmt.Errorf("topic %d: term counts sum to %d, total is %d, assignments give %d", k, sum, m.nk[k], nk[k])
		}
	}
	return nil
}

// Assignments returns a copy of the topic of every token occurrence,
// grouped by document.
func (m *Model) Assignments() [][]int {
	out := make([][]int, m.numDocs)
	for d := range out {
		out[d] = append([]int(nil), m.z[m.docStart[d]:m.docStart[d+1]]...)
	}
	return out
}
