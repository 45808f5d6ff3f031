package lda

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/revtopics/pkg/revtopics/corpus"
)

// TermWeight is a term with its probability under a topic.
type TermWeight struct {
	Term  int     `json:"term"`
	Token string  `json:"token,omitempty"`
	Prob  float64 `json:"prob"`
}

// Topic is the reported summary of one topic.
type Topic struct {
	ID    int          `json:"id"`
	Terms []TermWeight `json:"terms"`
}

// TopicTermDistribution returns (n_kw + β) / (n_k + Vβ) for every term.
func (m *Model) TopicTermDistribution(k int) []float64 {
	m.checkTopic(k)
	V := m.numTerms
	denom := float64(m.nk[k]) + float64(V)*m.cfg.Beta
	out := make([]float64, V)
	for w := 0; w < V; w++ {
		out[w] = (float64(m.nkw[k*V+w]) + m.cfg.Beta) / denom
	}
	return out
}

// DocumentTopicDistribution returns (n_dk + α) / (n_d + Kα) for every
// topic. An empty document gets the uniform distribution.
func (m *Model) DocumentTopicDistribution(d int) []float64 {
	m.checkDoc(d)
	K := m.cfg.Topics
	n := m.docStart[d+1] - m.docStart[d]
	denom := float64(n) + float64(K)*m.cfg.Alpha
	out := make([]float64, K)
	for k := 0; k < K; k++ {
		out[k] = (float64(m.ndk[d*K+k]) + m.cfg.Alpha) / denom
	}
	return out
}

// TopTerms returns the n most probable terms of topic k. Equal
// probabilities are ordered by lower term id. n is clamped to the
// vocabulary size.
func (m *Model) TopTerms(k, n int) []TermWeight {
	phi := m.TopicTermDistribution(k)
	if n > len(phi) {
		n = len(phi)
	}
	if n <= 0 {
		return nil
	}

	ids := make([]int, len(phi))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return phi[ids[i]] > phi[ids[j]]
	})

	out := make([]TermWeight, n)
	for i := 0; i < n; i++ {
		out[i] = TermWeight{Term: ids[i], Prob: phi[ids[i]]}
	}
	return out
}

// Topics summarizes every topic with its n top terms, resolving term ids
// through vocab. vocab may be nil.
func (m *Model) Topics(vocab *corpus.Vocabulary, n int) []Topic {
	out := make([]Topic, m.cfg.Topics)
	for k := range out {
		terms := m.TopTerms(k, n)
		if vocab != nil {
			for i := range terms {
				terms[i].Token = vocab.Token(terms[i].Term)
			}
		}
		out[k] = Topic{ID: k, Terms: terms}
	}
	return out
}

// DominantTopic returns the topic with the most tokens in document d,
// lowest topic id on ties, or -1 for a document without tokens.
func (m *Model) DominantTopic(d int) int {
	m.checkDoc(d)
	K := m.cfg.Topics
	if m.docStart[d+1] == m.docStart[d] {
		return -1
	}
	best := 0
	row := m.ndk[d*K : (d+1)*K]
	for k := 1; k < K; k++ {
		if row[k] > row[best] {
			best = k
		}
	}
	return best
}

// Phi returns the K×V topic-term probability matrix.
func (m *Model) Phi() *mat.Dense {
	K, V := m.cfg.Topics, m.numTerms
	phi := mat.NewDense(K, V, nil)
	for k := 0; k < K; k++ {
		phi.SetRow(k, m.TopicTermDistribution(k))
	}
	return phi
}

// Theta returns the D×K document-topic probability matrix. It returns nil
// for a model without documents.
func (m *Model) Theta() *mat.Dense {
	if m.numDocs == 0 {
		return nil
	}
	theta := mat.NewDense(m.numDocs, m.cfg.Topics, nil)
	for d := 0; d < m.numDocs; d++ {
		theta.SetRow(d, m.DocumentTopicDistribution(d))
	}
	return theta
}

// LogLikelihood returns log p(w | z) with Φ integrated out:
//
//	K·(lnΓ(Vβ) − V·lnΓ(β)) + Σ_k [Σ_w lnΓ(n_kw + β) − lnΓ(n_k + Vβ)]
//
// It rises as sampling mixes and is useful for monitoring a run.
func (m *Model) LogLikelihood() float64 {
	K, V := m.cfg.Topics, m.numTerms
	beta := m.cfg.Beta
	vBeta := float64(V) * beta

	lgBeta := lgamma(beta)
	ll := float64(K) * (lgamma(vBeta) - float64(V)*lgBeta)
	for k := 0; k < K; k++ {
		for w := 0; w < V; w++ {
			if c := m.nkw[k*V+w]; c > 0 {
				ll += lgamma(float64(c)+beta)
			} else {
				ll += lgBeta
			}
		}
		ll -= lgamma(float64(m.nk[k]) + vBeta)
	}
	return ll
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

func (m *Model) checkTopic(k int) {
	if k < 0 || k >= m.cfg.Topics {
		panic(fmt.Sprintf("topic %d out of range [0, %d)", k, m.cfg.Topics))
	}
}

func (m *Model) checkDoc(d int) {
	if d < 0 || d >= m.numDocs {
		panic(fmt.Sprintf("document %d out of range [0, %d)", d, m.numDocs))
	}
}
