package corpus

import (
	"fmt"
	"sort"

	"github.com/e-gun/sparse"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
)

// Entry is one non-zero cell of a DTM.
type Entry struct {
	Doc   int
	Term  int
	Count int
}

// DTM is a sparse document-term count matrix. Rows are documents in input
// order, columns are term ids. Only non-zero cells are stored, sorted by
// document and then by term.
type DTM struct {
	rows    int
	cols    int
	entries []Entry
	rowPtr  []int // entries[rowPtr[d]:rowPtr[d+1]] belong to document d
}

// Build assigns term ids in first-seen order over docs and counts every
// (document, term) pair. The returned vocabulary is frozen.
//
// Zero documents give a 0x0 matrix; documents without tokens give all-zero
// rows, never missing ones.
func Build(docs []Document) (*Vocabulary, *DTM) {
	vocab := NewVocabulary()
	m := &DTM{
		rows:   len(docs),
		rowPtr: make([]int, len(docs)+1),
	}

	counts := make(map[int]int)
	for d, doc := range docs {
		clear(counts)
		for _, tok := range doc.Tokens {
			counts[vocab.Add(tok)]++
		}

		start := len(m.entries)
		for term, c := range counts {
			m.entries = append(m.entries, Entry{Doc: d, Term: term, Count: c})
		}
		row := m.entries[start:]
		sort.Slice(row, func(i, j int) bool { return row[i].Term < row[j].Term })
		m.rowPtr[d+1] = len(m.entries)
	}

	vocab.Freeze()
	m.cols = vocab.Len()
	return vocab, m
}

// Dims returns the number of documents and terms.
func (m *DTM) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored non-zero cells.
func (m *DTM) NNZ() int {
	return len(m.entries)
}

// At returns the count of term t in document d.
func (m *DTM) At(d, t int) int {
	if d < 0 || d >= m.rows || t < 0 || t >= m.cols {
		panic(fmt.Sprintf("cell (%d, %d) out of range (%d, %d)", d, t, m.rows, m.cols))
	}
	row := m.entries[m.rowPtr[d]:m.rowPtr[d+1]]
	i := sort.Search(len(row), func(i int) bool { return row[i].Term >= t })
	if i < len(row) && row[i].Term == t {
		return row[i].Count
	}
	return 0
}

// Row returns a copy of the non-zero cells of document d in term order.
func (m *DTM) Row(d int) []Entry {
	if d < 0 || d >= m.rows {
		panic(fmt.Sprintf("row %d out of range [0, %d)", d, m.rows))
	}
	row := m.entries[m.rowPtr[d]:m.rowPtr[d+1]]
	out := make([]Entry, len(row))
	copy(out, row)
	return out
}

// Entries returns a copy of all non-zero cells in (document, term) order.
func (m *DTM) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// DoNonZero calls fn for every non-zero cell in (document, term) order.
func (m *DTM) DoNonZero(fn func(d, t, count int)) {
	for _, e := range m.entries {
		fn(e.Doc, e.Term, e.Count)
	}
}

// RowSums returns the token count of each document.
func (m *DTM) RowSums() []int {
	sums := make([]int, m.rows)
	for _, e := range m.entries {
		sums[e.Doc] += e.Count
	}
	return sums
}

// ColSums returns the corpus-wide count of each term.
func (m *DTM) ColSums() []int {
	sums := make([]int, m.cols)
	for _, e := range m.entries {
		sums[e.Term] += e.Count
	}
	return sums
}

// Total returns the number of token occurrences in the corpus.
func (m *DTM) Total() int {
	var n int
	for _, e := range m.entries {
		n += e.Count
	}
	return n
}

// Matrix exports the counts as a CSR matrix usable with gonum. A matrix
// with a zero dimension cannot be represented and is rejected.
func (m *DTM) Matrix() (*sparse.CSR, error) {
	if m.rows == 0 || m.cols == 0 {
		return nil, fmt.Errorf("dtm is %dx%d: %w", m.rows, m.cols, internalerr.ErrInvalidInput)
	}
	ia := make([]int, len(m.entries))
	ja := make([]int, len(m.entries))
	data := make([]float64, len(m.entries))
	for i, e := range m.entries {
		ia[i] = e.Doc
		ja[i] = e.Term
		data[i] = float64(e.Count)
	}
	return sparse.NewCOO(m.rows, m.cols, ia, ja, data).ToCSR(), nil
}
