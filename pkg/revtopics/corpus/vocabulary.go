package corpus

import "fmt"

// Vocabulary maintains the bi-directional mapping between tokens and dense
// term ids in [0, Len()). Ids are handed out in first-seen order, so the
// column order of a DTM is reproducible for a given document order.
//
// A Vocabulary grows while a corpus is being built and is frozen once the
// DTM exists; adding to a frozen vocabulary panics.
type Vocabulary struct {
	tokens []string
	ids    map[string]int
	frozen bool
}

// NewVocabulary creates an empty, growable vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		tokens: make([]string, 0),
		ids:    make(map[string]int),
	}
}

// Add returns the id of token, assigning the next unused id if the token is
// new.
func (v *Vocabulary) Add(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	if v.frozen {
		panic(fmt.Sprintf("vocabulary is frozen: cannot add %q", token))
	}
	id := len(v.tokens)
	v.tokens = append(v.tokens, token)
	v.ids[token] = id
	return id
}

// ID returns the id of token. If token is not in the vocabulary, it returns
// a negative value.
func (v *Vocabulary) ID(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return -1
}

// Token returns the token with the given id.
func (v *Vocabulary) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", id, len(v.tokens)))
	}
	return v.tokens[id]
}

// Len returns the vocabulary size.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns a copy of the tokens in id order.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Freeze stops the vocabulary from growing.
func (v *Vocabulary) Freeze() {
	v.frozen = true
}

// Frozen reports whether Freeze has been called.
func (v *Vocabulary) Frozen() bool {
	return v.frozen
}
