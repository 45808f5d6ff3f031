package lexicon

import (
	"fmt"
	"strings"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
)

// Category is one emotion or sentiment label of the closed lexicon set.
type Category string

const (
	Anger        Category = "anger"
	Anticipation Category = "anticipation"
	Disgust      Category = "disgust"
	Fear         Category = "fear"
	Joy          Category = "joy"
	Sadness      Category = "sadness"
	Surprise     Category = "surprise"
	Trust        Category = "trust"
	Negative     Category = "negative"
	Positive     Category = "positive"
)

// NumCategories is the size of the closed category set.
const NumCategories = 10

// Categories lists every category in canonical order: the eight emotions
// followed by the two polarities.
var Categories = [NumCategories]Category{
	Anger, Anticipation, Disgust, Fear, Joy,
	Sadness, Surprise, Trust, Negative, Positive,
}

var categoryIndex = func() map[Category]int {
	idx := make(map[Category]int, NumCategories)
	for i, c := range Categories {
		idx[c] = i
	}
	return idx
}()

// ParseCategory maps a label onto the closed set. Matching ignores case
// and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryIndex[c]; !ok {
		return "", fmt.Errorf("unknown category %q: %w", s, internalerr.ErrInvalidInput)
	}
	return c, nil
}

// Index returns the canonical position of c, or -1 if c is not a member of
// the closed set.
func (c Category) Index() int {
	if i, ok := categoryIndex[c]; ok {
		return i
	}
	return -1
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	return c.Index() >= 0
}
