package reviews

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/revtopics/pkg/revtopics"
	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
)

// Review is one raw review record
type Review struct {
	Text   string
	Rating *float64
	Entity string
}

// record is the JSONL line layout. Scraped dumps use either "text" or
// "review" for the body and "entity" or "title" for the reviewed item.
type record struct {
	Text   string          `json:"text"`
	Review string          `json:"review"`
	Rating json.RawMessage `json:"rating"`
	Entity string          `json:"entity"`
	Title  string          `json:"title"`
}

// LoadFromJSONL loads one review per non-blank line. A malformed line is
// logged and kept as an empty review, so the result always has one entry
// per non-blank line. Bodies are passed through StripHTML.
func LoadFromJSONL(path string) ([]Review, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var out []Review
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: malformed JSON at line %d in %s, keeping an empty review: %v", i+1, path, err)
			out = append(out, Review{})
			continue
		}

		r := Review{
			Text:   StripHTML(firstNonEmpty(rec.Text, rec.Review)),
			Entity: strings.TrimSpace(firstNonEmpty(rec.Entity, rec.Title)),
		}
		rating, err := parseRating(rec.Rating)
		if err != nil {
			log.Printf("Warning: ignoring rating at line %d in %s: %v", i+1, path, err)
		}
		r.Rating = rating
		out = append(out, r)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no reviews found in %s: %w", path, internalerr.ErrInvalidInput)
	}

	return out, nil
}

// parseRating accepts a JSON number or a numeric string. A missing, null
// or empty rating is nil without error.
func parseRating(raw json.RawMessage) (*float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("rating %s: %w", raw, internalerr.ErrInvalidInput)
	}
	return &v, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// StripHTML returns the text content of s with markup removed and entities
// decoded. Element boundaries become spaces so words on either side of a
// <br> stay apart. Script and style contents are dropped.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}

// Inputs converts reviews into engine inputs.
func Inputs(rs []Review) []revtopics.Input {
	out := make([]revtopics.Input, len(rs))
	for i, r := range rs {
		out[i] = revtopics.Input{Text: r.Text, Rating: r.Rating, Entity: r.Entity}
	}
	return out
}
