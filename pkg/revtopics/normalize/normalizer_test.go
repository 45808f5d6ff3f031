package normalize

import (
	"reflect"
	"sync"
	"testing"

	"golang.org/x/text/language"

	"github.com/cognicore/revtopics/pkg/revtopics/stoplist"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(stoplist.NewManager([]string{"it"}))

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"review with punctuation", "Great book, loved it!", []string{"great", "book", "loved"}},
		{"stopword only after punctuation", "Terrible. Hated it.", []string{"terrible", "hated"}},
		{"case folding", "great GREAT book", []string{"great", "great", "book"}},
		{"standalone digits removed", "Read it 3 times in 2019", []string{"read", "times", "in"}},
		{"mixed alphanumerics kept", "mp3 audiobook", []string{"mp3", "audiobook"}},
		{"whitespace collapse", "  slow \t\n  start  ", []string{"slow", "start"}},
		{"apostrophe joins", "Don't buy", []string{"dont", "buy"}},
		{"hyphen joins", "A page-turner", []string{"a", "pageturner"}},
		{"punctuation without spaces does not merge", "end.Start,middle", []string{"end", "start", "middle"}},
		{"trailing apostrophe", "readers' choice", []string{"readers", "choice"}},
		{"decimal rating dropped", "4.5 stars", []string{"stars"}},
		{"symbols", "$20 well spent :)", []string{"well", "spent"}},
		{"empty", "", nil},
		{"only noise", "!!! 42 ...", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNilStops(t *testing.T) {
	n := NewNormalizer(nil)
	got := n.Normalize("It is what it is")
	want := []string{"it", "is", "what", "it", "is"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeUnicode(t *testing.T) {
	n := NewNormalizer(nil)

	// decomposed "é" composes to the same token as the precomposed form
	decomposed := n.Normalize("Cafe\u0301")
	composed := n.Normalize("Caf\u00e9")
	if !reflect.DeepEqual(decomposed, composed) {
		t.Errorf("NFC mismatch: %q vs %q", decomposed, composed)
	}

	got := n.Normalize("ÜBER «großartig»")
	want := []string{"über", "großartig"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeLanguageOption(t *testing.T) {
	n := NewNormalizer(nil, WithLanguage(language.Turkish))
	got := n.Normalize("KIRMIZI")
	want := []string{"kırmızı"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer(stoplist.NewManager([]string{"the"}))
	text := "The plot twists, the characters, THE ending: all superb!"

	first := n.Normalize(text)
	for i := 0; i < 10; i++ {
		if got := n.Normalize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	n := NewNormalizer(stoplist.NewManager([]string{"it"}))
	want := []string{"great", "book", "loved"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := n.Normalize("Great book, loved it!"); !reflect.DeepEqual(got, want) {
					t.Errorf("Normalize = %q, want %q", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}
