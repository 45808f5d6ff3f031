package stoplist

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/bbalet/stopwords"
)

// Manager holds the stopword set used by the normalizer.
//
// Words are matched case-insensitively. An optional built-in list for an
// ISO 639-1 language code can back the explicit set; a word is a stopword
// if either source contains it.
type Manager struct {
	mu      sync.RWMutex
	stops   map[string]struct{}
	builtin string
}

// Option configures a Manager.
type Option func(*Manager)

// WithBuiltin enables the built-in stopword list for the given language
// code (e.g. "en", "fr"). An empty code disables it.
func WithBuiltin(lang string) Option {
	return func(m *Manager) {
		m.builtin = strings.ToLower(strings.TrimSpace(lang))
	}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string, opts ...Option) *Manager {
	m := &Manager{stops: make(map[string]struct{}, len(initialStops))}
	for _, s := range initialStops {
		m.add(s)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	token = strings.ToLower(token)
	if token == "" {
		return false
	}

	m.mu.RLock()
	_, ok := m.stops[token]
	lang := m.builtin
	m.mu.RUnlock()

	if ok {
		return true
	}
	if lang == "" {
		return false
	}
	return isBuiltinStop(token, lang)
}

// isBuiltinStop asks the bundled list whether token is a stopword.
// CleanString blanks out stopwords and keeps everything else. Its word
// pattern skips digits, so "a4" would be read as the stopword "a"; tokens
// containing a digit never match the bundled list.
func isBuiltinStop(token, lang string) bool {
	if strings.IndexFunc(token, unicode.IsDigit) >= 0 {
		return false
	}
	return strings.TrimSpace(stopwords.CleanString(token, lang, false)) == ""
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(token)
}

func (m *Manager) add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.stops[token] = struct{}{}
}

// Remove removes a token from the explicit stoplist. Words coming from the
// built-in list cannot be removed individually.
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stops, strings.ToLower(token))
}

// All returns the explicit stopwords in ascending order.
func (m *Manager) All() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of explicit stopwords.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stops)
}

// Builtin returns the language code of the built-in list, or "".
func (m *Manager) Builtin() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.builtin
}
