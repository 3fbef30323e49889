package analyzer

import "strings"

// Tokenizer splits a query option into search terms: quoted substrings are
// kept whole, unquoted runs split on whitespace, stop words are dropped.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a Tokenizer with the given stop-word list.
func NewTokenizer(stopWords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// Terms extracts the search terms of one clause option. Terms come back
// lowercased, in query order.
func (t *Tokenizer) Terms(option string) []string {
	var terms []string
	for _, raw := range splitQuoted(option) {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if _, stop := t.stopwords[term]; stop {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// splitQuoted splits on whitespace while treating double-quoted spans as
// single tokens. An unterminated quote runs to the end of the string.
func splitQuoted(s string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				flush()
			}
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
