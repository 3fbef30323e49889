package analyzer

import "strings"

// AliasExpander maps semantic query terms to alternative literal strings.
// Terms absent from the table but ending in "s" (length > 3) pick up their
// singular form as a second alternative.
type AliasExpander struct {
	table map[string][]string
}

// NewAliasExpander creates an expander over the given term-alias table.
func NewAliasExpander(termAliases map[string][]string) *AliasExpander {
	table := make(map[string][]string, len(termAliases))
	for key, alts := range termAliases {
		lowered := make([]string, len(alts))
		for i, a := range alts {
			lowered[i] = strings.ToLower(a)
		}
		table[strings.ToLower(key)] = lowered
	}
	return &AliasExpander{table: table}
}

// Expand returns all literal alternatives for a term, the term itself
// always first. Expansion is per-term, applied before scoring.
func (e *AliasExpander) Expand(term string) []string {
	term = strings.ToLower(term)
	if alts, ok := e.table[term]; ok {
		out := make([]string, 0, len(alts)+1)
		out = append(out, term)
		for _, a := range alts {
			if a != term {
				out = append(out, a)
			}
		}
		return out
	}
	if len(term) > 3 && strings.HasSuffix(term, "s") {
		return []string{term, strings.TrimSuffix(term, "s")}
	}
	return []string{term}
}
