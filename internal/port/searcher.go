package port

import "pfind/internal/domain"

// Searcher ranks a pool's files against a raw query string.
type Searcher interface {
	// Search returns matching files, most relevant first. A blank query
	// returns an empty slice. It never returns an error for a malformed
	// query; bad regex patterns simply match nothing.
	Search(pool *domain.SearchPool, query string) []domain.ScoredFile

	// Parse exposes the parsed form of a query so callers can detect
	// path overrides and type filters without running a search.
	Parse(query string) domain.ParsedQuery
}
