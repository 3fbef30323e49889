package search

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"pfind/config"
	"pfind/internal/adapter/analyzer"
	"pfind/internal/adapter/fs"
	"pfind/internal/domain"
	"pfind/internal/port"
)

var _ port.Searcher = (*Engine)(nil)

// Engine scores a search pool against parsed queries. One parameterized
// engine serves both the full search surface and the reduced quick-open
// surface; feature flags select the capabilities.
type Engine struct {
	parser    *Parser
	tokenizer *analyzer.Tokenizer
	expander  *analyzer.AliasExpander
	weights   config.SearchConfig
	features  config.FeatureFlags
	now       func() time.Time
}

// NewEngine builds an engine from injected configuration tables.
func NewEngine(cfg *config.Config) *Engine {
	knownExts := cfg.Scan.AllowedTypes
	if len(knownExts) == 0 {
		knownExts = fs.DefaultExtensions
	}
	return &Engine{
		parser:    NewParser(cfg.Aliases.TypeAliases, knownExts, cfg.Features),
		tokenizer: analyzer.NewTokenizer(cfg.Aliases.StopWords),
		expander:  analyzer.NewAliasExpander(cfg.Aliases.TermAliases),
		weights:   cfg.Search,
		features:  cfg.Features,
		now:       time.Now,
	}
}

// Parser exposes the engine's parser for override-path detection.
func (e *Engine) Parser() *Parser { return e.parser }

// SetClock replaces the engine clock; tests pin it for latest-mode decay.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Parse parses a raw query string.
func (e *Engine) Parse(query string) domain.ParsedQuery {
	return e.parser.Parse(query)
}

// Search evaluates a raw query against the pool and returns ranked hits.
// A blank query (after stripping "latest") matches nothing.
func (e *Engine) Search(pool *domain.SearchPool, query string) []domain.ScoredFile {
	return e.Evaluate(pool, e.parser.Parse(query))
}

// Evaluate ranks the pool against an already-parsed query.
func (e *Engine) Evaluate(pool *domain.SearchPool, q domain.ParsedQuery) []domain.ScoredFile {
	if pool == nil || q.Blank() {
		return nil
	}

	candidates := pool.Files
	if len(q.AllowedExtensions) > 0 {
		candidates = filterByExtension(candidates, q.AllowedExtensions)
	}

	var results []domain.ScoredFile
	if q.RegexPattern != "" {
		results = e.regexMatch(candidates, q.RegexPattern)
	} else {
		results = e.clauseMatch(candidates, q.TextClauses)
	}

	if q.LatestRequested {
		e.applyLatestBoost(results)
	}
	e.order(results, q.LatestRequested)

	if q.LatestRequested && e.weights.LatestSingleResult && len(results) > 1 {
		results = results[:1]
	}
	return results
}

func filterByExtension(files []domain.FileRecord, allowed map[string]struct{}) []domain.FileRecord {
	out := make([]domain.FileRecord, 0, len(files))
	for _, f := range files {
		if _, ok := allowed[f.Extension]; ok {
			out = append(out, f)
		}
	}
	return out
}

// regexMatch gives every matching file the same flat score; an invalid
// pattern matches nothing (the user may still be mid-edit).
func (e *Engine) regexMatch(files []domain.FileRecord, pattern string) []domain.ScoredFile {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil
	}
	var results []domain.ScoredFile
	for _, f := range files {
		if re.MatchString(f.SearchableText()) {
			results = append(results, domain.ScoredFile{File: f, Score: e.weights.RegexScore})
		}
	}
	return results
}

// clauseMatch scores each file against every clause. Clauses AND across
// the query: one failed clause excludes the file. With no text clauses at
// all (pure type filter) every candidate survives at score zero.
func (e *Engine) clauseMatch(files []domain.FileRecord, clauses []domain.Clause) []domain.ScoredFile {
	results := make([]domain.ScoredFile, 0, len(files))
	for _, f := range files {
		total := 0.0
		matched := true
		for _, clause := range clauses {
			score, ok := e.scoreClause(f, clause)
			if !ok {
				matched = false
				break
			}
			total += score
		}
		if matched {
			results = append(results, domain.ScoredFile{File: f, Score: total})
		}
	}
	return results
}

// scoreClause evaluates each option of an OR-group in isolation and keeps
// the best-scoring one. An option matches if its verbatim text appears in
// the file's searchable text (phrase bonus) or enough of its terms score:
// all of them at two terms or fewer, all but one otherwise.
func (e *Engine) scoreClause(f domain.FileRecord, clause domain.Clause) (float64, bool) {
	searchable := strings.ToLower(f.SearchableText())
	best := 0.0
	matched := false

	for _, option := range clause.Options {
		score := 0.0
		hits := 0

		terms := e.tokenizer.Terms(option)
		for _, term := range terms {
			if s := e.scoreTerm(f, term); s > 0 {
				score += s
				hits++
			}
		}

		phrase := strings.Contains(searchable, strings.ToLower(option))
		if phrase {
			score += e.weights.PhraseBonus
		}

		required := len(terms)
		if required > 2 {
			required--
		}
		if phrase || (len(terms) > 0 && hits >= required) {
			matched = true
			if score > best {
				best = score
			}
		}
	}
	return best, matched
}

// scoreTerm walks the weight ladder for one term. Alias alternatives are
// tried in place of the term; only the single best field match counts —
// field scores are never summed.
func (e *Engine) scoreTerm(f domain.FileRecord, term string) float64 {
	name := strings.ToLower(f.FileName)
	rel := strings.ToLower(f.RelativePath)
	folder := strings.ToLower(f.Subfolder)
	category := strings.ToLower(f.Category)

	best := 0.0
	for _, alt := range e.expander.Expand(term) {
		var s float64
		switch {
		case strings.HasPrefix(name, alt):
			s = e.weights.NamePrefixWeight
		case strings.Contains(name, alt):
			s = e.weights.NameSubstrWeight
		case strings.Contains(rel, alt):
			s = e.weights.PathSubstrWeight
		case folder != "" && strings.Contains(folder, alt):
			s = e.weights.FolderSubstrWeight
		case category != "" && strings.Contains(category, alt):
			s = e.weights.CategoryWeight
		case len(alt) >= 3 && isSubsequence(alt, name):
			s = e.weights.SubsequenceWeight
		case e.features.Fuzzy && len(alt) >= 4:
			if fuzzyMatch(alt, baseName(name), e.features.FuzzyThreshold) {
				s = e.features.FuzzyWeight
			}
		}
		if s > best {
			best = s
		}
	}
	return best
}

// isSubsequence reports whether every rune of term appears in text in
// order, not necessarily contiguously.
func isSubsequence(term, text string) bool {
	ti := 0
	termRunes := []rune(term)
	for _, r := range text {
		if ti < len(termRunes) && r == termRunes[ti] {
			ti++
		}
	}
	return ti == len(termRunes)
}

func baseName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// applyLatestBoost adds a linearly decaying recency contribution: full
// boost at zero age, nothing at or beyond the window boundary.
func (e *Engine) applyLatestBoost(results []domain.ScoredFile) {
	window := time.Duration(e.weights.LatestWindowDays) * 24 * time.Hour
	if window <= 0 || e.weights.LatestBoostMax <= 0 {
		return
	}
	now := e.now()
	for i := range results {
		age := now.Sub(results[i].File.LastModified)
		if age < 0 {
			age = 0
		}
		if age >= window {
			continue
		}
		results[i].Score += e.weights.LatestBoostMax * (1 - float64(age)/float64(window))
	}
}

// order sorts results. Latest mode puts modification time first; the
// default puts score first. File name ascending is the final tie-break in
// both modes.
func (e *Engine) order(results []domain.ScoredFile, latest bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if latest {
			if !a.File.LastModified.Equal(b.File.LastModified) {
				return a.File.LastModified.After(b.File.LastModified)
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		} else {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if !a.File.LastModified.Equal(b.File.LastModified) {
				return a.File.LastModified.After(b.File.LastModified)
			}
		}
		return strings.ToLower(a.File.FileName) < strings.ToLower(b.File.FileName)
	})
}
