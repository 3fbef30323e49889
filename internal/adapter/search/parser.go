package search

import (
	"os"
	"regexp"
	"strings"

	"pfind/config"
	"pfind/internal/domain"
)

var (
	latestToken = regexp.MustCompile(`(?i)(^|\s)latest($|\s)`)
	orSplitter  = regexp.MustCompile(`(?i)\s+or\s+`)
)

// Parser turns a raw query string into a ParsedQuery. Parsing is a pure
// function of the string except for the directory probe behind the
// "<dir> :: filter" override form, which is injectable for tests.
type Parser struct {
	typeAliases map[string][]string
	knownExts   map[string]struct{}
	features    config.FeatureFlags
	dirExists   func(string) bool
}

// NewParser builds a parser over the injected type-alias table and the
// set of extensions the scanner is configured to accept.
func NewParser(typeAliases map[string][]string, knownExts []string, features config.FeatureFlags) *Parser {
	aliases := make(map[string][]string, len(typeAliases))
	for key, exts := range typeAliases {
		lowered := make([]string, len(exts))
		for i, e := range exts {
			lowered[i] = strings.ToLower(strings.TrimPrefix(e, "."))
		}
		aliases[strings.ToLower(key)] = lowered
	}
	known := make(map[string]struct{}, len(knownExts))
	for _, e := range knownExts {
		known[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return &Parser{
		typeAliases: aliases,
		knownExts:   known,
		features:    features,
		dirExists: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && info.IsDir()
		},
	}
}

// SetDirProbe replaces the directory existence check. Tests use this to
// parse override queries without touching the filesystem.
func (p *Parser) SetDirProbe(probe func(string) bool) {
	p.dirExists = probe
}

// Parse parses a raw query string.
func (p *Parser) Parse(query string) domain.ParsedQuery {
	parsed := domain.ParsedQuery{
		AllowedExtensions: make(map[string]struct{}),
	}

	if p.features.Latest && latestToken.MatchString(query) {
		parsed.LatestRequested = true
		query = latestToken.ReplaceAllString(query, " ")
	}

	parts := strings.Split(query, "::")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// A bare leading part that names an existing directory is a path
	// override: the remaining parts filter an ad hoc scan of that
	// directory instead of the primary project.
	if len(parts) > 1 && parts[0] != "" && p.dirExists(parts[0]) {
		parsed.OverridePath = parts[0]
		parts = parts[1:]
	}

	for _, part := range parts {
		if part == "" {
			continue
		}

		// A regex part wins outright: remaining parts are ignored and
		// clause scoring is bypassed.
		if p.features.Regex {
			if pattern, ok := regexPart(part); ok {
				parsed.RegexPattern = pattern
				break
			}
		}

		options := splitOrGroup(part)
		if p.features.TypeFilters {
			if exts, ok := p.resolveTypeFilter(options); ok {
				for _, e := range exts {
					parsed.AllowedExtensions[e] = struct{}{}
				}
				continue
			}
		}
		parsed.TextClauses = append(parsed.TextClauses, domain.Clause{Options: options})
	}

	return parsed
}

// regexPart recognizes the two regex escapes: a "re:" prefix or a
// /pattern/ wrapper.
func regexPart(part string) (string, bool) {
	lower := strings.ToLower(part)
	if strings.HasPrefix(lower, "re:") {
		return strings.TrimSpace(part[3:]), true
	}
	if len(part) >= 2 && strings.HasPrefix(part, "/") && strings.HasSuffix(part, "/") {
		return part[1 : len(part)-1], true
	}
	return "", false
}

// splitOrGroup splits a part into its OR alternatives: pipe-separated or
// joined by the literal word "or".
func splitOrGroup(part string) []string {
	var raw []string
	if strings.Contains(part, "|") {
		raw = strings.Split(part, "|")
	} else {
		raw = orSplitter.Split(part, -1)
	}
	options := make([]string, 0, len(raw))
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o != "" {
			options = append(options, o)
		}
	}
	return options
}

// resolveTypeFilter reports whether every option in a group names a file
// type. One unresolvable option demotes the whole group to a text clause.
func (p *Parser) resolveTypeFilter(options []string) ([]string, bool) {
	if len(options) == 0 {
		return nil, false
	}
	var exts []string
	for _, option := range options {
		token := strings.ToLower(strings.TrimPrefix(option, "."))
		if aliased, ok := p.typeAliases[token]; ok {
			exts = append(exts, aliased...)
			continue
		}
		if _, ok := p.knownExts[token]; ok {
			exts = append(exts, token)
			continue
		}
		return nil, false
	}
	return exts, true
}
