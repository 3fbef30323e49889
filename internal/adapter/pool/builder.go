package pool

import (
	"sort"
	"strings"

	"pfind/internal/domain"
)

// Build folds a scan result into a deduplicated search pool. AllFiles,
// every grouping, and the drawings sub-list are concatenated in that order
// and the first occurrence per case-insensitive path wins. No scoring or
// filtering happens here.
func Build(result *domain.ProjectScanResult) *domain.SearchPool {
	pool := &domain.SearchPool{}
	if result == nil {
		return pool
	}

	seen := make(map[string]struct{}, len(result.AllFiles))
	add := func(records []domain.FileRecord) {
		for _, r := range records {
			key := strings.ToLower(r.Path)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pool.Files = append(pool.Files, r)
		}
	}

	add(result.AllFiles)
	keys := make([]string, 0, len(result.Groupings))
	for key := range result.Groupings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		add(result.Groupings[key])
	}
	add(result.Drawings)

	return pool
}
