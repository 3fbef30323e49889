package domain

import (
	"fmt"
	"strings"
	"time"
)

// FileRecord is one file found by a scan. Records are immutable once
// created; a new scan replaces them wholesale.
type FileRecord struct {
	Path         string    `json:"path"`
	FileName     string    `json:"file_name"`
	Extension    string    `json:"extension"` // lowercase, no leading dot
	RelativePath string    `json:"relative_path"`
	Subfolder    string    `json:"subfolder"`
	Category     string    `json:"category"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// SizeDisplay formats SizeBytes for human consumption.
func (f FileRecord) SizeDisplay() string {
	const unit = 1024
	if f.SizeBytes < unit {
		return fmt.Sprintf("%d B", f.SizeBytes)
	}
	div, exp := int64(unit), 0
	for n := f.SizeBytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(f.SizeBytes)/float64(div), "KMGTPE"[exp])
}

// SearchableText is the concatenation the query engine matches phrase
// bonuses and regex patterns against. Empty fields are dropped so anchored
// regex patterns behave.
func (f FileRecord) SearchableText() string {
	fields := make([]string, 0, 4)
	for _, s := range []string{f.FileName, f.RelativePath, f.Subfolder, f.Category} {
		if s != "" {
			fields = append(fields, s)
		}
	}
	return strings.Join(fields, " ")
}

// ProjectScanResult is the output of one completed scan. Groupings are
// views into AllFiles, never independent data: every record in a grouping
// also appears in AllFiles.
type ProjectScanResult struct {
	ProjectPath string
	ProjectName string
	AllFiles    []FileRecord
	Groupings   map[string][]FileRecord // discipline key -> subset
	Drawings    []FileRecord            // format-specific sub-list (CAD family)
	Warnings    []string                // non-fatal scan problems (skipped dirs)
	Truncated   bool                    // file cap reached before walk finished
	ScannedAt   time.Time
}

// SearchPool is the deduplicated flat candidate list the query engine
// searches. No two entries share a case-insensitive path.
type SearchPool struct {
	Files []FileRecord
}

// ScoredFile is one ranked search hit.
type ScoredFile struct {
	File  FileRecord
	Score float64
}

// ParsedQuery is the ephemeral result of parsing one query string.
// When RegexPattern is non-empty, TextClauses is not evaluated.
type ParsedQuery struct {
	LatestRequested   bool
	RegexPattern      string
	AllowedExtensions map[string]struct{}
	TextClauses       []Clause
	OverridePath      string // "<dir> :: filter" form, empty otherwise
}

// Clause is one AND-ed unit of a query: an OR-group of literal/alias
// alternatives. The best-scoring option wins for a given file.
type Clause struct {
	Options []string
}

// Blank reports whether the query carries nothing to match on.
func (q ParsedQuery) Blank() bool {
	return q.RegexPattern == "" && len(q.TextClauses) == 0 && len(q.AllowedExtensions) == 0
}
