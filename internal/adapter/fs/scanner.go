package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"pfind/internal/domain"
)

// DefaultExtensions is substituted when no allowed types are configured:
// document, drawing, spreadsheet and image formats.
var DefaultExtensions = []string{
	"pdf", "doc", "docx", "xls", "xlsx", "xlsm", "csv", "txt", "md",
	"dwg", "dxf", "png", "jpg", "jpeg", "bmp", "tif", "tiff",
}

// drawingExtensions marks the CAD format family collected into the
// format-specific sub-list.
var drawingExtensions = map[string]struct{}{
	"dwg": {}, "dxf": {},
}

// Scanner walks a project root up to a bounded depth, filtering by
// extension and excluded folder names, and classifies each file into a
// discipline bucket by folder-name heuristics.
type Scanner struct {
	maxDepth        int
	maxFiles        int
	excludedFolders map[string]struct{} // lowercase folder names
	excludedGlobs   []string            // doublestar patterns on relative paths
	allowedExts     map[string]struct{} // lowercase, no dot
	disciplines     map[string][]string // discipline -> folder name hints (lowercase)
	disciplineOrder []string            // sorted keys, deterministic classification
	progress        func(found int)     // optional, called per accepted file
}

// SetProgress installs a callback invoked with the running file count as
// the walk accepts files.
func (s *Scanner) SetProgress(fn func(found int)) {
	s.progress = fn
}

// NewScanner builds a scanner. allowedTypes may be empty, in which case
// DefaultExtensions applies. disciplines maps a discipline key to folder
// name hints used for category assignment.
func NewScanner(maxDepth, maxFiles int, excludedFolders, excludedGlobs, allowedTypes []string, disciplines map[string][]string) *Scanner {
	if maxDepth <= 0 {
		maxDepth = 8
	}
	if maxFiles <= 0 {
		maxFiles = 5000
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultExtensions
	}

	excluded := make(map[string]struct{}, len(excludedFolders))
	for _, name := range excludedFolders {
		excluded[strings.ToLower(name)] = struct{}{}
	}
	exts := make(map[string]struct{}, len(allowedTypes))
	for _, e := range allowedTypes {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	lowered := make(map[string][]string, len(disciplines))
	order := make([]string, 0, len(disciplines))
	for key, hints := range disciplines {
		lh := make([]string, len(hints))
		for i, h := range hints {
			lh[i] = strings.ToLower(h)
		}
		key = strings.ToLower(key)
		lowered[key] = lh
		order = append(order, key)
	}
	sort.Strings(order)

	return &Scanner{
		maxDepth:        maxDepth,
		maxFiles:        maxFiles,
		excludedFolders: excluded,
		excludedGlobs:   excludedGlobs,
		allowedExts:     exts,
		disciplines:     lowered,
		disciplineOrder: order,
	}
}

// Scan walks root and returns the scan result. A root that does not exist
// yields an empty result rather than an error; unreadable directories are
// skipped and reported as warnings. Cancellation aborts the walk with
// ctx.Err() — the partial result must not be published.
func (s *Scanner) Scan(ctx context.Context, root string) (*domain.ProjectScanResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	result := &domain.ProjectScanResult{
		ProjectPath: root,
		ProjectName: filepath.Base(root),
		Groupings:   make(map[string][]domain.FileRecord),
		ScannedAt:   time.Now(),
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return result, nil
	}

	if err := s.walk(ctx, root, root, 0, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Scanner) walk(ctx context.Context, root, dir string, depth int, result *domain.ProjectScanResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth > s.maxDepth || result.Truncated {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Permission errors and transient disconnects skip the subtree,
		// never fail the scan.
		result.Warnings = append(result.Warnings, fmt.Sprintf("skipped %s: %v", dir, err))
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if result.Truncated {
			return nil
		}

		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if s.excludeDir(entry.Name(), rel) {
				continue
			}
			if err := s.walk(ctx, root, path, depth+1, result); err != nil {
				return err
			}
			continue
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
		if _, ok := s.allowedExts[ext]; !ok {
			continue
		}
		if s.excludeGlob(rel) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped %s: %v", path, err))
			continue
		}

		record := domain.FileRecord{
			Path:         path,
			FileName:     entry.Name(),
			Extension:    ext,
			RelativePath: rel,
			Subfolder:    filepath.Base(dir),
			Category:     s.classify(rel),
			SizeBytes:    info.Size(),
			LastModified: info.ModTime(),
		}
		if record.Subfolder == filepath.Base(root) && !strings.Contains(rel, "/") {
			record.Subfolder = ""
		}

		result.AllFiles = append(result.AllFiles, record)
		if record.Category != "" {
			result.Groupings[record.Category] = append(result.Groupings[record.Category], record)
		}
		if _, ok := drawingExtensions[ext]; ok {
			result.Drawings = append(result.Drawings, record)
		}
		if s.progress != nil {
			s.progress(len(result.AllFiles))
		}

		if len(result.AllFiles) >= s.maxFiles {
			result.Truncated = true
			return nil
		}
	}
	return nil
}

// excludeDir prunes a directory by name or glob; pruned directories are
// never descended into.
func (s *Scanner) excludeDir(name, rel string) bool {
	if _, ok := s.excludedFolders[strings.ToLower(name)]; ok {
		return true
	}
	for _, pattern := range s.excludedGlobs {
		if matched, err := doublestar.Match(pattern, rel+"/"); err == nil && matched {
			return true
		}
	}
	return false
}

func (s *Scanner) excludeGlob(rel string) bool {
	for _, pattern := range s.excludedGlobs {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// classify assigns a discipline from folder-name hints along the relative
// path. First matching discipline wins; unmatched files carry no category.
func (s *Scanner) classify(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return ""
	}
	parts := strings.Split(strings.ToLower(dir), "/")
	for _, part := range parts {
		for _, discipline := range s.disciplineOrder {
			for _, hint := range s.disciplines[discipline] {
				if strings.Contains(part, hint) {
					return discipline
				}
			}
		}
	}
	return ""
}
