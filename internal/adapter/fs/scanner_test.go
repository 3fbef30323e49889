package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testDisciplines = map[string][]string{
	"electrical": {"electrical", "elec"},
	"mechanical": {"mechanical", "mech"},
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func buildProjectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Spec_General.pdf"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "setup.exe"))
	writeFile(t, filepath.Join(root, "Electrical", "FaultCurrent_FPL_2024.pdf"))
	writeFile(t, filepath.Join(root, "Electrical", "Panel_Schedule.xlsx"))
	writeFile(t, filepath.Join(root, "Electrical", "site_plan.dwg"))
	writeFile(t, filepath.Join(root, "Mechanical", "HVAC_Calc.xlsx"))
	writeFile(t, filepath.Join(root, "archive", "old_spec.pdf"))
	return root
}

func newTestScanner() *Scanner {
	return NewScanner(8, 5000, []string{"archive"}, nil, nil, testDisciplines)
}

func TestScan_UniquePaths(t *testing.T) {
	root := buildProjectTree(t)
	result, err := newTestScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for _, f := range result.AllFiles {
		if seen[f.Path] {
			t.Errorf("duplicate path in AllFiles: %s", f.Path)
		}
		seen[f.Path] = true
	}
}

func TestScan_GroupingsAreSubsets(t *testing.T) {
	root := buildProjectTree(t)
	result, err := newTestScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	all := make(map[string]bool, len(result.AllFiles))
	for _, f := range result.AllFiles {
		all[f.Path] = true
	}
	for key, group := range result.Groupings {
		for _, f := range group {
			if !all[f.Path] {
				t.Errorf("grouping %q contains %s which is missing from AllFiles", key, f.Path)
			}
		}
	}
	for _, f := range result.Drawings {
		if !all[f.Path] {
			t.Errorf("drawings sub-list contains %s which is missing from AllFiles", f.Path)
		}
	}
}

func TestScan_Classification(t *testing.T) {
	root := buildProjectTree(t)
	result, err := newTestScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Groupings["electrical"]) != 3 {
		t.Errorf("expected 3 electrical files, got %d", len(result.Groupings["electrical"]))
	}
	if len(result.Groupings["mechanical"]) != 1 {
		t.Errorf("expected 1 mechanical file, got %d", len(result.Groupings["mechanical"]))
	}
	if len(result.Drawings) != 1 {
		t.Errorf("expected 1 drawing, got %d", len(result.Drawings))
	}
	for _, f := range result.AllFiles {
		if f.FileName == "Spec_General.pdf" && f.Category != "" {
			t.Errorf("root-level file should carry no category, got %q", f.Category)
		}
	}
}

func TestScan_ExcludedFolderPruned(t *testing.T) {
	root := buildProjectTree(t)
	result, err := newTestScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range result.AllFiles {
		if strings.Contains(f.RelativePath, "archive") {
			t.Errorf("excluded folder was not pruned: %s", f.RelativePath)
		}
	}
}

func TestScan_ExtensionFilter(t *testing.T) {
	root := buildProjectTree(t)
	result, err := newTestScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range result.AllFiles {
		if f.Extension == "exe" {
			t.Errorf("extension outside the allowed set was included: %s", f.FileName)
		}
	}
	// Default set substitutes when no types are configured.
	if len(result.AllFiles) != 6 {
		t.Errorf("expected 6 files, got %d", len(result.AllFiles))
	}
}

func TestScan_AllowedTypesRestrict(t *testing.T) {
	root := buildProjectTree(t)
	scanner := NewScanner(8, 5000, []string{"archive"}, nil, []string{"pdf"}, testDisciplines)
	result, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.AllFiles) != 2 {
		t.Errorf("expected 2 pdf files, got %d", len(result.AllFiles))
	}
	for _, f := range result.AllFiles {
		if f.Extension != "pdf" {
			t.Errorf("unexpected extension %q", f.Extension)
		}
	}
}

func TestScan_DepthLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.pdf"))
	writeFile(t, filepath.Join(root, "a", "one.pdf"))
	writeFile(t, filepath.Join(root, "a", "b", "two.pdf"))
	writeFile(t, filepath.Join(root, "a", "b", "c", "three.pdf"))

	scanner := NewScanner(2, 5000, nil, nil, nil, nil)
	result, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.AllFiles) != 3 {
		t.Fatalf("expected 3 files within depth 2, got %d", len(result.AllFiles))
	}
	for _, f := range result.AllFiles {
		if f.FileName == "three.pdf" {
			t.Error("file beyond the depth limit was included")
		}
	}
}

func TestScan_MaxFilesTruncates(t *testing.T) {
	root := buildProjectTree(t)
	scanner := NewScanner(8, 3, []string{"archive"}, nil, nil, testDisciplines)
	result, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.AllFiles) != 3 {
		t.Errorf("expected exactly 3 files at the cap, got %d", len(result.AllFiles))
	}
	if !result.Truncated {
		t.Error("expected Truncated to be set")
	}
}

func TestScan_MissingRootIsEmpty(t *testing.T) {
	result, err := newTestScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "gone"))
	if err != nil {
		t.Fatalf("missing root must not error, got %v", err)
	}
	if len(result.AllFiles) != 0 {
		t.Errorf("expected empty result, got %d files", len(result.AllFiles))
	}
}

func TestScan_Cancellation(t *testing.T) {
	root := buildProjectTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner().Scan(ctx, root)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if ctx.Err() == nil {
		t.Fatal("context should be cancelled")
	}
}

func TestScan_ProgressCallback(t *testing.T) {
	root := buildProjectTree(t)
	scanner := newTestScanner()

	var last int
	scanner.SetProgress(func(found int) { last = found })

	result, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if last != len(result.AllFiles) {
		t.Errorf("expected final progress %d, got %d", len(result.AllFiles), last)
	}
}

func TestScan_RecordFields(t *testing.T) {
	root := buildProjectTree(t)
	result, err := newTestScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range result.AllFiles {
		if f.FileName != "FaultCurrent_FPL_2024.pdf" {
			continue
		}
		if f.Extension != "pdf" {
			t.Errorf("expected extension pdf, got %q", f.Extension)
		}
		if f.RelativePath != "Electrical/FaultCurrent_FPL_2024.pdf" {
			t.Errorf("unexpected relative path %q", f.RelativePath)
		}
		if f.Subfolder != "Electrical" {
			t.Errorf("expected subfolder Electrical, got %q", f.Subfolder)
		}
		if f.Category != "electrical" {
			t.Errorf("expected category electrical, got %q", f.Category)
		}
		if f.SizeBytes != 1 {
			t.Errorf("expected size 1, got %d", f.SizeBytes)
		}
		if f.LastModified.IsZero() {
			t.Error("expected a modification time")
		}
		return
	}
	t.Fatal("FaultCurrent_FPL_2024.pdf not found in scan result")
}
