package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pfind/config"
	"pfind/internal/adapter/store"
	"pfind/internal/domain"
)

var (
	searchQuery    string
	searchLimit    int
	searchJSON     bool
	searchNoRescan bool
)

var searchCmd = &cobra.Command{
	Use:   "search [path]",
	Short: "Search the project's files",
	Long: `Search the scanned file pool with a free-text query. A stored snapshot
is used when present; otherwise (or with a stale snapshot) the directory
is rescanned first.

Examples:
  pfind search -q "fault current"
  pfind search -q "word|excel" --limit 10 --json
  pfind search -q "latest invoice"
  pfind search -q "re:^FPL.*\.pdf$"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 25, "maximum results to print")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().BoolVar(&searchNoRescan, "no-rescan", false, "search the stored snapshot only, never rescan")
	searchCmd.MarkFlagRequired("query")
}

// searchResult is the CLI/JSON shape of one hit.
type searchResult struct {
	Path     string  `json:"path"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Size     string  `json:"size"`
	Modified string  `json:"modified"`
	Score    float64 `json:"score"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	scanner := newScanner()
	svc := newService(scanner)

	var st *store.BoltStore
	dbPath := config.SnapshotDBPath(path)
	if _, err := os.Stat(dbPath); err == nil {
		st, err = store.NewBoltStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		defer st.Close()
		if snap, err := st.GetSnapshot(path); err == nil {
			svc.LoadSnapshot(snap)
		}
	}

	if cur, _ := svc.Current(); cur == nil && searchNoRescan {
		return fmt.Errorf("no snapshot found, run 'pfind scan' first")
	}
	if cur, _ := svc.Current(); cur == nil || !searchNoRescan {
		if err := svc.SetProject(cmd.Context(), path, ""); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if st != nil {
			if fresh, _ := svc.Current(); fresh != nil {
				st.PutSnapshot(fresh)
			}
		}
	}

	hits, err := svc.SetQuery(cmd.Context(), searchQuery)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if st != nil {
		st.RecordQuery(path, searchQuery)
	}

	if searchLimit > 0 && len(hits) > searchLimit {
		hits = hits[:searchLimit]
	}

	results := make([]searchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, toResult(h))
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), searchQuery)
	for i, r := range results {
		fmt.Printf("%3d. %-40s %8s  %s  (score: %.1f)\n", i+1, r.Name, r.Size, r.Modified, r.Score)
		fmt.Printf("     %s\n", r.Path)
	}
	return nil
}

func toResult(h domain.ScoredFile) searchResult {
	return searchResult{
		Path:     h.File.Path,
		Name:     h.File.FileName,
		Category: h.File.Category,
		Size:     h.File.SizeDisplay(),
		Modified: h.File.LastModified.Format("2006-01-02 15:04"),
		Score:    h.Score,
	}
}
