package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pfind/config"
	"pfind/internal/adapter/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a project directory",
	Long: `Scan a project directory for searchable files and persist the result
as a snapshot in .pfind/snapshots.db so searches start instantly.

Examples:
  pfind scan .                 # Scan current directory
  pfind scan /path/to/project  # Scan specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	scanner := newScanner()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
	)
	scanner.SetProgress(func(found int) {
		bar.Add(1)
	})

	fmt.Printf("Scanning %s...\n", path)
	result, err := scanner.Scan(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	bar.Finish()
	fmt.Println()

	if len(result.AllFiles) == 0 {
		fmt.Println("No searchable files found.")
	} else {
		fmt.Printf("Found %d files in %s\n", len(result.AllFiles), result.ProjectName)
	}
	if result.Truncated {
		fmt.Printf("File cap (%d) reached, scan truncated.\n", cfg.Scan.MaxFiles)
	}
	if len(result.Groupings) > 0 {
		keys := make([]string, 0, len(result.Groupings))
		for k := range result.Groupings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-14s %d files\n", k, len(result.Groupings[k]))
		}
	}
	if len(result.Drawings) > 0 {
		fmt.Printf("  %-14s %d files\n", "drawings", len(result.Drawings))
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if err := config.EnsurePfindDir(path); err != nil {
		return fmt.Errorf("failed to create .pfind directory: %w", err)
	}
	st, err := store.NewBoltStore(config.SnapshotDBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer st.Close()

	if err := st.PutSnapshot(result); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Println("Snapshot saved.")
	return nil
}
