package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"pfind/config"
	"pfind/internal/adapter/store"
)

var watchQuery string

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rescan the project when its files change",
	Long: `Watch a project directory and rescan it (debounced) whenever files
change, keeping the stored snapshot fresh. With -q, the query is re-run
after every rescan and the top results printed.

Examples:
  pfind watch .
  pfind watch -q "latest drawings" /path/to/project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchQuery, "query", "q", "", "query to re-run after each rescan")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}

	scanner := newScanner()
	svc := newService(scanner)

	if err := config.EnsurePfindDir(path); err != nil {
		return fmt.Errorf("failed to create .pfind directory: %w", err)
	}
	st, err := store.NewBoltStore(config.SnapshotDBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer st.Close()

	rescan := func() {
		if err := svc.SetProject(cmd.Context(), path, ""); err != nil {
			fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
			return
		}
		svc.InvalidateOverrides()
		result, _ := svc.Current()
		if result == nil {
			return
		}
		st.PutSnapshot(result)
		fmt.Printf("[%s] rescanned: %d files\n", time.Now().Format("15:04:05"), len(result.AllFiles))

		if watchQuery != "" {
			hits, err := svc.SetQuery(cmd.Context(), watchQuery)
			if err != nil {
				fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
				return
			}
			for i, h := range hits {
				if i >= 5 {
					break
				}
				fmt.Printf("  %d. %s (%.1f)\n", i+1, h.File.RelativePath, h.Score)
			}
		}
	}

	rescan()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the tree; directories added later are picked up on the
	// debounced rescan pass.
	if err := addWatchTree(watcher, path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 750 * time.Millisecond
	}
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.Contains(event.Name, string(filepath.Separator)+".pfind") {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-pending:
			rescan()
			addWatchTree(watcher, path)
		}
	}
}

// addWatchTree registers the root and its subdirectories with the
// watcher, honoring the configured excluded folders.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	excluded := make(map[string]struct{}, len(cfg.Scan.ExcludedFolders))
	for _, name := range cfg.Scan.ExcludedFolders {
		excluded[strings.ToLower(name)] = struct{}{}
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if _, ok := excluded[strings.ToLower(d.Name())]; ok && path != root {
			return filepath.SkipDir
		}
		watcher.Add(path)
		return nil
	})
}
