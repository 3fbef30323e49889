package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pfind/config"
	"pfind/internal/adapter/cache"
	"pfind/internal/adapter/fs"
	"pfind/internal/adapter/search"
	"pfind/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "pfind",
	Short: "pfind - scan project folders and search their files",
	Long: `pfind scans a project directory for documents, drawings, spreadsheets
and images, then answers free-text queries with ranked file results.

Query syntax:
  fault current          match both terms against file names and paths
  pdf                    type filter (aliases: word, excel, drawing, ...)
  word|excel             type filter OR-group
  spec :: electrical     AND-ed clauses
  re:^FPL.*\.pdf$        regex mode (also /pattern/)
  latest invoice         boost recently modified files
  D:\Other\Job :: plans  one-off search of another directory

Example usage:
  pfind scan .                      # Scan current directory
  pfind search -q "fault current"   # Search the scanned pool
  pfind watch .                     # Rescan on filesystem changes`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pfind.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

// newScanner builds a scanner from the loaded config.
func newScanner() *fs.Scanner {
	return fs.NewScanner(
		cfg.Scan.MaxDepth,
		cfg.Scan.MaxFiles,
		cfg.Scan.ExcludedFolders,
		cfg.Scan.ExcludedGlobs,
		cfg.Scan.AllowedTypes,
		cfg.Aliases.Disciplines,
	)
}

// newService wires scanner, engine and override cache together.
func newService(scanner *fs.Scanner) *usecase.Service {
	engine := search.NewEngine(cfg)
	return usecase.NewService(scanner, engine, cache.NewScanCache(0, 0))
}
