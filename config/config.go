package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for pfind.
type Config struct {
	Scan     ScanConfig   `yaml:"scan"`
	Search   SearchConfig `yaml:"search"`
	Aliases  AliasConfig  `yaml:"aliases"`
	Features FeatureFlags `yaml:"features"`
	Watch    WatchConfig  `yaml:"watch"`
}

// ScanConfig bounds the filesystem walk.
type ScanConfig struct {
	MaxDepth        int      `yaml:"max_depth"`
	MaxFiles        int      `yaml:"max_files"`
	ExcludedFolders []string `yaml:"excluded_folders"` // case-insensitive name match
	ExcludedGlobs   []string `yaml:"excluded_globs"`   // doublestar patterns on relative path
	AllowedTypes    []string `yaml:"allowed_types"`    // extensions without dot; empty = built-in default set
}

// SearchConfig holds the scoring weight ladder and latest-mode tuning.
// Weights must stay strictly descending from NamePrefix down to
// Subsequence for the ladder semantics to hold.
type SearchConfig struct {
	NamePrefixWeight   float64 `yaml:"name_prefix_weight"`
	NameSubstrWeight   float64 `yaml:"name_substr_weight"`
	PathSubstrWeight   float64 `yaml:"path_substr_weight"`
	FolderSubstrWeight float64 `yaml:"folder_substr_weight"`
	CategoryWeight     float64 `yaml:"category_weight"`
	SubsequenceWeight  float64 `yaml:"subsequence_weight"`
	PhraseBonus        float64 `yaml:"phrase_bonus"`
	RegexScore         float64 `yaml:"regex_score"`
	LatestBoostMax     float64 `yaml:"latest_boost_max"`
	LatestWindowDays   int     `yaml:"latest_window_days"`
	LatestSingleResult bool    `yaml:"latest_single_result"`
}

// AliasConfig carries the injected alias and stop-word tables.
type AliasConfig struct {
	TypeAliases map[string][]string `yaml:"type_aliases"` // token -> extensions
	TermAliases map[string][]string `yaml:"term_aliases"` // token -> literal alternatives
	StopWords   []string            `yaml:"stop_words"`
	Disciplines map[string][]string `yaml:"disciplines"` // discipline -> folder name hints
}

// FeatureFlags gate query-engine capabilities so one engine can serve
// both the full search surface and the reduced quick-open surface.
type FeatureFlags struct {
	Regex          bool    `yaml:"regex"`
	TypeFilters    bool    `yaml:"type_filters"`
	Latest         bool    `yaml:"latest"`
	Fuzzy          bool    `yaml:"fuzzy"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	FuzzyWeight    float64 `yaml:"fuzzy_weight"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxDepth: 8,
			MaxFiles: 5000,
			ExcludedFolders: []string{
				".git", ".pfind", "node_modules", "bin", "obj",
				"__pycache__", "superseded", "archive", "old", "temp",
			},
			ExcludedGlobs: []string{"**/~$*"},
			AllowedTypes:  nil,
		},
		Search: SearchConfig{
			NamePrefixWeight:   100,
			NameSubstrWeight:   60,
			PathSubstrWeight:   30,
			FolderSubstrWeight: 20,
			CategoryWeight:     10,
			SubsequenceWeight:  5,
			PhraseBonus:        40,
			RegexScore:         50,
			LatestBoostMax:     25,
			LatestWindowDays:   30,
			LatestSingleResult: false,
		},
		Aliases: AliasConfig{
			TypeAliases: map[string][]string{
				"pdf":         {"pdf"},
				"word":        {"doc", "docx"},
				"doc":         {"doc", "docx"},
				"excel":       {"xls", "xlsx", "xlsm"},
				"sheet":       {"xls", "xlsx", "xlsm", "csv"},
				"spreadsheet": {"xls", "xlsx", "xlsm", "csv"},
				"csv":         {"csv"},
				"image":       {"png", "jpg", "jpeg", "bmp", "tif", "tiff"},
				"picture":     {"png", "jpg", "jpeg", "bmp", "tif", "tiff"},
				"photo":       {"png", "jpg", "jpeg"},
				"drawing":     {"dwg", "dxf"},
				"drawings":    {"dwg", "dxf"},
				"cad":         {"dwg", "dxf"},
				"dwg":         {"dwg"},
				"text":        {"txt", "md"},
				"txt":         {"txt"},
			},
			TermAliases: map[string][]string{
				"fault":    {"fault", "short", "short-circuit", "short circuit", "sc"},
				"spec":     {"spec", "specification"},
				"specs":    {"spec", "specification", "specifications"},
				"calc":     {"calc", "calculation"},
				"drawing":  {"drawing", "dwg", "plan"},
				"invoice":  {"invoice", "inv", "bill"},
				"proposal": {"proposal", "quote", "quotation", "bid"},
				"schedule": {"schedule", "sched"},
				"report":   {"report", "rpt"},
			},
			StopWords: []string{
				"a", "an", "and", "are", "as", "at", "be", "by", "for",
				"from", "in", "is", "it", "of", "on", "that", "the", "to",
				"was", "with", "this", "have", "but", "not", "or", "so",
			},
			Disciplines: map[string][]string{
				"electrical":    {"electrical", "elec", "power", "lighting"},
				"mechanical":    {"mechanical", "mech", "hvac"},
				"structural":    {"structural", "struct"},
				"civil":         {"civil", "site"},
				"architectural": {"architectural", "arch"},
				"plumbing":      {"plumbing", "plumb"},
			},
		},
		Features: FeatureFlags{
			Regex:          true,
			TypeFilters:    true,
			Latest:         true,
			Fuzzy:          false,
			FuzzyThreshold: 0.86,
			FuzzyWeight:    3,
		},
		Watch: WatchConfig{
			DebounceMs: 750,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for pfind.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "pfind.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".pfind", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SnapshotDBPath returns the path to the snapshot database.
func SnapshotDBPath(dir string) string {
	return filepath.Join(dir, ".pfind", "snapshots.db")
}

// EnsurePfindDir ensures the .pfind directory exists.
func EnsurePfindDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".pfind"), 0755)
}
