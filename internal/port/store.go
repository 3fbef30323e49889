package port

import "pfind/internal/domain"

// SnapshotStore persists completed scan results so the CLI can serve a
// stale-but-usable pool on startup. The search core itself never touches
// persistence.
type SnapshotStore interface {
	PutSnapshot(result *domain.ProjectScanResult) error
	GetSnapshot(projectPath string) (*domain.ProjectScanResult, error)
	DeleteSnapshot(projectPath string) error
	ListSnapshots() ([]string, error)

	RecordQuery(projectPath, query string) error
	QueryHistory(projectPath string, limit int) ([]HistoryEntry, error)

	Close() error
}

// HistoryEntry is one remembered query.
type HistoryEntry struct {
	Query string `json:"query"`
	At    int64  `json:"at"` // unix seconds
}
