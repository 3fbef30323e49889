package port

import (
	"context"

	"pfind/internal/domain"
)

// ProjectScanner walks a project root and produces a scan result.
type ProjectScanner interface {
	// Scan walks root. A nonexistent root yields an empty result, not an
	// error. Cancellation of ctx aborts the walk; the partial result must
	// not be published.
	Scan(ctx context.Context, root string) (*domain.ProjectScanResult, error)
}
