package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"pfind/internal/adapter/cache"
	"pfind/internal/adapter/pool"
	"pfind/internal/adapter/search"
	"pfind/internal/domain"
	"pfind/internal/port"
)

// ErrSuperseded reports that a scan finished after a newer scan request
// had already started; its result was discarded, the previous pool stays
// in use.
var ErrSuperseded = errors.New("scan superseded by newer request")

// state is the atomically published pair of scan result and pool. Readers
// never observe a pool mid-rebuild; the pointer swaps only after a rebuild
// completes.
type state struct {
	result   *domain.ProjectScanResult
	pool     *domain.SearchPool
	snapshot bool // restored from the store, not freshly scanned
}

// Service is the search core's outward surface: SetProject drives scans,
// SetQuery drives the query engine. One scan may be in flight at a time;
// a new request cancels the previous one cooperatively.
type Service struct {
	scanner   port.ProjectScanner
	engine    *search.Engine
	overrides *cache.ScanCache
	group     singleflight.Group

	version atomic.Uint64
	current atomic.Pointer[state]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewService wires a scanner and query engine into a search service.
func NewService(scanner port.ProjectScanner, engine *search.Engine, overrides *cache.ScanCache) *Service {
	if overrides == nil {
		overrides = cache.NewScanCache(0, 0)
	}
	return &Service{
		scanner:   scanner,
		engine:    engine,
		overrides: overrides,
	}
}

// SetProject scans path and publishes the new pool. Calling it again with
// the currently loaded path is a no-op — no second scan runs. A newer
// request arriving while the scan is in flight cancels it; the stale
// completion is discarded with ErrSuperseded.
func (s *Service) SetProject(ctx context.Context, path, name string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if cur := s.current.Load(); cur != nil && !cur.snapshot && strings.EqualFold(cur.result.ProjectPath, abs) {
		return nil
	}

	version := s.version.Add(1)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	scanCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	result, err := s.scanner.Scan(scanCtx, abs)
	if err != nil {
		// Cancellation is a normal, silent termination; the prior pool
		// remains valid.
		return err
	}
	if name != "" {
		result.ProjectName = name
	}

	if s.version.Load() != version {
		return ErrSuperseded
	}
	s.current.Store(&state{result: result, pool: pool.Build(result)})
	return nil
}

// SetQuery evaluates a query against the current pool. The
// "<dir> :: filter" override form scans that directory instead, memoized
// per path and collapsed so concurrent queries against the same override
// share one walk. The primary pool is never disturbed by an override.
func (s *Service) SetQuery(ctx context.Context, query string) ([]domain.ScoredFile, error) {
	parsed := s.engine.Parse(query)

	if parsed.OverridePath != "" {
		p, err := s.overridePool(ctx, parsed.OverridePath)
		if err != nil {
			return nil, err
		}
		return s.engine.Evaluate(p, parsed), nil
	}

	cur := s.current.Load()
	if cur == nil {
		return nil, nil
	}
	return s.engine.Evaluate(cur.pool, parsed), nil
}

func (s *Service) overridePool(ctx context.Context, path string) (*domain.SearchPool, error) {
	if _, cached, ok := s.overrides.Get(path); ok {
		return cached, nil
	}

	key := strings.ToLower(strings.TrimSpace(path))
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := s.scanner.Scan(ctx, path)
		if err != nil {
			return nil, err
		}
		p := pool.Build(result)
		s.overrides.Put(path, result, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SearchPool), nil
}

// LoadSnapshot publishes a previously persisted scan result as the
// current pool, letting callers search before the first fresh scan
// finishes. A later SetProject for the same path still rescans: snapshot
// data is stale by definition.
func (s *Service) LoadSnapshot(result *domain.ProjectScanResult) {
	if result == nil {
		return
	}
	s.current.Store(&state{result: result, pool: pool.Build(result), snapshot: true})
}

// Current returns the published scan result and pool, or nils before the
// first completed scan.
func (s *Service) Current() (*domain.ProjectScanResult, *domain.SearchPool) {
	cur := s.current.Load()
	if cur == nil {
		return nil, nil
	}
	return cur.result, cur.pool
}

// InvalidateOverrides drops memoized override scans, e.g. after scan
// settings change.
func (s *Service) InvalidateOverrides() {
	s.overrides.Invalidate()
}
