package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gopivot/domain/pivot"
	"gopivot/ports"

	"golang.org/x/sync/singleflight"
)

// DataSourceService loads the configured data source once and shares it across sessions
type DataSourceService struct {
	loader ports.DataSourceLoader

	group singleflight.Group

	mu       sync.RWMutex
	cached   pivot.DataSource
	loadedAt time.Time
}

// NewDataSourceService creates a data source service backed by a loader
func NewDataSourceService(loader ports.DataSourceLoader) *DataSourceService {
	return &DataSourceService{loader: loader}
}

// Name returns the loader's display name
func (s *DataSourceService) Name() string {
	return s.loader.Name()
}

// DataSource returns the cached data source, loading it on first use.
// Concurrent first callers share a single load. The load itself is detached from the caller's
// cancellation so one abandoned request cannot fail the others waiting on it; each caller still
// stops waiting when its own ctx is done.
func (s *DataSourceService) DataSource(ctx context.Context) (pivot.DataSource, error) {
	s.mu.RLock()
	ds := s.cached
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("datasource", func() (interface{}, error) {
		s.mu.RLock()
		existing := s.cached
		s.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		start := time.Now()
		loaded, err := s.loader.Load(loadCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to load data source %q: %w", s.loader.Name(), err)
		}

		s.mu.Lock()
		s.cached = loaded
		s.loadedAt = time.Now()
		s.mu.Unlock()

		log.Printf("[DataSourceService] Loaded %q: %d rows, %d columns in %s",
			s.loader.Name(), loaded.RowCount(), loaded.ColumnCount(), time.Since(start))
		return loaded, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Printf("[DataSourceService] Shared in-flight load of %q", s.loader.Name())
		}
		return res.Val.(pivot.DataSource), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reload drops the cached data source so the next call loads it again
func (s *DataSourceService) Reload() {
	s.mu.Lock()
	s.cached = nil
	s.loadedAt = time.Time{}
	s.mu.Unlock()
}

// LoadedAt reports when the cached data source was loaded; zero when not loaded
func (s *DataSourceService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
