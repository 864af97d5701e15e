package testkit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gopivot/domain/pivot"
	"gopivot/ports"

	"github.com/google/uuid"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	config ShoppingGeneratorConfig
	repo   *InMemoryPanelStateRepository
}

// NewTestKit creates a new test kit with a small deterministic data set
func NewTestKit() *TestKit {
	config := DefaultShoppingConfig()
	config.OrderCount = 120
	return &TestKit{
		config: config,
		repo:   NewInMemoryPanelStateRepository(),
	}
}

// DataSource generates the kit's sales rows
func (t *TestKit) DataSource() *pivot.ListDataSource {
	ds, err := NewShoppingDataGenerator(t.config).Generate()
	if err != nil {
		panic(err)
	}
	return ds
}

// Loader returns a loader over the kit's sales rows
func (t *TestKit) Loader() ports.DataSourceLoader {
	return NewShoppingLoader(t.config)
}

// PanelStateRepository returns the kit's shared in-memory repository
func (t *TestKit) PanelStateRepository() *InMemoryPanelStateRepository {
	return t.repo
}

// SmallSales is a hand-checked fixture used where exact totals matter
func SmallSales() *pivot.ListDataSource {
	ds := pivot.NewListDataSource("region", "year", "amount")
	rows := [][]interface{}{
		{"North", "2023", 10.0},
		{"North", "2023", 20.0},
		{"North", "2024", 5.0},
		{"South", "2023", 7.0},
		{"South", "2024", 3.0},
	}
	for _, r := range rows {
		if err := ds.AddRow(r...); err != nil {
			panic(err)
		}
	}
	return ds
}

// InMemoryPanelStateRepository is a map-backed PanelStateRepository for tests
type InMemoryPanelStateRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]ports.PanelStateRecord
	saves   int
}

func NewInMemoryPanelStateRepository() *InMemoryPanelStateRepository {
	return &InMemoryPanelStateRepository{records: make(map[uuid.UUID]ports.PanelStateRecord)}
}

func (r *InMemoryPanelStateRepository) Save(ctx context.Context, sessionID uuid.UUID, state json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.records[sessionID]
	rec.SessionID = sessionID
	rec.State = append(json.RawMessage(nil), state...)
	rec.Version++
	rec.UpdatedAt = time.Now()
	r.records[sessionID] = rec
	r.saves++
	return nil
}

func (r *InMemoryPanelStateRepository) Load(ctx context.Context, sessionID uuid.UUID) (*ports.PanelStateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[sessionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *InMemoryPanelStateRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	return nil
}

func (r *InMemoryPanelStateRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, rec := range r.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

// Saves reports how many times Save succeeded
func (r *InMemoryPanelStateRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

var _ ports.PanelStateRepository = (*InMemoryPanelStateRepository)(nil)
