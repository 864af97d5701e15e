package testkit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gopivot/domain/pivot"

	"github.com/google/uuid"
)

func TestShoppingDataGenerator_Basic(t *testing.T) {
	config := DefaultShoppingConfig()
	config.OrderCount = 50

	ds, err := NewShoppingDataGenerator(config).Generate()
	if err != nil {
		t.Fatalf("Failed to generate rows: %v", err)
	}

	if ds.RowCount() != 50 {
		t.Errorf("Expected 50 rows, got %d", ds.RowCount())
	}
	if ds.ColumnCount() != len(ShoppingColumns) {
		t.Errorf("Expected %d columns, got %d", len(ShoppingColumns), ds.ColumnCount())
	}
	if ds.ColumnType(7) != pivot.FieldNumeric {
		t.Errorf("Expected amount to be numeric, got %s", ds.ColumnType(7))
	}
	if ds.ColumnType(4) != pivot.FieldText {
		t.Errorf("Expected year to be text, got %s", ds.ColumnType(4))
	}

	for row := 0; row < ds.RowCount(); row++ {
		amount, ok := pivot.ToFloat(ds.ValueAt(row, 7))
		if !ok || amount <= 0 {
			t.Errorf("Row %d has invalid amount %v", row, ds.ValueAt(row, 7))
		}
	}
}

func TestShoppingDataGenerator_Deterministic(t *testing.T) {
	config := DefaultShoppingConfig()
	config.OrderCount = 20

	a, err := NewShoppingDataGenerator(config).Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewShoppingDataGenerator(config).Generate()
	if err != nil {
		t.Fatal(err)
	}

	for row := 0; row < a.RowCount(); row++ {
		for col := 0; col < a.ColumnCount(); col++ {
			if a.ValueAt(row, col) != b.ValueAt(row, col) {
				t.Fatalf("Same seed produced different value at %d,%d", row, col)
			}
		}
	}
}

func TestShoppingDataGenerator_InvalidConfig(t *testing.T) {
	config := DefaultShoppingConfig()
	config.EndDate = config.StartDate

	if _, err := NewShoppingDataGenerator(config).Generate(); err == nil {
		t.Error("Expected error for empty date range")
	}
}

func TestShoppingLoader(t *testing.T) {
	loader := NewTestKit().Loader()
	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.RowCount() != 120 {
		t.Errorf("Expected 120 rows, got %d", ds.RowCount())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx); err == nil {
		t.Error("Expected cancelled context to fail the load")
	}
}

func TestInMemoryPanelStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryPanelStateRepository()
	id := uuid.New()

	rec, err := repo.Load(ctx, id)
	if err != nil || rec != nil {
		t.Fatalf("Expected no record, got %v %v", rec, err)
	}

	if err := repo.Save(ctx, id, json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, id, json.RawMessage(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	rec, err = repo.Load(ctx, id)
	if err != nil || rec == nil {
		t.Fatalf("Expected record, got %v %v", rec, err)
	}
	if rec.Version != 2 || string(rec.State) != `{"a":2}` {
		t.Errorf("Unexpected record %+v", rec)
	}

	n, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
	if err != nil || n != 1 {
		t.Errorf("Expected one expired record, got %d %v", n, err)
	}
}
