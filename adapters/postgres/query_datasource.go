package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopivot/domain/pivot"
	"gopivot/internal/errors"

	"github.com/jmoiron/sqlx"
)

// QueryLoader loads the result set of a SQL query as a pivot data source
type QueryLoader struct {
	db    *sqlx.DB
	query string
}

// NewQueryLoader creates a loader for a read-only query
func NewQueryLoader(db *sqlx.DB, query string) *QueryLoader {
	return &QueryLoader{db: db, query: query}
}

func (l *QueryLoader) Name() string {
	return "postgres query"
}

// Load runs the query and copies every row into memory
func (l *QueryLoader) Load(ctx context.Context) (pivot.DataSource, error) {
	start := time.Now()
	rows, err := l.db.QueryxContext(ctx, l.query)
	if err != nil {
		return nil, errors.ExternalServiceError("postgres", fmt.Errorf("failed to run data source query: %w", err))
	}
	defer rows.Close()

	ds, err := copyRows(rows)
	if err != nil {
		return nil, errors.ExternalServiceError("postgres", err)
	}

	log.Printf("[QueryLoader] Loaded %d rows x %d columns in %s", ds.RowCount(), ds.ColumnCount(), time.Since(start))
	return ds, nil
}

// rowScanner is the part of *sqlx.Rows that copyRows reads
type rowScanner interface {
	Columns() ([]string, error)
	Next() bool
	SliceScan() ([]interface{}, error)
	Err() error
}

func copyRows(rows rowScanner) (*pivot.ListDataSource, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read query columns: %w", err)
	}

	ds := pivot.NewListDataSource(columns...)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan data source row: %w", err)
		}
		for i, v := range values {
			// lib/pq hands text and numeric columns back as []byte
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		if err := ds.AddRow(values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate data source rows: %w", err)
	}
	return ds, nil
}
