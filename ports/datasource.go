package ports

import (
	"context"

	"gopivot/domain/pivot"
)

// DataSourceLoader produces the table the pivot panels aggregate over
type DataSourceLoader interface {
	// Name identifies the source in logs and the page header
	Name() string

	Load(ctx context.Context) (pivot.DataSource, error)
}
