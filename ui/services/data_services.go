package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"sync"
	"time"

	"gopivot/app"
	"gopivot/domain/pivot"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
)

// ColumnSummary describes one column of the loaded data source
type ColumnSummary struct {
	Name     string
	Type     pivot.FieldType
	Distinct int
	Min      string
	Max      string
}

// DatasetSummary is shown in the page header
type DatasetSummary struct {
	Name    string
	Rows    int
	Columns []ColumnSummary
	Notes   template.HTML
}

type DataService struct {
	source *app.DataSourceService
	notes  template.HTML

	summaryMu       sync.Mutex
	summary         *DatasetSummary
	summaryLoadedAt time.Time
}

// NewDataService renders the markdown notes once and summarizes the data source on demand
func NewDataService(source *app.DataSourceService, notesMarkdown string) *DataService {
	return &DataService{
		source: source,
		notes:  RenderMarkdown(notesMarkdown),
	}
}

// DataSource returns the shared data source
func (s *DataService) DataSource(ctx context.Context) (pivot.DataSource, error) {
	return s.source.DataSource(ctx)
}

// Summary describes the loaded data source; it is recomputed after a reload
func (s *DataService) Summary(ctx context.Context) (*DatasetSummary, error) {
	ds, err := s.source.DataSource(ctx)
	if err != nil {
		return nil, err
	}

	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	if s.summary != nil && s.summaryLoadedAt.Equal(s.source.LoadedAt()) {
		return s.summary, nil
	}

	summary := &DatasetSummary{
		Name:    s.source.Name(),
		Rows:    ds.RowCount(),
		Columns: make([]ColumnSummary, ds.ColumnCount()),
		Notes:   s.notes,
	}
	for col := 0; col < ds.ColumnCount(); col++ {
		summary.Columns[col] = summarizeColumn(ds, col)
	}

	s.summary = summary
	s.summaryLoadedAt = s.source.LoadedAt()
	return summary, nil
}

func summarizeColumn(ds pivot.DataSource, col int) ColumnSummary {
	out := ColumnSummary{Name: ds.ColumnName(col), Type: ds.ColumnType(col)}
	distinct := make(map[string]struct{})
	var numbers stats.Float64Data
	for row := 0; row < ds.RowCount(); row++ {
		v := ds.ValueAt(row, col)
		if v == nil {
			continue
		}
		distinct[pivot.FormatValue(v)] = struct{}{}
		if f, ok := pivot.ToFloat(v); ok {
			numbers = append(numbers, f)
		}
	}
	out.Distinct = len(distinct)

	if out.Type == pivot.FieldNumeric && len(numbers) > 0 {
		if lo, err := numbers.Min(); err == nil {
			out.Min = pivot.FormatNumber(lo)
		}
		if hi, err := numbers.Max(); err == nil {
			out.Max = pivot.FormatNumber(hi)
		}
		return out
	}

	if len(distinct) > 0 {
		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)
		out.Min, out.Max = values[0], values[len(values)-1]
	}
	return out
}

// RenderMarkdown converts dataset notes to HTML. Raw HTML in the source is dropped.
func RenderMarkdown(source string) template.HTML {
	if source == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	})
	out := markdown.ToHTML([]byte(source), p, renderer)
	return template.HTML(bytes.TrimSpace(out))
}

// String is used in log lines
func (s *DatasetSummary) String() string {
	return fmt.Sprintf("%s (%d rows, %d columns)", s.Name, s.Rows, len(s.Columns))
}
