package api

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"gopivot/adapters/excel"
	"gopivot/domain/pivot"
	"gopivot/internal/errors"
	"gopivot/internal/session"
	"gopivot/ui/panel"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PanelResolver finds the pivot panel of the session a request belongs to
type PanelResolver interface {
	ResolvePanel(r *http.Request) (*panel.Panel, *session.Context, error)
}

// PivotHandler serves the session's pivot configuration and results as JSON and xlsx
type PivotHandler struct {
	panels    PanelResolver
	exportSem *semaphore.Weighted
}

// NewPivotHandler creates a handler allowing maxExports concurrent workbook builds
func NewPivotHandler(panels PanelResolver, maxExports int64) *PivotHandler {
	if maxExports <= 0 {
		maxExports = 1
	}
	return &PivotHandler{
		panels:    panels,
		exportSem: semaphore.NewWeighted(maxExports),
	}
}

// ResultResponse is the JSON form of a computed pivot result
type ResultResponse struct {
	RowFields    []pivot.Field `json:"row_fields"`
	ColumnFields []pivot.Field `json:"column_fields"`
	DataFields   []pivot.Field `json:"data_fields"`
	ColumnKeys   [][]string    `json:"column_keys"`
	Rows         []ResultRow   `json:"rows"`
	ColumnTotals [][]*float64  `json:"column_totals,omitempty"`
	GrandTotals  []*float64    `json:"grand_totals,omitempty"`
}

// ResultRow holds one row key with its cells, indexed [column][data field]
type ResultRow struct {
	Key    []string     `json:"key"`
	Values [][]*float64 `json:"values"`
	Totals []*float64   `json:"totals,omitempty"`
}

// GetFields returns every field with its area assignment
func (h *PivotHandler) GetFields(c *gin.Context) {
	p, sess, ok := h.resolve(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	fields := make([]pivot.Field, 0)
	for _, f := range p.Model().AllFields() {
		fields = append(fields, *f)
	}
	c.JSON(http.StatusOK, gin.H{
		"fields":       fields,
		"valid":        p.Verify(),
		"auto_compute": p.AutoCompute(),
	})
}

// GetResult recalculates the session's model and returns the result
func (h *PivotHandler) GetResult(c *gin.Context) {
	p, sess, ok := h.resolve(c)
	if !ok {
		return
	}
	sess.Lock()
	res, err := h.calculate(p)
	showRow, showColumn := p.Model().ShowGrandTotalForRow(), p.Model().ShowGrandTotalForColumn()
	sess.Unlock()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResultResponse(res, showRow, showColumn))
}

// ExportResult recalculates the session's model and streams it as a workbook
func (h *PivotHandler) ExportResult(c *gin.Context) {
	p, sess, ok := h.resolve(c)
	if !ok {
		return
	}
	sess.Lock()
	res, err := h.calculate(p)
	opts := excel.ExportOptions{
		RowTotals:    p.Model().ShowGrandTotalForRow(),
		ColumnTotals: p.Model().ShowGrandTotalForColumn(),
	}
	sess.Unlock()
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.exportSem.Acquire(c.Request.Context(), 1); err != nil {
		abortWithError(c, errors.Wrap(err, "export cancelled"))
		return
	}
	defer h.exportSem.Release(1)

	start := time.Now()
	var buf bytes.Buffer
	if err := excel.ExportResult(&buf, res, opts); err != nil {
		abortWithError(c, errors.Wrap(err, "failed to export pivot result"))
		return
	}
	log.Printf("[PivotAPI] Exported %d rows for session %s in %s", len(res.RowKeys), sess.ID, time.Since(start))

	c.Header("Content-Disposition", `attachment; filename="pivot.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *PivotHandler) calculate(p *panel.Panel) (*pivot.Result, error) {
	if !p.Verify() {
		return nil, errors.Conflict("pivot needs a data field and a row or column field")
	}
	if err := p.Model().Calculate(); err != nil {
		return nil, errors.Wrap(err, "pivot calculation failed")
	}
	return p.Model().Result(), nil
}

func (h *PivotHandler) resolve(c *gin.Context) (*panel.Panel, *session.Context, bool) {
	p, sess, err := h.panels.ResolvePanel(c.Request)
	if err != nil {
		abortWithError(c, err)
		return nil, nil, false
	}
	return p, sess, true
}

func toResultResponse(res *pivot.Result, showRow, showColumn bool) ResultResponse {
	out := ResultResponse{
		RowFields:    res.RowFields,
		ColumnFields: res.ColumnFields,
		DataFields:   res.DataFields,
		ColumnKeys:   res.ColumnKeys,
		Rows:         make([]ResultRow, len(res.RowKeys)),
	}
	for i, key := range res.RowKeys {
		row := ResultRow{Key: key, Values: make([][]*float64, len(res.ColumnKeys))}
		for j := range res.ColumnKeys {
			row.Values[j] = make([]*float64, len(res.DataFields))
			for d := range res.DataFields {
				row.Values[j][d] = optional(res.Value(i, j, d))
			}
		}
		if showRow {
			for d := range res.DataFields {
				row.Totals = append(row.Totals, optional(res.RowTotal(i, d)))
			}
		}
		out.Rows[i] = row
	}
	if showColumn {
		out.ColumnTotals = make([][]*float64, len(res.ColumnKeys))
		for j := range res.ColumnKeys {
			for d := range res.DataFields {
				out.ColumnTotals[j] = append(out.ColumnTotals[j], optional(res.ColumnTotal(j, d)))
			}
		}
	}
	if showRow && showColumn {
		for d := range res.DataFields {
			out.GrandTotals = append(out.GrandTotals, optional(res.GrandTotal(d)))
		}
	}
	return out
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func abortWithError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[PivotAPI] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
