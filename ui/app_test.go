package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gopivot/app"
	"gopivot/domain/pivot"
	"gopivot/internal/api"
	"gopivot/internal/errors"
	"gopivot/internal/session"
	"gopivot/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct{}

func (staticLoader) Name() string { return "small sales" }

func (staticLoader) Load(ctx context.Context) (pivot.DataSource, error) {
	return testkit.SmallSales(), nil
}

type harness struct {
	app      *App
	repo     *testkit.InMemoryPanelStateRepository
	sessions *session.Manager
	cookie   *http.Cookie
}

func newHarness(t *testing.T, repo *testkit.InMemoryPanelStateRepository) *harness {
	t.Helper()
	if repo == nil {
		repo = testkit.NewInMemoryPanelStateRepository()
	}
	h := &harness{repo: repo, sessions: session.NewManager()}
	a, err := NewApp(Config{Title: "Sales"}, Deps{
		Sessions:     h.sessions,
		DataSources:  app.NewDataSourceService(staticLoader{}),
		PanelStates:  app.NewPanelStateService(repo),
		DatasetNotes: "Quarterly *sales* figures",
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	a.MountAPI(api.NewRouter(api.NewPivotHandler(a, 1), nil))
	h.app = a
	return h
}

func (h *harness) do(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.app.Handler().ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			h.cookie = c
		}
	}
	return w
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, path, form, true)
}

func (h *harness) configure(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusOK, h.post("/pivot/areas/row/fields", url.Values{"field": {"region"}}).Code)
	require.Equal(t, http.StatusOK, h.post("/pivot/areas/column/fields", url.Values{"field": {"year"}}).Code)
	require.Equal(t, http.StatusOK, h.post("/pivot/areas/data/fields", url.Values{"field": {"amount"}}).Code)
}

func (h *harness) panelModel(t *testing.T) pivot.Model {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(h.cookie)
	p, _, err := h.app.ResolvePanel(req)
	require.NoError(t, err)
	return p.Model()
}

func TestIndexStartsSession(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, h.cookie)
	assert.Equal(t, 1, h.sessions.Len())

	body := w.Body.String()
	assert.Contains(t, body, `id="pivot-areas"`)
	assert.Contains(t, body, `id="pivot-pivotTable" class="pivot-table" hidden`)
	assert.Contains(t, body, "<em>sales</em>")
	assert.Contains(t, body, "small sales")

	// same cookie, same session
	h.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, 1, h.sessions.Len())
}

func TestAreaChangeRerendersAreasAndComputeLink(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)

	w := h.post("/pivot/areas/row/fields", url.Values{"field": {"region"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="pivot-areas" class="pivot-areas" hx-swap-oob="true"`)
	assert.Contains(t, body, `id="pivot-compute"`)
	assert.Contains(t, body, "btn-success disabled")
	assert.NotContains(t, body, "pivot-pivotTable")

	assert.Len(t, h.panelModel(t).Fields(pivot.AreaRow), 1)
}

func TestComputeRendersTable(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)
	h.configure(t)

	w := h.post("/pivot/compute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="pivot-pivotTable" class="pivot-table" data-instance=`)
	assert.Contains(t, body, "North")
	assert.Contains(t, body, `<td class="grand-total">45</td>`)
}

func TestComputeWithInvalidConfigurationIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)
	h.post("/pivot/areas/row/fields", url.Values{"field": {"region"}})

	w := h.post("/pivot/compute", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAutoCompute(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)

	w := h.post("/pivot/auto-compute", url.Values{"checked": {"true"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<span id="pivot-compute" hidden hx-swap-oob="true"></span>`)

	h.post("/pivot/areas/row/fields", url.Values{"field": {"region"}})
	w = h.post("/pivot/areas/data/fields", url.Values{"field": {"amount"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="pivot-pivotTable" class="pivot-table" data-instance=`)

	w = h.post("/pivot/auto-compute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<a id="pivot-compute"`)
}

func TestGrandTotalToggles(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)

	w := h.post("/pivot/grand-total/row", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	m := h.panelModel(t)
	assert.False(t, m.ShowGrandTotalForRow())
	assert.True(t, m.ShowGrandTotalForColumn())

	h.post("/pivot/grand-total/row", url.Values{"checked": {"on"}})
	assert.True(t, m.ShowGrandTotalForRow())

	w = h.post("/pivot/grand-total/diagonal", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeInvalidInput)
}

func TestFieldOperations(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)
	h.configure(t)
	h.post("/pivot/areas/page/fields", url.Values{"field": {"region"}})

	w := h.post("/pivot/fields/amount/aggregator", url.Values{"aggregator": {"max"}})
	require.Equal(t, http.StatusOK, w.Code)
	w = h.post("/pivot/fields/region/filter", url.Values{"value": {"North"}})
	require.Equal(t, http.StatusOK, w.Code)

	m := h.panelModel(t)
	amount, _ := m.Field("amount")
	region, _ := m.Field("region")
	assert.Equal(t, pivot.AggregatorMax, amount.Aggregator)
	assert.Equal(t, "North", region.FilterValue)

	w = h.post("/pivot/fields/region/remove", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, region.IsAssigned())
}

func TestInvalidInput(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)
	h.configure(t)

	cases := map[string]struct {
		path string
		form url.Values
	}{
		"unknown area":        {"/pivot/areas/diagonal/fields", url.Values{"field": {"region"}}},
		"unknown field":       {"/pivot/areas/row/fields", url.Values{"field": {"nope"}}},
		"bad index":           {"/pivot/areas/row/fields", url.Values{"field": {"region"}, "index": {"first"}}},
		"bad aggregator":      {"/pivot/fields/amount/aggregator", url.Values{"aggregator": {"median"}}},
		"filter on data area": {"/pivot/fields/amount/filter", url.Values{"value": {"1"}}},
		"remove unknown":      {"/pivot/fields/nope/remove", nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := h.post(tc.path, tc.form)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), errors.CodeInvalidInput)
		})
	}
}

func TestNonHTMXRequestsRedirect(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/", nil, false)

	w := h.do(http.MethodPost, "/pivot/areas/row/fields", url.Values{"field": {"region"}}, false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestStateSurvivesRestart(t *testing.T) {
	repo := testkit.NewInMemoryPanelStateRepository()
	h := newHarness(t, repo)
	h.do(http.MethodGet, "/", nil, false)
	h.configure(t)
	h.post("/pivot/compute", nil)
	require.Greater(t, repo.Saves(), 0)

	restarted := newHarness(t, repo)
	restarted.cookie = h.cookie
	w := restarted.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	m := restarted.panelModel(t)
	assert.Len(t, m.Fields(pivot.AreaRow), 1)
	assert.Len(t, m.Fields(pivot.AreaData), 1)
	assert.Contains(t, w.Body.String(), `id="pivot-pivotTable" class="pivot-table" data-instance=`)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	h := newHarness(t, nil)
	h.cookie = &http.Cookie{Name: sessionCookie, Value: "not-a-uuid"}
	w := h.do(http.MethodGet, "/", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "not-a-uuid", h.cookie.Value)
	assert.Equal(t, 1, h.sessions.Len())
}

func TestAPIUsesSessionPanel(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/api/pivot/fields", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.do(http.MethodGet, "/", nil, false)
	h.configure(t)
	w = h.do(http.MethodGet, "/api/pivot/result", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":["North"]`)
}

func TestStaticFiles(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/static/css/pivot.css", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".pivot-table")
}
