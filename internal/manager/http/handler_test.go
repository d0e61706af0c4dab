package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/auxmanager/internal/app"
	"github.com/odyssey-erp/auxmanager/internal/manager"
	managerhttp "github.com/odyssey-erp/auxmanager/internal/manager/http"
	"github.com/odyssey-erp/auxmanager/internal/shared"
	"github.com/odyssey-erp/auxmanager/internal/view"
	_ "github.com/odyssey-erp/auxmanager/testing"
)

type hostCall struct {
	Method string
	Path   string
	Form   url.Values
}

type host struct {
	mu    sync.Mutex
	calls []hostCall
}

func (h *host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := hostCall{Method: r.Method, Path: r.URL.Path}
	if r.Method == http.MethodPost && r.ParseMultipartForm(1<<20) == nil {
		call.Form = url.Values(r.MultipartForm.Value)
	}
	h.mu.Lock()
	h.calls = append(h.calls, call)
	h.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (h *host) Calls() []hostCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]hostCall(nil), h.calls...)
}

type staticSource map[manager.Type][]manager.Record

func (s staticSource) Records(_ context.Context, t manager.Type) ([]manager.Record, error) {
	return s[t], nil
}

type harness struct {
	server *httptest.Server
	client *http.Client
	host   *host
}

func newHarness(t *testing.T, refresher manager.Refresher, source managerhttp.RecordSource) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &host{}
	upstream := httptest.NewServer(h)
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessions := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	controller := manager.NewController(manager.NewClient(upstream.URL, upstream.Client()), manager.Options{
		Refresher: refresher,
		Logger:    logger,
	})
	handler := managerhttp.NewHandler(logger, controller, source, templates, shared.NewCSRFManager("csrfsecret"))

	r := chi.NewRouter()
	r.Use(app.SessionMiddleware(logger, sessions))
	r.Route("/manager", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{server: srv, client: &http.Client{Jar: jar}, host: h}
}

func (h *harness) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	res, err := h.client.PostForm(h.server.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (h *harness) get(t *testing.T, path string) *http.Response {
	t.Helper()
	res, err := h.client.Get(h.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func document(t *testing.T, res *http.Response) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(res.Body)
	require.NoError(t, err)
	return doc
}

func openCategories(t *testing.T, h *harness, data string) *goquery.Document {
	t.Helper()
	res := h.post(t, "/manager/open", url.Values{
		"data":  {data},
		"type":  {"category"},
		"title": {"Categorias"},
		"page":  {"/admin/menu"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	return document(t, res)
}

func TestOpenRendersRows(t *testing.T) {
	h := newHarness(t, nil, nil)
	doc := openCategories(t, h, `[{"id":1,"name":"Bebidas"},{"id":2,"name":"Doces","item_count":3},{"id":3,"name":"Outros","item_count":0}]`)

	assert.False(t, doc.Find("#catManagerModal").HasClass("hidden"))
	assert.Equal(t, "Categorias", doc.Find("#catManagerModal h3").Text())
	placeholder, _ := doc.Find("#catManName").Attr("placeholder")
	assert.Equal(t, "New item in Categorias...", placeholder)

	rows := doc.Find("#catManagerList tr.item")
	require.Equal(t, 3, rows.Length())
	assert.Equal(t, "Bebidas", strings.TrimSpace(rows.Eq(0).Find("td.name").Text()))
	assert.Equal(t, 0, rows.Eq(0).Find(".badge").Length())
	assert.True(t, rows.Eq(1).Find(".badge").HasClass("badge-active"))
	assert.Equal(t, "3 items", rows.Eq(1).Find(".badge").Text())
	assert.True(t, rows.Eq(2).Find(".badge").HasClass("badge-idle"))
}

func TestOpenWithBrokenDataShowsPlaceholderRow(t *testing.T) {
	h := newHarness(t, nil, nil)
	doc := openCategories(t, h, `{broken`)

	assert.Equal(t, 0, doc.Find("#catManagerList tr.item").Length())
	require.Equal(t, 1, doc.Find("#catManagerList tr.empty").Length())
	assert.Equal(t, "No items registered.", doc.Find("#catManagerList tr.empty td").Text())
}

func TestOpenRejectsUnknownType(t *testing.T) {
	h := newHarness(t, nil, nil)
	res := h.post(t, "/manager/open", url.Values{"type": {"supplier"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestActionsBeforeOpenAreNotFound(t *testing.T) {
	h := newHarness(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, h.get(t, "/manager/state").StatusCode)
	assert.Equal(t, http.StatusNotFound, h.post(t, "/manager/submit", url.Values{"name": {"x"}}).StatusCode)
	assert.Empty(t, h.host.Calls())
}

func TestNamesAreRenderedAsData(t *testing.T) {
	h := newHarness(t, nil, nil)
	name := `Pão's <script>alert(1)</script>`
	raw, err := json.Marshal([]manager.Record{{ID: 7, Name: name}})
	require.NoError(t, err)

	doc := openCategories(t, h, string(raw))
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, name, strings.TrimSpace(doc.Find("#catManagerList td.name").Text()))
	hidden, _ := doc.Find(`#catManagerList form input[name="name"]`).Attr("value")
	assert.Equal(t, name, hidden)

	res := h.post(t, "/manager/edit", url.Values{"id": {"7"}, "name": {name}})
	edited := document(t, res)
	value, _ := edited.Find("#catManName").Attr("value")
	assert.Equal(t, name, value)
	id, _ := edited.Find("#catManId").Attr("value")
	assert.Equal(t, "7", id)
}

func TestSubmitWithoutRefresherRequestsReload(t *testing.T) {
	h := newHarness(t, nil, nil)
	openCategories(t, h, `[{"id":1,"name":"Bebidas"}]`)
	h.post(t, "/manager/edit", url.Values{"id": {"1"}, "name": {"Bebidas"}})

	res := h.post(t, "/manager/submit", url.Values{"id": {"1"}, "name": {"Sucos"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "true", res.Header.Get("HX-Refresh"))

	calls := h.host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/admin/menu/category/save", calls[0].Path)
	assert.Equal(t, "Sucos", calls[0].Form.Get("name"))
	assert.Equal(t, "1", calls[0].Form.Get("cat_id"))
	assert.Empty(t, calls[0].Form.Get("type"))
}

func TestSubmitWithRefresherClosesAndNotifies(t *testing.T) {
	var (
		mu        sync.Mutex
		refreshed []manager.Type
	)
	refresher := manager.RefreshFunc(func(_ context.Context, t manager.Type) error {
		mu.Lock()
		defer mu.Unlock()
		refreshed = append(refreshed, t)
		return nil
	})
	h := newHarness(t, refresher, nil)
	res := h.post(t, "/manager/open", url.Values{"data": {`[]`}, "type": {"unit"}, "title": {"Units"}, "page": {"/admin/inventory"}})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = h.post(t, "/manager/submit", url.Values{"name": {"kg"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, res.Header.Get("HX-Refresh"))
	mu.Lock()
	assert.Equal(t, []manager.Type{manager.TypeUnit}, refreshed)
	mu.Unlock()

	var events map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(res.Header.Get("HX-Trigger")), &events))
	assert.Contains(t, events, "manager:notify")
	assert.JSONEq(t, `{"type":"unit"}`, string(events["manager:updated"]))

	doc := document(t, res)
	assert.True(t, doc.Find("#catManagerModal").HasClass("hidden"))
	notice := doc.Find(".notice-success")
	require.Equal(t, 1, notice.Length())
	assert.Equal(t, 0, notice.ParentsFiltered(".hidden").Length())
	assert.Equal(t, 0, notice.ParentsFiltered("#catManagerModal").Length())
	region := notice.ParentsFiltered("#managerToast")
	require.Equal(t, 1, region.Length())
	oob, _ := region.Attr("hx-swap-oob")
	assert.Equal(t, "true", oob)
	timer, _ := notice.Attr("data-timer")
	assert.Equal(t, "1500", timer)
	assert.Equal(t, "Saved!", notice.Find("strong").Text())

	calls := h.host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/admin/inventory/aux/save", calls[0].Path)
	assert.Equal(t, "unit", calls[0].Form.Get("type"))
	assert.Empty(t, calls[0].Form.Get("id"))
}

func TestDeleteAsksForConfirmationFirst(t *testing.T) {
	h := newHarness(t, nil, nil)
	openCategories(t, h, `[{"id":4,"name":"Bebidas"}]`)

	res := h.post(t, "/manager/items/4/delete", url.Values{})
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := document(t, res)
	assert.Equal(t, "Are you sure?", doc.Find(".confirm p").Text())
	assert.Empty(t, h.host.Calls())

	res = h.post(t, "/manager/items/4/delete", url.Values{"confirmed": {"no"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 0, document(t, res).Find(".confirm").Length())
	assert.Empty(t, h.host.Calls())

	res = h.post(t, "/manager/items/4/delete", url.Values{"confirmed": {"yes"}})
	assert.Equal(t, "true", res.Header.Get("HX-Refresh"))
	calls := h.host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].Method)
	assert.Equal(t, "/admin/menu/category/4", calls[0].Path)
}

func TestCloseKeepsSessionState(t *testing.T) {
	h := newHarness(t, nil, nil)
	openCategories(t, h, `[{"id":1,"name":"Bebidas"}]`)

	doc := document(t, h.post(t, "/manager/close", url.Values{}))
	assert.True(t, doc.Find("#catManagerModal").HasClass("hidden"))

	res := h.get(t, "/manager/state")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var state manager.Session
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	assert.False(t, state.Visible)
	assert.Equal(t, manager.TypeCategory, state.Type)
	assert.Equal(t, "/admin/menu/category/save", state.Endpoint)
	assert.Len(t, state.Records, 1)
}

func TestOpenFromCatalog(t *testing.T) {
	source := staticSource{manager.TypeUnit: {{ID: 1, Name: "KG", ItemCount: nil}}}
	h := newHarness(t, nil, source)

	res := h.get(t, "/manager/open?type=unit&title=Units&page=/admin/inventory")
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := document(t, res)
	assert.Equal(t, 1, doc.Find("#catManagerList tr.item").Length())
}

func TestSelectPopulatesFromCatalog(t *testing.T) {
	source := staticSource{manager.TypeUnit: {{ID: 1, Name: "Farinha", Unit: "KG"}, {ID: 2, Name: "Ovos"}}}
	h := newHarness(t, nil, source)

	doc := document(t, h.get(t, "/manager/select/unit?target=ingredientUnit"))
	options := doc.Find("select#ingredientUnit option")
	require.Equal(t, 3, options.Length())
	first, _ := options.Eq(0).Attr("value")
	assert.Equal(t, "", first)
	assert.Equal(t, "Farinha (KG)", options.Eq(1).Text())
	second, _ := options.Eq(2).Attr("value")
	assert.Equal(t, "2", second)
}

func TestSelectWithoutCatalogHasOnlyPlaceholder(t *testing.T) {
	h := newHarness(t, nil, nil)
	doc := document(t, h.get(t, "/manager/select/category?target=cat"))
	assert.Equal(t, 1, doc.Find("select#cat option").Length())
}

func TestFailedSaveShowsErrorOutsideModal(t *testing.T) {
	h := newHarness(t, nil, nil)
	openCategories(t, h, `[]`)

	res := h.post(t, "/manager/submit", url.Values{"name": {"   "}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc := document(t, res)
	assert.False(t, doc.Find("#catManagerModal").HasClass("hidden"))
	notice := doc.Find("#managerToast .notice-error")
	require.Equal(t, 1, notice.Length())
	assert.Equal(t, "Name is required", notice.Find("span").Text())
	_, timed := notice.Attr("data-timer")
	assert.False(t, timed)
	assert.Empty(t, h.host.Calls())
}

func TestToastRegionIsClearedWithoutNotification(t *testing.T) {
	h := newHarness(t, nil, nil)
	doc := openCategories(t, h, `[]`)

	region := doc.Find("#managerToast")
	require.Equal(t, 1, region.Length())
	assert.Equal(t, 0, region.Children().Length())
	assert.Equal(t, "Save", doc.Find("#catManForm button.save").Text())
}
