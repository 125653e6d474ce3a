package catalog_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ShopFront/internal/auth"
	"ShopFront/internal/catalog"
	"ShopFront/pkg/kit"
)

const testSecret = "test-secret"

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{Store: catalog.NewMemStore(), Log: zap.NewNop()}

	r := chi.NewRouter()
	s.Register(r, auth.NewTokenMaker(testSecret))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func token(t *testing.T, role string) string {
	t.Helper()

	tok, err := auth.NewTokenMaker(testSecret).New("u_test", "t@example.com", role, time.Minute)
	require.NoError(t, err)
	return tok
}

func doJSON(t *testing.T, method, url, bearer string, body any) (*http.Response, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

type listResp struct {
	Products   []catalog.Product `json:"products"`
	Pagination kit.Pagination    `json:"pagination"`
}

func TestProducts_ListWithQuery(t *testing.T) {
	ts := newCatalogTS(t)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products?search=wireless&sort=price-asc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out listResp
	require.NoError(t, json.Unmarshal(raw, &out))

	require.Len(t, out.Products, 1)
	assert.Equal(t, "Wireless Headphones Pro", out.Products[0].Title)
	assert.Equal(t, 1, out.Pagination.Total)
	assert.Equal(t, 1, out.Pagination.TotalPages)
	assert.Equal(t, catalog.DefaultPerPage, out.Pagination.PerPage)
}

func TestProducts_ListRejectsUnknownSort(t *testing.T) {
	ts := newCatalogTS(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/products?sort=price", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_ListClampsNegativePage(t *testing.T) {
	ts := newCatalogTS(t)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products?page=-3", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out listResp
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 1, out.Pagination.Page)
	assert.Len(t, out.Products, 2)
}

func TestProducts_GetNotFound(t *testing.T) {
	ts := newCatalogTS(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_CreateRequiresAdmin(t *testing.T) {
	ts := newCatalogTS(t)

	body := map[string]any{"title": "Desk Lamp", "category": "Home", "price_cents": 2500, "stock": 3}

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/products", "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/products", token(t, "user"), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/products", token(t, "admin"), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created catalog.Product
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.InStock, "in_stock derives from stock when omitted")
}

func TestProducts_AdminUpdateAndDelete(t *testing.T) {
	ts := newCatalogTS(t)
	admin := token(t, "admin")

	resp, raw := doJSON(t, http.MethodPatch, ts.URL+"/products/p1", admin, map[string]any{"stock": 0, "in_stock": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated catalog.Product
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, 0, updated.Stock)
	assert.False(t, updated.InStock)
	assert.Equal(t, "Wireless Headphones Pro", updated.Title, "unpatched fields survive")

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/products/p1", admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/products/p1", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_CreateValidation(t *testing.T) {
	ts := newCatalogTS(t)
	admin := token(t, "admin")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/products", admin, map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/products", admin, map[string]any{"title": "X", "price_cents": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
