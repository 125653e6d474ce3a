package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopFront/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	maxPerPage   = 100
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

type listResp struct {
	Products   []Product      `json:"products"`
	Pagination kit.Pagination `json:"pagination"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.Log.Error("list products", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	res := Apply(products, q)

	kit.WriteJSON(w, http.StatusOK, listResp{
		Products: res.Items,
		Pagination: kit.Pagination{
			Total:      res.Total,
			TotalPages: res.TotalPages,
			Page:       q.Page,
			PerPage:    q.PerPage,
		},
	})
}

func parseQuery(r *http.Request) (Query, error) {
	v := r.URL.Query()

	q := Query{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Page:     1,
		PerPage:  DefaultPerPage,
	}

	if raw := v.Get("in_stock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Query{}, errors.New("bad in_stock value")
		}
		q.InStockOnly = b
	}

	sortKey, ok := ParseSortKey(v.Get("sort"))
	if !ok {
		return Query{}, errors.New("unknown sort key")
	}
	q.Sort = sortKey

	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, errors.New("bad page value")
		}
		q.Page = kit.ClampPage(n)
	}

	if raw := v.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPerPage {
			return Query{}, errors.New("bad per_page value")
		}
		q.PerPage = n
	}

	return q, nil
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.Log.Error("get product", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	kit.WriteJSON(w, http.StatusOK, p)
}

type createReq struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
	InStock    *bool  `json:"in_stock"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "title required", nil)
		return
	}
	if req.PriceCents < 0 || req.Stock < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price/stock must be non-negative", nil)
		return
	}

	p := Product{
		ID:         "p_" + uuid.NewString(),
		Title:      req.Title,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
		InStock:    req.Stock > 0,
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	}

	if err := s.Store.Create(r.Context(), p); err != nil {
		s.Log.Error("create product", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if patch.PriceCents != nil && *patch.PriceCents < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price must be non-negative", nil)
		return
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "stock must be non-negative", nil)
		return
	}

	p, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
			return
		}
		s.Log.Error("update product", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
			return
		}
		s.Log.Error("delete product", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
