package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

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
	Orders     []Order        `json:"orders"`
	Pagination kit.Pagination `json:"pagination"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	orders, err := s.Store.List(r.Context())
	if err != nil {
		s.Log.Error("list orders", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	res := Apply(orders, q)

	kit.WriteJSON(w, http.StatusOK, listResp{
		Orders: res.Items,
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
		Sort:    SortDate,
		Dir:     Desc,
		Page:    1,
		PerPage: DefaultPerPage,
	}

	if raw := v.Get("status"); raw != "" {
		st := Status(raw)
		if !ValidStatus(st) {
			return Query{}, errors.New("unknown status")
		}
		q.Status = st
	}

	if raw := v.Get("sort"); raw != "" {
		switch SortField(raw) {
		case SortDate, SortTotal:
			q.Sort = SortField(raw)
		default:
			return Query{}, errors.New("unknown sort field")
		}
	}

	if raw := v.Get("dir"); raw != "" {
		switch Dir(raw) {
		case Asc, Desc:
			q.Dir = Dir(raw)
		default:
			return Query{}, errors.New("unknown sort direction")
		}
	}

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

	o, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.Log.Error("get order", zap.Error(err), zap.String("order_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, ErrNotFound.Error(), map[string]any{"id": id})
		return
	}

	kit.WriteJSON(w, http.StatusOK, o)
}

type createReq struct {
	Customer   string `json:"customer"`
	TotalCents int64  `json:"total_cents"`
	Status     Status `json:"status"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Customer = strings.TrimSpace(req.Customer)
	if req.Customer == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "customer required", nil)
		return
	}
	if req.TotalCents < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "total must be non-negative", nil)
		return
	}
	if req.Status == "" {
		req.Status = StatusPending
	}
	if !ValidStatus(req.Status) {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown status", map[string]any{"status": req.Status})
		return
	}

	o := Order{
		ID:         "ORD-" + uuid.NewString(),
		Customer:   req.Customer,
		TotalCents: req.TotalCents,
		Status:     req.Status,
		Date:       time.Now().UTC(),
	}

	if err := s.Store.Create(r.Context(), o); err != nil {
		s.Log.Error("create order", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, o)
}

type setStatusReq struct {
	Status Status `json:"status"`
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setStatusReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if !ValidStatus(req.Status) {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown status", map[string]any{"status": req.Status})
		return
	}

	o, err := s.Store.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, ErrNotFound.Error(), map[string]any{"id": id})
			return
		}
		s.Log.Error("set order status", zap.Error(err), zap.String("order_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, o)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
