package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ShopFront/config"
	"ShopFront/internal/auth"
	"ShopFront/internal/catalog"
	"ShopFront/internal/order"
	"ShopFront/pkg/kit"
)

const service = "storefront"

type stores struct {
	users    auth.UserStore
	products catalog.Store
	orders   order.Store
}

func main() {
	cfg := config.Load()

	log := kit.NewLogger(service, cfg.Logger.Level)
	defer func() { _ = log.Sync() }()

	st, err := buildStores(cfg)
	if err != nil {
		log.Fatal("store init", zap.Error(err))
	}

	jwt := auth.NewTokenMaker(cfg.JWT.Secret)

	authSrv := &auth.Server{Log: log, Store: st.users, JWT: jwt}
	catalogSrv := &catalog.Server{Log: log, Store: st.products}
	orderSrv := &order.Server{Log: log, Store: st.orders}

	reg := prometheus.NewRegistry()
	metrics := kit.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log))
	r.Use(metrics.Middleware(service, kit.ChiRoutePatternOrPath))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(st, log))

	if cfg.Metrics.Enabled {
		r.With(kit.MetricsAuth(cfg.Metrics.Token)).Handle(
			"/metrics",
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		)
	}

	authSrv.Register(r)
	catalogSrv.Register(r, jwt)
	orderSrv.Register(r, jwt)

	if err := kit.RunHTTPServer(":"+cfg.Server.Port, r, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// buildStores picks memory or Postgres backends from PG_DSN. All three
// stores share one connection pool when Postgres is configured.
func buildStores(cfg *config.Config) (stores, error) {
	if cfg.Postgres.DSN == "" {
		return stores{
			users:    auth.NewMemStore(),
			products: catalog.NewMemStore(),
			orders:   order.NewMemStore(),
		}, nil
	}

	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		return stores{}, err
	}

	return stores{
		users:    auth.NewPostgresStore(db),
		products: catalog.NewPostgresStore(db),
		orders:   order.NewPostgresStore(db),
	}, nil
}

const readyTimeout = 2 * time.Second

func readyz(st stores, log *zap.Logger) http.HandlerFunc {
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"users", st.users.Ping},
		{"products", st.products.Ping},
		{"orders", st.orders.Ping},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, c := range checks {
			if err := c.ping(ctx); err != nil {
				log.Warn("readyz failed", zap.String("store", c.name), zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, c.name+" not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
