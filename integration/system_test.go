//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	email := fmt.Sprintf("user_%d_%d@example.com", time.Now().Unix(), rand.Intn(100000))
	pass := "password123!"

	var registered struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	doJSON(t, http.MethodPost, baseURL+"/auth/register", map[string]any{
		"email":    email,
		"password": pass,
	}, &registered, 201)
	if registered.Token == "" {
		t.Fatalf("empty token on register")
	}
	if registered.User.Role != "user" {
		t.Fatalf("fresh account role=%q want user", registered.User.Role)
	}

	var login struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/auth/login", map[string]any{
		"email":    email,
		"password": pass,
	}, &login, 200)
	if login.Token == "" {
		t.Fatalf("empty token on login")
	}

	// Catalog reads are public.
	var listing struct {
		Products []map[string]any `json:"products"`
	}
	doJSON(t, http.MethodGet, baseURL+"/products?sort=price-asc", nil, &listing, 200)
	if len(listing.Products) == 0 {
		t.Fatalf("expected seeded products")
	}

	// Catalog writes require the admin role.
	doJSONAuth(t, http.MethodPost, baseURL+"/products", login.Token, map[string]any{
		"title":       "E2E Widget",
		"category":    "Electronics",
		"price_cents": 100,
	}, nil, 403)

	var adminLogin struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "admin123",
	}, &adminLogin, 200)

	var created map[string]any
	doJSONAuth(t, http.MethodPost, baseURL+"/products", adminLogin.Token, map[string]any{
		"title":       "E2E Widget",
		"category":    "Electronics",
		"price_cents": 100,
		"stock":       3,
	}, &created, 201)

	pid, _ := created["id"].(string)
	if pid == "" {
		t.Fatalf("product id missing: %#v", created)
	}

	var got map[string]any
	doJSON(t, http.MethodGet, baseURL+"/products/"+pid, nil, &got, 200)
	if got["in_stock"] != true {
		t.Fatalf("expected in_stock=true: %#v", got)
	}

	// Orders are visible to any authenticated account, mutable by admins.
	var orders struct {
		Orders []map[string]any `json:"orders"`
	}
	doJSONAuth(t, http.MethodGet, baseURL+"/orders", login.Token, nil, &orders, 200)

	var order map[string]any
	doJSONAuth(t, http.MethodPost, baseURL+"/orders", adminLogin.Token, map[string]any{
		"customer":    "E2E Buyer",
		"total_cents": 300,
	}, &order, 201)

	oid, _ := order["id"].(string)
	if oid == "" {
		t.Fatalf("order id missing: %#v", order)
	}

	doJSONAuth(t, http.MethodPatch, baseURL+"/orders/"+oid+"/status", adminLogin.Token, map[string]any{
		"status": "shipped",
	}, &order, 200)
	if order["status"] != "shipped" {
		t.Fatalf("status not updated: %#v", order)
	}

	doJSONAuth(t, http.MethodDelete, baseURL+"/products/"+pid, adminLogin.Token, nil, nil, 204)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()
	doJSONAuth(t, method, url, "", body, out, want)
}

func doJSONAuth(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
