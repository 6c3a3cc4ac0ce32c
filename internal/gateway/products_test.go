package gateway

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// TestHandleProductList は商品一覧の中継を検証する。
func TestHandleProductList(t *testing.T) {
	t.Parallel()

	t.Run("商品サービスのレスポンスがそのまま中継されること", func(t *testing.T) {
		t.Parallel()

		products := newJSONBackend(t, map[string]string{
			"/products": `[{"id": "p1", "name": "Widget", "category": "tools", "isActive": true}]`,
		})

		s := newTestServer(t, serviceURLConfig{Products: products.URL})
		w := doRequest(s, http.MethodGet, "/products", "", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), "Widget") {
			t.Errorf("ボディ = %q, want 商品データを含む", w.Body.String())
		}
	})

	t.Run("クエリ文字列が商品サービスに転送されること", func(t *testing.T) {
		t.Parallel()

		var gotQuery string
		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[]`)
		}))
		t.Cleanup(products.Close)

		s := newTestServer(t, serviceURLConfig{Products: products.URL})
		doRequest(s, http.MethodGet, "/products?category=tools&active=true", "", nil)

		if gotQuery != "category=tools&active=true" {
			t.Errorf("転送されたクエリ = %q, want %q", gotQuery, "category=tools&active=true")
		}
	})
}

// TestHandleProductGet は商品1件取得の中継を検証する。
func TestHandleProductGet(t *testing.T) {
	t.Parallel()

	t.Run("商品サービスの404がそのまま中継されること", func(t *testing.T) {
		t.Parallel()

		products := newJSONBackend(t, map[string]string{})
		s := newTestServer(t, serviceURLConfig{Products: products.URL})
		w := doRequest(s, http.MethodGet, "/products/missing", "", nil)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestHandleProductCreate は商品作成の中継と在庫の初期化を検証する。
func TestHandleProductCreate(t *testing.T) {
	t.Parallel()

	t.Run("作成成功時に在庫0の初期レコードが登録されること", func(t *testing.T) {
		t.Parallel()

		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": "p9", "name": "NewThing", "category": "misc", "isActive": true}`)
		}))
		t.Cleanup(products.Close)

		var mu sync.Mutex
		var seedPath, seedBody string
		inventory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			seedPath = r.URL.Path
			seedBody = string(body)
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"productid": "p9", "stock": 0}`)
		}))
		t.Cleanup(inventory.Close)

		auth := newAuthBackend(t, `{"sub": "admin-1", "role": "admin"}`)
		s := newTestServer(t, serviceURLConfig{Auth: auth.URL, Products: products.URL, Inventory: inventory.URL})
		w := doRequest(s, http.MethodPost, "/products", "valid-token",
			strings.NewReader(`{"name": "NewThing", "category": "misc"}`))

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード = %d, want %d (body=%q)", w.Code, http.StatusCreated, w.Body.String())
		}

		mu.Lock()
		defer mu.Unlock()
		if seedPath != "/api/Supabase/add" {
			t.Errorf("在庫初期化のパス = %q, want %q", seedPath, "/api/Supabase/add")
		}
		if !strings.Contains(seedBody, `"p9"`) || !strings.Contains(seedBody, `"stock":0`) {
			t.Errorf("在庫初期化のボディ = %q, want productid=p9 stock=0", seedBody)
		}
	})

	t.Run("在庫の初期化失敗は商品作成のレスポンスに影響しないこと", func(t *testing.T) {
		t.Parallel()

		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": "p9", "name": "NewThing"}`)
		}))
		t.Cleanup(products.Close)

		auth := newAuthBackend(t, `{"sub": "admin-1"}`)
		// 在庫サービスは到達不能
		s := newTestServer(t, serviceURLConfig{Auth: auth.URL, Products: products.URL})
		w := doRequest(s, http.MethodPost, "/products", "valid-token", strings.NewReader(`{"name": "NewThing"}`))

		if w.Code != http.StatusCreated {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusCreated)
		}
	})

	t.Run("作成失敗時は在庫の初期化が行われないこと", func(t *testing.T) {
		t.Parallel()

		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "name is required"}`)
		}))
		t.Cleanup(products.Close)

		var mu sync.Mutex
		seeded := false
		inventory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			seeded = true
			mu.Unlock()
		}))
		t.Cleanup(inventory.Close)

		auth := newAuthBackend(t, `{"sub": "admin-1"}`)
		s := newTestServer(t, serviceURLConfig{Auth: auth.URL, Products: products.URL, Inventory: inventory.URL})
		w := doRequest(s, http.MethodPost, "/products", "valid-token", strings.NewReader(`{}`))

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}
		mu.Lock()
		defer mu.Unlock()
		if seeded {
			t.Error("作成失敗時に在庫の初期化が行われた")
		}
	})

	t.Run("認証なしでは401となり商品サービスが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		called := false
		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		t.Cleanup(products.Close)

		s := newTestServer(t, serviceURLConfig{Products: products.URL})
		w := doRequest(s, http.MethodPost, "/products", "", strings.NewReader(`{"name": "x"}`))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if called {
			t.Error("認証前に商品サービスが呼び出された")
		}
	})
}

// TestHandleProductWrite は商品の更新・削除の中継を検証する。
func TestHandleProductWrite(t *testing.T) {
	t.Parallel()

	t.Run("更新リクエストが商品サービスに中継されること", func(t *testing.T) {
		t.Parallel()

		var gotMethod, gotPath string
		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "p1", "name": "Renamed"}`)
		}))
		t.Cleanup(products.Close)

		auth := newAuthBackend(t, `{"sub": "admin-1"}`)
		s := newTestServer(t, serviceURLConfig{Auth: auth.URL, Products: products.URL})
		w := doRequest(s, http.MethodPatch, "/products/p1", "valid-token", strings.NewReader(`{"name": "Renamed"}`))

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if gotMethod != http.MethodPatch || gotPath != "/products/p1" {
			t.Errorf("転送先 = %s %s, want PATCH /products/p1", gotMethod, gotPath)
		}
	})

	t.Run("削除リクエストが商品サービスに中継されること", func(t *testing.T) {
		t.Parallel()

		var gotMethod string
		products := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(products.Close)

		auth := newAuthBackend(t, `{"sub": "admin-1"}`)
		s := newTestServer(t, serviceURLConfig{Auth: auth.URL, Products: products.URL})
		w := doRequest(s, http.MethodDelete, "/products/p1", "valid-token", nil)

		if w.Code != http.StatusNoContent {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if gotMethod != http.MethodDelete {
			t.Errorf("転送メソッド = %q, want DELETE", gotMethod)
		}
	})
}
