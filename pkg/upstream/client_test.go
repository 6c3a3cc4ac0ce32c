package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// testRequest はテストサーバーが受け取ったリクエスト情報を保持する構造体。
type testRequest struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Body はリクエストボディ。
	Body []byte
	// Headers はリクエストヘッダー。
	Headers http.Header
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("クライアントが正常に生成されること", func(t *testing.T) {
		t.Parallel()

		client := New("inventory", "http://localhost:5233")
		if client == nil {
			t.Fatal("New()がnilを返した")
		}
		if client.Name() != "inventory" {
			t.Errorf("Name() = %q, want %q", client.Name(), "inventory")
		}
		if client.baseURL != "http://localhost:5233" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:5233")
		}
	})

	t.Run("タイムアウトが30秒に設定されていること", func(t *testing.T) {
		t.Parallel()

		client := New("inventory", "http://localhost:5233")
		if client.httpClient.Timeout.Seconds() != 30 {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})
}

// TestClientDo はDo関数を検証する。
func TestClientDo(t *testing.T) {
	t.Parallel()

	t.Run("指定したメソッド・パス・ヘッダー・ボディで呼び出されること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Path = r.URL.Path
			received.Body, _ = io.ReadAll(r.Body)
			received.Headers = r.Header.Clone()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		client := New("products", ts.URL)
		header := http.Header{}
		header.Set("Authorization", "Bearer token-1")

		resp, err := client.Do(context.Background(), http.MethodPatch, "/products/p1", header, strings.NewReader(`{"name":"Widget"}`))
		if err != nil {
			t.Fatalf("Do()でエラーが発生: %v", err)
		}

		if received.Method != http.MethodPatch {
			t.Errorf("Method = %q, want %q", received.Method, http.MethodPatch)
		}
		if received.Path != "/products/p1" {
			t.Errorf("Path = %q, want %q", received.Path, "/products/p1")
		}
		if got := received.Headers.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer token-1")
		}
		if string(received.Body) != `{"name":"Widget"}` {
			t.Errorf("Body = %q, want %q", string(received.Body), `{"name":"Widget"}`)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("上流のエラーステータスはエラーではなくResponseとして返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}))
		defer ts.Close()

		client := New("products", ts.URL)
		resp, err := client.Get(context.Background(), "/products/missing", nil)
		if err != nil {
			t.Fatalf("Do()でエラーが発生: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		if resp.IsSuccess() {
			t.Error("IsSuccess() = true, want false")
		}
		if string(resp.Body) != `{"error":"not found"}` {
			t.Errorf("Body = %q, want %q", string(resp.Body), `{"error":"not found"}`)
		}
	})

	t.Run("トランスポートレベルの失敗はエラーとして返ること", func(t *testing.T) {
		t.Parallel()

		// 接続先が存在しないポートを指定する
		client := New("inventory", "http://127.0.0.1:1")
		_, err := client.Get(context.Background(), "/api/Supabase/getAll", nil)
		if err == nil {
			t.Fatal("トランスポート失敗でエラーが返らなかった")
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("JSONボディとContent-Typeが送信されること", func(t *testing.T) {
		t.Parallel()

		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Body, _ = io.ReadAll(r.Body)
			received.Headers = r.Header.Clone()
			w.WriteHeader(http.StatusCreated)
		}))
		defer ts.Close()

		client := New("inventory", ts.URL)
		resp, err := client.PostJSON(context.Background(), "/api/Supabase/add", map[string]any{"productid": "p1", "stock": 0})
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		if got := received.Headers.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		var sent map[string]any
		if err := json.Unmarshal(received.Body, &sent); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sent["productid"] != "p1" {
			t.Errorf("productid = %v, want %q", sent["productid"], "p1")
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})
}

// TestResponseIsJSON はIsJSON関数を検証する。
func TestResponseIsJSON(t *testing.T) {
	t.Parallel()

	t.Run("application/jsonの場合にtrueを返すこと", func(t *testing.T) {
		t.Parallel()

		resp := &Response{ContentType: "application/json"}
		if !resp.IsJSON() {
			t.Error("IsJSON() = false, want true")
		}
	})

	t.Run("charsetパラメータ付きでもtrueを返すこと", func(t *testing.T) {
		t.Parallel()

		resp := &Response{ContentType: "application/json; charset=utf-8"}
		if !resp.IsJSON() {
			t.Error("IsJSON() = false, want true")
		}
	})

	t.Run("text/htmlの場合にfalseを返すこと", func(t *testing.T) {
		t.Parallel()

		resp := &Response{ContentType: "text/html"}
		if resp.IsJSON() {
			t.Error("IsJSON() = true, want false")
		}
	})

	t.Run("Content-Typeが空の場合にfalseを返すこと", func(t *testing.T) {
		t.Parallel()

		resp := &Response{ContentType: ""}
		if resp.IsJSON() {
			t.Error("IsJSON() = true, want false")
		}
	})
}

// TestResponseDecodeJSON はDecodeJSON関数を検証する。
func TestResponseDecodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("JSONボディをデシリアライズできること", func(t *testing.T) {
		t.Parallel()

		resp := &Response{Body: []byte(`{"id":"p1","stock":5}`)}
		var result struct {
			ID    string `json:"id"`
			Stock int64  `json:"stock"`
		}
		if err := resp.DecodeJSON(&result); err != nil {
			t.Fatalf("DecodeJSON()でエラーが発生: %v", err)
		}
		if result.ID != "p1" {
			t.Errorf("ID = %q, want %q", result.ID, "p1")
		}
		if result.Stock != 5 {
			t.Errorf("Stock = %d, want %d", result.Stock, 5)
		}
	})

	t.Run("不正なJSONの場合にエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		resp := &Response{Body: []byte(`<html>`)}
		var result map[string]any
		if err := resp.DecodeJSON(&result); err == nil {
			t.Fatal("不正なJSONでエラーが返らなかった")
		}
	})
}
