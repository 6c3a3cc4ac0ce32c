package gateway

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/upstream"
)

// catalogRecord は商品サービスが返す商品情報。
type catalogRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	IsActive bool   `json:"isActive"`
}

// handleProductList は商品一覧を商品サービスに中継するハンドラーを返す。
func (s *Server) handleProductList() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.products.Get(c.Request.Context(), "/products"+rawQuerySuffix(c), nil)
		if err != nil {
			failUnavailable(c, s.products.Name(), err)
			return
		}
		relayUpstream(c, resp)
	}
}

// handleProductGet は商品1件の取得を商品サービスに中継するハンドラーを返す。
func (s *Server) handleProductGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := "/products/" + url.PathEscape(c.Param("id")) + rawQuerySuffix(c)
		resp, err := s.products.Get(c.Request.Context(), path, nil)
		if err != nil {
			failUnavailable(c, s.products.Name(), err)
			return
		}
		relayUpstream(c, resp)
	}
}

// handleProductCreate は商品の新規作成を商品サービスに中継するハンドラーを返す。
// 作成に成功した場合は在庫サービスに在庫0の初期レコードを登録する。
func (s *Server) handleProductCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディの読み取りに失敗しました"})
			return
		}

		header := http.Header{}
		header.Set("Content-Type", "application/json")
		resp, err := s.products.Do(c.Request.Context(), http.MethodPost, "/products", header, bytes.NewReader(body))
		if err != nil {
			failUnavailable(c, s.products.Name(), err)
			return
		}

		if resp.IsSuccess() {
			s.seedInventory(c.Request.Context(), resp)
		}
		relayUpstream(c, resp)
	}
}

// seedInventory は作成された商品の在庫レコードを在庫0で登録する。
// ベストエフォートで行い、失敗しても商品作成のレスポンスには影響させない。
func (s *Server) seedInventory(ctx context.Context, created *upstream.Response) {
	var product catalogRecord
	if err := created.DecodeJSON(&product); err != nil || product.ID == "" {
		log.Printf("作成された商品IDを取得できないため在庫の初期化をスキップ: %v", err)
		return
	}

	seed := map[string]any{"productid": product.ID, "stock": 0}
	resp, err := s.inventory.PostJSON(ctx, "/api/Supabase/add", seed)
	if err != nil {
		log.Printf("在庫の初期化に失敗: productid=%s, error=%v", product.ID, err)
		return
	}
	if !resp.IsSuccess() {
		log.Printf("在庫の初期化が拒否された: productid=%s, status=%d", product.ID, resp.StatusCode)
	}
}

// handleProductUpdate は商品情報の更新を商品サービスに中継するハンドラーを返す。
func (s *Server) handleProductUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.relayProductWrite(c, http.MethodPatch)
	}
}

// handleProductDelete は商品の削除を商品サービスに中継するハンドラーを返す。
func (s *Server) handleProductDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.relayProductWrite(c, http.MethodDelete)
	}
}

// relayProductWrite は商品1件に対する書き込み系リクエストを中継する。
func (s *Server) relayProductWrite(c *gin.Context, method string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディの読み取りに失敗しました"})
		return
	}

	header := http.Header{}
	if ct := c.GetHeader("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}

	path := "/products/" + url.PathEscape(c.Param("id"))
	resp, err := s.products.Do(c.Request.Context(), method, path, header, bytes.NewReader(body))
	if err != nil {
		failUnavailable(c, s.products.Name(), err)
		return
	}
	relayUpstream(c, resp)
}
